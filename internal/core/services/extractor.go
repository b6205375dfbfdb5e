package services

import (
	"regexp"
	"strings"
	"time"

	"github.com/custodia-labs/syllabusmatch/internal/core/domain"
)

// maxFieldLength caps free-text fields such as titles taken from label lines.
const maxFieldLength = 120

// fieldRule tries to pull one value out of the raw text.
type fieldRule func(text string) (string, bool)

// FieldExtractor turns plain syllabus text into a SyllabusRecord.
// Each field has an ordered list of rules, most specific first; the first
// rule that yields a value wins and weaker rules are not tried.
type FieldExtractor struct {
	now func() time.Time
}

// NewFieldExtractor creates a field extractor using the wall clock.
func NewFieldExtractor() *FieldExtractor {
	return &FieldExtractor{now: time.Now}
}

// Extract builds a record from rawText. Missing fields are left nil and only
// lower the confidence; extraction never fails.
func (e *FieldExtractor) Extract(rawText string) domain.SyllabusRecord {
	record := domain.SyllabusRecord{
		RawText:     rawText,
		ExtractedAt: e.now().UTC(),
	}

	if strings.TrimSpace(rawText) == "" {
		return record
	}

	record.CourseCode = applyRules(rawText, courseCodeRules)
	record.CourseTitle = applyRules(rawText, courseTitleRules)
	record.Instructor = applyRules(rawText, instructorRules)
	record.InstructorEmail = applyRules(rawText, emailRules)
	record.University = applyRules(rawText, universityRules)
	record.Department = applyRules(rawText, departmentRules)

	sem, year := extractTerm(rawText)
	if sem != "" {
		record.Semester = &sem
	}
	if year == "" {
		if y := applyRules(rawText, yearRules); y != nil {
			year = *y
		}
	}
	if year != "" {
		record.Year = &year
	}

	record.Confidence = domain.ScoreConfidence(record)
	return record
}

// applyRules returns the value of the first rule that matches.
func applyRules(text string, rules []fieldRule) *string {
	for _, rule := range rules {
		if v, ok := rule(text); ok {
			return &v
		}
	}
	return nil
}

// captureRule returns the cleaned first capture group of re.
func captureRule(re *regexp.Regexp, clean func(string) string) fieldRule {
	return func(text string) (string, bool) {
		m := re.FindStringSubmatch(text)
		if m == nil {
			return "", false
		}
		v := clean(m[1])
		return v, v != ""
	}
}

// ==================== Course Code ====================

var (
	courseCodeLabelRe = regexp.MustCompile(
		`(?i)\bcourse\s*(?:code|number|no\.?|#|id)\s*[:\-]?\s*([a-z]{2,5})\s*[-#]?\s*(\d{2,4}[a-z]?)\b`)

	courseCodeTokenRe = regexp.MustCompile(`(?i)\b([a-z]{2,4})[ -]?(\d{3,4}[a-z]?)\b`)

	courseCodePrefixRe = regexp.MustCompile(
		`(?i)\b(CS|CSE|CSC|CIS|MATH|MAT|STAT|STA|PHYS|PHY|CHEM|BIO|BIOL|ECON|ECO|ENG|ENGL|` +
			`HIST|PSY|PSYC|PSYCH|PHIL|SOC|POLS|ART|MUS|BUS|ACCT|FIN|MKT|MGMT|EE|ECE|ME|CE|` +
			`NURS|EDU|COMM|GEOG|GEOL|ASTR|LING|ANTH)\s*[-#.]?\s*(\d{2,4}[a-z]?)\b`)
)

// courseCodeStopwords are letter groups that look like a department prefix in
// ordinary prose ("Fall 2024", "Room 101", "page 120").
var courseCodeStopwords = map[string]bool{
	"fall": true, "term": true, "year": true, "in": true, "of": true, "the": true,
	"and": true, "for": true, "room": true, "rm": true, "page": true, "pp": true,
	"week": true, "wk": true, "due": true, "by": true, "on": true, "at": true,
	"to": true, "is": true, "from": true, "ext": true, "fax": true, "tel": true,
	"box": true, "ste": true, "hall": true, "bldg": true, "unit": true, "ch": true,
	"sec": true, "no": true, "spr": true, "sum": true, "win": true, "aut": true,
	"fa": true, "sp": true, "su": true, "wi": true, "jan": true, "feb": true,
	"mar": true, "apr": true, "may": true, "jun": true, "jul": true, "aug": true,
	"sep": true, "sept": true, "oct": true, "nov": true, "dec": true, "mon": true,
	"tue": true, "wed": true, "thu": true, "fri": true, "sat": true, "sun": true,
	"am": true, "pm": true, "est": true, "pst": true, "cst": true, "us": true,
	"isbn": true, "vol": true, "ed": true, "pg": true, "max": true, "min": true,
	"over": true, "than": true, "with": true, "all": true, "are": true, "was": true,
}

var courseCodeRules = []fieldRule{
	func(text string) (string, bool) {
		m := courseCodeLabelRe.FindStringSubmatch(text)
		if m == nil {
			return "", false
		}
		return canonicalCourseCode(m[1], m[2]), true
	},
	func(text string) (string, bool) {
		for _, m := range courseCodeTokenRe.FindAllStringSubmatch(text, -1) {
			if courseCodeStopwords[strings.ToLower(m[1])] {
				continue
			}
			return canonicalCourseCode(m[1], m[2]), true
		}
		return "", false
	},
	func(text string) (string, bool) {
		m := courseCodePrefixRe.FindStringSubmatch(text)
		if m == nil {
			return "", false
		}
		return canonicalCourseCode(m[1], m[2]), true
	},
}

// canonicalCourseCode joins prefix and number without a separator so
// "cs-101", "CS 101" and "CS101" all read "CS101".
func canonicalCourseCode(prefix, number string) string {
	return strings.ToUpper(prefix + number)
}

// ==================== Course Title ====================

var (
	courseTitleLabelRe = regexp.MustCompile(
		`(?im)^[ \t]*(?:course[ \t]+title|course[ \t]+name|title)[ \t]*[:\-][ \t]*(.+)$`)

	courseTitleAfterCodeRe = regexp.MustCompile(
		`(?im)^[ \t]*(?:course[ \t]*:?[ \t]*)?([a-z]{2,5})[ \t-]?\d{2,4}[a-z]?[ \t]*(?::|-|–|—)[ \t]*(.+)$`)
)

var courseTitleRules = []fieldRule{
	captureRule(courseTitleLabelRe, cleanValue),
	func(text string) (string, bool) {
		for _, m := range courseTitleAfterCodeRe.FindAllStringSubmatch(text, -1) {
			if courseCodeStopwords[strings.ToLower(m[1])] {
				continue
			}
			if v := cleanValue(m[2]); v != "" {
				return v, true
			}
		}
		return "", false
	},
}

// ==================== Instructor ====================

var (
	instructorLabelRe = regexp.MustCompile(
		`(?im)^[ \t]*(?:instructor|professor|lecturer|teacher|faculty)(?:[ \t]+name)?[ \t]*[:\-][ \t]*(.+)$`)

	taughtByRe = regexp.MustCompile(
		`(?i:taught\s+by)\s*:?\s*((?:(?i:dr|prof|professor)\.?\s+)?[A-Z][a-zA-Z'-]+(?:\s+[A-Z]\.)?(?:\s+[A-Z][a-zA-Z'-]+)+)`)

	honorificNameRe = regexp.MustCompile(
		`\b((?i:dr|prof|professor)\.?\s+[A-Z][a-zA-Z'-]+(?:\s+[A-Z]\.)?(?:\s+[A-Z][a-zA-Z'-]+)*)`)

	// instructorCutRe marks where a label value stops being a name.
	instructorCutRe = regexp.MustCompile(`(?i)\s*(?:\(|,|;|\||\s-\s|\S+@\S+|\boffice\b|\be-?mail\b|\bphone\b).*$`)
)

var instructorRules = []fieldRule{
	captureRule(instructorLabelRe, func(v string) string {
		return cleanValue(instructorCutRe.ReplaceAllString(v, ""))
	}),
	captureRule(taughtByRe, cleanValue),
	captureRule(honorificNameRe, cleanValue),
}

// ==================== Instructor Email ====================

var (
	emailLabelRe = regexp.MustCompile(`(?i)\be-?mail\s*:\s*([a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,})`)
	emailRe      = regexp.MustCompile(`(?i)\b([a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,})\b`)
)

var emailRules = []fieldRule{
	captureRule(emailLabelRe, strings.ToLower),
	captureRule(emailRe, strings.ToLower),
}

// ==================== Semester and Year ====================

var (
	termLabelRe = regexp.MustCompile(
		`(?i)\b(?:semester|term|session)\s*[:\-]\s*(fall|spring|summer|winter|autumn)\b[\s,]*((?:19|20)\d{2})?`)

	termWordYearRe = regexp.MustCompile(`(?i)\b(fall|spring|summer|winter|autumn)[\s,]*((?:19|20)\d{2})\b`)

	// Longer abbreviations come first in the alternation so "su" wins over "s".
	termAbbrevRe = regexp.MustCompile(`(?i)\b(su|sp|fa|wi|f|s|w|a)'?((?:19|20)\d{2}|\d{2})\b`)

	termWordRe = regexp.MustCompile(`(?i)\b(fall|spring|summer|winter|autumn)\s+(?:semester|term|quarter|session)\b`)
)

var termRules = []*regexp.Regexp{termLabelRe, termWordYearRe, termAbbrevRe, termWordRe}

// extractTerm returns the semester and, when the same match carries one, the year.
func extractTerm(text string) (domain.Semester, string) {
	for _, re := range termRules {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		sem, ok := domain.ParseSemester(m[1])
		if !ok {
			continue
		}
		var year string
		if len(m) > 2 {
			year = expandYear(m[2])
		}
		return sem, year
	}
	return "", ""
}

// expandYear turns a two-digit year into 20yy.
func expandYear(y string) string {
	switch len(y) {
	case 4:
		return y
	case 2:
		return "20" + y
	default:
		return ""
	}
}

var (
	yearLabelRe = regexp.MustCompile(`(?i)\b(?:academic\s+)?year\s*[:\-]\s*((?:19|20)\d{2})\b`)
	yearRe      = regexp.MustCompile(`\b((?:19|20)\d{2})\b`)
)

var yearRules = []fieldRule{
	captureRule(yearLabelRe, strings.TrimSpace),
	captureRule(yearRe, strings.TrimSpace),
}

// ==================== University ====================

var (
	universityLabelRe = regexp.MustCompile(
		`(?im)^[ \t]*(?:university|institution|school|college)[ \t]*:[ \t]*(.+)$`)

	universityOfRe = regexp.MustCompile(
		`\b((?i:university)[ \t]+(?i:of)[ \t]+(?:the[ \t]+)?[A-Z][\w&.'-]*(?:[ \t]+(?:[A-Z][\w&.'-]*|at|of|the|and))*)`)

	namedUniversityRe = regexp.MustCompile(
		`\b((?:[A-Z][a-z][A-Za-z&.'-]*[ \t]+){1,4}` +
			`(?i:university|college|institute(?:[ \t]+of[ \t]+technology)?|polytechnic))\b`)

	trailingConnectorRe = regexp.MustCompile(`(?:[ \t]+(?:at|of|the|and))+$`)
)

var universityRules = []fieldRule{
	captureRule(universityLabelRe, cleanValue),
	captureRule(universityOfRe, func(v string) string {
		return cleanValue(trailingConnectorRe.ReplaceAllString(v, ""))
	}),
	captureRule(namedUniversityRe, cleanValue),
}

// ==================== Department ====================

var (
	departmentLabelRe = regexp.MustCompile(`(?im)^[ \t]*(?:department|dept\.?)[ \t]*:[ \t]*(.+)$`)

	departmentOfRe = regexp.MustCompile(
		`(?:(?i:department)|(?i:dept)\.?)[ \t]+(?i:of)[ \t]+([A-Z][\w&'-]*(?:[ \t]+(?:and[ \t]+|&[ \t]+)?[A-Z][\w&'-]*)*)`)
)

var departmentRules = []fieldRule{
	captureRule(departmentLabelRe, cleanValue),
	captureRule(departmentOfRe, cleanValue),
}

// ==================== Helpers ====================

// cleanValue collapses whitespace, trims punctuation and caps the length.
func cleanValue(v string) string {
	v = strings.Join(strings.Fields(v), " ")
	v = strings.Trim(v, " \t.,;:-|*")
	if r := []rune(v); len(r) > maxFieldLength {
		v = strings.TrimSpace(string(r[:maxFieldLength]))
	}
	return v
}

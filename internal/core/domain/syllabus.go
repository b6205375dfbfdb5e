package domain

import (
	"strings"
	"time"
)

// Semester is the academic term a course offering runs in.
type Semester string

// Recognised semesters.
const (
	SemesterFall   Semester = "fall"
	SemesterSpring Semester = "spring"
	SemesterSummer Semester = "summer"
	SemesterWinter Semester = "winter"
	SemesterAutumn Semester = "autumn"
)

// IsValid returns true if the semester is recognised.
func (s Semester) IsValid() bool {
	switch s {
	case SemesterFall, SemesterSpring, SemesterSummer, SemesterWinter, SemesterAutumn:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (s Semester) String() string {
	return string(s)
}

// ParseSemester resolves a full or abbreviated term name.
// Abbreviations: f, s, su, w, a. The two-letter "su" is checked
// before "s" so summer is never mistaken for spring.
func ParseSemester(v string) (Semester, bool) {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return "", false
	}
	if sem := Semester(v); sem.IsValid() {
		return sem, true
	}
	switch {
	case strings.HasPrefix(v, "su"):
		return SemesterSummer, true
	case strings.HasPrefix(v, "f"):
		return SemesterFall, true
	case strings.HasPrefix(v, "s"):
		return SemesterSpring, true
	case strings.HasPrefix(v, "w"):
		return SemesterWinter, true
	case strings.HasPrefix(v, "a"):
		return SemesterAutumn, true
	default:
		return "", false
	}
}

// Confidence weights for each scored field, out of MaxConfidencePoints.
// Course code and university carry the most weight because together they
// identify an offering almost on their own.
const (
	WeightCourseCode    = 1.5
	WeightCourseTitle   = 1.0
	WeightInstructor    = 1.0
	WeightSemester      = 0.5
	WeightYear          = 0.5
	WeightUniversity    = 1.5
	MaxConfidencePoints = 6.0
)

// SyllabusRecord is the extracted view of one uploaded syllabus.
// A nil field means the extractor found nothing for it, which is an
// expected outcome rather than a failure.
type SyllabusRecord struct {
	CourseCode      *string   `json:"course_code"`
	CourseTitle     *string   `json:"course_title"`
	Instructor      *string   `json:"instructor"`
	InstructorEmail *string   `json:"instructor_email"`
	Semester        *Semester `json:"semester"`
	Year            *string   `json:"year"`
	University      *string   `json:"university"`
	Department      *string   `json:"department"`
	RawText         string    `json:"raw_text"`

	// Confidence is derived from which fields are present. See ScoreConfidence.
	Confidence float64 `json:"confidence"`

	ExtractedAt time.Time `json:"extracted_at"`
}

// ScoreConfidence returns the weighted share of scored fields that are present,
// normalised to [0,1]. Instructor email and department are not scored.
func ScoreConfidence(r SyllabusRecord) float64 {
	var points float64
	if r.CourseCode != nil {
		points += WeightCourseCode
	}
	if r.CourseTitle != nil {
		points += WeightCourseTitle
	}
	if r.Instructor != nil {
		points += WeightInstructor
	}
	if r.Semester != nil {
		points += WeightSemester
	}
	if r.Year != nil {
		points += WeightYear
	}
	if r.University != nil {
		points += WeightUniversity
	}
	return points / MaxConfidencePoints
}

// SemesterString returns the semester as a plain string, or "" when absent.
func (r SyllabusRecord) SemesterString() string {
	if r.Semester == nil {
		return ""
	}
	return r.Semester.String()
}

// StringValue dereferences an optional field, returning "" for nil.
func StringValue(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

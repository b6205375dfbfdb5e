package services

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/syllabusmatch/internal/core/domain"
)

// SignatureBuilder canonicalises records into comparable signatures.
type SignatureBuilder struct {
	newID func() string
	now   func() time.Time
}

// NewSignatureBuilder creates a builder that assigns random UUIDs.
func NewSignatureBuilder() *SignatureBuilder {
	return &SignatureBuilder{
		newID: uuid.NewString,
		now:   time.Now,
	}
}

// Build derives a Signature from record. Apart from the ID and timestamp the
// result depends only on the record's identity fields.
func (b *SignatureBuilder) Build(record domain.SyllabusRecord, ownerID string) domain.Signature {
	sig := domain.Signature{
		ID:          b.newID(),
		CourseCode:  orUnknown(domain.StringValue(record.CourseCode)),
		CourseTitle: orUnknown(domain.StringValue(record.CourseTitle)),
		Semester:    orUnknown(record.SemesterString()),
		Year:        orUnknown(domain.StringValue(record.Year)),
		University:  orUnknown(domain.StringValue(record.University)),
		OwnerID:     ownerID,
		CreatedAt:   b.now().UTC(),
	}
	sig.SignatureText = SignatureText(sig)
	return sig
}

// SignatureText returns the comparison key course|semester|year|university.
// The course slot holds the course code, or the title when no code was
// extracted. Titles are written too inconsistently ("Intro to CS" vs
// "Introduction to Computer Science") to be part of the key when a code exists.
func SignatureText(sig domain.Signature) string {
	course := normalizeToken(sig.CourseCode)
	if !domain.HasKnown(course) {
		course = normalizeToken(sig.CourseTitle)
	}
	parts := []string{
		course,
		normalizeToken(sig.Semester),
		normalizeToken(sig.Year),
		normalizeToken(sig.University),
	}
	return strings.Join(parts, domain.SignatureSeparator)
}

// normalizeToken lower-cases v and keeps only ASCII letters and digits.
// Values that normalise to nothing become the unknown token.
func normalizeToken(v string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(v) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
		}
	}
	if sb.Len() == 0 {
		return domain.UnknownField
	}
	return sb.String()
}

func orUnknown(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return domain.UnknownField
	}
	return v
}

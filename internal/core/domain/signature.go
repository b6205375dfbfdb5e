package domain

import "time"

// UnknownField is substituted for any identity field the extractor could not fill.
const UnknownField = "unknown"

// SignatureSeparator joins the fields of a signature text.
const SignatureSeparator = "|"

// Signature is the canonical, comparable identity of a course offering.
// Signatures are append-only: once persisted they are never mutated.
type Signature struct {
	// ID is an opaque identifier assigned at creation.
	ID string `json:"id"`

	// Identity fields. Each holds UnknownField when absent.
	CourseCode  string `json:"course_code"`
	CourseTitle string `json:"course_title"`
	Semester    string `json:"semester"`
	Year        string `json:"year"`
	University  string `json:"university"`

	// SignatureText is the normalised, pipe-joined comparison key.
	// It is purely derived from the identity fields.
	SignatureText string `json:"signature_text"`

	// OwnerID is the user who uploaded the syllabus.
	OwnerID string `json:"owner_id"`

	CreatedAt time.Time `json:"created_at"`
}

// HasKnown reports whether a signature field was actually extracted.
func HasKnown(field string) bool {
	return field != "" && field != UnknownField
}

// EmbeddingMetadata is a denormalised copy of the identity fields kept with an
// embedding so match reasons can be built without loading the signature.
type EmbeddingMetadata struct {
	CourseCode  string `json:"course_code,omitempty"`
	CourseTitle string `json:"course_title,omitempty"`
	University  string `json:"university,omitempty"`
	Semester    string `json:"semester,omitempty"`
	Year        string `json:"year,omitempty"`
}

// Embedding is a vector representation owned by exactly one Signature.
type Embedding struct {
	// ID is the unique identifier for the embedding.
	ID string `json:"id"`

	// SignatureID links to the owning Signature.
	SignatureID string `json:"signature_id"`

	// Vector is L2-normalised. Its length is constant across the corpus.
	Vector []float32 `json:"vector"`

	// SourceText is the text the vector was derived from.
	SourceText string `json:"source_text"`

	Metadata EmbeddingMetadata `json:"metadata"`

	// Model names the provider model that produced Vector.
	Model string `json:"model"`

	CreatedAt time.Time `json:"created_at"`
}

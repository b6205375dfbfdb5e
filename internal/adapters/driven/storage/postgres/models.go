package postgres

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/custodia-labs/syllabusmatch/internal/core/domain"
)

// signatureRow is the gorm model for the signatures table.
type signatureRow struct {
	ID            string    `gorm:"primaryKey;type:text"`
	CourseCode    string    `gorm:"not null"`
	CourseTitle   string    `gorm:"not null"`
	Semester      string    `gorm:"not null"`
	Year          string    `gorm:"not null"`
	University    string    `gorm:"not null"`
	SignatureText string    `gorm:"not null;index"`
	OwnerID       string    `gorm:"not null;default:''"`
	CreatedAt     time.Time `gorm:"not null;index:idx_signatures_created_at,sort:desc"`
}

func (signatureRow) TableName() string { return "signatures" }

// embeddingRow is the gorm model for the embeddings table.
type embeddingRow struct {
	ID          string                   `gorm:"primaryKey;type:text"`
	SignatureID string                   `gorm:"not null;index"`
	Signature   *signatureRow            `gorm:"foreignKey:SignatureID;constraint:OnDelete:CASCADE"`
	Vector      []byte                   `gorm:"type:bytea;not null"`
	Dimensions  int                      `gorm:"not null"`
	SourceText  string                   `gorm:"not null"`
	Metadata    domain.EmbeddingMetadata `gorm:"serializer:json;type:jsonb"`
	Model       string                   `gorm:"not null"`
	CreatedAt   time.Time                `gorm:"not null;index:idx_embeddings_created_at,sort:desc"`
}

func (embeddingRow) TableName() string { return "embeddings" }

func signatureToRow(sig domain.Signature) signatureRow {
	return signatureRow{
		ID:            sig.ID,
		CourseCode:    sig.CourseCode,
		CourseTitle:   sig.CourseTitle,
		Semester:      sig.Semester,
		Year:          sig.Year,
		University:    sig.University,
		SignatureText: sig.SignatureText,
		OwnerID:       sig.OwnerID,
		CreatedAt:     sig.CreatedAt,
	}
}

func (r signatureRow) toDomain() domain.Signature {
	return domain.Signature{
		ID:            r.ID,
		CourseCode:    r.CourseCode,
		CourseTitle:   r.CourseTitle,
		Semester:      r.Semester,
		Year:          r.Year,
		University:    r.University,
		SignatureText: r.SignatureText,
		OwnerID:       r.OwnerID,
		CreatedAt:     r.CreatedAt.UTC(),
	}
}

func embeddingToRow(emb domain.Embedding) embeddingRow {
	return embeddingRow{
		ID:          emb.ID,
		SignatureID: emb.SignatureID,
		Vector:      encodeVector(emb.Vector),
		Dimensions:  len(emb.Vector),
		SourceText:  emb.SourceText,
		Metadata:    emb.Metadata,
		Model:       emb.Model,
		CreatedAt:   emb.CreatedAt,
	}
}

func (r embeddingRow) toDomain() domain.Embedding {
	return domain.Embedding{
		ID:          r.ID,
		SignatureID: r.SignatureID,
		Vector:      decodeVector(r.Vector),
		SourceText:  r.SourceText,
		Metadata:    r.Metadata,
		Model:       r.Model,
		CreatedAt:   r.CreatedAt.UTC(),
	}
}

// encodeVector packs float32 values little-endian.
func encodeVector(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(b []byte) []float32 {
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}

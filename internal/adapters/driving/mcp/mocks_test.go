package mcp

import (
	"context"

	"github.com/custodia-labs/syllabusmatch/internal/core/domain"
)

// mockMatchingService is a mock implementation of driving.MatchingService.
type mockMatchingService struct {
	result    *domain.ProcessResult
	record    domain.SyllabusRecord
	err       error
	gotText   string
	gotOwner  string
	processed int
}

func (m *mockMatchingService) Process(_ context.Context, rawText, ownerID string) (*domain.ProcessResult, error) {
	m.processed++
	m.gotText = rawText
	m.gotOwner = ownerID
	return m.result, m.err
}

func (m *mockMatchingService) Extract(rawText string) domain.SyllabusRecord {
	m.gotText = rawText
	return m.record
}

// mockCorpusService is a mock implementation of driving.CorpusService.
type mockCorpusService struct {
	signatures []domain.Signature
	err        error
	gotLimit   int
}

func (m *mockCorpusService) Recent(_ context.Context, limit int) ([]domain.Signature, error) {
	m.gotLimit = limit
	return m.signatures, m.err
}

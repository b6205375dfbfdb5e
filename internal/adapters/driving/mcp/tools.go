package mcp

import (
	"context"
	"errors"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/syllabusmatch/internal/core/domain"
)

// defaultRecentLimit is used when recent_signatures is called without a limit.
const defaultRecentLimit = 20

// ProcessInput is the input schema for the process_syllabus tool.
type ProcessInput struct {
	Text    string `json:"text" jsonschema:"the full plain text of the syllabus"`
	OwnerID string `json:"owner_id,omitempty" jsonschema:"identifier of the uploading student"`
}

// ProcessOutput is the output schema for the process_syllabus tool.
type ProcessOutput struct {
	SignatureID     string                  `json:"signature_id"`
	SignatureText   string                  `json:"signature_text"`
	Confidence      float64                 `json:"confidence"`
	Recommendation  domain.Recommendation   `json:"recommendation"`
	BestMatch       *domain.MatchCandidate  `json:"best_match,omitempty"`
	FuzzyMatches    []domain.MatchCandidate `json:"fuzzy_matches"`
	SemanticMatches []domain.MatchCandidate `json:"semantic_matches"`
}

// ExtractInput is the input schema for the extract_syllabus tool.
type ExtractInput struct {
	Text string `json:"text" jsonschema:"the full plain text of the syllabus"`
}

// ExtractOutput is the output schema for the extract_syllabus tool.
type ExtractOutput struct {
	Record domain.SyllabusRecord `json:"record"`
}

// RecentInput is the input schema for the recent_signatures tool.
type RecentInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of signatures to return (default 20)"`
}

// RecentOutput is the output schema for the recent_signatures tool.
type RecentOutput struct {
	Signatures []domain.Signature `json:"signatures"`
	Count      int                `json:"count"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "process_syllabus",
		Description: "Match a syllabus against known course offerings and store it. Returns join, confirm or create.",
	}, s.handleProcess)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "extract_syllabus",
		Description: "Extract course code, title, instructor, term and university from syllabus text without storing it",
	}, s.handleExtract)

	if s.ports.Corpus != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "recent_signatures",
			Description: "List the most recently stored course signatures",
		}, s.handleRecent)
	}
}

func (s *Server) handleProcess(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ProcessInput,
) (*mcp.CallToolResult, ProcessOutput, error) {
	if strings.TrimSpace(input.Text) == "" {
		return nil, ProcessOutput{}, errors.New("text is required")
	}

	result, err := s.ports.Matching.Process(ctx, input.Text, input.OwnerID)
	if err != nil {
		return nil, ProcessOutput{}, err
	}

	return nil, ProcessOutput{
		SignatureID:     result.Signature.ID,
		SignatureText:   result.Signature.SignatureText,
		Confidence:      result.Record.Confidence,
		Recommendation:  result.Decision.Recommendation,
		BestMatch:       result.Decision.BestMatch,
		FuzzyMatches:    result.Decision.FuzzyMatches,
		SemanticMatches: result.Decision.SemanticMatches,
	}, nil
}

func (s *Server) handleExtract(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ExtractInput,
) (*mcp.CallToolResult, ExtractOutput, error) {
	return nil, ExtractOutput{Record: s.ports.Matching.Extract(input.Text)}, nil
}

func (s *Server) handleRecent(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RecentInput,
) (*mcp.CallToolResult, RecentOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultRecentLimit
	}

	sigs, err := s.ports.Corpus.Recent(ctx, limit)
	if err != nil {
		return nil, RecentOutput{}, err
	}
	return nil, RecentOutput{Signatures: sigs, Count: len(sigs)}, nil
}

package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const uriScheme = "syllabusmatch://"

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "corpus/recent",
		Name:        "recent-signatures",
		Description: "Most recently stored course signatures",
		MIMEType:    "application/json",
	}, s.handleRecentResource)
}

func (s *Server) handleRecentResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	text := "[]"
	if s.ports.Corpus != nil {
		sigs, err := s.ports.Corpus.Recent(ctx, defaultRecentLimit)
		if err != nil {
			return nil, fmt.Errorf("listing signatures: %w", err)
		}
		data, err := json.Marshal(sigs)
		if err != nil {
			return nil, fmt.Errorf("encoding signatures: %w", err)
		}
		text = string(data)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     text,
		}},
	}, nil
}

package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/syllabusmatch/internal/core/domain"
)

func recentRequest() *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uriScheme + "corpus/recent",
		},
	}
}

func TestServer_handleRecentResource(t *testing.T) {
	ctx := context.Background()

	t.Run("no corpus service returns empty list", func(t *testing.T) {
		server, err := NewServer(&Ports{Matching: &mockMatchingService{}})
		require.NoError(t, err)

		res, err := server.handleRecentResource(ctx, recentRequest())

		require.NoError(t, err)
		require.Len(t, res.Contents, 1)
		assert.Equal(t, "[]", res.Contents[0].Text)
	})

	t.Run("lists signatures as JSON", func(t *testing.T) {
		corpus := &mockCorpusService{signatures: []domain.Signature{{ID: "sig-1", CourseCode: "CS101"}}}
		server, err := NewServer(&Ports{Matching: &mockMatchingService{}, Corpus: corpus})
		require.NoError(t, err)

		res, err := server.handleRecentResource(ctx, recentRequest())

		require.NoError(t, err)
		assert.Contains(t, res.Contents[0].Text, `"id":"sig-1"`)
		assert.Equal(t, "application/json", res.Contents[0].MIMEType)
	})

	t.Run("store error", func(t *testing.T) {
		corpus := &mockCorpusService{err: errors.New("locked")}
		server, err := NewServer(&Ports{Matching: &mockMatchingService{}, Corpus: corpus})
		require.NoError(t, err)

		_, err = server.handleRecentResource(ctx, recentRequest())

		assert.Error(t, err)
	})
}

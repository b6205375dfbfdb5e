package mcp

import (
	"net/http"

	"github.com/custodia-labs/syllabusmatch/internal/core/ports/driving"
)

// Ports aggregates the driving ports and handlers the MCP server needs.
type Ports struct {
	// Matching extracts, decides and persists uploads.
	Matching driving.MatchingService

	// Corpus lists stored signatures. Optional.
	Corpus driving.CorpusService

	// Metrics is mounted at /metrics in HTTP mode. Optional.
	Metrics http.Handler
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Matching == nil {
		return ErrMissingMatchingService
	}
	return nil
}

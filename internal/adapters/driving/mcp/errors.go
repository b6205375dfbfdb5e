// Package mcp provides an MCP (Model Context Protocol) server adapter.
// It lets AI assistants submit syllabi for matching and browse the corpus.
package mcp

import "errors"

// ErrMissingMatchingService is returned when the matching service is not provided.
var ErrMissingMatchingService = errors.New("mcp: matching service is required")

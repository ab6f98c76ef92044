// Package mcp provides an MCP (Model Context Protocol) server adapter for docwatch.
// It lets assistants read the watched document, trigger a re-sync and commit edits.
package mcp

import "errors"

// ErrMissingDocumentService is returned when the document service is not provided.
var ErrMissingDocumentService = errors.New("mcp: document service is required")

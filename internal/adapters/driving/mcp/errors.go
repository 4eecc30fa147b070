// Package mcp provides an MCP (Model Context Protocol) server adapter for postop.
// It lets AI assistants run triage turns and read patient data over stdio or HTTP.
package mcp

import "errors"

// ErrMissingChatService is returned when the chat service is not provided.
var ErrMissingChatService = errors.New("mcp: chat service is required")

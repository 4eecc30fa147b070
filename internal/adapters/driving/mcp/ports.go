package mcp

import (
	"github.com/custodia-labs/postop/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Chat runs triage turns.
	Chat driving.ChatService

	// Retrieval exposes patient-scoped search.
	Retrieval driving.RetrievalService

	// Ingest indexes patient profiles.
	Ingest driving.IngestService

	// Alerts reads the alert log.
	Alerts driving.AlertService

	// Patients reads stored profiles.
	Patients driving.PatientService
}

// Validate ensures all required ports are set.
// Only Chat is required; tools and resources for the others are
// registered when they are present.
func (p *Ports) Validate() error {
	if p.Chat == nil {
		return ErrMissingChatService
	}
	return nil
}

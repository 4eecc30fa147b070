package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/postop/internal/core/domain"
)

// ChatInput is the input schema for the chat tool.
type ChatInput struct {
	PatientID string `json:"patient_id" jsonschema:"the patient asking the question"`
	Message   string `json:"message" jsonschema:"the patient's message"`
}

// ChatOutput is the output schema for the chat tool.
type ChatOutput struct {
	PatientID   string   `json:"patient_id"`
	ContextUsed []string `json:"context_used"`
	Answer      string   `json:"answer"`
	ContactHint string   `json:"contact_hint"`
	TriageLevel *int     `json:"triage_level"`
	AlertSent   bool     `json:"alert_sent"`
}

// RetrieveInput is the input schema for the retrieve tool.
type RetrieveInput struct {
	PatientID string `json:"patient_id" jsonschema:"the patient whose documents are searched"`
	Query     string `json:"query" jsonschema:"the text to match against the patient's documents"`
	K         int    `json:"k,omitempty" jsonschema:"maximum number of snippets (default from settings)"`
}

// RetrieveOutput is the output schema for the retrieve tool.
type RetrieveOutput struct {
	Hits  []HitOutput `json:"hits"`
	Count int         `json:"count"`
}

// HitOutput represents a single retrieved snippet.
type HitOutput struct {
	Text     string  `json:"text"`
	Kind     string  `json:"kind"`
	Distance float64 `json:"distance"`
}

// IngestProfileInput is the input schema for the ingest_profile tool.
type IngestProfileInput struct {
	PatientID string       `json:"patient_id" jsonschema:"the patient the profile belongs to"`
	Profile   ProfileInput `json:"profile" jsonschema:"the post-operative profile to index"`
}

// ProfileInput is a patient profile; every field is optional but a name or
// procedure must be present.
type ProfileInput struct {
	Name         string            `json:"name,omitempty"`
	Age          int               `json:"age,omitempty"`
	Surgeon      string            `json:"surgeon,omitempty"`
	Procedure    string            `json:"procedure,omitempty"`
	ContactName  string            `json:"contact_name,omitempty" jsonschema:"emergency contact name"`
	ContactPhone string            `json:"contact_phone,omitempty" jsonschema:"emergency contact phone"`
	Allergies    []string          `json:"allergies,omitempty"`
	Medications  []MedicationInput `json:"medications,omitempty"`
	RedFlags     []string          `json:"red_flags,omitempty" jsonschema:"symptoms that need urgent attention"`
}

// MedicationInput is one medication plan entry.
type MedicationInput struct {
	Name         string `json:"name"`
	Dose         string `json:"dose,omitempty"`
	Freq         string `json:"freq,omitempty"`
	DurationDays *int   `json:"duration_days,omitempty"`
}

func (p ProfileInput) toDomain() domain.PatientProfile {
	meds := make([]domain.Medication, len(p.Medications))
	for i, m := range p.Medications {
		meds[i] = domain.Medication{
			Name:         m.Name,
			Dose:         m.Dose,
			Freq:         m.Freq,
			DurationDays: m.DurationDays,
		}
	}
	return domain.PatientProfile{
		Name:      p.Name,
		Age:       p.Age,
		Surgeon:   p.Surgeon,
		Procedure: p.Procedure,
		EmergencyContact: domain.EmergencyContact{
			Name:  p.ContactName,
			Phone: p.ContactPhone,
		},
		Allergies:   p.Allergies,
		Medications: meds,
		RedFlags:    p.RedFlags,
	}
}

// IngestProfileOutput is the output schema for the ingest_profile tool.
type IngestProfileOutput struct {
	PatientID string   `json:"patient_id"`
	Documents int      `json:"documents"`
	Kinds     []string `json:"kinds"`
}

// ListAlertsInput is the input schema for the list_alerts tool.
type ListAlertsInput struct {
	PatientID string `json:"patient_id" jsonschema:"the patient whose alerts are listed"`
}

// ListAlertsOutput is the output schema for the list_alerts tool.
type ListAlertsOutput struct {
	Alerts []AlertOutput `json:"alerts"`
	Count  int           `json:"count"`
}

// AlertOutput is one alert record.
type AlertOutput struct {
	Timestamp string `json:"ts"`
	Message   string `json:"message"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "chat",
		Description: "Answer a post-operative patient's message and triage it (1 routine, 2 follow-up, 3 urgent)",
	}, s.handleChat)

	if s.ports.Retrieval != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "retrieve",
			Description: "Search one patient's indexed profile snippets",
		}, s.handleRetrieve)
	}

	if s.ports.Ingest != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ingest_profile",
			Description: "Index a patient profile, replacing the patient's previous documents",
		}, s.handleIngestProfile)
	}

	if s.ports.Alerts != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "list_alerts",
			Description: "List urgent alerts raised for a patient, oldest first",
		}, s.handleListAlerts)
	}
}

// handleChat handles the chat tool invocation.
func (s *Server) handleChat(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ChatInput,
) (*mcp.CallToolResult, ChatOutput, error) {
	resp, err := s.ports.Chat.Chat(ctx, domain.ChatRequest{
		PatientID: input.PatientID,
		Message:   input.Message,
	})
	if err != nil {
		return nil, ChatOutput{}, err
	}

	contextUsed := resp.ContextUsed
	if contextUsed == nil {
		contextUsed = []string{}
	}
	if resp.AlertSent {
		serverLog.Warn("alert raised for patient %s via chat tool", resp.PatientID)
	}

	return nil, ChatOutput{
		PatientID:   resp.PatientID,
		ContextUsed: contextUsed,
		Answer:      resp.Answer,
		ContactHint: resp.ContactHint,
		TriageLevel: resp.TriageLevel,
		AlertSent:   resp.AlertSent,
	}, nil
}

// handleRetrieve handles the retrieve tool invocation.
func (s *Server) handleRetrieve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetrieveInput,
) (*mcp.CallToolResult, RetrieveOutput, error) {
	hits, err := s.ports.Retrieval.Retrieve(ctx, input.PatientID, input.Query, input.K)
	if err != nil {
		return nil, RetrieveOutput{}, err
	}

	output := RetrieveOutput{
		Hits:  make([]HitOutput, len(hits)),
		Count: len(hits),
	}
	for i := range hits {
		output.Hits[i] = HitOutput{
			Text:     hits[i].Text,
			Kind:     hits[i].Kind.String(),
			Distance: hits[i].Distance,
		}
	}

	return nil, output, nil
}

// handleIngestProfile handles the ingest_profile tool invocation.
func (s *Server) handleIngestProfile(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestProfileInput,
) (*mcp.CallToolResult, IngestProfileOutput, error) {
	docs, err := s.ports.Ingest.Ingest(ctx, input.PatientID, input.Profile.toDomain())
	if err != nil {
		return nil, IngestProfileOutput{}, err
	}

	kinds := make([]string, len(docs))
	for i := range docs {
		kinds[i] = docs[i].Kind.String()
	}

	return nil, IngestProfileOutput{
		PatientID: input.PatientID,
		Documents: len(docs),
		Kinds:     kinds,
	}, nil
}

// handleListAlerts handles the list_alerts tool invocation.
func (s *Server) handleListAlerts(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListAlertsInput,
) (*mcp.CallToolResult, ListAlertsOutput, error) {
	alerts, err := s.ports.Alerts.List(ctx, input.PatientID)
	if err != nil {
		return nil, ListAlertsOutput{}, err
	}

	output := ListAlertsOutput{
		Alerts: make([]AlertOutput, len(alerts)),
		Count:  len(alerts),
	}
	for i, a := range alerts {
		output.Alerts[i] = AlertOutput{
			Timestamp: a.Timestamp.UTC().Format(timeFormat),
			Message:   a.Message,
		}
	}

	return nil, output, nil
}

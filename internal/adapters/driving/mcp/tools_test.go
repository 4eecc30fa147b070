package mcp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/postop/internal/core/domain"
)

func newTestServer(t *testing.T, ports *Ports) *Server {
	t.Helper()
	if ports.Chat == nil {
		ports.Chat = &mockChatService{}
	}
	server, err := NewServer(ports)
	require.NoError(t, err)
	return server
}

func TestServer_handleChat(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the turn result", func(t *testing.T) {
		chat := &mockChatService{resp: &domain.ChatResponse{
			PatientID:   "p1",
			ContextUsed: []string{"- (red_flags) Red flags: chest pain"},
			Answer:      "You will be contacted shortly by your emergency contact.",
			ContactHint: "Surgery Desk: +1-555-200-1000",
			TriageLevel: domain.LevelPtr(3),
			AlertSent:   true,
		}}
		server := newTestServer(t, &Ports{Chat: chat})

		_, output, err := server.handleChat(ctx, nil, ChatInput{PatientID: "p1", Message: "severe chest pain"})

		require.NoError(t, err)
		assert.Equal(t, domain.ChatRequest{PatientID: "p1", Message: "severe chest pain"}, chat.got)
		assert.Equal(t, "p1", output.PatientID)
		require.NotNil(t, output.TriageLevel)
		assert.Equal(t, 3, *output.TriageLevel)
		assert.True(t, output.AlertSent)
		assert.Len(t, output.ContextUsed, 1)
	})

	t.Run("nil context becomes empty list", func(t *testing.T) {
		chat := &mockChatService{resp: &domain.ChatResponse{PatientID: "p9", Answer: "hello"}}
		server := newTestServer(t, &Ports{Chat: chat})

		_, output, err := server.handleChat(ctx, nil, ChatInput{PatientID: "p9", Message: "hi"})

		require.NoError(t, err)
		assert.NotNil(t, output.ContextUsed)
		assert.Empty(t, output.ContextUsed)
		assert.Nil(t, output.TriageLevel)
	})

	t.Run("returns error on chat failure", func(t *testing.T) {
		chat := &mockChatService{err: domain.ErrRetrievalUnavailable}
		server := newTestServer(t, &Ports{Chat: chat})

		_, _, err := server.handleChat(ctx, nil, ChatInput{PatientID: "p1", Message: "x"})

		assert.ErrorIs(t, err, domain.ErrRetrievalUnavailable)
	})
}

func TestServer_handleRetrieve(t *testing.T) {
	ctx := context.Background()

	t.Run("maps hits", func(t *testing.T) {
		retrieval := &mockRetrievalService{hits: []domain.RetrievalHit{
			{Text: "Allergies: penicillin", Kind: domain.DocumentKindAllergies, PatientID: "p1", Distance: 0.12},
		}}
		server := newTestServer(t, &Ports{Retrieval: retrieval})

		_, output, err := server.handleRetrieve(ctx, nil, RetrieveInput{PatientID: "p1", Query: "allergy", K: 3})

		require.NoError(t, err)
		assert.Equal(t, "p1", retrieval.gotID)
		assert.Equal(t, 3, retrieval.gotK)
		assert.Equal(t, 1, output.Count)
		assert.Equal(t, "allergies", output.Hits[0].Kind)
		assert.Equal(t, 0.12, output.Hits[0].Distance)
	})

	t.Run("returns error on failure", func(t *testing.T) {
		server := newTestServer(t, &Ports{Retrieval: &mockRetrievalService{err: errors.New("store down")}})

		_, _, err := server.handleRetrieve(ctx, nil, RetrieveInput{PatientID: "p1", Query: "x"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "store down")
	})
}

func TestServer_handleIngestProfile(t *testing.T) {
	ctx := context.Background()
	days := 5

	ingest := &mockIngestService{}
	server := newTestServer(t, &Ports{Ingest: ingest})

	_, output, err := server.handleIngestProfile(ctx, nil, IngestProfileInput{
		PatientID: "p5",
		Profile: ProfileInput{
			Name:         "Eve Adams",
			Procedure:    "Hernia repair",
			ContactName:  "Surgery Desk",
			ContactPhone: "+1-555-0100",
			Medications:  []MedicationInput{{Name: "Amoxicillin", Dose: "500mg", Freq: "q8h", DurationDays: &days}},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "p5", output.PatientID)
	assert.Equal(t, 2, output.Documents)
	assert.Equal(t, []string{"summary", "meds"}, output.Kinds)
	assert.Equal(t, "Surgery Desk", ingest.gotProfile.EmergencyContact.Name)
	require.Len(t, ingest.gotProfile.Medications, 1)
	assert.Equal(t, 5, *ingest.gotProfile.Medications[0].DurationDays)

	t.Run("returns error on failure", func(t *testing.T) {
		server := newTestServer(t, &Ports{Ingest: &mockIngestService{err: domain.ErrEmbeddingUnavailable}})

		_, _, err := server.handleIngestProfile(ctx, nil, IngestProfileInput{PatientID: "p5"})

		assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	})
}

func TestServer_handleListAlerts(t *testing.T) {
	ctx := context.Background()
	ts := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

	server := newTestServer(t, &Ports{Alerts: &mockAlertService{alerts: []domain.Alert{
		{Timestamp: ts, PatientID: "p1", Message: "severe chest pain"},
	}}})

	_, output, err := server.handleListAlerts(ctx, nil, ListAlertsInput{PatientID: "p1"})

	require.NoError(t, err)
	assert.Equal(t, 1, output.Count)
	assert.Equal(t, "2026-03-01T09:30:00Z", output.Alerts[0].Timestamp)
	assert.Equal(t, "severe chest pain", output.Alerts[0].Message)

	t.Run("empty log", func(t *testing.T) {
		server := newTestServer(t, &Ports{Alerts: &mockAlertService{}})

		_, output, err := server.handleListAlerts(ctx, nil, ListAlertsInput{PatientID: "p2"})

		require.NoError(t, err)
		assert.Equal(t, 0, output.Count)
		assert.Empty(t, output.Alerts)
	})
}

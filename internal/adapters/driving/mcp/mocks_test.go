package mcp

import (
	"context"

	"github.com/custodia-labs/postop/internal/core/domain"
	"github.com/custodia-labs/postop/internal/core/ports/driving"
)

// mockChatService is a mock implementation of driving.ChatService.
type mockChatService struct {
	resp *domain.ChatResponse
	err  error
	got  domain.ChatRequest
}

func (m *mockChatService) Chat(_ context.Context, req domain.ChatRequest) (*domain.ChatResponse, error) {
	m.got = req
	return m.resp, m.err
}

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	hits  []domain.RetrievalHit
	err   error
	gotK  int
	gotID string
}

func (m *mockRetrievalService) Retrieve(_ context.Context, patientID, _ string, k int) ([]domain.RetrievalHit, error) {
	m.gotID = patientID
	m.gotK = k
	return m.hits, m.err
}

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	err        error
	gotProfile domain.PatientProfile
}

func (m *mockIngestService) Ingest(
	_ context.Context,
	patientID string,
	profile domain.PatientProfile,
) ([]domain.PatientDocument, error) {
	m.gotProfile = profile
	if m.err != nil {
		return nil, m.err
	}
	return []domain.PatientDocument{
		{PatientID: patientID, Kind: domain.DocumentKindSummary},
		{PatientID: patientID, Kind: domain.DocumentKindMeds},
	}, nil
}

// mockAlertService is a mock implementation of driving.AlertService.
type mockAlertService struct {
	alerts []domain.Alert
	err    error
}

func (m *mockAlertService) List(_ context.Context, _ string) ([]domain.Alert, error) {
	return m.alerts, m.err
}

// mockPatientService is a mock implementation of driving.PatientService.
type mockPatientService struct {
	ids     []string
	details *driving.PatientDetails
	err     error
}

func (m *mockPatientService) Get(_ context.Context, _ string) (*driving.PatientDetails, error) {
	return m.details, m.err
}

func (m *mockPatientService) List(_ context.Context) ([]string, error) {
	return m.ids, m.err
}

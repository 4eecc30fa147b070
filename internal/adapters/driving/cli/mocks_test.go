package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/postop/internal/core/domain"
	"github.com/custodia-labs/postop/internal/core/ports/driving"
)

// mockChatService triages "chest pain" as urgent and everything else as routine.
type mockChatService struct {
	mu       sync.Mutex
	messages []string
	err      error
}

func (m *mockChatService) Chat(_ context.Context, req domain.ChatRequest) (*domain.ChatResponse, error) {
	m.mu.Lock()
	m.messages = append(m.messages, req.Message)
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if strings.Contains(req.Message, "chest pain") {
		return &domain.ChatResponse{
			PatientID:   req.PatientID,
			ContextUsed: []string{"- (contacts) Emergency contact: Cardiac ICU +1-555-900-1122"},
			Answer:      "You will be contacted shortly by your emergency contact.",
			ContactHint: "Emergency contact: Cardiac ICU +1-555-900-1122",
			TriageLevel: domain.LevelPtr(domain.TriageUrgent),
			AlertSent:   true,
		}, nil
	}
	return &domain.ChatResponse{
		PatientID:   req.PatientID,
		ContextUsed: []string{},
		Answer:      "Hello! I'm here to help.",
		TriageLevel: domain.LevelPtr(domain.TriageRoutine),
	}, nil
}

// mockIngestService records ingested patients and returns two documents each.
type mockIngestService struct {
	mu       sync.Mutex
	patients []string
	profiles map[string]domain.PatientProfile
	fail     map[string]bool
}

func (m *mockIngestService) Ingest(
	_ context.Context,
	patientID string,
	profile domain.PatientProfile,
) ([]domain.PatientDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail[patientID] {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if m.profiles == nil {
		m.profiles = make(map[string]domain.PatientProfile)
	}
	m.patients = append(m.patients, patientID)
	m.profiles[patientID] = profile
	return []domain.PatientDocument{
		{PatientID: patientID, Kind: domain.DocumentKindSummary},
		{PatientID: patientID, Kind: domain.DocumentKindContacts},
	}, nil
}

func (m *mockIngestService) ingested() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.patients...)
}

type mockRetrievalService struct {
	hits []domain.RetrievalHit
	err  error
	k    int
}

func (m *mockRetrievalService) Retrieve(_ context.Context, _, _ string, k int) ([]domain.RetrievalHit, error) {
	m.k = k
	return m.hits, m.err
}

type mockAlertService struct {
	alerts []domain.Alert
}

func (m *mockAlertService) List(_ context.Context, patientID string) ([]domain.Alert, error) {
	out := []domain.Alert{}
	for _, a := range m.alerts {
		if a.PatientID == patientID {
			out = append(out, a)
		}
	}
	return out, nil
}

type mockPatientService struct {
	details map[string]*driving.PatientDetails
}

func (m *mockPatientService) Get(_ context.Context, patientID string) (*driving.PatientDetails, error) {
	d, ok := m.details[patientID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return d, nil
}

func (m *mockPatientService) List(_ context.Context) ([]string, error) {
	ids := []string{}
	for id := range m.details {
		ids = append(ids, id)
	}
	return ids, nil
}

// mockSettingsService keeps settings in memory.
type mockSettingsService struct {
	settings    domain.AppSettings
	validateErr error
	pingErr     error
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{settings: domain.DefaultAppSettings()}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.settings = *settings
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	m.settings.Embedding = domain.EmbeddingSettings{Provider: provider, Model: model, APIKey: apiKey}
	return nil
}

func (m *mockSettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	m.settings.LLM.Provider = provider
	m.settings.LLM.Model = model
	m.settings.LLM.APIKey = apiKey
	return nil
}

func (m *mockSettingsService) SetTopK(k int) error {
	if k < 1 {
		return domain.ErrInvalidInput
	}
	m.settings.Retrieval.TopK = k
	return nil
}

func (m *mockSettingsService) SetLLMRateLimit(rps float64) error {
	if rps < 0 {
		return domain.ErrInvalidInput
	}
	m.settings.LLM.RequestsPerSecond = rps
	return nil
}

func (m *mockSettingsService) Validate() error                 { return m.validateErr }
func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }
func (m *mockSettingsService) ValidateEmbeddingConfig() error  { return m.pingErr }
func (m *mockSettingsService) ValidateLLMConfig() error        { return m.pingErr }

var errBoom = errors.New("boom")

// testServices holds the mocks installed by setupTestServices.
type testServices struct {
	chat      *mockChatService
	ingest    *mockIngestService
	retrieval *mockRetrievalService
	alerts    *mockAlertService
	patients  *mockPatientService
	settings  *mockSettingsService
}

// setupTestServices installs mocks for every port and returns them with a cleanup.
func setupTestServices() (*testServices, func()) {
	ts := &testServices{
		chat:   &mockChatService{},
		ingest: &mockIngestService{},
		retrieval: &mockRetrievalService{hits: []domain.RetrievalHit{
			{Text: "Allergies: penicillin", Kind: domain.DocumentKindAllergies, PatientID: "p1", Distance: 0.1234},
		}},
		alerts: &mockAlertService{alerts: []domain.Alert{
			{Timestamp: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC), PatientID: "p4", Message: "I have chest pain"},
		}},
		patients: &mockPatientService{details: map[string]*driving.PatientDetails{
			"p1": {
				PatientID: "p1",
				Profile: domain.PatientProfile{
					Name:             "Alice Lee",
					Age:              46,
					Procedure:        "Laparoscopic cholecystectomy",
					EmergencyContact: domain.EmergencyContact{Name: "Surgery Desk", Phone: "+1-555-200-1000"},
					Allergies:        []string{"penicillin"},
					Medications:      []domain.Medication{{Name: "Amoxicillin", Dose: "500mg", Freq: "q8h"}},
				},
				DocumentCount: 5,
			},
		}},
		settings: newMockSettingsService(),
	}

	SetServices(Services{
		Chat:      ts.chat,
		Ingest:    ts.ingest,
		Retrieval: ts.retrieval,
		Alerts:    ts.alerts,
		Patients:  ts.patients,
		Settings:  ts.settings,
	})

	return ts, func() { SetServices(Services{}) }
}

// execute runs the root command with args and returns combined output.
func execute(args ...string) (string, error) {
	return executeWithInput("", args...)
}

func executeWithInput(input string, args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(input))
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		resetFlags()
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

// resetFlags restores package-level flag variables between runs.
func resetFlags() {
	chatJSON = false
	retrieveK = 0
	retrieveJSON = false
	alertsJSON = false
	patientJSON = false
	ingestDir = ""
	ingestWatch = false
	settingsTopK = 0
	settingsLLMRate = 0
	versionShort = false
	_ = versionCmd.Flags().Set("json", "false")
	for _, c := range []string{"top-k", "llm-rate"} {
		if f := settingsRetrievalCmd.Flags().Lookup(c); f != nil {
			f.Changed = false
		}
	}
	clearContexts(rootCmd)
}

// clearContexts drops the context cobra stores on each command during
// Execute. Subcommands only inherit the root context while theirs is nil,
// so a stale one would outlive the run that set it.
func clearContexts(cmd *cobra.Command) {
	cmd.SetContext(nil) //nolint:staticcheck // nil re-enables inheritance from the root
	for _, sub := range cmd.Commands() {
		clearContexts(sub)
	}
}

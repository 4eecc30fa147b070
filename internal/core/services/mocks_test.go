package services

import (
	"context"
	"hash/fnv"
	"strings"
	"sync"

	"github.com/custodia-labs/postop/internal/core/domain"
	"github.com/custodia-labs/postop/internal/core/ports/driven"
)

// hashEmbedder is a deterministic bag-of-words embedder: each lower-cased
// token increments one of dims buckets.
type hashEmbedder struct {
	dims     int
	err      error
	mu       sync.Mutex
	batches  int
	queries  int
	lastText string
}

func newHashEmbedder() *hashEmbedder {
	return &hashEmbedder{dims: 64}
}

func (e *hashEmbedder) vector(text string) []float32 {
	v := make([]float32, e.dims)
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(strings.Trim(tok, ".,;:()!?")))
		v[h.Sum32()%uint32(e.dims)]++
	}
	return v
}

func (e *hashEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.mu.Lock()
	e.queries++
	e.lastText = text
	e.mu.Unlock()
	if e.err != nil {
		return nil, e.err
	}
	return e.vector(text), nil
}

func (e *hashEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	e.mu.Lock()
	e.batches++
	e.mu.Unlock()
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = e.vector(t)
	}
	return out, nil
}

func (e *hashEmbedder) Dimensions() int              { return e.dims }
func (e *hashEmbedder) ModelName() string            { return "hash-embed" }
func (e *hashEmbedder) Ping(_ context.Context) error { return nil }
func (e *hashEmbedder) Close() error                 { return nil }

// stubVectorStore records calls and returns canned results.
type stubVectorStore struct {
	hits        []domain.RetrievalHit
	queryErr    error
	writeErr    error
	count       int
	upserts     [][]domain.PatientDocument
	replaces    [][]domain.PatientDocument
	lastK       int
	lastPatient string
}

func (s *stubVectorStore) Upsert(_ context.Context, docs []domain.PatientDocument) error {
	if s.writeErr != nil {
		return s.writeErr
	}
	s.upserts = append(s.upserts, docs)
	return nil
}

func (s *stubVectorStore) ReplacePatient(_ context.Context, _ string, docs []domain.PatientDocument) error {
	if s.writeErr != nil {
		return s.writeErr
	}
	s.replaces = append(s.replaces, docs)
	return nil
}

func (s *stubVectorStore) Query(_ context.Context, _ []float32, patientID string, k int) ([]domain.RetrievalHit, error) {
	s.lastK = k
	s.lastPatient = patientID
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	return s.hits, nil
}

func (s *stubVectorStore) CountByPatient(_ context.Context, _ string) (int, error) {
	return s.count, s.queryErr
}

func (s *stubVectorStore) Close() error { return nil }

// stubLLM returns a fixed reply and records the prompts it was given.
type stubLLM struct {
	reply      string
	err        error
	calls      int
	lastSystem string
	lastUser   string
}

func (l *stubLLM) Generate(_ context.Context, systemPrompt, userMessage string) (string, error) {
	l.calls++
	l.lastSystem = systemPrompt
	l.lastUser = userMessage
	return l.reply, l.err
}

func (l *stubLLM) ModelName() string            { return "stub-llm" }
func (l *stubLLM) Ping(_ context.Context) error { return nil }
func (l *stubLLM) Close() error                 { return nil }

// failingAlertSink rejects every push.
type failingAlertSink struct {
	err error
}

func (f *failingAlertSink) Push(_ context.Context, _ domain.Alert) error { return f.err }

func (f *failingAlertSink) List(_ context.Context, _ string) ([]domain.Alert, error) {
	return nil, f.err
}

// stubRetrieval returns canned hits.
type stubRetrieval struct {
	hits  []domain.RetrievalHit
	err   error
	lastK int
}

func (r *stubRetrieval) Retrieve(_ context.Context, _, _ string, k int) ([]domain.RetrievalHit, error) {
	r.lastK = k
	return r.hits, r.err
}

// stubPromptStore serves prompt templates from a map.
type stubPromptStore struct {
	prompts map[string]string
	err     error
}

func (p *stubPromptStore) Load(name string) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	if v, ok := p.prompts[name]; ok {
		return v, nil
	}
	return "", domain.ErrNotFound
}

func (p *stubPromptStore) Reload() {}

// stubProfileStore fails saves on demand.
type stubProfileStore struct {
	saved   map[string]domain.PatientProfile
	saveErr error
}

func (p *stubProfileStore) Save(_ context.Context, patientID string, profile domain.PatientProfile) error {
	if p.saveErr != nil {
		return p.saveErr
	}
	if p.saved == nil {
		p.saved = make(map[string]domain.PatientProfile)
	}
	p.saved[patientID] = profile
	return nil
}

func (p *stubProfileStore) Get(_ context.Context, patientID string) (*domain.PatientProfile, error) {
	profile, ok := p.saved[patientID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &profile, nil
}

func (p *stubProfileStore) List(_ context.Context) ([]string, error) {
	return nil, p.saveErr
}

// Compile-time checks for the stubs.
var (
	_ driven.EmbeddingService = (*hashEmbedder)(nil)
	_ driven.VectorStore      = (*stubVectorStore)(nil)
	_ driven.LLMService       = (*stubLLM)(nil)
	_ driven.AlertSink        = (*failingAlertSink)(nil)
	_ driven.PromptStore      = (*stubPromptStore)(nil)
	_ driven.ProfileStore     = (*stubProfileStore)(nil)
)

func alice() domain.PatientProfile {
	days := 5
	return domain.PatientProfile{
		Name:      "Alice Lee",
		Age:       34,
		Surgeon:   "Dr. Patel",
		Procedure: "Laparoscopic appendectomy",
		EmergencyContact: domain.EmergencyContact{
			Name:  "Jordan Lee",
			Phone: "+1-555-0101",
		},
		Allergies: []string{"penicillin"},
		Medications: []domain.Medication{
			{Name: "Ibuprofen", Dose: "400mg", Freq: "every 8h", DurationDays: &days},
			{Name: "Acetaminophen", Dose: "500mg", Freq: "every 6h"},
		},
		RedFlags: []string{"fever above 38.5C", "wound redness spreading"},
	}
}

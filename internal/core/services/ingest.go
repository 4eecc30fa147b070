package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/postop/internal/core/domain"
	"github.com/custodia-labs/postop/internal/core/ports/driven"
	"github.com/custodia-labs/postop/internal/core/ports/driving"
	"github.com/custodia-labs/postop/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

var ingestLog = logger.For("ingest")

// IngestService builds, embeds and stores a patient's documents.
type IngestService struct {
	embedder        driven.EmbeddingService
	store           driven.VectorStore
	profiles        driven.ProfileStore
	replaceExisting bool
	now             func() time.Time
}

// NewIngestService creates a new ingest service.
// With replaceExisting, re-ingesting a patient swaps the whole document set.
func NewIngestService(
	embedder driven.EmbeddingService,
	store driven.VectorStore,
	replaceExisting bool,
) *IngestService {
	return &IngestService{
		embedder:        embedder,
		store:           store,
		replaceExisting: replaceExisting,
		now:             time.Now,
	}
}

// SetProfileStore sets the store that keeps raw profiles after ingestion.
func (s *IngestService) SetProfileStore(store driven.ProfileStore) {
	s.profiles = store
}

// Ingest generates, embeds and stores the documents for one profile.
// Texts are embedded in one batch and written in one store call, so a
// failure at either step leaves nothing reported as committed.
func (s *IngestService) Ingest(
	ctx context.Context, patientID string, profile domain.PatientProfile,
) ([]domain.PatientDocument, error) {
	patientID = strings.TrimSpace(patientID)
	if patientID == "" {
		return nil, fmt.Errorf("%w: patient ID is required", domain.ErrInvalidInput)
	}
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if s.store == nil {
		return nil, domain.ErrVectorStoreUnavailable
	}

	docs := BuildDocuments(patientID, profile)
	ingestLog.Debug("patient %s: %d documents generated", patientID, len(docs))

	texts := make([]string, len(docs))
	for i := range docs {
		texts[i] = docs[i].Text
	}

	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		ingestLog.Warn("patient %s: embedding failed: %v", patientID, err)
		return nil, fmt.Errorf("%w: embed documents: %w", domain.ErrEmbeddingUnavailable, err)
	}
	if len(vectors) != len(docs) {
		return nil, fmt.Errorf("%w: got %d vectors for %d documents",
			domain.ErrEmbeddingUnavailable, len(vectors), len(docs))
	}

	created := s.now().UTC()
	for i := range docs {
		docs[i].Vector = vectors[i]
		docs[i].CreatedAt = created
	}

	if s.replaceExisting {
		err = s.store.ReplacePatient(ctx, patientID, docs)
	} else {
		err = s.store.Upsert(ctx, docs)
	}
	if err != nil {
		ingestLog.Warn("patient %s: store write failed: %v", patientID, err)
		return nil, fmt.Errorf("%w: %w", domain.ErrVectorStoreUnavailable, err)
	}
	ingestLog.Info("patient %s: %d documents committed (replace=%t)", patientID, len(docs), s.replaceExisting)

	if s.profiles != nil {
		if err := s.profiles.Save(ctx, patientID, profile); err != nil {
			// Documents are already committed; the profile copy is informational.
			ingestLog.Warn("patient %s: saving profile failed: %v", patientID, err)
		}
	}

	return docs, nil
}

// BuildDocuments generates the text documents for a profile without vectors.
// Summary and contacts are emitted when their fields are set; allergies,
// medication plan and red flags only when their lists have entries.
func BuildDocuments(patientID string, profile domain.PatientProfile) []domain.PatientDocument {
	var docs []domain.PatientDocument
	add := func(kind domain.DocumentKind, text string) {
		docs = append(docs, domain.PatientDocument{
			ID:        documentID(patientID, kind),
			PatientID: patientID,
			Kind:      kind,
			Text:      text,
		})
	}

	if strings.TrimSpace(profile.Name) != "" || strings.TrimSpace(profile.Procedure) != "" {
		add(domain.DocumentKindSummary, fmt.Sprintf("%s (%dy). Procedure: %s by %s.",
			profile.Name, profile.Age, profile.Procedure, profile.Surgeon))
	}

	if !profile.EmergencyContact.IsEmpty() {
		contact := strings.TrimSpace(profile.EmergencyContact.Name + " " + profile.EmergencyContact.Phone)
		add(domain.DocumentKindContacts, "Emergency: "+contact)
	}

	if allergies := nonBlank(profile.Allergies); len(allergies) > 0 {
		add(domain.DocumentKindAllergies, "Allergies: "+strings.Join(allergies, ", "))
	}

	meds := make([]string, 0, len(profile.Medications))
	for _, m := range profile.Medications {
		if line := m.String(); line != "" {
			meds = append(meds, line)
		}
	}
	if len(meds) > 0 {
		add(domain.DocumentKindMeds, "Medication plan: "+strings.Join(meds, "; "))
	}

	if flags := nonBlank(profile.RedFlags); len(flags) > 0 {
		add(domain.DocumentKindRedFlags, "Critical symptoms: "+strings.Join(flags, "; "))
	}

	return docs
}

// documentID is unique per call so re-ingestion never silently overwrites.
func documentID(patientID string, kind domain.DocumentKind) string {
	return fmt.Sprintf("postop:doc:%s:%s:%s", patientID, kind, uuid.NewString())
}

func nonBlank(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

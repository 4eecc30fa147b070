package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/postop/internal/adapters/driven/storage/vector"
	"github.com/custodia-labs/postop/internal/core/domain"
	"github.com/custodia-labs/postop/internal/core/ports/driven"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

// VectorStore is an in-memory implementation of driven.VectorStore.
// Documents are partitioned by patient ID, so a query only ever scans
// the requesting patient's partition.
type VectorStore struct {
	mu       sync.RWMutex
	seq      int64
	patients map[string]*partition
}

type partition struct {
	dims int
	docs []vector.Candidate
}

// NewVectorStore creates a new in-memory vector store.
func NewVectorStore() *VectorStore {
	return &VectorStore{
		patients: make(map[string]*partition),
	}
}

// Upsert inserts documents, replacing any with the same ID in place.
func (s *VectorStore) Upsert(_ context.Context, docs []domain.PatientDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkDims(docs, false); err != nil {
		return err
	}
	for i := range docs {
		s.put(&docs[i])
	}
	return nil
}

// ReplacePatient swaps the patient's whole document set under the write lock,
// so readers see either the old set or the new one.
func (s *VectorStore) ReplacePatient(_ context.Context, patientID string, docs []domain.PatientDocument) error {
	for i := range docs {
		if docs[i].PatientID != patientID {
			return fmt.Errorf("%w: document %s belongs to %q, not %q",
				domain.ErrInvalidInput, docs[i].ID, docs[i].PatientID, patientID)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkDims(docs, true); err != nil {
		return err
	}
	delete(s.patients, patientID)
	for i := range docs {
		s.put(&docs[i])
	}
	return nil
}

// Query returns the k nearest documents of patientID.
func (s *VectorStore) Query(_ context.Context, query []float32, patientID string, k int) ([]domain.RetrievalHit, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: k must be at least 1", domain.ErrInvalidInput)
	}

	s.mu.RLock()
	p, ok := s.patients[patientID]
	if !ok {
		s.mu.RUnlock()
		return []domain.RetrievalHit{}, nil
	}
	candidates := make([]vector.Candidate, len(p.docs))
	copy(candidates, p.docs)
	s.mu.RUnlock()

	return vector.Rank(query, candidates, k)
}

// CountByPatient returns how many documents the patient has.
func (s *VectorStore) CountByPatient(_ context.Context, patientID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.patients[patientID]; ok {
		return len(p.docs), nil
	}
	return 0, nil
}

// Close is a no-op for the memory store.
func (s *VectorStore) Close() error {
	return nil
}

// checkDims verifies every vector matches its patient's recorded dimension.
// When replacing, the existing partitions are ignored.
func (s *VectorStore) checkDims(docs []domain.PatientDocument, replacing bool) error {
	seen := make(map[string]int)
	for _, d := range docs {
		want, ok := seen[d.PatientID]
		if !ok && !replacing {
			if p, exists := s.patients[d.PatientID]; exists && len(p.docs) > 0 {
				want, ok = p.dims, true
			}
		}
		if ok && want != len(d.Vector) {
			return fmt.Errorf("%w: document %s has %d dimensions, patient %s uses %d",
				domain.ErrDimensionMismatch, d.ID, len(d.Vector), d.PatientID, want)
		}
		seen[d.PatientID] = len(d.Vector)
	}
	return nil
}

// put must be called with the write lock held.
func (s *VectorStore) put(doc *domain.PatientDocument) {
	p, ok := s.patients[doc.PatientID]
	if !ok {
		p = &partition{dims: len(doc.Vector)}
		s.patients[doc.PatientID] = p
	}

	vec := make([]float32, len(doc.Vector))
	copy(vec, doc.Vector)

	for i := range p.docs {
		if p.docs[i].ID == doc.ID {
			p.docs[i].Kind = doc.Kind
			p.docs[i].Text = doc.Text
			p.docs[i].Vector = vec
			return
		}
	}

	s.seq++
	p.docs = append(p.docs, vector.Candidate{
		Seq:       s.seq,
		ID:        doc.ID,
		PatientID: doc.PatientID,
		Kind:      doc.Kind,
		Text:      doc.Text,
		Vector:    vec,
	})
}

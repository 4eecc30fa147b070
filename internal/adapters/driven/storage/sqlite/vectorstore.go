package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/postop/internal/adapters/driven/storage/vector"
	"github.com/custodia-labs/postop/internal/core/domain"
	"github.com/custodia-labs/postop/internal/core/ports/driven"
)

// vectorStore wraps Store to implement driven.VectorStore.
type vectorStore struct {
	store *Store
}

var _ driven.VectorStore = (*vectorStore)(nil)

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Upsert inserts documents or updates them in place, keeping their original
// insertion order.
func (s *vectorStore) Upsert(ctx context.Context, docs []domain.PatientDocument) error {
	if len(docs) == 0 {
		return nil
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	dims := make(map[string]int)
	for i := range docs {
		if err := checkDimensions(ctx, tx, dims, &docs[i]); err != nil {
			return err
		}
		if err := upsertDocument(ctx, tx, &docs[i]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing documents: %w", err)
	}
	return nil
}

// ReplacePatient deletes the patient's documents and inserts docs in one
// transaction. Readers see the old set until commit.
func (s *vectorStore) ReplacePatient(ctx context.Context, patientID string, docs []domain.PatientDocument) error {
	for i := range docs {
		if docs[i].PatientID != patientID {
			return fmt.Errorf("%w: document %s belongs to %q, not %q",
				domain.ErrInvalidInput, docs[i].ID, docs[i].PatientID, patientID)
		}
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM patient_documents WHERE patient_id = ?", patientID); err != nil {
		return fmt.Errorf("deleting documents of %s: %w", patientID, err)
	}

	dims := make(map[string]int)
	for i := range docs {
		if err := checkDimensions(ctx, tx, dims, &docs[i]); err != nil {
			return err
		}
		if err := upsertDocument(ctx, tx, &docs[i]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing documents: %w", err)
	}
	return nil
}

// Query scans only the patient's rows and ranks them by cosine distance.
func (s *vectorStore) Query(ctx context.Context, query []float32, patientID string, k int) ([]domain.RetrievalHit, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: k must be at least 1", domain.ErrInvalidInput)
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT seq, id, patient_id, kind, text, vector
		FROM patient_documents
		WHERE patient_id = ?
		ORDER BY seq
	`, patientID)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var candidates []vector.Candidate
	for rows.Next() {
		var c vector.Candidate
		var kind string
		var blob []byte
		if err := rows.Scan(&c.Seq, &c.ID, &c.PatientID, &kind, &c.Text, &blob); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		c.Kind = domain.DocumentKind(kind)
		if c.Vector, err = vector.Decode(blob); err != nil {
			return nil, fmt.Errorf("document %s: %w", c.ID, err)
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	return vector.Rank(query, candidates, k)
}

// CountByPatient returns how many documents the patient has.
func (s *vectorStore) CountByPatient(ctx context.Context, patientID string) (int, error) {
	var count int
	err := s.store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM patient_documents WHERE patient_id = ?", patientID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting documents: %w", err)
	}
	return count, nil
}

// Close is a no-op; the owning Store closes the database.
func (s *vectorStore) Close() error {
	return nil
}

// checkDimensions compares the document's vector length with the patient's
// recorded dimension, caching lookups in dims for the current transaction.
func checkDimensions(ctx context.Context, db execer, dims map[string]int, doc *domain.PatientDocument) error {
	if len(doc.Vector) == 0 {
		return fmt.Errorf("%w: document %s has no vector", domain.ErrInvalidInput, doc.ID)
	}

	want, ok := dims[doc.PatientID]
	if !ok {
		err := db.QueryRowContext(ctx, `
			SELECT dims FROM patient_documents
			WHERE patient_id = ? AND id != ?
			ORDER BY seq LIMIT 1
		`, doc.PatientID, doc.ID).Scan(&want)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			want = len(doc.Vector)
		case err != nil:
			return fmt.Errorf("reading dimensions of %s: %w", doc.PatientID, err)
		}
		dims[doc.PatientID] = want
	}

	if want != len(doc.Vector) {
		return fmt.Errorf("%w: document %s has %d dimensions, patient %s uses %d",
			domain.ErrDimensionMismatch, doc.ID, len(doc.Vector), doc.PatientID, want)
	}
	return nil
}

func upsertDocument(ctx context.Context, db execer, doc *domain.PatientDocument) error {
	created := doc.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO patient_documents (id, patient_id, kind, text, vector, dims, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			patient_id = excluded.patient_id,
			kind = excluded.kind,
			text = excluded.text,
			vector = excluded.vector,
			dims = excluded.dims
	`, doc.ID, doc.PatientID, doc.Kind.String(), doc.Text,
		vector.Encode(doc.Vector), len(doc.Vector), created)
	if err != nil {
		return fmt.Errorf("saving document %s: %w", doc.ID, err)
	}
	return nil
}

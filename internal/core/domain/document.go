package domain

import "time"

// DocumentKind identifies which part of a profile a document was built from.
type DocumentKind string

// Document kinds, one per profile category.
const (
	DocumentKindSummary   DocumentKind = "summary"
	DocumentKindContacts  DocumentKind = "contacts"
	DocumentKindAllergies DocumentKind = "allergies"
	DocumentKindMeds      DocumentKind = "meds"
	DocumentKindRedFlags  DocumentKind = "red_flags"
)

// IsValid returns true if the kind is recognised.
func (k DocumentKind) IsValid() bool {
	switch k {
	case DocumentKindSummary, DocumentKindContacts, DocumentKindAllergies,
		DocumentKindMeds, DocumentKindRedFlags:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (k DocumentKind) String() string {
	return string(k)
}

// AllDocumentKinds returns every kind in generation order.
func AllDocumentKinds() []DocumentKind {
	return []DocumentKind{
		DocumentKindSummary,
		DocumentKindContacts,
		DocumentKindAllergies,
		DocumentKindMeds,
		DocumentKindRedFlags,
	}
}

// PatientDocument is an embedded context snippet owned by exactly one patient.
// PatientID is the isolation boundary: a document is only retrievable under it.
type PatientDocument struct {
	// ID is unique per ingestion call.
	ID string

	// PatientID owns the document.
	PatientID string

	// Kind is the profile category the text came from.
	Kind DocumentKind

	// Text is the snippet handed to the language model verbatim.
	Text string

	// Vector is the embedding of Text.
	Vector []float32

	// CreatedAt is when the document was ingested.
	CreatedAt time.Time
}

// RetrievalHit is one ranked result of a patient-scoped query.
// Hits are never persisted.
type RetrievalHit struct {
	Text      string       `json:"text"`
	Kind      DocumentKind `json:"kind"`
	PatientID string       `json:"patient_id"`

	// Distance is the store's metric; lower is closer.
	Distance float64 `json:"distance"`
}

package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocumentKind_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		kind     DocumentKind
		expected bool
	}{
		{"summary", DocumentKindSummary, true},
		{"contacts", DocumentKindContacts, true},
		{"allergies", DocumentKindAllergies, true},
		{"meds", DocumentKindMeds, true},
		{"red_flags", DocumentKindRedFlags, true},
		{"empty", DocumentKind(""), false},
		{"unknown", DocumentKind("notes"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.kind.IsValid())
		})
	}
}

func TestAllDocumentKinds(t *testing.T) {
	kinds := AllDocumentKinds()

	assert.Len(t, kinds, 5)
	assert.Equal(t, DocumentKindSummary, kinds[0])
	assert.Equal(t, DocumentKindContacts, kinds[1])
	for _, k := range kinds {
		assert.True(t, k.IsValid(), "kind %s should be valid", k)
	}
}

func TestDocumentKind_String(t *testing.T) {
	assert.Equal(t, "red_flags", DocumentKindRedFlags.String())
}

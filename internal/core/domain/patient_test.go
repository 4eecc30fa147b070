package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMedication_String(t *testing.T) {
	tests := []struct {
		name     string
		med      Medication
		expected string
	}{
		{"all fields", Medication{Name: "Ibuprofen", Dose: "400 mg", Freq: "q8h"}, "Ibuprofen 400 mg q8h"},
		{"missing dose", Medication{Name: "Ondansetron", Freq: "as needed"}, "Ondansetron as needed"},
		{"trims whitespace", Medication{Name: " Aspirin ", Dose: " 81 mg", Freq: "daily "}, "Aspirin 81 mg daily"},
		{"empty", Medication{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.med.String())
		})
	}
}

func TestEmergencyContact_IsEmpty(t *testing.T) {
	assert.True(t, EmergencyContact{}.IsEmpty())
	assert.True(t, EmergencyContact{Name: "  "}.IsEmpty())
	assert.False(t, EmergencyContact{Phone: "+1-555-200-1000"}.IsEmpty())
}

func TestPatientProfile_Validate(t *testing.T) {
	t.Run("name only is valid", func(t *testing.T) {
		assert.NoError(t, PatientProfile{Name: "Alice Lee"}.Validate())
	})

	t.Run("procedure only is valid", func(t *testing.T) {
		assert.NoError(t, PatientProfile{Procedure: "Cesarean section"}.Validate())
	})

	t.Run("empty profile is invalid", func(t *testing.T) {
		err := PatientProfile{}.Validate()
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("negative age is invalid", func(t *testing.T) {
		err := PatientProfile{Name: "Bob", Age: -1}.Validate()
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

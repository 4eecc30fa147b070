package domain

import (
	"fmt"
	"strings"
)

// EmergencyContact is the person reached when a patient triages at level 3.
type EmergencyContact struct {
	Name  string `json:"name" yaml:"name"`
	Phone string `json:"phone" yaml:"phone"`
}

// IsEmpty returns true if neither name nor phone is set.
func (c EmergencyContact) IsEmpty() bool {
	return strings.TrimSpace(c.Name) == "" && strings.TrimSpace(c.Phone) == ""
}

// Medication is one entry of a patient's post-operative medication plan.
type Medication struct {
	Name string `json:"name" yaml:"name"`
	Dose string `json:"dose" yaml:"dose"`
	Freq string `json:"freq" yaml:"freq"`

	// DurationDays is optional; nil means "until told otherwise".
	DurationDays *int `json:"duration_days,omitempty" yaml:"duration_days,omitempty"`
}

// String renders the medication as "name dose freq".
func (m Medication) String() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{m.Name, m.Dose, m.Freq} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// PatientProfile is the source of truth for document generation.
// One profile produces exactly one document per non-empty category.
type PatientProfile struct {
	Name             string           `json:"name" yaml:"name"`
	Age              int              `json:"age" yaml:"age"`
	Surgeon          string           `json:"surgeon" yaml:"surgeon"`
	Procedure        string           `json:"procedure" yaml:"procedure"`
	EmergencyContact EmergencyContact `json:"emergency_contact" yaml:"emergency_contact"`
	Allergies        []string         `json:"allergies" yaml:"allergies"`
	Medications      []Medication     `json:"medications" yaml:"medications"`
	RedFlags         []string         `json:"red_flags" yaml:"red_flags"`
}

// Validate checks the profile carries enough information to build a summary.
func (p PatientProfile) Validate() error {
	if strings.TrimSpace(p.Name) == "" && strings.TrimSpace(p.Procedure) == "" {
		return fmt.Errorf("%w: profile needs a name or a procedure", ErrInvalidInput)
	}
	if p.Age < 0 {
		return fmt.Errorf("%w: age must not be negative", ErrInvalidInput)
	}
	return nil
}

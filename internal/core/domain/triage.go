package domain

import "time"

// Triage levels. A nil level is a valid outcome meaning "no signal".
const (
	// TriageRoutine is self-care guidance from the patient's context.
	TriageRoutine = 1

	// TriageFollowUp is routine advice plus a clinician appointment.
	TriageFollowUp = 2

	// TriageUrgent requires the emergency contact to reach the patient.
	TriageUrgent = 3
)

// TriageDecision is the structured outcome of one chat turn.
type TriageDecision struct {
	// Level is 1..3, or nil when neither the model nor the fallback produced one.
	Level *int

	// AssistantText is the reply shown to the patient.
	AssistantText string

	// Alert is the model's request to notify the care team.
	Alert bool
}

// ShouldAlert returns true only when alert is set and the level is exactly urgent.
func (d TriageDecision) ShouldAlert() bool {
	return d.Alert && d.Level != nil && *d.Level == TriageUrgent
}

// LevelPtr returns a pointer to the given level.
func LevelPtr(level int) *int {
	return &level
}

// Alert is an append-only record of a level-3 event.
type Alert struct {
	Timestamp time.Time `json:"ts"`
	PatientID string    `json:"patient_id"`
	Message   string    `json:"message"`
}

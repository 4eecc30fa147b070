package domain

// ChatRequest is one patient message.
type ChatRequest struct {
	PatientID string `json:"patient_id"`
	Message   string `json:"message"`
}

// ChatResponse is the result of one chat turn.
type ChatResponse struct {
	PatientID   string   `json:"patient_id"`
	ContextUsed []string `json:"context_used"`
	Answer      string   `json:"answer"`
	ContactHint string   `json:"contact_hint"`
	TriageLevel *int     `json:"triage_level"`
	AlertSent   bool     `json:"alert_sent"`
}

// ChatState is a step of the per-turn state machine.
type ChatState string

// Chat turn states in the order they are visited.
const (
	ChatStateRetrieving          ChatState = "retrieving"
	ChatStatePrompting           ChatState = "prompting"
	ChatStateAwaitingModel       ChatState = "awaiting_model"
	ChatStateParsing             ChatState = "parsing"
	ChatStateDecided             ChatState = "decided"
	ChatStateFallbackClassifying ChatState = "fallback_classifying"
	ChatStateAlerting            ChatState = "alerting"
	ChatStateDone                ChatState = "done"
	ChatStateFailed              ChatState = "failed"
)

// IsTerminal returns true for states that end a turn.
func (s ChatState) IsTerminal() bool {
	return s == ChatStateDone || s == ChatStateFailed
}

// String returns the string representation.
func (s ChatState) String() string {
	return string(s)
}

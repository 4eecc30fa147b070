package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations return a built-in default
	// or an error.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names.
const (
	// PromptTriageSystem is the system prompt for a chat turn.
	// The template expects a single %s placeholder for the patient context block.
	PromptTriageSystem = "triage_system"
)

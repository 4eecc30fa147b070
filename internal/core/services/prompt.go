package services

import (
	"strings"

	"github.com/custodia-labs/postop/internal/core/domain"
	"github.com/custodia-labs/postop/internal/core/ports/driven"
)

// NoContextSentinel stands in for the context block when retrieval found nothing.
const NoContextSentinel = "(no context)"

// contextPlaceholder marks where the context block goes in a prompt template.
const contextPlaceholder = "%s"

// DefaultTriagePrompt is the built-in system prompt for a chat turn.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
const DefaultTriagePrompt = `You are a post-operative patient assistant. Answer using ONLY the patient context below.
You MUST reply with a single JSON object with the keys "triage_level", "assistant" and "alert".

--- Triage levels ---
1. Level 1: routine self-care guidance drawn from the instructions and medication plan in the context.
2. Level 2: give the Level 1 advice AND ask the patient to schedule an appointment with their clinician.
3. Level 3: tell the patient they will be contacted shortly by their emergency contact (listed in the context). Set "alert": true.

--- Greetings and closings ---
- If the patient says "hi", "hello" or "hey": set "triage_level": 1, "alert": false and "assistant": "Hello! I'm here to help with your post-operative questions. We are here for you if you need anything."
- If the patient says "thanks" or "thank you": set "triage_level": 1, "alert": false and "assistant": "You're very welcome! We are here for you if you have any other questions."
- If the patient says "bye" or "goodbye": set "triage_level": 1, "alert": false and "assistant": "Goodbye! Take care and please remember to stay on track with your prescribed medications. We are here for you."

--- General rules ---
- Apply the triage levels to every other medical or recovery question.
- NEVER mention medications, dosage or frequency unless the patient explicitly asks about their medication or the reply is a sign-off (bye/goodbye).
- Never invent medications. Quote names, doses and frequencies only from the context.
- If the information is missing from the context, say so and suggest contacting the clinician.
- Always sound caring and reassuring.

PATIENT CONTEXT:
%s`

// FormatContextLines renders hits as "- text" lines in rank order.
func FormatContextLines(hits []domain.RetrievalHit) []string {
	lines := make([]string, 0, len(hits))
	for _, h := range hits {
		lines = append(lines, "- "+h.Text)
	}
	return lines
}

// ContextBlock joins context lines, or returns NoContextSentinel when empty.
func ContextBlock(lines []string) string {
	if len(lines) == 0 {
		return NoContextSentinel
	}
	return strings.Join(lines, "\n")
}

// ContactHint returns the first line that looks like an emergency contact,
// matched by content, with its list marker removed.
func ContactHint(lines []string) string {
	for _, line := range lines {
		if strings.Contains(line, "Emergency:") {
			return strings.TrimPrefix(line, "- ")
		}
	}
	return ""
}

// PromptBuilder assembles the system prompt for a chat turn.
type PromptBuilder struct {
	store driven.PromptStore
}

// NewPromptBuilder creates a prompt builder.
// The store is optional; without it DefaultTriagePrompt is used.
func NewPromptBuilder(store driven.PromptStore) *PromptBuilder {
	return &PromptBuilder{store: store}
}

// Build returns the system prompt with the context lines embedded verbatim.
func (b *PromptBuilder) Build(lines []string) string {
	template := b.template()
	block := ContextBlock(lines)

	if !strings.Contains(template, contextPlaceholder) {
		return template + "\n\nPATIENT CONTEXT:\n" + block
	}
	return strings.Replace(template, contextPlaceholder, block, 1)
}

func (b *PromptBuilder) template() string {
	if b == nil || b.store == nil {
		return DefaultTriagePrompt
	}
	tmpl, err := b.store.Load(driven.PromptTriageSystem)
	if err != nil || strings.TrimSpace(tmpl) == "" {
		return DefaultTriagePrompt
	}
	return tmpl
}

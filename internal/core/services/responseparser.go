package services

import (
	"encoding/json"
	"errors"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/custodia-labs/postop/internal/core/domain"
)

// FallbackAssistantText replaces a missing or empty "assistant" field.
const FallbackAssistantText = "I found some information but could not formulate a reply."

var (
	jsonFencePattern = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")
	anyFencePattern  = regexp.MustCompile("(?s)```\\s*(.*?)\\s*```")
)

// extractStep narrows raw model text to a candidate; ok is false when the
// step does not apply and the next one should be tried.
type extractStep func(text string) (candidate string, ok bool)

// candidateSteps run in order; the raw text is used when none applies.
var candidateSteps = []extractStep{
	fencedBlock(jsonFencePattern),
	fencedBlock(anyFencePattern),
}

func fencedBlock(pattern *regexp.Regexp) extractStep {
	return func(text string) (string, bool) {
		m := pattern.FindStringSubmatch(text)
		if m == nil {
			return "", false
		}
		return m[1], true
	}
}

// candidateText applies the fence steps to raw.
func candidateText(raw string) string {
	for _, step := range candidateSteps {
		if candidate, ok := step(raw); ok {
			return candidate
		}
	}
	return raw
}

// braceSpan returns text from the first '{' to the last '}' inclusive.
func braceSpan(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

// decodeObject parses span as exactly one non-empty JSON object.
// An empty object carries no decision and counts as unparseable.
func decodeObject(span string) (map[string]any, bool) {
	dec := json.NewDecoder(strings.NewReader(span))
	dec.UseNumber()

	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, false
	}
	// Trailing content after the object means the braces did not delimit one value.
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, false
	}
	return fields, len(fields) > 0
}

// ParseDecision extracts a triage decision from a raw model reply.
//
// Extraction tries a ```json fence, then any ``` fence, then the raw text,
// and parses the span between the first '{' and the last '}'. It returns nil
// whenever the reply cannot be understood; it never panics.
func ParseDecision(raw string) *domain.TriageDecision {
	span, ok := braceSpan(candidateText(raw))
	if !ok {
		return nil
	}

	fields, ok := decodeObject(span)
	if !ok {
		return nil
	}

	decision := &domain.TriageDecision{
		AssistantText: FallbackAssistantText,
	}
	if v, present := fields["triage_level"]; present {
		decision.Level = coerceLevel(v)
	}
	if text, ok := fields["assistant"].(string); ok && strings.TrimSpace(text) != "" {
		decision.AssistantText = text
	}
	decision.Alert = coerceBool(fields["alert"])

	return decision
}

// coerceLevel converts a decoded value to a triage level in 1..3.
// Numbers are truncated toward zero; numeric strings are accepted.
func coerceLevel(v any) *int {
	var level int
	switch val := v.(type) {
	case json.Number:
		if i, err := val.Int64(); err == nil {
			level = int(i)
			break
		}
		f, err := val.Float64()
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
		level = int(f)
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return nil
		}
		level = i
	default:
		return nil
	}

	if level < domain.TriageRoutine || level > domain.TriageUrgent {
		return nil
	}
	return &level
}

func coerceBool(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(val))
		return err == nil && b
	case json.Number:
		f, err := val.Float64()
		return err == nil && f != 0
	default:
		return false
	}
}

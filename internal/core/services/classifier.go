package services

import (
	"strings"

	"github.com/custodia-labs/postop/internal/core/domain"
)

// DangerSignal maps a phrase to the triage level it forces.
type DangerSignal struct {
	Phrase string
	Level  int
}

// defaultDangerSignals is the fallback vocabulary used when the model's reply
// cannot be parsed.
var defaultDangerSignals = []DangerSignal{
	{Phrase: "chest pain", Level: domain.TriageUrgent},
	{Phrase: "shortness of breath", Level: domain.TriageUrgent},
	{Phrase: "severe pain", Level: domain.TriageUrgent},
	{Phrase: "fever 39", Level: domain.TriageUrgent},
	{Phrase: "fever 40", Level: domain.TriageUrgent},
	{Phrase: "yellowing", Level: domain.TriageUrgent},
}

// DefaultDangerSignals returns a copy of the built-in danger-signal table.
func DefaultDangerSignals() []DangerSignal {
	out := make([]DangerSignal, len(defaultDangerSignals))
	copy(out, defaultDangerSignals)
	return out
}

// KeywordClassifier is the deterministic triage fallback.
// It only ever raises a level; it never lowers one.
type KeywordClassifier struct {
	signals []DangerSignal
}

// NewKeywordClassifier creates a classifier over signals.
// With no signals the built-in table is used.
func NewKeywordClassifier(signals ...DangerSignal) *KeywordClassifier {
	if len(signals) == 0 {
		signals = DefaultDangerSignals()
	}
	normalised := make([]DangerSignal, 0, len(signals))
	for _, s := range signals {
		phrase := strings.ToLower(strings.TrimSpace(s.Phrase))
		if phrase == "" {
			continue
		}
		normalised = append(normalised, DangerSignal{Phrase: phrase, Level: s.Level})
	}
	return &KeywordClassifier{signals: normalised}
}

// Matches returns the signals found in message, in table order.
func (c *KeywordClassifier) Matches(message string) []DangerSignal {
	low := strings.ToLower(message)
	var found []DangerSignal
	for _, s := range c.signals {
		if strings.Contains(low, s.Phrase) {
			found = append(found, s)
		}
	}
	return found
}

// Classify returns the highest level among matched signals and whether it
// requires an alert. With no match it returns (nil, false).
func (c *KeywordClassifier) Classify(message string) (*int, bool) {
	matches := c.Matches(message)
	if len(matches) == 0 {
		return nil, false
	}

	level := matches[0].Level
	for _, m := range matches[1:] {
		if m.Level > level {
			level = m.Level
		}
	}
	return &level, level == domain.TriageUrgent
}

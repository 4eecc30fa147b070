package driven

// ConfigStore holds flat dot-separated settings keys such as "llm.provider".
// Typed getters return the zero value for missing keys and wrong types.
type ConfigStore interface {
	// Get returns the raw value and whether the key is set.
	Get(key string) (any, bool)

	GetString(key string) string
	GetInt(key string) int
	GetBool(key string) bool

	// GetFloat accepts integer values too.
	GetFloat(key string) float64

	// Set stores a value. File-backed stores persist it immediately.
	Set(key string, value any) error

	// Path describes where values are kept, for display.
	Path() string
}

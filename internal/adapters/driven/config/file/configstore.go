package file

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/postop/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigFileName is the settings file inside the config directory.
const ConfigFileName = "config.toml"

// ConfigStore keeps settings in a TOML file under dotted keys. "llm.model"
// is written as model inside an [llm] table, and files edited by hand may
// use either form.
//
// Overrides, usually API keys from the environment, shadow file values on
// read and never reach the file.
type ConfigStore struct {
	mu        sync.RWMutex
	filePath  string
	data      map[string]any
	overrides map[string]any
}

// NewConfigStore opens configDir/config.toml, creating the directory if
// needed. An empty configDir means ~/.postop.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".postop")
	}
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}

	s := &ConfigStore{
		filePath:  filepath.Join(configDir, ConfigFileName),
		data:      make(map[string]any),
		overrides: make(map[string]any),
	}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Get returns the override for key if there is one, else the file value.
func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if val, ok := s.overrides[key]; ok {
		return val, true
	}
	val, ok := s.data[key]
	return val, ok
}

// Override shadows key with value until the process exits. An empty
// string removes the override.
func (s *ConfigStore) Override(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if str, ok := value.(string); ok && str == "" {
		delete(s.overrides, key)
		return
	}
	s.overrides[key] = value
}

// ApplyEnv overrides keys from environment variables and returns the keys
// it set, sorted. bindings maps a key to candidate variables, first set
// wins. A key with a non-empty string in the file keeps the file value.
func (s *ConfigStore) ApplyEnv(bindings map[string][]string) []string {
	var applied []string
	for key, vars := range bindings {
		if s.fileString(key) != "" {
			continue
		}
		for _, name := range vars {
			if v := os.Getenv(name); v != "" {
				s.Override(key, v)
				applied = append(applied, key)
				break
			}
		}
	}
	sort.Strings(applied)
	return applied
}

func (s *ConfigStore) fileString(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	str, _ := s.data[key].(string)
	return str
}

func (s *ConfigStore) GetString(key string) string {
	val, _ := s.Get(key)
	str, _ := val.(string)
	return str
}

// GetInt accepts the int64 the TOML decoder produces as well as int.
func (s *ConfigStore) GetInt(key string) int {
	val, _ := s.Get(key)
	switch v := val.(type) {
	case int64:
		return int(v)
	case int:
		return v
	}
	return 0
}

func (s *ConfigStore) GetBool(key string) bool {
	val, _ := s.Get(key)
	b, _ := val.(bool)
	return b
}

// GetFloat also accepts integers, since a hand-edited rate may read "2".
func (s *ConfigStore) GetFloat(key string) float64 {
	val, _ := s.Get(key)
	switch v := val.(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	}
	return 0
}

// Set stores value and rewrites the file. Setting a key to its current
// override string is a no-op, so settings read back and saved do not
// leak environment secrets to disk. Any other value drops the override.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if current, ok := s.overrides[key]; ok {
		if str, isStr := value.(string); isStr && current == str {
			return nil
		}
		delete(s.overrides, key)
	}
	s.data[key] = value
	return s.save()
}

// Save rewrites the file from memory.
func (s *ConfigStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save()
}

// save requires s.mu held.
func (s *ConfigStore) save() error {
	out, err := toml.Marshal(nest(s.data))
	if err != nil {
		return err
	}
	return os.WriteFile(s.filePath, out, 0600)
}

// Load replaces the in-memory values with the file's. A missing file
// leaves the store empty.
func (s *ConfigStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.filePath)
	if errors.Is(err, fs.ErrNotExist) {
		s.data = make(map[string]any)
		return nil
	}
	if err != nil {
		return err
	}

	var tree map[string]any
	if err := toml.Unmarshal(raw, &tree); err != nil {
		return err
	}
	s.data = make(map[string]any)
	flatten(tree, "", s.data)
	return nil
}

// Path returns the config file location.
func (s *ConfigStore) Path() string {
	return s.filePath
}

func flatten(tree map[string]any, prefix string, into map[string]any) {
	for k, v := range tree {
		if prefix != "" {
			k = prefix + "." + k
		}
		if sub, ok := v.(map[string]any); ok {
			flatten(sub, k, into)
			continue
		}
		into[k] = v
	}
}

// nest turns dotted keys into tables. A key whose path collides with a
// value already placed stays as one quoted top-level key; flatten reads
// both forms back the same way.
func nest(flat map[string]any) map[string]any {
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tree := make(map[string]any)
	for _, key := range keys {
		if !place(tree, strings.Split(key, "."), flat[key]) {
			tree[key] = flat[key]
		}
	}
	return tree
}

func place(tree map[string]any, path []string, value any) bool {
	for _, part := range path[:len(path)-1] {
		next, exists := tree[part]
		if !exists {
			sub := make(map[string]any)
			tree[part] = sub
			tree = sub
			continue
		}
		sub, ok := next.(map[string]any)
		if !ok {
			return false
		}
		tree = sub
	}
	last := path[len(path)-1]
	if _, exists := tree[last]; exists {
		return false
	}
	tree[last] = value
	return true
}

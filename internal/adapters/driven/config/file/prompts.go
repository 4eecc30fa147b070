package file

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/postop/internal/core/ports/driven"
	"github.com/custodia-labs/postop/internal/core/services"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

//go:embed prompts_readme.md
var promptsReadme string

// builtinPrompts seed new prompt directories and stand in for missing or empty files.
var builtinPrompts = map[string]string{
	driven.PromptTriageSystem: services.DefaultTriagePrompt,
}

// cachedPrompt remembers the file state a prompt was read at.
type cachedPrompt struct {
	text    string
	modTime time.Time
	size    int64
}

// PromptStore reads prompt templates from <dir>/<name>.txt.
// A file is re-read when its size or modification time changes, so a
// long-running MCP server follows edits without restarting.
type PromptStore struct {
	dir string

	setup    sync.Once
	setupErr error

	mu    sync.Mutex
	cache map[string]cachedPrompt
}

// NewPromptStore creates a store rooted at dir, default ~/.postop/prompts.
// Nothing is written until the first Load.
func NewPromptStore(dir string) (*PromptStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		dir = filepath.Join(home, ".postop", "prompts")
	}
	return &PromptStore{dir: dir, cache: make(map[string]cachedPrompt)}, nil
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.dir
}

// Load returns the named template. Missing, empty or unreadable files fall
// back to the built-in prompt; unknown names without a file are an error.
func (s *PromptStore) Load(name string) (string, error) {
	s.setup.Do(func() { s.setupErr = s.writeDefaults() })

	builtin, known := builtinPrompts[name]
	if s.setupErr != nil {
		if known {
			return builtin, nil
		}
		return "", fmt.Errorf("prompt %q: %w", name, s.setupErr)
	}

	text, err := s.read(name)
	switch {
	case err == nil && text != "":
		return text, nil
	case known:
		return builtin, nil
	case err == nil:
		return "", fmt.Errorf("prompt %q is empty", name)
	default:
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}
}

// Reload drops every cached prompt.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]cachedPrompt)
	s.mu.Unlock()
}

func (s *PromptStore) read(name string) (string, error) {
	path := s.path(name)
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.cache[name]; ok && c.modTime.Equal(info.ModTime()) && c.size == info.Size() {
		return c.text, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(string(data))
	s.cache[name] = cachedPrompt{text: text, modTime: info.ModTime(), size: info.Size()}
	return text, nil
}

// writeDefaults creates the directory, the built-in prompt files and a
// README, leaving existing files untouched.
func (s *PromptStore) writeDefaults() error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("create prompt directory: %w", err)
	}

	files := map[string]string{"README.md": promptsReadme}
	for name, text := range builtinPrompts {
		files[name+".txt"] = text + "\n"
	}
	for file, content := range files {
		path := filepath.Join(s.dir, file)
		if _, err := os.Stat(path); !errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			return fmt.Errorf("write %s: %w", file, err)
		}
	}
	return nil
}

func (s *PromptStore) path(name string) string {
	return filepath.Join(s.dir, name+".txt")
}

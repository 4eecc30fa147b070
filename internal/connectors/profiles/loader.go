package profiles

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/postop/internal/core/domain"
)

//go:embed seed/patients.yaml
var seedFS embed.FS

// Entry is one profile read from a file or the seed set.
type Entry struct {
	PatientID string
	Profile   domain.PatientProfile
	Path      string
}

// document is the on-disk shape: a profile with an optional patient_id.
type document struct {
	PatientID             string `json:"patient_id" yaml:"patient_id"`
	domain.PatientProfile `yaml:",inline"`
}

// IsProfileFile reports whether path has a supported extension and is not hidden.
func IsProfileFile(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return false
	}
	switch strings.ToLower(filepath.Ext(base)) {
	case ".yaml", ".yml", ".json":
		return true
	default:
		return false
	}
}

// LoadFile reads one profile file.
func LoadFile(path string) (Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Entry{}, fmt.Errorf("read profile: %w", err)
	}

	entry, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return Entry{}, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	if entry.PatientID == "" {
		base := filepath.Base(path)
		entry.PatientID = strings.TrimSuffix(base, filepath.Ext(base))
	}
	entry.Path = path
	return entry, nil
}

// Parse decodes a profile. ext selects the format (".json" or YAML otherwise).
func Parse(data []byte, ext string) (Entry, error) {
	var doc document
	if strings.EqualFold(ext, ".json") {
		dec := json.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(&doc); err != nil {
			return Entry{}, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
		}
	} else if err := yaml.Unmarshal(data, &doc); err != nil {
		return Entry{}, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}

	if err := doc.PatientProfile.Validate(); err != nil {
		return Entry{}, err
	}
	return Entry{
		PatientID: strings.TrimSpace(doc.PatientID),
		Profile:   doc.PatientProfile,
	}, nil
}

// LoadDir reads every profile file directly inside dir, sorted by file name.
// Files that fail to parse are returned in errs and skipped.
func LoadDir(dir string) (entries []Entry, errs []error, err error) {
	items, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("read profile directory: %w", err)
	}

	names := make([]string, 0, len(items))
	for _, item := range items {
		if item.IsDir() || !IsProfileFile(item.Name()) {
			continue
		}
		names = append(names, item.Name())
	}
	sort.Strings(names)

	seen := make(map[string]string, len(names))
	for _, name := range names {
		entry, loadErr := LoadFile(filepath.Join(dir, name))
		if loadErr != nil {
			errs = append(errs, loadErr)
			continue
		}
		if prev, dup := seen[entry.PatientID]; dup {
			errs = append(errs, fmt.Errorf("%w: patient %q defined in both %s and %s",
				domain.ErrInvalidInput, entry.PatientID, prev, name))
			continue
		}
		seen[entry.PatientID] = name
		entries = append(entries, entry)
	}
	return entries, errs, nil
}

// Seed returns the built-in demo patients p1 to p4.
func Seed() ([]Entry, error) {
	data, err := seedFS.ReadFile("seed/patients.yaml")
	if err != nil {
		return nil, fmt.Errorf("read seed profiles: %w", err)
	}

	var docs []document
	if err := yaml.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("parse seed profiles: %w", err)
	}

	entries := make([]Entry, 0, len(docs))
	for _, doc := range docs {
		entries = append(entries, Entry{
			PatientID: doc.PatientID,
			Profile:   doc.PatientProfile,
			Path:      "seed/patients.yaml",
		})
	}
	return entries, nil
}

package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/custodia-labs/postop/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/postop/internal/core/ports/driven"
	"github.com/custodia-labs/postop/internal/logger"
)

// DBFileName is the database file created inside the data directory.
const DBFileName = "postop.db"

// pragmas are applied to every connection the pool opens.
var pragmas = []string{
	"journal_mode(WAL)",
	"busy_timeout(5000)",
	"foreign_keys(ON)",
}

var storeLog = logger.For("sqlite")

// Store owns one database and hands out the storage ports backed by it.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (creating if needed) dataDir/postop.db and migrates it.
// An empty dataDir means ~/.postop/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".postop", "data")
	}
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	path := filepath.Join(dataDir, DBFileName)
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, path: path}
	applied, err := s.migrate(migrations.FS)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	if applied > 0 {
		storeLog.Debug("%s: applied %d migrations", path, applied)
	}
	return s, nil
}

func dsn(path string) string {
	params := make([]string, len(pragmas))
	for i, p := range pragmas {
		params[i] = "_pragma=" + p
	}
	return path + "?" + strings.Join(params, "&")
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// VectorStore returns the patient document store.
func (s *Store) VectorStore() driven.VectorStore {
	return &vectorStore{store: s}
}

// AlertSink returns the alert log.
func (s *Store) AlertSink() driven.AlertSink {
	return &alertSink{store: s}
}

// ProfileStore returns the raw profile store.
func (s *Store) ProfileStore() driven.ProfileStore {
	return &profileStore{store: s}
}

package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/sdmx-tools/sdmx-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/sdmx-tools/sdmx-cli/internal/core/domain"
	"github.com/sdmx-tools/sdmx-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.MessageCache = (*Store)(nil)

// Store is a SQLite-backed message cache.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.sdmx/data/messages.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.Wrap(err, "getting home directory")
		}
		dataDir = filepath.Join(home, ".sdmx", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, errors.Wrap(err, "creating data directory")
	}

	dbPath := filepath.Join(dataDir, "messages.db")

	// WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}

	s := &Store{db: db, path: dbPath}
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "running migrations")
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Get returns the cached message for the key.
func (s *Store) Get(ctx context.Context, key string) (*driven.CachedMessage, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT content_type, body, fetched_at FROM messages WHERE key = ?", key)
	msg := &driven.CachedMessage{Key: key}
	var fetchedAt string
	if err := row.Scan(&msg.ContentType, &msg.Body, &fetchedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrapf(domain.ErrNotFound, "message %q", key)
		}
		return nil, errors.Wrap(err, "reading cached message")
	}
	if t, err := time.Parse(time.RFC3339Nano, fetchedAt); err == nil {
		msg.FetchedAt = t
	}
	return msg, nil
}

// Put stores a message, replacing any existing entry for the key.
func (s *Store) Put(ctx context.Context, msg driven.CachedMessage) error {
	fetchedAt := msg.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (key, content_type, body, fetched_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			content_type = excluded.content_type,
			body = excluded.body,
			fetched_at = excluded.fetched_at
	`, msg.Key, msg.ContentType, msg.Body, fetchedAt.UTC().Format(time.RFC3339Nano))
	return errors.Wrap(err, "storing cached message")
}

// Delete removes the entry for the key.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM messages WHERE key = ?", key)
	return errors.Wrap(err, "deleting cached message")
}

// Prune removes entries fetched before the cutoff and reports how many
// were dropped.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM messages WHERE fetched_at < ?", cutoff.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, errors.Wrap(err, "pruning cached messages")
	}
	return res.RowsAffected()
}

// migrate applies pending up migrations from the embedded filesystem.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return errors.Wrap(err, "creating schema_migrations table")
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return errors.Wrap(err, "getting current version")
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return errors.Wrap(err, "reading migrations directory")
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		version := migrationVersion(name)
		if version == 0 || version <= currentVersion {
			continue
		}
		script, err := fs.ReadFile(fsys, name)
		if err != nil {
			return errors.Wrapf(err, "reading migration %s", name)
		}
		if _, err := s.db.Exec(string(script)); err != nil {
			return errors.Wrapf(err, "applying migration %s", name)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return errors.Wrapf(err, "recording migration %s", name)
		}
	}
	return nil
}

// migrationVersion extracts the numeric prefix of a migration file
// name, e.g. "001_messages.up.sql" -> 1. Zero means no usable prefix.
func migrationVersion(name string) int {
	idx := strings.Index(name, "_")
	if idx <= 0 {
		return 0
	}
	version := 0
	for _, r := range name[:idx] {
		if r < '0' || r > '9' {
			return 0
		}
		version = version*10 + int(r-'0')
	}
	return version
}

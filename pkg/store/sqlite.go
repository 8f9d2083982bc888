// Package store provides SQLite-based persistence for attestation
// outcomes and the audit log. The per-connection handshake state is
// purely transient; only final results land here.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// appName is used for the state directory path.
var appName = "attestd"

// SetAppName sets the name used for state directory paths. Call at
// startup to isolate state between the daemon and CLI tools sharing
// this package.
func SetAppName(name string) {
	appName = name
}

// Store provides attestation result and audit log operations. Safe for
// concurrent use; SQLite runs in WAL mode with a busy timeout.
type Store struct {
	db *sql.DB
}

// DefaultPath returns the default database path following the XDG spec.
func DefaultPath() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, appName, appName+".db")
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// WAL lets the CLI read committed results while the daemon writes.
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Without a busy timeout concurrent writes immediately return
	// SQLITE_BUSY.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// migrate creates the schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS attestation_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		endpoint TEXT NOT NULL UNIQUE,
		session_id TEXT NOT NULL,
		connection_id INTEGER NOT NULL,
		recommendation TEXT NOT NULL,
		evaluation TEXT NOT NULL,
		reason TEXT,
		reason_lang TEXT,
		measurement_error INTEGER NOT NULL DEFAULT 0,
		requests_issued INTEGER NOT NULL DEFAULT 0,
		requests_resolved INTEGER NOT NULL DEFAULT 0,
		evidence BLOB,
		created_at INTEGER DEFAULT (strftime('%s', 'now')),
		updated_at INTEGER DEFAULT (strftime('%s', 'now'))
	);
	CREATE INDEX IF NOT EXISTS idx_results_endpoint ON attestation_results(endpoint);
	CREATE INDEX IF NOT EXISTS idx_results_recommendation ON attestation_results(recommendation);

	CREATE TABLE IF NOT EXISTS audit_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp INTEGER NOT NULL,
		event_type TEXT NOT NULL,
		severity INTEGER NOT NULL,
		endpoint TEXT,
		session_id TEXT,
		details TEXT,
		created_at INTEGER DEFAULT (strftime('%s', 'now'))
	);
	CREATE INDEX IF NOT EXISTS idx_audit_log_timestamp ON audit_log(timestamp);
	CREATE INDEX IF NOT EXISTS idx_audit_log_event ON audit_log(event_type);
	CREATE INDEX IF NOT EXISTS idx_audit_log_endpoint ON audit_log(endpoint);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying database connection. Tests only.
func (s *Store) DB() *sql.DB {
	return s.db
}

package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// AuditEntry is one row of the persisted audit log.
type AuditEntry struct {
	ID        int64
	Timestamp time.Time
	EventType string
	Severity  int
	Endpoint  string
	SessionID string
	Details   map[string]string
}

// InsertAuditEntry appends an entry to the audit log.
func (s *Store) InsertAuditEntry(e *AuditEntry) error {
	var detailsJSON []byte
	if e.Details != nil {
		var err error
		detailsJSON, err = json.Marshal(e.Details)
		if err != nil {
			return fmt.Errorf("failed to serialize details: %w", err)
		}
	}

	_, err := s.db.Exec(`
		INSERT INTO audit_log (timestamp, event_type, severity, endpoint, session_id, details)
		VALUES (?, ?, ?, ?, ?, ?)
	`, e.Timestamp.Unix(), e.EventType, e.Severity, e.Endpoint, e.SessionID, detailsJSON)

	if err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}
	return nil
}

// ListAuditEntries returns the most recent entries, newest first,
// limited to the given count (all entries if limit <= 0).
func (s *Store) ListAuditEntries(limit int) ([]*AuditEntry, error) {
	query := `
		SELECT id, timestamp, event_type, severity, endpoint, session_id, details
		FROM audit_log ORDER BY timestamp DESC, id DESC
	`
	var rows *sql.Rows
	var err error
	if limit > 0 {
		rows, err = s.db.Query(query+" LIMIT ?", limit)
	} else {
		rows, err = s.db.Query(query)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []*AuditEntry
	for rows.Next() {
		var e AuditEntry
		var ts int64
		var endpoint, sessionID, detailsJSON sql.NullString

		if err := rows.Scan(&e.ID, &ts, &e.EventType, &e.Severity, &endpoint, &sessionID, &detailsJSON); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}

		e.Timestamp = time.Unix(ts, 0)
		if endpoint.Valid {
			e.Endpoint = endpoint.String
		}
		if sessionID.Valid {
			e.SessionID = sessionID.String
		}
		if detailsJSON.Valid && detailsJSON.String != "" {
			if err := json.Unmarshal([]byte(detailsJSON.String), &e.Details); err != nil {
				// Tolerate corrupted JSON rather than failing the listing
				e.Details = nil
			}
		}

		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

package store

import (
	"database/sql"
	"fmt"
	"time"
)

// Result is a persisted attestation outcome for one endpoint. The
// endpoint key is whatever identity the access-control layer hands the
// verifier, typically a network access identifier.
type Result struct {
	ID               int64
	Endpoint         string
	SessionID        string
	ConnectionID     uint32
	Recommendation   string
	Evaluation       string
	Reason           string
	ReasonLang       string
	MeasurementError bool
	RequestsIssued   int
	RequestsResolved int
	Evidence         []byte // CBOR-encoded pts.Evidence snapshot
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Age returns the time since the result was last updated.
func (r *Result) Age() time.Duration {
	return time.Since(r.UpdatedAt)
}

// SaveResult upserts a result record by endpoint.
func (s *Store) SaveResult(r *Result) error {
	now := time.Now().Unix()

	var measErr int
	if r.MeasurementError {
		measErr = 1
	}

	_, err := s.db.Exec(`
		INSERT INTO attestation_results
			(endpoint, session_id, connection_id, recommendation, evaluation,
			 reason, reason_lang, measurement_error, requests_issued,
			 requests_resolved, evidence, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(endpoint) DO UPDATE SET
			session_id = excluded.session_id,
			connection_id = excluded.connection_id,
			recommendation = excluded.recommendation,
			evaluation = excluded.evaluation,
			reason = excluded.reason,
			reason_lang = excluded.reason_lang,
			measurement_error = excluded.measurement_error,
			requests_issued = excluded.requests_issued,
			requests_resolved = excluded.requests_resolved,
			evidence = excluded.evidence,
			updated_at = excluded.updated_at
	`, r.Endpoint, r.SessionID, r.ConnectionID, r.Recommendation, r.Evaluation,
		r.Reason, r.ReasonLang, measErr, r.RequestsIssued, r.RequestsResolved,
		r.Evidence, now)

	if err != nil {
		return fmt.Errorf("failed to save result: %w", err)
	}
	return nil
}

// ErrResultNotFound is returned when no result exists for an endpoint.
var ErrResultNotFound = fmt.Errorf("attestation result not found")

// GetResult retrieves the result for an endpoint.
func (s *Store) GetResult(endpoint string) (*Result, error) {
	row := s.db.QueryRow(`
		SELECT id, endpoint, session_id, connection_id, recommendation,
		       evaluation, reason, reason_lang, measurement_error,
		       requests_issued, requests_resolved, evidence, created_at, updated_at
		FROM attestation_results WHERE endpoint = ?
	`, endpoint)

	r, err := scanResult(row.Scan)
	if err == sql.ErrNoRows {
		return nil, ErrResultNotFound
	}
	return r, err
}

// ListResults returns all results ordered by endpoint.
func (s *Store) ListResults() ([]*Result, error) {
	rows, err := s.db.Query(`
		SELECT id, endpoint, session_id, connection_id, recommendation,
		       evaluation, reason, reason_lang, measurement_error,
		       requests_issued, requests_resolved, evidence, created_at, updated_at
		FROM attestation_results ORDER BY endpoint
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	defer rows.Close()

	var results []*Result
	for rows.Next() {
		r, err := scanResult(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// ListResultsByRecommendation returns results filtered by
// recommendation.
func (s *Store) ListResultsByRecommendation(rec string) ([]*Result, error) {
	rows, err := s.db.Query(`
		SELECT id, endpoint, session_id, connection_id, recommendation,
		       evaluation, reason, reason_lang, measurement_error,
		       requests_issued, requests_resolved, evidence, created_at, updated_at
		FROM attestation_results WHERE recommendation = ? ORDER BY endpoint
	`, rec)
	if err != nil {
		return nil, fmt.Errorf("failed to list results by recommendation: %w", err)
	}
	defer rows.Close()

	var results []*Result
	for rows.Next() {
		r, err := scanResult(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// DeleteResult removes the result for an endpoint.
func (s *Store) DeleteResult(endpoint string) error {
	result, err := s.db.Exec(`DELETE FROM attestation_results WHERE endpoint = ?`, endpoint)
	if err != nil {
		return fmt.Errorf("failed to delete result: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrResultNotFound
	}
	return nil
}

func scanResult(scan func(...any) error) (*Result, error) {
	var r Result
	var reason, reasonLang sql.NullString
	var measErr int
	var createdAt, updatedAt int64

	err := scan(&r.ID, &r.Endpoint, &r.SessionID, &r.ConnectionID,
		&r.Recommendation, &r.Evaluation, &reason, &reasonLang, &measErr,
		&r.RequestsIssued, &r.RequestsResolved, &r.Evidence, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if reason.Valid {
		r.Reason = reason.String
	}
	if reasonLang.Valid {
		r.ReasonLang = reasonLang.String
	}
	r.MeasurementError = measErr != 0
	r.CreatedAt = time.Unix(createdAt, 0)
	r.UpdatedAt = time.Unix(updatedAt, 0)

	return &r, nil
}

// Package verifier drives the round loop of one attestation handshake:
// it issues measurement requests, correlates responses through the
// per-connection state tracker, and turns the end of the exchange into
// a persisted access recommendation.
package verifier

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/trustgate/attest/pkg/attest"
	"github.com/trustgate/attest/pkg/audit"
	"github.com/trustgate/attest/pkg/pts"
	"github.com/trustgate/attest/pkg/store"
)

// ErrUnknownRequest is returned when a response correlates to no
// outstanding request. Callers should treat it as a protocol anomaly
// (duplicate or spoofed response), not a fatal condition.
var ErrUnknownRequest = errors.New("no matching outstanding request")

// ErrSessionClosed is returned when a session is used after Close.
var ErrSessionClosed = errors.New("session closed")

// Decision is the final outcome of one handshake.
type Decision struct {
	Recommendation attest.Recommendation
	Evaluation     attest.Evaluation
	Reason         string
	ReasonLang     string
}

// Allowed reports whether the decision grants access.
func (d *Decision) Allowed() bool {
	return d.Recommendation == attest.RecommendationAllow
}

// Session serializes all handshake activity for one connection. The
// state tracker underneath is single-owner; the session's mutex is the
// per-connection lock the integration contract requires.
type Session struct {
	mu sync.Mutex

	id       string
	endpoint string
	state    *attest.State
	evidence *pts.Evidence

	issued   int
	resolved int
	closed   bool

	results *store.Store
	emitter audit.EventEmitter
	logger  *slog.Logger
}

// SessionOption configures a Session at creation time.
type SessionOption func(*sessionConfig)

type sessionConfig struct {
	platformInfo string
	results      *store.Store
	emitter      audit.EventEmitter
	logger       *slog.Logger
}

// WithPlatformInfo forwards a configured platform-info string to the
// session's measurement engine.
func WithPlatformInfo(info string) SessionOption {
	return func(c *sessionConfig) { c.platformInfo = info }
}

// WithResultStore makes Finalize persist the outcome.
func WithResultStore(s *store.Store) SessionOption {
	return func(c *sessionConfig) { c.results = s }
}

// WithAuditEmitter routes audit events to the given emitter.
func WithAuditEmitter(e audit.EventEmitter) SessionOption {
	return func(c *sessionConfig) { c.emitter = e }
}

// WithLogger sets the session logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) SessionOption {
	return func(c *sessionConfig) { c.logger = l }
}

// NewSession creates the session for one connection and emits the
// attestation.start event.
func NewSession(connID uint32, endpoint string, opts ...SessionOption) *Session {
	cfg := sessionConfig{
		emitter: audit.NopEmitter{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	stateOpts := []attest.Option{attest.WithLogger(cfg.logger)}
	if cfg.platformInfo != "" {
		stateOpts = append(stateOpts, attest.WithPlatformInfo(cfg.platformInfo))
	}

	s := &Session{
		id:       uuid.NewString(),
		endpoint: endpoint,
		state:    attest.New(connID, stateOpts...),
		results:  cfg.results,
		emitter:  cfg.emitter,
		logger:   cfg.logger,
	}
	s.evidence = s.state.Engine().NewEvidence()

	s.emitter.Emit(audit.NewAttestationStart(endpoint, s.id, connID))
	return s
}

// ID returns the session correlation identifier.
func (s *Session) ID() string {
	return s.id
}

// Endpoint returns the endpoint identity under attestation.
func (s *Session) Endpoint() string {
	return s.endpoint
}

// State exposes the underlying tracker. Callers must not retain it
// across session rounds.
func (s *Session) State() *attest.State {
	return s.state
}

// RequestFileMeasurement registers a file or directory measurement
// request and returns its identifier for the outbound protocol
// message.
func (s *Session) RequestFileMeasurement(fileID int, isDir bool) (uint16, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrSessionClosed
	}
	if s.state.HandshakePhase() == attest.PhaseInit {
		s.state.SetHandshakePhase(attest.PhaseMeasurements)
	}
	s.issued++
	return s.state.AddFileMeasurementRequest(fileID, isDir), nil
}

// RequestComponentEvidence registers a component evidence request.
func (s *Session) RequestComponentEvidence(vendorID uint32, q attest.Qualifier, name attest.ComponentName) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}
	if s.state.HandshakePhase() == attest.PhaseInit {
		s.state.SetHandshakePhase(attest.PhaseMeasurements)
	}
	s.state.AddComponentEvidenceRequest(vendorID, q, name)
	s.issued++
	return nil
}

// HandleFileMeasurement correlates an inbound measurement response.
// The caller has already verified the digest against its reference
// value; matched=false latches the measurement error. The measurement,
// if given, is added to the session's evidence snapshot.
func (s *Session) HandleFileMeasurement(id uint16, m *pts.Measurement, matched bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}

	_, _, found := s.state.CheckOffFileMeasurementRequest(id)
	if !found {
		s.anomaly("file_measurement", fmt.Sprintf("unknown request id %d", id))
		return ErrUnknownRequest
	}
	s.resolved++

	if m != nil {
		s.evidence.Add(m)
	}
	if !matched {
		s.state.SetMeasurementError()
	}
	return nil
}

// HandleComponentEvidence correlates an inbound component evidence
// response by full value match. valid=false latches the measurement
// error.
func (s *Session) HandleComponentEvidence(vendorID uint32, q attest.Qualifier, name attest.ComponentName, valid bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}

	if !s.state.CheckOffComponentEvidenceRequest(vendorID, q, name) {
		s.anomaly("component_evidence", fmt.Sprintf("unknown request vendor=%d name=%d", vendorID, name))
		return ErrUnknownRequest
	}
	s.resolved++

	if !valid {
		s.state.SetMeasurementError()
	}
	return nil
}

// PendingRequests returns the number of requests still awaiting
// responses across both registries. The driver loop uses it to decide
// between more rounds and finalization.
func (s *Session) PendingRequests() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0
	}
	return s.state.FileMeasurementRequestCount() + s.state.ComponentEvidenceRequestCount()
}

// Finalize ends the handshake and produces the access recommendation:
// a latched measurement error denies access, unresolved requests at
// the end isolate the endpoint, and a fully resolved error-free
// exchange (including one with no measurement activity at all) allows
// it. The outcome is written to the tracker, persisted when a result
// store is configured, and audited.
func (s *Session) Finalize(preferredLanguages string) (*Decision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrSessionClosed
	}

	s.state.SetHandshakePhase(attest.PhaseEvaluating)

	pending := s.state.FileMeasurementRequestCount() + s.state.ComponentEvidenceRequestCount()

	var d Decision
	switch {
	case s.state.MeasurementError():
		d.Recommendation = attest.RecommendationNoAccess
		d.Evaluation = attest.EvaluationNonCompliantMajor
	case pending > 0:
		d.Recommendation = attest.RecommendationIsolate
		d.Evaluation = attest.EvaluationNonCompliantMinor
	default:
		d.Recommendation = attest.RecommendationAllow
		d.Evaluation = attest.EvaluationCompliant
	}
	if !d.Allowed() {
		d.Reason, d.ReasonLang = s.state.ReasonString(preferredLanguages)
	}

	s.state.SetRecommendation(d.Recommendation, d.Evaluation)
	s.state.SetHandshakePhase(attest.PhaseEnd)

	if s.results != nil {
		if err := s.persist(&d); err != nil {
			return nil, err
		}
	}

	if d.Allowed() {
		s.emitter.Emit(audit.NewAttestationAllow(s.endpoint, s.id, d.Evaluation.String()))
	} else {
		s.emitter.Emit(audit.NewAttestationDeny(s.endpoint, s.id,
			d.Recommendation.String(), d.Evaluation.String(), d.Reason))
	}

	return &d, nil
}

// Close destroys the tracker and releases the session. Safe to call
// after Finalize, or mid-flight to abandon the handshake; pending
// requests are dropped without error.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	s.state.Destroy()
}

func (s *Session) persist(d *Decision) error {
	evidence, err := s.evidence.Encode()
	if err != nil {
		return fmt.Errorf("failed to encode evidence: %w", err)
	}

	rec, eval := s.state.Recommendation()
	result := &store.Result{
		Endpoint:         s.endpoint,
		SessionID:        s.id,
		ConnectionID:     s.state.ConnectionID(),
		Recommendation:   rec.String(),
		Evaluation:       eval.String(),
		Reason:           d.Reason,
		ReasonLang:       d.ReasonLang,
		MeasurementError: s.state.MeasurementError(),
		RequestsIssued:   s.issued,
		RequestsResolved: s.resolved,
		Evidence:         evidence,
	}
	if err := s.results.SaveResult(result); err != nil {
		return fmt.Errorf("failed to persist result: %w", err)
	}
	return nil
}

func (s *Session) anomaly(kind, detail string) {
	s.logger.Warn("attestation protocol anomaly",
		"endpoint", s.endpoint, "session", s.id, "kind", kind, "detail", detail)
	s.emitter.Emit(audit.NewAttestationAnomaly(s.endpoint, s.id, kind, detail))
}

package attest

import (
	"log/slog"

	"github.com/trustgate/attest/pkg/pts"
)

// TransportState is the transport-level connection status. It is set
// by the connection's owner and stored opaquely; the tracker never
// interprets it.
type TransportState int

const (
	TransportCreate TransportState = iota
	TransportHandshake
	TransportAccessAllowed
	TransportAccessIsolated
	TransportAccessNone
	TransportDelete
)

// Phase is the attestation protocol's own progress marker, independent
// of the transport connection state. Transitions are issued by the
// protocol driver; the tracker stores them unconditionally.
type Phase int

const (
	PhaseInit Phase = iota
	PhaseMeasurements
	PhaseEvaluating
	PhaseEnd
)

// String returns the phase name for logging.
func (p Phase) String() string {
	switch p {
	case PhaseInit:
		return "init"
	case PhaseMeasurements:
		return "measurements"
	case PhaseEvaluating:
		return "evaluating"
	case PhaseEnd:
		return "end"
	default:
		return "unknown"
	}
}

// Recommendation is the access recommendation emitted at the end of a
// handshake.
type Recommendation int

const (
	RecommendationNone Recommendation = iota
	RecommendationAllow
	RecommendationIsolate
	RecommendationNoAccess
)

// String returns the recommendation name.
func (r Recommendation) String() string {
	switch r {
	case RecommendationAllow:
		return "allow"
	case RecommendationIsolate:
		return "isolate"
	case RecommendationNoAccess:
		return "no-access"
	default:
		return "none"
	}
}

// Evaluation qualifies a recommendation with the compliance outcome of
// the measurement rounds.
type Evaluation int

const (
	EvaluationDontKnow Evaluation = iota
	EvaluationCompliant
	EvaluationNonCompliantMinor
	EvaluationNonCompliantMajor
	EvaluationError
)

// String returns the evaluation name.
func (e Evaluation) String() string {
	switch e {
	case EvaluationCompliant:
		return "compliant"
	case EvaluationNonCompliantMinor:
		return "noncompliant-minor"
	case EvaluationNonCompliantMajor:
		return "noncompliant-major"
	case EvaluationError:
		return "error"
	default:
		return "dont-know"
	}
}

// Qualifier narrows a component evidence request to a specific flavor
// of the named component.
type Qualifier struct {
	Kernel       bool
	SubComponent bool
	Type         uint8
}

// ComponentName identifies a functional component whose evidence may
// be requested.
type ComponentName uint32

const (
	ComponentIgnore ComponentName = iota
	ComponentTrustedPlatform
	ComponentBootLoader
	ComponentTBoot
	ComponentIML
)

// fileMeasRequest is a pending file or directory measurement request.
type fileMeasRequest struct {
	id     uint16
	fileID int
	isDir  bool
}

// compEvidRequest is a pending component evidence request. There is no
// synthetic identifier; responses correlate by full value match.
type compEvidRequest struct {
	vendorID  uint32
	qualifier Qualifier
	name      ComponentName
}

// State tracks one connection's attestation handshake. It is owned by
// exactly one connection lifecycle and must not be shared without
// external serialization.
type State struct {
	connID    uint32
	transport TransportState
	phase     Phase
	rec       Recommendation
	eval      Evaluation
	measError bool

	fileRequests registry[fileMeasRequest]
	compRequests registry[compEvidRequest]
	nextFileID   uint16

	engine *pts.Engine
	logger *slog.Logger
}

// Option configures a State at creation time.
type Option func(*State)

// WithPlatformInfo pre-configures the owned measurement engine with a
// platform-info string sourced from host configuration. If absent, the
// engine keeps its detected defaults.
func WithPlatformInfo(info string) Option {
	return func(s *State) {
		if info != "" {
			s.engine.SetPlatformInfo(info)
		}
	}
}

// WithLogger sets the logger used for debug diagnostics. Defaults to
// slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *State) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates the tracker for one connection: empty registries, initial
// phase, no recommendation, unknown evaluation, no measurement error,
// and a fresh measurement engine. It never fails.
func New(connID uint32, opts ...Option) *State {
	s := &State{
		connID:    connID,
		transport: TransportCreate,
		phase:     PhaseInit,
		rec:       RecommendationNone,
		eval:      EvaluationDontKnow,
		engine:    pts.New(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ConnectionID returns the identifier supplied at creation.
func (s *State) ConnectionID() uint32 {
	return s.connID
}

// SetTransportState stores the transport-level connection status.
func (s *State) SetTransportState(ts TransportState) {
	s.transport = ts
}

// TransportState returns the stored transport-level connection status.
func (s *State) TransportState() TransportState {
	return s.transport
}

// HandshakePhase returns the current attestation phase.
func (s *State) HandshakePhase() Phase {
	return s.phase
}

// SetHandshakePhase stores the new phase unconditionally. The driver
// is responsible for only issuing legal transitions; a backward
// transition is logged as a likely driver bug but not rejected.
func (s *State) SetHandshakePhase(phase Phase) {
	if phase < s.phase {
		s.logger.Debug("handshake phase moved backward",
			"connection", s.connID, "from", s.phase, "to", phase)
	}
	s.phase = phase
}

// Recommendation returns the current recommendation and evaluation.
func (s *State) Recommendation() (Recommendation, Evaluation) {
	return s.rec, s.eval
}

// SetRecommendation overwrites the recommendation and evaluation; the
// latest call wins.
func (s *State) SetRecommendation(rec Recommendation, eval Evaluation) {
	s.rec = rec
	s.eval = eval
}

// AddFileMeasurementRequest registers a pending measurement request for
// the given file or directory and returns its request identifier.
// Identifiers start at 1, strictly increase, and are never reused for
// the lifetime of the State, even after a request is checked off.
func (s *State) AddFileMeasurementRequest(fileID int, isDir bool) uint16 {
	s.nextFileID++
	s.fileRequests.add(fileMeasRequest{
		id:     s.nextFileID,
		fileID: fileID,
		isDir:  isDir,
	})
	return s.nextFileID
}

// CheckOffFileMeasurementRequest correlates a measurement response with
// its pending request. On a match the entry is removed and its payload
// returned; an unknown id returns found=false without mutating the
// registry.
func (s *State) CheckOffFileMeasurementRequest(id uint16) (fileID int, isDir bool, found bool) {
	req, ok := s.fileRequests.checkOff(func(r fileMeasRequest) bool {
		return r.id == id
	})
	if !ok {
		return 0, false, false
	}
	return req.fileID, req.isDir, true
}

// FileMeasurementRequestCount returns the number of pending file and
// directory measurement requests.
func (s *State) FileMeasurementRequestCount() int {
	return s.fileRequests.count()
}

// AddComponentEvidenceRequest registers a pending component evidence
// request. Identical tuples may be added more than once and are
// tracked as separate entries.
func (s *State) AddComponentEvidenceRequest(vendorID uint32, qualifier Qualifier, name ComponentName) {
	s.compRequests.add(compEvidRequest{
		vendorID:  vendorID,
		qualifier: qualifier,
		name:      name,
	})
}

// CheckOffComponentEvidenceRequest removes the first pending entry
// whose vendor, qualifier, and component name all match, and reports
// whether one was found.
func (s *State) CheckOffComponentEvidenceRequest(vendorID uint32, qualifier Qualifier, name ComponentName) bool {
	_, ok := s.compRequests.checkOff(func(r compEvidRequest) bool {
		return r.vendorID == vendorID &&
			r.qualifier == qualifier &&
			r.name == name
	})
	return ok
}

// ComponentEvidenceRequestCount returns the number of pending component
// evidence requests.
func (s *State) ComponentEvidenceRequestCount() int {
	return s.compRequests.count()
}

// Engine returns the measurement engine owned by this State. The
// driver uses it to run measurement operations; the tracker only cares
// about which requests are outstanding.
func (s *State) Engine() *pts.Engine {
	return s.engine
}

// MeasurementError reports whether any measurement mismatch has been
// recorded on this connection.
func (s *State) MeasurementError() bool {
	return s.measError
}

// SetMeasurementError latches the measurement error flag. Once set it
// stays set for the lifetime of the State.
func (s *State) SetMeasurementError() {
	s.measError = true
}

// Destroy releases both registries and the measurement engine. A
// handshake may be torn down mid-flight, so non-empty registries are
// dropped without error. Call once, at connection teardown.
func (s *State) Destroy() {
	s.fileRequests.clear()
	s.compRequests.clear()
	s.engine = nil
}

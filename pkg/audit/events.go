// Package audit defines structured audit events for attestation
// decisions and the emitter plumbing that records them.
package audit

import (
	"strconv"
	"time"
)

// Severity represents syslog severity levels per RFC 5424.
type Severity int

const (
	SeverityWarning Severity = 4
	SeverityNotice  Severity = 5
	SeverityInfo    Severity = 6
)

// String returns the human-readable name for a severity level.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityNotice:
		return "NOTICE"
	case SeverityWarning:
		return "WARNING"
	default:
		return "UNKNOWN"
	}
}

// EventType identifies a security-relevant audit event.
type EventType string

const (
	EventAttestationStart   EventType = "attestation.start"
	EventAttestationAllow   EventType = "attestation.allow"
	EventAttestationDeny    EventType = "attestation.deny"
	EventAttestationAnomaly EventType = "attestation.anomaly"
)

// severityMap maps each event type to its syslog severity.
var severityMap = map[EventType]Severity{
	EventAttestationStart:   SeverityInfo,    // 6
	EventAttestationAllow:   SeverityNotice,  // 5
	EventAttestationDeny:    SeverityWarning, // 4
	EventAttestationAnomaly: SeverityWarning, // 4
}

// SeverityFor returns the syslog severity for a given event type.
// Unknown event types return SeverityWarning (fail-secure: treat
// unknowns as concerning).
func SeverityFor(et EventType) Severity {
	if s, ok := severityMap[et]; ok {
		return s
	}
	return SeverityWarning
}

// Event represents a security-relevant audit event with structured
// fields.
type Event struct {
	Type      EventType
	Severity  Severity
	Timestamp time.Time
	Endpoint  string            // network access identifier of the endpoint under attestation
	SessionID string            // correlation ID for one handshake
	Details   map[string]string // event-specific fields
}

// NewAttestationStart creates an attestation.start event for a new
// handshake.
func NewAttestationStart(endpoint, sessionID string, connectionID uint32) Event {
	return Event{
		Type:      EventAttestationStart,
		Severity:  SeverityInfo,
		Timestamp: time.Now(),
		Endpoint:  endpoint,
		SessionID: sessionID,
		Details: map[string]string{
			"connection_id": formatUint(connectionID),
		},
	}
}

// NewAttestationAllow creates an attestation.allow event for a
// positive recommendation.
func NewAttestationAllow(endpoint, sessionID, evaluation string) Event {
	return Event{
		Type:      EventAttestationAllow,
		Severity:  SeverityNotice,
		Timestamp: time.Now(),
		Endpoint:  endpoint,
		SessionID: sessionID,
		Details: map[string]string{
			"evaluation": evaluation,
		},
	}
}

// NewAttestationDeny creates an attestation.deny event for a negative
// recommendation.
func NewAttestationDeny(endpoint, sessionID, recommendation, evaluation, reason string) Event {
	return Event{
		Type:      EventAttestationDeny,
		Severity:  SeverityWarning,
		Timestamp: time.Now(),
		Endpoint:  endpoint,
		SessionID: sessionID,
		Details: map[string]string{
			"recommendation": recommendation,
			"evaluation":     evaluation,
			"reason":         reason,
		},
	}
}

// NewAttestationAnomaly creates an attestation.anomaly event for a
// protocol-level irregularity, e.g. a response correlating to no
// outstanding request.
func NewAttestationAnomaly(endpoint, sessionID, kind, detail string) Event {
	return Event{
		Type:      EventAttestationAnomaly,
		Severity:  SeverityWarning,
		Timestamp: time.Now(),
		Endpoint:  endpoint,
		SessionID: sessionID,
		Details: map[string]string{
			"kind":   kind,
			"detail": detail,
		},
	}
}

func formatUint(v uint32) string {
	return strconv.FormatUint(uint64(v), 10)
}

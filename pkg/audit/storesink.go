package audit

import (
	"github.com/trustgate/attest/pkg/store"
)

// StoreSink persists events to the audit_log table.
type StoreSink struct {
	store *store.Store
}

// NewStoreSink creates a sink writing to the given store.
func NewStoreSink(s *store.Store) *StoreSink {
	return &StoreSink{store: s}
}

// Emit writes the event as one audit log row.
func (s *StoreSink) Emit(ev Event) error {
	return s.store.InsertAuditEntry(&store.AuditEntry{
		Timestamp: ev.Timestamp,
		EventType: string(ev.Type),
		Severity:  int(ev.Severity),
		Endpoint:  ev.Endpoint,
		SessionID: ev.SessionID,
		Details:   ev.Details,
	})
}

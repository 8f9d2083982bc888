package audit

import (
	"log/slog"
)

// EventEmitter accepts structured audit events for recording.
type EventEmitter interface {
	Emit(Event) error
}

// NopEmitter discards all events. Use when no audit backend is
// configured.
type NopEmitter struct{}

// Emit discards the event.
func (NopEmitter) Emit(Event) error { return nil }

// LogEmitter writes events to a structured logger. It never returns an
// error; audit failures must not block the handshake.
type LogEmitter struct {
	logger *slog.Logger
}

// NewLogEmitter creates an emitter backed by the given logger. If
// logger is nil, slog.Default() is used.
func NewLogEmitter(logger *slog.Logger) *LogEmitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogEmitter{logger: logger}
}

// Emit logs the event with its structured fields.
func (e *LogEmitter) Emit(ev Event) error {
	attrs := []any{
		"severity", ev.Severity.String(),
		"endpoint", ev.Endpoint,
		"session", ev.SessionID,
	}
	for k, v := range ev.Details {
		attrs = append(attrs, k, v)
	}
	switch ev.Severity {
	case SeverityWarning:
		e.logger.Warn(string(ev.Type), attrs...)
	default:
		e.logger.Info(string(ev.Type), attrs...)
	}
	return nil
}

// MultiEmitter fans one event out to several backends. Backend errors
// are reported to the logger and do not propagate.
type MultiEmitter struct {
	backends []EventEmitter
	logger   *slog.Logger
}

// NewMultiEmitter creates an emitter that forwards events to all given
// backends. If logger is nil, slog.Default() is used for error
// reporting.
func NewMultiEmitter(logger *slog.Logger, backends ...EventEmitter) *MultiEmitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &MultiEmitter{
		backends: backends,
		logger:   logger,
	}
}

// Emit writes the event to all backends.
func (e *MultiEmitter) Emit(ev Event) error {
	for _, b := range e.backends {
		if err := b.Emit(ev); err != nil {
			e.logger.Error("audit emit failed", "event", ev.Type, "error", err)
		}
	}
	return nil
}

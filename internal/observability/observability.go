// Package observability holds the logging, metrics, tracing and audit hooks
// the data layer reports through. Every hook has a no-op default.
package observability

import (
	"context"
	"time"
)

// Logger is the structured logging surface used across the data layer.
// Arguments after msg are alternating key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// NoopLogger returns a Logger that discards everything.
func NoopLogger() Logger { return noopLogger{} }

// MetricsRecorder observes the outcome and duration of an operation.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

type noopMetrics struct{}

func (noopMetrics) Observe(context.Context, string, bool, time.Duration) {}

// NoopMetrics returns a MetricsRecorder that discards observations.
func NoopMetrics() MetricsRecorder { return noopMetrics{} }

// TraceSpan is ended exactly once with the operation's error (nil on success).
type TraceSpan interface {
	End(err error)
}

// Tracer starts spans around operations.
type Tracer interface {
	Start(ctx context.Context, operation string) (context.Context, TraceSpan)
}

type noopTracer struct{}

type noopSpan struct{}

func (noopSpan) End(error) {}

func (noopTracer) Start(ctx context.Context, _ string) (context.Context, TraceSpan) {
	return ctx, noopSpan{}
}

// NoopTracer returns a Tracer whose spans do nothing.
func NoopTracer() Tracer { return noopTracer{} }

// AuditStatus is the outcome recorded for a mutation.
type AuditStatus string

// Audit outcomes.
const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusError   AuditStatus = "error"
)

// AuditEntry describes one mutation attempt.
type AuditEntry struct {
	Operation  string
	Entity     string
	EntityID   string
	Status     AuditStatus
	Error      string
	Duration   time.Duration
	OccurredAt time.Time
}

// AuditRecorder receives one entry per mutation.
type AuditRecorder interface {
	Record(ctx context.Context, entry AuditEntry)
}

type noopAudit struct{}

func (noopAudit) Record(context.Context, AuditEntry) {}

// NoopAudit returns an AuditRecorder that discards entries.
func NoopAudit() AuditRecorder { return noopAudit{} }

// LoggingAudit writes audit entries to a Logger at info (success) or warn
// (error) level.
type LoggingAudit struct {
	Logger Logger
}

// Record implements AuditRecorder.
func (a LoggingAudit) Record(_ context.Context, entry AuditEntry) {
	if a.Logger == nil {
		return
	}
	args := []any{"operation", entry.Operation, "entity", entry.Entity, "id", entry.EntityID, "duration", entry.Duration}
	if entry.Status == AuditStatusError {
		a.Logger.Warn("audit", append(args, "error", entry.Error)...)
		return
	}
	a.Logger.Info("audit", args...)
}

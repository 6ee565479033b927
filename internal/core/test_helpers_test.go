package core

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"hrdesk/internal/events"
	"hrdesk/internal/infra/persistence/snapshot"
	"hrdesk/internal/kv"
	"hrdesk/internal/observability"
)

var fixedNow = time.Date(2024, 3, 6, 10, 0, 0, 0, time.UTC)

func fixedClock() Clock {
	return ClockFunc(func() time.Time { return fixedNow })
}

func newTestService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	svc, err := NewInMemoryService(context.Background(), append([]Option{WithClock(fixedClock())}, opts...)...)
	if err != nil {
		t.Fatalf("open service: %v", err)
	}
	return svc
}

func openOn(t *testing.T, store kv.Store, adapterOpts []snapshot.Option, opts ...Option) *Service {
	t.Helper()
	adapter := snapshot.New(store, snapshot.DefaultNamespace, adapterOpts...)
	svc, err := Open(context.Background(), adapter, append([]Option{WithClock(fixedClock())}, opts...)...)
	if err != nil {
		t.Fatalf("open service: %v", err)
	}
	return svc
}

type auditRecorderStub struct {
	mu      sync.Mutex
	entries []observability.AuditEntry
}

func (a *auditRecorderStub) Record(_ context.Context, e observability.AuditEntry) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, e)
}

func (a *auditRecorderStub) last() observability.AuditEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.entries[len(a.entries)-1]
}

type metricsStub struct {
	mu       sync.Mutex
	calls    map[string]int
	failures map[string]int
}

func (m *metricsStub) Observe(_ context.Context, op string, success bool, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = map[string]int{}
		m.failures = map[string]int{}
	}
	m.calls[op]++
	if !success {
		m.failures[op]++
	}
}

type spanStub struct {
	tracer *tracerStub
	op     string
}

func (s spanStub) End(err error) {
	s.tracer.mu.Lock()
	defer s.tracer.mu.Unlock()
	s.tracer.ended = append(s.tracer.ended, s.op)
	if err != nil {
		s.tracer.failed = append(s.tracer.failed, s.op)
	}
}

type tracerStub struct {
	mu     sync.Mutex
	ended  []string
	failed []string
}

func (t *tracerStub) Start(ctx context.Context, op string) (context.Context, observability.TraceSpan) {
	return ctx, spanStub{tracer: t, op: op}
}

type captureLogger struct {
	mu      sync.Mutex
	entries []string
}

func (l *captureLogger) log(level, msg string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, fmt.Sprintf("%s %s %v", level, msg, args))
}

func (l *captureLogger) Debug(msg string, args ...any) { l.log("DEBUG", msg, args...) }
func (l *captureLogger) Info(msg string, args ...any)  { l.log("INFO", msg, args...) }
func (l *captureLogger) Warn(msg string, args ...any)  { l.log("WARN", msg, args...) }
func (l *captureLogger) Error(msg string, args ...any) { l.log("ERROR", msg, args...) }

func (l *captureLogger) contains(level, msg string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	prefix := level + " " + msg
	for _, e := range l.entries {
		if len(e) >= len(prefix) && e[:len(prefix)] == prefix {
			return true
		}
	}
	return false
}

type eventLog struct {
	mu     sync.Mutex
	events []events.Event
}

func recordEvents(svc *Service, names ...events.Name) *eventLog {
	log := &eventLog{}
	for _, name := range names {
		svc.On(name, func(ev events.Event) {
			log.mu.Lock()
			defer log.mu.Unlock()
			log.events = append(log.events, ev)
		})
	}
	return log
}

func (l *eventLog) all() []events.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]events.Event(nil), l.events...)
}

func (l *eventLog) named(name events.Name) []events.Event {
	var out []events.Event
	for _, ev := range l.all() {
		if ev.Name == name {
			out = append(out, ev)
		}
	}
	return out
}

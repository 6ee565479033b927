// Package core is the hrdesk data layer: the query and mutation API over
// the in-memory model, its persistence protocol, bootstrap and cross-tab
// synchronization.
package core

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"hrdesk/internal/auth"
	"hrdesk/internal/events"
	"hrdesk/internal/infra/persistence/memory"
	"hrdesk/internal/infra/persistence/snapshot"
	"hrdesk/internal/kv"
	"hrdesk/internal/observability"
	"hrdesk/pkg/domain"
)

// Service is one data layer instance ("tab"). Every mutation runs a
// transaction on the in-memory model, saves the full snapshot, pings other
// tabs and then notifies local subscribers.
type Service struct {
	store       *memory.Store
	adapter     *snapshot.Adapter
	notifier    *events.Notifier
	engine      *domain.RulesEngine
	issuer      *auth.Issuer
	fixturePath string

	clock   Clock
	logger  observability.Logger
	metrics observability.MetricsRecorder
	tracer  observability.Tracer
	audit   observability.AuditRecorder

	// writeMu keeps the mutate, save and ping sequence in program order.
	writeMu sync.Mutex
	// suspended is set while storage could not be read; saving then would
	// overwrite data this instance never saw.
	suspended atomic.Bool
}

// NewService constructs a Service over adapter without loading any data.
// Call Bootstrap, or use Open, before serving reads.
func NewService(adapter *snapshot.Adapter, opts ...Option) *Service {
	s := &Service{
		adapter: adapter,
		clock:   systemClock{},
		logger:  observability.NoopLogger(),
		metrics: observability.NoopMetrics(),
		tracer:  observability.NoopTracer(),
		audit:   observability.NoopAudit(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.engine == nil {
		s.engine = NewDefaultRulesEngine()
	}
	if s.notifier == nil {
		s.notifier = events.NewNotifier(s.logger)
	}
	s.store = memory.NewStore(s.engine)
	s.store.SetNowFunc(func() time.Time { return s.clock.Now() })
	return s
}

// Open constructs a Service and runs Bootstrap.
func Open(ctx context.Context, adapter *snapshot.Adapter, opts ...Option) (*Service, error) {
	s := NewService(adapter, opts...)
	if err := s.Bootstrap(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// NewInMemoryService opens a Service over a fresh unbounded memory store.
func NewInMemoryService(ctx context.Context, opts ...Option) (*Service, error) {
	return Open(ctx, snapshot.New(kv.NewMemory(0), snapshot.DefaultNamespace), opts...)
}

// Store exposes the in-memory model.
func (s *Service) Store() *memory.Store { return s.store }

// Adapter exposes the durable store adapter.
func (s *Service) Adapter() *snapshot.Adapter { return s.adapter }

// Notifier exposes the change notifier.
func (s *Service) Notifier() *events.Notifier { return s.notifier }

// On subscribes fn to name.
func (s *Service) On(name events.Name, fn events.Handler) events.Subscription {
	return s.notifier.On(name, fn)
}

// Off removes a subscription.
func (s *Service) Off(sub events.Subscription) { s.notifier.Off(sub) }

// Status reports the durable store adapter status.
func (s *Service) Status() snapshot.Status { return s.adapter.Status() }

func (s *Service) today() string {
	return domain.FormatDate(s.clock.Now())
}

// observe wraps a read with a span and a metrics observation.
func (s *Service) observe(ctx context.Context, op string, fn func(context.Context) error) error {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, op)
	err := fn(ctx)
	span.End(err)
	s.metrics.Observe(ctx, op, err == nil, time.Since(start))
	return err
}

// mutate runs the mutation protocol for op. fn applies the change inside a
// transaction and returns the events to emit; they are delivered after the
// snapshot is saved and the write lock is released.
func (s *Service) mutate(ctx context.Context, op string, entity domain.EntityType, fn func(tx domain.Transaction) (string, []events.Event, error)) (string, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, op)

	var (
		entityID string
		pending  []events.Event
	)
	s.writeMu.Lock()
	res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var err error
		entityID, pending, err = fn(tx)
		return err
	})
	if err == nil {
		s.logViolations(op, res.Result)
		s.persist(ctx, op)
	}
	s.writeMu.Unlock()

	duration := time.Since(start)
	span.End(err)
	s.metrics.Observe(ctx, op, err == nil, duration)
	s.recordAudit(ctx, op, entity, entityID, err, duration)
	if err != nil {
		s.logger.Debug("mutation rejected", "operation", op, "error", err)
		return entityID, err
	}
	at := s.clock.Now()
	for _, ev := range pending {
		ev.At = at
		s.notifier.Emit(ev)
	}
	return entityID, nil
}

func (s *Service) logViolations(op string, res domain.Result) {
	for _, v := range res.Violations {
		s.logger.Warn("rule violation", "operation", op, "rule", v.Rule, "severity", string(v.Severity), "message", v.Message)
	}
}

// persist saves the committed state and pings other tabs. Failures are
// logged and counted; they never fail the mutation.
func (s *Service) persist(ctx context.Context, action string) {
	if s.suspended.Load() {
		s.logger.Warn("persistence suspended, change kept in memory only", "action", action)
		return
	}
	start := time.Now()
	outcome, err := s.adapter.Save(ctx, s.store.ExportState())
	s.metrics.Observe(ctx, "persist", err == nil, time.Since(start))
	switch {
	case err != nil:
		s.logger.Error("persist snapshot failed", "action", action, "error", err)
		return
	case outcome == snapshot.SaveDegraded:
		s.logger.Warn("snapshot saved in reduced form", "action", action, "status", string(s.adapter.Status()))
	}
	if err := s.adapter.BroadcastSync(ctx, action); err != nil {
		s.logger.Warn("broadcast sync failed", "action", action, "error", err)
	}
}

func (s *Service) recordAudit(ctx context.Context, op string, entity domain.EntityType, id string, err error, d time.Duration) {
	entry := observability.AuditEntry{
		Operation:  op,
		Entity:     string(entity),
		EntityID:   id,
		Status:     observability.AuditStatusSuccess,
		Duration:   d,
		OccurredAt: s.clock.Now(),
	}
	if err != nil {
		entry.Status = observability.AuditStatusError
		entry.Error = err.Error()
	}
	s.audit.Record(ctx, entry)
}

// view runs fn against the committed state.
func (s *Service) view(ctx context.Context, fn func(domain.TransactionView) error) error {
	return s.store.View(ctx, fn)
}

func mutationEvent(name events.Name, entity domain.EntityType, id string, before, after any) events.Event {
	ev := events.Event{Name: name, Entity: entity, ID: id}
	if before != nil {
		ev.Before = domain.PayloadOf(before)
	}
	if after != nil {
		ev.After = domain.PayloadOf(after)
	}
	return ev
}

func notFound(entity domain.EntityType, id string) error {
	return domain.NotFoundError{Entity: entity, ID: id}
}

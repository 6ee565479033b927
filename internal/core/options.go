package core

import (
	"time"

	"hrdesk/internal/auth"
	"hrdesk/internal/events"
	"hrdesk/internal/observability"
	"hrdesk/pkg/domain"
)

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// Option customises a Service.
type Option func(*Service)

// WithClock overrides the clock used for "today", timestamps and paydays.
func WithClock(c Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(l observability.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetricsRecorder sets the metrics recorder.
func WithMetricsRecorder(m observability.MetricsRecorder) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithTracer sets the tracer.
func WithTracer(t observability.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithAuditRecorder sets the audit recorder notified of every mutation.
func WithAuditRecorder(a observability.AuditRecorder) Option {
	return func(s *Service) {
		if a != nil {
			s.audit = a
		}
	}
}

// WithRulesEngine replaces the default rules engine.
func WithRulesEngine(e *domain.RulesEngine) Option {
	return func(s *Service) {
		if e != nil {
			s.engine = e
		}
	}
}

// WithNotifier shares an existing notifier.
func WithNotifier(n *events.Notifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithFixturePath loads seed data from path instead of the bundled fixture.
func WithFixturePath(path string) Option {
	return func(s *Service) { s.fixturePath = path }
}

// WithTokenIssuer enables Authenticate.
func WithTokenIssuer(i *auth.Issuer) Option {
	return func(s *Service) { s.issuer = i }
}

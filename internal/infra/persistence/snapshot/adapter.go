// Package snapshot persists the full data layer state as one JSON document
// in a key-value store and announces writes to other instances.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"hrdesk/internal/broadcast"
	"hrdesk/internal/kv"
	"hrdesk/internal/observability"
	"hrdesk/pkg/domain"
)

// DefaultNamespace prefixes every key when none is configured.
const DefaultNamespace = "hrdesk"

// ErrSnapshotNotFound is returned by Load when no usable document exists.
var ErrSnapshotNotFound = errors.New("snapshot: not found")

// Status reports how the current state was obtained and whether the last
// save was complete.
type Status string

// Adapter statuses.
const (
	StatusNotFound      Status = "not_found"
	StatusFixtureLoaded Status = "fixture_loaded"
	StatusReady         Status = "ready"
	StatusQuotaDegraded Status = "quota_degraded"
)

// SaveOutcome tells the caller which document a Save wrote.
type SaveOutcome int

const (
	// SaveFull wrote the complete snapshot.
	SaveFull SaveOutcome = iota
	// SaveDegraded wrote only employees and settings to the fallback key.
	SaveDegraded
)

func (o SaveOutcome) String() string {
	if o == SaveDegraded {
		return "degraded"
	}
	return "full"
}

// SyncPing is the document briefly written under the sync key.
type SyncPing struct {
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
}

// Adapter reads and writes snapshots under a namespace.
type Adapter struct {
	store     kv.Store
	channel   broadcast.Channel
	namespace string
	origin    string
	logger    observability.Logger
	nowFn     func() time.Time

	mu     sync.RWMutex
	status Status
}

// Option customises an Adapter.
type Option func(*Adapter)

// WithChannel publishes sync pings on ch.
func WithChannel(ch broadcast.Channel) Option {
	return func(a *Adapter) { a.channel = ch }
}

// WithLogger sets the logger used for recovered failures.
func WithLogger(l observability.Logger) Option {
	return func(a *Adapter) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithOrigin fixes the origin id stamped on published pings.
func WithOrigin(origin string) Option {
	return func(a *Adapter) {
		if origin != "" {
			a.origin = origin
		}
	}
}

// WithClock overrides the clock used for savedAt and ping timestamps.
func WithClock(fn func() time.Time) Option {
	return func(a *Adapter) {
		if fn != nil {
			a.nowFn = fn
		}
	}
}

// New constructs an adapter over store.
func New(store kv.Store, namespace string, opts ...Option) *Adapter {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	a := &Adapter{
		store:     store,
		namespace: namespace,
		origin:    uuid.NewString(),
		logger:    observability.NoopLogger(),
		nowFn:     func() time.Time { return time.Now().UTC() },
		status:    StatusNotFound,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// DataKey is the key of the full document.
func (a *Adapter) DataKey() string { return a.namespace + "_data" }

// FallbackKey is the key of the reduced document written under quota pressure.
func (a *Adapter) FallbackKey() string { return a.namespace + "_data_fallback" }

// SyncKey is the key of the transient sync ping.
func (a *Adapter) SyncKey() string { return a.namespace + "_sync" }

// Origin identifies this adapter in published pings.
func (a *Adapter) Origin() string { return a.origin }

// Namespace returns the key prefix.
func (a *Adapter) Namespace() string { return a.namespace }

// Status returns the current adapter status.
func (a *Adapter) Status() Status {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.status
}

// MarkFixtureLoaded records that the state came from a fixture rather than
// from storage.
func (a *Adapter) MarkFixtureLoaded() {
	a.setStatus(StatusFixtureLoaded)
}

func (a *Adapter) setStatus(s Status) {
	a.mu.Lock()
	a.status = s
	a.mu.Unlock()
}

// Load reads the persisted snapshot. A missing or undecodable main document
// is reported as ErrSnapshotNotFound unless a usable fallback exists. A
// fallback newer than the main document supplies employees and settings.
func (a *Adapter) Load(ctx context.Context) (domain.Snapshot, error) {
	main, mainOK, err := a.read(ctx, a.DataKey())
	if err != nil {
		return domain.Snapshot{}, err
	}
	fallback, fallbackOK, err := a.read(ctx, a.FallbackKey())
	if err != nil {
		return domain.Snapshot{}, err
	}

	switch {
	case mainOK && fallbackOK && fallback.SavedAt.After(main.SavedAt):
		main.Employees = fallback.Employees
		main.Settings = fallback.Settings
		main.SavedAt = fallback.SavedAt
		a.setStatus(StatusQuotaDegraded)
		return main, nil
	case mainOK:
		a.setStatus(StatusReady)
		return main, nil
	case fallbackOK:
		a.setStatus(StatusQuotaDegraded)
		return fallback, nil
	}
	a.setStatus(StatusNotFound)
	return domain.Snapshot{}, ErrSnapshotNotFound
}

func (a *Adapter) read(ctx context.Context, key string) (domain.Snapshot, bool, error) {
	raw, err := a.store.Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		return domain.Snapshot{}, false, nil
	}
	if err != nil {
		return domain.Snapshot{}, false, fmt.Errorf("snapshot: read %s: %w", key, err)
	}
	var snap domain.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		a.logger.Warn("discarding corrupt snapshot", "key", key, "error", err)
		return domain.Snapshot{}, false, nil
	}
	return snap, true, nil
}

// Save writes the full snapshot. When the store is out of space the reduced
// snapshot is written to the fallback key and SaveDegraded is returned with
// a nil error. If the reduced snapshot does not fit beside the previous
// full document, that document is removed first. Any quota failure leaves
// the status at StatusQuotaDegraded.
func (a *Adapter) Save(ctx context.Context, snap domain.Snapshot) (SaveOutcome, error) {
	snap.SavedAt = a.nowFn()
	raw, err := json.Marshal(snap)
	if err != nil {
		return SaveFull, fmt.Errorf("snapshot: encode: %w", err)
	}
	err = a.store.Set(ctx, a.DataKey(), raw)
	if err == nil {
		if _, derr := a.store.Delete(ctx, a.FallbackKey()); derr != nil {
			a.logger.Warn("remove fallback snapshot failed", "error", derr)
		}
		a.setStatus(StatusReady)
		return SaveFull, nil
	}
	if !errors.Is(err, kv.ErrQuotaExceeded) {
		return SaveFull, fmt.Errorf("snapshot: write: %w", err)
	}

	a.logger.Warn("storage quota exceeded, saving reduced snapshot", "key", a.FallbackKey(), "bytes", len(raw))
	reduced, err := json.Marshal(snap.Reduced())
	if err != nil {
		return SaveDegraded, fmt.Errorf("snapshot: encode reduced: %w", err)
	}
	// The stored state no longer matches the model whatever happens below.
	a.setStatus(StatusQuotaDegraded)
	err = a.store.Set(ctx, a.FallbackKey(), reduced)
	if errors.Is(err, kv.ErrQuotaExceeded) {
		// The previous full document still holds the space.
		a.logger.Warn("dropping stale full snapshot to fit reduced snapshot", "key", a.DataKey())
		if _, derr := a.store.Delete(ctx, a.DataKey()); derr != nil {
			return SaveDegraded, fmt.Errorf("snapshot: drop stale %s: %w", a.DataKey(), derr)
		}
		err = a.store.Set(ctx, a.FallbackKey(), reduced)
	}
	if err != nil {
		return SaveDegraded, fmt.Errorf("snapshot: write reduced: %w", err)
	}
	return SaveDegraded, nil
}

// BroadcastSync writes and immediately removes the sync ping key, then
// publishes a ping so other instances reload.
func (a *Adapter) BroadcastSync(ctx context.Context, action string) error {
	ping := SyncPing{Timestamp: a.nowFn(), Action: action}
	raw, err := json.Marshal(ping)
	if err != nil {
		return fmt.Errorf("snapshot: encode ping: %w", err)
	}
	var errs []error
	if err := a.store.Set(ctx, a.SyncKey(), raw); err != nil {
		errs = append(errs, fmt.Errorf("snapshot: write ping: %w", err))
	} else if _, err := a.store.Delete(ctx, a.SyncKey()); err != nil {
		errs = append(errs, fmt.Errorf("snapshot: clear ping: %w", err))
	}
	if a.channel != nil {
		msg := broadcast.Message{Key: a.SyncKey(), Origin: a.origin, Action: action, Timestamp: ping.Timestamp}
		if err := a.channel.Publish(ctx, msg); err != nil {
			errs = append(errs, fmt.Errorf("snapshot: publish ping: %w", err))
		}
	}
	return errors.Join(errs...)
}

package core

import (
	"context"
	"errors"
	"sync"
	"time"

	"hrdesk/internal/broadcast"
	"hrdesk/internal/events"
)

// DefaultPingInterval is how often the synchronizer probes connectivity.
const DefaultPingInterval = 10 * time.Second

// ConnectionStatus is the Data of a connectionChange event.
type ConnectionStatus struct {
	Online bool
	Error  string
}

// SyncOption configures a Synchronizer.
type SyncOption func(*Synchronizer)

// WithPinger enables connectivity probing through p.
func WithPinger(p broadcast.Pinger) SyncOption {
	return func(y *Synchronizer) { y.pinger = p }
}

// WithPingInterval overrides DefaultPingInterval.
func WithPingInterval(d time.Duration) SyncOption {
	return func(y *Synchronizer) {
		if d > 0 {
			y.interval = d
		}
	}
}

// Synchronizer reloads the model when another tab sharing the namespace
// announces a write, and reports connectivity transitions.
type Synchronizer struct {
	svc      *Service
	channel  broadcast.Channel
	pinger   broadcast.Pinger
	interval time.Duration

	mu        sync.Mutex
	online    bool
	running   bool
	ctx       context.Context
	unsub     func()
	stopWatch context.CancelFunc
	watchDone chan struct{}
}

// NewSynchronizer returns a stopped synchronizer for svc on channel.
func NewSynchronizer(svc *Service, channel broadcast.Channel, opts ...SyncOption) *Synchronizer {
	y := &Synchronizer{svc: svc, channel: channel, interval: DefaultPingInterval, online: true}
	for _, opt := range opts {
		opt(y)
	}
	return y
}

// ErrSyncRunning is returned by Start on a running synchronizer.
var ErrSyncRunning = errors.New("core: synchronizer already running")

// Start subscribes to the channel and, with a pinger, starts the watch loop.
func (y *Synchronizer) Start(ctx context.Context) error {
	y.mu.Lock()
	defer y.mu.Unlock()
	if y.running {
		return ErrSyncRunning
	}
	y.ctx = context.WithoutCancel(ctx)
	unsub, err := y.channel.Subscribe(ctx, y.handle)
	if err != nil {
		return err
	}
	y.unsub = unsub
	y.running = true
	if y.pinger != nil {
		watchCtx, cancel := context.WithCancel(ctx)
		y.stopWatch = cancel
		y.watchDone = make(chan struct{})
		go y.watch(watchCtx, y.watchDone)
	}
	y.svc.logger.Info("sync started", "key", y.svc.adapter.SyncKey(), "origin", y.svc.adapter.Origin())
	return nil
}

// Stop unsubscribes and waits for the watch loop to exit.
func (y *Synchronizer) Stop() {
	y.mu.Lock()
	if !y.running {
		y.mu.Unlock()
		return
	}
	y.running = false
	unsub, stop, done := y.unsub, y.stopWatch, y.watchDone
	y.unsub, y.stopWatch, y.watchDone = nil, nil, nil
	y.mu.Unlock()

	unsub()
	if stop != nil {
		stop()
		<-done
	}
}

// Online reports the last observed connectivity.
func (y *Synchronizer) Online() bool {
	y.mu.Lock()
	defer y.mu.Unlock()
	return y.online
}

func (y *Synchronizer) handle(msg broadcast.Message) {
	adapter := y.svc.adapter
	if msg.Key != adapter.SyncKey() || msg.Origin == adapter.Origin() {
		return
	}
	y.mu.Lock()
	ctx := y.ctx
	y.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := y.svc.Reload(ctx, msg.Action); err != nil {
		y.svc.logger.Warn("sync reload failed", "action", msg.Action, "origin", msg.Origin, "error", err)
		return
	}
	y.svc.logger.Debug("synced from other tab", "action", msg.Action, "origin", msg.Origin)
}

func (y *Synchronizer) watch(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(y.interval)
	defer ticker.Stop()
	y.Probe(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			y.Probe(ctx)
		}
	}
}

// Probe pings the transport once and emits connectionChange when the
// result differs from the previous probe. It reports the new state.
func (y *Synchronizer) Probe(ctx context.Context) bool {
	if y.pinger == nil {
		return y.Online()
	}
	err := y.pinger.Ping(ctx)
	if err != nil && ctx.Err() != nil {
		return y.Online()
	}
	online := err == nil

	y.mu.Lock()
	changed := online != y.online
	y.online = online
	y.mu.Unlock()
	if !changed {
		return online
	}

	status := ConnectionStatus{Online: online}
	if err != nil {
		status.Error = err.Error()
		y.svc.logger.Warn("sync transport offline", "error", err)
	} else {
		y.svc.logger.Info("sync transport online")
	}
	y.svc.notifier.Emit(events.Event{Name: events.ConnectionChange, Data: status, At: y.svc.clock.Now()})
	return online
}

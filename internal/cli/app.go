package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"hrdesk/internal/auth"
	"hrdesk/internal/broadcast"
	"hrdesk/internal/core"
	redisbroadcast "hrdesk/internal/infra/broadcast/redis"
	redisstore "hrdesk/internal/infra/kv/redis"
	"hrdesk/internal/infra/persistence/snapshot"
	"hrdesk/internal/kv"
	"hrdesk/internal/observability"
	"hrdesk/internal/platform/config"
)

// app is one opened data layer with the infrastructure behind it.
type app struct {
	cfg      *config.Config
	logger   observability.Logger
	channel  broadcast.Channel
	pinger   broadcast.Pinger
	registry *prometheus.Registry
	expvar   bool
	svc      *core.Service
	closers  []func() error
}

func loadConfig(opts *RootOptions) (*config.Config, error) {
	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", opts.EnvFile, err)
		}
	}
	return config.Load(opts.ConfigPath)
}

// openApp loads the configuration and opens the data layer it describes.
// Logs go to logOut.
func openApp(ctx context.Context, opts *RootOptions, logOut io.Writer) (*app, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: observability.NewSlogLogger(logOut, cfg.Log)}
	if err := a.open(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) open(ctx context.Context) error {
	cfg := a.cfg
	store, err := kv.Open(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	a.closers = append(a.closers, store.Close)

	switch cfg.Broadcast.Driver {
	case config.BroadcastHub:
		hub := broadcast.NewHub()
		a.channel, a.pinger = hub, hub
		a.closers = append(a.closers, hub.Close)
	case config.BroadcastRedis:
		rdb, err := redisstore.NewClient(ctx, cfg.Broadcast.Redis)
		if err != nil {
			return fmt.Errorf("open broadcast: %w", err)
		}
		ch := redisbroadcast.New(rdb, cfg.Broadcast.Topic, a.logger)
		a.channel, a.pinger = ch, ch
		a.closers = append(a.closers, rdb.Close, ch.Close)
	}

	var metrics observability.MetricsRecorder = observability.NoopMetrics()
	switch cfg.Metrics.Driver {
	case config.MetricsExpvar:
		metrics = observability.NewExpvarMetricsRecorder(cfg.Metrics.Name)
		a.expvar = true
	case config.MetricsPrometheus:
		a.registry = prometheus.NewRegistry()
		rec, err := observability.NewPrometheusRecorder(a.registry)
		if err != nil {
			return fmt.Errorf("register metrics: %w", err)
		}
		metrics = rec
	}

	var issuer *auth.Issuer
	if cfg.Auth.JWTSecret != "" {
		if issuer, err = auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL); err != nil {
			return err
		}
	}

	adapterOpts := []snapshot.Option{snapshot.WithLogger(a.logger)}
	if a.channel != nil {
		adapterOpts = append(adapterOpts, snapshot.WithChannel(a.channel))
	}
	adapter := snapshot.New(store, cfg.Namespace, adapterOpts...)
	a.svc, err = core.Open(ctx, adapter,
		core.WithLogger(a.logger),
		core.WithMetricsRecorder(metrics),
		core.WithAuditRecorder(observability.LoggingAudit{Logger: a.logger}),
		core.WithFixturePath(cfg.FixturePath),
		core.WithTokenIssuer(issuer),
	)
	if err != nil {
		return fmt.Errorf("open data layer: %w", err)
	}
	return nil
}

// Close releases everything opened by openApp in reverse order.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// withApp opens the data layer for the duration of fn.
func withApp(ctx context.Context, opts *RootOptions, logOut io.Writer, fn func(*app) error) error {
	a, err := openApp(ctx, opts, logOut)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

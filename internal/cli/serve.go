package cli

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"hrdesk/internal/core"
	"hrdesk/internal/events"
	"hrdesk/internal/observability"
)

const shutdownTimeout = 5 * time.Second

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the data layer as one tab until interrupted",
		Long: `Open the data layer, follow writes from other instances sharing the
namespace, run the scheduled attendance backfill and log every change event.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, rootOpts, cmd.ErrOrStderr())
		},
	}
}

func runServe(ctx context.Context, rootOpts *RootOptions, logOut io.Writer) error {
	a, err := openApp(ctx, rootOpts, logOut)
	if err != nil {
		return err
	}
	defer a.Close()
	logEvents(a.svc, a.logger)

	if a.channel != nil {
		syncer := core.NewSynchronizer(a.svc, a.channel,
			core.WithPinger(a.pinger),
			core.WithPingInterval(a.cfg.Broadcast.PingInterval),
		)
		if err := syncer.Start(ctx); err != nil {
			return fmt.Errorf("start sync: %w", err)
		}
		defer syncer.Stop()
	}

	g, gctx := errgroup.WithContext(ctx)
	if spec := a.cfg.Backfill.Schedule; spec != "" {
		c := cron.New()
		if _, err := c.AddFunc(spec, func() {
			n, err := a.svc.BackfillToday(gctx)
			if err != nil {
				a.logger.Error("scheduled backfill failed", "error", err)
				return
			}
			a.logger.Info("scheduled backfill", "added", n)
		}); err != nil {
			return fmt.Errorf("schedule backfill %q: %w", spec, err)
		}
		c.Start()
		g.Go(func() error {
			<-gctx.Done()
			<-c.Stop().Done()
			return nil
		})
	}
	if addr := a.cfg.Metrics.Addr; addr != "" {
		srv := &http.Server{Addr: addr, Handler: a.metricsHandler(), ReadHeaderTimeout: shutdownTimeout}
		g.Go(func() error {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics listener: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			sctx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(sctx)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		return nil
	})

	a.logger.Info("hrdesk serving",
		"namespace", a.cfg.Namespace,
		"storage", string(a.cfg.Storage.Driver),
		"broadcast", a.cfg.Broadcast.Driver,
		"status", string(a.svc.Status()),
	)
	err = g.Wait()
	a.logger.Info("hrdesk stopped")
	return err
}

func (a *app) metricsHandler() http.Handler {
	mux := http.NewServeMux()
	if a.registry != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
	}
	if a.expvar {
		mux.Handle("/debug/vars", expvar.Handler())
	}
	return mux
}

// logEvents subscribes a logging handler to every event.
func logEvents(svc *core.Service, logger observability.Logger) {
	for _, name := range events.All() {
		svc.On(name, func(ev events.Event) {
			args := []any{"event", string(ev.Name)}
			if ev.Action != "" {
				args = append(args, "action", ev.Action)
			}
			if ev.ID != "" {
				args = append(args, "id", ev.ID)
			}
			if ev.Data != nil {
				args = append(args, "data", ev.Data)
			}
			logger.Info("change", args...)
		})
	}
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"signup/internal/platform/config"
	"signup/internal/platform/health"
	"signup/internal/platform/logger"
	platformmetrics "signup/internal/platform/metrics"
	"signup/internal/platform/tracer"
	"signup/internal/registration/handler"
	"signup/internal/registration/metrics"
	"signup/internal/registration/service"
	"signup/internal/registration/session"
	"signup/internal/registration/workers/cleanup"
	"signup/internal/shell"
	httptransport "signup/internal/transport/http"
)

const (
	shutdownTimeout   = 10 * time.Second
	poolStatsInterval = 15 * time.Second
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal packages.
func main() {
	config.LoadDotEnv()
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	log.Info("initializing signup",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
		"sink", cfg.Sink.Kind,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New(prometheus.DefaultRegisterer)
	healthHandler := health.New(cfg.Environment)
	trace := tracer.NewOTel()

	deps, err := buildDependencies(ctx, cfg, log, m, trace, healthHandler)
	if err != nil {
		log.Error("failed to initialize dependencies", "error", err)
		os.Exit(1)
	}
	defer deps.Close()

	store := session.NewStore(cfg.Session.TTL)
	svc := service.New(store, deps.lookups, deps.sink,
		service.WithMetrics(m),
		service.WithLogger(log),
		service.WithTracer(trace),
		service.WithLookupWait(cfg.Lookup.Wait),
		service.WithLookupTimeout(cfg.Lookup.Timeout),
	)
	cleaner, err := cleanup.New(store,
		cleanup.WithInterval(cfg.Session.CleanupInterval),
		cleanup.WithLogger(log),
		cleanup.WithRecorder(m),
	)
	if err != nil {
		log.Error("failed to initialize session cleanup", "error", err)
		os.Exit(1)
	}

	router := httptransport.NewRouter(httptransport.Config{
		Logger:      log,
		Health:      healthHandler,
		Shell:       shell.New(shell.NoopAuthenticator{}),
		HTTPMetrics: platformmetrics.New(prometheus.DefaultRegisterer),
		Routes:      []httptransport.Registrar{handler.New(svc, log)},
	})
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      35 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return ignoreCanceled(cleaner.Start(gctx))
	})
	if deps.redis != nil {
		g.Go(func() error {
			ticker := time.NewTicker(poolStatsInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					deps.redis.RecordPoolStats()
				case <-gctx.Done():
					return nil
				}
			}
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

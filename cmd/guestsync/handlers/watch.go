package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/jardilio/august-guesty-integration/internal/config"
	"github.com/jardilio/august-guesty-integration/internal/observability"
)

// runPass runs one sync pass (for testing injection).
var runPass = syncOnce

// Watch runs sync passes on the configured interval until the context is
// cancelled. Prometheus metrics are served on the configured address for
// the lifetime of the loop. A failing pass is logged and counted; the
// loop keeps going.
func Watch(ctx context.Context, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	metrics := observability.NewMetrics()
	server := startMetricsServer(cfg, metrics)
	defer server.Shutdown(context.Background()) //nolint:errcheck

	return watchLoop(ctx, cfg, metrics)
}

func watchLoop(ctx context.Context, cfg *config.Config, metrics *observability.Metrics) error {
	obs := newObserver()
	ticker := time.NewTicker(cfg.Sync.WatchInterval.Std())
	defer ticker.Stop()

	for {
		started := timeNow()
		outcome := "success"
		if err := runPass(ctx, cfg, metrics); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			outcome = "failure"
			obs.Printf("Sync pass failed: %v", err)
		}
		metrics.ObserveRun(outcome, timeNow().Sub(started))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func startMetricsServer(cfg *config.Config, metrics *observability.Metrics) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", metrics.Handler())

	server := &http.Server{
		Addr:              cfg.Sync.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			newObserver().Printf("Metrics server failed: %v", err)
		}
	}()
	return server
}

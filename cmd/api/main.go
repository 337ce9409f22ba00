// Package main implements the Wessley VIN API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/WessleyAI/wessley-vin/engine/graph"
	"github.com/WessleyAI/wessley-vin/engine/vin"
	"github.com/WessleyAI/wessley-vin/pkg/config"
	"github.com/WessleyAI/wessley-vin/pkg/metrics"
	"github.com/WessleyAI/wessley-vin/pkg/mid"
	"github.com/WessleyAI/wessley-vin/pkg/resilience"
	"github.com/WessleyAI/wessley-vin/pkg/vpic"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

func main() {
	cfg := config.Load()
	logger := cfg.Logger()
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- WMI registry: file first, then the graph. Written before serving. ---
	n, err := cfg.LoadWMIs()
	if err != nil {
		return err
	}
	if n > 0 {
		logger.Info("wmi file loaded", "entries", n, "path", cfg.WMIFile)
	}

	deps := Deps{
		Logger:  logger,
		Metrics: metrics.New(),
		Options: cfg.DecodeOptions(),
	}

	// --- Connect to Neo4j (optional) ---
	if cfg.Neo4jURL != "" {
		driver, err := neo4j.NewDriverWithContext(cfg.Neo4jURL, neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPass, ""))
		if err != nil {
			return fmt.Errorf("neo4j driver: %w", err)
		}
		defer driver.Close(context.Background())

		store := graph.New(driver)
		if err := store.EnsureSchema(ctx); err != nil {
			return err
		}
		wmis, err := store.LoadWMIs(ctx)
		if err != nil {
			return err
		}
		vin.RegisterWMIs(wmis)
		logger.Info("neo4j connected", "url", cfg.Neo4jURL, "wmis", len(wmis))
		deps.Store = store
	}

	// --- vPIC enrichment (optional) ---
	if cfg.VPICEnabled {
		deps.Enricher = vpic.New(vpic.Config{BaseURL: cfg.VPICURL, RPS: cfg.VPICRPS})
		logger.Info("vpic enrichment enabled", "url", cfg.VPICURL)
	}

	// --- Build HTTP server ---
	handler := mid.Chain(newMux(deps),
		mid.Recover(logger),
		mid.RequestID(),
		mid.Logger(logger),
		mid.Metrics(deps.Metrics),
		mid.CORS(cfg.CORSOrigin),
		mid.RateLimit(resilience.NewLimiter(resilience.LimiterOpts{Rate: cfg.RateLimitRPS, Burst: cfg.RateLimitBurst})),
		mid.OTel(cfg.ServiceName),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// --- Graceful shutdown ---
	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server starting", "port", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutCtx)
}

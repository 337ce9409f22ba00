// Command vin-worker consumes scanner events from NATS, decodes the VINs they
// carry and publishes the results. It also answers ad-hoc decode requests.
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
	"github.com/WessleyAI/wessley-vin/engine/scan"
	"github.com/WessleyAI/wessley-vin/engine/vin"
	"github.com/WessleyAI/wessley-vin/pkg/config"
	"github.com/WessleyAI/wessley-vin/pkg/metrics"
	"github.com/nats-io/nats.go"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

func main() {
	cfg := config.Load()
	logger := cfg.Logger().With("component", "vin-worker")
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("worker exited with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	n, err := cfg.LoadWMIs()
	if err != nil {
		return err
	}
	if n > 0 {
		logger.Info("wmi file loaded", "entries", n, "path", cfg.WMIFile)
	}

	met := metrics.New()
	deps := scan.Deps{
		Metrics: met,
		Logger:  logger,
		Options: cfg.DecodeOptions(),
	}

	// --- Connect to Neo4j (optional) ---
	if cfg.Neo4jURL != "" {
		driver, err := neo4j.NewDriverWithContext(cfg.Neo4jURL, neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPass, ""))
		if err != nil {
			return fmt.Errorf("neo4j driver: %w", err)
		}
		defer driver.Close(context.Background())
		if err := driver.VerifyConnectivity(ctx); err != nil {
			return fmt.Errorf("neo4j verify: %w", err)
		}

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

	// --- Connect to NATS ---
	nc, err := nats.Connect(cfg.NATSURL,
		nats.Name(cfg.ServiceName+"-worker"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "err", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("nats reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return fmt.Errorf("nats connect: %w", err)
	}
	defer nc.Close()
	logger.Info("nats connected", "url", nc.ConnectedUrl())

	proc := scan.NewProcessor(deps)
	scanSub, err := scan.StartConsumer(nc, proc, logger)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", scan.ScannedSubject, err)
	}
	reqSub, err := scan.ServeRequests(nc, proc, logger)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", scan.DecodeSubject, err)
	}
	logger.Info("worker listening", "scanned", scan.ScannedSubject, "decode", scan.DecodeSubject, "queue", scan.QueueGroup)

	// --- Metrics and health ---
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", met.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		if !nc.IsConnected() {
			http.Error(w, "nats disconnected", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	})
	srv := &http.Server{Addr: ":" + cfg.Port, Handler: mux, ReadTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	// Drain lets in-flight messages finish before the connection closes.
	for _, sub := range []*nats.Subscription{scanSub, reqSub} {
		if err := sub.Drain(); err != nil {
			logger.Warn("drain failed", "subject", sub.Subject, "err", err)
		}
	}
	if err := nc.Drain(); err != nil {
		logger.Warn("nats drain failed", "err", err)
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutCtx)
}

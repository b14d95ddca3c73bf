// Sentient Playground agent service: accepts prompts over HTTP and streams
// the staged GRID workflow for each job over a WebSocket.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/pvsairam/Sentient-Playground/pkg/api"
	"github.com/pvsairam/Sentient-Playground/pkg/config"
	"github.com/pvsairam/Sentient-Playground/pkg/jobs"
	"github.com/pvsairam/Sentient-Playground/pkg/stream"
	"github.com/pvsairam/Sentient-Playground/pkg/usage"
	"github.com/pvsairam/Sentient-Playground/pkg/workflow"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file, continuing with existing environment")
	}

	cfg := config.Load()
	ctx := context.Background()

	slog.Info("Starting Sentient Playground agent service",
		"http_port", cfg.HTTPPort,
		"ws_base", cfg.WSBase)

	// Usage ledger: Postgres when configured, in-memory otherwise. The
	// service stays usable without a database; usage records just don't
	// survive a restart.
	var ledger usage.Ledger
	if cfg.DatabaseURL != "" {
		pgLedger, err := usage.NewPostgresLedger(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("Failed to initialize Postgres usage ledger", "error", err)
			os.Exit(1)
		}
		ledger = pgLedger
		slog.Info("Connected to PostgreSQL usage ledger")
	} else {
		ledger = usage.NewMemoryLedger()
		slog.Warn("DATABASE_URL not set, usage records held in memory only")
	}
	defer func() {
		if err := ledger.Close(); err != nil {
			slog.Error("Error closing usage ledger", "error", err)
		}
	}()

	pricing := usage.DefaultPricing()
	if cfg.PricingFile != "" {
		loaded, err := usage.LoadPricing(cfg.PricingFile)
		if err != nil {
			slog.Error("Failed to load pricing file", "path", cfg.PricingFile, "error", err)
			os.Exit(1)
		}
		pricing = loaded
		slog.Info("Loaded pricing overrides", "path", cfg.PricingFile)
	}
	tracker := usage.NewTracker(ledger, pricing)

	registry := jobs.New()
	sweeper := jobs.NewSweeper(registry, cfg.JobTTL, cfg.CredentialTTL, cfg.SweepInterval)
	sweeper.Start(ctx)
	defer sweeper.Stop()

	pacing := workflow.DefaultPacing()
	if cfg.PacingDisabled {
		pacing = workflow.NoPacing()
	}
	factory := workflow.NewFactory(tracker, cfg.DefaultCredentials, pacing)
	coordinator := stream.NewCoordinator(registry, factory, cfg.WSWriteTimeout)

	server := api.NewServer(cfg, registry, ledger, coordinator, factory)

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.HTTPPort
		slog.Info("HTTP server listening", "addr", addr)
		if err := server.Start(addr); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			errCh <- err
		}
	}()

	slog.Info("Agent service started",
		"realtime_available", factory.RealtimeAvailable())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	select {
	case sig := <-sigCh:
		slog.Info("Shutdown signal received", "signal", sig)
	case err := <-errCh:
		slog.Error("Server error triggered shutdown", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Shutdown complete")
}

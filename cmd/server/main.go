// Sentryline - Security Alert Ingestion and Real-Time Monitoring
// Copyright 2026 Sentryline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentryline/sentryline

// Package main is the entry point for the Sentryline server application.
//
// Sentryline ingests Wazuh security alerts over an HTTP webhook, deduplicates
// and classifies them, keeps a bounded in-memory retention window, and fans
// the enriched alerts out to WebSocket subscribers in real time.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: Load settings from environment variables and config files (Koanf v2)
//  2. Ingestion pipeline: fingerprint dedup index, classifier, retention store
//  3. WebSocket Hub: Enable real-time updates to connected clients
//  4. Wazuh manager client (optional): upstream health via circuit breaker
//  5. HTTP Server: webhook ingestion, query API, health, Prometheus metrics
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest priority wins):
//   - Environment variables (HTTP_PORT, LOG_LEVEL, WAZUH_URL, ...)
//   - Config file (config.yaml, or CONFIG_PATH)
//   - Built-in defaults
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM:
//   - Stops accepting new connections
//   - Waits for in-flight requests to complete (configurable timeout)
//   - Closes all WebSocket clients
//
// # Example Usage
//
// Development, in-memory only:
//
//	LOG_FORMAT=console ./sentryline
//
// With upstream Wazuh manager health checks:
//
//	export WAZUH_ENABLED=true
//	export WAZUH_URL=https://wazuh-manager:55000
//	export WAZUH_USERNAME=wazuh
//	export WAZUH_PASSWORD=secret
//	./sentryline
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sentryline/sentryline/internal/api"
	"github.com/sentryline/sentryline/internal/config"
	"github.com/sentryline/sentryline/internal/ingest"
	"github.com/sentryline/sentryline/internal/logging"
	"github.com/sentryline/sentryline/internal/store"
	"github.com/sentryline/sentryline/internal/supervisor"
	"github.com/sentryline/sentryline/internal/supervisor/services"
	"github.com/sentryline/sentryline/internal/wazuh"
	ws "github.com/sentryline/sentryline/internal/websocket"
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize zerolog with configuration
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().Msg("Starting Sentryline with supervisor tree")
	logging.Info().
		Int("retention_capacity", cfg.Ingest.RetentionCapacity).
		Int("dedup_capacity", cfg.Ingest.DedupCapacity).
		Bool("wazuh_enabled", cfg.Wazuh.Enabled).
		Msg("Configuration loaded")

	// Build the ingestion pipeline: dedup index, classifier, retention store
	index := ingest.NewDedupIndex(cfg.Ingest.DedupCapacity, cfg.Ingest.DedupRetain)
	classifier := ingest.NewClassifier(ingest.ClassifierConfig{
		HighSeverityThreshold: cfg.Classify.HighSeverityThreshold,
		BruteForceRuleIDs:     cfg.Classify.BruteForceRuleIDs,
		FileIntegrityMarker:   cfg.Classify.FileIntegrityMarker,
		AuthFailureMarkers:    cfg.Classify.AuthFailureMarkers,
	})
	alertStore := store.New(cfg.Ingest.RetentionCapacity)

	// Create WebSocket hub for real-time updates (before the pipeline, which
	// broadcasts committed alerts through it)
	wsHub := ws.NewHub(alertStore, cfg.Ingest.CatchUpCount, cfg.Ingest.ClientQueueSize)

	pipeline := ingest.NewPipeline(index, classifier, alertStore, wsHub)

	// Initialize Wazuh manager client with circuit breaker for fault tolerance.
	// The upstream is OPTIONAL - Sentryline ingests webhooks standalone, the
	// manager API only feeds the health endpoint and agent lookups.
	var upstream api.UpstreamClient
	if cfg.Wazuh.Enabled {
		client := wazuh.NewCircuitBreakerClient(&cfg.Wazuh)
		if err := client.Ping(context.Background()); err != nil {
			logging.Warn().Err(err).Msg("Failed to connect to Wazuh manager (will retry)")
		} else {
			logging.Info().Str("url", cfg.Wazuh.URL).Msg("Connected to Wazuh manager")
		}
		upstream = client
	} else {
		logging.Info().Msg("Wazuh manager integration disabled - running standalone")
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create structured logger for supervisor using our slog adapter.
	// This bridges zerolog to slog for sutureslog compatibility.
	slogLogger := logging.NewSlogLogger()

	tree, err := supervisor.NewSupervisorTree(slogLogger, supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	handler := api.NewHandler(pipeline, alertStore, index, cfg, upstream, wsHub)
	chiMW := api.NewChiMiddlewareFromConfig(
		cfg.Security.CORSOrigins,
		cfg.Security.RateLimitReqs,
		cfg.Security.RateLimitWindow,
		cfg.Security.RateLimitDisabled,
	)

	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
	}

	router := api.NewRouter(handler, chiMW)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.SetupChi(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Messaging layer services
	tree.AddMessagingService(services.NewWebSocketHubService(wsHub))
	logging.Info().Msg("WebSocket hub added to supervisor tree")

	// API layer services
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	// Wait for supervisor to finish (either from signal or error)
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Wait for the error channel to close (supervisor finished)
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	// Report any services that failed to stop within timeout
	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}

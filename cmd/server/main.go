// FriendRec - Friend Recommendation Job Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/friendrec

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/tomtom215/friendrec/internal/api"
	"github.com/tomtom215/friendrec/internal/config"
	"github.com/tomtom215/friendrec/internal/events"
	"github.com/tomtom215/friendrec/internal/jobs"
	"github.com/tomtom215/friendrec/internal/logging"
	"github.com/tomtom215/friendrec/internal/metrics"
	"github.com/tomtom215/friendrec/internal/supervisor"
	"github.com/tomtom215/friendrec/internal/supervisor/services"
	"github.com/tomtom215/friendrec/internal/websocket"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("FriendRec stopped with an error")
	}
}

//nolint:gocyclo // sequential wiring of every component
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if err := logging.Init(cfg.LoggerConfig()); err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}
	logger := logging.Logger()

	logger.Info().
		Str("version", version).
		Str("addr", cfg.Server.Addr()).
		Str("storage", cfg.Storage.Backend).
		Int("workers", cfg.Engine.Workers).
		Int("queue_size", cfg.Engine.QueueSize).
		Str("weighting", cfg.Engine.Weighting).
		Msg("Starting FriendRec")
	metrics.AppInfo.WithLabelValues(version, runtime.Version()).Set(1)

	store, err := jobs.OpenStore(jobs.StoreType(cfg.Storage.Backend), cfg.Storage.Path, cfg.Retention.TTL)
	if err != nil {
		return fmt.Errorf("open artifact store: %w", err)
	}
	store = jobs.NewBreakerStore(store, jobs.BreakerConfig{
		Failures: cfg.Storage.BreakerFailures,
		Timeout:  cfg.Storage.BreakerTimeout,
	}, logger)
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error().Err(err).Msg("Error closing artifact store")
		}
	}()

	bus := events.NewBus(events.BusConfig{BufferSize: cfg.Events.BufferSize}, logger)
	defer func() {
		if err := bus.Close(); err != nil {
			logger.Error().Err(err).Msg("Error closing event bus")
		}
	}()

	engine, err := jobs.NewEngine(cfg.JobsConfig(), store, logger, jobs.WithPublisher(bus))
	if err != nil {
		return fmt.Errorf("create job engine: %w", err)
	}
	janitor := jobs.NewJanitor(engine, cfg.Retention.TTL, cfg.Retention.Interval, logger)
	auditor := events.NewAuditor(bus.Subscriber(), events.AuditorConfig{Capacity: cfg.Events.AuditCapacity}, logger)
	hub := websocket.NewHub(logger)
	forwarder := websocket.NewForwarder(bus.Subscriber(), hub, logger)

	handler := api.NewHandler(engine, auditor, api.HandlerConfig{
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		AllowedOrigins: cfg.Server.CORSOrigins,
		Version:        version,
	}, logger, api.WithEventHub(hub))
	router := api.NewRouter(handler, api.ChiMiddlewareConfigFrom(cfg.Server), logger)
	server := api.NewServer(cfg.Server, router.Setup())

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(logger.With().Str("component", "supervisor").Logger()),
		supervisor.TreeConfig{
			FailureThreshold: cfg.Supervisor.FailureThreshold,
			FailureDecay:     cfg.Supervisor.FailureDecay,
			FailureBackoff:   cfg.Supervisor.FailureBackoff,
			ShutdownTimeout:  cfg.Supervisor.ShutdownTimeout,
		})
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	for _, s := range []struct {
		layer supervisor.Layer
		svc   interface {
			Serve(context.Context) error
			String() string
		}
	}{
		{supervisor.LayerData, engine},
		{supervisor.LayerData, janitor},
		{supervisor.LayerMessaging, auditor},
		{supervisor.LayerMessaging, hub},
		{supervisor.LayerMessaging, forwarder},
		{supervisor.LayerAPI, services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout, logger)},
	} {
		if _, err := tree.Add(s.layer, s.svc); err != nil {
			return err
		}
		logger.Debug().Str("service", s.svc.String()).Str("layer", s.layer.String()).Msg("Service added to supervisor tree")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := tree.ServeBackground(ctx)
	logger.Info().Msg("Supervisor tree started")

	select {
	case <-ctx.Done():
		logger.Info().Msg("Shutdown signal received, waiting for services to stop")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("Supervisor tree error")
		}
	}
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	if unstopped, err := tree.UnstoppedServiceReport(); err == nil {
		for _, svc := range unstopped {
			logger.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
		}
	}

	logger.Info().Msg("FriendRec stopped gracefully")
	return nil
}

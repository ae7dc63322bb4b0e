// Crowd Analyzer - Crowd Density Analytics and Sensor Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crowdanalyzer

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/tomtom215/crowdanalyzer/internal/api"
	"github.com/tomtom215/crowdanalyzer/internal/auth"
	"github.com/tomtom215/crowdanalyzer/internal/authz"
	"github.com/tomtom215/crowdanalyzer/internal/config"
	"github.com/tomtom215/crowdanalyzer/internal/database"
	"github.com/tomtom215/crowdanalyzer/internal/events"
	"github.com/tomtom215/crowdanalyzer/internal/live"
	"github.com/tomtom215/crowdanalyzer/internal/locations"
	"github.com/tomtom215/crowdanalyzer/internal/logging"
	"github.com/tomtom215/crowdanalyzer/internal/metrics"
	"github.com/tomtom215/crowdanalyzer/internal/supervisor"
	"github.com/tomtom215/crowdanalyzer/internal/supervisor/services"
	"github.com/tomtom215/crowdanalyzer/internal/upload"
	ws "github.com/tomtom215/crowdanalyzer/internal/websocket"
)

const (
	shutdownTimeout    = 10 * time.Second
	oauthCleanupPeriod = time.Minute
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	metrics.AppInfo.WithLabelValues(api.Version, runtime.Version()).Set(1)

	logging.Info().
		Str("version", api.Version).
		Str("environment", cfg.Server.Environment).
		Str("db_path", cfg.Database.Path).
		Msg("Starting Crowd Analyzer")

	if err := run(cfg); err != nil {
		logging.Fatal().Err(err).Msg("Server stopped with error")
	}
	logging.Info().Msg("Application stopped gracefully")
}

func run(cfg *config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Storage
	db, err := database.New(&cfg.Database)
	if err != nil {
		return err
	}
	defer closeWithLog("database", db.Close)

	if cfg.Database.SeedData {
		if err := db.Seed(ctx); err != nil {
			return err
		}
		logging.Info().Msg("Seed data ensured")
	}

	prefs, err := locations.OpenPreferences(cfg.Preferences)
	if err != nil {
		return err
	}
	defer closeWithLog("preferences", prefs.Close)

	// Authentication and authorization
	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		return err
	}
	authService := auth.NewService(db, jwtManager, cfg.Security.BcryptCost)
	if cfg.Security.AdminEmail != "" && cfg.Security.AdminPassword != "" {
		if err := authService.EnsureAdmin(ctx, "Administrator", cfg.Security.AdminEmail, cfg.Security.AdminPassword); err != nil {
			return err
		}
	}
	providers := auth.NewProviders(cfg.OAuth)

	enforcer, err := authz.NewEnforcer(5 * time.Minute)
	if err != nil {
		return err
	}
	defer enforcer.Close()

	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (rate_limit_disabled=true)")
	}

	// Messaging
	wmLogger := watermill.NewSlogLogger(logging.NewSlogLogger())
	bus := events.NewBus(wmLogger)
	defer closeWithLog("event bus", bus.Close)

	hub := ws.NewHub()
	tracker := live.NewTracker(live.WithKnownLocations(locations.KnownFunc(db)))
	sessions := live.NewRegistry(tracker)
	feed := live.NewFeed()

	eventRouter, err := events.NewRouter(events.DefaultRouterConfig(), bus, hub, wmLogger)
	if err != nil {
		return err
	}
	eventRouter.AddConsumerHandler("live-feed", events.TopicNotification, feed.Handle)

	// HTTP
	uploadStore, err := upload.NewStore(&cfg.Upload)
	if err != nil {
		return err
	}
	uploads := upload.NewHandler(uploadStore, db, bus)

	handler := api.NewHandler(api.Deps{
		Config:      cfg,
		Store:       db,
		Auth:        authService,
		Providers:   providers,
		Preferences: prefs,
		Publisher:   bus,
		Hub:         hub,
		Sessions:    sessions,
		Tracker:     tracker,
		Feed:        feed,
	})
	defer handler.Close()

	router := api.NewRouter(handler, uploads, auth.NewMiddleware(jwtManager), authz.NewMiddleware(enforcer))
	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.SetupChi(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	// Supervisor tree
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  shutdownTimeout,
	})
	if err != nil {
		return err
	}

	tree.AddDataService(services.NewEventRouterService(eventRouter))
	tree.AddMessagingService(services.NewWebSocketHubService(hub))
	if cfg.Live.Enabled {
		tree.AddMessagingService(live.NewTicker(tracker, bus, cfg.Live.TickInterval))
		logging.Info().Dur("interval", cfg.Live.TickInterval).Msg("Live density ticker enabled")
	}
	tree.AddMessagingService(services.NewIntervalService("oauth-state-cleanup", oauthCleanupPeriod, func(context.Context) {
		if n := providers.States().CleanupExpired(); n > 0 {
			logging.Debug().Int("expired", n).Msg("Expired OAuth states removed")
		}
	}))
	tree.AddAPIService(services.NewHTTPServerService(server, shutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	var treeErr error
	if err := <-tree.ServeBackground(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree error")
		treeErr = err
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}
	return treeErr
}

func closeWithLog(name string, closeFn func() error) {
	if err := closeFn(); err != nil {
		logging.Error().Err(err).Str("component", name).Msg("Error during shutdown")
	}
}

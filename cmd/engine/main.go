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

	"inkwell/internal/authz"
	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/engine"
	"inkwell/internal/handlers"
	"inkwell/internal/logging"
	"inkwell/internal/middleware"
	"inkwell/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Caller: cfg.Debug})
	middleware.SetSigningKey(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	if err := run(cfg); err != nil {
		logging.Fatal().Err(err).Msg("Server exited")
	}
}

func run(cfg *config.Config) error {
	ctx := context.Background()

	db, err := database.NewPostgresDB(cfg.Database.URI)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer db.Close(ctx)

	initCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	err = db.InitializeTables(initCtx)
	cancel()
	if err != nil {
		return fmt.Errorf("initialize tables: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := utils.NewMetricsCollector(registry)

	enforcer, err := authz.NewEnforcer()
	if err != nil {
		return fmt.Errorf("load authorization policy: %w", err)
	}

	system := actor.NewActorSystem()
	inkwell := engine.NewEngine(system, db, enforcer, metrics, engine.Options{
		PageSize:      cfg.FeedPageSize,
		NotifyTimeout: cfg.NotifyTimeout,
	})
	defer inkwell.Shutdown()

	server := handlers.NewServer(inkwell, db, metrics, registry, handlers.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		RateLimitRPM:   cfg.Server.RateLimitRPM,
		MetricsEnabled: cfg.Server.MetricsEnabled,
	})

	httpServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           server.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", httpServer.Addr).Msg("Starting server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logging.Info().Str("signal", sig.String()).Msg("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

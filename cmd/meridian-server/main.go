// FILE: cmd/meridian-server/main.go
// Package main implements the Meridian game server: the REST API over the
// game service, with optional sqlite persistence and a pooled deal set.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"meridian/internal/config"
	"meridian/internal/service"
	"meridian/internal/storage"
	"meridian/internal/transport/http"
)

const gracefulShutdownTimeout = 5 * time.Second

func main() {
	var (
		configPath = flag.String("config", "", "Path to YAML config file (optional, MERIDIAN_* env overrides apply)")
		dev        = flag.Bool("dev", false, "Development mode (relaxed rate limits, invariant checks)")
		pidPath    = flag.String("pid", "", "Optional path to write PID file")
		pidLock    = flag.Bool("pid-lock", false, "Lock PID file to allow only one instance (requires -pid)")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *dev {
		cfg.DevMode = true
	}
	logger := cfg.Logger()
	slog.SetDefault(logger)

	if err := run(cfg, logger, *pidPath, *pidLock); err != nil {
		logger.Error("server failed", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger, pidPath string, pidLock bool) error {
	if pidLock && pidPath == "" {
		return fmt.Errorf("-pid-lock requires -pid")
	}
	if pidPath != "" {
		release, err := writePIDFile(pidPath, pidLock)
		if err != nil {
			return err
		}
		defer release()
		logger.Info("pid file written", "path", pidPath, "lock", pidLock)
	}

	var store *storage.Store
	if cfg.Storage.Path != "" {
		var err error
		store, err = storage.NewStore(cfg.Storage.Path, cfg.DevMode)
		if err != nil {
			return fmt.Errorf("initialize storage: %w", err)
		}
		if err := store.InitDB(); err != nil {
			store.Close()
			return fmt.Errorf("initialize schema: %w", err)
		}
		logger.Info("persistent storage enabled", "path", cfg.Storage.Path)
	} else {
		logger.Info("persistent storage disabled")
	}

	// the service owns the store from here on
	svc := service.New(store, service.Options{Game: cfg.GameOptions(), MaxGames: cfg.Game.MaxGames}, logger)
	defer func() {
		if err := svc.Close(); err != nil {
			logger.Warn("service close", "err", err)
		}
	}()

	if cfg.Deals.Dir != "" {
		loaded, rejected, err := svc.Deals().Load(cfg.Deals.Dir)
		if err != nil {
			return fmt.Errorf("load deals: %w", err)
		}
		for _, r := range rejected {
			logger.Warn("deal rejected", "source", r.Source, "err", r.Err)
		}
		logger.Info("deal pool loaded", "dir", cfg.Deals.Dir, "deals", loaded, "rejected", len(rejected))
	}

	app := http.NewFiberApp(svc, http.Config{
		DevMode:     cfg.DevMode,
		RateLimit:   cfg.HTTP.RateLimit,
		CORSOrigins: cfg.HTTP.CORSOrigins,
		AccessLog:   cfg.DevMode,
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Info("api listening", "addr", cfg.HTTP.Addr, "dev", cfg.DevMode, "rate_limit_per_min", cfg.HTTP.RateLimit)
		errCh <- app.Listen(cfg.HTTP.Addr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case sig := <-quit:
		logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Warn("server forced to shutdown", "err", err)
	}
	logger.Info("server exited")
	return nil
}

// Package main provides the entry point for the vault API server.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/keepsakelabs/giftvault/internal/api"
	"github.com/keepsakelabs/giftvault/internal/auth"
	pgstore "github.com/keepsakelabs/giftvault/internal/store/postgres"
	"github.com/keepsakelabs/giftvault/pkg/config"
	"github.com/keepsakelabs/giftvault/pkg/logger"
)

func main() {
	log := logger.New(slog.LevelInfo, true)

	cfg, err := config.Load()
	if err != nil {
		log.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	storeCfg := pgstore.DefaultConfig(cfg.DatabaseDSN)
	store, err := pgstore.NewPostgresStore(storeCfg, log.Logger)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	authCfg := &auth.Config{
		JWTSecret:    []byte(cfg.JWTSecret),
		TokenExpiry:  cfg.JWTExpiry,
		Password:     cfg.AdminPassword,
		PasswordHash: cfg.AdminPasswordHash,
	}
	authService := auth.NewService(authCfg, log.Logger)

	server := api.NewServer(cfg, store, authService, log.Logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	log.Info("starting API server",
		"host", cfg.APIHost,
		"port", cfg.APIPort,
	)

	if err := server.Start(ctx); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}

	// Give time for graceful shutdown
	time.Sleep(100 * time.Millisecond)
	log.Info("server stopped")
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/scoring-lab/project-scoring/internal/auth"
	corecfg "github.com/scoring-lab/project-scoring/internal/core/config"
	"github.com/scoring-lab/project-scoring/internal/dispatch"
	"github.com/scoring-lab/project-scoring/internal/interests"
	"github.com/scoring-lab/project-scoring/internal/scoring"
	"github.com/scoring-lab/project-scoring/internal/server"
	"github.com/scoring-lab/project-scoring/internal/storage"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file (optional)")
	flag.Parse()

	// 0. Initialize Logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 1. Load Configuration
	cfg, err := corecfg.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	if cfg.Server.LogPath != "" {
		logFile, err := os.OpenFile(cfg.Server.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			slog.Error("Failed to open log file", "path", cfg.Server.LogPath, "error", err)
			os.Exit(1)
		}
		defer logFile.Close()
		slog.SetDefault(slog.New(slog.NewTextHandler(logFile, nil)))
	}
	slog.Info("Loaded config", "config", cfg)

	cacheTTL, err := cfg.Store.CacheTTLDuration()
	if err != nil {
		slog.Error("Invalid cache TTL", "value", cfg.Store.CacheTTL, "error", err)
		os.Exit(1)
	}

	// 2. Initialize Storage
	store := storage.NewMemoryStore()
	if cfg.Store.InterestsPath != "" {
		seeded, err := storage.LoadInterestsFile(cfg.Store.InterestsPath)
		if err != nil {
			slog.Error("Failed to load interests file", "path", cfg.Store.InterestsPath, "error", err)
			os.Exit(1)
		}
		store = storage.NewMemoryStoreWithInterests(seeded)
		slog.Info("Loaded interests store", "path", cfg.Store.InterestsPath, "clients", len(seeded))
	}

	// 3. Initialize Authenticator
	authenticator := auth.New(cfg.Auth.UserSalt, cfg.Auth.AdminSalt, cfg.Auth.AdminLogin)

	// 4. Register Business Methods
	registry := dispatch.NewRegistry()
	registry.Register(scoring.MethodName, scoring.New(store, cacheTTL))
	registry.Register(interests.MethodName, interests.New(store))
	slog.Info("Method registry initialized", "methods", registry.Methods())

	dispatchSvc := dispatch.NewService(registry, authenticator)

	// 5. Initialize Server
	srv := server.New(fmtAddr(cfg.Server.Host, cfg.Server.Port), cfg.Server.Mode)
	dispatchSvc.RegisterRoutes(srv.Engine)

	// 6. Start Services
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Signal handler → triggers the shutdown sequence below.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		slog.Info("Signal received, shutting down...")
		cancel()
	}()

	// HTTP server blocks until ctx is cancelled.
	if err := srv.Run(ctx); err != nil {
		slog.Error("Server stopped with error", "error", err)
	}

	slog.Info("Shutdown complete")
}

func fmtAddr(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	configloader "github.com/Edwinswanith/multiaudio/external/config"
	enricherimpl "github.com/Edwinswanith/multiaudio/external/enricher"
	"github.com/Edwinswanith/multiaudio/external/httpserver"
	repositoryimpl "github.com/Edwinswanith/multiaudio/external/repository"
	transcriberimpl "github.com/Edwinswanith/multiaudio/external/transcriber"
	webhookimpl "github.com/Edwinswanith/multiaudio/external/webhook"
	"github.com/Edwinswanith/multiaudio/internal/config"
	"github.com/Edwinswanith/multiaudio/internal/session"
	"github.com/samber/do/v2"
)

const shutdownTimeout = 10 * time.Second

func main() {
	slog.Info("startup: loading configuration")
	cfg := mustLoadConfig()
	initLogger(cfg)
	slog.Info("startup: configuration loaded", "env", cfg.Env, "listen_addr", cfg.ListenAddr)

	slog.Info("startup: building dependency graph")
	injector := setupDI(cfg)

	slog.Info("startup: launching http server")
	runServer(injector)
}

func mustLoadConfig() *config.Config {
	cfg, err := configloader.Load()
	if err != nil {
		slog.Error("config validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

func initLogger(cfg *config.Config) {
	logLevel := slog.LevelInfo
	if cfg.IsDevelopment() {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))
}

func setupDI(cfg *config.Config) do.Injector {
	injector := do.New()

	do.ProvideValue(injector, cfg)
	repositoryimpl.RegisterDI(injector)
	transcriberimpl.RegisterDI(injector)
	enricherimpl.RegisterDI(injector)
	webhookimpl.RegisterDI(injector)
	session.RegisterDI(injector)
	httpserver.RegisterDI(injector)

	return injector
}

func runServer(injector do.Injector) {
	server, err := do.Invoke[*httpserver.Server](injector)
	if err != nil {
		slog.Error("failed to resolve http server", "error", err)
		os.Exit(1)
	}

	done := make(chan struct{})
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server failed", "error", err)
		}
		close(done)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		slog.Info("shutting down")
	case <-done:
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("http shutdown failed", "error", err)
	}
}

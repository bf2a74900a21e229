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

	"github.com/joho/godotenv"

	"github.com/vaultpass/ecomkit-go/internal/config"
	"github.com/vaultpass/ecomkit-go/internal/repository"
	"github.com/vaultpass/ecomkit-go/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(newLogger(cfg))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The audit trail is optional; without a database generation still works.
	var recorder service.Recorder = service.NopRecorder{}
	audit := false
	db, err := repository.NewDB(ctx, cfg.DatabaseDSN)
	switch {
	case errors.Is(err, repository.ErrNoDSN):
		slog.Info("DATABASE_DSN not set, audit trail disabled")
	case err != nil:
		slog.Warn("database connection failed, audit trail disabled", "error", err)
	default:
		defer db.Close()
		artifacts := repository.NewArtifactRepository(db)
		if err := artifacts.EnsureSchema(ctx); err != nil {
			slog.Warn("creating artifacts table failed, audit trail disabled", "error", err)
		} else {
			recorder = artifacts
			audit = true
		}
	}

	if cfg.JWTSecret == "" {
		slog.Warn("JWT_SECRET not set, batch routes are public")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newRouter(ctx, cfg, recorder, audit),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env, "audit", audit)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}

// newLogger returns a JSON logger in production and a text logger otherwise.
func newLogger(cfg config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

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

	"github.com/rs/zerolog"

	"shopbot-backend/internal/app"
	"shopbot-backend/internal/assistant"
	"shopbot-backend/internal/config"
	"shopbot-backend/internal/observability"
	"shopbot-backend/internal/server"
	"shopbot-backend/internal/store"
)

type storeOpener func(ctx context.Context, cfg config.Config) (store.Store, error)

func main() {
	cfg := config.Load()
	log := observability.NewLogger(observability.LogConfig{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		ServiceName: "shopbot-server",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, cfg, log, app.NewStore)
	stop()
	if err != nil {
		log.Error().Err(err).Msg("shopbot server stopped")
		os.Exit(1)
	}
}

// run serves until ctx is cancelled or the listener fails. Resources are
// released before it returns.
func run(ctx context.Context, cfg config.Config, log zerolog.Logger, openStore storeOpener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	engine, err := app.NewEngine(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to build assistant: %w", err)
	}
	conversations, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open conversation store: %w", err)
	}
	defer func() {
		if err := conversations.Close(); err != nil {
			log.Warn().Err(err).Msg("closing conversation store failed")
		}
	}()

	s := server.NewServer(cfg, assistant.NewService(engine, conversations, log), log)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", srv.Addr).Int("products", engine.Size()).Str("sessions", cfg.SessionStore).Msg("shopbot server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen: %w", err)
	}
	return nil
}

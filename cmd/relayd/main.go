// Command relayd serves the chat relay over HTTP.
//
// Configuration comes from the environment; a .env file in the working
// directory is loaded when present:
//
//	GROQ_API_KEY    Groq API key (primary provider)
//	GEMINI_API_KEY  Gemini API key (secondary provider)
//	PROVIDER        groq or gemini (auto-detected from the keys if omitted)
//	MODEL_ID        default model ID (provider default if omitted)
//	ADDR            listen address (default :5000)
//	DEBUG           enable verbose diagnostics
//
// A missing API credential is fatal at startup: the process never begins
// serving without one.
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

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"chatrelay"
	"chatrelay/server"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "relayd: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Best-effort .env load; real environment variables win.
	_ = godotenv.Load()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := newLogger(cfg.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider, name, err := resolveProvider(ctx, cfg)
	if err != nil {
		return err
	}
	logger.Info().Str("provider", name).Str("model", cfg.ModelID).Msg("provider resolved")

	store := chatrelay.NewStore()
	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: server.New(store, provider, logger).Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.Addr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func newLogger(debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.NewConsoleWriter()).
		Level(level).
		With().
		Timestamp().
		Logger()
}

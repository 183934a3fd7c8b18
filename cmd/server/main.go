package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kpbu-assistant/internal/bootstrap"
	"kpbu-assistant/internal/config"
	"kpbu-assistant/internal/logging"
	httptransport "kpbu-assistant/internal/transport/http"
)

func main() {
	if err := run(); err != nil {
		logging.Error().Err(err).Msg("server exited")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := bootstrap.New(ctx, cfg, bootstrap.Options{StartWorker: true})
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			logging.Error().Err(err).Msg("close resources failed")
		}
	}()

	router := httptransport.NewRouter(app)
	server := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", server.Addr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	return waitForShutdown(server, quit, serveErr)
}

// waitForShutdown blocks until a signal arrives or the listener fails. On a
// signal it drains the server; a listener failure is returned as is.
func waitForShutdown(server *http.Server, quit <-chan os.Signal, serveErr <-chan error) error {
	select {
	case sig := <-quit:
		logging.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-serveErr:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("server shutdown failed")
		return err
	}
	return nil
}

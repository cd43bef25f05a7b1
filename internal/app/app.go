package app

import (
	"context"
	"errors"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/hypertac-server/internal/archive"
	"github.com/vovakirdan/hypertac-server/internal/config"
	"github.com/vovakirdan/hypertac-server/internal/core"
	"github.com/vovakirdan/hypertac-server/internal/store"
	"github.com/vovakirdan/hypertac-server/internal/store/sqlite"
	transporthttp "github.com/vovakirdan/hypertac-server/internal/transport/http"
)

// App wires together core and transport layers.
type App struct {
	server          *transporthttp.Server
	shutdownTimeout time.Duration
	hub             *core.Hub
	store           store.Store
	recorder        *archive.Recorder
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
// An empty DatabasePath runs without the match archive.
func New(cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	a := &App{
		shutdownTimeout: cfg.ShutdownTimeout,
		log:             logger,
	}

	var (
		sink    core.MatchSink
		matches store.MatchStore
	)
	if cfg.DatabasePath != "" {
		st, err := sqlite.New(cfg.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("init store: %w", err)
		}
		logger.Info().Str("db_path", cfg.DatabasePath).Msg("database initialized")

		a.store = st
		a.recorder = archive.New(st, cfg.ArchiveBuffer, logger)
		sink = a.recorder
		matches = st
	} else {
		logger.Info().Msg("match archive disabled")
	}

	a.hub = core.NewHub(core.NewDirectory(cfg.Game, sink, logger), logger)
	a.server = transporthttp.NewServer(a.hub, matches, cfg, logger)
	return a, nil
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	recorderCtx, stopRecorder := context.WithCancel(context.Background())
	recorderDone := make(chan struct{})
	if a.recorder != nil {
		go func() {
			defer close(recorderDone)
			a.recorder.Run(recorderCtx)
		}()
	} else {
		close(recorderDone)
	}
	// The recorder drains before the store closes.
	defer func() {
		stopRecorder()
		<-recorderDone
		a.cleanup()
	}()

	go func() {
		a.log.Info().Str("addr", a.server.Addr).Msg("http server listening")
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return <-serverErr
	}
}

// cleanup closes database and other resources.
func (a *App) cleanup() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close store")
		} else {
			a.log.Info().Msg("store closed")
		}
	}
}

// Package app initializes and runs the service: it loads configuration,
// sets up logging, selects the storage backend, wires the service and
// router, and handles graceful shutdown.
package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/patric-chuzhbe/usersvc/internal/config"
	"github.com/patric-chuzhbe/usersvc/internal/db/memstorage"
	"github.com/patric-chuzhbe/usersvc/internal/db/postgres"
	"github.com/patric-chuzhbe/usersvc/internal/logger"
	"github.com/patric-chuzhbe/usersvc/internal/router"
	"github.com/patric-chuzhbe/usersvc/internal/service"
	"github.com/patric-chuzhbe/usersvc/internal/unitofwork"
)

const shutdownTimeout = 10 * time.Second

type storage interface {
	unitofwork.Starter

	Ping(ctx context.Context) error
	Close() error
}

// App bundles the configuration, storage backend, and HTTP handler needed
// to run the user service.
type App struct {
	cfg         *config.Config
	db          storage
	httpHandler http.Handler
}

// New initializes a new App: configuration, logger, storage backend
// (PostgreSQL when a DSN is configured, in-memory otherwise), service, and
// router.
func New() (*App, error) {
	app := &App{}

	var err error
	app.cfg, err = config.New()
	if err != nil {
		return nil, err
	}

	if err = logger.Init(app.cfg.LogLevel); err != nil {
		return nil, err
	}

	app.db, err = newStorage(app.cfg)
	if err != nil {
		return nil, err
	}

	app.httpHandler = router.New(
		service.New(app.db),
		app.cfg.DefaultPage,
		app.cfg.DefaultPageSize,
	)

	return app, nil
}

func newStorage(cfg *config.Config) (storage, error) {
	if cfg.DatabaseDSN == "" {
		logger.Log.Infoln("no database DSN configured, using the in-memory storage")
		return memstorage.New(), nil
	}

	return postgres.New(context.Background(), cfg.DatabaseDSN, cfg.DBConnectionTimeout)
}

// Run starts the HTTP server and blocks until a termination signal or a
// server failure, then shuts down gracefully and releases the storage.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Log.Infoln("server running", "RunAddr", a.cfg.RunAddr)

	server := &http.Server{
		Addr:    a.cfg.RunAddr,
		Handler: a.httpHandler,
	}

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Log.Infoln("received shutdown signal, stopping the server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	if err := a.db.Close(); err != nil {
		return err
	}

	return logger.Sync()
}

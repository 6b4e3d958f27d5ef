// Package server initializes and runs the relay application: it wires the
// room registry, the room-id store and the websocket endpoint, and handles
// graceful shutdown on OS signals.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"livedraw/internal/logging"
	"livedraw/internal/server/config"
	"livedraw/internal/server/rooms"
	"livedraw/internal/server/roomstore"
	"livedraw/internal/server/ws"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	registry *rooms.Registry
	store    roomstore.Repository
	db       *sql.DB
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	slogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slogger)

	var store roomstore.Repository
	var db *sql.DB
	if c.DatabaseDSN != "" {
		var err error
		db, err = roomstore.Open(ctx, c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		// seeded ids land in one transaction, all or nothing
		if err := roomstore.Provision(ctx, db, c.SeedRooms); err != nil {
			db.Close()
			return nil, fmt.Errorf("room seed error: %w", err)
		}
		store = roomstore.NewPostgresRepository(db)
	} else {
		store = roomstore.NewInMemoryRepository()
		for _, id := range c.SeedRooms {
			if err := store.Create(ctx, id); err != nil {
				return nil, fmt.Errorf("room seed error: %w", err)
			}
		}
	}

	registry := rooms.NewRegistry(logger)

	return &App{config: c, logger: logger, registry: registry, store: store, db: db}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	handler := ws.NewHandler(app.registry, app.store, app.logger,
		app.config.AllowedOrigin, app.config.HeartbeatInterval)

	mux := http.NewServeMux()
	mux.Handle("/ws", handler)

	srv := &http.Server{Addr: app.config.EndpointAddr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), app.config.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(shutdownCtx, "shutdown error", "error", err)
		}
	}()

	app.logger.Info(ctx, "listening", "addr", app.config.EndpointAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error(ctx, "db close error", "error", err)
		}
	}
}

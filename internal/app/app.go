// Package app wires the store, the synchronization engine, the websocket
// hub and the HTTP layer into one runnable unit.
package app

import (
	"context"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vandelli/summit/internal/auth"
	"github.com/vandelli/summit/internal/engine"
	"github.com/vandelli/summit/internal/handlers"
	"github.com/vandelli/summit/internal/logger"
	"github.com/vandelli/summit/internal/store"
	"github.com/vandelli/summit/internal/websocket"
	"github.com/vandelli/summit/pkg/wisdom"
)

// App holds all application dependencies
type App struct {
	log      logger.Logger
	handlers *handlers.Handlers
	engine   *engine.Engine
	store    *store.Store
}

// New creates and initializes a new application instance. A failed initial
// load is not fatal: the app starts in disconnected mode and an admin can
// trigger a refresh once the database is reachable again.
func New(log logger.Logger, dbPath string, tips wisdom.Client, staticFS fs.FS) (*App, error) {
	st, err := store.New(dbPath, log)
	if err != nil {
		return nil, err
	}

	eng := engine.New(log, st)
	if err := eng.Load(context.Background()); err != nil {
		log.Warn("starting in disconnected mode", "error", err)
	}

	hub := websocket.New(log, eng)
	hub.Start()
	eng.SetBroadcaster(hub)

	adminAuth := auth.New(eng)
	staticServer := handlers.NewStaticServer(staticFS)

	h := handlers.New(eng, adminAuth, hub, tips, staticServer, log)

	return &App{
		log:      log,
		handlers: h,
		engine:   eng,
		store:    st,
	}, nil
}

// Router returns the configured HTTP router
func (a *App) Router() chi.Router {
	return a.handlers.Router()
}

// Run starts the HTTP server
func (a *App) Run(addr string) error {
	a.log.Info("Server starting", "addr", addr)
	return http.ListenAndServe(addr, a.Router())
}

// Close performs graceful shutdown of app resources
func (a *App) Close() {
	a.engine.Close()
	if err := a.store.Close(); err != nil {
		a.log.Warn("error closing store", "error", err)
	}
}

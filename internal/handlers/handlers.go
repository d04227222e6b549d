package handlers

import (
	"io/fs"
	"net/http"

	"github.com/vandelli/summit/internal/auth"
	"github.com/vandelli/summit/internal/engine"
	"github.com/vandelli/summit/internal/websocket"
	"github.com/vandelli/summit/pkg/wisdom"
)

// NewStaticServer creates a static file server from an fs.FS
func NewStaticServer(staticFS fs.FS) http.Handler {
	return http.FileServer(http.FS(staticFS))
}

// Handlers holds all HTTP handler dependencies
type Handlers struct {
	Engine       *engine.Engine
	Auth         *auth.Auth
	Hub          *websocket.Hub
	Wisdom       wisdom.Client
	Log          HTTPLogger
	staticServer http.Handler
}

// HTTPLogger is an interface for loggers that support HTTP logging control
type HTTPLogger interface {
	IsHTTPLoggingEnabled() bool
}

// New creates a new Handlers instance with all dependencies
func New(
	eng *engine.Engine,
	adminAuth *auth.Auth,
	hub *websocket.Hub,
	tips wisdom.Client,
	staticServer http.Handler,
	log HTTPLogger,
) *Handlers {
	return &Handlers{
		Engine:       eng,
		Auth:         adminAuth,
		Hub:          hub,
		Wisdom:       tips,
		Log:          log,
		staticServer: staticServer,
	}
}

// NoopHTTPLogger is a test logger that always returns false for HTTP logging
type NoopHTTPLogger struct{}

func (NoopHTTPLogger) IsHTTPLoggingEnabled() bool { return false }

// NewForTesting creates a Handlers instance without static assets or a
// websocket hub, for exercising the API endpoints directly.
func NewForTesting(eng *engine.Engine) *Handlers {
	return &Handlers{
		Engine: eng,
		Auth:   auth.New(eng),
		Wisdom: &wisdom.MockClient{},
		Log:    NoopHTTPLogger{},
	}
}

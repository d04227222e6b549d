package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// conditionalHTTPLogger only logs HTTP requests when HTTP logging is enabled
func (h *Handlers) conditionalHTTPLogger(next http.Handler) http.Handler {
	logger := middleware.Logger(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Log != nil && h.Log.IsHTTPLoggingEnabled() {
			logger.ServeHTTP(w, r)
		} else {
			next.ServeHTTP(w, r)
		}
	})
}

// Router returns a configured chi router with all routes
func (h *Handlers) Router() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.conditionalHTTPLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RedirectSlashes)
	r.Use(middleware.Timeout(60 * time.Second))

	// Static files (served from embedded filesystem)
	if h.staticServer != nil {
		r.Handle("/static/*", http.StripPrefix("/static/", h.staticServer))
		r.Get("/", h.handleIndex)
	}

	// WebSocket
	if h.Hub != nil {
		r.Get("/ws", h.Hub.ServeWs)
	}

	// Public API
	r.Post("/api/register", h.handleRegister)
	r.Get("/api/attendees/lookup", h.handleLookupAttendee)
	r.Post("/api/attendees/{id}/visit", h.handleVisitStand)
	r.Get("/api/stands", h.handleGetStands)
	r.Get("/api/stands/{id}/qr", h.handleStandQR)
	r.Get("/api/state", h.handleGetState)

	// Auth routes (public)
	r.Post("/api/admin/login", h.handleLogin)
	r.Post("/api/admin/logout", h.handleLogout)

	// Admin API (protected)
	r.Group(func(r chi.Router) {
		r.Use(h.Auth.RequireAuthAPI)

		// Attendees
		r.Get("/api/admin/attendees", h.handleGetAttendees)
		r.Post("/api/admin/attendees/{id}/approve", h.handleApproveAttendee)
		r.Post("/api/admin/attendees/{id}/checkin", h.handleCheckInAttendee)
		r.Delete("/api/admin/attendees/{id}", h.handleDeleteAttendee)
		r.Get("/api/admin/stats", h.handleGetStats)

		// Roster import/export
		r.Get("/api/admin/attendees/export", h.handleExportAttendees)
		r.Post("/api/admin/attendees/import", h.handleImportAttendees)

		// Lottery
		r.Post("/api/admin/lottery/draw", h.handleArmDraw)
		r.Post("/api/admin/lottery/dismiss", h.handleDismissDraw)

		// Event controls
		r.Post("/api/admin/alert", h.handleSetAlert)
		r.Post("/api/admin/broadcast", h.handleBroadcast)
		r.Post("/api/admin/refresh", h.handleRefresh)

		// Sponsors & event image
		r.Get("/api/admin/sponsors", h.handleGetSponsors)
		r.Post("/api/admin/sponsors", h.handleAddSponsor)
		r.Delete("/api/admin/sponsors/{id}", h.handleRemoveSponsor)
		r.Put("/api/admin/event-image", h.handleSetEventImage)
		r.Delete("/api/admin/event-image", h.handleRemoveEventImage)

		// Credentials
		r.Put("/api/admin/password", h.handleUpdatePassword)
	})

	return r
}

// handleIndex serves the single-page app shell
func (h *Handlers) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	r.URL.Path = "/index.html"
	h.staticServer.ServeHTTP(w, r)
}

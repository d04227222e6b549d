package handlers

import (
	"net/http"
	"strings"

	"github.com/skip2/go-qrcode"

	"github.com/vandelli/summit/internal/auth"
	"github.com/vandelli/summit/internal/stands"
)

// handleRegister creates a new attendee with three unique lottery tickets.
// The wisdom tip is fetched after the registration is confirmed so a slow
// upstream can only delay the response, never fail it.
func (h *Handlers) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	attendee, err := h.Engine.Register(r.Context(), req.Name, req.Email, req.Phone, req.Company)
	if err != nil {
		respondError(w, err)
		return
	}

	respondCreated(w, RegisterResponse{
		Attendee: *attendee,
		Tip:      h.Wisdom.GenerateTip(r.Context()),
	})
}

// handleLookupAttendee finds an attendee by email for the returning-visitor
// flow, so a device that lost its local state can recover its record.
func (h *Handlers) handleLookupAttendee(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" {
		respondError(w, BadRequest("Missing email parameter"))
		return
	}

	attendee, err := h.Engine.FindByEmail(email)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, attendee)
}

// handleVisitStand records a stand collection for an attendee
func (h *Handlers) handleVisitStand(w http.ResponseWriter, r *http.Request) {
	id, err := urlParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	var req VisitStandRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	if err := h.Engine.VisitStand(r.Context(), id, req.StandCode); err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, "Stand visit recorded")
}

// handleGetStands returns the fixed stand catalog
func (h *Handlers) handleGetStands(w http.ResponseWriter, r *http.Request) {
	respondOK(w, stands.Catalog)
}

// handleStandQR renders the QR code printed at a stand. Scanning it yields
// the stand code that the visit endpoint accepts.
func (h *Handlers) handleStandQR(w http.ResponseWriter, r *http.Request) {
	id, err := urlParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	stand, ok := stands.Lookup(id)
	if !ok {
		respondError(w, NotFound("Unknown stand"))
		return
	}

	png, err := qrcode.Encode(stand.ID, qrcode.Medium, 256)
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

// handleGetState serves the full event snapshot. New sessions load this
// once, then follow the websocket feed.
func (h *Handlers) handleGetState(w http.ResponseWriter, r *http.Request) {
	respondOK(w, StateResponse{
		Attendees:   h.Engine.Attendees(),
		Sponsors:    h.Engine.Sponsors(),
		GlobalState: h.Engine.GlobalState(),
		Connected:   h.Engine.Connected(),
	})
}

// handleLogin authenticates the admin and sets a session cookie
func (h *Handlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	token, ok := h.Auth.Login(req.Username, req.Password)
	if !ok {
		respondError(w, Unauthorized("Invalid username or password"))
		return
	}

	auth.SetSessionCookie(w, token)
	respondOK(w, LoginResponse{Message: "Logged in"})
}

// handleLogout invalidates the session and clears the cookie
func (h *Handlers) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(auth.CookieName); err == nil {
		h.Auth.Logout(cookie.Value)
	}
	auth.ClearSessionCookie(w)
	respondSuccess(w, "Logged out")
}

package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/vandelli/summit/internal/models"
	"github.com/vandelli/summit/internal/roster"
)

// maxUploadSize bounds roster uploads and logo payloads.
const maxUploadSize = 10 << 20 // 10 MB

// handleGetAttendees returns the full attendee list for the admin console
func (h *Handlers) handleGetAttendees(w http.ResponseWriter, r *http.Request) {
	respondOK(w, h.Engine.Attendees())
}

// handleApproveAttendee marks a pending attendee approved
func (h *Handlers) handleApproveAttendee(w http.ResponseWriter, r *http.Request) {
	id, err := urlParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	if err := h.Engine.Approve(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, "Attendee approved")
}

// handleCheckInAttendee marks an attendee present at the venue. Approval is
// implied: checking in a pending attendee approves them in the same write.
func (h *Handlers) handleCheckInAttendee(w http.ResponseWriter, r *http.Request) {
	id, err := urlParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	if err := h.Engine.CheckIn(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, "Attendee checked in")
}

// handleDeleteAttendee removes an attendee permanently
func (h *Handlers) handleDeleteAttendee(w http.ResponseWriter, r *http.Request) {
	id, err := urlParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	if err := h.Engine.Delete(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	respondDeleted(w)
}

// handleGetStats returns attendee counts for the dashboard
func (h *Handlers) handleGetStats(w http.ResponseWriter, r *http.Request) {
	respondOK(w, h.Engine.Stats())
}

// handleExportAttendees streams the attendee list as an xlsx workbook
func (h *Handlers) handleExportAttendees(w http.ResponseWriter, r *http.Request) {
	filename := fmt.Sprintf("attendees-%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	if err := roster.Export(w, h.Engine.Attendees()); err != nil {
		http.Error(w, "export failed", http.StatusInternalServerError)
	}
}

// handleImportAttendees bulk-registers attendees from an uploaded workbook.
// Each row goes through normal registration, so imported attendees get
// unique tickets and duplicate emails are skipped rather than imported.
func (h *Handlers) handleImportAttendees(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondError(w, BadRequest("Invalid multipart upload"))
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		respondError(w, BadRequest("Missing file field"))
		return
	}
	defer file.Close()

	result, err := roster.Import(r.Context(), file, h.Engine)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, result)
}

// handleArmDraw starts a lottery round
func (h *Handlers) handleArmDraw(w http.ResponseWriter, r *http.Request) {
	var req DrawRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	state, err := h.Engine.ArmDraw(r.Context(), req.Round)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, state)
}

// handleDismissDraw clears the draw overlay without touching results
func (h *Handlers) handleDismissDraw(w http.ResponseWriter, r *http.Request) {
	if err := h.Engine.DismissDraw(r.Context()); err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, "Draw dismissed")
}

// handleSetAlert switches the global alert mode
func (h *Handlers) handleSetAlert(w http.ResponseWriter, r *http.Request) {
	var req AlertRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	mode := models.AppState(strings.ToUpper(strings.TrimSpace(req.Mode)))
	if err := h.Engine.SetAlertMode(r.Context(), mode); err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, "Alert mode updated")
}

// handleBroadcast pushes a message to every connected session
func (h *Handlers) handleBroadcast(w http.ResponseWriter, r *http.Request) {
	var req BroadcastRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	b, err := h.Engine.SendBroadcast(r.Context(), req.Text)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, b)
}

// handleRefresh re-runs the full reconciliation against the store
func (h *Handlers) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := h.Engine.Refresh(r.Context()); err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, "State refreshed")
}

// handleGetSponsors returns all sponsor logos
func (h *Handlers) handleGetSponsors(w http.ResponseWriter, r *http.Request) {
	respondOK(w, h.Engine.Sponsors())
}

// handleAddSponsor stores an uploaded sponsor logo
func (h *Handlers) handleAddSponsor(w http.ResponseWriter, r *http.Request) {
	var req SponsorRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	sp, err := h.Engine.AddSponsor(r.Context(), req.FileName, req.LogoBase64)
	if err != nil {
		respondError(w, err)
		return
	}
	respondCreated(w, sp)
}

// handleRemoveSponsor deletes a sponsor logo
func (h *Handlers) handleRemoveSponsor(w http.ResponseWriter, r *http.Request) {
	id, err := urlParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	if err := h.Engine.RemoveSponsor(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	respondDeleted(w)
}

// handleSetEventImage stores the event location image
func (h *Handlers) handleSetEventImage(w http.ResponseWriter, r *http.Request) {
	var req EventImageRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if err := h.Engine.SetEventImage(r.Context(), req.ImageBase64); err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, "Event image updated")
}

// handleRemoveEventImage clears the event location image
func (h *Handlers) handleRemoveEventImage(w http.ResponseWriter, r *http.Request) {
	if err := h.Engine.RemoveEventImage(r.Context()); err != nil {
		respondError(w, err)
		return
	}
	respondDeleted(w)
}

// handleUpdatePassword changes the admin credential
func (h *Handlers) handleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	var req PasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if err := h.Engine.UpdateAdminPassword(r.Context(), req.NewPassword); err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, "Password updated")
}

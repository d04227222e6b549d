package handlers

import (
	"github.com/vandelli/summit/internal/models"
	"github.com/vandelli/summit/pkg/wisdom"
)

// RegisterResponse carries the created attendee plus the post-registration
// wisdom tip.
type RegisterResponse struct {
	Attendee models.Attendee `json:"attendee"`
	Tip      wisdom.Tip      `json:"tip"`
}

// StateResponse is the full event snapshot served to new sessions. It is
// the HTTP twin of the websocket "snapshot" message.
type StateResponse struct {
	Attendees   []models.Attendee  `json:"attendees"`
	Sponsors    []models.Sponsor   `json:"sponsors"`
	GlobalState models.GlobalState `json:"global_state"`
	Connected   bool               `json:"connected"`
}

// LoginResponse reports a successful admin login
type LoginResponse struct {
	Message string `json:"message"`
}

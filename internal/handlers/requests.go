package handlers

// RegisterRequest is the payload for attendee self-registration
type RegisterRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
}

// VisitStandRequest is the payload for recording a stand visit
type VisitStandRequest struct {
	StandCode string `json:"stand_code"`
}

// LoginRequest is the payload for admin login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// DrawRequest is the payload for arming a lottery round
type DrawRequest struct {
	Round int `json:"round"`
}

// AlertRequest is the payload for switching the alert mode
type AlertRequest struct {
	Mode string `json:"mode"`
}

// BroadcastRequest is the payload for sending a message to all sessions
type BroadcastRequest struct {
	Text string `json:"text"`
}

// SponsorRequest is the payload for uploading a sponsor logo
type SponsorRequest struct {
	FileName   string `json:"file_name"`
	LogoBase64 string `json:"logo_base64"`
}

// EventImageRequest is the payload for setting the event location image
type EventImageRequest struct {
	ImageBase64 string `json:"image_base64"`
}

// PasswordRequest is the payload for changing the admin password
type PasswordRequest struct {
	NewPassword string `json:"new_password"`
}

package engine

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/vandelli/summit/internal/errors"
	"github.com/vandelli/summit/internal/models"
)

// SetAlertMode switches the global alert mode; every connected session
// picks it up on its next state push.
func (e *Engine) SetAlertMode(ctx context.Context, mode models.AppState) error {
	if mode != models.AppStateNormal && mode != models.AppStateAttack {
		return errors.InvalidInput("alert mode must be NORMAL or ATTACK")
	}
	if err := e.repo.SetAppState(ctx, mode); err != nil {
		return errors.Unavailable("could not update the alert mode, please try again", err)
	}

	e.mu.Lock()
	e.global.AppState = mode
	e.mu.Unlock()
	return nil
}

// SendBroadcast stores the text with a freshly generated unique id as the
// singleton current broadcast. Clients re-show a broadcast only when its id
// differs from the last one they displayed; the server keeps no per-client
// delivery state.
func (e *Engine) SendBroadcast(ctx context.Context, text string) (*models.Broadcast, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.InvalidInput("broadcast text is required")
	}

	b := models.Broadcast{ID: uuid.NewString(), Text: text}
	if err := e.repo.SetBroadcast(ctx, b); err != nil {
		return nil, errors.Unavailable("could not send the broadcast, please try again", err)
	}

	e.mu.Lock()
	local := b
	e.global.Broadcast = &local
	e.mu.Unlock()
	return &b, nil
}

// CheckAdminCredential compares a login attempt against the fixed admin
// username and the mutable password held in global state.
func (e *Engine) CheckAdminCredential(username, password string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return username == AdminUsername && password == e.global.AdminPassword
}

// UpdateAdminPassword replaces the admin credential.
func (e *Engine) UpdateAdminPassword(ctx context.Context, newPassword string) error {
	newPassword = strings.TrimSpace(newPassword)
	if newPassword == "" {
		return errors.InvalidInput("password must not be empty")
	}
	if err := e.repo.SetAdminPassword(ctx, newPassword); err != nil {
		return errors.Unavailable("could not update the password, please try again", err)
	}

	e.mu.Lock()
	e.global.AdminPassword = newPassword
	e.mu.Unlock()
	return nil
}

// SetEventImage stores the event location image on global state.
func (e *Engine) SetEventImage(ctx context.Context, imageBase64 string) error {
	if strings.TrimSpace(imageBase64) == "" {
		return errors.InvalidInput("image data is required")
	}
	if err := e.repo.SetEventImage(ctx, imageBase64); err != nil {
		return errors.Unavailable("could not store the event image, please try again", err)
	}

	e.mu.Lock()
	e.global.EventImage = imageBase64
	e.mu.Unlock()
	return nil
}

// RemoveEventImage clears the event location image.
func (e *Engine) RemoveEventImage(ctx context.Context) error {
	if err := e.repo.SetEventImage(ctx, ""); err != nil {
		return errors.Unavailable("could not remove the event image, please try again", err)
	}

	e.mu.Lock()
	e.global.EventImage = ""
	e.mu.Unlock()
	return nil
}

// AddSponsor creates a sponsor from an uploaded logo. The display name is
// the file name without its extension, as uploads carry no separate name.
func (e *Engine) AddSponsor(ctx context.Context, fileName, logoBase64 string) (*models.Sponsor, error) {
	name := strings.TrimSpace(fileName)
	if i := strings.IndexByte(name, '.'); i > 0 {
		name = name[:i]
	}
	if name == "" || logoBase64 == "" {
		return nil, errors.InvalidInput("sponsor file name and logo data are required")
	}

	sp, err := e.repo.CreateSponsor(ctx, name, logoBase64)
	if err != nil {
		return nil, errors.Unavailable("could not save the sponsor, please try again", err)
	}

	e.mu.Lock()
	e.sponsors = append(e.sponsors, *sp)
	e.mu.Unlock()
	return sp, nil
}

// RemoveSponsor deletes a sponsor. Removing a missing id is a no-op.
func (e *Engine) RemoveSponsor(ctx context.Context, id string) error {
	if err := e.repo.DeleteSponsor(ctx, id); err != nil {
		return errors.Unavailable("could not remove the sponsor, please try again", err)
	}

	e.mu.Lock()
	for i := range e.sponsors {
		if e.sponsors[i].ID == id {
			e.sponsors = append(e.sponsors[:i], e.sponsors[i+1:]...)
			break
		}
	}
	e.mu.Unlock()
	return nil
}

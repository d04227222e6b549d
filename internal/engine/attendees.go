package engine

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/vandelli/summit/internal/errors"
	"github.com/vandelli/summit/internal/models"
	"github.com/vandelli/summit/internal/stands"
	"github.com/vandelli/summit/internal/store"
)

// Register creates a new attendee with three guaranteed-unique lottery
// tickets. Validation failures never reach the store; remote failures are
// classified so the caller can offer a retry only for transient ones.
func (e *Engine) Register(ctx context.Context, name, email, phone, company string) (*models.Attendee, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	phone = strings.TrimSpace(phone)
	company = strings.TrimSpace(company)
	if name == "" || email == "" || phone == "" || company == "" {
		return nil, errors.InvalidInput("name, email, phone and company are required")
	}

	// Held until the confirmed record is in the mirror: a concurrent
	// registration must not draw from a ticket set that is missing the
	// numbers this one is about to claim.
	e.regMu.Lock()
	defer e.regMu.Unlock()

	e.mu.RLock()
	duplicate := e.findByEmailLocked(email) != nil
	used := e.usedTicketsLocked()
	e.mu.RUnlock()
	if duplicate {
		return nil, errors.Conflict("an attendee with this email already exists")
	}

	tickets, err := e.drawTickets(used)
	if err != nil {
		return nil, err
	}

	created, err := e.repo.CreateAttendee(ctx, models.Attendee{
		Name:             name,
		Email:            email,
		Phone:            phone,
		Company:          company,
		TicketNumbers:    tickets,
		CheckedIn:        false,
		RegistrationDate: time.Now().UTC(),
		Status:           models.StatusPending,
		VisitedStands:    []string{},
	})
	if err != nil {
		if stderrors.Is(err, store.ErrConflict) {
			return nil, errors.Conflict("an attendee with this email already exists")
		}
		return nil, errors.Unavailable("could not save the registration, please try again", err)
	}

	e.upsertLocal(*created)
	result := created.Clone()
	return &result, nil
}

// FindByEmail returns the attendee with a case-insensitively matching
// email, for the returning-visitor flow.
func (e *Engine) FindByEmail(email string) (*models.Attendee, error) {
	e.mu.RLock()
	found := e.findByEmailLocked(email)
	e.mu.RUnlock()
	if found == nil {
		return nil, errors.NotFound("no attendee registered with this email")
	}
	a := found.Clone()
	return &a, nil
}

// findByEmailLocked matches emails case-insensitively. Caller holds mu.
func (e *Engine) findByEmailLocked(email string) *models.Attendee {
	email = strings.ToLower(strings.TrimSpace(email))
	for i := range e.attendees {
		if strings.ToLower(e.attendees[i].Email) == email {
			return &e.attendees[i]
		}
	}
	return nil
}

// Approve marks an attendee approved. Idempotent; approving a missing id
// is a failure since the caller expects the record to exist.
func (e *Engine) Approve(ctx context.Context, id string) error {
	if err := e.repo.SetStatus(ctx, id, models.StatusApproved); err != nil {
		if stderrors.Is(err, store.ErrNotFound) {
			return errors.NotFound("attendee not found")
		}
		return errors.Unavailable("could not update the attendee, please try again", err)
	}

	e.mu.Lock()
	if i := e.indexOfLocked(id); i >= 0 {
		e.attendees[i].Status = models.StatusApproved
	}
	e.mu.Unlock()
	return nil
}

// CheckIn marks an attendee checked in and approved in one atomic write;
// check-in implies approval even when the attendee was still pending.
// Calling it again is a no-op with the same end state.
func (e *Engine) CheckIn(ctx context.Context, id string) error {
	if err := e.repo.CheckInAttendee(ctx, id); err != nil {
		if stderrors.Is(err, store.ErrNotFound) {
			return errors.NotFound("attendee not found")
		}
		return errors.Unavailable("could not check in the attendee, please try again", err)
	}

	e.mu.Lock()
	if i := e.indexOfLocked(id); i >= 0 {
		e.attendees[i].CheckedIn = true
		e.attendees[i].Status = models.StatusApproved
	}
	e.mu.Unlock()
	return nil
}

// Delete removes an attendee permanently. Deleting a missing id is a no-op.
func (e *Engine) Delete(ctx context.Context, id string) error {
	if err := e.repo.DeleteAttendee(ctx, id); err != nil {
		return errors.Unavailable("could not delete the attendee, please try again", err)
	}

	e.mu.Lock()
	if i := e.indexOfLocked(id); i >= 0 {
		e.attendees = append(e.attendees[:i], e.attendees[i+1:]...)
	}
	e.mu.Unlock()
	return nil
}

// VisitStand records that an attendee collected a stand. Visiting the same
// stand twice is a no-op; the store performs a set-union update so a stale
// local view can never erase a previously recorded stand. A missing
// attendee id is silently ignored, matching the idempotent collection
// semantics.
func (e *Engine) VisitStand(ctx context.Context, id, standCode string) error {
	stand, ok := stands.Lookup(standCode)
	if !ok {
		return errors.InvalidInput("unknown stand code")
	}

	// Short-circuit on the local view; the store re-checks under its own
	// transaction, so staleness here only costs a round trip.
	e.mu.RLock()
	var visited bool
	if i := e.indexOfLocked(id); i >= 0 {
		visited = e.attendees[i].HasVisited(stand.ID)
	}
	e.mu.RUnlock()
	if visited {
		return nil
	}

	updated, err := e.repo.AppendVisitedStand(ctx, id, stand.ID)
	if err != nil {
		if stderrors.Is(err, store.ErrNotFound) {
			return nil
		}
		return errors.Unavailable("could not record the stand visit, please try again", err)
	}

	e.upsertLocal(*updated)
	return nil
}

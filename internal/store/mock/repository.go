package mock

import (
	"context"

	"github.com/vandelli/summit/internal/models"
	"github.com/vandelli/summit/internal/store"
)

// Repository wraps a real store and allows injecting errors for testing.
// This provides a flexible way to test error paths without complex database
// manipulation.
//
// Usage:
//
//	realStore := testutil.NewTestStore(t)
//	mockRepo := mock.NewRepository(realStore)
//	mockRepo.CreateAttendeeError = errors.New("database error")
//	eng := engine.New(log, mockRepo)
//	_, err := eng.Register(ctx, "Ana", "ana@agro.br", "11 9999", "AgroCo")
//	// err will now contain the injected error
type Repository struct {
	store.FullRepository

	// ===== Attendee Errors =====
	ListAttendeesError      error
	GetAttendeeError        error
	CreateAttendeeError     error
	SetStatusError          error
	CheckInAttendeeError    error
	AppendVisitedStandError error
	DeleteAttendeeError     error

	// ===== Sponsor Errors =====
	ListSponsorsError  error
	CreateSponsorError error
	DeleteSponsorError error

	// ===== Global State Errors =====
	GetGlobalStateError    error
	EnsureGlobalStateError error
	UpdateLotteryError     error
	SetAppStateError       error
	SetAdminPasswordError  error
	SetEventImageError     error
	SetBroadcastError      error
}

// NewRepository creates a mock repository wrapping a real one
func NewRepository(real store.FullRepository) *Repository {
	return &Repository{
		FullRepository: real,
	}
}

// ===== Attendee Methods =====

func (m *Repository) ListAttendees(ctx context.Context) ([]models.Attendee, error) {
	if m.ListAttendeesError != nil {
		return nil, m.ListAttendeesError
	}
	return m.FullRepository.ListAttendees(ctx)
}

func (m *Repository) GetAttendee(ctx context.Context, id string) (*models.Attendee, error) {
	if m.GetAttendeeError != nil {
		return nil, m.GetAttendeeError
	}
	return m.FullRepository.GetAttendee(ctx, id)
}

func (m *Repository) CreateAttendee(ctx context.Context, a models.Attendee) (*models.Attendee, error) {
	if m.CreateAttendeeError != nil {
		return nil, m.CreateAttendeeError
	}
	return m.FullRepository.CreateAttendee(ctx, a)
}

func (m *Repository) SetStatus(ctx context.Context, id string, status models.AttendeeStatus) error {
	if m.SetStatusError != nil {
		return m.SetStatusError
	}
	return m.FullRepository.SetStatus(ctx, id, status)
}

func (m *Repository) CheckInAttendee(ctx context.Context, id string) error {
	if m.CheckInAttendeeError != nil {
		return m.CheckInAttendeeError
	}
	return m.FullRepository.CheckInAttendee(ctx, id)
}

func (m *Repository) AppendVisitedStand(ctx context.Context, id, standID string) (*models.Attendee, error) {
	if m.AppendVisitedStandError != nil {
		return nil, m.AppendVisitedStandError
	}
	return m.FullRepository.AppendVisitedStand(ctx, id, standID)
}

func (m *Repository) DeleteAttendee(ctx context.Context, id string) error {
	if m.DeleteAttendeeError != nil {
		return m.DeleteAttendeeError
	}
	return m.FullRepository.DeleteAttendee(ctx, id)
}

// ===== Sponsor Methods =====

func (m *Repository) ListSponsors(ctx context.Context) ([]models.Sponsor, error) {
	if m.ListSponsorsError != nil {
		return nil, m.ListSponsorsError
	}
	return m.FullRepository.ListSponsors(ctx)
}

func (m *Repository) CreateSponsor(ctx context.Context, name, logoBase64 string) (*models.Sponsor, error) {
	if m.CreateSponsorError != nil {
		return nil, m.CreateSponsorError
	}
	return m.FullRepository.CreateSponsor(ctx, name, logoBase64)
}

func (m *Repository) DeleteSponsor(ctx context.Context, id string) error {
	if m.DeleteSponsorError != nil {
		return m.DeleteSponsorError
	}
	return m.FullRepository.DeleteSponsor(ctx, id)
}

// ===== Global State Methods =====

func (m *Repository) GetGlobalState(ctx context.Context) (*models.GlobalState, error) {
	if m.GetGlobalStateError != nil {
		return nil, m.GetGlobalStateError
	}
	return m.FullRepository.GetGlobalState(ctx)
}

func (m *Repository) EnsureGlobalState(ctx context.Context, defaults models.GlobalState) error {
	if m.EnsureGlobalStateError != nil {
		return m.EnsureGlobalStateError
	}
	return m.FullRepository.EnsureGlobalState(ctx, defaults)
}

func (m *Repository) UpdateLottery(ctx context.Context, l models.LotteryState) error {
	if m.UpdateLotteryError != nil {
		return m.UpdateLotteryError
	}
	return m.FullRepository.UpdateLottery(ctx, l)
}

func (m *Repository) SetAppState(ctx context.Context, s models.AppState) error {
	if m.SetAppStateError != nil {
		return m.SetAppStateError
	}
	return m.FullRepository.SetAppState(ctx, s)
}

func (m *Repository) SetAdminPassword(ctx context.Context, password string) error {
	if m.SetAdminPasswordError != nil {
		return m.SetAdminPasswordError
	}
	return m.FullRepository.SetAdminPassword(ctx, password)
}

func (m *Repository) SetEventImage(ctx context.Context, imageBase64 string) error {
	if m.SetEventImageError != nil {
		return m.SetEventImageError
	}
	return m.FullRepository.SetEventImage(ctx, imageBase64)
}

func (m *Repository) SetBroadcast(ctx context.Context, b models.Broadcast) error {
	if m.SetBroadcastError != nil {
		return m.SetBroadcastError
	}
	return m.FullRepository.SetBroadcast(ctx, b)
}

package store

import (
	"context"

	"github.com/vandelli/summit/internal/models"
)

// AttendeeRepository defines attendee data operations
type AttendeeRepository interface {
	ListAttendees(ctx context.Context) ([]models.Attendee, error)
	GetAttendee(ctx context.Context, id string) (*models.Attendee, error)
	CreateAttendee(ctx context.Context, a models.Attendee) (*models.Attendee, error)
	SetStatus(ctx context.Context, id string, status models.AttendeeStatus) error
	CheckInAttendee(ctx context.Context, id string) error
	AppendVisitedStand(ctx context.Context, id, standID string) (*models.Attendee, error)
	DeleteAttendee(ctx context.Context, id string) error
}

// SponsorRepository defines sponsor data operations
type SponsorRepository interface {
	ListSponsors(ctx context.Context) ([]models.Sponsor, error)
	CreateSponsor(ctx context.Context, name, logoBase64 string) (*models.Sponsor, error)
	DeleteSponsor(ctx context.Context, id string) error
}

// GlobalStateRepository defines operations on the singleton global-state row.
// Every update is a partial merge of the named fields, never a row replace.
type GlobalStateRepository interface {
	GetGlobalState(ctx context.Context) (*models.GlobalState, error)
	EnsureGlobalState(ctx context.Context, defaults models.GlobalState) error
	UpdateLottery(ctx context.Context, l models.LotteryState) error
	SetAppState(ctx context.Context, s models.AppState) error
	SetAdminPassword(ctx context.Context, password string) error
	SetEventImage(ctx context.Context, imageBase64 string) error
	SetBroadcast(ctx context.Context, b models.Broadcast) error
}

// Subscriber exposes the change feed of store mutations.
type Subscriber interface {
	Subscribe() <-chan Event
	Unsubscribe(ch <-chan Event)
}

// FullRepository combines all repository interfaces
// Use this when a component needs access to every table plus the feed.
type FullRepository interface {
	AttendeeRepository
	SponsorRepository
	GlobalStateRepository
	Subscriber
}

// Ensure Store implements all interfaces
var _ FullRepository = (*Store)(nil)

package models

import "time"

// AppState is the global alert mode pushed to every connected session.
type AppState string

const (
	AppStateNormal AppState = "NORMAL"
	AppStateAttack AppState = "ATTACK"
)

// AttendeeStatus is the approval state of a registered visitor.
type AttendeeStatus string

const (
	StatusPending  AttendeeStatus = "pending"
	StatusApproved AttendeeStatus = "approved"
)

// Attendee is a registered visitor with lottery tickets and stand-visit progress.
type Attendee struct {
	ID               string         `json:"id"`
	Name             string         `json:"name"`
	Email            string         `json:"email"`
	Phone            string         `json:"phone"`
	Company          string         `json:"company"`
	TicketNumbers    []int          `json:"ticket_numbers"`
	CheckedIn        bool           `json:"checked_in"`
	RegistrationDate time.Time      `json:"registration_date"`
	Status           AttendeeStatus `json:"status"`
	VisitedStands    []string       `json:"visited_stands"`
}

// Clone returns a deep copy safe to hand out of the engine mirror.
func (a Attendee) Clone() Attendee {
	c := a
	c.TicketNumbers = append([]int(nil), a.TicketNumbers...)
	c.VisitedStands = append([]string(nil), a.VisitedStands...)
	return c
}

// HasVisited reports whether the attendee already collected the given stand.
func (a Attendee) HasVisited(standID string) bool {
	for _, s := range a.VisitedStands {
		if s == standID {
			return true
		}
	}
	return false
}

// Sponsor is an event sponsor with an inline-encoded logo.
// Immutable once created; the name is derived from the uploaded file name.
type Sponsor struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	LogoBase64 string `json:"logo_base64"`
}

// Stand is one of the fixed catalog of collectible locations.
type Stand struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// LotteryState tracks the three independent draw rounds.
// CurrentDraw and Winner are zero when no draw is showing.
type LotteryState struct {
	Active      bool        `json:"active"`
	CurrentDraw int         `json:"current_draw"`
	Winner      int         `json:"winner"`
	IsSpinning  bool        `json:"is_spinning"`
	Results     map[int]int `json:"results"` // draw round -> winning ticket
}

// Clone returns a deep copy of the lottery state.
func (l LotteryState) Clone() LotteryState {
	c := l
	c.Results = make(map[int]int, len(l.Results))
	for round, ticket := range l.Results {
		c.Results[round] = ticket
	}
	return c
}

// Broadcast is an admin-authored message shown once per client per unique id.
type Broadcast struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// GlobalState is the singleton configuration row shared by all sessions.
// The admin password never leaves the server in API payloads.
type GlobalState struct {
	AppState      AppState     `json:"app_state"`
	Lottery       LotteryState `json:"lottery"`
	AdminPassword string       `json:"-"`
	EventImage    string       `json:"event_image,omitempty"`
	Broadcast     *Broadcast   `json:"broadcast,omitempty"`
}

// Clone returns a deep copy of the global state.
func (g GlobalState) Clone() GlobalState {
	c := g
	c.Lottery = g.Lottery.Clone()
	if g.Broadcast != nil {
		b := *g.Broadcast
		c.Broadcast = &b
	}
	return c
}

// WSMessage is a message pushed to websocket clients.
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

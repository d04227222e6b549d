package store

import (
	"sync"

	"github.com/vandelli/summit/internal/logger"
	"github.com/vandelli/summit/internal/models"
)

// EventType classifies a change-feed notification.
type EventType string

const (
	EventInsert EventType = "insert"
	EventUpdate EventType = "update"
	EventDelete EventType = "delete"
)

// Table names carried on change-feed events.
const (
	TableAttendees   = "attendees"
	TableSponsors    = "sponsors"
	TableGlobalState = "global_state"
)

// Event is a single change-feed notification. The record pointer matching
// the table is set for inserts and updates; ID is always set for attendee
// and sponsor events.
type Event struct {
	Type     EventType
	Table    string
	ID       string
	Attendee *models.Attendee
	Sponsor  *models.Sponsor
	Global   *models.GlobalState
}

// subscriberBuffer bounds how far a slow subscriber may fall behind before
// events are dropped. A subscriber that overflows stays stale until the
// next full reconciliation (engine Refresh); missed events are not replayed.
const subscriberBuffer = 256

// feed fans mutation events out to subscribers in mutation order.
type feed struct {
	log  logger.Logger
	mu   sync.Mutex
	subs map[<-chan Event]chan Event
}

func newFeed(log logger.Logger) *feed {
	return &feed{
		log:  log,
		subs: make(map[<-chan Event]chan Event),
	}
}

// Subscribe registers a new subscriber and returns its event channel.
func (f *feed) Subscribe() <-chan Event {
	ch := make(chan Event, subscriberBuffer)
	f.mu.Lock()
	f.subs[ch] = ch
	f.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (f *feed) Unsubscribe(ch <-chan Event) {
	f.mu.Lock()
	if send, ok := f.subs[ch]; ok {
		delete(f.subs, ch)
		close(send)
	}
	f.mu.Unlock()
}

// publish delivers an event to every subscriber. Delivery never blocks a
// mutation: a full subscriber drops the event and logs it.
func (f *feed) publish(evt Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.subs {
		select {
		case ch <- evt:
		default:
			f.log.Warn("change feed subscriber overflow, event dropped",
				"table", evt.Table, "type", evt.Type, "id", evt.ID)
		}
	}
}

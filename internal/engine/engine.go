// Package engine reconciles local optimistic mutations, the initial bulk
// load and asynchronous change-feed events into one consistent in-memory
// view of the event. It exclusively owns the mirror; every other component
// reads snapshots and requests mutations through its operations.
package engine

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/vandelli/summit/internal/errors"
	"github.com/vandelli/summit/internal/logger"
	"github.com/vandelli/summit/internal/models"
	"github.com/vandelli/summit/internal/store"
)

// AdminUsername is the fixed admin login name; only the password is mutable.
const AdminUsername = "Arrow"

// defaultAdminPassword seeds the global-state row on first start.
const defaultAdminPassword = "#SMTsec$2026"

// defaultSpinDelay is how long a lottery draw spins before it settles.
const defaultSpinDelay = 4 * time.Second

// Broadcaster pushes applied changes to every connected session.
type Broadcaster interface {
	BroadcastEvent(msgType string, payload interface{})
}

// Engine is the synchronization core. All mirror access goes through mu;
// feed events are applied by a single goroutine so event application is
// never re-entrant.
type Engine struct {
	log  logger.Logger
	repo store.FullRepository

	mu        sync.RWMutex
	attendees []models.Attendee
	sponsors  []models.Sponsor
	global    models.GlobalState
	connected bool

	rngMu sync.Mutex
	rng   *rand.Rand

	// regMu serializes registrations so every ticket draw sees the numbers
	// assigned by any registration that started before it.
	regMu sync.Mutex

	// lotteryMu serializes arm, settle and dismiss so a guard check and the
	// state write it protects happen in one critical section.
	lotteryMu sync.Mutex

	broadcaster Broadcaster
	spinDelay   time.Duration

	loadOnce sync.Once
	loadErr  error
	cancel   context.CancelFunc
	done     chan struct{}
}

// New creates an Engine over the given repository.
func New(log logger.Logger, repo store.FullRepository) *Engine {
	return &Engine{
		log:       log,
		repo:      repo,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		spinDelay: defaultSpinDelay,
		done:      make(chan struct{}),
	}
}

// SetBroadcaster sets the hub that receives applied changes. Safe to call
// after Load; the feed consumer reads it under the mirror lock.
func (e *Engine) SetBroadcaster(b Broadcaster) {
	e.mu.Lock()
	e.broadcaster = b
	e.mu.Unlock()
}

func (e *Engine) getBroadcaster() Broadcaster {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.broadcaster
}

// SetSpinDelay overrides the lottery spin duration (for testing).
func (e *Engine) SetSpinDelay(d time.Duration) {
	e.spinDelay = d
}

// SetRandSource overrides the random source (for testing).
func (e *Engine) SetRandSource(src rand.Source) {
	e.rngMu.Lock()
	e.rng = rand.New(src)
	e.rngMu.Unlock()
}

// Load populates the mirror from the store exactly once per process
// lifetime and then starts consuming the change feed. The subscription is
// established even when the initial load fails, so a later Refresh can
// self-heal. On load failure the engine stays usable in disconnected,
// read-only mode.
func (e *Engine) Load(ctx context.Context) error {
	e.loadOnce.Do(func() {
		e.loadErr = e.reconcile(ctx)

		runCtx, cancel := context.WithCancel(context.Background())
		e.cancel = cancel
		go e.run(runCtx, e.repo.Subscribe())
	})
	return e.loadErr
}

// Refresh re-runs the full reconciliation. This is the recovery tool for
// staleness after a dropped or overflowed feed subscription.
func (e *Engine) Refresh(ctx context.Context) error {
	return e.reconcile(ctx)
}

// Close stops the feed consumer.
func (e *Engine) Close() {
	if e.cancel != nil {
		e.cancel()
		<-e.done
	}
}

// reconcile bulk-loads all three tables, creating the global-state row with
// defaults when it is missing.
func (e *Engine) reconcile(ctx context.Context) error {
	attendees, err := e.repo.ListAttendees(ctx)
	if err != nil {
		e.setConnected(false)
		return errors.Unavailable("could not load attendees from the event database", err)
	}

	sponsors, err := e.repo.ListSponsors(ctx)
	if err != nil {
		e.setConnected(false)
		return errors.Unavailable("could not load sponsors from the event database", err)
	}

	global, err := e.repo.GetGlobalState(ctx)
	if err == store.ErrNotFound {
		defaults := models.GlobalState{
			AppState:      models.AppStateNormal,
			Lottery:       models.LotteryState{Results: map[int]int{}},
			AdminPassword: defaultAdminPassword,
		}
		if err := e.repo.EnsureGlobalState(ctx, defaults); err != nil {
			e.setConnected(false)
			return errors.Unavailable("could not initialize global state", err)
		}
		global, err = e.repo.GetGlobalState(ctx)
	}
	if err != nil {
		e.setConnected(false)
		return errors.Unavailable("could not load global state from the event database", err)
	}

	e.mu.Lock()
	e.attendees = attendees
	e.sponsors = sponsors
	e.global = global.Clone()
	e.connected = true
	e.mu.Unlock()

	e.log.Info("state loaded", "attendees", len(attendees), "sponsors", len(sponsors))
	return nil
}

func (e *Engine) setConnected(connected bool) {
	e.mu.Lock()
	e.connected = connected
	e.mu.Unlock()
}

// run consumes the change feed. Events are applied strictly in delivery
// order by this single goroutine.
func (e *Engine) run(ctx context.Context, ch <-chan store.Event) {
	defer close(e.done)
	for {
		select {
		case <-ctx.Done():
			e.repo.Unsubscribe(ch)
			return
		case evt, ok := <-ch:
			if !ok {
				return
			}
			e.apply(evt)
		}
	}
}

// apply merges one change-feed event into the mirror and forwards it to the
// hub. Application is idempotent under replay: a locally applied mutation
// followed by its own echoed event does not double-apply.
func (e *Engine) apply(evt store.Event) {
	switch evt.Table {
	case store.TableAttendees:
		e.applyAttendeeEvent(evt)
	case store.TableSponsors:
		e.applySponsorEvent(evt)
	case store.TableGlobalState:
		e.applyGlobalEvent(evt)
	default:
		e.log.Debug("ignoring change feed event for unknown table", "table", evt.Table)
	}
}

func (e *Engine) applyAttendeeEvent(evt store.Event) {
	e.mu.Lock()
	switch evt.Type {
	case store.EventInsert:
		// This client may have caused the insert and applied it already.
		if evt.Attendee != nil && e.indexOfLocked(evt.Attendee.ID) < 0 {
			e.attendees = append(e.attendees, evt.Attendee.Clone())
		}
	case store.EventUpdate:
		// Unknown ids are dropped rather than fabricating a partial record.
		if evt.Attendee != nil {
			if i := e.indexOfLocked(evt.Attendee.ID); i >= 0 {
				e.attendees[i] = evt.Attendee.Clone()
			}
		}
	case store.EventDelete:
		if i := e.indexOfLocked(evt.ID); i >= 0 {
			e.attendees = append(e.attendees[:i], e.attendees[i+1:]...)
		}
	}
	e.mu.Unlock()

	e.notifyAttendee(evt)
}

func (e *Engine) applySponsorEvent(evt store.Event) {
	e.mu.Lock()
	switch evt.Type {
	case store.EventInsert:
		exists := false
		for _, sp := range e.sponsors {
			if sp.ID == evt.ID {
				exists = true
				break
			}
		}
		if !exists && evt.Sponsor != nil {
			e.sponsors = append(e.sponsors, *evt.Sponsor)
		}
	case store.EventDelete:
		for i, sp := range e.sponsors {
			if sp.ID == evt.ID {
				e.sponsors = append(e.sponsors[:i], e.sponsors[i+1:]...)
				break
			}
		}
	}
	sponsors := append([]models.Sponsor(nil), e.sponsors...)
	b := e.broadcaster
	e.mu.Unlock()

	if b != nil {
		b.BroadcastEvent("sponsors", sponsors)
	}
}

func (e *Engine) applyGlobalEvent(evt store.Event) {
	if evt.Global == nil {
		return
	}
	e.mu.Lock()
	e.global = evt.Global.Clone()
	global := e.global.Clone()
	b := e.broadcaster
	e.mu.Unlock()

	if b != nil {
		b.BroadcastEvent("global_state", global)
	}
}

func (e *Engine) notifyAttendee(evt store.Event) {
	b := e.getBroadcaster()
	if b == nil {
		return
	}
	switch evt.Type {
	case store.EventInsert:
		if evt.Attendee != nil {
			b.BroadcastEvent("attendee_insert", evt.Attendee.Clone())
		}
	case store.EventUpdate:
		if evt.Attendee != nil {
			b.BroadcastEvent("attendee_update", evt.Attendee.Clone())
		}
	case store.EventDelete:
		b.BroadcastEvent("attendee_delete", map[string]string{"id": evt.ID})
	}
}

// indexOfLocked returns the mirror index of an attendee id. Caller holds mu.
func (e *Engine) indexOfLocked(id string) int {
	for i := range e.attendees {
		if e.attendees[i].ID == id {
			return i
		}
	}
	return -1
}

// upsertLocal optimistically applies a confirmed record to the mirror so
// callers see their own write before the echoed feed event arrives.
func (e *Engine) upsertLocal(a models.Attendee) {
	e.mu.Lock()
	if i := e.indexOfLocked(a.ID); i >= 0 {
		e.attendees[i] = a.Clone()
	} else {
		e.attendees = append(e.attendees, a.Clone())
	}
	e.mu.Unlock()
}

// ==================== Snapshot accessors ====================

// Attendees returns a deep copy of the attendee mirror.
func (e *Engine) Attendees() []models.Attendee {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]models.Attendee, len(e.attendees))
	for i := range e.attendees {
		out[i] = e.attendees[i].Clone()
	}
	return out
}

// Sponsors returns a copy of the sponsor mirror.
func (e *Engine) Sponsors() []models.Sponsor {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]models.Sponsor(nil), e.sponsors...)
}

// GlobalState returns a deep copy of the global-state mirror.
func (e *Engine) GlobalState() models.GlobalState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.global.Clone()
}

// Connected reports whether the last reconciliation against the store
// succeeded. False means degraded read-only mode.
func (e *Engine) Connected() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.connected
}

// Stats summarizes the attendee population for the admin dashboard.
type Stats struct {
	Total     int `json:"total"`
	Approved  int `json:"approved"`
	Pending   int `json:"pending"`
	CheckedIn int `json:"checked_in"`
}

// Stats returns attendee counts from the mirror.
func (e *Engine) Stats() Stats {
	e.mu.RLock()
	defer e.mu.RUnlock()
	st := Stats{Total: len(e.attendees)}
	for i := range e.attendees {
		switch e.attendees[i].Status {
		case models.StatusApproved:
			st.Approved++
		case models.StatusPending:
			st.Pending++
		}
		if e.attendees[i].CheckedIn {
			st.CheckedIn++
		}
	}
	return st
}

package engine

import (
	"github.com/vandelli/summit/internal/errors"
)

const (
	// ticketMax bounds the ticket number space; tickets are drawn from
	// [1, ticketMax].
	ticketMax = 999

	// ticketsPerAttendee is how many tickets each registration receives.
	ticketsPerAttendee = 3

	// maxDrawAttempts bounds the rejection-sampling loop. The space is
	// large relative to expected attendance, so hitting this means the
	// pool is effectively exhausted.
	maxDrawAttempts = 10000
)

// usedTicketsLocked collects every ticket number assigned to any attendee.
// Caller holds mu.
func (e *Engine) usedTicketsLocked() map[int]bool {
	used := make(map[int]bool, len(e.attendees)*ticketsPerAttendee)
	for i := range e.attendees {
		for _, n := range e.attendees[i].TicketNumbers {
			used[n] = true
		}
	}
	return used
}

// drawTickets picks ticketsPerAttendee distinct numbers uniformly from
// [1, ticketMax], disjoint from every number in used. Rejection sampling
// with an explicit exhaustion guard instead of an unbounded loop.
func (e *Engine) drawTickets(used map[int]bool) ([]int, error) {
	if ticketMax-len(used) < ticketsPerAttendee {
		return nil, errors.Capacity("the lottery ticket pool is exhausted")
	}

	e.rngMu.Lock()
	defer e.rngMu.Unlock()

	picked := make([]int, 0, ticketsPerAttendee)
	seen := make(map[int]bool, ticketsPerAttendee)
	for attempts := 0; len(picked) < ticketsPerAttendee; attempts++ {
		if attempts >= maxDrawAttempts {
			return nil, errors.Capacity("the lottery ticket pool is exhausted")
		}
		n := e.rng.Intn(ticketMax) + 1
		if used[n] || seen[n] {
			continue
		}
		seen[n] = true
		picked = append(picked, n)
	}
	return picked, nil
}

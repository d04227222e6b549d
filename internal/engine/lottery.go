package engine

import (
	"context"
	"time"

	"github.com/vandelli/summit/internal/errors"
	"github.com/vandelli/summit/internal/models"
)

// drawRounds is the number of independent lottery rounds.
const drawRounds = 3

// ArmDraw starts a lottery round: the eligible pool (every ticket held by
// an approved attendee) is computed now, the winner is chosen now, and the
// round spins for the configured delay before settling. Deciding the winner
// at arm time means network delay cannot change the announced result
// mid-animation. Randomness is math/rand: this is a live entertainment
// drawing, not a security-sensitive lottery.
func (e *Engine) ArmDraw(ctx context.Context, round int) (*models.LotteryState, error) {
	if round < 1 || round > drawRounds {
		return nil, errors.InvalidInputf("unknown draw round %d", round)
	}

	// Guard check and state write must be one critical section, or two
	// concurrent arm requests could both pass the spinning/settled guard.
	e.lotteryMu.Lock()
	defer e.lotteryMu.Unlock()

	e.mu.RLock()
	spinning := e.global.Lottery.IsSpinning
	_, settled := e.global.Lottery.Results[round]
	var pool []int
	for i := range e.attendees {
		if e.attendees[i].Status == models.StatusApproved {
			pool = append(pool, e.attendees[i].TicketNumbers...)
		}
	}
	next := e.global.Lottery.Clone()
	e.mu.RUnlock()

	if spinning {
		return nil, errors.Conflict("a draw is already in progress")
	}
	if settled {
		return nil, errors.Validationf("draw round %d already has a recorded winner", round)
	}
	if len(pool) == 0 {
		return nil, errors.Validation("no approved attendees to draw from")
	}

	e.rngMu.Lock()
	winner := pool[e.rng.Intn(len(pool))]
	e.rngMu.Unlock()

	next.Active = true
	next.CurrentDraw = round
	next.Winner = 0
	next.IsSpinning = true

	if err := e.updateLottery(ctx, next); err != nil {
		return nil, err
	}

	time.AfterFunc(e.spinDelay, func() {
		e.settleDraw(round, winner)
	})

	result := next.Clone()
	return &result, nil
}

// settleDraw records the winner chosen at arm time and stops the spin.
// A round's recorded winner, once set, is never overwritten.
func (e *Engine) settleDraw(round, winner int) {
	e.lotteryMu.Lock()
	defer e.lotteryMu.Unlock()

	e.mu.RLock()
	next := e.global.Lottery.Clone()
	e.mu.RUnlock()

	next.IsSpinning = false
	next.Winner = winner
	if _, done := next.Results[round]; !done {
		next.Results[round] = winner
	}

	if err := e.updateLottery(context.Background(), next); err != nil {
		e.log.Error("could not persist lottery result", "round", round, "winner", winner, "error", err)
	}
}

// DismissDraw clears the draw visual without touching recorded results.
func (e *Engine) DismissDraw(ctx context.Context) error {
	e.lotteryMu.Lock()
	defer e.lotteryMu.Unlock()

	e.mu.RLock()
	next := e.global.Lottery.Clone()
	e.mu.RUnlock()

	next.Active = false
	next.CurrentDraw = 0
	next.Winner = 0
	next.IsSpinning = false

	return e.updateLottery(ctx, next)
}

// updateLottery persists a lottery state and applies it to the mirror.
func (e *Engine) updateLottery(ctx context.Context, l models.LotteryState) error {
	if err := e.repo.UpdateLottery(ctx, l); err != nil {
		return errors.Unavailable("could not update the lottery state, please try again", err)
	}
	e.mu.Lock()
	e.global.Lottery = l.Clone()
	e.mu.Unlock()
	return nil
}

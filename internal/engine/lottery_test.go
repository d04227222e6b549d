package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/vandelli/summit/internal/errors"
	"github.com/vandelli/summit/internal/models"
)

// waitForSettle polls until the spin stops or the deadline passes.
func waitForSettle(t *testing.T, e *Engine) models.LotteryState {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if g := e.GlobalState(); !g.Lottery.IsSpinning {
			return g.Lottery
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("draw never settled")
	return models.LotteryState{}
}

func ticketSet(attendees ...*models.Attendee) map[int]bool {
	set := make(map[int]bool)
	for _, a := range attendees {
		for _, n := range a.TicketNumbers {
			set[n] = true
		}
	}
	return set
}

func TestArmDrawRejectsEmptyPool(t *testing.T) {
	e := newTestEngine(t)

	// Nobody registered at all.
	_, err := e.ArmDraw(context.Background(), 1)
	if errors.KindOf(err) != errors.ErrValidation {
		t.Errorf("kind = %v, want ErrValidation", errors.KindOf(err))
	}

	// Pending attendees do not count toward the pool.
	mustRegister(t, e, "Ana", "a@x.br")
	_, err = e.ArmDraw(context.Background(), 1)
	if errors.KindOf(err) != errors.ErrValidation {
		t.Errorf("pending-only kind = %v, want ErrValidation", errors.KindOf(err))
	}

	if g := e.GlobalState(); g.Lottery.Active || g.Lottery.IsSpinning {
		t.Errorf("rejected arm must not touch state: %+v", g.Lottery)
	}
}

func TestArmDrawRejectsBadRound(t *testing.T) {
	e := newTestEngine(t)

	for _, round := range []int{0, -1, 4, 100} {
		if _, err := e.ArmDraw(context.Background(), round); errors.KindOf(err) != errors.ErrInvalidInput {
			t.Errorf("round %d kind = %v, want ErrInvalidInput", round, errors.KindOf(err))
		}
	}
}

func TestDrawSettlesWithWinnerFromPool(t *testing.T) {
	e := newTestEngine(t)
	e.SetSpinDelay(20 * time.Millisecond)
	ctx := context.Background()

	a := mustRegister(t, e, "Ana", "a@x.br")
	b := mustRegister(t, e, "Bia", "b@x.br")
	e.Approve(ctx, a.ID)
	e.Approve(ctx, b.ID)

	state, err := e.ArmDraw(ctx, 1)
	if err != nil {
		t.Fatalf("ArmDraw: %v", err)
	}
	if !state.Active || !state.IsSpinning || state.CurrentDraw != 1 {
		t.Errorf("armed state = %+v", state)
	}
	if state.Winner != 0 {
		t.Errorf("winner must stay hidden while spinning, got %d", state.Winner)
	}

	settled := waitForSettle(t, e)
	if settled.Winner == 0 {
		t.Fatal("expected a winner after settling")
	}
	if !ticketSet(a, b)[settled.Winner] {
		t.Errorf("winner %d not among the approved attendees' tickets", settled.Winner)
	}
	if settled.Results[1] != settled.Winner {
		t.Errorf("results[1] = %d, want %d", settled.Results[1], settled.Winner)
	}
}

func TestWinnerDecidedAtArmTime(t *testing.T) {
	e := newTestEngine(t)
	e.SetSpinDelay(100 * time.Millisecond)
	ctx := context.Background()

	a := mustRegister(t, e, "Ana", "a@x.br")
	e.Approve(ctx, a.ID)

	if _, err := e.ArmDraw(ctx, 1); err != nil {
		t.Fatalf("ArmDraw: %v", err)
	}

	// An approval landing mid-spin must not influence the outcome.
	late := mustRegister(t, e, "Bia", "b@x.br")
	e.Approve(ctx, late.ID)

	settled := waitForSettle(t, e)
	if !ticketSet(a)[settled.Winner] {
		t.Errorf("winner %d not from the arm-time pool %v", settled.Winner, a.TicketNumbers)
	}
}

func TestArmDrawWhileSpinningConflicts(t *testing.T) {
	e := newTestEngine(t)
	e.SetSpinDelay(500 * time.Millisecond)
	ctx := context.Background()

	a := mustRegister(t, e, "Ana", "a@x.br")
	e.Approve(ctx, a.ID)

	if _, err := e.ArmDraw(ctx, 1); err != nil {
		t.Fatalf("ArmDraw: %v", err)
	}
	if _, err := e.ArmDraw(ctx, 2); errors.KindOf(err) != errors.ErrConflict {
		t.Errorf("kind = %v, want ErrConflict", errors.KindOf(err))
	}

	waitForSettle(t, e)
}

func TestSimultaneousArmRequestsAdmitOnlyOne(t *testing.T) {
	e := newTestEngine(t)
	e.SetSpinDelay(200 * time.Millisecond)
	ctx := context.Background()

	a := mustRegister(t, e, "Ana", "a@x.br")
	e.Approve(ctx, a.ID)

	// Both requests race through the spinning guard; exactly one may win.
	start := make(chan struct{})
	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = e.ArmDraw(ctx, i+1)
		}(i)
	}
	close(start)
	wg.Wait()

	var succeeded, conflicted int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.KindOf(err) == errors.ErrConflict:
			conflicted++
		default:
			t.Fatalf("unexpected arm error: %v", err)
		}
	}
	if succeeded != 1 || conflicted != 1 {
		t.Errorf("got %d successes and %d conflicts, want exactly one of each", succeeded, conflicted)
	}

	settled := waitForSettle(t, e)
	if len(settled.Results) != 1 {
		t.Errorf("results = %v, want a single recorded round", settled.Results)
	}
}

func TestSettledRoundCannotBeRedrawn(t *testing.T) {
	e := newTestEngine(t)
	e.SetSpinDelay(10 * time.Millisecond)
	ctx := context.Background()

	a := mustRegister(t, e, "Ana", "a@x.br")
	e.Approve(ctx, a.ID)

	if _, err := e.ArmDraw(ctx, 1); err != nil {
		t.Fatalf("ArmDraw: %v", err)
	}
	first := waitForSettle(t, e)

	if _, err := e.ArmDraw(ctx, 1); errors.KindOf(err) != errors.ErrValidation {
		t.Errorf("re-arm kind = %v, want ErrValidation", errors.KindOf(err))
	}
	if g := e.GlobalState(); g.Lottery.Results[1] != first.Results[1] {
		t.Errorf("results[1] changed from %d to %d", first.Results[1], g.Lottery.Results[1])
	}
}

func TestIndependentRoundsAccumulateResults(t *testing.T) {
	e := newTestEngine(t)
	e.SetSpinDelay(10 * time.Millisecond)
	ctx := context.Background()

	a := mustRegister(t, e, "Ana", "a@x.br")
	e.Approve(ctx, a.ID)

	for round := 1; round <= 3; round++ {
		if _, err := e.ArmDraw(ctx, round); err != nil {
			t.Fatalf("ArmDraw(%d): %v", round, err)
		}
		waitForSettle(t, e)
	}

	g := e.GlobalState()
	if len(g.Lottery.Results) != 3 {
		t.Errorf("results = %v, want all three rounds recorded", g.Lottery.Results)
	}
}

func TestDismissDrawKeepsResults(t *testing.T) {
	e := newTestEngine(t)
	e.SetSpinDelay(10 * time.Millisecond)
	ctx := context.Background()

	a := mustRegister(t, e, "Ana", "a@x.br")
	e.Approve(ctx, a.ID)

	e.ArmDraw(ctx, 1)
	settled := waitForSettle(t, e)

	if err := e.DismissDraw(ctx); err != nil {
		t.Fatalf("DismissDraw: %v", err)
	}

	g := e.GlobalState()
	if g.Lottery.Active || g.Lottery.IsSpinning || g.Lottery.CurrentDraw != 0 || g.Lottery.Winner != 0 {
		t.Errorf("dismiss must clear the overlay: %+v", g.Lottery)
	}
	if g.Lottery.Results[1] != settled.Results[1] {
		t.Errorf("dismiss must not touch results: %v", g.Lottery.Results)
	}
}

func TestLotteryStateSurvivesRefresh(t *testing.T) {
	e := newTestEngine(t)
	e.SetSpinDelay(10 * time.Millisecond)
	ctx := context.Background()

	a := mustRegister(t, e, "Ana", "a@x.br")
	e.Approve(ctx, a.ID)
	e.ArmDraw(ctx, 1)
	settled := waitForSettle(t, e)

	if err := e.Refresh(ctx); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if g := e.GlobalState(); g.Lottery.Results[1] != settled.Results[1] {
		t.Errorf("results lost across refresh: %v", g.Lottery.Results)
	}
}

package refreshstate

import (
	"sync"
	"time"

	"github.com/riskibarqy/fpl-companion/internal/domain/fixture"
	"github.com/riskibarqy/fpl-companion/internal/domain/gameweek"
)

const (
	deadlineBatchFrom = 30 * time.Minute
	deadlineBatchTo   = 90 * time.Minute
)

// Input is everything the derivation depends on.
type Input struct {
	Current  *gameweek.Gameweek
	Fixtures []fixture.Fixture
	Now      time.Time
}

// Derive evaluates the rules in fixed order; the first match wins. Fixtures
// outside the current gameweek are ignored.
func Derive(in Input, window Window) State {
	if in.Current == nil {
		return OutsideGameweek
	}
	if window.Contains(in.Now) {
		return PriceWindow
	}

	current := fixturesOf(in.Fixtures, in.Current.ID)
	for _, f := range current {
		if f.InPlay(in.Now) {
			return LiveMatches
		}
	}

	if len(current) > 0 && allAwaitingBonus(current) {
		return BonusPending
	}

	if !in.Current.DeadlineTime.IsZero() {
		since := in.Now.Sub(in.Current.DeadlineTime)
		if since >= deadlineBatchFrom && since <= deadlineBatchTo {
			return TransferDeadline
		}
	}

	return Idle
}

func fixturesOf(rows []fixture.Fixture, gw int) []fixture.Fixture {
	out := make([]fixture.Fixture, 0, len(rows))
	for _, f := range rows {
		if f.Gameweek == gw {
			out = append(out, f)
		}
	}
	return out
}

func allAwaitingBonus(rows []fixture.Fixture) bool {
	for _, f := range rows {
		if !f.AwaitingBonus() {
			return false
		}
	}
	return true
}

// Machine holds the last published state and reports transitions only.
type Machine struct {
	mu        sync.Mutex
	window    Window
	current   State
	published bool
}

func NewMachine(window Window) *Machine {
	return &Machine{window: window}
}

// Evaluate derives the state for in. changed is true on the first evaluation
// and on every transition after it.
func (m *Machine) Evaluate(in Input) (Result, bool) {
	next := Derive(in, m.window)

	m.mu.Lock()
	defer m.mu.Unlock()

	changed := !m.published || next != m.current
	m.current = next
	m.published = true
	return resultOf(next), changed
}

// Force publishes s without derivation, used when inputs are unavailable.
func (m *Machine) Force(s State) (Result, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	changed := !m.published || s != m.current
	m.current = s
	m.published = true
	return resultOf(s), changed
}

// Current returns the last published state, Idle before the first evaluation.
func (m *Machine) Current() Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.published {
		return resultOf(Idle)
	}
	return resultOf(m.current)
}

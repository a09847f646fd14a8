// Package schedule decides, once per block, whether a currency is due for
// an elasticity evaluation. One evaluation per currency per eligible
// period; re-entrant invocation within the same period is a no-op.
package schedule

import (
	"fmt"

	"github.com/settmint/serp-tes/internal/types"
)

// State of a currency's evaluation cycle.
type State int

const (
	StateIdle State = iota
	StateEvaluating
	StateApplied
	StateSkipped
)

func (s State) String() string {
	switch s {
	case StateEvaluating:
		return "evaluating"
	case StateApplied:
		return "applied"
	case StateSkipped:
		return "skipped"
	default:
		return "idle"
	}
}

type currencyState struct {
	state      State
	lastPeriod uint64
	evaluated  bool
}

// Scheduler tracks per-currency evaluation state. It is driven
// synchronously by the host's block loop and does a fixed amount of work
// per currency per period.
type Scheduler struct {
	currencies map[types.CurrencyID]*currencyState
}

func New() *Scheduler {
	return &Scheduler{currencies: make(map[types.CurrencyID]*currencyState)}
}

// PeriodOf derives the period counter from a block height.
func PeriodOf(height, frequency uint64) uint64 {
	if frequency == 0 {
		frequency = 1
	}
	return height / frequency
}

// BeginEvaluation reports whether the currency is due in the given period
// and, if so, transitions it to Evaluating. A currency already evaluated in
// this period is not due again — that is the idempotency guard keyed by
// (currency id, period id).
func (s *Scheduler) BeginEvaluation(id types.CurrencyID, period uint64) bool {
	cs, ok := s.currencies[id]
	if !ok {
		cs = &currencyState{}
		s.currencies[id] = cs
	}
	if cs.evaluated && period <= cs.lastPeriod {
		return false
	}
	switch cs.state {
	case StateApplied, StateSkipped:
		// entering the next eligible period returns the machine to Idle
		if err := cs.transition(StateIdle); err != nil {
			return false
		}
	case StateEvaluating:
		return false
	}
	if err := cs.transition(StateEvaluating); err != nil {
		return false
	}
	cs.lastPeriod = period
	cs.evaluated = true
	return true
}

// Complete finishes the in-flight evaluation: Applied when the executor
// reported a supply change, Skipped otherwise (NoAction or a
// fatal-for-period failure).
func (s *Scheduler) Complete(id types.CurrencyID, applied bool) error {
	cs, ok := s.currencies[id]
	if !ok || cs.state != StateEvaluating {
		return fmt.Errorf("complete %q: no evaluation in flight", id)
	}
	to := StateSkipped
	if applied {
		to = StateApplied
	}
	return cs.transition(to)
}

// StateOf returns the current state for a currency.
func (s *Scheduler) StateOf(id types.CurrencyID) State {
	if cs, ok := s.currencies[id]; ok {
		return cs.state
	}
	return StateIdle
}

// LastPeriod returns the most recently evaluated period and whether any
// evaluation has happened yet.
func (s *Scheduler) LastPeriod(id types.CurrencyID) (uint64, bool) {
	if cs, ok := s.currencies[id]; ok && cs.evaluated {
		return cs.lastPeriod, true
	}
	return 0, false
}

func (cs *currencyState) transition(to State) error {
	if !isAllowedTransition(cs.state, to) {
		return fmt.Errorf("disallowed transition %s -> %s", cs.state, to)
	}
	cs.state = to
	return nil
}

func isAllowedTransition(from, to State) bool {
	switch from {
	case StateIdle:
		return to == StateEvaluating
	case StateEvaluating:
		return to == StateApplied || to == StateSkipped
	case StateApplied, StateSkipped:
		return to == StateIdle
	default:
		return false
	}
}

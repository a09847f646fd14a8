// Package engine is the host-facing entry point of the elastic-supply
// core. The host's block-production loop calls OnPeriodTick exactly once
// per produced block, in sequence; the engine evaluates each due currency
// synchronously, in ascending id order, and emits one structured record per
// evaluated (currency, period).
package engine

import (
	"github.com/rs/zerolog"

	"github.com/settmint/serp-tes/internal/collab"
	"github.com/settmint/serp-tes/internal/elasticity"
	"github.com/settmint/serp-tes/internal/executor"
	"github.com/settmint/serp-tes/internal/registry"
	"github.com/settmint/serp-tes/internal/schedule"
	"github.com/settmint/serp-tes/internal/types"
)

// Recorder receives one record per evaluated period. The journal behind
// the observability API implements it; the engine never reads records back.
type Recorder interface {
	Append(rec types.PeriodRecord)
}

type nopRecorder struct{}

func (nopRecorder) Append(types.PeriodRecord) {}

// Engine wires registry, calculator, scheduler and executor over the
// collaborator boundary. All evaluation is single-threaded and
// deterministic; the engine holds no cross-period state beyond the
// scheduler's idempotency guard and the executor's pending-release carry.
type Engine struct {
	reg      *registry.Registry
	oracle   collab.Oracle
	ledger   collab.Ledger
	market   collab.Market
	calc     *elasticity.Calculator
	sched    *schedule.Scheduler
	exec     *executor.Executor
	recorder Recorder
	log      zerolog.Logger
}

// Option customizes engine construction.
type Option func(*Engine)

// WithRecorder directs period records to a journal.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) { e.recorder = r }
}

func New(reg *registry.Registry, oracle collab.Oracle, ledger collab.Ledger, market collab.Market, log zerolog.Logger, opts ...Option) *Engine {
	e := &Engine{
		reg:      reg,
		oracle:   oracle,
		ledger:   ledger,
		market:   market,
		calc:     elasticity.NewCalculator(reg.Engine().StalenessLimit),
		sched:    schedule.New(),
		exec:     executor.New(ledger, market, log),
		recorder: nopRecorder{},
		log:      log,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// OnPeriodTick evaluates every currency due at the given block height and
// returns the records it produced. All errors are recovered locally; a
// failed period is Skipped and re-attempted at its next eligible period
// with a fresh snapshot and a fresh quote.
func (e *Engine) OnPeriodTick(height uint64) []types.PeriodRecord {
	var out []types.PeriodRecord
	for _, cur := range e.reg.Currencies() {
		period := schedule.PeriodOf(height, cur.Frequency)
		if !e.sched.BeginEvaluation(cur.ID, period) {
			continue
		}
		rec := e.evaluate(cur, period, height)
		e.recorder.Append(rec)
		e.emit(rec)
		out = append(out, rec)
	}
	return out
}

func (e *Engine) evaluate(cur types.Currency, period, height uint64) types.PeriodRecord {
	rec := types.PeriodRecord{CurrencyID: cur.ID, Period: period, Height: height}

	// retry any carried release before this period's decision, so the
	// carry is cleared even when the new decision is NoAction
	if e.exec.PendingRelease(cur.ID) > 0 {
		_, _ = e.exec.FlushPending(cur.ID)
	}

	supply, err := e.ledger.CurrentSupply(cur.ID)
	if err != nil {
		rec.Result = types.ExecutionResult{
			Decision: types.ElasticityDecision{CurrencyID: cur.ID, Period: period},
			Err:      types.ErrLedger,
			Detail:   err.Error(),
		}
		rec.State = e.complete(cur.ID, false)
		return rec
	}
	snap := types.SupplySnapshot{CurrencyID: cur.ID, Supply: supply, Height: height}

	quote, err := e.oracle.LatestPrice(cur.ID)
	var decision types.ElasticityDecision
	if err != nil {
		// an unavailable oracle is treated identically to a stale quote
		decision = types.ElasticityDecision{CurrencyID: cur.ID, Reason: types.ErrStalePrice}
	} else {
		decision = e.calc.Compute(cur, snap, quote)
	}
	decision.Period = period

	result := e.exec.Execute(decision)
	if result.Err == types.ErrNone && decision.Reason != types.ErrNone {
		result.Err = decision.Reason
	}
	rec.Result = result
	rec.State = e.complete(cur.ID, result.Applied)
	return rec
}

func (e *Engine) complete(id types.CurrencyID, applied bool) string {
	if err := e.sched.Complete(id, applied); err != nil {
		e.log.Error().Str("currency", string(id)).Err(err).Msg("scheduler transition failed")
	}
	return e.sched.StateOf(id).String()
}

func (e *Engine) emit(rec types.PeriodRecord) {
	log := e.log.Info()
	if rec.Result.Err.Fatal() {
		log = e.log.Warn()
	}
	ev := log.
		Str("currency", string(rec.CurrencyID)).
		Uint64("period", rec.Period).
		Uint64("height", rec.Height).
		Str("state", rec.State).
		Str("direction", rec.Result.Decision.Direction.String()).
		Uint64("magnitude", rec.Result.Decision.Magnitude).
		Bool("applied", rec.Result.Applied).
		Bool("clamped", rec.Result.Decision.Clamps.Clamped())
	if rec.Result.Err != types.ErrNone {
		ev = ev.Str("error", string(rec.Result.Err))
	}
	ev.Msg("period evaluated")
}

// Scheduler exposes the period state machine, read-only use only.
func (e *Engine) Scheduler() *schedule.Scheduler { return e.sched }

// Executor exposes the supply executor, primarily for pending inspection.
func (e *Engine) Executor() *executor.Executor { return e.exec }

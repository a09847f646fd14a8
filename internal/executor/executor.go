// Package executor applies an elasticity decision by dispatching mint/burn
// and market-settlement requests to the collaborators. It is the only
// component allowed to mutate the authoritative supply figure, and it does
// so at most once per currency per period.
package executor

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/settmint/serp-tes/internal/collab"
	"github.com/settmint/serp-tes/internal/guard"
	"github.com/settmint/serp-tes/internal/types"
)

// Executor dispatches decided supply deltas. The pending map carries minted
// but unreleased units across periods after a market release failure; it is
// bookkeeping for a mint that already happened, not decision state.
type Executor struct {
	ledger  collab.Ledger
	market  collab.Market
	log     zerolog.Logger
	pending map[types.CurrencyID]uint64
}

func New(ledger collab.Ledger, market collab.Market, log zerolog.Logger) *Executor {
	return &Executor{
		ledger:  ledger,
		market:  market,
		log:     log,
		pending: make(map[types.CurrencyID]uint64),
	}
}

// PendingRelease returns the minted-but-unreleased amount carried for a
// currency.
func (e *Executor) PendingRelease(id types.CurrencyID) uint64 {
	return e.pending[id]
}

// FlushPending retries the market release of carried units. Supply is
// unaffected either way — the mint already occurred in a previous period.
func (e *Executor) FlushPending(id types.CurrencyID) (uint64, error) {
	carry := e.pending[id]
	if carry == 0 {
		return 0, nil
	}
	if err := e.market.ReleaseToMarket(id, carry); err != nil {
		e.log.Warn().Str("currency", string(id)).Uint64("pending", carry).
			Err(err).Msg("pending release retry failed")
		return 0, err
	}
	delete(e.pending, id)
	e.log.Info().Str("currency", string(id)).Uint64("released", carry).
		Msg("pending release flushed")
	return carry, nil
}

// Execute applies one decision and reports what actually happened. Ledger
// failures are fatal for the period; market failures leave an explicitly
// recorded partial outcome.
func (e *Executor) Execute(d types.ElasticityDecision) types.ExecutionResult {
	res := types.ExecutionResult{Decision: d}

	switch d.Direction {
	case types.Expand:
		e.expand(d, &res)
	case types.Contract:
		e.contract(d, &res)
	default:
		// NoAction: nothing to dispatch
	}
	res.Pending = e.pending[d.CurrencyID]
	return res
}

// expand mints first, then releases into market settlement. A release
// failure after a successful mint is not rolled back — the inflation
// already occurred — so the unreleased units are carried as pending.
func (e *Executor) expand(d types.ElasticityDecision, res *types.ExecutionResult) {
	if err := e.ledger.Mint(d.CurrencyID, d.Magnitude); err != nil {
		res.Err = classifyLedger(err)
		res.Detail = fmt.Sprintf("mint rejected: %v", err)
		return
	}
	res.Minted = d.Magnitude

	if err := e.market.ReleaseToMarket(d.CurrencyID, d.Magnitude); err != nil {
		e.pending[d.CurrencyID] += d.Magnitude
		res.Applied = true
		res.Err = types.ErrPendingRelease
		res.Detail = fmt.Sprintf("minted %d, release failed: %v", d.Magnitude, err)
		e.log.Warn().Str("currency", string(d.CurrencyID)).Uint64("amount", d.Magnitude).
			Err(err).Msg("release failed after mint, carrying pending")
		return
	}
	res.Released = d.Magnitude
	res.Applied = true
}

// contract acquires from the market first and burns exactly what was
// acquired. A liquidity shortfall under-corrects and is reported, never
// retried within the period; contraction must not over-correct supply
// below what actually left circulation.
func (e *Executor) contract(d types.ElasticityDecision, res *types.ExecutionResult) {
	acquired, err := e.market.AcquireFromMarket(d.CurrencyID, d.Magnitude)
	if err != nil {
		res.Err = types.ErrMarket
		res.Detail = fmt.Sprintf("acquisition failed: %v", err)
		return
	}
	if acquired > d.Magnitude {
		// collaborator contract violation; burn no more than requested
		acquired = d.Magnitude
	}
	res.Acquired = acquired
	if acquired == 0 {
		res.Err = types.ErrMarket
		res.Detail = "no liquidity acquired"
		return
	}

	if err := e.ledger.Burn(d.CurrencyID, acquired); err != nil {
		res.Err = classifyLedger(err)
		res.Detail = fmt.Sprintf("burn rejected after acquiring %d: %v", acquired, err)
		return
	}
	res.Burned = acquired
	res.Applied = true
	if acquired < d.Magnitude {
		res.Err = types.ErrMarket
		res.Detail = fmt.Sprintf("liquidity shortfall: acquired %d of %d", acquired, d.Magnitude)
	}
}

func classifyLedger(err error) types.ErrorKind {
	if errors.Is(err, guard.ErrOverflow) {
		return types.ErrArithmeticOverflow
	}
	return types.ErrLedger
}

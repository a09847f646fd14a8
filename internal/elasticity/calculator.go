// Package elasticity computes the signed supply adjustment for one currency
// and one period. The computation is a pure function of its inputs:
// identical (currency, snapshot, quote) always yields the identical
// decision, which is what lets independent executors reach consensus.
package elasticity

import (
	"github.com/shopspring/decimal"

	"github.com/settmint/serp-tes/internal/guard"
	"github.com/settmint/serp-tes/internal/types"
)

// Calculator turns a price deviation into a bounded supply delta.
type Calculator struct {
	stalenessLimit uint64
}

func NewCalculator(stalenessLimit uint64) *Calculator {
	return &Calculator{stalenessLimit: stalenessLimit}
}

// Compute produces the elasticity decision for one period.
//
// Deviation = (price - peg) / peg. Within the tolerance band the decision is
// NoAction. Above the band the currency is under-supplied relative to
// demand and the supply expands; below it contracts. The magnitude is
// supply x (|deviation| - band), truncated toward zero, clamped to the
// per-period cap and, for contractions, to the minimum supply floor.
//
// Rounding is always toward zero magnitude. A controller that only ever
// under-corrects cannot runaway-expand or drain supply through compounding
// rounding error.
func (c *Calculator) Compute(cur types.Currency, snap types.SupplySnapshot, quote types.PriceQuote) types.ElasticityDecision {
	d := types.ElasticityDecision{CurrencyID: cur.ID}

	if quote.Price.Sign() <= 0 {
		d.Reason = types.ErrInvalidPrice
		return d
	}
	if snap.Height > quote.Height && snap.Height-quote.Height > c.stalenessLimit {
		d.Reason = types.ErrStalePrice
		return d
	}

	deviation := quote.Price.Sub(cur.Peg).Div(cur.Peg)
	if deviation.Abs().Cmp(cur.Tolerance) <= 0 {
		return d
	}

	dir := types.Expand
	if deviation.Sign() < 0 {
		dir = types.Contract
	}
	excess := deviation.Abs().Sub(cur.Tolerance)
	raw := decimal.NewFromUint64(snap.Supply).Mul(excess).Truncate(0)

	m, clamps := guard.ClampMagnitude(dir, raw, cur, snap.Supply)
	d.Clamps = clamps
	if m == 0 {
		// the clamps (or rounding) left nothing to do
		return d
	}
	d.Direction = dir
	d.Magnitude = m
	return d
}

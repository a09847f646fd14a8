// Package collab defines the external collaborator boundary of the
// elastic-supply core: the price oracle, the balance ledger and the market
// subsystem. The core owns no ledger state of its own; the authoritative
// supply figure lives behind the Ledger interface and is mutated only by
// the supply executor, once per period.
package collab

import (
	"errors"

	"github.com/settmint/serp-tes/internal/types"
)

// ErrUnavailable is returned by an oracle with no quote for the currency.
// The core treats it identically to a stale quote.
var ErrUnavailable = errors.New("price unavailable")

// Oracle supplies the latest observed market price for a currency. It must
// return an immediately available value or a pre-fetched snapshot; the core
// never waits on it.
type Oracle interface {
	LatestPrice(id types.CurrencyID) (types.PriceQuote, error)
}

// Ledger is the multi-currency balance ledger. Mint and Burn are atomic and
// immediately reflected in subsequent CurrentSupply calls.
type Ledger interface {
	CurrentSupply(id types.CurrencyID) (uint64, error)
	Mint(id types.CurrencyID, amount uint64) error
	Burn(id types.CurrencyID, amount uint64) error
}

// Market converts a supply delta into executed trades. AcquireFromMarket
// may return less than requested when liquidity is insufficient; the
// returned amount is what was actually removed from circulation.
type Market interface {
	ReleaseToMarket(id types.CurrencyID, amount uint64) error
	AcquireFromMarket(id types.CurrencyID, amount uint64) (uint64, error)
}

package types

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// CurrencyID identifies a currency participating in the elastic system.
// Evaluation order across currencies is lexical ascending, so outcomes are
// identical on every node processing the same block.
type CurrencyID string

// Currency is the per-currency policy configuration owned by the peg
// registry. Calculator and executor borrow it read-only per invocation.
type Currency struct {
	ID CurrencyID `json:"id"`

	// Peg is the target price; 1.00 means parity with the reference unit.
	Peg decimal.Decimal `json:"peg"`

	// Tolerance is the deviation band around the peg within which no
	// action is taken, as a ratio (0.02 = ±2%).
	Tolerance decimal.Decimal `json:"tolerance"`

	// MaxChangeCap bounds the supply change in a single period,
	// independent of deviation size.
	MaxChangeCap uint64 `json:"max_change_cap"`

	// MinimumFloor is the supply level no contraction may breach.
	MinimumFloor uint64 `json:"minimum_floor"`

	// Frequency is the evaluation interval in blocks; period id is
	// height / Frequency.
	Frequency uint64 `json:"frequency"`

	// GenesisSupply seeds the simulator's ledger; zero when driving a
	// live ledger collaborator.
	GenesisSupply uint64 `json:"genesis_supply,omitempty"`
}

// SupplySnapshot is an atomic read of circulating supply taken at the start
// of a period and treated as immutable for the rest of that evaluation.
type SupplySnapshot struct {
	CurrencyID CurrencyID `json:"currency_id"`
	Supply     uint64     `json:"supply"`
	Height     uint64     `json:"height"`
}

// PriceQuote is untrusted external input; it may be stale or zero and the
// calculator must degrade to NoAction rather than fail.
type PriceQuote struct {
	CurrencyID CurrencyID      `json:"currency_id"`
	Price      decimal.Decimal `json:"price"`
	Height     uint64          `json:"height"`
}

// Direction of a supply adjustment.
type Direction int

const (
	NoAction Direction = iota
	Expand
	Contract
)

func (d Direction) String() string {
	switch d {
	case Expand:
		return "expand"
	case Contract:
		return "contract"
	default:
		return "no_action"
	}
}

func (d Direction) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Direction) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	switch s {
	case "expand":
		*d = Expand
	case "contract":
		*d = Contract
	case "no_action":
		*d = NoAction
	default:
		return fmt.Errorf("unknown direction %q", s)
	}
	return nil
}

// ErrorKind classifies a period's failure mode. The empty kind means no
// error. Fatal-for-period kinds skip the period with no state mutation;
// partial kinds record an explicitly incomplete outcome.
type ErrorKind string

const (
	ErrNone               ErrorKind = ""
	ErrInvalidPrice       ErrorKind = "invalid_price"
	ErrStalePrice         ErrorKind = "stale_price"
	ErrArithmeticOverflow ErrorKind = "arithmetic_overflow"
	ErrLedger             ErrorKind = "ledger_error"
	ErrMarket             ErrorKind = "market_error"
	ErrPendingRelease     ErrorKind = "pending_release"
)

// Fatal reports whether the kind skips the whole period.
func (k ErrorKind) Fatal() bool {
	switch k {
	case ErrInvalidPrice, ErrStalePrice, ErrArithmeticOverflow, ErrLedger:
		return true
	default:
		return false
	}
}

// ClampReport records whether the safety guard altered the calculator's raw
// output, for after-the-fact audit of every supply change.
type ClampReport struct {
	// Raw is the unclamped magnitude, kept in decimal form because
	// supply x deviation_excess can exceed the unit type.
	Raw decimal.Decimal `json:"raw"`

	CapClamped   bool `json:"cap_clamped"`
	FloorClamped bool `json:"floor_clamped"`
}

// Clamped reports whether any clamp altered the raw magnitude.
func (c ClampReport) Clamped() bool { return c.CapClamped || c.FloorClamped }

// ElasticityDecision is the computed outcome of one period for one
// currency. It is created fresh each period and consumed once; it is never
// persisted beyond the period.
type ElasticityDecision struct {
	CurrencyID CurrencyID  `json:"currency_id"`
	Direction  Direction   `json:"direction"`
	Magnitude  uint64      `json:"magnitude"`
	Period     uint64      `json:"period"`
	Reason     ErrorKind   `json:"reason,omitempty"`
	Clamps     ClampReport `json:"clamps"`
}

// ExecutionResult is the executor's report for one decision. The unit
// counters make partial outcomes auditable: the system never pretends full
// success occurred.
type ExecutionResult struct {
	Decision ElasticityDecision `json:"decision"`
	Applied  bool               `json:"applied"`
	Err      ErrorKind          `json:"error,omitempty"`
	Detail   string             `json:"detail,omitempty"`

	Minted   uint64 `json:"minted,omitempty"`
	Released uint64 `json:"released,omitempty"`
	Acquired uint64 `json:"acquired,omitempty"`
	Burned   uint64 `json:"burned,omitempty"`

	// Pending is the unreleased minted amount carried to the next
	// evaluation of this currency.
	Pending uint64 `json:"pending,omitempty"`
}

// PeriodRecord is the structured observability record emitted once per
// evaluated (currency, period). Consumed by external telemetry; never
// interpreted by the core itself.
type PeriodRecord struct {
	CurrencyID CurrencyID      `json:"currency_id"`
	Period     uint64          `json:"period"`
	Height     uint64          `json:"height"`
	State      string          `json:"state"`
	Result     ExecutionResult `json:"result"`
}

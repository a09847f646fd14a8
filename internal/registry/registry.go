// Package registry owns the per-currency peg configuration. It is provided
// once at setup and borrowed read-only by the calculator and executor; the
// privileged governance path that would mutate it lives outside this core.
package registry

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"

	"github.com/settmint/serp-tes/internal/types"
)

// EngineConfig are the engine-level knobs shared by all currencies.
type EngineConfig struct {
	// StalenessLimit is the maximum quote age in blocks before a price
	// is rejected as stale.
	StalenessLimit uint64 `toml:"staleness_limit"`

	// History is the capacity of the execution-record journal.
	History int `toml:"history"`
}

// CurrencyConfig is the on-disk form of a currency entry. Prices are
// decimal strings to avoid float rounding in config.
type CurrencyConfig struct {
	ID            string `toml:"id"`
	Peg           string `toml:"peg"`
	Tolerance     string `toml:"tolerance"`
	MaxChangeCap  uint64 `toml:"max_change_cap"`
	MinimumFloor  uint64 `toml:"minimum_floor"`
	Frequency     uint64 `toml:"frequency"`
	GenesisSupply uint64 `toml:"genesis_supply"`
}

type fileConfig struct {
	Engine     EngineConfig     `toml:"engine"`
	Currencies []CurrencyConfig `toml:"currency"`
}

// Registry maps currency id to its peg configuration with a deterministic
// ascending-id iteration order.
type Registry struct {
	engine EngineConfig
	byID   map[types.CurrencyID]types.Currency
	order  []types.CurrencyID
}

// Load reads and validates a registry TOML file.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("registry load failed (%s): %w", path, err)
	}
	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("registry parse failed (%s): %w", path, err)
	}
	currencies := make([]types.Currency, 0, len(fc.Currencies))
	for i, cc := range fc.Currencies {
		cur, err := cc.toCurrency()
		if err != nil {
			return nil, fmt.Errorf("currency[%d]: %w", i, err)
		}
		currencies = append(currencies, cur)
	}
	return New(fc.Engine, currencies)
}

func (cc CurrencyConfig) toCurrency() (types.Currency, error) {
	if cc.ID == "" {
		return types.Currency{}, errors.New("missing id")
	}
	peg, err := decimal.NewFromString(cc.Peg)
	if err != nil {
		return types.Currency{}, fmt.Errorf("peg %q: %w", cc.Peg, err)
	}
	tol := decimal.Zero
	if cc.Tolerance != "" {
		tol, err = decimal.NewFromString(cc.Tolerance)
		if err != nil {
			return types.Currency{}, fmt.Errorf("tolerance %q: %w", cc.Tolerance, err)
		}
	}
	freq := cc.Frequency
	if freq == 0 {
		freq = 1
	}
	return types.Currency{
		ID:            types.CurrencyID(cc.ID),
		Peg:           peg,
		Tolerance:     tol,
		MaxChangeCap:  cc.MaxChangeCap,
		MinimumFloor:  cc.MinimumFloor,
		Frequency:     freq,
		GenesisSupply: cc.GenesisSupply,
	}, nil
}

// New builds a registry from already-parsed currencies, validating the
// configuration invariants.
func New(engine EngineConfig, currencies []types.Currency) (*Registry, error) {
	if engine.StalenessLimit == 0 {
		engine.StalenessLimit = 10
	}
	if engine.History <= 0 {
		engine.History = 256
	}
	r := &Registry{
		engine: engine,
		byID:   make(map[types.CurrencyID]types.Currency, len(currencies)),
	}
	for _, cur := range currencies {
		if err := validate(cur); err != nil {
			return nil, fmt.Errorf("currency %q: %w", cur.ID, err)
		}
		if _, dup := r.byID[cur.ID]; dup {
			return nil, fmt.Errorf("duplicate currency %q", cur.ID)
		}
		r.byID[cur.ID] = cur
		r.order = append(r.order, cur.ID)
	}
	sort.Slice(r.order, func(i, j int) bool { return r.order[i] < r.order[j] })
	return r, nil
}

func validate(cur types.Currency) error {
	if cur.ID == "" {
		return errors.New("missing id")
	}
	if cur.Peg.Sign() <= 0 {
		return errors.New("peg must be > 0")
	}
	if cur.Tolerance.Sign() < 0 {
		return errors.New("tolerance must be >= 0")
	}
	if cur.Frequency == 0 {
		return errors.New("frequency must be >= 1")
	}
	if cur.GenesisSupply != 0 && cur.GenesisSupply < cur.MinimumFloor {
		return errors.New("genesis supply below minimum floor")
	}
	return nil
}

// Engine returns the engine-level configuration.
func (r *Registry) Engine() EngineConfig { return r.engine }

// Get returns the configuration for a currency.
func (r *Registry) Get(id types.CurrencyID) (types.Currency, bool) {
	cur, ok := r.byID[id]
	return cur, ok
}

// Currencies returns all currencies in ascending id order.
func (r *Registry) Currencies() []types.Currency {
	out := make([]types.Currency, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// Len returns the number of registered currencies.
func (r *Registry) Len() int { return len(r.order) }

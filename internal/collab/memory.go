package collab

import (
	"fmt"
	"sync"

	"github.com/settmint/serp-tes/internal/guard"
	"github.com/settmint/serp-tes/internal/types"
)

// In-memory collaborators backing the simulator and the test suites.

// MemoryLedger holds per-currency supply figures guarded by a mutex.
type MemoryLedger struct {
	mu       sync.Mutex
	supplies map[types.CurrencyID]uint64
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{supplies: make(map[types.CurrencyID]uint64)}
}

// SetSupply seeds the supply for a currency (genesis figure).
func (l *MemoryLedger) SetSupply(id types.CurrencyID, supply uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.supplies[id] = supply
}

func (l *MemoryLedger) CurrentSupply(id types.CurrencyID) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.supplies[id]
	if !ok {
		return 0, fmt.Errorf("unknown currency %q", id)
	}
	return s, nil
}

func (l *MemoryLedger) Mint(id types.CurrencyID, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.supplies[id]
	if !ok {
		return fmt.Errorf("unknown currency %q", id)
	}
	next, err := guard.CheckedAdd(s, amount)
	if err != nil {
		return fmt.Errorf("mint %d on supply %d: %w", amount, s, err)
	}
	l.supplies[id] = next
	return nil
}

func (l *MemoryLedger) Burn(id types.CurrencyID, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.supplies[id]
	if !ok {
		return fmt.Errorf("unknown currency %q", id)
	}
	if amount > s {
		return fmt.Errorf("burn %d exceeds supply %d", amount, s)
	}
	l.supplies[id] = s - amount
	return nil
}

// MemoryOracle serves fixed quotes set by the test or simulator.
type MemoryOracle struct {
	mu     sync.Mutex
	quotes map[types.CurrencyID]types.PriceQuote
}

func NewMemoryOracle() *MemoryOracle {
	return &MemoryOracle{quotes: make(map[types.CurrencyID]types.PriceQuote)}
}

func (o *MemoryOracle) SetQuote(q types.PriceQuote) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.quotes[q.CurrencyID] = q
}

func (o *MemoryOracle) Drop(id types.CurrencyID) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.quotes, id)
}

func (o *MemoryOracle) LatestPrice(id types.CurrencyID) (types.PriceQuote, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	q, ok := o.quotes[id]
	if !ok {
		return types.PriceQuote{}, ErrUnavailable
	}
	return q, nil
}

// MemoryMarket simulates settlement with bounded liquidity. Liquidity caps
// what AcquireFromMarket can source per call; FailRelease forces release
// failures to exercise the pending-release path.
type MemoryMarket struct {
	mu          sync.Mutex
	liquidity   map[types.CurrencyID]uint64
	FailRelease bool

	released map[types.CurrencyID]uint64
	acquired map[types.CurrencyID]uint64
}

func NewMemoryMarket() *MemoryMarket {
	return &MemoryMarket{
		liquidity: make(map[types.CurrencyID]uint64),
		released:  make(map[types.CurrencyID]uint64),
		acquired:  make(map[types.CurrencyID]uint64),
	}
}

// SetLiquidity bounds how much of a currency one acquisition can source.
// Unset currencies have unbounded liquidity.
func (m *MemoryMarket) SetLiquidity(id types.CurrencyID, amount uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.liquidity[id] = amount
}

func (m *MemoryMarket) ReleaseToMarket(id types.CurrencyID, amount uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailRelease {
		return fmt.Errorf("market release %q: settlement unavailable", id)
	}
	m.released[id] += amount
	return nil
}

func (m *MemoryMarket) AcquireFromMarket(id types.CurrencyID, amount uint64) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	got := amount
	if lim, ok := m.liquidity[id]; ok && lim < got {
		got = lim
	}
	m.acquired[id] += got
	return got, nil
}

// Released returns the total released so far, for assertions.
func (m *MemoryMarket) Released(id types.CurrencyID) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.released[id]
}

// Acquired returns the total acquired so far, for assertions.
func (m *MemoryMarket) Acquired(id types.CurrencyID) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.acquired[id]
}

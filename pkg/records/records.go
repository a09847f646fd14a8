// Package records keeps a bounded in-memory journal of period records for
// the observability API. The engine appends; HTTP readers get a stable
// ETag per revision for If-None-Match handling.
package records

import (
	"crypto/sha1"
	"encoding/hex"
	"strconv"
	"sync"

	"github.com/settmint/serp-tes/internal/types"
)

type Journal struct {
	mu       sync.RWMutex
	capacity int
	recs     []types.PeriodRecord
	rev      uint64
}

func NewJournal(capacity int) *Journal {
	if capacity <= 0 {
		capacity = 256
	}
	return &Journal{capacity: capacity}
}

// Append adds a record, evicting the oldest past capacity.
func (j *Journal) Append(rec types.PeriodRecord) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.recs = append(j.recs, rec)
	if len(j.recs) > j.capacity {
		j.recs = j.recs[len(j.recs)-j.capacity:]
	}
	j.rev++
}

// Records returns the newest records first, optionally filtered by
// currency, at most limit entries (0 means all retained).
func (j *Journal) Records(id types.CurrencyID, limit int) []types.PeriodRecord {
	j.mu.RLock()
	defer j.mu.RUnlock()
	out := make([]types.PeriodRecord, 0, len(j.recs))
	for i := len(j.recs) - 1; i >= 0; i-- {
		if id != "" && j.recs[i].CurrencyID != id {
			continue
		}
		out = append(out, j.recs[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// Len returns the number of retained records.
func (j *Journal) Len() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return len(j.recs)
}

// ETag identifies the journal revision.
func (j *Journal) ETag() string {
	j.mu.RLock()
	defer j.mu.RUnlock()
	h := sha1.New()
	h.Write([]byte(strconv.FormatUint(j.rev, 10)))
	if n := len(j.recs); n > 0 {
		last := j.recs[n-1]
		h.Write([]byte{0})
		h.Write([]byte(last.CurrencyID))
		h.Write([]byte{0})
		h.Write([]byte(strconv.FormatUint(last.Period, 10)))
	}
	return hex.EncodeToString(h.Sum(nil))
}

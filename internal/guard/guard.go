// Package guard wraps every arithmetic step of the elastic-supply core in
// explicit bounds checks. Overflow is always an error, never a silent
// saturation, and every clamp that alters a computed magnitude is reported.
package guard

import (
	"errors"
	"math"
	"math/bits"

	"github.com/shopspring/decimal"

	"github.com/settmint/serp-tes/internal/types"
)

var (
	ErrOverflow  = errors.New("arithmetic overflow")
	ErrUnderflow = errors.New("arithmetic underflow")
)

// CheckedAdd returns a+b or ErrOverflow.
func CheckedAdd(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, ErrOverflow
	}
	return sum, nil
}

// CheckedSub returns a-b or ErrUnderflow.
func CheckedSub(a, b uint64) (uint64, error) {
	diff, borrow := bits.Sub64(a, b, 0)
	if borrow != 0 {
		return 0, ErrUnderflow
	}
	return diff, nil
}

// CheckedMul returns a*b or ErrOverflow.
func CheckedMul(a, b uint64) (uint64, error) {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return 0, ErrOverflow
	}
	return lo, nil
}

var maxUint64 = decimal.NewFromUint64(math.MaxUint64)

// UnitsFromDecimal converts a non-negative decimal amount to whole supply
// units, truncating toward zero. Values beyond the unit type are an
// overflow, negatives an underflow.
func UnitsFromDecimal(d decimal.Decimal) (uint64, error) {
	t := d.Truncate(0)
	if t.Sign() < 0 {
		return 0, ErrUnderflow
	}
	if t.Cmp(maxUint64) > 0 {
		return 0, ErrOverflow
	}
	return t.BigInt().Uint64(), nil
}

// ClampMagnitude bounds a raw adjustment magnitude to the currency's
// per-period cap and, for contractions, to the minimum supply floor. The
// returned report says whether either clamp altered the raw value.
//
// Floor enforcement keeps the largest magnitude with supply-m >= floor; if
// supply already sits at or below the floor the magnitude collapses to zero.
func ClampMagnitude(dir types.Direction, raw decimal.Decimal, cur types.Currency, supply uint64) (uint64, types.ClampReport) {
	report := types.ClampReport{Raw: raw}

	capDec := decimal.NewFromUint64(cur.MaxChangeCap)
	var m uint64
	if raw.Cmp(capDec) > 0 {
		report.CapClamped = true
		m = cur.MaxChangeCap
	} else {
		// raw <= cap, so the conversion cannot overflow
		m, _ = UnitsFromDecimal(raw)
	}

	if dir == types.Contract {
		room := uint64(0)
		if supply > cur.MinimumFloor {
			room = supply - cur.MinimumFloor
		}
		if m > room {
			report.FloorClamped = true
			m = room
		}
	}
	return m, report
}

// MaxUnits is the largest representable supply amount.
const MaxUnits = math.MaxUint64

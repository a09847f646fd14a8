package guard

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/settmint/serp-tes/internal/types"
)

func TestCheckedAdd(t *testing.T) {
	sum, err := CheckedAdd(2, 3)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), sum)

	_, err = CheckedAdd(math.MaxUint64, 1)
	assert.ErrorIs(t, err, ErrOverflow)

	sum, err = CheckedAdd(math.MaxUint64, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64), sum)
}

func TestCheckedSub(t *testing.T) {
	diff, err := CheckedSub(5, 3)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), diff)

	_, err = CheckedSub(3, 5)
	assert.ErrorIs(t, err, ErrUnderflow)
}

func TestCheckedMul(t *testing.T) {
	prod, err := CheckedMul(1<<32, 1<<31)
	require.NoError(t, err)
	assert.Equal(t, uint64(1)<<63, prod)

	_, err = CheckedMul(1<<32, 1<<32)
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestUnitsFromDecimal(t *testing.T) {
	u, err := UnitsFromDecimal(decimal.RequireFromString("123.999"))
	require.NoError(t, err)
	assert.Equal(t, uint64(123), u, "truncates toward zero")

	_, err = UnitsFromDecimal(decimal.RequireFromString("-1"))
	assert.ErrorIs(t, err, ErrUnderflow)

	_, err = UnitsFromDecimal(decimal.RequireFromString("18446744073709551616"))
	assert.ErrorIs(t, err, ErrOverflow)

	u, err = UnitsFromDecimal(decimal.RequireFromString("18446744073709551615"))
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64), u)
}

func TestClampMagnitudeCap(t *testing.T) {
	cur := types.Currency{ID: "SETT", MaxChangeCap: 50_000}
	m, rep := ClampMagnitude(types.Expand, decimal.NewFromInt(80_000), cur, 1_000_000)
	assert.Equal(t, uint64(50_000), m)
	assert.True(t, rep.CapClamped)
	assert.False(t, rep.FloorClamped)
}

func TestClampMagnitudeFloor(t *testing.T) {
	cur := types.Currency{ID: "SETT", MaxChangeCap: 50_000, MinimumFloor: 80_000}
	m, rep := ClampMagnitude(types.Contract, decimal.NewFromInt(48_000), cur, 100_000)
	assert.Equal(t, uint64(20_000), m)
	assert.False(t, rep.CapClamped)
	assert.True(t, rep.FloorClamped)
}

func TestClampMagnitudeFloorNoRoom(t *testing.T) {
	cur := types.Currency{ID: "SETT", MaxChangeCap: 50_000, MinimumFloor: 80_000}
	m, rep := ClampMagnitude(types.Contract, decimal.NewFromInt(10), cur, 80_000)
	assert.Equal(t, uint64(0), m)
	assert.True(t, rep.FloorClamped)
}

func TestClampMagnitudeUnclamped(t *testing.T) {
	cur := types.Currency{ID: "SETT", MaxChangeCap: 50_000}
	m, rep := ClampMagnitude(types.Expand, decimal.NewFromInt(30_000), cur, 1_000_000)
	assert.Equal(t, uint64(30_000), m)
	assert.False(t, rep.Clamped())
}

func TestClampMagnitudeRawBeyondUnitType(t *testing.T) {
	// raw values past uint64 are handled by the cap clamp, not an error
	cur := types.Currency{ID: "SETT", MaxChangeCap: 50_000}
	raw := decimal.RequireFromString("36893488147419103230")
	m, rep := ClampMagnitude(types.Expand, raw, cur, math.MaxUint64)
	assert.Equal(t, uint64(50_000), m)
	assert.True(t, rep.CapClamped)
}

package tick

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitScale(t *testing.T) {
	p, err := Unit().Parse("8723")
	require.NoError(t, err)
	assert.Equal(t, uint64(8723), p)
	assert.Equal(t, "8723", Unit().FromTicks(p).String())
}

func TestFractionalTick(t *testing.T) {
	s, err := ParseScale("0.01")
	require.NoError(t, err)

	p, err := s.Parse("87.23")
	require.NoError(t, err)
	assert.Equal(t, uint64(8723), p)
	assert.True(t, s.FromTicks(p).Equal(decimal.RequireFromString("87.23")))

	_, err = s.Parse("87.235")
	assert.ErrorIs(t, err, ErrOffTick)
}

func TestRejectsBadInput(t *testing.T) {
	_, err := Unit().Parse("-1")
	assert.ErrorIs(t, err, ErrNegativePrice)

	_, err = Unit().Parse("abc")
	assert.Error(t, err)

	_, err = Unit().Parse("1e30")
	assert.ErrorIs(t, err, ErrPriceOverflow)

	_, err = ParseScale("0")
	assert.ErrorIs(t, err, ErrInvalidTickSize)
}

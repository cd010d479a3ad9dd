package tick

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/joripage/pricebook/pkg/orderbook"
)

var (
	ErrInvalidTickSize = errors.New("tick size must be positive")
	ErrNegativePrice   = errors.New("price must not be negative")
	ErrOffTick         = errors.New("price is not a multiple of the tick size")
	ErrPriceOverflow   = errors.New("price does not fit in a tick")
)

// Scale converts decimal prices to integer ticks and back.
type Scale struct {
	size decimal.Decimal
}

func NewScale(size decimal.Decimal) (Scale, error) {
	if !size.IsPositive() {
		return Scale{}, fmt.Errorf("%w: %s", ErrInvalidTickSize, size)
	}
	return Scale{size: size}, nil
}

func ParseScale(s string) (Scale, error) {
	size, err := decimal.NewFromString(s)
	if err != nil {
		return Scale{}, fmt.Errorf("parse tick size %q: %w", s, err)
	}
	return NewScale(size)
}

// Unit is the one-to-one scale used when prices are already ticks.
func Unit() Scale {
	return Scale{size: decimal.NewFromInt(1)}
}

func (s Scale) Size() decimal.Decimal {
	if s.size.IsZero() {
		return decimal.NewFromInt(1)
	}
	return s.size
}

func (s Scale) ToTicks(price decimal.Decimal) (orderbook.Price, error) {
	if price.IsNegative() {
		return 0, fmt.Errorf("%w: %s", ErrNegativePrice, price)
	}
	if !price.Mod(s.Size()).IsZero() {
		return 0, fmt.Errorf("%w: %s / %s", ErrOffTick, price, s.Size())
	}
	ticks := price.Div(s.Size()).Truncate(0)
	if !ticks.BigInt().IsUint64() {
		return 0, fmt.Errorf("%w: %s", ErrPriceOverflow, price)
	}
	return ticks.BigInt().Uint64(), nil
}

func (s Scale) Parse(price string) (orderbook.Price, error) {
	d, err := decimal.NewFromString(price)
	if err != nil {
		return 0, fmt.Errorf("parse price %q: %w", price, err)
	}
	return s.ToTicks(d)
}

func (s Scale) FromTicks(p orderbook.Price) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(p), 0).Mul(s.Size())
}

package orderbook

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBookIsEmpty(t *testing.T) {
	ob := New()
	assert.True(t, ob.IsEmpty())

	ob.AddAsk(100, 1)
	assert.False(t, ob.IsEmpty())
}

func TestAddAccumulates(t *testing.T) {
	ob := New()
	ob.AddBid(100, 10)
	ob.AddBid(100, 5)
	ob.AddAsk(100, 7)

	assert.Equal(t, []Level{{Price: 100, Size: 15}}, ob.Levels(Bid))
	assert.Equal(t, []Level{{Price: 100, Size: 7}}, ob.Levels(Ask))
}

func TestAddZeroIsNoop(t *testing.T) {
	ob := New()
	ob.AddBid(100, 0)
	assert.True(t, ob.IsEmpty())

	ob.AddBid(100, 3)
	ob.AddBid(100, 0)
	assert.Equal(t, []Level{{Price: 100, Size: 3}}, ob.Levels(Bid))
}

func TestRemoveKeepsEmptyLevel(t *testing.T) {
	ob := New()
	ob.AddAsk(50, 4)

	left, err := ob.Remove(Ask, 50, 4)
	require.NoError(t, err)
	assert.Equal(t, Size(0), left)
	assert.Equal(t, 1, ob.Len(Ask))

	require.NoError(t, ob.ClearKey(Ask, 50))
	assert.Equal(t, 0, ob.Len(Ask))
}

func TestRemoveMissingLevel(t *testing.T) {
	ob := New()
	_, err := ob.Remove(Bid, 10, 1)
	assert.ErrorIs(t, err, ErrPriceLevelNotFound)
}

func TestRemoveUnderflowLeavesBookUnchanged(t *testing.T) {
	ob := New()
	ob.AddBid(10, 2)

	_, err := ob.Remove(Bid, 10, 3)
	assert.ErrorIs(t, err, ErrInsufficientQuantity)
	assert.Equal(t, []Level{{Price: 10, Size: 2}}, ob.Levels(Bid))
}

func TestClearKeyRejectsVolume(t *testing.T) {
	ob := New()
	ob.AddBid(10, 2)

	assert.ErrorIs(t, ob.ClearKey(Bid, 10), ErrNonZeroKeyClear)
	assert.ErrorIs(t, ob.ClearKey(Ask, 10), ErrPriceLevelNotFound)
	assert.Equal(t, 1, ob.Len(Bid))
}

func TestAddThenRemoveRoundTrip(t *testing.T) {
	ob := New()
	ob.AddBid(99, 1)
	before := ob.Levels(Bid)

	ob.AddBid(100, 10)
	require.NoError(t, ob.RemoveBid(100, 10))

	assert.Equal(t, before, ob.Levels(Bid))
	_, ok := ob.QueryOrders(100)
	assert.False(t, ok)
}

func TestOverWithdrawalFails(t *testing.T) {
	ob := New()
	ob.AddBid(100, 10)

	err := ob.RemoveBid(100, 11)
	assert.ErrorIs(t, err, ErrInsufficientQuantity)

	size, ok := ob.QueryOrders(100)
	require.True(t, ok)
	assert.Equal(t, Size(10), size)
}

func TestWithdrawFromNothing(t *testing.T) {
	ob := New()
	assert.ErrorIs(t, ob.RemoveAsk(100, 1), ErrPriceLevelNotFound)
	assert.ErrorIs(t, ob.RemoveBid(100, 1), ErrPriceLevelNotFound)
}

func TestWithdrawFromOtherSideOnly(t *testing.T) {
	ob := New()
	ob.AddAsk(100, 5)

	// the query finds the ask, but there is no bid level to decrement
	err := ob.RemoveBid(100, 1)
	assert.ErrorIs(t, err, ErrPriceLevelNotFound)
	assert.Equal(t, []Level{{Price: 100, Size: 5}}, ob.Levels(Ask))
}

func TestQueryOrdersPrefersBids(t *testing.T) {
	ob := New()
	ob.AddAsk(100, 9)
	ob.AddBid(100, 2)

	size, ok := ob.QueryOrders(100)
	require.True(t, ok)
	assert.Equal(t, Size(2), size)

	_, ok = ob.QueryOrders(101)
	assert.False(t, ok)
}

func TestBestOnEmptySide(t *testing.T) {
	ob := New()
	ob.AddAsk(100, 1)

	_, err := ob.BestBid()
	assert.ErrorIs(t, err, ErrEmptySide)

	ob = New()
	ob.AddBid(100, 1)
	_, err = ob.BestAsk()
	assert.ErrorIs(t, err, ErrEmptySide)
}

func TestSpread(t *testing.T) {
	ob := New()
	_, ok := ob.Spread()
	assert.False(t, ok)

	ob.AddBid(98, 1)
	ob.AddAsk(101, 1)
	spread, ok := ob.Spread()
	require.True(t, ok)
	assert.Equal(t, uint64(3), spread)

	ob.AddBid(105, 1)
	_, ok = ob.Spread()
	assert.False(t, ok, "crossed book has no spread")
}

func TestTotalAsks(t *testing.T) {
	ob := New()
	ob.AddAsk(105, 2)
	ob.AddAsk(100, 5)
	ob.AddAsk(101, 3)

	assert.Equal(t, Depth{{100, 5}, {101, 8}, {105, 10}}, ob.TotalAsks())
}

func TestTotalBids(t *testing.T) {
	ob := New()
	ob.AddBid(90, 4)
	ob.AddBid(99, 1)
	ob.AddBid(95, 6)

	depth := ob.TotalBids()
	assert.Equal(t, Depth{{90, 11}, {95, 7}, {99, 1}}, depth)

	total, ok := depth.Get(95)
	require.True(t, ok)
	assert.Equal(t, Total(7), total)
	_, ok = depth.Get(96)
	assert.False(t, ok)
}

func TestTotalsOnEmptyBook(t *testing.T) {
	ob := New()
	assert.Equal(t, 0, ob.TotalAsks().Len())
	assert.Equal(t, 0, ob.TotalBids().Len())
}

func TestWorkedExample(t *testing.T) {
	ob := New()
	ob.AddAsk(8723, 100)
	ob.AddAsk(8881, 125)
	ob.AddAsk(9900, 100)
	ob.AddBid(8720, 174)
	ob.AddBid(8600, 100)
	ob.AddBid(8499, 100)

	ask, err := ob.BestAsk()
	require.NoError(t, err)
	assert.Equal(t, Level{Price: 8723, Size: 100}, ask)

	bid, err := ob.BestBid()
	require.NoError(t, err)
	assert.Equal(t, Level{Price: 8720, Size: 174}, bid)

	_, ok := ob.QueryOrders(8721)
	assert.False(t, ok)

	require.NoError(t, ob.RemoveAsk(8723, 100))
	require.NoError(t, ob.RemoveBid(8720, 173))

	_, ok = ob.QueryOrders(8723)
	assert.False(t, ok)
	size, ok := ob.QueryOrders(8720)
	require.True(t, ok)
	assert.Equal(t, Size(1), size)

	ask, err = ob.BestAsk()
	require.NoError(t, err)
	assert.Equal(t, Price(8881), ask.Price)
}

func TestRandomSequenceKeepsInvariants(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	ob := New()
	ref := map[Side]map[Price]Size{Bid: {}, Ask: {}}

	for i := 0; i < 5000; i++ {
		side := Side(r.Intn(2))
		price := Price(100 + r.Intn(20))
		amount := Size(r.Intn(10))

		if r.Intn(3) == 0 {
			ob.Add(side, price, amount)
			if amount > 0 {
				ref[side][price] += amount
			}
		} else {
			var err error
			if side == Bid {
				err = ob.RemoveBid(price, amount)
			} else {
				err = ob.RemoveAsk(price, amount)
			}
			if err == nil {
				ref[side][price] -= amount
				if ref[side][price] == 0 {
					delete(ref[side], price)
				}
			}
		}

		for _, s := range []Side{Bid, Ask} {
			levels := ob.Levels(s)
			if len(levels) != len(ref[s]) {
				t.Fatalf("step %d: %s has %d levels, want %d", i, s, len(levels), len(ref[s]))
			}
			for j, lvl := range levels {
				if lvl.Size == 0 {
					t.Fatalf("step %d: empty %s level at %d", i, s, lvl.Price)
				}
				if lvl.Size != ref[s][lvl.Price] {
					t.Fatalf("step %d: %s %d = %d, want %d", i, s, lvl.Price, lvl.Size, ref[s][lvl.Price])
				}
				if j > 0 && levels[j-1].Price >= lvl.Price {
					t.Fatalf("step %d: %s levels out of order", i, s)
				}
			}
		}

		if n := len(ref[Bid]); n > 0 {
			best, err := ob.BestBid()
			require.NoError(t, err)
			assert.Equal(t, ob.Levels(Bid)[n-1], best)
		}
		if len(ref[Ask]) > 0 {
			best, err := ob.BestAsk()
			require.NoError(t, err)
			assert.Equal(t, ob.Levels(Ask)[0], best)
		}
	}
}

func TestParseSide(t *testing.T) {
	s, err := ParseSide("Buy")
	require.NoError(t, err)
	assert.Equal(t, Bid, s)

	s, err = ParseSide(" ask ")
	require.NoError(t, err)
	assert.Equal(t, Ask, s)

	_, err = ParseSide("mid")
	assert.ErrorIs(t, err, ErrInvalidSide)
	assert.Equal(t, "BID", Bid.String())
}

func TestRemoveAskCheckedAgainstBidSize(t *testing.T) {
	ob := New()
	require.NoError(t, ob.AddBid(100, 2))
	require.NoError(t, ob.AddAsk(100, 9))

	// the query answers with the bid size, so 5 exceeds it
	err := ob.RemoveAsk(100, 5)
	assert.ErrorIs(t, err, ErrInsufficientQuantity)
	assert.Equal(t, []Level{{Price: 100, Size: 9}}, ob.Levels(Ask))
	assert.Equal(t, []Level{{Price: 100, Size: 2}}, ob.Levels(Bid))
}

func TestRemoveAskDoesNotUnderflowBehindBid(t *testing.T) {
	ob := New()
	require.NoError(t, ob.AddBid(100, 9))
	require.NoError(t, ob.AddAsk(100, 2))

	// passes the check against the bid, then the ask refuses to underflow
	err := ob.RemoveAsk(100, 5)
	assert.ErrorIs(t, err, ErrInsufficientQuantity)
	assert.Equal(t, []Level{{Price: 100, Size: 2}}, ob.Levels(Ask))
	assert.Equal(t, []Level{{Price: 100, Size: 9}}, ob.Levels(Bid))
}

func TestRemoveZeroKeepsLevel(t *testing.T) {
	ob := New()
	require.NoError(t, ob.AddBid(100, 3))

	require.NoError(t, ob.RemoveBid(100, 0))
	assert.Equal(t, []Level{{Price: 100, Size: 3}}, ob.Levels(Bid))
}

func TestUnknownSideRejected(t *testing.T) {
	ob := New()
	bogus := Side(7)

	assert.ErrorIs(t, ob.Add(bogus, 5, 1), ErrInvalidSide)
	assert.True(t, ob.IsEmpty())

	_, err := ob.Remove(bogus, 5, 1)
	assert.ErrorIs(t, err, ErrInvalidSide)
	assert.ErrorIs(t, ob.ClearKey(bogus, 5), ErrInvalidSide)
	assert.Nil(t, ob.Levels(bogus))
	assert.Equal(t, 0, ob.Len(bogus))
	assert.Equal(t, "Side(7)", bogus.String())
}

func TestAddOverflowRejected(t *testing.T) {
	ob := New()
	require.NoError(t, ob.AddAsk(100, math.MaxUint64-1))

	assert.ErrorIs(t, ob.AddAsk(100, 2), ErrSizeOverflow)
	assert.Equal(t, []Level{{Price: 100, Size: math.MaxUint64 - 1}}, ob.Levels(Ask))

	require.NoError(t, ob.AddAsk(100, 1))
	size, ok := ob.QueryOrders(100)
	require.True(t, ok)
	assert.Equal(t, Size(math.MaxUint64), size)
}

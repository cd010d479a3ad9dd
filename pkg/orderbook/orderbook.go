package orderbook

import (
	"fmt"
	"math"

	"github.com/google/btree"
)

const btreeDegree = 32

// OrderBook tracks aggregate resting size per price tick on two independent
// sides. It is not safe for concurrent use.
type OrderBook struct {
	bids *btree.BTreeG[Level]
	asks *btree.BTreeG[Level]
}

func lessByPrice(a, b Level) bool {
	return a.Price < b.Price
}

func New() *OrderBook {
	return &OrderBook{
		bids: btree.NewG[Level](btreeDegree, lessByPrice),
		asks: btree.NewG[Level](btreeDegree, lessByPrice),
	}
}

func (ob *OrderBook) side(side Side) (*btree.BTreeG[Level], error) {
	switch side {
	case Bid:
		return ob.bids, nil
	case Ask:
		return ob.asks, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrInvalidSide, side)
}

func (ob *OrderBook) IsEmpty() bool {
	return ob.bids.Len() == 0 && ob.asks.Len() == 0
}

// Add adds amount at price on side. A zero amount is a no-op. It fails only
// for an unknown side or when the level would overflow Size.
func (ob *OrderBook) Add(side Side, price Price, amount Size) error {
	book, err := ob.side(side)
	if err != nil {
		return err
	}
	if amount == 0 {
		return nil
	}

	lvl, _ := book.Get(Level{Price: price})
	if lvl.Size > math.MaxUint64-amount {
		return fmt.Errorf("%w: add %d to %s %d holding %d",
			ErrSizeOverflow, amount, side, price, lvl.Size)
	}
	lvl.Price = price
	lvl.Size += amount
	book.ReplaceOrInsert(lvl)
	return nil
}

func (ob *OrderBook) AddBid(price Price, amount Size) error {
	return ob.Add(Bid, price, amount)
}

func (ob *OrderBook) AddAsk(price Price, amount Size) error {
	return ob.Add(Ask, price, amount)
}

// Remove subtracts amount from the level at price and returns what is left.
// The level stays in the book even when it reaches zero; see ClearKey.
func (ob *OrderBook) Remove(side Side, price Price, amount Size) (Size, error) {
	book, err := ob.side(side)
	if err != nil {
		return 0, err
	}
	lvl, ok := book.Get(Level{Price: price})
	if !ok {
		return 0, fmt.Errorf("%w: no %s at %d", ErrPriceLevelNotFound, side, price)
	}
	if amount > lvl.Size {
		return lvl.Size, fmt.Errorf("%w: remove %d from %s %d holding %d",
			ErrInsufficientQuantity, amount, side, price, lvl.Size)
	}

	lvl.Size -= amount
	book.ReplaceOrInsert(lvl)
	return lvl.Size, nil
}

// ClearKey drops the level at price. The level must exist and be empty.
func (ob *OrderBook) ClearKey(side Side, price Price) error {
	book, err := ob.side(side)
	if err != nil {
		return err
	}
	lvl, ok := book.Get(Level{Price: price})
	if !ok {
		return fmt.Errorf("%w: no %s at %d", ErrPriceLevelNotFound, side, price)
	}
	if lvl.Size != 0 {
		return fmt.Errorf("%w: %s %d holds %d", ErrNonZeroKeyClear, side, price, lvl.Size)
	}

	book.Delete(lvl)
	return nil
}

func (ob *OrderBook) RemoveBid(price Price, amount Size) error {
	return ob.withdraw(Bid, price, amount)
}

func (ob *OrderBook) RemoveAsk(price Price, amount Size) error {
	return ob.withdraw(Ask, price, amount)
}

// withdraw validates against QueryOrders, decrements, and evicts the level
// once it is empty so that every present level holds volume.
func (ob *OrderBook) withdraw(side Side, price Price, amount Size) error {
	resting, ok := ob.QueryOrders(price)
	if !ok {
		return fmt.Errorf("%w: nothing resting at %d", ErrPriceLevelNotFound, price)
	}
	if amount > resting {
		return fmt.Errorf("%w: remove %d from %s %d holding %d",
			ErrInsufficientQuantity, amount, side, price, resting)
	}

	remainder, err := ob.Remove(side, price, amount)
	if err != nil {
		return err
	}
	if remainder == 0 {
		return ob.ClearKey(side, price)
	}
	return nil
}

// QueryOrders returns the resting size at price, looking at bids first and
// falling back to asks.
// TODO: return both sides' sizes once callers can handle a crossed book.
func (ob *OrderBook) QueryOrders(price Price) (Size, bool) {
	if lvl, ok := ob.bids.Get(Level{Price: price}); ok {
		return lvl.Size, true
	}
	if lvl, ok := ob.asks.Get(Level{Price: price}); ok {
		return lvl.Size, true
	}
	return 0, false
}

func (ob *OrderBook) BestBid() (Level, error) {
	lvl, ok := ob.bids.Max()
	if !ok {
		return Level{}, fmt.Errorf("%w: no bids", ErrEmptySide)
	}
	return lvl, nil
}

func (ob *OrderBook) BestAsk() (Level, error) {
	lvl, ok := ob.asks.Min()
	if !ok {
		return Level{}, fmt.Errorf("%w: no asks", ErrEmptySide)
	}
	return lvl, nil
}

// Spread is best ask minus best bid. It reports false when a side is empty
// or the book is crossed.
func (ob *OrderBook) Spread() (uint64, bool) {
	bid, ok := ob.bids.Max()
	if !ok {
		return 0, false
	}
	ask, ok := ob.asks.Min()
	if !ok || ask.Price < bid.Price {
		return 0, false
	}
	return ask.Price - bid.Price, true
}

// Levels returns every level on side in ascending price order. An unknown
// side has no levels.
func (ob *OrderBook) Levels(side Side) []Level {
	book, err := ob.side(side)
	if err != nil {
		return nil
	}
	levels := make([]Level, 0, book.Len())
	book.Ascend(func(lvl Level) bool {
		levels = append(levels, lvl)
		return true
	})
	return levels
}

func (ob *OrderBook) Len(side Side) int {
	book, err := ob.side(side)
	if err != nil {
		return 0
	}
	return book.Len()
}

package orderbook

import "sort"

// Depth is a cumulative size ladder sorted by ascending price.
type Depth []DepthLevel

func (d Depth) Len() int {
	return len(d)
}

func (d Depth) Get(price Price) (Total, bool) {
	i := sort.Search(len(d), func(i int) bool { return d[i].Price >= price })
	if i < len(d) && d[i].Price == price {
		return d[i].Total, true
	}
	return 0, false
}

// TotalAsks accumulates from the lowest ask upward, so the entry at P holds
// every ask at or below P.
func (ob *OrderBook) TotalAsks() Depth {
	depth := make(Depth, 0, ob.asks.Len())
	var total Total
	ob.asks.Ascend(func(lvl Level) bool {
		total += lvl.Size
		depth = append(depth, DepthLevel{Price: lvl.Price, Total: total})
		return true
	})
	return depth
}

// TotalBids accumulates from the highest bid downward, so the entry at P holds
// every bid at or above P. The result is still ordered by ascending price.
func (ob *OrderBook) TotalBids() Depth {
	n := ob.bids.Len()
	depth := make(Depth, n)
	var total Total
	i := n - 1
	ob.bids.Descend(func(lvl Level) bool {
		total += lvl.Size
		depth[i] = DepthLevel{Price: lvl.Price, Total: total}
		i--
		return true
	})
	return depth
}

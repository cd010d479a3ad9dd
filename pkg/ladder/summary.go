package ladder

import (
	"encoding/json"

	"github.com/joripage/pricebook/pkg/orderbook"
)

type Quoter interface {
	BestBid() (orderbook.Level, error)
	BestAsk() (orderbook.Level, error)
	Spread() (uint64, bool)
	Len(side orderbook.Side) int
}

// Quote is a level with its price already formatted.
type Quote struct {
	Price json.Number    `json:"price"`
	Size  orderbook.Size `json:"size"`
}

// Summary is the top of book. Missing sides are left nil.
type Summary struct {
	BestBid   *Quote       `json:"best_bid"`
	BestAsk   *Quote       `json:"best_ask"`
	Spread    *json.Number `json:"spread"`
	BidLevels int          `json:"bid_levels"`
	AskLevels int          `json:"ask_levels"`
}

func Summarize(q Quoter) Summary {
	return SummarizeFunc(q, FormatTicks)
}

// SummarizeFunc is Summarize with prices and spread printed by format. format
// must return a JSON number.
func SummarizeFunc(q Quoter, format PriceFormat) Summary {
	if format == nil {
		format = FormatTicks
	}
	s := Summary{
		BidLevels: q.Len(orderbook.Bid),
		AskLevels: q.Len(orderbook.Ask),
	}
	if bid, err := q.BestBid(); err == nil {
		s.BestBid = &Quote{Price: json.Number(format(bid.Price)), Size: bid.Size}
	}
	if ask, err := q.BestAsk(); err == nil {
		s.BestAsk = &Quote{Price: json.Number(format(ask.Price)), Size: ask.Size}
	}
	if spread, ok := q.Spread(); ok {
		n := json.Number(format(spread))
		s.Spread = &n
	}
	return s
}

func (s Summary) String() string {
	b, err := json.Marshal(s)
	if err != nil {
		return "{}"
	}
	return string(b)
}

package orderbook

import (
	"fmt"
	"strings"
)

type Price = uint64
type Size = uint64
type Total = uint64

type Side int

const (
	Bid Side = iota
	Ask
)

func (s Side) String() string {
	switch s {
	case Bid:
		return "BID"
	case Ask:
		return "ASK"
	}
	return fmt.Sprintf("Side(%d)", int(s))
}

// ParseSide accepts bid/buy and ask/sell in any case.
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bid", "buy":
		return Bid, nil
	case "ask", "sell":
		return Ask, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidSide, s)
}

// Level is the aggregate resting size at one price on one side.
type Level struct {
	Price Price `json:"price"`
	Size  Size  `json:"size"`
}

type DepthLevel struct {
	Price Price `json:"price"`
	Total Total `json:"total"`
}

package scenario

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/joripage/pricebook/pkg/orderbook"
)

type Op string

const (
	AddBid    Op = "add_bid"
	AddAsk    Op = "add_ask"
	RemoveBid Op = "remove_bid"
	RemoveAsk Op = "remove_ask"
	Add       Op = "add"
	Remove    Op = "remove"
	Query     Op = "query"
	BestBid   Op = "best_bid"
	BestAsk   Op = "best_ask"
	TotalBids Op = "total_bids"
	TotalAsks Op = "total_asks"
	Render    Op = "render"
	Summary   Op = "summary"
)

var ErrInvalidStep = errors.New("invalid step")

// needsPrice lists ops that act on one price level.
var needsPrice = map[Op]bool{
	AddBid:    true,
	AddAsk:    true,
	RemoveBid: true,
	RemoveAsk: true,
	Add:       true,
	Remove:    true,
	Query:     true,
}

// needsSide lists ops that take the side from the step.
var needsSide = map[Op]bool{
	Add:    true,
	Remove: true,
}

var knownOps = map[Op]bool{
	AddBid: true, AddAsk: true, RemoveBid: true, RemoveAsk: true, Add: true, Remove: true,
	Query: true, BestBid: true, BestAsk: true, TotalBids: true,
	TotalAsks: true, Render: true, Summary: true,
}

type Step struct {
	Op    Op     `yaml:"op"`
	Side  string `yaml:"side,omitempty"`
	Price string `yaml:"price,omitempty"`
	Size  uint64 `yaml:"size,omitempty"`
}

func (s Step) Validate() error {
	if !knownOps[s.Op] {
		return fmt.Errorf("%w: unknown op %q", ErrInvalidStep, s.Op)
	}
	if needsPrice[s.Op] && s.Price == "" {
		return fmt.Errorf("%w: %s needs a price", ErrInvalidStep, s.Op)
	}
	if needsSide[s.Op] {
		if _, err := orderbook.ParseSide(s.Side); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidStep, s.Op, err)
		}
	}
	return nil
}

type Scenario struct {
	Name  string `yaml:"name"`
	Steps []Step `yaml:"steps"`
}

func Parse(data []byte) (*Scenario, error) {
	sc := &Scenario{}
	if err := yaml.Unmarshal(data, sc); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return sc, nil
}

func LoadFile(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func (sc *Scenario) Validate() error {
	for i, step := range sc.Steps {
		if err := step.Validate(); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
	}
	return nil
}

// WorkedExample builds the reference session: six resting levels, top of book
// queries, then a full ask withdrawal and a partial bid withdrawal.
func WorkedExample() *Scenario {
	return &Scenario{
		Name: "worked-example",
		Steps: []Step{
			{Op: Render},
			{Op: AddAsk, Price: "8723", Size: 100},
			{Op: AddAsk, Price: "8881", Size: 125},
			{Op: AddAsk, Price: "9900", Size: 100},
			{Op: AddBid, Price: "8720", Size: 174},
			{Op: AddBid, Price: "8600", Size: 100},
			{Op: AddBid, Price: "8499", Size: 100},
			{Op: Render},
			{Op: BestAsk},
			{Op: BestBid},
			{Op: Query, Price: "8721"},
			{Op: RemoveAsk, Price: "8723", Size: 100},
			{Op: RemoveBid, Price: "8720", Size: 173},
			{Op: Render},
		},
	}
}

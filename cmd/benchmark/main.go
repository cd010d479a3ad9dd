package main

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/joripage/pricebook/pkg/ladder"
	"github.com/joripage/pricebook/pkg/orderbook"
)

const (
	numOps   = 1_000_000
	minPrice = 10_000
	maxPrice = 20_000
	minQty   = 1
	maxQty   = 100
)

func randomSide() orderbook.Side {
	if rand.Intn(2) == 0 {
		return orderbook.Ask
	}
	return orderbook.Bid
}

func main() {
	ob := orderbook.New()

	adds, removes, rejected := 0, 0, 0
	start := time.Now()
	for i := 0; i < numOps; i++ {
		side := randomSide()
		price := orderbook.Price(minPrice + rand.Intn(maxPrice-minPrice+1))
		qty := orderbook.Size(rand.Intn(maxQty-minQty+1) + minQty)

		if rand.Intn(3) > 0 {
			if err := ob.Add(side, price, qty); err != nil {
				log.Fatalf("add: %v", err)
			}
			adds++
			continue
		}

		var err error
		if side == orderbook.Bid {
			err = ob.RemoveBid(price, qty)
		} else {
			err = ob.RemoveAsk(price, qty)
		}
		switch {
		case err == nil:
			removes++
		case errors.Is(err, orderbook.ErrPriceLevelNotFound), errors.Is(err, orderbook.ErrInsufficientQuantity):
			rejected++
		default:
			log.Fatalf("unexpected error: %v", err)
		}
	}
	elapsed := time.Since(start)

	depthStart := time.Now()
	bids := ob.TotalBids()
	asks := ob.TotalAsks()
	depthElapsed := time.Since(depthStart)

	fmt.Println("--------")
	fmt.Printf("Total Ops       : %d\n", numOps)
	fmt.Printf("Adds            : %d\n", adds)
	fmt.Printf("Removes         : %d\n", removes)
	fmt.Printf("Rejected        : %d\n", rejected)
	fmt.Printf("Bid/Ask Levels  : %d/%d\n", bids.Len(), asks.Len())
	fmt.Printf("Top Of Book     : %s\n", ladder.Summarize(ob))
	fmt.Printf("Time Taken      : %s\n", elapsed)
	fmt.Printf("Depth Time      : %s\n", depthElapsed)
}

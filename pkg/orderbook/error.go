package orderbook

import "errors"

var (
	ErrPriceLevelNotFound   = errors.New("price level not found")
	ErrInsufficientQuantity = errors.New("insufficient quantity")
	ErrNonZeroKeyClear      = errors.New("cannot clear a price level that still holds volume")
	ErrEmptySide            = errors.New("side is empty")
	ErrInvalidSide          = errors.New("invalid side")
	ErrSizeOverflow         = errors.New("size overflow")
)

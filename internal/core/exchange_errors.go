package core

import "errors"

var (
	// ErrEmptyFeed indicates the exchange returned no ticks for a market.
	ErrEmptyFeed = errors.New("empty tick feed")
	// ErrIncompleteHistory indicates tick history does not reach back to the
	// requested window start. Diagnostic only, never fatal.
	ErrIncompleteHistory = errors.New("incomplete tick history")
	// ErrZeroRate indicates an all-in buy amount cannot be priced.
	ErrZeroRate = errors.New("zero rate")
	// ErrInsufficientAsset indicates the all-in amount resolved to zero.
	ErrInsufficientAsset = errors.New("insufficient asset")
	// ErrOrderRejected indicates the exchange refused the order.
	ErrOrderRejected = errors.New("order rejected")
	// ErrOrderNotFound indicates the order does not exist on exchange.
	ErrOrderNotFound = errors.New("order not found")
)

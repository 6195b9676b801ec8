package domain

import "errors"

var ErrQuantityUnderflow = errors.New("quantity underflow")

// ApplyDelta is the single authoritative bounds check for every bounded
// counter in the system (listing quantity, collection item quantity, deck
// slot qty). It never returns a negative value.
func ApplyDelta(current, delta int) (int, error) {
	next := current + delta
	if next < 0 {
		return 0, ErrQuantityUnderflow
	}
	return next, nil
}

// CanTransition encodes the order lifecycle:
// PENDING -> COMPLETED | CANCELLED, COMPLETED -> REFUNDED.
// CANCELLED and REFUNDED are terminal.
func (s OrderStatus) CanTransition(to OrderStatus) bool {
	switch s {
	case OrderPending:
		return to == OrderCompleted || to == OrderCancelled
	case OrderCompleted:
		return to == OrderRefunded
	}
	return false
}

// Accepting reports whether a listing in this status takes new orders.
func (s ListingStatus) Accepting() bool {
	return s == ListingActive
}

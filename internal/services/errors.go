package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cardbazaar/internal/repos"
)

// Validation errors: rejected before any transaction opens.
var (
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
	ErrInvalidRequest  = errors.New("invalid request")
)

// Business rule violations: transaction rolled back, surfaced unchanged,
// never retried.
var (
	ErrListingNotFound     = errors.New("listing not found")
	ErrOrderNotFound       = errors.New("order not found")
	ErrCollectionNotFound  = errors.New("collection not found")
	ErrDeckNotFound        = errors.New("deck not found")
	ErrCardSetNotFound     = errors.New("card printing not found")
	ErrBuyerNotFound       = errors.New("buyer not found")
	ErrSellerNotFound      = errors.New("seller not found")
	ErrOutOfStock          = errors.New("listing out of stock")
	ErrSelfTrade           = errors.New("seller cannot buy own listing")
	ErrDuplicateRequest    = errors.New("duplicate request")
	ErrNotInCollection     = errors.New("card not in collection")
	ErrNotInDeck           = errors.New("card not in deck")
	ErrFormatLimitExceeded = errors.New("format copy limit exceeded")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrNotSeller           = errors.New("only the seller may cancel a listing")
)

// Transient conflicts: retried with backoff, then surfaced as ErrRetryExhausted.
var (
	ErrConflict       = errors.New("concurrent update conflict")
	ErrRetryExhausted = errors.New("retries exhausted")
)

const (
	maxAttempts = 3
	baseBackoff = 10 * time.Millisecond
)

func retryable(err error) bool {
	return errors.Is(err, ErrConflict) || repos.IsTransient(err)
}

// retryTransient runs fn up to maxAttempts times, backing off exponentially
// between attempts. Only serialization-class failures are retried; business
// failures come back on the first attempt.
func retryTransient(ctx context.Context, fn func() error) error {
	backoff := baseBackoff
	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		err = fn()
		if err == nil || !retryable(err) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return fmt.Errorf("%w after %d attempts: %v", ErrRetryExhausted, maxAttempts, err)
}

package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"cardbazaar/internal/domain"
	"cardbazaar/internal/repos"
)

// IdempotencyStore claims placement request ids so client replays never
// place a second order.
type IdempotencyStore interface {
	SetIdempotency(ctx context.Context, key string) (bool, error)
}

// OrderService is the order placement engine: it owns the transaction that
// decrements a listing and creates the matching order, and the lifecycle
// transitions that hand units back.
type OrderService struct {
	db       *sqlx.DB
	Listings *repos.ListingRepo
	Orders   *repos.OrderRepo
	Users    *repos.UserRepo
	Idem     IdempotencyStore
}

func NewOrderService(db *sqlx.DB, listings *repos.ListingRepo, orders *repos.OrderRepo, users *repos.UserRepo, idem IdempotencyStore) *OrderService {
	return &OrderService{db: db, Listings: listings, Orders: orders, Users: users, Idem: idem}
}

type PlaceOrderRequest struct {
	RequestID string
	BuyerID   string
	ListingID string
	Quantity  int
}

// Place reserves req.Quantity units of the listing and records a PENDING
// order with the price frozen at placement time. Concurrent placements
// against the same listing serialize on the conditional decrement; the call
// either fully commits both row changes or reports an error with no side
// effects.
func (s *OrderService) Place(ctx context.Context, req PlaceOrderRequest) (*domain.Order, error) {
	if req.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if req.BuyerID == "" || req.ListingID == "" {
		return nil, fmt.Errorf("%w: buyer and listing ids are required", ErrInvalidRequest)
	}

	if s.Idem != nil && req.RequestID != "" {
		ok, err := s.Idem.SetIdempotency(ctx, "order:"+req.RequestID)
		if err != nil {
			return nil, fmt.Errorf("idempotency check failed: %w", err)
		}
		if !ok {
			return nil, ErrDuplicateRequest
		}
	}

	var placed *domain.Order
	err := retryTransient(ctx, func() error {
		o, err := s.placeOnce(ctx, req)
		if err != nil {
			return err
		}
		placed = o
		return nil
	})
	return placed, err
}

func (s *OrderService) placeOnce(ctx context.Context, req PlaceOrderRequest) (*domain.Order, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := s.Users.Get(tx, req.BuyerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBuyerNotFound
		}
		return nil, fmt.Errorf("load buyer: %w", err)
	}

	l, err := s.Listings.Get(tx, req.ListingID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrListingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load listing: %w", err)
	}
	if l.SellerID == req.BuyerID {
		return nil, ErrSelfTrade
	}
	if !l.Status.Accepting() {
		return nil, ErrOutOfStock
	}
	if _, err := domain.ApplyDelta(l.Quantity, -req.Quantity); err != nil {
		return nil, ErrOutOfStock
	}

	ok, err := s.Listings.Decrement(tx, l.ID, req.Quantity)
	if err != nil {
		return nil, fmt.Errorf("decrement listing: %w", err)
	}
	if !ok {
		// The guard re-checks status and quantity; after the passing read
		// above, a miss means a concurrent buyer drained the listing.
		return nil, ErrOutOfStock
	}

	o := domain.Order{
		ID:        uuid.NewString(),
		BuyerID:   req.BuyerID,
		ListingID: l.ID,
		Quantity:  req.Quantity,
		Total:     l.Price * float64(req.Quantity),
		Status:    domain.OrderPending,
	}
	if err := s.Orders.Insert(tx, o); err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return &o, nil
}

// Cancel moves a PENDING order to CANCELLED and restores its units to the
// listing, reopening it if it had sold out. A second cancel finds the order
// already terminal and fails with ErrInvalidTransition, restoring nothing.
func (s *OrderService) Cancel(ctx context.Context, orderID string) (*domain.Order, error) {
	return s.transition(ctx, orderID, domain.OrderCancelled)
}

// Complete confirms fulfillment of a PENDING order.
func (s *OrderService) Complete(ctx context.Context, orderID string) (*domain.Order, error) {
	return s.transition(ctx, orderID, domain.OrderCompleted)
}

// Refund reverses a COMPLETED order, restoring its units like Cancel.
func (s *OrderService) Refund(ctx context.Context, orderID string) (*domain.Order, error) {
	return s.transition(ctx, orderID, domain.OrderRefunded)
}

func (s *OrderService) transition(ctx context.Context, orderID string, to domain.OrderStatus) (*domain.Order, error) {
	if orderID == "" {
		return nil, fmt.Errorf("%w: order id is required", ErrInvalidRequest)
	}
	var out *domain.Order
	err := retryTransient(ctx, func() error {
		tx, err := s.db.BeginTxx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer tx.Rollback()

		o, err := s.Orders.Get(tx, orderID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrOrderNotFound
		}
		if err != nil {
			return fmt.Errorf("load order: %w", err)
		}
		if !o.Status.CanTransition(to) {
			return ErrInvalidTransition
		}

		ok, err := s.Orders.UpdateStatus(tx, orderID, o.Status, to)
		if err != nil {
			return fmt.Errorf("update order status: %w", err)
		}
		if !ok {
			// Raced with another transition; the retry re-reads and reports
			// ErrInvalidTransition if the order is now terminal.
			return ErrConflict
		}

		if to.Restores() {
			if err := s.Listings.Restore(tx, o.ListingID, o.Quantity); err != nil {
				return fmt.Errorf("restore listing: %w", err)
			}
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit: %w", err)
		}
		o.Status = to
		out = o
		return nil
	})
	return out, err
}

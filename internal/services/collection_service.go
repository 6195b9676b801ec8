package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"cardbazaar/internal/domain"
	"cardbazaar/internal/repos"
)

const defaultCondition = "NEAR_MINT"

// CollectionService applies signed quantity deltas to a user's collection,
// creating the (collection, printing) row on first acquisition and deleting
// it when the quantity drops to zero.
type CollectionService struct {
	db          *sqlx.DB
	Collections *repos.CollectionRepo
	Cards       *repos.CardRepo
}

func NewCollectionService(db *sqlx.DB, collections *repos.CollectionRepo, cards *repos.CardRepo) *CollectionService {
	return &CollectionService{db: db, Collections: collections, Cards: cards}
}

type AdjustRequest struct {
	CollectionID  string
	CardSetID     string
	Delta         int
	Condition     *string
	PurchasePrice *float64
}

// Adjust returns the resulting item, or nil when the row was deleted at
// quantity zero. Two concurrent adjustments to the same pair serialize on
// the quantity-guarded write; the loser re-reads and reapplies its delta.
func (s *CollectionService) Adjust(ctx context.Context, req AdjustRequest) (*domain.CollectionItem, error) {
	if req.Delta == 0 {
		return nil, fmt.Errorf("%w: delta must be non-zero", ErrInvalidRequest)
	}
	if req.CollectionID == "" || req.CardSetID == "" {
		return nil, fmt.Errorf("%w: collection and printing ids are required", ErrInvalidRequest)
	}

	var out *domain.CollectionItem
	err := retryTransient(ctx, func() error {
		it, err := s.adjustOnce(ctx, req)
		if err != nil {
			return err
		}
		out = it
		return nil
	})
	return out, err
}

func (s *CollectionService) adjustOnce(ctx context.Context, req AdjustRequest) (*domain.CollectionItem, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := s.Collections.Collection(tx, req.CollectionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCollectionNotFound
		}
		return nil, fmt.Errorf("load collection: %w", err)
	}

	it, err := s.Collections.Item(tx, req.CollectionID, req.CardSetID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if req.Delta <= 0 {
			return nil, ErrNotInCollection
		}
		if _, err := s.Cards.CardSet(tx, req.CardSetID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, ErrCardSetNotFound
			}
			return nil, fmt.Errorf("load printing: %w", err)
		}
		cond := defaultCondition
		if req.Condition != nil {
			cond = *req.Condition
		}
		created := domain.CollectionItem{
			CollectionID:  req.CollectionID,
			CardSetID:     req.CardSetID,
			Quantity:      req.Delta,
			Condition:     cond,
			PurchasePrice: req.PurchasePrice,
		}
		if err := s.Collections.InsertItem(tx, created); err != nil {
			if repos.IsDuplicateKey(err) {
				// Lost the race to create the row; retry applies the delta
				// to the winner's row instead.
				return nil, ErrConflict
			}
			return nil, fmt.Errorf("insert item: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("commit: %w", err)
		}
		return &created, nil

	case err != nil:
		return nil, fmt.Errorf("load item: %w", err)
	}

	next, err := domain.ApplyDelta(it.Quantity, req.Delta)
	if err != nil {
		return nil, err
	}

	if next == 0 {
		// Empty collection slots do not persist.
		ok, err := s.Collections.DeleteItem(tx, req.CollectionID, req.CardSetID, it.Quantity)
		if err != nil {
			return nil, fmt.Errorf("delete item: %w", err)
		}
		if !ok {
			return nil, ErrConflict
		}
		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("commit: %w", err)
		}
		return nil, nil
	}

	ok, err := s.Collections.UpdateItemQuantity(tx, req.CollectionID, req.CardSetID, it.Quantity, next, req.Condition, req.PurchasePrice)
	if err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}
	if !ok {
		return nil, ErrConflict
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	it.Quantity = next
	if req.Condition != nil {
		it.Condition = *req.Condition
	}
	if req.PurchasePrice != nil {
		it.PurchasePrice = req.PurchasePrice
	}
	return it, nil
}

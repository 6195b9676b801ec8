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

// DeckService enforces deck-construction legality: slot quantities follow
// the same create/update/delete-at-zero pattern as collection items, and
// total copies of one card across all of its printings and all sections may
// not exceed the configured format limit.
type DeckService struct {
	db        *sqlx.DB
	Decks     *repos.DeckRepo
	Cards     *repos.CardRepo
	CopyLimit int
}

func NewDeckService(db *sqlx.DB, decks *repos.DeckRepo, cards *repos.CardRepo, copyLimit int) *DeckService {
	if copyLimit <= 0 {
		copyLimit = 3
	}
	return &DeckService{db: db, Decks: decks, Cards: cards, CopyLimit: copyLimit}
}

type SlotRequest struct {
	DeckID    string
	CardSetID string
	Section   string
	Delta     int
}

// AddToSlot returns the resulting slot, or nil when the slot was deleted at
// qty zero.
func (s *DeckService) AddToSlot(ctx context.Context, req SlotRequest) (*domain.DeckSlot, error) {
	if req.Delta == 0 {
		return nil, fmt.Errorf("%w: delta must be non-zero", ErrInvalidRequest)
	}
	if req.DeckID == "" || req.CardSetID == "" || req.Section == "" {
		return nil, fmt.Errorf("%w: deck id, printing id and section are required", ErrInvalidRequest)
	}

	var out *domain.DeckSlot
	err := retryTransient(ctx, func() error {
		slot, err := s.addOnce(ctx, req)
		if err != nil {
			return err
		}
		out = slot
		return nil
	})
	return out, err
}

func (s *DeckService) addOnce(ctx context.Context, req SlotRequest) (*domain.DeckSlot, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := s.Decks.Deck(tx, req.DeckID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDeckNotFound
		}
		return nil, fmt.Errorf("load deck: %w", err)
	}

	cs, err := s.Cards.CardSet(tx, req.CardSetID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCardSetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load printing: %w", err)
	}

	slot, err := s.Decks.Slot(tx, req.DeckID, req.CardSetID, req.Section)
	exists := true
	switch {
	case errors.Is(err, sql.ErrNoRows):
		exists = false
	case err != nil:
		return nil, fmt.Errorf("load slot: %w", err)
	}
	if !exists && req.Delta <= 0 {
		return nil, ErrNotInDeck
	}

	if req.Delta > 0 {
		// Copies of the same card in other printings and sections count
		// against the limit too.
		total, err := s.Decks.CardCopies(tx, req.DeckID, cs.CardID)
		if err != nil {
			return nil, fmt.Errorf("count copies: %w", err)
		}
		if total+req.Delta > s.CopyLimit {
			return nil, ErrFormatLimitExceeded
		}
	}

	if !exists {
		created := domain.DeckSlot{
			DeckID:    req.DeckID,
			CardSetID: req.CardSetID,
			Section:   req.Section,
			Qty:       req.Delta,
		}
		if err := s.Decks.InsertSlot(tx, created); err != nil {
			if repos.IsDuplicateKey(err) {
				return nil, ErrConflict
			}
			return nil, fmt.Errorf("insert slot: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("commit: %w", err)
		}
		return &created, nil
	}

	next, err := domain.ApplyDelta(slot.Qty, req.Delta)
	if err != nil {
		return nil, err
	}

	if next == 0 {
		ok, err := s.Decks.DeleteSlot(tx, req.DeckID, req.CardSetID, req.Section, slot.Qty)
		if err != nil {
			return nil, fmt.Errorf("delete slot: %w", err)
		}
		if !ok {
			return nil, ErrConflict
		}
		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("commit: %w", err)
		}
		return nil, nil
	}

	ok, err := s.Decks.UpdateSlotQty(tx, req.DeckID, req.CardSetID, req.Section, slot.Qty, next)
	if err != nil {
		return nil, fmt.Errorf("update slot: %w", err)
	}
	if !ok {
		return nil, ErrConflict
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	slot.Qty = next
	return slot, nil
}

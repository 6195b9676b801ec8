package services_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"

	"cardbazaar/internal/domain"
	"cardbazaar/internal/repos"
	"cardbazaar/internal/services"
)

func newDeckService(db *sqlx.DB, copyLimit int) *services.DeckService {
	return services.NewDeckService(db, repos.NewDeckRepo(db), repos.NewCardRepo(db), copyLimit)
}

func slotQty(t *testing.T, db *sqlx.DB, deckID, csID, section string) (int, bool) {
	t.Helper()
	var qty int
	err := db.Get(&qty, `SELECT qty FROM deck_slots WHERE deck_id = ? AND card_set_id = ? AND section = ?`,
		deckID, csID, section)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false
	}
	if err != nil {
		t.Fatal(err)
	}
	return qty, true
}

func TestAddToSlot_CreateUpdateDelete(t *testing.T) {
	db := memdb(t)
	svc := newDeckService(db, 0) // 0 falls back to the default limit of 3
	ctx := context.Background()

	slot, err := svc.AddToSlot(ctx, services.SlotRequest{DeckID: "deck-alice", CardSetID: "cs-bolt-m10", Section: "MAIN", Delta: 2})
	if err != nil {
		t.Fatal(err)
	}
	if slot.Qty != 2 {
		t.Errorf("want qty=2, got %d", slot.Qty)
	}

	slot, err = svc.AddToSlot(ctx, services.SlotRequest{DeckID: "deck-alice", CardSetID: "cs-bolt-m10", Section: "MAIN", Delta: 1})
	if err != nil {
		t.Fatal(err)
	}
	if slot.Qty != 3 {
		t.Errorf("want qty=3, got %d", slot.Qty)
	}

	slot, err = svc.AddToSlot(ctx, services.SlotRequest{DeckID: "deck-alice", CardSetID: "cs-bolt-m10", Section: "MAIN", Delta: -3})
	if err != nil {
		t.Fatal(err)
	}
	if slot != nil {
		t.Errorf("want nil slot after delete-at-zero, got %+v", slot)
	}
	if _, ok := slotQty(t, db, "deck-alice", "cs-bolt-m10", "MAIN"); ok {
		t.Error("zero-qty slot still present")
	}
}

// Copies of one card are counted across all of its printings: three
// different Lightning Bolt printings fill the limit, so a fourth copy via
// any printing is rejected.
func TestAddToSlot_CopyLimitAcrossPrintings(t *testing.T) {
	db := memdb(t)
	svc := newDeckService(db, 3)
	ctx := context.Background()

	for _, cs := range []string{"cs-bolt-lea", "cs-bolt-m10", "cs-bolt-sta"} {
		if _, err := svc.AddToSlot(ctx, services.SlotRequest{DeckID: "deck-alice", CardSetID: cs, Section: "MAIN", Delta: 1}); err != nil {
			t.Fatalf("add %s: %v", cs, err)
		}
	}

	_, err := svc.AddToSlot(ctx, services.SlotRequest{DeckID: "deck-alice", CardSetID: "cs-bolt-lea", Section: "MAIN", Delta: 1})
	if !errors.Is(err, services.ErrFormatLimitExceeded) {
		t.Fatalf("want ErrFormatLimitExceeded, got %v", err)
	}

	// A different card is unaffected.
	if _, err := svc.AddToSlot(ctx, services.SlotRequest{DeckID: "deck-alice", CardSetID: "cs-char-base", Section: "MAIN", Delta: 3}); err != nil {
		t.Fatalf("unrelated card blocked: %v", err)
	}
}

func TestAddToSlot_CopyLimitAcrossSections(t *testing.T) {
	db := memdb(t)
	svc := newDeckService(db, 3)
	ctx := context.Background()

	if _, err := svc.AddToSlot(ctx, services.SlotRequest{DeckID: "deck-alice", CardSetID: "cs-bolt-m10", Section: "MAIN", Delta: 2}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.AddToSlot(ctx, services.SlotRequest{DeckID: "deck-alice", CardSetID: "cs-bolt-m10", Section: "SIDEBOARD", Delta: 1}); err != nil {
		t.Fatal(err)
	}
	// 2 in MAIN + 1 in SIDEBOARD already meet the limit.
	_, err := svc.AddToSlot(ctx, services.SlotRequest{DeckID: "deck-alice", CardSetID: "cs-bolt-sta", Section: "SIDEBOARD", Delta: 1})
	if !errors.Is(err, services.ErrFormatLimitExceeded) {
		t.Fatalf("want ErrFormatLimitExceeded across sections, got %v", err)
	}
}

// Removals never consult the limit, so trimming an over-limit deck (for
// example after the format limit was lowered) always works.
func TestAddToSlot_RemovalBypassesLimit(t *testing.T) {
	db := memdb(t)
	db.MustExec(`INSERT INTO deck_slots(deck_id,card_set_id,section,qty) VALUES ('deck-alice','cs-bolt-m10','MAIN',4)`)
	svc := newDeckService(db, 3)

	slot, err := svc.AddToSlot(context.Background(), services.SlotRequest{
		DeckID: "deck-alice", CardSetID: "cs-bolt-m10", Section: "MAIN", Delta: -1,
	})
	if err != nil {
		t.Fatal(err)
	}
	if slot.Qty != 3 {
		t.Errorf("want qty=3 after trim, got %d", slot.Qty)
	}
}

func TestAddToSlot_Rejections(t *testing.T) {
	db := memdb(t)
	db.MustExec(`INSERT INTO deck_slots(deck_id,card_set_id,section,qty) VALUES ('deck-alice','cs-bolt-m10','MAIN',2)`)
	svc := newDeckService(db, 3)
	ctx := context.Background()

	cases := []struct {
		name string
		req  services.SlotRequest
		want error
	}{
		{"zero delta", services.SlotRequest{DeckID: "deck-alice", CardSetID: "cs-bolt-m10", Section: "MAIN"}, services.ErrInvalidRequest},
		{"missing section", services.SlotRequest{DeckID: "deck-alice", CardSetID: "cs-bolt-m10", Delta: 1}, services.ErrInvalidRequest},
		{"unknown deck", services.SlotRequest{DeckID: "nope", CardSetID: "cs-bolt-m10", Section: "MAIN", Delta: 1}, services.ErrDeckNotFound},
		{"unknown printing", services.SlotRequest{DeckID: "deck-alice", CardSetID: "nope", Section: "MAIN", Delta: 1}, services.ErrCardSetNotFound},
		{"remove absent slot", services.SlotRequest{DeckID: "deck-alice", CardSetID: "cs-char-base", Section: "MAIN", Delta: -1}, services.ErrNotInDeck},
		{"underflow", services.SlotRequest{DeckID: "deck-alice", CardSetID: "cs-bolt-m10", Section: "MAIN", Delta: -3}, domain.ErrQuantityUnderflow},
	}
	for _, tc := range cases {
		if _, err := svc.AddToSlot(ctx, tc.req); !errors.Is(err, tc.want) {
			t.Errorf("%s: want %v, got %v", tc.name, tc.want, err)
		}
	}

	if qty, _ := slotQty(t, db, "deck-alice", "cs-bolt-m10", "MAIN"); qty != 2 {
		t.Errorf("rejected requests mutated slot: qty=%d", qty)
	}
}

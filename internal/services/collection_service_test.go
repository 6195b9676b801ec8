package services_test

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"

	"github.com/jmoiron/sqlx"

	"cardbazaar/internal/domain"
	"cardbazaar/internal/repos"
	"cardbazaar/internal/services"
)

func newCollectionService(db *sqlx.DB) *services.CollectionService {
	return services.NewCollectionService(db, repos.NewCollectionRepo(db), repos.NewCardRepo(db))
}

func itemQuantity(t *testing.T, db *sqlx.DB, colID, csID string) (int, bool) {
	t.Helper()
	var qty int
	err := db.Get(&qty, `SELECT quantity FROM collection_items WHERE collection_id = ? AND card_set_id = ?`, colID, csID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false
	}
	if err != nil {
		t.Fatal(err)
	}
	return qty, true
}

func TestAdjust_CreateOnFirstAcquisition(t *testing.T) {
	db := memdb(t)
	svc := newCollectionService(db)

	it, err := svc.Adjust(context.Background(), services.AdjustRequest{
		CollectionID: "col-bob", CardSetID: "cs-bolt-sta", Delta: 2,
	})
	if err != nil {
		t.Fatal(err)
	}
	if it == nil || it.Quantity != 2 {
		t.Fatalf("want created item qty=2, got %+v", it)
	}
	if it.Condition != "NEAR_MINT" {
		t.Errorf("want default condition NEAR_MINT, got %s", it.Condition)
	}
	if qty, ok := itemQuantity(t, db, "col-bob", "cs-bolt-sta"); !ok || qty != 2 {
		t.Errorf("row not persisted: qty=%d ok=%v", qty, ok)
	}
}

func TestAdjust_UpdateAndDeleteAtZero(t *testing.T) {
	db := memdb(t)
	svc := newCollectionService(db)
	ctx := context.Background()

	// Seeded: col-alice holds 8 of cs-bolt-m10.
	it, err := svc.Adjust(ctx, services.AdjustRequest{CollectionID: "col-alice", CardSetID: "cs-bolt-m10", Delta: -3})
	if err != nil {
		t.Fatal(err)
	}
	if it.Quantity != 5 {
		t.Errorf("want qty=5, got %d", it.Quantity)
	}

	it, err = svc.Adjust(ctx, services.AdjustRequest{CollectionID: "col-alice", CardSetID: "cs-bolt-m10", Delta: -5})
	if err != nil {
		t.Fatal(err)
	}
	if it != nil {
		t.Errorf("want nil item after delete-at-zero, got %+v", it)
	}
	if _, ok := itemQuantity(t, db, "col-alice", "cs-bolt-m10"); ok {
		t.Error("zero-quantity row still present")
	}

	// After deletion the pair behaves as never-owned.
	_, err = svc.Adjust(ctx, services.AdjustRequest{CollectionID: "col-alice", CardSetID: "cs-bolt-m10", Delta: -1})
	if !errors.Is(err, services.ErrNotInCollection) {
		t.Fatalf("want ErrNotInCollection, got %v", err)
	}
}

func TestAdjust_RoundTripLeavesNoRow(t *testing.T) {
	db := memdb(t)
	svc := newCollectionService(db)
	ctx := context.Background()

	if _, err := svc.Adjust(ctx, services.AdjustRequest{CollectionID: "col-bob", CardSetID: "cs-bluem-lob", Delta: 4}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Adjust(ctx, services.AdjustRequest{CollectionID: "col-bob", CardSetID: "cs-bluem-lob", Delta: -4}); err != nil {
		t.Fatal(err)
	}
	if _, ok := itemQuantity(t, db, "col-bob", "cs-bluem-lob"); ok {
		t.Error("+4/-4 round trip left a row behind")
	}
}

func TestAdjust_Rejections(t *testing.T) {
	db := memdb(t)
	svc := newCollectionService(db)
	ctx := context.Background()

	cases := []struct {
		name string
		req  services.AdjustRequest
		want error
	}{
		{"zero delta", services.AdjustRequest{CollectionID: "col-alice", CardSetID: "cs-bolt-m10"}, services.ErrInvalidRequest},
		{"missing ids", services.AdjustRequest{Delta: 1}, services.ErrInvalidRequest},
		{"unknown collection", services.AdjustRequest{CollectionID: "nope", CardSetID: "cs-bolt-m10", Delta: 1}, services.ErrCollectionNotFound},
		{"unknown printing", services.AdjustRequest{CollectionID: "col-alice", CardSetID: "nope", Delta: 1}, services.ErrCardSetNotFound},
		{"remove unowned", services.AdjustRequest{CollectionID: "col-alice", CardSetID: "cs-char-base", Delta: -1}, services.ErrNotInCollection},
		{"underflow", services.AdjustRequest{CollectionID: "col-alice", CardSetID: "cs-bolt-m10", Delta: -9}, domain.ErrQuantityUnderflow},
	}
	for _, tc := range cases {
		if _, err := svc.Adjust(ctx, tc.req); !errors.Is(err, tc.want) {
			t.Errorf("%s: want %v, got %v", tc.name, tc.want, err)
		}
	}

	// The underflow attempt must not have changed the stored quantity.
	if qty, _ := itemQuantity(t, db, "col-alice", "cs-bolt-m10"); qty != 8 {
		t.Errorf("rejected adjustments mutated quantity: %d", qty)
	}
}

func TestAdjust_UpdatesConditionAndPrice(t *testing.T) {
	db := memdb(t)
	svc := newCollectionService(db)

	cond := "EXCELLENT"
	price := 1.75
	it, err := svc.Adjust(context.Background(), services.AdjustRequest{
		CollectionID: "col-alice", CardSetID: "cs-bolt-m10", Delta: 1,
		Condition: &cond, PurchasePrice: &price,
	})
	if err != nil {
		t.Fatal(err)
	}
	if it.Quantity != 9 || it.Condition != "EXCELLENT" {
		t.Errorf("want qty=9 EXCELLENT, got qty=%d %s", it.Quantity, it.Condition)
	}
	if it.PurchasePrice == nil || *it.PurchasePrice != 1.75 {
		t.Errorf("want purchase price 1.75, got %v", it.PurchasePrice)
	}
}

// Ten concurrent +1 adjustments on a pair that starts absent: the first
// writer creates the row, the rest retry onto it, and the final quantity is
// exactly ten.
func TestAdjust_ConcurrentIncrements(t *testing.T) {
	db := memdb(t)
	svc := newCollectionService(db)

	var wg sync.WaitGroup
	errs := make([]error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Adjust(context.Background(), services.AdjustRequest{
				CollectionID: "col-bob", CardSetID: "cs-bolt-lea", Delta: 1,
			})
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("adjust %d: %v", i, err)
		}
	}
	if qty, ok := itemQuantity(t, db, "col-bob", "cs-bolt-lea"); !ok || qty != 10 {
		t.Errorf("want qty=10, got qty=%d ok=%v", qty, ok)
	}
}

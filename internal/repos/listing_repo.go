package repos

import (
	"github.com/jmoiron/sqlx"

	"cardbazaar/internal/domain"
)

// ListingRepo owns the listings table. Mutators take an sqlx.Ext so the
// services can run them inside one transaction together with order writes;
// passing the bare *sqlx.DB is fine for single-statement use.
type ListingRepo struct{ db *sqlx.DB }

func NewListingRepo(db *sqlx.DB) *ListingRepo { return &ListingRepo{db: db} }

func (r *ListingRepo) DB() *sqlx.DB { return r.db }

func (r *ListingRepo) Get(q sqlx.Ext, id string) (*domain.Listing, error) {
	var l domain.Listing
	err := sqlx.Get(q, &l, `
		SELECT id, seller_id, card_set_id, condition, price, quantity,
		       original_quantity, status, version, created_at, updated_at
		FROM listings WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *ListingRepo) ByID(id string) (*domain.Listing, error) { return r.Get(r.db, id) }

func (r *ListingRepo) Insert(l domain.Listing) error {
	_, err := r.db.Exec(`
		INSERT INTO listings(id, seller_id, card_set_id, condition, price,
		                     quantity, original_quantity, status, version)
		VALUES(?,?,?,?,?,?,?,?,0)`,
		l.ID, l.SellerID, l.CardSetID, l.Condition, l.Price,
		l.Quantity, l.OriginalQuantity, l.Status)
	return err
}

// Decrement atomically takes qty units off an active listing, flipping it to
// SOLD_OUT when it drains. The WHERE clause is the no-oversell guard: zero
// rows affected means another buyer got there first (or the listing left the
// ACTIVE state) and the caller must not create an order.
// The status CASE is assigned before quantity so it reads the pre-update
// value on MySQL, which evaluates SET clauses left to right.
func (r *ListingRepo) Decrement(q sqlx.Ext, id string, qty int) (bool, error) {
	res, err := q.Exec(`
		UPDATE listings
		SET status = CASE WHEN quantity - ? = 0 THEN 'SOLD_OUT' ELSE status END,
		    quantity = quantity - ?,
		    version = version + 1,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status = 'ACTIVE' AND quantity >= ?`,
		qty, qty, id, qty)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Restore hands qty units back after an order cancellation or refund and
// reopens a listing that had sold out. Cancelled listings keep their status;
// the units still return so the conservation invariant holds.
func (r *ListingRepo) Restore(q sqlx.Ext, id string, qty int) error {
	_, err := q.Exec(`
		UPDATE listings
		SET status = CASE WHEN status = 'SOLD_OUT' THEN 'ACTIVE' ELSE status END,
		    quantity = quantity + ?,
		    version = version + 1,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		qty, id)
	return err
}

// CancelListing moves an active listing to CANCELLED. Zero rows means the
// listing was not active (already cancelled or sold out).
func (r *ListingRepo) CancelListing(q sqlx.Ext, id string) (bool, error) {
	res, err := q.Exec(`
		UPDATE listings
		SET status = 'CANCELLED', version = version + 1, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status = 'ACTIVE'`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *ListingRepo) ByCardSet(cardSetID string) ([]domain.Listing, error) {
	var out []domain.Listing
	err := r.db.Select(&out, `
		SELECT id, seller_id, card_set_id, condition, price, quantity,
		       original_quantity, status, version, created_at, updated_at
		FROM listings
		WHERE card_set_id = ? AND status = 'ACTIVE'
		ORDER BY price, created_at`, cardSetID)
	return out, err
}

func (r *ListingRepo) BySeller(sellerID string) ([]domain.Listing, error) {
	var out []domain.Listing
	err := r.db.Select(&out, `
		SELECT id, seller_id, card_set_id, condition, price, quantity,
		       original_quantity, status, version, created_at, updated_at
		FROM listings
		WHERE seller_id = ?
		ORDER BY created_at DESC`, sellerID)
	return out, err
}

package repos

import (
	"github.com/jmoiron/sqlx"

	"cardbazaar/internal/domain"
)

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

func (r *OrderRepo) Get(q sqlx.Ext, id string) (*domain.Order, error) {
	var o domain.Order
	err := sqlx.Get(q, &o, `
		SELECT id, buyer_id, listing_id, quantity, total, status, created_at, updated_at
		FROM orders WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepo) ByID(id string) (*domain.Order, error) { return r.Get(r.db, id) }

func (r *OrderRepo) Insert(q sqlx.Ext, o domain.Order) error {
	_, err := q.Exec(`
		INSERT INTO orders(id, buyer_id, listing_id, quantity, total, status)
		VALUES(?,?,?,?,?,?)`,
		o.ID, o.BuyerID, o.ListingID, o.Quantity, o.Total, o.Status)
	return err
}

// UpdateStatus transitions an order only when it is still in the expected
// state; zero rows affected means a concurrent transition already happened.
func (r *OrderRepo) UpdateStatus(q sqlx.Ext, id string, from, to domain.OrderStatus) (bool, error) {
	res, err := q.Exec(`
		UPDATE orders SET status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status = ?`, to, id, from)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *OrderRepo) ListByBuyer(buyerID string) ([]domain.Order, error) {
	var out []domain.Order
	err := r.db.Select(&out, `
		SELECT id, buyer_id, listing_id, quantity, total, status, created_at, updated_at
		FROM orders WHERE buyer_id = ?
		ORDER BY created_at DESC`, buyerID)
	return out, err
}

func (r *OrderRepo) ListByListing(listingID string) ([]domain.Order, error) {
	var out []domain.Order
	err := r.db.Select(&out, `
		SELECT id, buyer_id, listing_id, quantity, total, status, created_at, updated_at
		FROM orders WHERE listing_id = ?
		ORDER BY created_at`, listingID)
	return out, err
}

// CommittedQuantity sums the units still held by live (pending or completed)
// orders against a listing. Together with the listing's remaining quantity it
// must always equal the original quantity.
func (r *OrderRepo) CommittedQuantity(q sqlx.Ext, listingID string) (int, error) {
	var n int
	err := sqlx.Get(q, &n, `
		SELECT COALESCE(SUM(quantity), 0) FROM orders
		WHERE listing_id = ? AND status IN ('PENDING','COMPLETED')`, listingID)
	return n, err
}

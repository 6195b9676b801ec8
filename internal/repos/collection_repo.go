package repos

import (
	"github.com/jmoiron/sqlx"

	"cardbazaar/internal/domain"
)

type CollectionRepo struct{ db *sqlx.DB }

func NewCollectionRepo(db *sqlx.DB) *CollectionRepo { return &CollectionRepo{db: db} }

func (r *CollectionRepo) DB() *sqlx.DB { return r.db }

func (r *CollectionRepo) Collection(q sqlx.Ext, id string) (*domain.Collection, error) {
	var c domain.Collection
	err := sqlx.Get(q, &c, `SELECT id, user_id, name, created_at FROM collections WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CollectionRepo) Item(q sqlx.Ext, collectionID, cardSetID string) (*domain.CollectionItem, error) {
	var it domain.CollectionItem
	err := sqlx.Get(q, &it, `
		SELECT collection_id, card_set_id, quantity, condition, purchase_price, created_at, updated_at
		FROM collection_items
		WHERE collection_id = ? AND card_set_id = ?`, collectionID, cardSetID)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *CollectionRepo) InsertItem(q sqlx.Ext, it domain.CollectionItem) error {
	_, err := q.Exec(`
		INSERT INTO collection_items(collection_id, card_set_id, quantity, condition, purchase_price)
		VALUES(?,?,?,?,?)`,
		it.CollectionID, it.CardSetID, it.Quantity, it.Condition, it.PurchasePrice)
	return err
}

// UpdateItemQuantity applies a read-modify-write guarded by the previously
// read quantity, so two concurrent adjustments to the same pair can never
// both base their write on the same snapshot. Zero rows affected means the
// row moved underneath us and the caller should re-read and retry.
// Condition and purchase price only change when the caller supplies them.
func (r *CollectionRepo) UpdateItemQuantity(q sqlx.Ext, collectionID, cardSetID string, oldQty, newQty int, condition *string, purchasePrice *float64) (bool, error) {
	res, err := q.Exec(`
		UPDATE collection_items
		SET quantity = ?,
		    condition = COALESCE(?, condition),
		    purchase_price = COALESCE(?, purchase_price),
		    updated_at = CURRENT_TIMESTAMP
		WHERE collection_id = ? AND card_set_id = ? AND quantity = ?`,
		newQty, condition, purchasePrice, collectionID, cardSetID, oldQty)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// DeleteItem removes a slot when its quantity reaches zero, with the same
// quantity guard as UpdateItemQuantity.
func (r *CollectionRepo) DeleteItem(q sqlx.Ext, collectionID, cardSetID string, oldQty int) (bool, error) {
	res, err := q.Exec(`
		DELETE FROM collection_items
		WHERE collection_id = ? AND card_set_id = ? AND quantity = ?`,
		collectionID, cardSetID, oldQty)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

type CollectionItemRow struct {
	CardSetID string   `db:"card_set_id" json:"cardSetId"`
	CardName  string   `db:"card_name" json:"cardName"`
	SetCode   string   `db:"set_code" json:"setCode"`
	Number    string   `db:"number" json:"number"`
	Quantity  int      `db:"quantity" json:"quantity"`
	Condition string   `db:"condition" json:"condition"`
	Price     *float64 `db:"purchase_price" json:"purchasePrice,omitempty"`
}

func (r *CollectionRepo) Items(collectionID string) ([]CollectionItemRow, error) {
	var out []CollectionItemRow
	err := r.db.Select(&out, `
		SELECT ci.card_set_id, c.name AS card_name, cs.set_code, cs.number,
		       ci.quantity, ci.condition, ci.purchase_price
		FROM collection_items ci
		JOIN card_sets cs ON cs.id = ci.card_set_id
		JOIN cards c ON c.id = cs.card_id
		WHERE ci.collection_id = ?
		ORDER BY c.name, cs.set_code`, collectionID)
	return out, err
}

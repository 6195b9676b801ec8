package repos

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"cardbazaar/internal/domain"
)

// CardRepo is read-only: catalog and price ingestion happen upstream.
type CardRepo struct{ db *sqlx.DB }

func NewCardRepo(db *sqlx.DB) *CardRepo { return &CardRepo{db: db} }

func (r *CardRepo) Card(id string) (*domain.Card, error) {
	var c domain.Card
	err := r.db.Get(&c, `SELECT id, name, game, created_at FROM cards WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CardRepo) CardSet(q sqlx.Ext, id string) (*domain.CardSet, error) {
	var cs domain.CardSet
	err := sqlx.Get(q, &cs, `
		SELECT id, card_id, set_code, number, rarity, edition, created_at
		FROM card_sets WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	return &cs, nil
}

func (r *CardRepo) Printings(cardID string) ([]domain.CardSet, error) {
	var out []domain.CardSet
	err := r.db.Select(&out, `
		SELECT id, card_id, set_code, number, rarity, edition, created_at
		FROM card_sets WHERE card_id = ?
		ORDER BY set_code, number`, cardID)
	return out, err
}

// LatestPrice returns the most recent market price for a printing, or nil
// when no price point has been recorded yet.
func (r *CardRepo) LatestPrice(cardSetID string) (*domain.PricePoint, error) {
	var p domain.PricePoint
	err := r.db.Get(&p, `
		SELECT id, card_set_id, market, amount, recorded_at
		FROM prices WHERE card_set_id = ?
		ORDER BY recorded_at DESC, id DESC LIMIT 1`, cardSetID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

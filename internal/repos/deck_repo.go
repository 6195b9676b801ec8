package repos

import (
	"github.com/jmoiron/sqlx"

	"cardbazaar/internal/domain"
)

type DeckRepo struct{ db *sqlx.DB }

func NewDeckRepo(db *sqlx.DB) *DeckRepo { return &DeckRepo{db: db} }

func (r *DeckRepo) DB() *sqlx.DB { return r.db }

func (r *DeckRepo) Deck(q sqlx.Ext, id string) (*domain.Deck, error) {
	var d domain.Deck
	err := sqlx.Get(q, &d, `SELECT id, user_id, name, format, created_at FROM decks WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DeckRepo) Slot(q sqlx.Ext, deckID, cardSetID, section string) (*domain.DeckSlot, error) {
	var s domain.DeckSlot
	err := sqlx.Get(q, &s, `
		SELECT deck_id, card_set_id, section, qty, created_at, updated_at
		FROM deck_slots
		WHERE deck_id = ? AND card_set_id = ? AND section = ?`, deckID, cardSetID, section)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *DeckRepo) InsertSlot(q sqlx.Ext, s domain.DeckSlot) error {
	_, err := q.Exec(`
		INSERT INTO deck_slots(deck_id, card_set_id, section, qty)
		VALUES(?,?,?,?)`,
		s.DeckID, s.CardSetID, s.Section, s.Qty)
	return err
}

func (r *DeckRepo) UpdateSlotQty(q sqlx.Ext, deckID, cardSetID, section string, oldQty, newQty int) (bool, error) {
	res, err := q.Exec(`
		UPDATE deck_slots SET qty = ?, updated_at = CURRENT_TIMESTAMP
		WHERE deck_id = ? AND card_set_id = ? AND section = ? AND qty = ?`,
		newQty, deckID, cardSetID, section, oldQty)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *DeckRepo) DeleteSlot(q sqlx.Ext, deckID, cardSetID, section string, oldQty int) (bool, error) {
	res, err := q.Exec(`
		DELETE FROM deck_slots
		WHERE deck_id = ? AND card_set_id = ? AND section = ? AND qty = ?`,
		deckID, cardSetID, section, oldQty)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// CardCopies sums every copy of the underlying card already in the deck,
// across all of its printings and all sections. This is the read the format
// limit check is based on.
func (r *DeckRepo) CardCopies(q sqlx.Ext, deckID, cardID string) (int, error) {
	var n int
	err := sqlx.Get(q, &n, `
		SELECT COALESCE(SUM(ds.qty), 0)
		FROM deck_slots ds
		JOIN card_sets cs ON cs.id = ds.card_set_id
		WHERE ds.deck_id = ? AND cs.card_id = ?`, deckID, cardID)
	return n, err
}

type DeckSlotRow struct {
	CardSetID string `db:"card_set_id" json:"cardSetId"`
	CardName  string `db:"card_name" json:"cardName"`
	SetCode   string `db:"set_code" json:"setCode"`
	Section   string `db:"section" json:"section"`
	Qty       int    `db:"qty" json:"qty"`
}

func (r *DeckRepo) Slots(deckID string) ([]DeckSlotRow, error) {
	var out []DeckSlotRow
	err := r.db.Select(&out, `
		SELECT ds.card_set_id, c.name AS card_name, cs.set_code, ds.section, ds.qty
		FROM deck_slots ds
		JOIN card_sets cs ON cs.id = ds.card_set_id
		JOIN cards c ON c.id = cs.card_id
		WHERE ds.deck_id = ?
		ORDER BY ds.section, c.name`, deckID)
	return out, err
}

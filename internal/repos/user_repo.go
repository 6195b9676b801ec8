package repos

import (
	"github.com/jmoiron/sqlx"

	"cardbazaar/internal/domain"
)

type UserRepo struct{ db *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{db: db} }

func (r *UserRepo) Get(q sqlx.Ext, id string) (*domain.User, error) {
	var u domain.User
	err := sqlx.Get(q, &u, `SELECT id, email, name, password_hash FROM users WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) ByID(id string) (*domain.User, error) { return r.Get(r.db, id) }

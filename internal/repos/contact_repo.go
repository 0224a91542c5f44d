package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"cosmetica/internal/domain"
)

type ContactRepo struct{ db *sqlx.DB }

func NewContactRepo(db *sqlx.DB) *ContactRepo { return &ContactRepo{db: db} }

const contactCols = `id, name, email, phone, subject, message, created_at`

func (r *ContactRepo) Create(ctx context.Context, c *domain.Contact) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO contacts(`+contactCols+`)
		VALUES(:id, :name, :email, :phone, :subject, :message, :created_at)
	`, c)
	return wrap("create contact", err)
}

func (r *ContactRepo) List(ctx context.Context) ([]domain.Contact, error) {
	out := []domain.Contact{}
	if err := r.db.SelectContext(ctx, &out, `SELECT `+contactCols+` FROM contacts ORDER BY created_at DESC, id`); err != nil {
		return nil, wrap("list contacts", err)
	}
	return out, nil
}

func (r *ContactRepo) Get(ctx context.Context, id string) (*domain.Contact, error) {
	var c domain.Contact
	if err := r.db.GetContext(ctx, &c, r.db.Rebind(`SELECT `+contactCols+` FROM contacts WHERE id = ?`), id); err != nil {
		return nil, wrap("get contact", err)
	}
	return &c, nil
}

func (r *ContactRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM contacts WHERE id = ?`), id)
	if err != nil {
		return wrap("delete contact", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return wrap("delete contact", ErrNotFound)
	}
	return nil
}

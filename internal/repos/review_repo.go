package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"cosmetica/internal/domain"
)

type ReviewRepo struct{ db *sqlx.DB }

func NewReviewRepo(db *sqlx.DB) *ReviewRepo { return &ReviewRepo{db: db} }

func (r *ReviewRepo) Create(ctx context.Context, rv *domain.Review) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO reviews(id, name, email, product, title, review, rating, date, created_at)
		VALUES(:id, :name, :email, :product, :title, :review, :rating, :date, :created_at)
	`, rv)
	return wrap("create review", err)
}

// List returns every review, newest first.
func (r *ReviewRepo) List(ctx context.Context) ([]domain.Review, error) {
	out := []domain.Review{}
	err := r.db.SelectContext(ctx, &out, `
		SELECT id, name, email, product, title, review, rating, date, created_at
		FROM reviews
		ORDER BY created_at DESC, id
	`)
	if err != nil {
		return nil, wrap("list reviews", err)
	}
	return out, nil
}

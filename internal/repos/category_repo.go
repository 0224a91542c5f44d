package repos

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// CategoryRepo reads the category labels carried on products.
type CategoryRepo struct{ db *sqlx.DB }

func NewCategoryRepo(db *sqlx.DB) *CategoryRepo { return &CategoryRepo{db: db} }

// List returns the distinct categories in use, sorted by name.
func (r *CategoryRepo) List(ctx context.Context) ([]string, error) {
	out := []string{}
	err := r.db.SelectContext(ctx, &out, `
		SELECT DISTINCT category
		FROM products
		WHERE category <> ''
		ORDER BY category
	`)
	if err != nil {
		return nil, wrap("list categories", err)
	}
	return out, nil
}

// ProductCategories maps product id to category for the given ids.
func (r *CategoryRepo) ProductCategories(ctx context.Context, ids []string) (map[string]string, error) {
	out := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	q, args, err := sqlx.In(`SELECT product_id, category FROM products WHERE product_id IN (?)`, ids)
	if err != nil {
		return nil, wrap("product categories", err)
	}
	var rows []struct {
		ProductID string `db:"product_id"`
		Category  string `db:"category"`
	}
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(q), args...); err != nil {
		return nil, wrap("product categories", err)
	}
	for _, row := range rows {
		out[row.ProductID] = row.Category
	}
	return out, nil
}

package repos

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"

	"cosmetica/internal/domain"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

const productCols = `product_id, name, alt_names, labelled_price, price, images, description, stock, is_available, category, created_at`

func (r *ProductRepo) Create(ctx context.Context, p *domain.Product) error {
	if p.CreatedAt == "" {
		p.CreatedAt = nowString()
	}
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO products(`+productCols+`)
		VALUES(:product_id, :name, :alt_names, :labelled_price, :price, :images, :description, :stock, :is_available, :category, :created_at)
	`, p)
	return wrap("create product", err)
}

func (r *ProductRepo) Get(ctx context.Context, productID string) (*domain.Product, error) {
	var p domain.Product
	err := r.db.GetContext(ctx, &p, r.db.Rebind(`SELECT `+productCols+` FROM products WHERE product_id = ?`), productID)
	if err != nil {
		return nil, wrap("get product", err)
	}
	return &p, nil
}

// List returns products newest first; availableOnly hides products flagged unavailable.
func (r *ProductRepo) List(ctx context.Context, availableOnly bool) ([]domain.Product, error) {
	q := `SELECT ` + productCols + ` FROM products`
	args := []any{}
	if availableOnly {
		q += ` WHERE is_available = ?`
		args = append(args, true)
	}
	q += ` ORDER BY created_at DESC, product_id`
	out := []domain.Product{}
	if err := r.db.SelectContext(ctx, &out, r.db.Rebind(q), args...); err != nil {
		return nil, wrap("list products", err)
	}
	return out, nil
}

// Search matches name or alternative names case-insensitively among available products.
func (r *ProductRepo) Search(ctx context.Context, query string) ([]domain.Product, error) {
	like := "%" + strings.ToLower(query) + "%"
	out := []domain.Product{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(`
		SELECT `+productCols+` FROM products
		WHERE is_available = ? AND (LOWER(name) LIKE ? OR LOWER(alt_names) LIKE ?)
		ORDER BY name
	`), true, like, like)
	if err != nil {
		return nil, wrap("search products", err)
	}
	return out, nil
}

// Update replaces every mutable field of the product.
func (r *ProductRepo) Update(ctx context.Context, p *domain.Product) error {
	res, err := r.db.NamedExecContext(ctx, `
		UPDATE products SET
		  name = :name, alt_names = :alt_names, labelled_price = :labelled_price, price = :price,
		  images = :images, description = :description, stock = :stock,
		  is_available = :is_available, category = :category
		WHERE product_id = :product_id
	`, p)
	if err != nil {
		return wrap("update product", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return wrap("update product", ErrNotFound)
	}
	return nil
}

func (r *ProductRepo) Delete(ctx context.Context, productID string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM products WHERE product_id = ?`), productID)
	if err != nil {
		return wrap("delete product", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return wrap("delete product", ErrNotFound)
	}
	return nil
}

func (r *ProductRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM products`); err != nil {
		return 0, wrap("count products", err)
	}
	return n, nil
}

package repos

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type InventoryRepo struct{ db *sqlx.DB }

func NewInventoryRepo(db *sqlx.DB) *InventoryRepo { return &InventoryRepo{db: db} }

// StockRow is the slice of a product the availability check needs.
type StockRow struct {
	ProductID   string `db:"product_id"`
	Stock       int    `db:"stock"`
	IsAvailable bool   `db:"is_available"`
}

// Stock returns the stock row for a product, or ErrNotFound.
func (r *InventoryRepo) Stock(ctx context.Context, productID string) (StockRow, error) {
	var row StockRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind(`
		SELECT product_id, stock, is_available
		FROM products
		WHERE product_id = ?
	`), productID)
	if err != nil {
		return StockRow{}, wrap("stock", err)
	}
	return row, nil
}

// SetStock overwrites the stock level of a product.
func (r *InventoryRepo) SetStock(ctx context.Context, productID string, qty int) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE products SET stock = ? WHERE product_id = ?`), qty, productID)
	if err != nil {
		return wrap("set stock", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return wrap("set stock", ErrNotFound)
	}
	return nil
}

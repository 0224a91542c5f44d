package repos

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"cosmetica/internal/domain"
)

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

const orderCols = `seq, order_id, email, name, address, phone, total, status, note, created_at`

// WithTx runs fn inside one transaction, committing only when fn succeeds.
func (r *OrderRepo) WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return wrap("begin", err)
	}
	defer func() { _ = tx.Rollback() }()
	if err := fn(tx); err != nil {
		return err
	}
	return wrap("commit", tx.Commit())
}

// ---------- counters ----------

// BumpCounter increments the named counter and returns the new value.
// ok is false when the counter has not been created yet.
func (r *OrderRepo) BumpCounter(ctx context.Context, tx *sqlx.Tx, name string) (value int64, ok bool, err error) {
	err = tx.QueryRowxContext(ctx, tx.Rebind(`
		UPDATE counters SET value = value + 1 WHERE name = ? RETURNING value
	`), name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, wrap("bump counter", err)
	}
	return value, true, nil
}

// InitCounter creates the counter with value. created is false when another
// transaction created it first.
func (r *OrderRepo) InitCounter(ctx context.Context, tx *sqlx.Tx, name string, value int64) (created bool, err error) {
	res, err := tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO counters(name, value) VALUES(?, ?)
		ON CONFLICT(name) DO NOTHING
	`), name, value)
	if err != nil {
		return false, wrap("init counter", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, wrap("init counter", err)
	}
	return n == 1, nil
}

// LatestOrderIDTx returns the id of the most recently inserted order by
// sequence, or "" when there are none.
func (r *OrderRepo) LatestOrderIDTx(ctx context.Context, tx *sqlx.Tx) (string, error) {
	var id string
	err := tx.GetContext(ctx, &id, `SELECT order_id FROM orders ORDER BY seq DESC LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", wrap("latest order", err)
	}
	return id, nil
}

// ---------- writes ----------

// InsertTx stores the order header and its lines in request order.
func (r *OrderRepo) InsertTx(ctx context.Context, tx *sqlx.Tx, o *domain.Order) error {
	err := tx.QueryRowxContext(ctx, tx.Rebind(`
		INSERT INTO orders(order_id, email, name, address, phone, total, status, note, created_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING seq
	`), o.OrderID, o.Email, o.Name, o.Address, o.Phone, o.Total, o.Status, o.Note, o.Date).Scan(&o.Seq)
	if err != nil {
		return wrap("insert order", err)
	}
	for i := range o.Items {
		it := &o.Items[i]
		it.OrderID = o.OrderID
		it.Position = i
		if _, err := tx.NamedExecContext(ctx, `
			INSERT INTO order_items(order_id, position, product_id, name, image, price, quantity)
			VALUES(:order_id, :position, :product_id, :name, :image, :price, :quantity)
		`, it); err != nil {
			return wrap("insert order item", err)
		}
	}
	return nil
}

// UpdateStatusTx sets status and note and returns the updated order.
func (r *OrderRepo) UpdateStatusTx(ctx context.Context, tx *sqlx.Tx, orderID string, status domain.OrderStatus, note string) (*domain.Order, error) {
	res, err := tx.ExecContext(ctx, tx.Rebind(`UPDATE orders SET status = ?, note = ? WHERE order_id = ?`), status, note, orderID)
	if err != nil {
		return nil, wrap("update order", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, wrap("update order", ErrNotFound)
	}
	var o domain.Order
	if err := tx.GetContext(ctx, &o, tx.Rebind(`SELECT `+orderCols+` FROM orders WHERE order_id = ?`), orderID); err != nil {
		return nil, wrap("update order", err)
	}
	if err := r.loadItems(ctx, tx, []*domain.Order{&o}); err != nil {
		return nil, err
	}
	return &o, nil
}

// ---------- reads ----------

// List returns one page of orders, newest first. An empty email lists every order.
func (r *OrderRepo) List(ctx context.Context, email string, limit, offset int) ([]domain.Order, error) {
	q := `SELECT ` + orderCols + ` FROM orders`
	args := []any{}
	if email != "" {
		q += ` WHERE LOWER(email) = LOWER(?)`
		args = append(args, email)
	}
	q += ` ORDER BY seq DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	var out []domain.Order
	if err := r.db.SelectContext(ctx, &out, r.db.Rebind(q), args...); err != nil {
		return nil, wrap("list orders", err)
	}
	if err := r.loadItems(ctx, r.db, ptrs(out)); err != nil {
		return nil, err
	}
	return out, nil
}

// Count returns how many orders List would page through.
func (r *OrderRepo) Count(ctx context.Context, email string) (int, error) {
	q := `SELECT COUNT(*) FROM orders`
	args := []any{}
	if email != "" {
		q += ` WHERE LOWER(email) = LOWER(?)`
		args = append(args, email)
	}
	var n int
	if err := r.db.GetContext(ctx, &n, r.db.Rebind(q), args...); err != nil {
		return 0, wrap("count orders", err)
	}
	return n, nil
}

func (r *OrderRepo) CountByStatus(ctx context.Context, status domain.OrderStatus) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, r.db.Rebind(`SELECT COUNT(*) FROM orders WHERE status = ?`), status); err != nil {
		return 0, wrap("count orders", err)
	}
	return n, nil
}

func (r *OrderRepo) Get(ctx context.Context, orderID string) (*domain.Order, error) {
	var o domain.Order
	if err := r.db.GetContext(ctx, &o, r.db.Rebind(`SELECT `+orderCols+` FROM orders WHERE order_id = ?`), orderID); err != nil {
		return nil, wrap("get order", err)
	}
	if err := r.loadItems(ctx, r.db, []*domain.Order{&o}); err != nil {
		return nil, err
	}
	return &o, nil
}

// Window returns the orders created in [from, to], oldest first, with lines.
// Bounds are TimeLayout strings.
func (r *OrderRepo) Window(ctx context.Context, from, to string) ([]domain.Order, error) {
	var out []domain.Order
	if err := r.db.SelectContext(ctx, &out, r.db.Rebind(`
		SELECT `+orderCols+` FROM orders
		WHERE created_at >= ? AND created_at <= ?
		ORDER BY seq
	`), from, to); err != nil {
		return nil, wrap("order window", err)
	}
	if err := r.loadItems(ctx, r.db, ptrs(out)); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *OrderRepo) loadItems(ctx context.Context, q sqlx.QueryerContext, orders []*domain.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, len(orders))
	byID := make(map[string]*domain.Order, len(orders))
	for i, o := range orders {
		ids[i] = o.OrderID
		byID[o.OrderID] = o
		o.Items = []domain.OrderLine{}
	}
	query, args, err := sqlx.In(`
		SELECT order_id, position, product_id, name, image, price, quantity
		FROM order_items
		WHERE order_id IN (?)
		ORDER BY order_id, position
	`, ids)
	if err != nil {
		return wrap("order items", err)
	}
	var lines []domain.OrderLine
	if err := sqlx.SelectContext(ctx, q, &lines, r.db.Rebind(query), args...); err != nil {
		return wrap("order items", err)
	}
	for _, l := range lines {
		if o := byID[l.OrderID]; o != nil {
			o.Items = append(o.Items, l)
		}
	}
	return nil
}

func ptrs(orders []domain.Order) []*domain.Order {
	out := make([]*domain.Order, len(orders))
	for i := range orders {
		out[i] = &orders[i]
	}
	return out
}

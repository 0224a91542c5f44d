package domain

import "github.com/shopspring/decimal"

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderCompleted, OrderCancelled:
		return true
	}
	return false
}

// Order is a durable record: lines and total are snapshots taken at creation
// and are never recomputed from the catalog.
type Order struct {
	Seq     int64           `db:"seq" json:"-"`
	OrderID string          `db:"order_id" json:"orderId"`
	Email   string          `db:"email" json:"email"`
	Name    string          `db:"name" json:"name"`
	Address string          `db:"address" json:"address"`
	Phone   string          `db:"phone" json:"phone"`
	Items   []OrderLine     `db:"-" json:"items"`
	Total   decimal.Decimal `db:"total" json:"total"`
	Status  OrderStatus     `db:"status" json:"status"`
	Note    string          `db:"note" json:"note"`
	Date    string          `db:"created_at" json:"date"`
}

type OrderLine struct {
	OrderID   string          `db:"order_id" json:"-"`
	Position  int             `db:"position" json:"-"`
	ProductID string          `db:"product_id" json:"productId"`
	Name      string          `db:"name" json:"name"`
	Image     string          `db:"image" json:"image"`
	Price     decimal.Decimal `db:"price" json:"price"`
	Quantity  int             `db:"quantity" json:"quantity"`
}

// Subtotal is price * quantity for the line.
func (l OrderLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

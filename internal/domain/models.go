package domain

import (
	"github.com/shopspring/decimal"
)

// TimeLayout is the fixed-width UTC layout used for every stored timestamp, so
// that string comparison in SQL orders the same way as time comparison.
const TimeLayout = "2006-01-02T15:04:05.000000Z"

const (
	DefaultCategory = "Cosmetic"
	DefaultImage    = "/default-product.png"
)

type Product struct {
	ProductID     string          `db:"product_id" json:"productId"`
	Name          string          `db:"name" json:"name"`
	AltNames      StringList      `db:"alt_names" json:"altNames"`
	LabelledPrice decimal.Decimal `db:"labelled_price" json:"labelledPrice"`
	Price         decimal.Decimal `db:"price" json:"price"`
	Images        StringList      `db:"images" json:"images"`
	Description   string          `db:"description" json:"description"`
	Stock         int             `db:"stock" json:"stock"`
	IsAvailable   bool            `db:"is_available" json:"isAvailable"`
	Category      string          `db:"category" json:"category"`
	CreatedAt     string          `db:"created_at" json:"createdAt"`
}

// FirstImage is the canonical display image, or "" when the product has none.
func (p Product) FirstImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

type Availability struct {
	ProductID   string `json:"productId"`
	Status      string `json:"status"` // IN_STOCK | LOW_STOCK | OUT_OF_STOCK
	Qty         int    `json:"qty"`
	IsAvailable bool   `json:"isAvailable"`
}

type Review struct {
	ID        string `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	Email     string `db:"email" json:"email"`
	Product   string `db:"product" json:"product"`
	Title     string `db:"title" json:"title"`
	Review    string `db:"review" json:"review"`
	Rating    int    `db:"rating" json:"rating"`
	Date      string `db:"date" json:"date"`
	CreatedAt string `db:"created_at" json:"-"`
}

type Contact struct {
	ID        string `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	Email     string `db:"email" json:"email"`
	Phone     string `db:"phone" json:"phone"`
	Subject   string `db:"subject" json:"subject"`
	Message   string `db:"message" json:"message"`
	CreatedAt string `db:"created_at" json:"createdAt"`
}

type DashboardStats struct {
	TotalProducts int `json:"totalProducts"`
	TotalUsers    int `json:"totalUsers"`
	TotalOrders   int `json:"totalOrders"`
	PendingOrders int `json:"pendingOrders"`
}

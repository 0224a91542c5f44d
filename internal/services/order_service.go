package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"cosmetica/internal/apperr"
	"cosmetica/internal/domain"
	"cosmetica/internal/repos"
)

// ProductLookup resolves a catalog entry by its public product id.
type ProductLookup interface {
	Get(ctx context.Context, productID string) (*domain.Product, error)
}

type OrderItemRequest struct {
	ProductID string   `json:"productId"`
	Quantity  Quantity `json:"quantity"`
}

// Quantity decodes any JSON number. Fractions, out of range values and
// non-numbers decode to zero so the item fails the quantity check instead
// of the whole payload.
type Quantity int

func (q *Quantity) UnmarshalJSON(b []byte) error {
	*q = 0
	f, err := strconv.ParseFloat(string(bytes.TrimSpace(b)), 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return nil
	}
	*q = Quantity(f)
	return nil
}

// Text holds a free-form field that clients send either as a string or as a
// bare number or boolean. Numbers keep their literal spelling; null is empty.
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || string(b) == "null":
		*t = ""
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(s)
	case b[0] == '{' || b[0] == '[':
		return fmt.Errorf("expected text, got %s", b[:1])
	default:
		*t = Text(b)
	}
	return nil
}

// CreateOrderRequest is the client payload. Items stays raw so that a
// missing or non-array value can be told apart from a decode failure.
type CreateOrderRequest struct {
	Address Text            `json:"address"`
	Phone   Text            `json:"phone"`
	Items   json.RawMessage `json:"items"`
}

type OrderPage struct {
	Orders      []domain.Order `json:"orders"`
	TotalPages  int            `json:"totalPages"`
	CurrentPage int            `json:"currentPage"`
	TotalOrders int            `json:"totalOrders"`
	HasNextPage bool           `json:"hasNextPage"`
	HasPrevPage bool           `json:"hasPrevPage"`
}

type OrderService struct {
	Products ProductLookup
	Orders   *repos.OrderRepo
	Outbox   *repos.OutboxRepo

	ids *OrderIDAllocator
	now func() time.Time
}

func NewOrderService(products ProductLookup, orders *repos.OrderRepo, outbox *repos.OutboxRepo) *OrderService {
	return &OrderService{
		Products: products,
		Orders:   orders,
		Outbox:   outbox,
		ids:      NewOrderIDAllocator(orders),
		now:      time.Now,
	}
}

func parseItems(raw json.RawMessage) ([]OrderItemRequest, error) {
	invalid := apperr.InvalidRequest("Invalid items format")
	raw = bytes.TrimSpace(raw)
	// rejects missing, null, objects and scalars
	if len(raw) == 0 || raw[0] != '[' {
		return nil, invalid
	}
	var items []OrderItemRequest
	if err := json.Unmarshal(raw, &items); err != nil || len(items) == 0 {
		return nil, invalid
	}
	return items, nil
}

// Create validates, prices and persists a new order and returns its id.
// Nothing is written unless every item resolves.
func (s *OrderService) Create(ctx context.Context, requester *domain.User, req CreateOrderRequest) (string, error) {
	if requester == nil {
		return "", apperr.Unauthenticated("Please login to create an order")
	}
	items, err := parseItems(req.Items)
	if err != nil {
		return "", err
	}

	order := &domain.Order{
		Email:   requester.Email,
		Name:    requester.FullName(),
		Address: string(req.Address),
		Phone:   string(req.Phone),
		Items:   make([]domain.OrderLine, 0, len(items)),
		Total:   decimal.Zero,
		Status:  domain.OrderPending,
	}
	for _, it := range items {
		if it.Quantity < 1 {
			return "", apperr.InvalidRequest("Invalid quantity for product: " + it.ProductID)
		}
		p, err := s.Products.Get(ctx, it.ProductID)
		if errors.Is(err, repos.ErrNotFound) {
			return "", apperr.InvalidRequest("Invalid product ID: " + it.ProductID)
		}
		if err != nil {
			return "", apperr.Internal(err)
		}
		line := domain.OrderLine{
			ProductID: p.ProductID,
			Name:      p.Name,
			Image:     p.FirstImage(),
			Price:     p.Price,
			Quantity:  int(it.Quantity),
		}
		order.Items = append(order.Items, line)
		order.Total = order.Total.Add(line.Subtotal())
	}

	err = s.Orders.WithTx(ctx, func(tx *sqlx.Tx) error {
		id, err := s.ids.Next(ctx, tx)
		if err != nil {
			return err
		}
		order.OrderID = id
		order.Date = s.now().UTC().Format(domain.TimeLayout)
		if err := s.Orders.InsertTx(ctx, tx, order); err != nil {
			return err
		}
		return s.emit(ctx, tx, domain.EventOrderCreated, order)
	})
	if err != nil {
		return "", apperr.Internal(err)
	}
	return order.OrderID, nil
}

func (s *OrderService) emit(ctx context.Context, tx *sqlx.Tx, eventType string, o *domain.Order) error {
	if s.Outbox == nil {
		return nil
	}
	msg, err := domain.NewOrderEvent(eventType, o, s.now())
	if err != nil {
		return err
	}
	return s.Outbox.CreateTx(ctx, tx, msg)
}

// List pages through the requester's orders, or every order for admins.
func (s *OrderService) List(ctx context.Context, requester *domain.User, page, limit int) (OrderPage, error) {
	if requester == nil {
		return OrderPage{}, apperr.Unauthenticated("Please login to view orders")
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	email := requester.Email
	if requester.IsAdmin() {
		email = ""
	}

	total, err := s.Orders.Count(ctx, email)
	if err != nil {
		return OrderPage{}, apperr.Internal(err)
	}
	orders, err := s.Orders.List(ctx, email, limit, (page-1)*limit)
	if err != nil {
		return OrderPage{}, apperr.Internal(err)
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	pages := int(math.Ceil(float64(total) / float64(limit)))
	return OrderPage{
		Orders:      orders,
		TotalPages:  pages,
		CurrentPage: page,
		TotalOrders: total,
		HasNextPage: page < pages,
		HasPrevPage: page > 1,
	}, nil
}

// Get returns an order visible to the requester. Orders belonging to someone
// else are reported as not found.
func (s *OrderService) Get(ctx context.Context, requester *domain.User, orderID string) (*domain.Order, error) {
	if requester == nil {
		return nil, apperr.Unauthenticated("Please login to view orders")
	}
	o, err := s.Orders.Get(ctx, orderID)
	if errors.Is(err, repos.ErrNotFound) {
		return nil, apperr.NotFound("Order not found")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if !requester.IsAdmin() && !strings.EqualFold(o.Email, requester.Email) {
		return nil, apperr.NotFound("Order not found")
	}
	return o, nil
}

// UpdateStatus is the admin transition of an order's status and note.
func (s *OrderService) UpdateStatus(ctx context.Context, requester *domain.User, orderID string, status domain.OrderStatus, note string) (*domain.Order, error) {
	if requester == nil {
		return nil, apperr.Unauthenticated("Please login to update orders")
	}
	if !requester.IsAdmin() {
		return nil, apperr.Forbidden("You are not authorized to update orders")
	}
	if !status.Valid() {
		return nil, apperr.InvalidRequest("Invalid order status")
	}

	var updated *domain.Order
	err := s.Orders.WithTx(ctx, func(tx *sqlx.Tx) error {
		o, err := s.Orders.UpdateStatusTx(ctx, tx, orderID, status, note)
		if err != nil {
			return err
		}
		updated = o
		return s.emit(ctx, tx, domain.EventOrderUpdated, o)
	})
	if errors.Is(err, repos.ErrNotFound) {
		return nil, apperr.NotFound("Order not found")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return updated, nil
}

package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
)

const (
	orderIDPrefix  = "CBC"
	orderIDSeed    = 202
	orderIDCounter = "order_id"
)

// FormatOrderID renders n as CBC followed by at least five digits.
func FormatOrderID(n int64) string {
	return fmt.Sprintf("%s%05d", orderIDPrefix, n)
}

// ParseOrderID extracts the numeric part of a CBC id.
func ParseOrderID(id string) (int64, error) {
	digits, ok := strings.CutPrefix(id, orderIDPrefix)
	if !ok || digits == "" {
		return 0, fmt.Errorf("malformed order id %q", id)
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("malformed order id %q", id)
		}
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed order id %q: %w", id, err)
	}
	return n, nil
}

// counterStore is the part of OrderRepo the allocator drives.
type counterStore interface {
	BumpCounter(ctx context.Context, tx *sqlx.Tx, name string) (int64, bool, error)
	InitCounter(ctx context.Context, tx *sqlx.Tx, name string, value int64) (bool, error)
	LatestOrderIDTx(ctx context.Context, tx *sqlx.Tx) (string, error)
}

// OrderIDAllocator hands out order ids from a counter row that is updated in
// the same transaction as the order insert.
type OrderIDAllocator struct {
	store counterStore
}

func NewOrderIDAllocator(store counterStore) *OrderIDAllocator {
	return &OrderIDAllocator{store: store}
}

// Next returns the next id. The first call on a database without a counter
// bootstraps it from the latest order, or from the seed when there is none.
func (a *OrderIDAllocator) Next(ctx context.Context, tx *sqlx.Tx) (string, error) {
	for attempt := 0; attempt < 3; attempt++ {
		n, ok, err := a.store.BumpCounter(ctx, tx, orderIDCounter)
		if err != nil {
			return "", err
		}
		if ok {
			return FormatOrderID(n), nil
		}

		start := int64(orderIDSeed)
		latest, err := a.store.LatestOrderIDTx(ctx, tx)
		if err != nil {
			return "", err
		}
		if latest != "" {
			prev, err := ParseOrderID(latest)
			if err != nil {
				return "", err
			}
			start = prev + 1
		}
		created, err := a.store.InitCounter(ctx, tx, orderIDCounter, start)
		if err != nil {
			return "", err
		}
		if created {
			return FormatOrderID(start), nil
		}
		// another transaction created the counter first; bump it instead
	}
	return "", fmt.Errorf("order id counter unavailable")
}

package services_test

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"cosmetica/internal/apperr"
	"cosmetica/internal/domain"
	"cosmetica/internal/repos"
	"cosmetica/internal/services"
)

func TestCreateOrder_EndToEnd(t *testing.T) {
	db := memdb(t)
	ctx := context.Background()
	addProduct(t, db, "P1", "Widget", "10.00", "img1.png")
	jane := addUser(t, db, "u-a", "a@b.com", "Jane", "Doe", domain.RoleUser)

	svc := newOrderService(db)
	id, err := svc.Create(ctx, jane, items(`[{"productId":"P1","quantity":3}]`))
	require.NoError(t, err)
	assert.Equal(t, "CBC00202", id)

	o, err := svc.Get(ctx, jane, id)
	require.NoError(t, err)
	assert.True(t, o.Total.Equal(decimal.RequireFromString("30.00")), o.Total.String())
	assert.Equal(t, "a@b.com", o.Email)
	assert.Equal(t, "Jane Doe", o.Name)
	assert.Equal(t, "221B Baker St", o.Address)
	assert.Equal(t, "555-0100", o.Phone)
	assert.Equal(t, domain.OrderPending, o.Status)
	require.Len(t, o.Items, 1)
	line := o.Items[0]
	assert.Equal(t, "P1", line.ProductID)
	assert.Equal(t, "Widget", line.Name)
	assert.Equal(t, "img1.png", line.Image)
	assert.True(t, line.Price.Equal(decimal.RequireFromString("10")))
	assert.Equal(t, 3, line.Quantity)

	id, err = svc.Create(ctx, jane, items(`[{"productId":"P1","quantity":1}]`))
	require.NoError(t, err)
	assert.Equal(t, "CBC00203", id)
}

func TestCreateOrder_TotalIsExactDecimalSum(t *testing.T) {
	db := memdb(t)
	addProduct(t, db, "A", "Alpha", "0.10")
	addProduct(t, db, "B", "Beta", "0.20")
	u := addUser(t, db, "u-a", "a@b.com", "Jane", "Doe", domain.RoleUser)

	svc := newOrderService(db)
	id, err := svc.Create(context.Background(), u, items(`[{"productId":"A","quantity":1},{"productId":"B","quantity":1},{"productId":"A","quantity":2}]`))
	require.NoError(t, err)

	o, err := svc.Get(context.Background(), u, id)
	require.NoError(t, err)
	assert.Equal(t, "0.5", o.Total.String())
	require.Len(t, o.Items, 3)
	assert.Equal(t, []string{"A", "B", "A"}, []string{o.Items[0].ProductID, o.Items[1].ProductID, o.Items[2].ProductID})
}

type countingLookup struct {
	services.ProductLookup
	calls int
}

func (c *countingLookup) Get(ctx context.Context, id string) (*domain.Product, error) {
	c.calls++
	return c.ProductLookup.Get(ctx, id)
}

func TestCreateOrder_AnonymousRejectedBeforeLookup(t *testing.T) {
	db := memdb(t)
	lookup := &countingLookup{ProductLookup: repos.NewProductRepo(db)}
	svc := services.NewOrderService(lookup, repos.NewOrderRepo(db), repos.NewOutboxRepo(db))

	_, err := svc.Create(context.Background(), nil, items(`[{"productId":"COS-SRM-001","quantity":1}]`))
	require.Error(t, err)
	assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err))
	assert.Zero(t, lookup.calls)

	n, err := repos.NewOrderRepo(db).Count(context.Background(), "")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCreateOrder_InvalidItemsFormat(t *testing.T) {
	db := memdb(t)
	lookup := &countingLookup{ProductLookup: repos.NewProductRepo(db)}
	svc := services.NewOrderService(lookup, repos.NewOrderRepo(db), repos.NewOutboxRepo(db))
	u := admin(t, db)

	for _, raw := range []string{``, `null`, `{"productId":"x"}`, `"items"`, `42`, `[]`, `[1,2]`} {
		_, err := svc.Create(context.Background(), u, items(raw))
		require.Error(t, err, raw)
		var ae *apperr.Error
		require.ErrorAs(t, err, &ae)
		assert.Equal(t, "Invalid items format", ae.Message, raw)
	}
	assert.Zero(t, lookup.calls)
}

func TestCreateOrder_UnknownProductWritesNothing(t *testing.T) {
	db := memdb(t)
	ctx := context.Background()
	u := admin(t, db)
	svc := newOrderService(db)

	_, err := svc.Create(ctx, u, items(`[{"productId":"COS-SRM-001","quantity":1},{"productId":"NOPE","quantity":1}]`))
	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, apperr.KindInvalidRequest, ae.Kind)
	assert.Equal(t, "Invalid product ID: NOPE", ae.Message)

	n, err := repos.NewOrderRepo(db).Count(ctx, "")
	require.NoError(t, err)
	assert.Zero(t, n)
	pending, err := repos.NewOutboxRepo(db).Pending(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	// the failed attempt must not consume an id
	id, err := svc.Create(ctx, u, items(`[{"productId":"COS-SRM-001","quantity":1}]`))
	require.NoError(t, err)
	assert.Equal(t, "CBC00202", id)
}

func TestCreateOrder_RejectsNonPositiveQuantity(t *testing.T) {
	db := memdb(t)
	svc := newOrderService(db)
	_, err := svc.Create(context.Background(), admin(t, db), items(`[{"productId":"COS-SRM-001","quantity":0}]`))
	assert.Equal(t, apperr.KindInvalidRequest, apperr.KindOf(err))
}

func TestCreateOrder_SnapshotSurvivesCatalogChanges(t *testing.T) {
	db := memdb(t)
	ctx := context.Background()
	addProduct(t, db, "P1", "Widget", "10.00", "img1.png")
	u := admin(t, db)
	svc := newOrderService(db)

	id, err := svc.Create(ctx, u, items(`[{"productId":"P1","quantity":2}]`))
	require.NoError(t, err)

	prods := repos.NewProductRepo(db)
	p, err := prods.Get(ctx, "P1")
	require.NoError(t, err)
	p.Name = "Widget v2"
	p.Price = decimal.RequireFromString("99.99")
	p.Images = domain.StringList{"new.png"}
	require.NoError(t, prods.Update(ctx, p))

	o, err := svc.Get(ctx, u, id)
	require.NoError(t, err)
	assert.Equal(t, "Widget", o.Items[0].Name)
	assert.Equal(t, "img1.png", o.Items[0].Image)
	assert.True(t, o.Total.Equal(decimal.NewFromInt(20)))
}

func TestCreateOrder_ContinuesFromExistingOrders(t *testing.T) {
	db := memdb(t)
	ctx := context.Background()
	_, err := db.Exec(`INSERT INTO orders(order_id, email, name, total, created_at) VALUES('CBC99999', 'x@y.io', 'X', '1', '2024-01-01T00:00:00.000000Z')`)
	require.NoError(t, err)

	id, err := newOrderService(db).Create(ctx, admin(t, db), items(`[{"productId":"COS-SRM-001","quantity":1}]`))
	require.NoError(t, err)
	assert.Equal(t, "CBC100000", id)
}

func TestCreateOrder_MalformedPreviousIDIsInternal(t *testing.T) {
	db := memdb(t)
	_, err := db.Exec(`INSERT INTO orders(order_id, email, name, total, created_at) VALUES('LEGACY-7', 'x@y.io', 'X', '1', '2024-01-01T00:00:00.000000Z')`)
	require.NoError(t, err)

	_, err = newOrderService(db).Create(context.Background(), admin(t, db), items(`[{"productId":"COS-SRM-001","quantity":1}]`))
	require.Error(t, err)
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
}

func TestCreateOrder_ConcurrentCallsGetDistinctIDs(t *testing.T) {
	db := filedb(t)
	svc := newOrderService(db)
	u := admin(t, db)

	const n = 20
	var (
		mu  sync.Mutex
		ids = map[string]bool{}
	)
	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < n; i++ {
		g.Go(func() error {
			id, err := svc.Create(ctx, u, items(`[{"productId":"COS-SRM-001","quantity":1}]`))
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			if ids[id] {
				return fmt.Errorf("duplicate id %s", id)
			}
			ids[id] = true
			return nil
		})
	}
	require.NoError(t, g.Wait())
	require.Len(t, ids, n)
	for i := 0; i < n; i++ {
		assert.True(t, ids[services.FormatOrderID(int64(202+i))], "missing %s", services.FormatOrderID(int64(202+i)))
	}
}

func TestListOrders_ScopesAndPages(t *testing.T) {
	db := memdb(t)
	ctx := context.Background()
	svc := newOrderService(db)
	jane, err := repos.NewUserRepo(db).ByID(ctx, "u-jane")
	require.NoError(t, err)
	adm := admin(t, db)

	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, jane, items(`[{"productId":"COS-LIP-001","quantity":1}]`))
		require.NoError(t, err)
	}
	_, err = svc.Create(ctx, adm, items(`[{"productId":"COS-LIP-001","quantity":1}]`))
	require.NoError(t, err)

	page, err := svc.List(ctx, jane, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, page.TotalOrders)
	assert.Equal(t, 2, page.TotalPages)
	assert.True(t, page.HasNextPage)
	assert.False(t, page.HasPrevPage)
	require.Len(t, page.Orders, 2)
	assert.Equal(t, "CBC00204", page.Orders[0].OrderID, "newest first")

	page, err = svc.List(ctx, adm, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 4, page.TotalOrders)
	assert.Equal(t, 1, page.TotalPages)

	_, err = svc.List(ctx, nil, 1, 10)
	assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err))

	// someone else's order is invisible
	_, err = svc.Get(ctx, jane, "CBC00205")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestUpdateOrderStatus(t *testing.T) {
	db := memdb(t)
	ctx := context.Background()
	svc := newOrderService(db)
	adm := admin(t, db)
	jane, err := repos.NewUserRepo(db).ByID(ctx, "u-jane")
	require.NoError(t, err)

	id, err := svc.Create(ctx, jane, items(`[{"productId":"COS-CRM-001","quantity":1}]`))
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, jane, id, domain.OrderCompleted, "")
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	_, err = svc.UpdateStatus(ctx, adm, id, "shipped", "")
	assert.Equal(t, apperr.KindInvalidRequest, apperr.KindOf(err))

	_, err = svc.UpdateStatus(ctx, adm, "CBC09999", domain.OrderCompleted, "")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	o, err := svc.UpdateStatus(ctx, adm, id, domain.OrderCompleted, "left at door")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderCompleted, o.Status)
	assert.Equal(t, "left at door", o.Note)
	assert.Len(t, o.Items, 1)

	msgs, err := repos.NewOutboxRepo(db).Pending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, domain.EventOrderCreated, msgs[0].EventType)
	assert.Equal(t, domain.EventOrderUpdated, msgs[1].EventType)
	assert.Equal(t, id, msgs[1].AggregateID)
}

func TestCreateOrderRequestDecoding(t *testing.T) {
	var req services.CreateOrderRequest
	require.NoError(t, json.Unmarshal([]byte(`{"address":null,"phone":5550100,"items":[]}`), &req))
	assert.Equal(t, services.Text(""), req.Address)
	assert.Equal(t, services.Text("5550100"), req.Phone)

	require.Error(t, json.Unmarshal([]byte(`{"phone":["555"]}`), &req))

	for raw, want := range map[string]services.Quantity{
		`2`: 2, `2.0`: 2, `1e1`: 10, `1.5`: 0, `"2"`: 0, `true`: 0, `-3`: -3, `1e12`: 0,
	} {
		var q services.Quantity
		require.NoError(t, json.Unmarshal([]byte(raw), &q), raw)
		assert.Equal(t, want, q, raw)
	}
}

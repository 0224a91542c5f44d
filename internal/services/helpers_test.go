package services_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"cosmetica/internal/domain"
	"cosmetica/internal/repos"
	"cosmetica/internal/services"
)

func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// filedb is used where real concurrent connections matter.
func filedb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repos.OpenDB(filepath.Join(t.TempDir(), "cosmetica.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newOrderService(db *sqlx.DB) *services.OrderService {
	return services.NewOrderService(repos.NewProductRepo(db), repos.NewOrderRepo(db), repos.NewOutboxRepo(db))
}

func addProduct(t *testing.T, db *sqlx.DB, id, name, price string, images ...string) {
	t.Helper()
	err := repos.NewProductRepo(db).Create(context.Background(), &domain.Product{
		ProductID:     id,
		Name:          name,
		Price:         decimal.RequireFromString(price),
		LabelledPrice: decimal.RequireFromString(price),
		Images:        domain.StringList(images),
		IsAvailable:   true,
		Category:      domain.DefaultCategory,
	})
	require.NoError(t, err)
}

func addUser(t *testing.T, db *sqlx.DB, id, email, first, last, role string) *domain.User {
	t.Helper()
	u := &domain.User{ID: id, Email: email, FirstName: first, LastName: last, Hash: "x", Role: role}
	require.NoError(t, repos.NewUserRepo(db).Create(context.Background(), u))
	return u
}

func admin(t *testing.T, db *sqlx.DB) *domain.User {
	t.Helper()
	u, err := repos.NewUserRepo(db).ByID(context.Background(), "u-admin")
	require.NoError(t, err)
	return u
}

func items(s string) services.CreateOrderRequest {
	return services.CreateOrderRequest{Address: "221B Baker St", Phone: "555-0100", Items: []byte(s)}
}

func reviewInput(name, text string, rating int) domain.Review {
	return domain.Review{Name: name, Review: text, Rating: rating, Product: "COS-SRM-001"}
}

func contactInput(name, email, subject, msg string) domain.Contact {
	return domain.Contact{Name: name, Email: email, Subject: subject, Message: msg}
}

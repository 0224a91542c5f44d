package repos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"cosmetica/internal/domain"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record already exists")
)

// OpenDB connects, applies the schema and seeds demo data. Tests pass ":memory:".
func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := Connect(dsn)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	if err := Seed(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func isPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// Connect opens SQLite by default, or Postgres for postgres:// DSNs.
func Connect(dsn string) (*sqlx.DB, error) {
	if isPostgres(dsn) {
		db, err := sqlx.Open("postgres", dsn)
		if err != nil {
			return nil, err
		}
		if err := db.Ping(); err != nil {
			db.Close()
			return nil, err
		}
		return db, nil
	}

	memory := dsn == ":memory:"
	if !memory {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		// immediate transactions take the write lock up front, so two order
		// creations never both read the counter before either writes it.
		dsn += sep + "_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_txlock=immediate"
	}
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if memory {
		// every connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
		if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
			db.Close()
			return nil, err
		}
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Migrate creates missing tables. Safe to run on every start.
func Migrate(db *sqlx.DB) error {
	schema := sqliteSchema
	if db.DriverName() == "postgres" {
		schema = postgresSchema
	}
	for _, stmt := range strings.Split(schema, ";\n") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS users(
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('user','admin')),
  is_blocked INTEGER NOT NULL DEFAULT 0,
  is_email_verified INTEGER NOT NULL DEFAULT 0,
  image TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(LOWER(email));

CREATE TABLE IF NOT EXISTS sessions(
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  created_at TEXT NOT NULL,
  expires_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);

CREATE TABLE IF NOT EXISTS products(
  product_id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  alt_names TEXT NOT NULL DEFAULT '[]',
  labelled_price TEXT NOT NULL,
  price TEXT NOT NULL,
  images TEXT NOT NULL DEFAULT '[]',
  description TEXT NOT NULL DEFAULT '',
  stock INTEGER NOT NULL DEFAULT 0,
  is_available INTEGER NOT NULL DEFAULT 1,
  category TEXT NOT NULL DEFAULT 'Cosmetic',
  created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_products_name ON products(LOWER(name));
CREATE INDEX IF NOT EXISTS idx_products_category ON products(category);

CREATE TABLE IF NOT EXISTS orders(
  seq INTEGER PRIMARY KEY AUTOINCREMENT,
  order_id TEXT NOT NULL UNIQUE,
  email TEXT NOT NULL,
  name TEXT NOT NULL,
  address TEXT NOT NULL DEFAULT '',
  phone TEXT NOT NULL DEFAULT '',
  total TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending','completed','cancelled')),
  note TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_orders_email ON orders(email);
CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at);

CREATE TABLE IF NOT EXISTS order_items(
  order_id TEXT NOT NULL REFERENCES orders(order_id) ON DELETE CASCADE,
  position INTEGER NOT NULL,
  product_id TEXT NOT NULL,
  name TEXT NOT NULL,
  image TEXT NOT NULL DEFAULT '',
  price TEXT NOT NULL,
  quantity INTEGER NOT NULL CHECK (quantity > 0),
  PRIMARY KEY (order_id, position)
);

CREATE TABLE IF NOT EXISTS counters(
  name TEXT PRIMARY KEY,
  value INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS outbox_messages(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  event_type TEXT NOT NULL,
  payload BLOB NOT NULL,
  created_at TEXT NOT NULL,
  processed_at TEXT,
  processing_attempts INTEGER NOT NULL DEFAULT 0,
  last_error TEXT,
  status TEXT NOT NULL DEFAULT 'pending',
  claimed_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_outbox_status ON outbox_messages(status, created_at);

CREATE TABLE IF NOT EXISTS reviews(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT NOT NULL DEFAULT '',
  product TEXT NOT NULL DEFAULT '',
  title TEXT NOT NULL DEFAULT '',
  review TEXT NOT NULL,
  rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
  date TEXT NOT NULL,
  created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS contacts(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT NOT NULL,
  phone TEXT NOT NULL DEFAULT '',
  subject TEXT NOT NULL,
  message TEXT NOT NULL,
  created_at TEXT NOT NULL
);
`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS users(
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('user','admin')),
  is_blocked BOOLEAN NOT NULL DEFAULT FALSE,
  is_email_verified BOOLEAN NOT NULL DEFAULT FALSE,
  image TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(LOWER(email));

CREATE TABLE IF NOT EXISTS sessions(
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  created_at TEXT NOT NULL,
  expires_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);

CREATE TABLE IF NOT EXISTS products(
  product_id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  alt_names TEXT NOT NULL DEFAULT '[]',
  labelled_price NUMERIC NOT NULL,
  price NUMERIC NOT NULL,
  images TEXT NOT NULL DEFAULT '[]',
  description TEXT NOT NULL DEFAULT '',
  stock INTEGER NOT NULL DEFAULT 0,
  is_available BOOLEAN NOT NULL DEFAULT TRUE,
  category TEXT NOT NULL DEFAULT 'Cosmetic',
  created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_products_name ON products(LOWER(name));
CREATE INDEX IF NOT EXISTS idx_products_category ON products(category);

CREATE TABLE IF NOT EXISTS orders(
  seq BIGSERIAL PRIMARY KEY,
  order_id TEXT NOT NULL UNIQUE,
  email TEXT NOT NULL,
  name TEXT NOT NULL,
  address TEXT NOT NULL DEFAULT '',
  phone TEXT NOT NULL DEFAULT '',
  total NUMERIC NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending','completed','cancelled')),
  note TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_orders_email ON orders(email);
CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at);

CREATE TABLE IF NOT EXISTS order_items(
  order_id TEXT NOT NULL REFERENCES orders(order_id) ON DELETE CASCADE,
  position INTEGER NOT NULL,
  product_id TEXT NOT NULL,
  name TEXT NOT NULL,
  image TEXT NOT NULL DEFAULT '',
  price NUMERIC NOT NULL,
  quantity INTEGER NOT NULL CHECK (quantity > 0),
  PRIMARY KEY (order_id, position)
);

CREATE TABLE IF NOT EXISTS counters(
  name TEXT PRIMARY KEY,
  value BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS outbox_messages(
  id BIGSERIAL PRIMARY KEY,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  event_type TEXT NOT NULL,
  payload BYTEA NOT NULL,
  created_at TEXT NOT NULL,
  processed_at TEXT,
  processing_attempts INTEGER NOT NULL DEFAULT 0,
  last_error TEXT,
  status TEXT NOT NULL DEFAULT 'pending',
  claimed_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_outbox_status ON outbox_messages(status, created_at);

CREATE TABLE IF NOT EXISTS reviews(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT NOT NULL DEFAULT '',
  product TEXT NOT NULL DEFAULT '',
  title TEXT NOT NULL DEFAULT '',
  review TEXT NOT NULL,
  rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
  date TEXT NOT NULL,
  created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS contacts(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT NOT NULL,
  phone TEXT NOT NULL DEFAULT '',
  subject TEXT NOT NULL,
  message TEXT NOT NULL,
  created_at TEXT NOT NULL
);
`

// Seed inserts the demo catalog and accounts. Idempotent.
func Seed(db *sqlx.DB) error {
	ctx := context.Background()
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(domain.TimeLayout)

	hash, err := bcrypt.GenerateFromPassword([]byte("Passw0rd!"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	users := []domain.User{
		{ID: "u-admin", Email: "admin@cosmetica.test", FirstName: "Ada", LastName: "Admin", Role: domain.RoleAdmin},
		{ID: "u-jane", Email: "jane@cosmetica.test", FirstName: "Jane", LastName: "Doe", Role: domain.RoleUser},
	}
	for _, u := range users {
		u.Hash = string(hash)
		u.CreatedAt = now
		if _, err := tx.NamedExecContext(ctx, `
			INSERT INTO users(id, email, first_name, last_name, password_hash, role, is_blocked, is_email_verified, image, created_at)
			VALUES(:id, :email, :first_name, :last_name, :password_hash, :role, :is_blocked, :is_email_verified, :image, :created_at)
			ON CONFLICT DO NOTHING`, u); err != nil {
			return fmt.Errorf("seed users: %w", err)
		}
	}

	for _, p := range seedProducts() {
		p.CreatedAt = now
		if _, err := tx.NamedExecContext(ctx, `
			INSERT INTO products(product_id, name, alt_names, labelled_price, price, images, description, stock, is_available, category, created_at)
			VALUES(:product_id, :name, :alt_names, :labelled_price, :price, :images, :description, :stock, :is_available, :category, :created_at)
			ON CONFLICT(product_id) DO NOTHING`, p); err != nil {
			return fmt.Errorf("seed products: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	log.Println("[seed] demo catalog and accounts ensured")
	return nil
}

func seedProducts() []domain.Product {
	mk := func(id, name, category, labelled, price string, stock int, alt ...string) domain.Product {
		return domain.Product{
			ProductID:     id,
			Name:          name,
			AltNames:      domain.StringList(alt),
			LabelledPrice: decimal.RequireFromString(labelled),
			Price:         decimal.RequireFromString(price),
			Images:        domain.StringList{"/products/" + id + ".jpg"},
			Stock:         stock,
			IsAvailable:   true,
			Category:      category,
		}
	}
	return []domain.Product{
		mk("COS-SRM-001", "Vitamin C Serum", "Serum", "24.00", "19.50", 12, "brightening serum"),
		mk("COS-LIP-001", "Matte Lipstick", "Lipstick", "14.00", "11.25", 3, "lip colour"),
		mk("COS-CRM-001", "Night Cream", "Cream", "32.00", "27.00", 8),
		mk("COS-FWS-001", "Gentle Face Wash", "Face Wash", "12.00", "9.99", 20, "cleanser"),
		mk("COS-PWD-001", "Compact Powder", "Power", "18.00", "15.00", 0),
		mk("COS-TNR-001", "Rose Water Toner", domain.DefaultCategory, "10.00", "8.40", 6),
	}
}

// isUniqueViolation reports whether err is a unique or primary key conflict
// from either driver.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var sqErr *sqlite.Error
	if errors.As(err, &sqErr) {
		switch sqErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		case sqlite3.SQLITE_CONSTRAINT:
			return strings.Contains(sqErr.Error(), "UNIQUE")
		}
	}
	return false
}

// wrap maps driver errors onto the package sentinels.
func wrap(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case isUniqueViolation(err):
		return fmt.Errorf("%s: %w: %v", op, ErrConflict, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func nowString() string { return time.Now().UTC().Format(domain.TimeLayout) }

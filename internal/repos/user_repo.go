package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"cosmetica/internal/domain"
)

type UserRepo struct{ DB *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{DB: db} }

const userCols = `id, email, first_name, last_name, password_hash, role, is_blocked, is_email_verified, image, created_at`

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	if u.CreatedAt == "" {
		u.CreatedAt = nowString()
	}
	_, err := r.DB.NamedExecContext(ctx, `
		INSERT INTO users(`+userCols+`)
		VALUES(:id, :email, :first_name, :last_name, :password_hash, :role, :is_blocked, :is_email_verified, :image, :created_at)
	`, u)
	return wrap("create user", err)
}

func (r *UserRepo) ByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.DB.GetContext(ctx, &u, r.DB.Rebind(`SELECT `+userCols+` FROM users WHERE LOWER(email) = LOWER(?)`), email)
	if err != nil {
		return nil, wrap("user by email", err)
	}
	return &u, nil
}

func (r *UserRepo) ByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	err := r.DB.GetContext(ctx, &u, r.DB.Rebind(`SELECT `+userCols+` FROM users WHERE id = ?`), id)
	if err != nil {
		return nil, wrap("user by id", err)
	}
	return &u, nil
}

// List returns every account, newest first.
func (r *UserRepo) List(ctx context.Context) ([]domain.User, error) {
	out := []domain.User{}
	if err := r.DB.SelectContext(ctx, &out, `SELECT `+userCols+` FROM users ORDER BY created_at DESC, id`); err != nil {
		return nil, wrap("list users", err)
	}
	return out, nil
}

// Update writes profile fields, role and password hash.
func (r *UserRepo) Update(ctx context.Context, u *domain.User) error {
	res, err := r.DB.NamedExecContext(ctx, `
		UPDATE users SET
		  email = :email, first_name = :first_name, last_name = :last_name,
		  role = :role, image = :image, password_hash = :password_hash
		WHERE id = :id
	`, u)
	if err != nil {
		return wrap("update user", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return wrap("update user", ErrNotFound)
	}
	return nil
}

func (r *UserRepo) SetBlocked(ctx context.Context, id string, blocked bool) error {
	res, err := r.DB.ExecContext(ctx, r.DB.Rebind(`UPDATE users SET is_blocked = ? WHERE id = ?`), blocked, id)
	if err != nil {
		return wrap("block user", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return wrap("block user", ErrNotFound)
	}
	return nil
}

// Delete removes the account and its sessions. Orders are kept: they are
// keyed by e-mail, not by account.
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return wrap("delete user", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM sessions WHERE user_id = ?`), id); err != nil {
		return wrap("delete user sessions", err)
	}
	res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM users WHERE id = ?`), id)
	if err != nil {
		return wrap("delete user", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return wrap("delete user", ErrNotFound)
	}
	return wrap("delete user", tx.Commit())
}

// CountCustomers counts non-admin accounts.
func (r *UserRepo) CountCustomers(ctx context.Context) (int, error) {
	var n int
	if err := r.DB.GetContext(ctx, &n, r.DB.Rebind(`SELECT COUNT(*) FROM users WHERE role <> ?`), domain.RoleAdmin); err != nil {
		return 0, wrap("count users", err)
	}
	return n, nil
}

// ---------- sessions ----------

func (r *UserRepo) BindSession(ctx context.Context, sid, userID, expiresAt string) error {
	_, err := r.DB.ExecContext(ctx, r.DB.Rebind(`
		INSERT INTO sessions(id, user_id, created_at, expires_at) VALUES(?, ?, ?, ?)
	`), sid, userID, nowString(), expiresAt)
	return wrap("bind session", err)
}

// SessionUser resolves a session that has not expired at now.
func (r *UserRepo) SessionUser(ctx context.Context, sid, now string) (*domain.User, error) {
	var u domain.User
	err := r.DB.GetContext(ctx, &u, r.DB.Rebind(`
		SELECT u.id, u.email, u.first_name, u.last_name, u.password_hash, u.role,
		       u.is_blocked, u.is_email_verified, u.image, u.created_at
		FROM sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.id = ? AND s.expires_at > ?
	`), sid, now)
	if err != nil {
		return nil, wrap("session user", err)
	}
	return &u, nil
}

func (r *UserRepo) UnbindSession(ctx context.Context, sid string) error {
	_, err := r.DB.ExecContext(ctx, r.DB.Rebind(`DELETE FROM sessions WHERE id = ?`), sid)
	return wrap("unbind session", err)
}

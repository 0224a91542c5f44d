package domain

import "strings"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID              string `db:"id" json:"id"`
	Email           string `db:"email" json:"email"`
	FirstName       string `db:"first_name" json:"firstName"`
	LastName        string `db:"last_name" json:"lastName"`
	Hash            string `db:"password_hash" json:"-"`
	Role            string `db:"role" json:"role"`
	IsBlocked       bool   `db:"is_blocked" json:"isBlocked"`
	IsEmailVerified bool   `db:"is_email_verified" json:"isEmailVerified"`
	Image           string `db:"image" json:"image"`
	CreatedAt       string `db:"created_at" json:"createdAt"`
}

func (u *User) IsAdmin() bool { return u != nil && u.Role == RoleAdmin }

// FullName is the display name copied onto orders.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

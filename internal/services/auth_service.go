package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"cosmetica/internal/apperr"
	"cosmetica/internal/domain"
	"cosmetica/internal/repos"
)

const DefaultSessionTTL = 7 * 24 * time.Hour

var errBadToken = apperr.Forbidden("Unauthorized")

type AuthService struct {
	Users *repos.UserRepo
	TTL   time.Duration

	now func() time.Time
}

func NewAuthService(users *repos.UserRepo, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &AuthService{Users: users, TTL: ttl, now: time.Now}
}

type LoginResult struct {
	Token string
	User  *domain.User
}

// Login checks the credentials and opens a session.
func (s *AuthService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	u, err := s.Users.ByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, repos.ErrNotFound) {
		return LoginResult{}, apperr.InvalidRequest("User not found")
	}
	if err != nil {
		return LoginResult{}, apperr.Internal(err)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return LoginResult{}, apperr.Forbidden("Invalid password")
	}
	if u.IsBlocked {
		return LoginResult{}, apperr.Forbidden("Your account has been blocked")
	}
	sid := uuid.NewString()
	expires := s.now().Add(s.TTL).UTC().Format(domain.TimeLayout)
	if err := s.Users.BindSession(ctx, sid, u.ID, expires); err != nil {
		return LoginResult{}, apperr.Internal(err)
	}
	return LoginResult{Token: sid, User: u}, nil
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	if err := s.Users.UnbindSession(ctx, token); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// CurrentUser resolves a bearer token. Unknown, expired or blocked sessions
// are rejected with 403 Unauthorized.
func (s *AuthService) CurrentUser(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, errBadToken
	}
	u, err := s.Users.SessionUser(ctx, token, s.now().UTC().Format(domain.TimeLayout))
	if errors.Is(err, repos.ErrNotFound) {
		return nil, errBadToken
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if u.IsBlocked {
		return nil, errBadToken
	}
	return u, nil
}

// HashPassword is the bcrypt hash used for every stored password.
func HashPassword(raw string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"cosmetica/internal/apperr"
	"cosmetica/internal/domain"
	"cosmetica/internal/repos"
	"cosmetica/internal/validate"
)

type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Username  string `json:"username"`
	Role      string `json:"role"`
}

type UpdateUserRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Password  string `json:"password"`
}

type UserService struct {
	Users *repos.UserRepo
}

func NewUserService(users *repos.UserRepo) *UserService { return &UserService{Users: users} }

// splitUsername turns "Jane Mary Doe" into ("Jane", "Mary Doe").
func splitUsername(s string) (string, string) {
	first, last, _ := strings.Cut(strings.TrimSpace(s), " ")
	return first, strings.TrimSpace(last)
}

// Register creates an account. Only an admin requester may create another admin.
func (s *UserService) Register(ctx context.Context, requester *domain.User, req RegisterRequest) (*domain.User, error) {
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return nil, apperr.InvalidRequest("Email and password are required")
	}
	email, ok := validate.Email(req.Email)
	if !ok {
		return nil, apperr.InvalidRequest("Invalid email address")
	}
	if !validate.Password(req.Password) {
		return nil, apperr.InvalidRequest("Password must be between 8 and 72 characters")
	}

	first, last := strings.TrimSpace(req.FirstName), strings.TrimSpace(req.LastName)
	if (first == "" || last == "") && req.Username != "" {
		first, last = splitUsername(req.Username)
	}
	if first == "" || last == "" {
		return nil, apperr.InvalidRequest("First name and last name are required")
	}

	role := domain.RoleUser
	if req.Role == domain.RoleAdmin {
		if !requester.IsAdmin() {
			return nil, apperr.Forbidden("Only admins can create admin accounts")
		}
		role = domain.RoleAdmin
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	u := &domain.User{
		ID:        uuid.NewString(),
		Email:     email,
		FirstName: first,
		LastName:  last,
		Hash:      hash,
		Role:      role,
	}
	err = s.Users.Create(ctx, u)
	if errors.Is(err, repos.ErrConflict) {
		return nil, apperr.Conflict("Email already exists")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return u, nil
}

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	out, err := s.Users.List(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return out, nil
}

func (s *UserService) get(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.Users.ByID(ctx, id)
	if errors.Is(err, repos.ErrNotFound) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return u, nil
}

// Update changes profile fields. Empty fields keep their current value; a
// non-empty password is re-hashed.
func (s *UserService) Update(ctx context.Context, id string, req UpdateUserRequest) (*domain.User, error) {
	u, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if v := strings.TrimSpace(req.FirstName); v != "" {
		u.FirstName = v
	}
	if v := strings.TrimSpace(req.LastName); v != "" {
		u.LastName = v
	}
	if req.Email != "" {
		email, ok := validate.Email(req.Email)
		if !ok {
			return nil, apperr.InvalidRequest("Invalid email address")
		}
		u.Email = email
	}
	switch req.Role {
	case "":
	case domain.RoleUser, domain.RoleAdmin:
		u.Role = req.Role
	default:
		return nil, apperr.InvalidRequest("Invalid role")
	}
	if req.Password != "" {
		if !validate.Password(req.Password) {
			return nil, apperr.InvalidRequest("Password must be between 8 and 72 characters")
		}
		if u.Hash, err = HashPassword(req.Password); err != nil {
			return nil, apperr.Internal(err)
		}
	}

	err = s.Users.Update(ctx, u)
	if errors.Is(err, repos.ErrConflict) {
		return nil, apperr.Conflict("Email already exists")
	}
	if errors.Is(err, repos.ErrNotFound) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return u, nil
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	err := s.Users.Delete(ctx, id)
	if errors.Is(err, repos.ErrNotFound) {
		return apperr.NotFound("User not found")
	}
	if err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// ToggleBlock flips the blocked flag and returns the new value.
func (s *UserService) ToggleBlock(ctx context.Context, id string) (bool, error) {
	u, err := s.get(ctx, id)
	if err != nil {
		return false, err
	}
	blocked := !u.IsBlocked
	if err := s.Users.SetBlocked(ctx, id, blocked); err != nil {
		return false, apperr.Internal(err)
	}
	return blocked, nil
}

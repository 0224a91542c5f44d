package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"cosmetica/internal/apperr"
	"cosmetica/internal/domain"
	"cosmetica/internal/repos"
	"cosmetica/internal/validate"
)

type ContactService struct {
	Contacts *repos.ContactRepo
	now      func() time.Time
}

func NewContactService(contacts *repos.ContactRepo) *ContactService {
	return &ContactService{Contacts: contacts, now: time.Now}
}

func (s *ContactService) Create(ctx context.Context, in domain.Contact) (*domain.Contact, error) {
	name, okName := validate.Name(in.Name)
	subject, message := strings.TrimSpace(in.Subject), strings.TrimSpace(in.Message)
	if !okName || strings.TrimSpace(in.Email) == "" || subject == "" || message == "" {
		return nil, apperr.InvalidRequest("Name, email, subject and message are required")
	}
	email, ok := validate.Email(in.Email)
	if !ok {
		return nil, apperr.InvalidRequest("Invalid email address")
	}
	c := &domain.Contact{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		Phone:     strings.TrimSpace(in.Phone),
		Subject:   subject,
		Message:   message,
		CreatedAt: s.now().UTC().Format(domain.TimeLayout),
	}
	if err := s.Contacts.Create(ctx, c); err != nil {
		return nil, apperr.Internal(err)
	}
	return c, nil
}

func (s *ContactService) List(ctx context.Context) ([]domain.Contact, error) {
	out, err := s.Contacts.List(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return out, nil
}

func (s *ContactService) Get(ctx context.Context, id string) (*domain.Contact, error) {
	c, err := s.Contacts.Get(ctx, id)
	if errors.Is(err, repos.ErrNotFound) {
		return nil, apperr.NotFound("Contact not found")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return c, nil
}

func (s *ContactService) Delete(ctx context.Context, id string) error {
	err := s.Contacts.Delete(ctx, id)
	if errors.Is(err, repos.ErrNotFound) {
		return apperr.NotFound("Contact not found")
	}
	if err != nil {
		return apperr.Internal(err)
	}
	return nil
}

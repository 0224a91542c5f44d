package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"cosmetica/internal/apperr"
	"cosmetica/internal/domain"
	"cosmetica/internal/repos"
	"cosmetica/internal/validate"
)

type ReviewService struct {
	Reviews *repos.ReviewRepo
	now     func() time.Time
}

func NewReviewService(reviews *repos.ReviewRepo) *ReviewService {
	return &ReviewService{Reviews: reviews, now: time.Now}
}

func (s *ReviewService) Create(ctx context.Context, in domain.Review) (*domain.Review, error) {
	name, ok := validate.Name(in.Name)
	if !ok || strings.TrimSpace(in.Review) == "" {
		return nil, apperr.InvalidRequest("Name, review and rating are required")
	}
	if !validate.Rating(in.Rating) {
		return nil, apperr.InvalidRequest("Rating must be between 1 and 5")
	}
	if in.Email != "" {
		if _, ok := validate.Email(in.Email); !ok {
			return nil, apperr.InvalidRequest("Invalid email address")
		}
	}
	now := s.now().UTC()
	rv := &domain.Review{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     strings.TrimSpace(in.Email),
		Product:   strings.TrimSpace(in.Product),
		Title:     strings.TrimSpace(in.Title),
		Review:    strings.TrimSpace(in.Review),
		Rating:    in.Rating,
		Date:      now.Format("2006-01-02"),
		CreatedAt: now.Format(domain.TimeLayout),
	}
	if err := s.Reviews.Create(ctx, rv); err != nil {
		return nil, apperr.Internal(err)
	}
	return rv, nil
}

func (s *ReviewService) List(ctx context.Context) ([]domain.Review, error) {
	out, err := s.Reviews.List(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return out, nil
}

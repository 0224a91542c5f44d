package services

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"cosmetica/internal/apperr"
	"cosmetica/internal/domain"
	"cosmetica/internal/repos"
	"cosmetica/internal/validate"
)

// ProductInput is the admin payload for create and update.
type ProductInput struct {
	ProductID     string              `json:"productId"`
	Name          string              `json:"name"`
	AltNames      []string            `json:"altNames"`
	LabelledPrice decimal.NullDecimal `json:"labelledPrice"`
	Price         decimal.NullDecimal `json:"price"`
	Images        []string            `json:"images"`
	Description   string              `json:"description"`
	Stock         int                 `json:"stock"`
	IsAvailable   *bool               `json:"isAvailable"`
	Category      string              `json:"category"`
}

type CatalogService struct {
	Cats  *repos.CategoryRepo
	Prods *repos.ProductRepo
}

func NewCatalogService(cats *repos.CategoryRepo, prods *repos.ProductRepo) *CatalogService {
	return &CatalogService{Cats: cats, Prods: prods}
}

// toProduct validates in and applies catalog defaults.
func (in ProductInput) toProduct(productID string) (*domain.Product, error) {
	id, ok := validate.ID(productID)
	if !ok {
		return nil, apperr.InvalidRequest("Invalid product ID")
	}
	name, ok := validate.Name(in.Name)
	if !ok {
		return nil, apperr.InvalidRequest("Product name is required")
	}
	if !in.Price.Valid || in.Price.Decimal.IsNegative() {
		return nil, apperr.InvalidRequest("A non-negative price is required")
	}
	labelled := in.Price.Decimal
	if in.LabelledPrice.Valid {
		if in.LabelledPrice.Decimal.IsNegative() {
			return nil, apperr.InvalidRequest("Labelled price cannot be negative")
		}
		labelled = in.LabelledPrice.Decimal
	}
	if in.Stock < 0 {
		return nil, apperr.InvalidRequest("Stock cannot be negative")
	}

	p := &domain.Product{
		ProductID:     id,
		Name:          name,
		AltNames:      domain.StringList(in.AltNames),
		LabelledPrice: labelled,
		Price:         in.Price.Decimal,
		Images:        domain.StringList(in.Images),
		Description:   strings.TrimSpace(in.Description),
		Stock:         in.Stock,
		IsAvailable:   true,
		Category:      strings.TrimSpace(in.Category),
	}
	if p.AltNames == nil {
		p.AltNames = domain.StringList{}
	}
	if len(p.Images) == 0 {
		p.Images = domain.StringList{domain.DefaultImage}
	}
	if in.IsAvailable != nil {
		p.IsAvailable = *in.IsAvailable
	}
	if p.Category == "" {
		p.Category = domain.DefaultCategory
	}
	return p, nil
}

func (s *CatalogService) Create(ctx context.Context, in ProductInput) (*domain.Product, error) {
	p, err := in.toProduct(in.ProductID)
	if err != nil {
		return nil, err
	}
	err = s.Prods.Create(ctx, p)
	if errors.Is(err, repos.ErrConflict) {
		return nil, apperr.Conflict("Product ID already exists")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return p, nil
}

// List shows every product to admins and only available ones to everyone else.
func (s *CatalogService) List(ctx context.Context, requester *domain.User) ([]domain.Product, error) {
	out, err := s.Prods.List(ctx, !requester.IsAdmin())
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return out, nil
}

func (s *CatalogService) Get(ctx context.Context, requester *domain.User, productID string) (*domain.Product, error) {
	p, err := s.Prods.Get(ctx, productID)
	if errors.Is(err, repos.ErrNotFound) {
		return nil, apperr.NotFound("Product not found")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if !p.IsAvailable && !requester.IsAdmin() {
		return nil, apperr.NotFound("Product not available")
	}
	return p, nil
}

// Update replaces the product identified by productID; the id in the body is ignored.
func (s *CatalogService) Update(ctx context.Context, productID string, in ProductInput) (*domain.Product, error) {
	p, err := in.toProduct(productID)
	if err != nil {
		return nil, err
	}
	err = s.Prods.Update(ctx, p)
	if errors.Is(err, repos.ErrNotFound) {
		return nil, apperr.NotFound("Product not found")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	updated, err := s.Prods.Get(ctx, productID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return updated, nil
}

func (s *CatalogService) Delete(ctx context.Context, productID string) error {
	err := s.Prods.Delete(ctx, productID)
	if errors.Is(err, repos.ErrNotFound) {
		return apperr.NotFound("Product not found")
	}
	if err != nil {
		return apperr.Internal(err)
	}
	return nil
}

func (s *CatalogService) Search(ctx context.Context, query string) ([]domain.Product, error) {
	q, ok := validate.Q(query)
	if !ok {
		return nil, apperr.InvalidRequest("Invalid search query")
	}
	out, err := s.Prods.Search(ctx, q)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return out, nil
}

func (s *CatalogService) Categories(ctx context.Context) ([]string, error) {
	out, err := s.Cats.List(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return out, nil
}

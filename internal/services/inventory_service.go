package services

import (
	"context"
	"errors"

	"cosmetica/internal/apperr"
	"cosmetica/internal/domain"
	"cosmetica/internal/repos"
)

type InventoryService struct {
	Inv *repos.InventoryRepo
}

func NewInventoryService(inv *repos.InventoryRepo) *InventoryService {
	return &InventoryService{Inv: inv}
}

func stockStatus(qty int) string {
	switch {
	case qty >= 5:
		return "IN_STOCK"
	case qty > 0:
		return "LOW_STOCK"
	}
	return "OUT_OF_STOCK"
}

// CheckAvailability converts stock into IN_STOCK / LOW_STOCK / OUT_OF_STOCK.
func (s *InventoryService) CheckAvailability(ctx context.Context, productID string) (domain.Availability, error) {
	row, err := s.Inv.Stock(ctx, productID)
	if errors.Is(err, repos.ErrNotFound) {
		return domain.Availability{}, apperr.NotFound("Product not found")
	}
	if err != nil {
		return domain.Availability{}, apperr.Internal(err)
	}
	return domain.Availability{
		ProductID:   row.ProductID,
		Status:      stockStatus(row.Stock),
		Qty:         row.Stock,
		IsAvailable: row.IsAvailable,
	}, nil
}

// SetStock is the manual stock adjustment; orders never touch stock.
func (s *InventoryService) SetStock(ctx context.Context, productID string, qty int) (domain.Availability, error) {
	if qty < 0 {
		return domain.Availability{}, apperr.InvalidRequest("Stock cannot be negative")
	}
	err := s.Inv.SetStock(ctx, productID, qty)
	if errors.Is(err, repos.ErrNotFound) {
		return domain.Availability{}, apperr.NotFound("Product not found")
	}
	if err != nil {
		return domain.Availability{}, apperr.Internal(err)
	}
	return s.CheckAvailability(ctx, productID)
}

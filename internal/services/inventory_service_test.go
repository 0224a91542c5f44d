package services_test

import (
	"context"
	"testing"

	"cosmetica/internal/apperr"
	"cosmetica/internal/repos"
	"cosmetica/internal/services"
)

func TestInventoryService_CheckAvailability(t *testing.T) {
	db := memdb(t)
	svc := services.NewInventoryService(repos.NewInventoryRepo(db))
	ctx := context.Background()

	cases := []struct {
		id     string
		status string
		qty    int
	}{
		{"COS-SRM-001", "IN_STOCK", 12},
		{"COS-LIP-001", "LOW_STOCK", 3},
		{"COS-PWD-001", "OUT_OF_STOCK", 0},
	}
	for _, tc := range cases {
		a, err := svc.CheckAvailability(ctx, tc.id)
		if err != nil {
			t.Fatal(err)
		}
		if a.Status != tc.status || a.Qty != tc.qty {
			t.Fatalf("%s: want %s(%d), got %+v", tc.id, tc.status, tc.qty, a)
		}
	}

	if _, err := svc.CheckAvailability(ctx, "nope"); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("want not found, got %v", err)
	}
}

func TestInventoryService_SetStock(t *testing.T) {
	db := memdb(t)
	svc := services.NewInventoryService(repos.NewInventoryRepo(db))
	ctx := context.Background()

	a, err := svc.SetStock(ctx, "COS-LIP-001", 5)
	if err != nil {
		t.Fatal(err)
	}
	if a.Status != "IN_STOCK" || a.Qty != 5 {
		t.Fatalf("want IN_STOCK(5), got %+v", a)
	}
	if _, err := svc.SetStock(ctx, "COS-LIP-001", -1); !apperr.Is(err, apperr.KindInvalidRequest) {
		t.Fatalf("want invalid request, got %v", err)
	}
	if _, err := svc.SetStock(ctx, "nope", 1); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("want not found, got %v", err)
	}
}

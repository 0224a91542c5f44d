package handlers

import (
	"github.com/jmoiron/sqlx"

	"cosmetica/internal/config"
	"cosmetica/internal/repos"
	"cosmetica/internal/services"
)

type Deps struct {
	Auth *services.AuthService

	AuthHandler      *AuthHandler
	AdminHandler     *AdminHandler
	ProductHandler   *ProductHandler
	CategoryHandler  *CategoryHandler
	SearchHandler    *SearchHandler
	InventoryHandler *InventoryHandler
	OrderHandler     *OrderHandler
	ReviewHandler    *ReviewHandler
	ContactHandler   *ContactHandler
	SalesHandler     *SalesHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config) *Deps {
	userRepo := repos.NewUserRepo(db)
	catRepo := repos.NewCategoryRepo(db)
	prodRepo := repos.NewProductRepo(db)
	invRepo := repos.NewInventoryRepo(db)
	orderRepo := repos.NewOrderRepo(db)
	outboxRepo := repos.NewOutboxRepo(db)

	authSvc := services.NewAuthService(userRepo, cfg.SessionTTL)
	userSvc := services.NewUserService(userRepo)
	catalogSvc := services.NewCatalogService(catRepo, prodRepo)
	invSvc := services.NewInventoryService(invRepo)
	orderSvc := services.NewOrderService(prodRepo, orderRepo, outboxRepo)
	salesSvc := services.NewSalesService(orderRepo, catRepo, services.NewClassifier(cfg.Analytics.Categories))
	dashSvc := services.NewDashboardService(prodRepo, userRepo, orderRepo)

	return &Deps{
		Auth:             authSvc,
		AuthHandler:      &AuthHandler{Auth: authSvc, Users: userSvc},
		AdminHandler:     &AdminHandler{Users: userSvc, Dashboard: dashSvc},
		ProductHandler:   &ProductHandler{Catalog: catalogSvc},
		CategoryHandler:  &CategoryHandler{Catalog: catalogSvc},
		SearchHandler:    &SearchHandler{Catalog: catalogSvc},
		InventoryHandler: &InventoryHandler{Inv: invSvc},
		OrderHandler:     &OrderHandler{Orders: orderSvc},
		ReviewHandler:    &ReviewHandler{Reviews: services.NewReviewService(repos.NewReviewRepo(db))},
		ContactHandler:   &ContactHandler{Contacts: services.NewContactService(repos.NewContactRepo(db))},
		SalesHandler:     &SalesHandler{Sales: salesSvc},
	}
}

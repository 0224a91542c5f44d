package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	"cosmetica/internal/apperr"
	"cosmetica/internal/domain"
	"cosmetica/internal/repos"
)

type DashboardService struct {
	Prods  *repos.ProductRepo
	Users  *repos.UserRepo
	Orders *repos.OrderRepo
}

func NewDashboardService(prods *repos.ProductRepo, users *repos.UserRepo, orders *repos.OrderRepo) *DashboardService {
	return &DashboardService{Prods: prods, Users: users, Orders: orders}
}

// Stats gathers the admin dashboard counters concurrently.
func (s *DashboardService) Stats(ctx context.Context) (domain.DashboardStats, error) {
	var st domain.DashboardStats
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		st.TotalProducts, err = s.Prods.Count(ctx)
		return err
	})
	g.Go(func() (err error) {
		st.TotalUsers, err = s.Users.CountCustomers(ctx)
		return err
	})
	g.Go(func() (err error) {
		st.TotalOrders, err = s.Orders.Count(ctx, "")
		return err
	})
	g.Go(func() (err error) {
		st.PendingOrders, err = s.Orders.CountByStatus(ctx, domain.OrderPending)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.DashboardStats{}, apperr.Internal(err)
	}
	return st, nil
}

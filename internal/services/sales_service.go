package services

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"cosmetica/internal/apperr"
	"cosmetica/internal/domain"
	applog "cosmetica/internal/log"
	"cosmetica/internal/repos"
)

// SalesCategories are the reporting buckets, in display order.
var SalesCategories = []string{"Cream", "Face Wash", "Power", "Serum", "Lipstick"}

var defaultCategoryNames = map[string]string{
	"Moisturizing Cream":  "Cream",
	"Night Cream":         "Cream",
	"Day Cream":           "Cream",
	"Anti-Aging Cream":    "Cream",
	"Gentle Face Wash":    "Face Wash",
	"Foaming Face Wash":   "Face Wash",
	"Cleansing Face Wash": "Face Wash",
	"Compact Powder":      "Power",
	"Setting Powder":      "Power",
	"Face Powder":         "Power",
	"Vitamin C Serum":     "Serum",
	"Hydrating Serum":     "Serum",
	"Anti-Aging Serum":    "Serum",
	"Niacinamide Serum":   "Serum",
	"Matte Lipstick":      "Lipstick",
	"Glossy Lipstick":     "Lipstick",
	"Liquid Lipstick":     "Lipstick",
}

func isSalesCategory(s string) bool {
	for _, c := range SalesCategories {
		if c == s {
			return true
		}
	}
	return false
}

// Classifier assigns an order line to one of SalesCategories.
type Classifier struct {
	names map[string]string
}

// NewClassifier starts from the built-in product name table; overrides whose
// target is not a reporting category are ignored.
func NewClassifier(overrides map[string]string) *Classifier {
	names := make(map[string]string, len(defaultCategoryNames)+len(overrides))
	for k, v := range defaultCategoryNames {
		names[k] = v
	}
	for k, v := range overrides {
		if isSalesCategory(v) {
			names[k] = v
		}
	}
	return &Classifier{names: names}
}

// Classify tries, in order: the name itself, the catalog category, the name
// table, then keywords. ok is false when nothing matches.
func (c *Classifier) Classify(name, catalogCategory string) (category string, ok bool) {
	if isSalesCategory(name) {
		return name, true
	}
	if isSalesCategory(catalogCategory) {
		return catalogCategory, true
	}
	if cat, found := c.names[name]; found {
		return cat, true
	}
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "cream"):
		return "Cream", true
	case strings.Contains(lower, "face wash"), strings.Contains(lower, "cleanser"), strings.Contains(lower, "facewash"):
		return "Face Wash", true
	case strings.Contains(lower, "powder"):
		return "Power", true
	case strings.Contains(lower, "serum"):
		return "Serum", true
	case strings.Contains(lower, "lipstick"), strings.Contains(lower, "lip"):
		return "Lipstick", true
	}
	return "", false
}

type DateRange struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Days      int    `json:"days,omitempty"`
}

type CategoryCount struct {
	Product string `json:"product"`
	Count   int    `json:"count"`
}

type SalesSummary struct {
	TotalOrders       int             `json:"totalOrders"`
	TotalRevenue      decimal.Decimal `json:"totalRevenue"`
	TotalProductsSold int             `json:"totalProductsSold"`
}

type ChartData struct {
	Success   bool            `json:"success"`
	DateRange DateRange       `json:"dateRange"`
	ChartData []CategoryCount `json:"chartData"`
	Summary   SalesSummary    `json:"summary"`
}

type ProductSales struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Revenue  decimal.Decimal `json:"revenue"`
	AvgPrice decimal.Decimal `json:"avgPrice"`
}

type CategorySales struct {
	Category      string          `json:"category"`
	TotalQuantity int             `json:"totalQuantity"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
	OrderCount    int             `json:"orderCount"`
	Products      []ProductSales  `json:"products"`
	AvgPrice      decimal.Decimal `json:"avgPrice"`
}

type DailySales struct {
	Date         string          `json:"date"`
	TotalOrders  int             `json:"totalOrders"`
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
}

type SalesAnalytics struct {
	Success           bool            `json:"success"`
	DateRange         DateRange       `json:"dateRange"`
	CategoryAnalytics []CategorySales `json:"categoryAnalytics"`
	DailyTrend        []DailySales    `json:"dailyTrend"`
}

const (
	DefaultSalesDays = 7
	maxSalesDays     = 366
)

type SalesService struct {
	Orders     *repos.OrderRepo
	Cats       *repos.CategoryRepo
	Classifier *Classifier

	now func() time.Time
}

func NewSalesService(orders *repos.OrderRepo, cats *repos.CategoryRepo, c *Classifier) *SalesService {
	if c == nil {
		c = NewClassifier(nil)
	}
	return &SalesService{Orders: orders, Cats: cats, Classifier: c, now: time.Now}
}

const adminOnly = "Access denied. Admin privileges required."

// requireAdmin answers anonymous callers with 401 anonMsg, or with the same
// 403 non-admins get when anonMsg is empty.
func requireAdmin(u *domain.User, anonMsg string) error {
	if u == nil && anonMsg != "" {
		return apperr.Unauthenticated(anonMsg)
	}
	if !u.IsAdmin() {
		return apperr.Forbidden(adminOnly)
	}
	return nil
}

// window loads the orders of the last days and the catalog category of every
// product they mention.
func (s *SalesService) window(ctx context.Context, days int) ([]domain.Order, map[string]string, DateRange, error) {
	end := s.now().UTC()
	start := end.AddDate(0, 0, -days)
	dr := DateRange{StartDate: start.Format("2006-01-02"), EndDate: end.Format("2006-01-02")}

	orders, err := s.Orders.Window(ctx, start.Format(domain.TimeLayout), end.Format(domain.TimeLayout))
	if err != nil {
		return nil, nil, dr, apperr.Internal(err)
	}
	seen := map[string]bool{}
	var ids []string
	for _, o := range orders {
		for _, it := range o.Items {
			if !seen[it.ProductID] {
				seen[it.ProductID] = true
				ids = append(ids, it.ProductID)
			}
		}
	}
	cats, err := s.Cats.ProductCategories(ctx, ids)
	if err != nil {
		return nil, nil, dr, apperr.Internal(err)
	}
	return orders, cats, dr, nil
}

func (s *SalesService) classify(line domain.OrderLine, cats map[string]string) (string, bool) {
	cat, ok := s.Classifier.Classify(line.Name, cats[line.ProductID])
	if !ok {
		applog.Info(nil, "sales.uncategorised", map[string]any{"product_id": line.ProductID, "name": line.Name})
	}
	return cat, ok
}

// ChartData is the per-category unit count over the last seven days.
func (s *SalesService) ChartData(ctx context.Context, requester *domain.User) (ChartData, error) {
	if err := requireAdmin(requester, "Please login to view sales data"); err != nil {
		return ChartData{}, err
	}
	orders, cats, dr, err := s.window(ctx, DefaultSalesDays)
	if err != nil {
		return ChartData{}, err
	}

	counts := make(map[string]int, len(SalesCategories))
	summary := SalesSummary{TotalOrders: len(orders), TotalRevenue: decimal.Zero}
	for _, o := range orders {
		summary.TotalRevenue = summary.TotalRevenue.Add(o.Total)
		for _, it := range o.Items {
			if cat, ok := s.classify(it, cats); ok {
				counts[cat] += it.Quantity
				summary.TotalProductsSold += it.Quantity
			}
		}
	}

	out := ChartData{Success: true, DateRange: dr, Summary: summary}
	for _, c := range SalesCategories {
		out.ChartData = append(out.ChartData, CategoryCount{Product: c, Count: counts[c]})
	}
	return out, nil
}

// Analytics breaks the last days of sales down by category, product and day.
// days outside 1..366 falls back to seven.
func (s *SalesService) Analytics(ctx context.Context, requester *domain.User, days int) (SalesAnalytics, error) {
	if err := requireAdmin(requester, ""); err != nil {
		return SalesAnalytics{}, err
	}
	if days < 1 || days > maxSalesDays {
		days = DefaultSalesDays
	}
	orders, cats, dr, err := s.window(ctx, days)
	if err != nil {
		return SalesAnalytics{}, err
	}
	dr.Days = days

	byCat := make(map[string]*CategorySales, len(SalesCategories))
	for _, c := range SalesCategories {
		byCat[c] = &CategorySales{Category: c, TotalRevenue: decimal.Zero, Products: []ProductSales{}}
	}
	byDay := map[string]*DailySales{}
	for _, o := range orders {
		day := o.Date[:10]
		d := byDay[day]
		if d == nil {
			d = &DailySales{Date: day, TotalRevenue: decimal.Zero}
			byDay[day] = d
		}
		d.TotalOrders++
		d.TotalRevenue = d.TotalRevenue.Add(o.Total)

		for _, it := range o.Items {
			cat, ok := s.classify(it, cats)
			if !ok {
				continue
			}
			cs := byCat[cat]
			rev := it.Subtotal()
			cs.TotalQuantity += it.Quantity
			cs.TotalRevenue = cs.TotalRevenue.Add(rev)
			cs.OrderCount++
			found := false
			for i := range cs.Products {
				if cs.Products[i].Name == it.Name {
					cs.Products[i].Quantity += it.Quantity
					cs.Products[i].Revenue = cs.Products[i].Revenue.Add(rev)
					found = true
					break
				}
			}
			if !found {
				cs.Products = append(cs.Products, ProductSales{Name: it.Name, Quantity: it.Quantity, Revenue: rev})
			}
		}
	}

	out := SalesAnalytics{Success: true, DateRange: dr, DailyTrend: make([]DailySales, 0, len(byDay))}
	for _, d := range byDay {
		out.DailyTrend = append(out.DailyTrend, *d)
	}
	slices.SortFunc(out.DailyTrend, func(a, b DailySales) int { return strings.Compare(a.Date, b.Date) })
	for _, c := range SalesCategories {
		cs := byCat[c]
		cs.AvgPrice = average(cs.TotalRevenue, cs.TotalQuantity)
		for i := range cs.Products {
			cs.Products[i].AvgPrice = average(cs.Products[i].Revenue, cs.Products[i].Quantity)
		}
		out.CategoryAnalytics = append(out.CategoryAnalytics, *cs)
	}
	return out, nil
}

func average(total decimal.Decimal, qty int) decimal.Decimal {
	if qty == 0 {
		return decimal.Zero
	}
	return total.DivRound(decimal.NewFromInt(int64(qty)), 2)
}

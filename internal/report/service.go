package report

import (
	"context"
	"time"

	"github.com/safar/go-pos-store/internal/models"
	"github.com/safar/go-pos-store/internal/store"
	"golang.org/x/sync/errgroup"
)

// Service computes reports over a store.
type Service struct {
	store             store.Store
	lowStockThreshold int
}

func NewService(s store.Store, lowStockThreshold int) *Service {
	return &Service{store: s, lowStockThreshold: lowStockThreshold}
}

func (s *Service) LowStockThreshold() int {
	return s.lowStockThreshold
}

func (s *Service) DailySummary(ctx context.Context, start, end time.Time) ([]models.DailySummary, error) {
	return s.store.Sales().SummarizeByDay(ctx, start, end)
}

func (s *Service) PeriodSummary(ctx context.Context, period Period, start, end time.Time) ([]models.DailySummary, error) {
	days, err := s.store.Sales().SummarizeByDay(ctx, start, end)
	if err != nil {
		return nil, err
	}
	return Rollup(days, period), nil
}

func (s *Service) TopProducts(ctx context.Context, start, end time.Time, limit int) ([]TopProduct, error) {
	rows, err := s.store.Sales().SaleItemsBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}
	return TopProducts(rows, limit), nil
}

func (s *Service) Inventory(ctx context.Context) (InventoryValuation, error) {
	products, err := s.store.Products().List(ctx, "")
	if err != nil {
		return InventoryValuation{}, err
	}
	return ValueInventory(products, s.lowStockThreshold), nil
}

func (s *Service) LowStock(ctx context.Context) ([]models.Product, error) {
	return s.store.Products().LowStock(ctx, s.lowStockThreshold)
}

type Dashboard struct {
	Daily       []models.DailySummary `json:"daily"`
	TopProducts []TopProduct          `json:"topProducts"`
	Inventory   InventoryValuation    `json:"inventory"`
	LowStock    []models.Product      `json:"lowStock"`
}

// Dashboard gathers the daily summary, top products, inventory valuation and
// low-stock list concurrently. The first failure cancels the rest.
func (s *Service) Dashboard(ctx context.Context, start, end time.Time, limit int) (*Dashboard, error) {
	if _, _, err := store.DayRange(start, end); err != nil {
		return nil, err
	}

	var d Dashboard
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		daily, err := s.DailySummary(ctx, start, end)
		d.Daily = daily
		return err
	})
	g.Go(func() error {
		top, err := s.TopProducts(ctx, start, end, limit)
		d.TopProducts = top
		return err
	})
	g.Go(func() error {
		inventory, err := s.Inventory(ctx)
		d.Inventory = inventory
		return err
	})
	g.Go(func() error {
		low, err := s.LowStock(ctx)
		d.LowStock = low
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &d, nil
}

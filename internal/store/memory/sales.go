package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/safar/go-pos-store/internal/models"
	"github.com/safar/go-pos-store/internal/report"
	"github.com/safar/go-pos-store/internal/store"
)

type SaleRepository struct {
	s *Store
}

var _ store.SaleRepository = (*SaleRepository)(nil)

func cloneSale(sale models.Sale) models.Sale {
	sale.ClientID = copyPtr(sale.ClientID)
	sale.Notes = copyPtr(sale.Notes)
	sale.Items = nil
	return sale
}

// CreateSale checks every precondition before touching state; the write lock
// makes the checks and the mutations one atomic step.
func (r *SaleRepository) CreateSale(ctx context.Context, req store.CreateSaleRequest) (*models.Sale, error) {
	if err := ctx.Err(); err != nil {
		return nil, store.StorageError("create sale", err)
	}

	prepared, err := req.Prepare(r.s.clock())
	if err != nil {
		return nil, err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	clientIdx := -1
	if prepared.ClientID != nil {
		clientIdx = r.s.clientRepo.indexOf(*prepared.ClientID)
		if clientIdx < 0 {
			return nil, store.NotFoundError("client", *prepared.ClientID)
		}
	}

	demand := make(map[int64]int)
	for _, item := range prepared.Items {
		if r.s.productRepo.indexOf(item.ProductID) < 0 {
			return nil, store.NotFoundError("product", item.ProductID)
		}
		demand[item.ProductID] += item.Quantity
	}
	for productID, quantity := range demand {
		if r.s.products[r.s.productRepo.indexOf(productID)].Stock < quantity {
			return nil, fmt.Errorf("product %d: %w", productID, store.ErrInsufficientStock)
		}
	}

	r.s.nextSaleID++
	sale := models.Sale{
		ID:       r.s.nextSaleID,
		Date:     prepared.Date,
		ClientID: copyPtr(prepared.ClientID),
		Total:    prepared.Total,
		Notes:    copyPtr(prepared.Notes),
	}
	r.s.sales = append(r.s.sales, sale)

	created := cloneSale(sale)
	for _, item := range prepared.Items {
		r.s.nextItemID++
		saleItem := models.SaleItem{
			ID:        r.s.nextItemID,
			SaleID:    sale.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Total:     item.Total,
		}
		r.s.items = append(r.s.items, saleItem)
		created.Items = append(created.Items, saleItem)
	}

	now := r.s.clock()
	for productID, quantity := range demand {
		p := &r.s.products[r.s.productRepo.indexOf(productID)]
		p.Stock -= quantity
		p.LastUpdated = now
	}

	if clientIdx >= 0 {
		date := sale.Date
		r.s.clients[clientIdx].LastOrderDate = &date
	}

	return &created, nil
}

func (r *SaleRepository) GetSale(ctx context.Context, id int64) (*models.Sale, error) {
	if err := ctx.Err(); err != nil {
		return nil, store.StorageError("get sale", err)
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, sale := range r.s.sales {
		if sale.ID != id {
			continue
		}
		found := cloneSale(sale)
		for _, item := range r.s.items {
			if item.SaleID == id {
				found.Items = append(found.Items, item)
			}
		}
		return &found, nil
	}
	return nil, store.NotFoundError("sale", id)
}

func (r *SaleRepository) ListSales(ctx context.Context, cursor string, limit int) (*store.CursorPage, error) {
	if err := ctx.Err(); err != nil {
		return nil, store.StorageError("list sales", err)
	}

	cursorData, err := store.DecodeCursor(cursor)
	if err != nil {
		return nil, err
	}
	limit = store.ClampPageSize(limit)

	r.s.mu.RLock()
	sales := []models.Sale{}
	for _, sale := range r.s.sales {
		if cursorData.After(sale.Date, sale.ID) {
			sales = append(sales, cloneSale(sale))
		}
	}
	r.s.mu.RUnlock()

	sort.Slice(sales, func(i, j int) bool {
		if sales[i].Date.Equal(sales[j].Date) {
			return sales[i].ID > sales[j].ID
		}
		return sales[i].Date.After(sales[j].Date)
	})

	hasMore := len(sales) > limit
	if hasMore {
		sales = sales[:limit]
	}

	var nextCursor string
	if hasMore && len(sales) > 0 {
		last := sales[len(sales)-1]
		nextCursor = store.EncodeCursor(store.SaleCursor{
			Date: last.Date,
			ID:   last.ID,
		})
	}

	return &store.CursorPage{
		Items:      sales,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}

func (r *SaleRepository) SummarizeByDay(ctx context.Context, start, end time.Time) ([]models.DailySummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, store.StorageError("summarize sales by day", err)
	}

	r.s.mu.RLock()
	sales := make([]models.Sale, len(r.s.sales))
	copy(sales, r.s.sales)
	r.s.mu.RUnlock()

	return report.SummarizeByDay(sales, start, end)
}

func (r *SaleRepository) SaleItemsBetween(ctx context.Context, start, end time.Time) ([]models.SaleItemRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, store.StorageError("list sale items", err)
	}

	from, to, err := store.DayRange(start, end)
	if err != nil {
		return nil, err
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	saleDates := make(map[int64]time.Time)
	for _, sale := range r.s.sales {
		if !sale.Date.Before(from) && sale.Date.Before(to) {
			saleDates[sale.ID] = sale.Date
		}
	}

	rows := []models.SaleItemRow{}
	for _, item := range r.s.items {
		date, ok := saleDates[item.SaleID]
		if !ok {
			continue
		}
		row := models.SaleItemRow{SaleItem: item, SaleDate: date}
		if i := r.s.productRepo.indexOf(item.ProductID); i >= 0 {
			name := r.s.products[i].Name
			row.ProductName = &name
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].SaleDate.Before(rows[j].SaleDate)
	})
	return rows, nil
}

// Package store defines the storage port of the point-of-sale backend: the
// repository interfaces, the request types they accept and the error taxonomy
// shared by every implementation.
package store

import (
	"context"
	"time"

	"github.com/safar/go-pos-store/internal/models"
	"github.com/shopspring/decimal"
)

// Repository is the capability set shared by the client and product repositories.
//
// Get and Update return ErrNotFound when id does not exist. Delete reports
// false with a nil error in the same situation.
type Repository[T any, F any] interface {
	List(ctx context.Context, search string) ([]T, error)
	Get(ctx context.Context, id int64) (*T, error)
	Create(ctx context.Context, fields F) (*T, error)
	Update(ctx context.Context, id int64, fields F) (*T, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

type ClientRepository interface {
	Repository[models.Client, ClientFields]
}

type ProductRepository interface {
	Repository[models.Product, ProductFields]

	// LowStock lists products whose stock is at or below their threshold,
	// using defaultThreshold for products without a minimum stock.
	LowStock(ctx context.Context, defaultThreshold int) ([]models.Product, error)
}

type SaleRepository interface {
	// CreateSale records a sale, its items, the stock decrements and the
	// client's last order date as one all-or-nothing unit.
	CreateSale(ctx context.Context, req CreateSaleRequest) (*models.Sale, error)
	GetSale(ctx context.Context, id int64) (*models.Sale, error)
	ListSales(ctx context.Context, cursor string, limit int) (*CursorPage, error)
	SummarizeByDay(ctx context.Context, start, end time.Time) ([]models.DailySummary, error)
	SaleItemsBetween(ctx context.Context, start, end time.Time) ([]models.SaleItemRow, error)
}

// Store is a handle on one backing store.
type Store interface {
	Clients() ClientRepository
	Products() ProductRepository
	Sales() SaleRepository
	Ping(ctx context.Context) error
	Close() error
}

type ClientFields struct {
	Name    string
	Email   string
	Phone   string
	Address string
	City    string
	State   string
}

type ProductFields struct {
	Name        string
	Description string
	Category    string
	Price       decimal.Decimal
	Stock       int
	MinStock    *int
	SKU         *string
}

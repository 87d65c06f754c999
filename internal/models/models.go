package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Client struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Phone         string     `json:"phone"`
	Address       string     `json:"address"`
	City          string     `json:"city"`
	State         string     `json:"state"`
	LastOrderDate *time.Time `json:"lastOrderDate"`
}

type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	MinStock    *int            `json:"minStock"`
	SKU         *string         `json:"sku"`
	LastUpdated time.Time       `json:"lastUpdated"`
}

// LowStockThreshold returns the product's own minimum stock, or fallback when unset.
func (p Product) LowStockThreshold(fallback int) int {
	if p.MinStock != nil {
		return *p.MinStock
	}
	return fallback
}

type Sale struct {
	ID       int64           `json:"id"`
	Date     time.Time       `json:"date"`
	ClientID *int64          `json:"clientId"`
	Total    decimal.Decimal `json:"total"`
	Notes    *string         `json:"notes"`
	Items    []SaleItem      `json:"items,omitempty"`
}

// SaleItem is a line of a sale. UnitPrice is the price at the time of sale and
// never follows later edits of the product.
type SaleItem struct {
	ID        int64           `json:"id"`
	SaleID    int64           `json:"saleId"`
	ProductID int64           `json:"productId"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Total     decimal.Decimal `json:"total"`
}

// SaleItemRow is a sale item joined with its sale date and product name.
// ProductName is nil when the product row no longer exists.
type SaleItemRow struct {
	SaleItem
	SaleDate    time.Time `json:"saleDate"`
	ProductName *string   `json:"productName"`
}

type DailySummary struct {
	Date  time.Time       `json:"date"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

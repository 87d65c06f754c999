package report

import (
	"github.com/safar/go-pos-store/internal/models"
	"github.com/shopspring/decimal"
)

type InventoryValuation struct {
	Products      int             `json:"products"`
	Units         int             `json:"units"`
	Value         decimal.Decimal `json:"value"`
	LowStockCount int             `json:"lowStockCount"`
}

// IsLowStock reports whether p is at or below its minimum stock, or
// defaultThreshold when it has none.
func IsLowStock(p models.Product, defaultThreshold int) bool {
	return p.Stock <= p.LowStockThreshold(defaultThreshold)
}

// ValueInventory sums price x stock over products.
func ValueInventory(products []models.Product, defaultThreshold int) InventoryValuation {
	valuation := InventoryValuation{Value: decimal.Zero}
	for _, p := range products {
		valuation.Products++
		valuation.Units += p.Stock
		valuation.Value = valuation.Value.Add(p.Price.Mul(decimal.NewFromInt(int64(p.Stock))))
		if IsLowStock(p, defaultThreshold) {
			valuation.LowStockCount++
		}
	}
	return valuation
}

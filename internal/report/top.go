package report

import (
	"sort"

	"github.com/safar/go-pos-store/internal/models"
	"github.com/shopspring/decimal"
)

const (
	DefaultTopProductsLimit = 5
	UnknownProductName      = "Unknown product"
)

type TopProduct struct {
	ProductID    int64           `json:"productId"`
	Name         string          `json:"name"`
	QuantitySold int             `json:"quantitySold"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
}

// TopProducts ranks products by quantity sold across rows. Amounts use the
// unit price recorded on each item. Ties keep the order in which products
// first appear in rows. A non-positive limit means DefaultTopProductsLimit.
func TopProducts(rows []models.SaleItemRow, limit int) []TopProduct {
	if limit <= 0 {
		limit = DefaultTopProductsLimit
	}

	index := make(map[int64]int)
	ranked := []TopProduct{}
	for _, row := range rows {
		i, ok := index[row.ProductID]
		if !ok {
			i = len(ranked)
			index[row.ProductID] = i
			ranked = append(ranked, TopProduct{
				ProductID:   row.ProductID,
				Name:        UnknownProductName,
				TotalAmount: decimal.Zero,
			})
		}

		if row.ProductName != nil && ranked[i].Name == UnknownProductName {
			ranked[i].Name = *row.ProductName
		}
		ranked[i].QuantitySold += row.Quantity
		ranked[i].TotalAmount = ranked[i].TotalAmount.Add(
			row.UnitPrice.Mul(decimal.NewFromInt(int64(row.Quantity))))
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].QuantitySold > ranked[j].QuantitySold
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

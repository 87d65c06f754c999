package store

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// MaxQuantity bounds a line quantity and the total quantity of one product in
// a sale. It matches the INTEGER stock and quantity columns.
const MaxQuantity = math.MaxInt32

// CreateSaleRequest is the input of SaleRepository.CreateSale. Nil Date
// defaults to the current time. Nil totals are derived from the line items;
// supplied totals must agree with them.
type CreateSaleRequest struct {
	ClientID *int64
	Date     *time.Time
	Total    *decimal.Decimal
	Notes    *string
	Items    []SaleItemRequest
}

type SaleItemRequest struct {
	ProductID int64
	Quantity  int
	UnitPrice decimal.Decimal
	Total     *decimal.Decimal
}

// PreparedSale is a validated CreateSaleRequest with every default resolved.
type PreparedSale struct {
	ClientID *int64
	Date     time.Time
	Total    decimal.Decimal
	Notes    *string
	Items    []PreparedSaleItem
}

type PreparedSaleItem struct {
	ProductID int64
	Quantity  int
	UnitPrice decimal.Decimal
	Total     decimal.Decimal
}

// Prepare validates the request and resolves its defaults against now.
// Every failure wraps ErrInvalidArgument.
func (r CreateSaleRequest) Prepare(now time.Time) (*PreparedSale, error) {
	if len(r.Items) == 0 {
		return nil, invalidArgument("sale must have at least one item")
	}
	if r.ClientID != nil && *r.ClientID <= 0 {
		return nil, invalidArgument("client id %d must be positive", *r.ClientID)
	}

	sale := &PreparedSale{
		ClientID: r.ClientID,
		Date:     now,
		Notes:    r.Notes,
		Items:    make([]PreparedSaleItem, 0, len(r.Items)),
	}
	if r.Date != nil && !r.Date.IsZero() {
		sale.Date = *r.Date
	}

	sum := decimal.Zero
	demand := make(map[int64]int64, len(r.Items))
	for i, item := range r.Items {
		if item.ProductID <= 0 {
			return nil, invalidArgument("item %d: product id %d must be positive", i, item.ProductID)
		}
		if item.Quantity <= 0 {
			return nil, invalidArgument("item %d: quantity %d must be positive", i, item.Quantity)
		}
		if item.Quantity > MaxQuantity {
			return nil, invalidArgument("item %d: quantity %d exceeds %d", i, item.Quantity, MaxQuantity)
		}
		demand[item.ProductID] += int64(item.Quantity)
		if demand[item.ProductID] > MaxQuantity {
			return nil, invalidArgument("product %d: total quantity exceeds %d", item.ProductID, MaxQuantity)
		}
		if item.UnitPrice.IsNegative() {
			return nil, invalidArgument("item %d: unit price %s must not be negative", i, item.UnitPrice)
		}

		unitPrice := item.UnitPrice.Round(2)
		lineTotal := unitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		if item.Total != nil && !item.Total.Round(2).Equal(lineTotal) {
			return nil, invalidArgument("item %d: total %s does not match %d x %s", i, item.Total, item.Quantity, unitPrice)
		}

		sale.Items = append(sale.Items, PreparedSaleItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: unitPrice,
			Total:     lineTotal,
		})
		sum = sum.Add(lineTotal)
	}

	sale.Total = sum
	if r.Total != nil {
		if !r.Total.Round(2).Equal(sum) {
			return nil, invalidArgument("sale total %s does not match item totals %s", r.Total, sum)
		}
	}

	return sale, nil
}

// DayRange converts an inclusive [start, end] calendar-day range into the
// half-open UTC interval [from, to) covering both days entirely.
func DayRange(start, end time.Time) (from, to time.Time, err error) {
	from = TruncateDay(start)
	last := TruncateDay(end)
	if last.Before(from) {
		return time.Time{}, time.Time{}, invalidArgument("end date %s is before start date %s",
			last.Format(time.DateOnly), from.Format(time.DateOnly))
	}
	return from, last.AddDate(0, 0, 1), nil
}

// TruncateDay returns midnight UTC of t's UTC calendar day.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

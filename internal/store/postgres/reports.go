package postgres

import (
	"context"
	"time"

	"github.com/safar/go-pos-store/internal/models"
	"github.com/safar/go-pos-store/internal/store"
)

// SummarizeByDay groups sales by UTC calendar day. Days without sales are
// omitted.
func (r *SaleRepository) SummarizeByDay(ctx context.Context, start, end time.Time) ([]models.DailySummary, error) {
	from, to, err := store.DayRange(start, end)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT (sale_date AT TIME ZONE 'UTC')::date AS day,
		       SUM(total),
		       COUNT(*)
		FROM sales
		WHERE sale_date >= $1
		  AND sale_date < $2
		GROUP BY day
		ORDER BY day`

	rows, err := r.db.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, store.StorageError("summarize sales by day", err)
	}
	defer rows.Close()

	summaries := []models.DailySummary{}
	for rows.Next() {
		var summary models.DailySummary
		if err := rows.Scan(&summary.Date, &summary.Total, &summary.Count); err != nil {
			return nil, store.StorageError("scan daily summary", err)
		}
		summary.Date = store.TruncateDay(summary.Date)
		summaries = append(summaries, summary)
	}

	if err := rows.Err(); err != nil {
		return nil, store.StorageError("summarize sales by day", err)
	}

	return summaries, nil
}

// SaleItemsBetween returns the items of every sale in the day range joined
// with the sale date and the product name, oldest first.
func (r *SaleRepository) SaleItemsBetween(ctx context.Context, start, end time.Time) ([]models.SaleItemRow, error) {
	from, to, err := store.DayRange(start, end)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT si.id, si.sale_id, si.product_id, si.quantity, si.unit_price, si.total,
		       s.sale_date, p.name
		FROM sale_items si
		JOIN sales s ON s.id = si.sale_id
		LEFT JOIN products p ON p.id = si.product_id
		WHERE s.sale_date >= $1
		  AND s.sale_date < $2
		ORDER BY s.sale_date, si.id`

	rows, err := r.db.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, store.StorageError("list sale items", err)
	}
	defer rows.Close()

	items := []models.SaleItemRow{}
	for rows.Next() {
		var row models.SaleItemRow
		err := rows.Scan(
			&row.ID,
			&row.SaleID,
			&row.ProductID,
			&row.Quantity,
			&row.UnitPrice,
			&row.Total,
			&row.SaleDate,
			&row.ProductName,
		)
		if err != nil {
			return nil, store.StorageError("scan sale item", err)
		}
		items = append(items, row)
	}

	if err := rows.Err(); err != nil {
		return nil, store.StorageError("list sale items", err)
	}

	return items, nil
}

package postgres

import (
	"cmp"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/safar/go-pos-store/internal/database"
	"github.com/safar/go-pos-store/internal/models"
	"github.com/safar/go-pos-store/internal/store"
)

type SaleRepository struct {
	db  *sql.DB
	now func() time.Time
}

var _ store.SaleRepository = (*SaleRepository)(nil)

const saleColumns = `id, sale_date, client_id, total, notes`

func scanSale(row rowScanner) (*models.Sale, error) {
	sale := &models.Sale{}
	err := row.Scan(
		&sale.ID,
		&sale.Date,
		&sale.ClientID,
		&sale.Total,
		&sale.Notes,
	)
	if err != nil {
		return nil, err
	}
	return sale, nil
}

func (r *SaleRepository) clock() time.Time {
	if r.now != nil {
		return r.now()
	}
	return time.Now()
}

func (r *SaleRepository) CreateSale(ctx context.Context, req store.CreateSaleRequest) (*models.Sale, error) {
	prepared, err := req.Prepare(r.clock())
	if err != nil {
		return nil, err
	}

	var sale *models.Sale

	err = database.WithTransaction(ctx, r.db, func(tx *sql.Tx) error {
		created, err := scanSale(tx.QueryRowContext(ctx,
			`INSERT INTO sales (sale_date, client_id, total, notes)
			 VALUES ($1, $2, $3, $4)
			 RETURNING `+saleColumns,
			prepared.Date, prepared.ClientID, prepared.Total, prepared.Notes))
		if err != nil {
			if database.IsForeignKeyViolation(err) && prepared.ClientID != nil {
				return store.NotFoundError("client", *prepared.ClientID)
			}
			return fmt.Errorf("create sale: %w", err)
		}

		for _, item := range prepared.Items {
			saleItem := models.SaleItem{
				SaleID:    created.ID,
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				UnitPrice: item.UnitPrice,
				Total:     item.Total,
			}

			err := tx.QueryRowContext(ctx,
				`INSERT INTO sale_items (sale_id, product_id, quantity, unit_price, total)
				 VALUES ($1, $2, $3, $4, $5)
				 RETURNING id`,
				created.ID, item.ProductID, item.Quantity, item.UnitPrice, item.Total).Scan(&saleItem.ID)
			if err != nil {
				if database.IsForeignKeyViolation(err) {
					return store.NotFoundError("product", item.ProductID)
				}
				return fmt.Errorf("create sale item: %w", err)
			}

			created.Items = append(created.Items, saleItem)
		}

		// Row locks are taken in product id order so concurrent sales
		// cannot deadlock on each other.
		for _, item := range decrementOrder(prepared.Items) {
			if err := decrementStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}

		if prepared.ClientID != nil {
			result, err := tx.ExecContext(ctx,
				`UPDATE clients SET last_order_date = $1 WHERE id = $2`,
				created.Date, *prepared.ClientID)
			if err != nil {
				return fmt.Errorf("update client last order date: %w", err)
			}

			rowsAffected, err := result.RowsAffected()
			if err != nil {
				return fmt.Errorf("get rows affected: %w", err)
			}
			if rowsAffected == 0 {
				return store.NotFoundError("client", *prepared.ClientID)
			}
		}

		sale = created
		return nil
	})
	if err != nil {
		return nil, wrapErr("create sale", err)
	}

	return sale, nil
}

// decrementOrder returns items sorted by product id, input order kept for
// equal ids.
func decrementOrder(items []store.PreparedSaleItem) []store.PreparedSaleItem {
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b store.PreparedSaleItem) int {
		return cmp.Compare(a.ProductID, b.ProductID)
	})
	return sorted
}

func (r *SaleRepository) GetSale(ctx context.Context, id int64) (*models.Sale, error) {
	sale, err := scanSale(r.db.QueryRowContext(ctx,
		`SELECT `+saleColumns+` FROM sales WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.NotFoundError("sale", id)
		}
		return nil, store.StorageError("get sale", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, sale_id, product_id, quantity, unit_price, total
		 FROM sale_items
		 WHERE sale_id = $1
		 ORDER BY id`, id)
	if err != nil {
		return nil, store.StorageError("get sale items", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.SaleItem
		err := rows.Scan(
			&item.ID,
			&item.SaleID,
			&item.ProductID,
			&item.Quantity,
			&item.UnitPrice,
			&item.Total,
		)
		if err != nil {
			return nil, store.StorageError("scan sale item", err)
		}
		sale.Items = append(sale.Items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, store.StorageError("get sale items", err)
	}

	return sale, nil
}

func (r *SaleRepository) ListSales(ctx context.Context, cursor string, limit int) (*store.CursorPage, error) {
	cursorData, err := store.DecodeCursor(cursor)
	if err != nil {
		return nil, err
	}
	limit = store.ClampPageSize(limit)

	query := `
		SELECT ` + saleColumns + `
		FROM sales
		WHERE (sale_date, id) < ($1, $2)
		ORDER BY sale_date DESC, id DESC
		LIMIT $3`

	rows, err := r.db.QueryContext(ctx, query, cursorData.Date, cursorData.ID, limit+1)
	if err != nil {
		return nil, store.StorageError("list sales", err)
	}
	defer rows.Close()

	sales := []models.Sale{}
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, store.StorageError("scan sale", err)
		}
		sales = append(sales, *sale)
	}

	if err := rows.Err(); err != nil {
		return nil, store.StorageError("list sales", err)
	}

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

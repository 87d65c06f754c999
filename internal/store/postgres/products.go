package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/safar/go-pos-store/internal/database"
	"github.com/safar/go-pos-store/internal/models"
	"github.com/safar/go-pos-store/internal/store"
)

type ProductRepository struct {
	db *sql.DB
}

var _ store.ProductRepository = (*ProductRepository)(nil)

const productColumns = `id, name, description, category, price, stock, min_stock, sku, last_updated`

func scanProduct(row rowScanner) (*models.Product, error) {
	product := &models.Product{}
	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&product.Category,
		&product.Price,
		&product.Stock,
		&product.MinStock,
		&product.SKU,
		&product.LastUpdated,
	)
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (r *ProductRepository) queryProducts(ctx context.Context, op, query string, args ...any) ([]models.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, store.StorageError(op, err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, store.StorageError("scan product", err)
		}
		products = append(products, *product)
	}

	if err := rows.Err(); err != nil {
		return nil, store.StorageError(op, err)
	}

	return products, nil
}

func (r *ProductRepository) List(ctx context.Context, search string) ([]models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products`
	var args []any

	if term := strings.TrimSpace(search); term != "" {
		query += `
		WHERE name ILIKE $1
		   OR description ILIKE $1
		   OR category ILIKE $1
		   OR COALESCE(sku, '') ILIKE $1`
		args = append(args, likePattern(term))
	}
	query += ` ORDER BY id`

	return r.queryProducts(ctx, "list products", query, args...)
}

func (r *ProductRepository) LowStock(ctx context.Context, defaultThreshold int) ([]models.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE stock <= COALESCE(min_stock, $1)
		ORDER BY stock, id`

	return r.queryProducts(ctx, "list low stock products", query, defaultThreshold)
}

func (r *ProductRepository) Get(ctx context.Context, id int64) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.NotFoundError("product", id)
		}
		return nil, store.StorageError("get product", err)
	}

	return product, nil
}

func (r *ProductRepository) Create(ctx context.Context, fields store.ProductFields) (*models.Product, error) {
	query := `
		INSERT INTO products (name, description, category, price, stock, min_stock, sku, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING ` + productColumns

	product, err := scanProduct(r.db.QueryRowContext(ctx, query,
		fields.Name, fields.Description, fields.Category, fields.Price.Round(2),
		fields.Stock, fields.MinStock, fields.SKU))
	if err != nil {
		if database.IsCheckViolation(err) {
			return nil, fmt.Errorf("%w: create product: %v", store.ErrInvalidArgument, err)
		}
		return nil, store.StorageError("create product", err)
	}

	return product, nil
}

// Update replaces every mutable field of the product and re-stamps last_updated.
func (r *ProductRepository) Update(ctx context.Context, id int64, fields store.ProductFields) (*models.Product, error) {
	query := `
		UPDATE products
		SET name = $1, description = $2, category = $3, price = $4, stock = $5,
		    min_stock = $6, sku = $7, last_updated = NOW()
		WHERE id = $8
		RETURNING ` + productColumns

	product, err := scanProduct(r.db.QueryRowContext(ctx, query,
		fields.Name, fields.Description, fields.Category, fields.Price.Round(2),
		fields.Stock, fields.MinStock, fields.SKU, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.NotFoundError("product", id)
		}
		if database.IsCheckViolation(err) {
			return nil, fmt.Errorf("%w: update product: %v", store.ErrInvalidArgument, err)
		}
		return nil, store.StorageError("update product", err)
	}

	return product, nil
}

// Delete removes a product. Products referenced by recorded sale items are
// kept and ErrReferentialConflict is returned.
func (r *ProductRepository) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return false, fmt.Errorf("product %d is referenced by recorded sales: %w", id, store.ErrReferentialConflict)
		}
		return false, store.StorageError("delete product", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, store.StorageError("delete product", fmt.Errorf("get rows affected: %w", err))
	}

	return rowsAffected > 0, nil
}

// decrementStock lowers a product's stock by quantity in a single relative
// update that refuses to go below zero.
func decrementStock(ctx context.Context, tx *sql.Tx, productID int64, quantity int) error {
	result, err := tx.ExecContext(ctx,
		`UPDATE products
		 SET stock = stock - $1,
		     last_updated = NOW()
		 WHERE id = $2
		   AND stock >= $1`,
		quantity, productID)
	if err != nil {
		if database.IsCheckViolation(err) {
			return fmt.Errorf("product %d: %w", productID, store.ErrInsufficientStock)
		}
		return fmt.Errorf("decrement stock: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		var exists bool
		err := tx.QueryRowContext(ctx,
			"SELECT EXISTS(SELECT 1 FROM products WHERE id = $1)",
			productID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check product exists: %w", err)
		}
		if !exists {
			return store.NotFoundError("product", productID)
		}
		return fmt.Errorf("product %d: %w", productID, store.ErrInsufficientStock)
	}

	return nil
}

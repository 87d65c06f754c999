package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/safar/go-pos-store/internal/models"
	"github.com/safar/go-pos-store/internal/store"
)

type ProductRepository struct {
	s *Store
}

var _ store.ProductRepository = (*ProductRepository)(nil)

func cloneProduct(p models.Product) models.Product {
	p.MinStock = copyPtr(p.MinStock)
	p.SKU = copyPtr(p.SKU)
	return p
}

func (r *ProductRepository) indexOf(id int64) int {
	for i := range r.s.products {
		if r.s.products[i].ID == id {
			return i
		}
	}
	return -1
}

func validateProductFields(fields store.ProductFields) error {
	if fields.Price.IsNegative() {
		return fmt.Errorf("%w: price %s must not be negative", store.ErrInvalidArgument, fields.Price)
	}
	if fields.Stock < 0 {
		return fmt.Errorf("%w: stock %d must not be negative", store.ErrInvalidArgument, fields.Stock)
	}
	if fields.MinStock != nil && *fields.MinStock < 0 {
		return fmt.Errorf("%w: minimum stock %d must not be negative", store.ErrInvalidArgument, *fields.MinStock)
	}
	return nil
}

func (r *ProductRepository) List(ctx context.Context, search string) ([]models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, store.StorageError("list products", err)
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	term := searchTerm(search)
	products := []models.Product{}
	for _, p := range r.s.products {
		sku := ""
		if p.SKU != nil {
			sku = *p.SKU
		}
		if term == "" || matches(term, p.Name, p.Description, p.Category, sku) {
			products = append(products, cloneProduct(p))
		}
	}
	return products, nil
}

func (r *ProductRepository) LowStock(ctx context.Context, defaultThreshold int) ([]models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, store.StorageError("list low stock products", err)
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	products := []models.Product{}
	for _, p := range r.s.products {
		if p.Stock <= p.LowStockThreshold(defaultThreshold) {
			products = append(products, cloneProduct(p))
		}
	}
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].Stock < products[j].Stock
	})
	return products, nil
}

func (r *ProductRepository) Get(ctx context.Context, id int64) (*models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, store.StorageError("get product", err)
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil, store.NotFoundError("product", id)
	}
	product := cloneProduct(r.s.products[i])
	return &product, nil
}

func (r *ProductRepository) Create(ctx context.Context, fields store.ProductFields) (*models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, store.StorageError("create product", err)
	}
	if err := validateProductFields(fields); err != nil {
		return nil, err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.nextProductID++
	product := models.Product{ID: r.s.nextProductID}
	applyProductFields(&product, fields, r.s.clock())
	r.s.products = append(r.s.products, product)

	created := cloneProduct(product)
	return &created, nil
}

// Update replaces every mutable field of the product and re-stamps LastUpdated.
func (r *ProductRepository) Update(ctx context.Context, id int64, fields store.ProductFields) (*models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, store.StorageError("update product", err)
	}
	if err := validateProductFields(fields); err != nil {
		return nil, err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil, store.NotFoundError("product", id)
	}

	applyProductFields(&r.s.products[i], fields, r.s.clock())
	updated := cloneProduct(r.s.products[i])
	return &updated, nil
}

// Delete removes a product. Products referenced by recorded sale items are
// kept and ErrReferentialConflict is returned.
func (r *ProductRepository) Delete(ctx context.Context, id int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, store.StorageError("delete product", err)
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return false, nil
	}

	for _, item := range r.s.items {
		if item.ProductID == id {
			return false, fmt.Errorf("product %d is referenced by recorded sales: %w", id, store.ErrReferentialConflict)
		}
	}

	r.s.products = append(r.s.products[:i], r.s.products[i+1:]...)
	return true, nil
}

func applyProductFields(p *models.Product, fields store.ProductFields, now time.Time) {
	p.Name = fields.Name
	p.Description = fields.Description
	p.Category = fields.Category
	p.Price = fields.Price.Round(2)
	p.Stock = fields.Stock
	p.MinStock = copyPtr(fields.MinStock)
	p.SKU = copyPtr(fields.SKU)
	p.LastUpdated = now
}

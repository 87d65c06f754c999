package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/safar/go-pos-store/internal/store"
	"github.com/shopspring/decimal"
)

type productRequest struct {
	Name        string          `json:"name" binding:"required,min=2"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Stock       *int            `json:"stock" binding:"required,gte=0"`
	MinStock    *int            `json:"minStock" binding:"omitempty,gte=0"`
	SKU         *string         `json:"sku"`
}

func (r productRequest) fields() store.ProductFields {
	return store.ProductFields{
		Name:        r.Name,
		Description: r.Description,
		Category:    r.Category,
		Price:       r.Price,
		Stock:       *r.Stock,
		MinStock:    r.MinStock,
		SKU:         r.SKU,
	}
}

// bindProduct decodes a product body. Price is checked here since the
// validator cannot compare decimals.
func bindProduct(c *gin.Context) (*productRequest, bool) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return nil, false
	}
	if !req.Price.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": "price must be greater than 0",
		})
		return nil, false
	}
	return &req, true
}

// ListProducts handles GET /api/v1/products?search=.
func (s *Server) ListProducts(c *gin.Context) {
	products, err := s.store.Products().List(c.Request.Context(), c.Query("search"))
	if err != nil {
		respondError(c, err, "list products")
		return
	}
	c.JSON(http.StatusOK, products)
}

// LowStockProducts handles GET /api/v1/products/low-stock.
func (s *Server) LowStockProducts(c *gin.Context) {
	products, err := s.reports.LowStock(c.Request.Context())
	if err != nil {
		respondError(c, err, "list low stock products")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"threshold": s.reports.LowStockThreshold(),
		"products":  products,
	})
}

func (s *Server) GetProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	product, err := s.store.Products().Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "get product")
		return
	}
	c.JSON(http.StatusOK, product)
}

func (s *Server) CreateProduct(c *gin.Context) {
	req, ok := bindProduct(c)
	if !ok {
		return
	}

	product, err := s.store.Products().Create(c.Request.Context(), req.fields())
	if err != nil {
		respondError(c, err, "create product")
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (s *Server) UpdateProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	req, ok := bindProduct(c)
	if !ok {
		return
	}

	product, err := s.store.Products().Update(c.Request.Context(), id, req.fields())
	if err != nil {
		respondError(c, err, "update product")
		return
	}
	c.JSON(http.StatusOK, product)
}

// DeleteProduct handles DELETE /api/v1/products/:id. Products referenced by a
// sale item cannot be deleted.
func (s *Server) DeleteProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	deleted, err := s.store.Products().Delete(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "delete product")
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

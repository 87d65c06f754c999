package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/safar/go-pos-store/internal/store"
	"github.com/shopspring/decimal"
)

// saleItemPayload accepts unitPrice and total as JSON strings or numbers.
type saleItemPayload struct {
	ProductID int64            `json:"productId" binding:"required,gt=0"`
	Quantity  int              `json:"quantity" binding:"required,gt=0"`
	UnitPrice *decimal.Decimal `json:"unitPrice" binding:"required"`
	Total     *decimal.Decimal `json:"total"`
}

// saleDateLayouts are the ISO-8601 forms accepted for a sale date. Layouts
// without a zone are read as UTC.
var saleDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	time.DateOnly,
}

type saleDate time.Time

func (d *saleDate) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("sale date must be a string: %w", err)
	}

	for _, layout := range saleDateLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			*d = saleDate(t)
			return nil
		}
	}
	return fmt.Errorf("sale date %q is not an ISO-8601 date or date-time", raw)
}

type saleHeader struct {
	ClientID *int64           `json:"clientId"`
	Date     *saleDate        `json:"date"`
	Total    *decimal.Decimal `json:"total"`
	Notes    *string          `json:"notes"`
}

// createSaleBody is either a flat sale or {"sale": {...}, "items": [...]}.
// Items always sit at the top level.
type createSaleBody struct {
	saleHeader
	Sale  *saleHeader       `json:"sale"`
	Items []saleItemPayload `json:"items" binding:"required,min=1,dive"`
}

func (b createSaleBody) request() store.CreateSaleRequest {
	header := b.saleHeader
	if b.Sale != nil {
		header = *b.Sale
	}

	req := store.CreateSaleRequest{
		ClientID: header.ClientID,
		Total:    header.Total,
		Notes:    header.Notes,
		Items:    make([]store.SaleItemRequest, 0, len(b.Items)),
	}
	if header.Date != nil {
		date := time.Time(*header.Date)
		req.Date = &date
	}
	for _, item := range b.Items {
		req.Items = append(req.Items, store.SaleItemRequest{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: *item.UnitPrice,
			Total:     item.Total,
		})
	}
	return req
}

// CreateSale handles POST /api/v1/sales.
func (s *Server) CreateSale(c *gin.Context) {
	var body createSaleBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondBindError(c, err)
		return
	}

	sale, err := s.store.Sales().CreateSale(c.Request.Context(), body.request())
	if err != nil {
		respondError(c, err, "create sale")
		return
	}
	c.JSON(http.StatusCreated, sale)
}

func (s *Server) GetSale(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	sale, err := s.store.Sales().GetSale(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "get sale")
		return
	}
	c.JSON(http.StatusOK, sale)
}

// ListSales handles GET /api/v1/sales?cursor=&limit=, newest first.
func (s *Server) ListSales(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	page, err := s.store.Sales().ListSales(c.Request.Context(), c.Query("cursor"), limit)
	if err != nil {
		respondError(c, err, "list sales")
		return
	}
	c.JSON(http.StatusOK, page)
}

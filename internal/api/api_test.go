package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/safar/go-pos-store/internal/report"
	"github.com/safar/go-pos-store/internal/store/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	clock := func() time.Time { return fixedNow }
	s := memory.New(memory.WithClock(clock))
	return NewServer(s, report.NewService(s, 5), WithClock(clock))
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func createProduct(t *testing.T, h http.Handler, name, price string, stock int) int64 {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/api/v1/products", map[string]any{
		"name":     name,
		"category": "General",
		"price":    price,
		"stock":    stock,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		ID int64 `json:"id"`
	}
	decode(t, rec, &created)
	return created.ID
}

func TestHealthCheckAndRequestID(t *testing.T) {
	h := newTestServer(t).Handler()

	rec := do(t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestClientLifecycle(t *testing.T) {
	h := newTestServer(t).Handler()

	rec := do(t, h, http.MethodPost, "/api/v1/clients", map[string]any{
		"name": "A", "email": "not-an-email", "phone": "",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/v1/clients", map[string]any{
		"name": "Ana Torres", "email": "ana@example.com", "phone": "555-0101", "city": "Austin",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		ID            int64      `json:"id"`
		LastOrderDate *time.Time `json:"lastOrderDate"`
	}
	decode(t, rec, &created)
	require.NotNil(t, created.LastOrderDate)

	rec = do(t, h, http.MethodGet, "/api/v1/clients?search=austin", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []map[string]any
	decode(t, rec, &listed)
	assert.Len(t, listed, 1)

	rec = do(t, h, http.MethodPut, "/api/v1/clients/1", map[string]any{
		"name": "Ana Torres", "email": "ana@torres.dev", "phone": "555-0101",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ana@torres.dev")

	rec = do(t, h, http.MethodGet, "/api/v1/clients/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodDelete, "/api/v1/clients/1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodDelete, "/api/v1/clients/1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/clients/1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProductValidation(t *testing.T) {
	h := newTestServer(t).Handler()

	cases := []struct {
		name string
		body map[string]any
	}{
		{"zero price", map[string]any{"name": "Widget", "price": "0", "stock": 1}},
		{"negative stock", map[string]any{"name": "Widget", "price": "1.00", "stock": -1}},
		{"missing stock", map[string]any{"name": "Widget", "price": "1.00"}},
		{"short name", map[string]any{"name": "W", "price": "1.00", "stock": 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/v1/products", tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}

	id := createProduct(t, h, "Widget", "9.99", 0)
	assert.Equal(t, int64(1), id)
}

func TestCreateSaleShapes(t *testing.T) {
	h := newTestServer(t).Handler()
	widget := createProduct(t, h, "Widget", "2.50", 10)
	gadget := createProduct(t, h, "Gadget", "4.00", 10)

	rec := do(t, h, http.MethodPost, "/api/v1/sales", map[string]any{
		"sale": map[string]any{
			"clientId": nil,
			"date":     "2024-06-14T10:00:00Z",
			"total":    "13.00",
		},
		"items": []map[string]any{
			{"productId": widget, "quantity": 2, "unitPrice": "2.50", "total": "5.00"},
			{"productId": gadget, "quantity": 2, "unitPrice": 4},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var sale struct {
		ID    int64  `json:"id"`
		Total string `json:"total"`
		Items []struct {
			UnitPrice string `json:"unitPrice"`
		} `json:"items"`
	}
	decode(t, rec, &sale)
	assert.Equal(t, "13", sale.Total)
	require.Len(t, sale.Items, 2)

	rec = do(t, h, http.MethodPost, "/api/v1/sales", map[string]any{
		"items": []map[string]any{{"productId": widget, "quantity": 1, "unitPrice": 2.5}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/v1/products/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var product struct {
		Stock int `json:"stock"`
	}
	decode(t, rec, &product)
	assert.Equal(t, 7, product.Stock)

	rec = do(t, h, http.MethodGet, "/api/v1/sales/1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateSaleErrors(t *testing.T) {
	h := newTestServer(t).Handler()
	widget := createProduct(t, h, "Widget", "1.00", 3)

	rec := do(t, h, http.MethodPost, "/api/v1/sales", map[string]any{
		"items": []map[string]any{{"productId": widget, "quantity": 4, "unitPrice": "1.00"}},
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/v1/sales", map[string]any{
		"total": "99.00",
		"items": []map[string]any{{"productId": widget, "quantity": 1, "unitPrice": "1.00"}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/v1/sales", map[string]any{
		"items": []map[string]any{{"productId": 42, "quantity": 1, "unitPrice": "1.00"}},
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/v1/sales", map[string]any{"items": []any{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/v1/sales", `{"items": [`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/products/1", nil)
	var product struct {
		Stock int `json:"stock"`
	}
	decode(t, rec, &product)
	assert.Equal(t, 3, product.Stock)
}

func TestDeleteReferencedProduct(t *testing.T) {
	h := newTestServer(t).Handler()
	widget := createProduct(t, h, "Widget", "1.00", 3)

	rec := do(t, h, http.MethodPost, "/api/v1/sales", map[string]any{
		"items": []map[string]any{{"productId": widget, "quantity": 1, "unitPrice": "1.00"}},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, h, http.MethodDelete, "/api/v1/products/1", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestListSalesCursor(t *testing.T) {
	h := newTestServer(t).Handler()
	widget := createProduct(t, h, "Widget", "1.00", 100)

	for i := 0; i < 3; i++ {
		rec := do(t, h, http.MethodPost, "/api/v1/sales", map[string]any{
			"items": []map[string]any{{"productId": widget, "quantity": 1, "unitPrice": "1.00"}},
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := do(t, h, http.MethodGet, "/api/v1/sales?limit=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var page struct {
		Items      []map[string]any `json:"items"`
		NextCursor string           `json:"nextCursor"`
		HasMore    bool             `json:"hasMore"`
	}
	decode(t, rec, &page)
	assert.Len(t, page.Items, 2)
	assert.True(t, page.HasMore)

	rec = do(t, h, http.MethodGet, "/api/v1/sales?limit=2&cursor="+page.NextCursor, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page.Items = nil
	decode(t, rec, &page)
	assert.Len(t, page.Items, 1)
	assert.False(t, page.HasMore)

	rec = do(t, h, http.MethodGet, "/api/v1/sales?cursor=!!!!", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReports(t *testing.T) {
	h := newTestServer(t).Handler()
	a := createProduct(t, h, "Alpha", "2.00", 20)
	b := createProduct(t, h, "Beta", "1.00", 40)

	for _, sale := range []map[string]any{
		{"date": "2024-06-10T09:00:00Z", "items": []map[string]any{{"productId": a, "quantity": 3, "unitPrice": "2.00"}}},
		{"date": "2024-06-10T18:00:00Z", "items": []map[string]any{{"productId": b, "quantity": 38, "unitPrice": "1.00"}}},
		{"date": "2024-06-12T12:00:00Z", "items": []map[string]any{{"productId": a, "quantity": 1, "unitPrice": "2.00"}}},
	} {
		rec := do(t, h, http.MethodPost, "/api/v1/sales", sale)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := do(t, h, http.MethodGet, "/api/v1/reports/daily?start=2024-06-10&end=2024-06-12", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var daily []struct {
		Date  string `json:"date"`
		Total string `json:"total"`
		Count int    `json:"count"`
	}
	decode(t, rec, &daily)
	require.Len(t, daily, 2)
	assert.Equal(t, "2024-06-10", daily[0].Date)
	assert.Equal(t, 2, daily[0].Count)
	assert.Equal(t, "44", daily[0].Total)

	rec = do(t, h, http.MethodGet, "/api/v1/reports/daily?start=2024-06-12&end=2024-06-10", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/reports/daily?start=June", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/reports/periods?period=week&start=2024-06-10&end=2024-06-16", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var weekly struct {
		Period    string `json:"period"`
		Summaries []struct {
			Date  string `json:"date"`
			Count int    `json:"count"`
		} `json:"summaries"`
	}
	decode(t, rec, &weekly)
	assert.Equal(t, "week", weekly.Period)
	require.Len(t, weekly.Summaries, 1)
	assert.Equal(t, 3, weekly.Summaries[0].Count)

	rec = do(t, h, http.MethodGet, "/api/v1/reports/periods?period=fortnight", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/reports/top-products?start=2024-06-01&end=2024-06-30&limit=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var top []struct {
		Name         string `json:"name"`
		QuantitySold int    `json:"quantitySold"`
	}
	decode(t, rec, &top)
	require.Len(t, top, 1)
	assert.Equal(t, "Beta", top[0].Name)
	assert.Equal(t, 38, top[0].QuantitySold)

	rec = do(t, h, http.MethodGet, "/api/v1/reports/sale-items?start=2024-06-12&end=2024-06-12", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var rows []map[string]any
	decode(t, rec, &rows)
	assert.Len(t, rows, 1)

	rec = do(t, h, http.MethodGet, "/api/v1/products/low-stock", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var low struct {
		Threshold int `json:"threshold"`
		Products  []struct {
			Name string `json:"name"`
		} `json:"products"`
	}
	decode(t, rec, &low)
	assert.Equal(t, 5, low.Threshold)
	require.Len(t, low.Products, 1)
	assert.Equal(t, "Beta", low.Products[0].Name)

	rec = do(t, h, http.MethodGet, "/api/v1/reports/inventory", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var inventory struct {
		Units int    `json:"units"`
		Value string `json:"value"`
	}
	decode(t, rec, &inventory)
	assert.Equal(t, 18, inventory.Units)
	assert.Equal(t, "34", inventory.Value)

	rec = do(t, h, http.MethodGet, "/api/v1/reports/dashboard?end=2024-06-15", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var dash struct {
		Start string           `json:"start"`
		Daily []map[string]any `json:"daily"`
	}
	decode(t, rec, &dash)
	assert.Equal(t, "2024-05-17", dash.Start)
	assert.Len(t, dash.Daily, 2)
}

func TestCORSPreflight(t *testing.T) {
	h := WithCORS(newTestServer(t).Handler(), []string{"http://localhost:3000"})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/products", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCreateSaleRequiresItemFields(t *testing.T) {
	h := newTestServer(t).Handler()
	widget := createProduct(t, h, "Widget", "9.99", 10)

	cases := []struct {
		name string
		item map[string]any
	}{
		{"missing unit price", map[string]any{"productId": widget, "quantity": 3}},
		{"missing quantity", map[string]any{"productId": widget, "unitPrice": "9.99"}},
		{"zero product id", map[string]any{"productId": 0, "quantity": 1, "unitPrice": "9.99"}},
		{"negative quantity", map[string]any{"productId": widget, "quantity": -1, "unitPrice": "9.99"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/v1/sales", map[string]any{
				"items": []map[string]any{tc.item},
			})
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}

	rec := do(t, h, http.MethodPost, "/api/v1/sales", map[string]any{"notes": "no items"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/products/1", nil)
	var product struct {
		Stock int `json:"stock"`
	}
	decode(t, rec, &product)
	assert.Equal(t, 10, product.Stock)
}

func TestCreateSaleDateForms(t *testing.T) {
	h := newTestServer(t).Handler()
	widget := createProduct(t, h, "Widget", "1.00", 10)

	cases := []struct {
		date string
		want time.Time
	}{
		{"2024-06-14", time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC)},
		{"2024-06-14T10:00:00", time.Date(2024, 6, 14, 10, 0, 0, 0, time.UTC)},
		{"2024-06-14T10:30", time.Date(2024, 6, 14, 10, 30, 0, 0, time.UTC)},
		{"2024-06-14T10:00:00+02:00", time.Date(2024, 6, 14, 8, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		t.Run(tc.date, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/v1/sales", map[string]any{
				"date":  tc.date,
				"items": []map[string]any{{"productId": widget, "quantity": 1, "unitPrice": "1.00"}},
			})
			require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

			var sale struct {
				Date time.Time `json:"date"`
			}
			decode(t, rec, &sale)
			assert.True(t, tc.want.Equal(sale.Date), "want %v, got %v", tc.want, sale.Date)
		})
	}

	rec := do(t, h, http.MethodPost, "/api/v1/sales", map[string]any{
		"date":  "14/06/2024",
		"items": []map[string]any{{"productId": widget, "quantity": 1, "unitPrice": "1.00"}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

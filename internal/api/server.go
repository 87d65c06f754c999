// Package api exposes the store and the reports over HTTP using gin.
package api

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/cors"
	"github.com/safar/go-pos-store/internal/report"
	"github.com/safar/go-pos-store/internal/store"
)

// RequestIDHeader carries the id tagging every request log line.
const RequestIDHeader = "X-Request-ID"

const requestIDKey = "requestID"

// Server holds the HTTP handlers of the point-of-sale API.
type Server struct {
	store   store.Store
	reports *report.Service
	now     func() time.Time
	engine  *gin.Engine
}

type Option func(*Server)

// WithClock sets the clock used to default report date ranges.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// NewServer builds the gin engine with its middleware and routes.
func NewServer(s store.Store, reports *report.Service, opts ...Option) *Server {
	srv := &Server{
		store:   s,
		reports: reports,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(srv)
	}

	srv.engine = gin.New()
	srv.engine.Use(gin.Recovery())
	srv.engine.Use(requestIDMiddleware())
	srv.engine.Use(loggingMiddleware())

	srv.registerRoutes()
	return srv
}

// Handler returns the engine as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// WithCORS wraps h with CORS handling for the given origins.
func WithCORS(h http.Handler, allowedOrigins []string) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Origin", "Content-Type", "Accept", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
	})
	return c.Handler(h)
}

func (s *Server) registerRoutes() {
	s.engine.GET("/health", s.HealthCheck)

	v1 := s.engine.Group("/api/v1")
	{
		clients := v1.Group("/clients")
		{
			clients.GET("", s.ListClients)
			clients.POST("", s.CreateClient)
			clients.GET("/:id", s.GetClient)
			clients.PUT("/:id", s.UpdateClient)
			clients.DELETE("/:id", s.DeleteClient)
		}

		products := v1.Group("/products")
		{
			products.GET("", s.ListProducts)
			products.POST("", s.CreateProduct)
			products.GET("/low-stock", s.LowStockProducts)
			products.GET("/:id", s.GetProduct)
			products.PUT("/:id", s.UpdateProduct)
			products.DELETE("/:id", s.DeleteProduct)
		}

		sales := v1.Group("/sales")
		{
			sales.POST("", s.CreateSale)
			sales.GET("", s.ListSales)
			sales.GET("/:id", s.GetSale)
		}

		reports := v1.Group("/reports")
		{
			reports.GET("/daily", s.DailyReport)
			reports.GET("/periods", s.PeriodReport)
			reports.GET("/sale-items", s.SaleItemsReport)
			reports.GET("/top-products", s.TopProductsReport)
			reports.GET("/inventory", s.InventoryReport)
			reports.GET("/dashboard", s.DashboardReport)
		}
	}
}

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		log.Printf("[%s] %s %s %d %dms %s",
			c.GetString(requestIDKey),
			method,
			path,
			c.Writer.Status(),
			time.Since(start).Milliseconds(),
			c.ClientIP(),
		)
	}
}

// HealthCheck pings the store (GET /health).
func (s *Server) HealthCheck(c *gin.Context) {
	if err := s.store.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unavailable",
			"details": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Package memory implements the store port in process memory. A single lock
// serializes writers, so every operation is atomic and isolated.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/safar/go-pos-store/internal/models"
	"github.com/safar/go-pos-store/internal/store"
)

type Store struct {
	mu  sync.RWMutex
	now func() time.Time

	clients  []models.Client
	products []models.Product
	sales    []models.Sale
	items    []models.SaleItem

	nextClientID  int64
	nextProductID int64
	nextSaleID    int64
	nextItemID    int64

	clientRepo  *ClientRepository
	productRepo *ProductRepository
	saleRepo    *SaleRepository
}

var _ store.Store = (*Store)(nil)

type Option func(*Store)

// WithClock replaces time.Now as the source of creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(opts ...Option) *Store {
	s := &Store{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	s.clientRepo = &ClientRepository{s: s}
	s.productRepo = &ProductRepository{s: s}
	s.saleRepo = &SaleRepository{s: s}
	return s
}

func (s *Store) Clients() store.ClientRepository   { return s.clientRepo }
func (s *Store) Products() store.ProductRepository { return s.productRepo }
func (s *Store) Sales() store.SaleRepository       { return s.saleRepo }

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) Close() error {
	return nil
}

func (s *Store) clock() time.Time {
	return s.now().UTC()
}

func matches(term string, fields ...string) bool {
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

func searchTerm(search string) string {
	return strings.ToLower(strings.TrimSpace(search))
}

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

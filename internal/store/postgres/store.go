// Package postgres implements the store port on PostgreSQL through lib/pq.
package postgres

import (
	"context"
	"database/sql"
	"strings"

	"github.com/safar/go-pos-store/internal/store"
)

// Store is a store.Store backed by a *sql.DB. It owns the handle and closes it
// in Close.
type Store struct {
	db       *sql.DB
	clients  *ClientRepository
	products *ProductRepository
	sales    *SaleRepository
}

var _ store.Store = (*Store)(nil)

func New(db *sql.DB) *Store {
	return &Store{
		db:       db,
		clients:  &ClientRepository{db: db},
		products: &ProductRepository{db: db},
		sales:    &SaleRepository{db: db},
	}
}

func (s *Store) Clients() store.ClientRepository   { return s.clients }
func (s *Store) Products() store.ProductRepository { return s.products }
func (s *Store) Sales() store.SaleRepository       { return s.sales }

func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return store.StorageError("ping", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// wrapErr passes domain errors through and marks everything else as a
// storage failure of op.
func wrapErr(op string, err error) error {
	if store.IsDomainError(err) {
		return err
	}
	return store.StorageError(op, err)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern builds an ILIKE substring pattern that matches term literally.
func likePattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}

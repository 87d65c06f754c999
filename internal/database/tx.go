package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// TxOption adjusts the options a transaction is started with.
type TxOption func(*sql.TxOptions)

// WithIsolation overrides the READ COMMITTED default.
func WithIsolation(level sql.IsolationLevel) TxOption {
	return func(o *sql.TxOptions) { o.Isolation = level }
}

func ReadOnly() TxOption {
	return func(o *sql.TxOptions) { o.ReadOnly = true }
}

// WithTransaction runs fn in a READ COMMITTED transaction unless opts say
// otherwise. An error or panic from fn rolls everything back. It never retries.
func WithTransaction(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error, opts ...TxOption) error {
	txOpts := &sql.TxOptions{Isolation: sql.LevelReadCommitted}
	for _, opt := range opts {
		opt(txOpts)
	}

	tx, err := db.BeginTx(ctx, txOpts)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

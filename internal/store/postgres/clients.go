package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/safar/go-pos-store/internal/models"
	"github.com/safar/go-pos-store/internal/store"
)

type ClientRepository struct {
	db *sql.DB
}

var _ store.ClientRepository = (*ClientRepository)(nil)

const clientColumns = `id, name, email, phone, address, city, state, last_order_date`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClient(row rowScanner) (*models.Client, error) {
	client := &models.Client{}
	err := row.Scan(
		&client.ID,
		&client.Name,
		&client.Email,
		&client.Phone,
		&client.Address,
		&client.City,
		&client.State,
		&client.LastOrderDate,
	)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func (r *ClientRepository) List(ctx context.Context, search string) ([]models.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients`
	var args []any

	if term := strings.TrimSpace(search); term != "" {
		query += `
		WHERE name ILIKE $1
		   OR email ILIKE $1
		   OR phone ILIKE $1
		   OR address ILIKE $1
		   OR city ILIKE $1`
		args = append(args, likePattern(term))
	}
	query += ` ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, store.StorageError("list clients", err)
	}
	defer rows.Close()

	clients := []models.Client{}
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, store.StorageError("scan client", err)
		}
		clients = append(clients, *client)
	}

	if err := rows.Err(); err != nil {
		return nil, store.StorageError("list clients", err)
	}

	return clients, nil
}

func (r *ClientRepository) Get(ctx context.Context, id int64) (*models.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = $1`

	client, err := scanClient(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.NotFoundError("client", id)
		}
		return nil, store.StorageError("get client", err)
	}

	return client, nil
}

// Create inserts a client. Its last order date starts at the creation time.
func (r *ClientRepository) Create(ctx context.Context, fields store.ClientFields) (*models.Client, error) {
	query := `
		INSERT INTO clients (name, email, phone, address, city, state, last_order_date)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING ` + clientColumns

	client, err := scanClient(r.db.QueryRowContext(ctx, query,
		fields.Name, fields.Email, fields.Phone, fields.Address, fields.City, fields.State))
	if err != nil {
		return nil, store.StorageError("create client", err)
	}

	return client, nil
}

func (r *ClientRepository) Update(ctx context.Context, id int64, fields store.ClientFields) (*models.Client, error) {
	query := `
		UPDATE clients
		SET name = $1, email = $2, phone = $3, address = $4, city = $5, state = $6
		WHERE id = $7
		RETURNING ` + clientColumns

	client, err := scanClient(r.db.QueryRowContext(ctx, query,
		fields.Name, fields.Email, fields.Phone, fields.Address, fields.City, fields.State, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.NotFoundError("client", id)
		}
		return nil, store.StorageError("update client", err)
	}

	return client, nil
}

// Delete removes a client. Sales of the client are kept and become anonymous.
func (r *ClientRepository) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return false, store.StorageError("delete client", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, store.StorageError("delete client", fmt.Errorf("get rows affected: %w", err))
	}

	return rowsAffected > 0, nil
}

package memory

import (
	"context"

	"github.com/safar/go-pos-store/internal/models"
	"github.com/safar/go-pos-store/internal/store"
)

type ClientRepository struct {
	s *Store
}

var _ store.ClientRepository = (*ClientRepository)(nil)

func cloneClient(c models.Client) models.Client {
	c.LastOrderDate = copyPtr(c.LastOrderDate)
	return c
}

func (r *ClientRepository) indexOf(id int64) int {
	for i := range r.s.clients {
		if r.s.clients[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *ClientRepository) List(ctx context.Context, search string) ([]models.Client, error) {
	if err := ctx.Err(); err != nil {
		return nil, store.StorageError("list clients", err)
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	term := searchTerm(search)
	clients := []models.Client{}
	for _, c := range r.s.clients {
		if term == "" || matches(term, c.Name, c.Email, c.Phone, c.Address, c.City) {
			clients = append(clients, cloneClient(c))
		}
	}
	return clients, nil
}

func (r *ClientRepository) Get(ctx context.Context, id int64) (*models.Client, error) {
	if err := ctx.Err(); err != nil {
		return nil, store.StorageError("get client", err)
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil, store.NotFoundError("client", id)
	}
	client := cloneClient(r.s.clients[i])
	return &client, nil
}

// Create inserts a client. Its last order date starts at the creation time.
func (r *ClientRepository) Create(ctx context.Context, fields store.ClientFields) (*models.Client, error) {
	if err := ctx.Err(); err != nil {
		return nil, store.StorageError("create client", err)
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.nextClientID++
	now := r.s.clock()
	client := models.Client{
		ID:            r.s.nextClientID,
		Name:          fields.Name,
		Email:         fields.Email,
		Phone:         fields.Phone,
		Address:       fields.Address,
		City:          fields.City,
		State:         fields.State,
		LastOrderDate: &now,
	}
	r.s.clients = append(r.s.clients, client)

	created := cloneClient(client)
	return &created, nil
}

func (r *ClientRepository) Update(ctx context.Context, id int64, fields store.ClientFields) (*models.Client, error) {
	if err := ctx.Err(); err != nil {
		return nil, store.StorageError("update client", err)
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil, store.NotFoundError("client", id)
	}

	c := &r.s.clients[i]
	c.Name = fields.Name
	c.Email = fields.Email
	c.Phone = fields.Phone
	c.Address = fields.Address
	c.City = fields.City
	c.State = fields.State

	updated := cloneClient(*c)
	return &updated, nil
}

// Delete removes a client. Sales of the client are kept and become anonymous.
func (r *ClientRepository) Delete(ctx context.Context, id int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, store.StorageError("delete client", err)
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return false, nil
	}

	r.s.clients = append(r.s.clients[:i], r.s.clients[i+1:]...)
	for j := range r.s.sales {
		if cid := r.s.sales[j].ClientID; cid != nil && *cid == id {
			r.s.sales[j].ClientID = nil
		}
	}
	return true, nil
}

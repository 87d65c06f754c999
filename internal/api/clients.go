package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/safar/go-pos-store/internal/store"
)

type clientRequest struct {
	Name    string `json:"name" binding:"required,min=2"`
	Email   string `json:"email" binding:"required,email"`
	Phone   string `json:"phone" binding:"required"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
}

func (r clientRequest) fields() store.ClientFields {
	return store.ClientFields{
		Name:    r.Name,
		Email:   r.Email,
		Phone:   r.Phone,
		Address: r.Address,
		City:    r.City,
		State:   r.State,
	}
}

// ListClients handles GET /api/v1/clients?search=.
func (s *Server) ListClients(c *gin.Context) {
	clients, err := s.store.Clients().List(c.Request.Context(), c.Query("search"))
	if err != nil {
		respondError(c, err, "list clients")
		return
	}
	c.JSON(http.StatusOK, clients)
}

func (s *Server) GetClient(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	client, err := s.store.Clients().Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "get client")
		return
	}
	c.JSON(http.StatusOK, client)
}

func (s *Server) CreateClient(c *gin.Context) {
	var req clientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	client, err := s.store.Clients().Create(c.Request.Context(), req.fields())
	if err != nil {
		respondError(c, err, "create client")
		return
	}
	c.JSON(http.StatusCreated, client)
}

func (s *Server) UpdateClient(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req clientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	client, err := s.store.Clients().Update(c.Request.Context(), id, req.fields())
	if err != nil {
		respondError(c, err, "update client")
		return
	}
	c.JSON(http.StatusOK, client)
}

// DeleteClient handles DELETE /api/v1/clients/:id. Sales of the client are
// kept and become anonymous.
func (s *Server) DeleteClient(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	deleted, err := s.store.Clients().Delete(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "delete client")
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Client not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

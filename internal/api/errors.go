package api

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/safar/go-pos-store/internal/database"
	"github.com/safar/go-pos-store/internal/store"
)

// respondError maps store errors onto HTTP statuses. Storage failures carry a
// retryable flag telling the caller whether the whole operation may be retried.
func respondError(c *gin.Context, err error, operation string) {
	switch {
	case errors.Is(err, store.ErrInvalidArgument):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found", "details": err.Error()})
	case errors.Is(err, store.ErrInsufficientStock):
		c.JSON(http.StatusConflict, gin.H{"error": "Insufficient stock", "details": err.Error()})
	case errors.Is(err, store.ErrReferentialConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "Still referenced", "details": err.Error()})
	default:
		log.Printf("[%s] Failed to %s: %v", c.GetString(requestIDKey), operation, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Failed to " + operation,
			"details":   err.Error(),
			"retryable": database.IsRetryable(err),
		})
	}
}

func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request body",
		"details": err.Error(),
	})
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id", "details": c.Param("id")})
		return 0, false
	}
	return id, true
}

package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
	"storefront/internal/medusa"
)

// writeError maps service errors onto a JSON error response. Backend
// rejections keep their message; anything unexpected becomes a 500.
func writeError(c *gin.Context, err error) {
	var (
		apiErr      *medusa.APIError
		completeErr *medusa.CompletionError
	)
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, domain.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	case errors.As(err, &completeErr):
		c.JSON(http.StatusConflict, gin.H{"error": completeErr.Message})
	case errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500:
		c.JSON(http.StatusBadRequest, gin.H{"error": apiErr.Message})
	case errors.As(err, &apiErr):
		_ = c.Error(err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "commerce backend unavailable"})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

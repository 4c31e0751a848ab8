package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/memelab/memeqa/internal/service"
)

// writeServiceError maps service-layer errors to JSON responses. Unrecognized
// errors become a generic 500; internals are never exposed to clients.
func writeServiceError(c *gin.Context, err error) {
	var vErr *service.ValidationError
	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "Validation failed",
			"field":   vErr.Field,
			"message": vErr.Message,
		})
	case errors.Is(err, service.ErrSelfEvaluation):
		c.JSON(http.StatusForbidden, gin.H{"error": "You cannot evaluate your own meme"})
	case errors.Is(err, service.ErrMemeNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Meme not found"})
	case errors.Is(err, service.ErrAccountNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
	case errors.Is(err, service.ErrAccountExists):
		c.JSON(http.StatusConflict, gin.H{"error": "An account with this email already exists"})
	case errors.Is(err, service.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired login link"})
	case errors.Is(err, service.ErrQuotaExceeded):
		resp := gin.H{
			"error":    "Contribution limit reached",
			"redirect": "register",
		}
		var qErr *service.QuotaError
		if errors.As(err, &qErr) {
			resp["reason"] = qErr.Reason
		}
		c.JSON(http.StatusForbidden, resp)
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong, please try again"})
	}
}

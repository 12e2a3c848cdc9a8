package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"craftmarket/internal/market"
)

// renderError maps the taxonomy onto HTTP statuses. Anything outside the
// taxonomy is an internal fault: it gets logged with detail and answered with
// a generic body.
func renderError(c *gin.Context, err error) {
	if ve, ok := market.AsValidation(err); ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": ve.Fields})
		return
	}
	switch {
	case errors.Is(err, market.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, market.ErrNotAuthor),
		errors.Is(err, market.ErrNotEntitled):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, market.ErrDuplicateReview):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, market.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, market.ErrWrongPassword):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, market.ErrPaymentDeclined):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": err.Error()})
	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

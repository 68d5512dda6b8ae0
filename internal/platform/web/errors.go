package web

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ridloal/storefront-sync/internal/platform/logger"
	"github.com/ridloal/storefront-sync/internal/product/domain"
)

// StatusFor maps the product error kinds to an HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrStore):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// RespondError writes {"error": ...}. Validation and not-found messages go to the client
// verbatim, anything else is logged and replaced by fallback.
func RespondError(c *gin.Context, op string, err error, fallback string) {
	status := StatusFor(err)
	body := gin.H{"error": fallback}

	var vErr *domain.ValidationError
	switch {
	case errors.As(err, &vErr):
		body["error"] = vErr.Message
		if len(vErr.Fields) > 0 {
			body["fields"] = vErr.Fields
		}
	case status == http.StatusNotFound:
		body["error"] = err.Error()
	default:
		logger.Error(op+": service error", err)
	}
	c.JSON(status, body)
}

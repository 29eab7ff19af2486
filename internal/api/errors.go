package api

import (
	"errors"
	"io"
	"net/http"

	"storefront/internal/service"
	"storefront/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError maps service errors onto {error, code, details} responses
func (h *Handler) respondError(c *gin.Context, err error) {
	var verr *service.ValidationError

	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   verr.Message,
			"code":    "validation_error",
			"details": verr.Fields,
		})
	case errors.Is(err, service.ErrMissingCart):
		c.JSON(http.StatusBadRequest, gin.H{"error": "No cart", "code": "missing_cart"})
	case errors.Is(err, service.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cart is empty", "code": "empty_cart"})
	case errors.Is(err, service.ErrMissingProduct):
		c.JSON(http.StatusBadRequest, gin.H{"error": "product_id required", "code": "missing_product"})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found", "code": "not_found"})
	case errors.Is(err, service.ErrCheckoutInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "code": "checkout_in_progress"})
	default:
		util.LoggerFromContext(c.Request.Context()).Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "code": "store_error"})
	}
}

// bindJSON decodes an optional JSON body. An empty body leaves req untouched;
// a malformed one is answered with 400.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"code":    "invalid_body",
			"details": err.Error(),
		})
		return false
	}
	return true
}

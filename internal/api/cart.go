package api

import (
	"net/http"

	"storefront/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) listCart(c *gin.Context) {
	lines, err := h.cart.ListCart(c.Request.Context(), cartIdentityFrom(c).ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, lines)
}

func (h *Handler) addToCart(c *gin.Context) {
	var req service.AddLineRequest
	if !bindJSON(c, &req) {
		return
	}

	id, err := h.cart.AddLine(c.Request.Context(), cartIdentityFrom(c).ID, &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *Handler) updateCartLine(c *gin.Context) {
	lineID, ok := parseID(c)
	if !ok {
		return
	}

	var req service.UpdateLineRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.cart.UpdateLine(c.Request.Context(), cartIdentityFrom(c).ID, lineID, &req); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) removeCartLine(c *gin.Context) {
	lineID, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.cart.RemoveLine(c.Request.Context(), cartIdentityFrom(c).ID, lineID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

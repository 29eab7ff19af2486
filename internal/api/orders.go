package api

import (
	"net/http"

	"storefront/internal/service"

	"github.com/gin-gonic/gin"
)

// checkoutCart converts the caller's cart into orders
func (h *Handler) checkoutCart(c *gin.Context) {
	var req service.CheckoutRequest
	if !bindJSON(c, &req) {
		return
	}

	// A cart cookie issued on this very request has never held any lines.
	cartID := ""
	if id := cartIdentityFrom(c); !id.Issued {
		cartID = id.ID
	}

	res, err := h.checkout.Checkout(c.Request.Context(), cartID, &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// createOrder handles direct order creation
func (h *Handler) createOrder(c *gin.Context) {
	var req service.CreateOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := h.orders.CreateOrder(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": order.ID})
}

func (h *Handler) listOrders(c *gin.Context) {
	orders, err := h.orders.ListOrders(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Handler) deleteOrder(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.orders.DeleteOrder(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

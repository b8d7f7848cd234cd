package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	cartsvc "storefront/internal/service/cart"
)

func (h *api) shippingOptions(c *gin.Context) {
	ctx := c.Request.Context()
	sess := sessionFrom(c)
	options, err := h.deps.Carts.ShippingOptions(ctx, sess)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"shipping_options": options})
}

func (h *api) selectShipping(c *gin.Context) {
	var req struct {
		OptionID string `json:"option_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	ctx := c.Request.Context()
	cart, sel, err := h.deps.Carts.SelectShipping(ctx, sessionFrom(c), req.OptionID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartResponse{Cart: h.cartView(ctx, cart), Shipping: sel})
}

func (h *api) updateContact(c *gin.Context) {
	var req cartsvc.ContactInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	sess := sessionFrom(c)
	cart, err := h.deps.Carts.UpdateContact(c.Request.Context(), sess, req)
	if err != nil {
		writeError(c, err)
		return
	}
	h.respondCart(c, sess, cart, nil)
}

func (h *api) startPayment(c *gin.Context) {
	payment, err := h.deps.Checkout.StartPayment(c.Request.Context(), sessionFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

// completeCheckout places the order after the browser confirmed the payment.
func (h *api) completeCheckout(c *gin.Context) {
	ctx := c.Request.Context()
	order, err := h.deps.Checkout.Complete(ctx, sessionFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": h.orderView(ctx, order)})
}

func (h *api) lookupOrder(c *gin.Context) {
	ctx := c.Request.Context()
	order, err := h.deps.Orders.Lookup(ctx, c.Query("order_id"), c.Query("email"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": h.orderView(ctx, order)})
}

package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/domain"
)

// getCart loads (or starts) the visitor's cart. For signed-in customers the
// first load of each cart also picks the best collected coupon.
func (h *api) getCart(c *gin.Context) {
	ctx := c.Request.Context()
	sess := sessionFrom(c)
	cart, err := h.deps.Carts.Current(ctx, sess)
	if err != nil {
		writeError(c, err)
		return
	}
	res := h.deps.Coupons.AutoApply(ctx, sess, cart)
	if res.Ran {
		// The resolver's last response may predate the final state.
		if fresh, err := h.deps.Carts.Current(ctx, sess); err == nil {
			res.Cart = fresh
		} else {
			h.logger.Warn("reload cart after coupon resolution failed", zap.Error(err))
		}
	}
	if res.Cart != nil {
		cart = res.Cart
	}
	h.respondCart(c, sess, cart, autoCoupon(res))
}

func (h *api) respondCart(c *gin.Context, sess *domain.Session, cart *domain.Cart, auto *autoCouponView) {
	ctx := c.Request.Context()
	sel, err := h.deps.Carts.Selection(ctx, sess, cart)
	if err != nil {
		h.logger.Warn("load shipping selection failed", zap.String("cart_id", cart.ID), zap.Error(err))
	}
	c.JSON(http.StatusOK, cartResponse{Cart: h.cartView(ctx, cart), Shipping: sel, AutoCoupon: auto})
}

type addItemRequest struct {
	VariantID string `json:"variant_id"`
	Quantity  int    `json:"quantity"`
}

func (h *api) addItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	sess := sessionFrom(c)
	cart, err := h.deps.Carts.AddItem(c.Request.Context(), sess, req.VariantID, req.Quantity)
	if err != nil {
		writeError(c, err)
		return
	}
	h.respondCart(c, sess, cart, nil)
}

func (h *api) updateItem(c *gin.Context) {
	var req struct {
		Quantity *int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Quantity == nil {
		badRequest(c, "quantity required")
		return
	}
	sess := sessionFrom(c)
	cart, err := h.deps.Carts.UpdateItem(c.Request.Context(), sess, c.Param("lineID"), *req.Quantity)
	if err != nil {
		writeError(c, err)
		return
	}
	h.respondCart(c, sess, cart, nil)
}

func (h *api) removeItem(c *gin.Context) {
	sess := sessionFrom(c)
	cart, err := h.deps.Carts.RemoveItem(c.Request.Context(), sess, c.Param("lineID"))
	if err != nil {
		writeError(c, err)
		return
	}
	h.respondCart(c, sess, cart, nil)
}

// applyPromotion answers 200 when the code was applied and 422 with a
// customer-facing message when it was not.
func (h *api) applyPromotion(c *gin.Context) {
	var req struct {
		Code string `json:"code"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	ctx := c.Request.Context()
	sess := sessionFrom(c)
	if sess.CartID == "" {
		writeError(c, domain.ErrNotFound)
		return
	}
	out := h.deps.Coupons.Apply(ctx, sess.CartID, req.Code)
	if !out.Success {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "message": out.Message, "error": out.Message})
		return
	}
	cart, err := h.deps.Carts.Current(ctx, sess)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": out.Message, "cart": h.cartView(ctx, cart)})
}

func (h *api) removePromotion(c *gin.Context) {
	ctx := c.Request.Context()
	sess := sessionFrom(c)
	if sess.CartID == "" {
		writeError(c, domain.ErrNotFound)
		return
	}
	if _, err := h.deps.Coupons.Remove(ctx, sess.CartID, c.Param("code")); err != nil {
		writeError(c, err)
		return
	}
	cart, err := h.deps.Carts.Current(ctx, sess)
	if err != nil {
		writeError(c, err)
		return
	}
	h.respondCart(c, sess, cart, nil)
}

package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *api) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	sess := sessionFrom(c)
	customer, err := h.deps.Accounts.Login(c.Request.Context(), sess, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
			return
		}
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"customer": customer})
}

func (h *api) logout(c *gin.Context) {
	if err := h.deps.Accounts.Logout(c.Request.Context(), sessionFrom(c)); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *api) me(c *gin.Context) {
	customer, err := h.deps.Accounts.Me(c.Request.Context(), sessionFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"customer": customer})
}

func (h *api) listCoupons(c *gin.Context) {
	sess := sessionFrom(c)
	if !sess.Authenticated() {
		writeError(c, domain.ErrUnauthorized)
		return
	}
	codes, err := h.deps.Coupons.Collected(withToken(c, sess))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"codes": codes})
}

func (h *api) collectCoupon(c *gin.Context) {
	var req struct {
		Code string `json:"code"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	sess := sessionFrom(c)
	if !sess.Authenticated() {
		writeError(c, domain.ErrUnauthorized)
		return
	}
	codes, err := h.deps.Coupons.Collect(withToken(c, sess), req.Code)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"codes": codes})
}

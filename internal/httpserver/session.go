package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/domain"
)

type sessionResponse struct {
	Session       *domain.Session `json:"session"`
	Authenticated bool            `json:"authenticated"`
	Region        *domain.Region  `json:"region,omitempty"`
}

func (h *api) getSession(c *gin.Context) {
	sess := sessionFrom(c)
	ctx := c.Request.Context()
	resp := sessionResponse{Session: sess, Authenticated: sess.Authenticated()}
	region, err := h.deps.Regions.Resolve(ctx, sess.RegionID, c.GetHeader("X-Country-Code"))
	if err != nil {
		h.logger.Warn("resolve region for session failed", zap.Error(err))
	} else {
		resp.Region = region
	}
	c.JSON(http.StatusOK, resp)
}

func (h *api) verifyAge(c *gin.Context) {
	var req struct {
		Verified *bool `json:"verified"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Verified == nil {
		badRequest(c, "verified required")
		return
	}
	sess := sessionFrom(c)
	sess.AgeVerified = *req.Verified
	if err := h.deps.Sessions.Save(c.Request.Context(), sess); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": sess})
}

func (h *api) dismissExitIntent(c *gin.Context) {
	sess := sessionFrom(c)
	if !sess.ExitIntentDismissed {
		sess.ExitIntentDismissed = true
		if err := h.deps.Sessions.Save(c.Request.Context(), sess); err != nil {
			writeError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"session": sess})
}

package httpserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/medusa"
)

type ctxKey string

const sessionCtxKey ctxKey = "session"

const requestIDHeader = "X-Request-ID"

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// sessionMiddleware loads the visitor's session from the cookie, starting a
// new one when the cookie is missing or stale. The session and the customer
// token, if any, are put on the request context.
func sessionMiddleware(store SessionStore, opts CookieOptions, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var sess *domain.Session
		if id, err := c.Cookie(opts.Name); err == nil && id != "" {
			found, err := store.Get(ctx, id)
			switch {
			case err == nil:
				sess = found
			case errors.Is(err, domain.ErrNotFound):
			default:
				logger.Error("load session failed", zap.Error(err))
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
				return
			}
		}
		if sess == nil {
			created, err := store.Create(ctx)
			if err != nil {
				logger.Error("create session failed", zap.Error(err))
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
				return
			}
			sess = created
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(opts.Name, sess.ID, int(opts.MaxAge.Seconds()), "/", "", opts.Secure, true)

		ctx = context.WithValue(ctx, sessionCtxKey, sess)
		ctx = medusa.WithToken(ctx, sess.CustomerToken)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func sessionFrom(c *gin.Context) *domain.Session {
	sess, _ := c.Request.Context().Value(sessionCtxKey).(*domain.Session)
	return sess
}

// withToken refreshes the customer token on the request context after the
// handler changed it on the session.
func withToken(c *gin.Context, sess *domain.Session) context.Context {
	return medusa.WithToken(c.Request.Context(), sess.CustomerToken)
}

package httpapi

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/communityfeed/internal/common"
	"github.com/dmitrijs2005/communityfeed/internal/logging"
	"github.com/dmitrijs2005/communityfeed/internal/server/observability"
)

// extractBearerToken returns the credential from an "Authorization: Bearer
// <token>" header, or "" when there is none.
func extractBearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// requireAuth resolves the session and stores the user id in the gin
// context; requests without a valid session stop with 401.
func (h *Handler) requireAuth(c *gin.Context) {
	token := extractBearerToken(c.GetHeader(common.AuthorizationHeaderName))

	userID, err := h.users.ResolveSession(c.Request.Context(), token)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Set(common.UserIDContextKey, userID)
	c.Next()
}

// optionalAuth resolves a session when one is presented and ignores it
// otherwise.
func (h *Handler) optionalAuth(c *gin.Context) {
	token := extractBearerToken(c.GetHeader(common.AuthorizationHeaderName))
	if token != "" {
		if userID, err := h.users.ResolveSession(c.Request.Context(), token); err == nil {
			c.Set(common.UserIDContextKey, userID)
		}
	}
	c.Next()
}

func userID(c *gin.Context) string {
	return c.GetString(common.UserIDContextKey)
}

// requestTimeout bounds the request context; store calls inherit it.
func requestTimeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func routeLabel(c *gin.Context) string {
	if r := c.FullPath(); r != "" {
		return r
	}
	return "unmatched"
}

func instrument(m *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		m.HTTPInFlight.Inc()
		defer m.HTTPInFlight.Dec()

		c.Next()

		route := routeLabel(c)
		m.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

func accessLog(l logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		args := []any{
			"method", c.Request.Method,
			"route", routeLabel(c),
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
		}
		if id := userID(c); id != "" {
			args = append(args, "user_id", id)
		}
		l.Info(c.Request.Context(), "request", args...)
	}
}

func recovery(l logging.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		l.Error(c.Request.Context(), "panic serving request",
			"route", routeLabel(c),
			"panic", fmt.Sprint(recovered))
		c.AbortWithStatusJSON(500, gin.H{"error": "internal error"})
	})
}

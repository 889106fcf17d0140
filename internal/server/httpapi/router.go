package httpapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/dmitrijs2005/communityfeed/internal/common"
)

type RouterConfig struct {
	AllowedOrigins []string
	RequestTimeout time.Duration
}

// NewRouter wires the middleware chain and every route.
func NewRouter(h *Handler, rc RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(
		recovery(h.logger),
		otelgin.Middleware(common.ServiceName),
		instrument(h.metrics),
		accessLog(h.logger),
		cors.New(corsConfig(rc.AllowedOrigins)),
		requestTimeout(rc.RequestTimeout),
	)

	r.GET("/metrics", gin.WrapH(h.metrics.Handler()))

	api := r.Group("/api")
	api.GET("/health", h.Health)

	api.POST("/auth/register", h.Register)
	api.POST("/auth/login", h.Login)

	api.GET("/feed", h.optionalAuth, h.Feed)
	api.GET("/posts/:id", h.GetPost)
	api.GET("/posts/:id/comments", h.ListComments)

	authed := api.Group("", h.requireAuth)
	authed.GET("/me", h.Me)
	authed.PATCH("/me", h.UpdateMe)
	authed.POST("/posts", h.CreatePost)
	authed.POST("/posts/:id/comments", h.CreateComment)
	authed.POST("/posts/:id/like", h.ToggleLike)
	authed.POST("/reports", h.CreateReport)
	authed.POST("/uploads", h.Upload)
	authed.POST("/uploads/presign", h.PresignUpload)

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{"GET", "POST", "PATCH", "OPTIONS"}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", common.AuthorizationHeaderName}
	cfg.MaxAge = 12 * time.Hour
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"offertanalys/internal/shared/config"
	"offertanalys/internal/shared/metrics"
	"offertanalys/internal/shared/server/middleware"
	"offertanalys/internal/shared/server/respond"
)

// RouteRegistrar is implemented by every package handler.
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

type RouterDeps struct {
	Config   config.Config
	Handlers []RouteRegistrar
	// Limiter is shared across requests; nil builds a fresh one.
	Limiter *middleware.RateLimiter
}

// Routes that issue model calls and share the stricter rate limit.
var llmRoutes = []string{
	"POST /api/v1/quotes/analyze",
	"POST /api/v1/quotes/analyze-batch",
	"POST /api/v1/quotes/upload",
	"POST /api/v1/compare",
	"POST /api/v1/files/process",
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.MaxMultipartMemory = 32 << 20

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules: map[string]middleware.RateLimitRule{
				middleware.LLMRateLimitGroup: {
					PerMinute: float64(deps.Config.LLMRatePerMinute),
					Burst:     deps.Config.LLMRateBurst,
				},
			},
			GroupFor: middleware.LLMRoutes(llmRoutes...),
			Limiter:  deps.Limiter,
		}),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	for _, h := range deps.Handlers {
		if h != nil {
			h.RegisterRoutes(api)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		respond.Error(c, http.StatusNotFound, "not_found", "route not found", nil)
	})
	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}

package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pageza/recipe-buddy/backend/internal/api"
	"github.com/pageza/recipe-buddy/backend/internal/middleware"
)

// Options configures SetupRouter.
type Options struct {
	CORSOrigins []string
	// Limiter rate limits /api/v1. Nil disables rate limiting.
	Limiter middleware.Limiter
}

// SetupRouter configures the application routes
func SetupRouter(handler *api.Handler, system *api.SystemHandler, opts Options) *gin.Engine {
	router := gin.New()

	router.Use(
		middleware.RequestID(),
		middleware.Recovery(),
		middleware.RequestLogger(),
		middleware.Metrics(),
		middleware.CORS(opts.CORSOrigins),
	)

	system.RegisterRoutes(router)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	if opts.Limiter != nil {
		v1.Use(middleware.RateLimitMiddleware(opts.Limiter))
	}
	handler.RegisterRoutes(v1)

	return router
}

// router/router.go

package router

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/controller"
	logger "github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/logging"
	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/middleware"
)

// Options configures the middleware chain.
type Options struct {
	// JWTSecret enables bearer authentication on /api/v1. Without it the
	// admin routes are unreachable.
	JWTSecret   []byte
	AdminGroups []string

	// RateLimit is nil when no shared store is available.
	RateLimit         middleware.LimitFunc
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

func SetupRouter(controllers *controller.Controllers, opts Options) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())

	controllers.Health.RegisterRoutes(router)

	api := router.Group("/api/v1")
	if len(opts.JWTSecret) > 0 {
		api.Use(middleware.Authenticate(opts.JWTSecret))
	} else {
		logger.Warn("No JWT secret configured, API is unauthenticated and admin routes are disabled")
	}
	if opts.RateLimit != nil && opts.RateLimitRequests > 0 {
		api.Use(middleware.RateLimiter(opts.RateLimit, opts.RateLimitRequests, opts.RateLimitWindow))
	}

	controllers.Session.RegisterRoutes(api)
	controllers.Panel.RegisterRoutes(api)

	admin := api.Group("", middleware.GroupAuthMiddleware(opts.AdminGroups))
	controllers.Panel.RegisterAdminRoutes(admin)
	controllers.Audit.RegisterRoutes(admin)

	return router
}

package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-admin-service/internal/adapter/gin/handler"
	"user-admin-service/internal/adapter/gin/middleware"
	"user-admin-service/pkg/logger"
	"user-admin-service/pkg/metrics"
)

// maxBodyBytes bounds create and update payloads.
const maxBodyBytes = 1 << 20

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Options carries the optional pieces of the router. Nil fields are skipped.
type Options struct {
	ServiceName  string
	RateLimiter  *middleware.RateLimiter
	Prom         *metrics.Prom
	HealthChecks map[string]HealthCheck
}

// SetupRouter configures and returns a Gin router with all routes and middleware
func SetupRouter(userHandler *handler.UserHandler, opts Options, log *zap.Logger) *gin.Engine {
	router := gin.New()

	router.Use(logger.RequestID())
	router.Use(middleware.Recovery(log))
	router.Use(middleware.Logger(log))
	if opts.Prom != nil {
		router.Use(opts.Prom.GinHandleMiddleware())
		router.GET("/metrics", gin.WrapH(opts.Prom.Handler()))
	}

	router.GET("/health", health(opts.ServiceName, opts.HealthChecks))

	api := router.Group("/api")
	api.Use(opts.RateLimiter.Handler(), middleware.MaxBodyBytes(maxBodyBytes))
	{
		users := api.Group("/users")
		{
			users.GET("", userHandler.ListUsers)
			users.POST("", userHandler.CreateUser)
			users.GET("/:id", userHandler.GetUser)
			users.PATCH("/:id", userHandler.UpdateUser)
			users.PUT("/:id", userHandler.UpdateUser)
			users.DELETE("/:id", userHandler.DeleteUser)
		}
	}

	return router
}

func health(service string, checks map[string]HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		results := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				status = http.StatusServiceUnavailable
				results[name] = err.Error()
				continue
			}
			results[name] = "ok"
		}

		state := "healthy"
		if status != http.StatusOK {
			state = "unhealthy"
		}
		c.JSON(status, gin.H{
			"status":  state,
			"service": service,
			"checks":  results,
		})
	}
}

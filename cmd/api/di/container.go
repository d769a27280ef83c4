package di

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"user-admin-service/cmd/api/infrastructure"
	"user-admin-service/internal/adapter/cache"
	ginhandler "user-admin-service/internal/adapter/gin/handler"
	"user-admin-service/internal/adapter/gin/middleware"
	ginrouter "user-admin-service/internal/adapter/gin/router"
	"user-admin-service/internal/adapter/repository/cached"
	"user-admin-service/internal/config"
	"user-admin-service/internal/usecase/user"
	"user-admin-service/pkg/metrics"
	redisclient "user-admin-service/pkg/redis"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	DB          *gorm.DB
	RedisClient *redisclient.Client
	Prom        *metrics.Prom
	UserUC      user.Usecase
	RateLimiter *middleware.RateLimiter
	GinHandler  *ginhandler.UserHandler
	Router      *gin.Engine
}

// NewContainer creates and initializes all application dependencies
func NewContainer(ctx context.Context, cfg *config.Config, l *zap.Logger) (_ *Container, err error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	c := &Container{Config: cfg, Logger: l}
	defer func() {
		if err != nil {
			_ = c.Close()
		}
	}()

	if cfg.Store.Driver != config.StoreDriverJSON {
		if c.DB, err = infrastructure.NewDatabase(cfg, l); err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
	}

	if c.RedisClient, err = infrastructure.NewRedisClient(ctx, cfg, l); err != nil {
		return nil, fmt.Errorf("failed to initialize Redis: %w", err)
	}

	if cfg.Metrics.Enabled {
		c.Prom = metrics.NewProm()
	}

	store := infrastructure.NewStore(cfg, c.DB, l)
	checks := map[string]ginrouter.HealthCheck{"store": store.Check}

	repo := store.Repo
	if c.RedisClient != nil {
		userCache := cache.NewRedisUserCache(
			c.RedisClient.Client,
			time.Duration(cfg.Redis.CacheTTL)*time.Second,
			l,
		)
		repo = cached.NewUserRepository(repo, userCache, c.Prom, l)
		checks["redis"] = c.RedisClient.Check

		c.RateLimiter = middleware.NewRateLimiter(
			c.RedisClient.Client,
			middleware.RateLimiterConfig{
				RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
				BurstCapacity:     cfg.RateLimit.BurstCapacity,
				Enabled:           cfg.RateLimit.Enabled,
			},
			c.Prom,
			l,
		)
	}

	c.UserUC = user.New(repo, l)
	c.GinHandler = ginhandler.NewUserHandler(c.UserUC, l)
	c.Router = ginrouter.SetupRouter(c.GinHandler, ginrouter.Options{
		ServiceName:  cfg.Logger.ServiceName,
		RateLimiter:  c.RateLimiter,
		Prom:         c.Prom,
		HealthChecks: checks,
	}, l)

	return c, nil
}

// Close closes all resources held by the container
func (c *Container) Close() error {
	var errs []error

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	if c.DB != nil {
		if err := infrastructure.CloseDatabase(c.DB); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	return errors.Join(errs...)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"sigo-api/internal/cache"
	"sigo-api/internal/config"
	"sigo-api/internal/controllers"
	"sigo-api/internal/database"
	"sigo-api/internal/jwt"
	"sigo-api/internal/logger"
	"sigo-api/internal/middleware"
	"sigo-api/internal/password"
	"sigo-api/internal/powerbi"
	"sigo-api/internal/repository"
	"sigo-api/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.New("info", "production").Fatal("Failed to load configuration", zap.Error(err))
	}

	log := logger.New(cfg.LogLevel, cfg.Environment)
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("Server stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to database
	db, err := database.NewConnection(ctx, cfg.DatabaseURL, cfg.DBMaxOpenConns, logger.WithComponent(log, "database"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Initialize Redis cache (optional - continue if Redis is unavailable)
	var cacheClient cache.Cache
	defer func() {
		closeErr := db.Close()
		if cacheClient != nil {
			closeErr = multierr.Append(closeErr, cacheClient.Close())
		}
		if closeErr != nil {
			log.Error("Failed to release resources", zap.Error(closeErr))
		}
		err = multierr.Append(err, closeErr)
	}()

	// Run database migrations
	if err := database.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if cfg.RedisURL == "" {
		log.Info("REDIS_URL not set, user cache disabled")
	} else if redisCache, err := cache.NewRedisCache(ctx, cfg.RedisURL); err != nil {
		log.Warn("Failed to connect to Redis, continuing without cache", zap.Error(err))
	} else {
		cacheClient = redisCache
		log.Info("Connected to Redis cache")
	}

	// Power BI is optional; without credentials only the local catalogue works
	var pbi service.PowerBIClient
	if cfg.PowerBI.Enabled() {
		pbi = powerbi.NewClient(powerbi.Config{
			TenantID:     cfg.PowerBI.TenantID,
			ClientID:     cfg.PowerBI.ClientID,
			ClientSecret: cfg.PowerBI.ClientSecret,
			BaseURL:      cfg.PowerBI.BaseURL,
			AuthorityURL: cfg.PowerBI.AuthorityURL,
		}, logger.WithComponent(log, "powerbi"))
	} else {
		log.Warn("Power BI credentials not set, dashboard sync disabled")
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	dashboardRepo := repository.NewDashboardRepository(db)

	hasher := password.NewHasher(cfg.BcryptCost)
	jwtService := jwt.NewJWTService(cfg.JWTSecret, cfg.JWTTTL)

	// Initialize services
	authService := service.NewAuthService(userRepo, hasher, jwtService, logger.WithComponent(log, "auth"))
	userService := service.NewUserService(userRepo, groupRepo, hasher, cacheClient, logger.WithComponent(log, "users"))
	groupService := service.NewGroupService(groupRepo, logger.WithComponent(log, "groups"))
	dashboardService := service.NewDashboardService(dashboardRepo, groupRepo, pbi, logger.WithComponent(log, "dashboards"))

	// Initialize rate limiters
	generalRateLimiter := middleware.NewRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	defer generalRateLimiter.Stop()
	authRateLimiter := middleware.NewRateLimiter(rate.Limit(cfg.RateLimitAuthRPS), cfg.RateLimitAuthBurst)
	defer authRateLimiter.Stop()

	router, err := newRouter(cfg, log, jwtService, routes{
		auth:        controllers.NewAuthController(authService),
		users:       controllers.NewUserController(userService, cfg.MaxPageSize),
		groups:      controllers.NewGroupController(groupService, cfg.MaxPageSize),
		dashboards:  controllers.NewDashboardController(dashboardService),
		generalRate: generalRateLimiter,
		authRate:    authRateLimiter,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr), zap.String("environment", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err, failed := <-serveErr:
		if failed {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	log.Info("Server stopped")
	return nil
}

// routes bundles what newRouter mounts
type routes struct {
	auth        *controllers.AuthController
	users       *controllers.UserController
	groups      *controllers.GroupController
	dashboards  *controllers.DashboardController
	generalRate *middleware.RateLimiter
	authRate    *middleware.RateLimiter
}

func newRouter(cfg *config.Config, log *zap.Logger, tokens middleware.TokenValidator, r routes) (*gin.Engine, error) {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid TRUSTED_PROXIES: %w", err)
	}
	router.Use(middleware.LoggingMiddleware(log), middleware.RecoveryMiddleware())
	if len(cfg.CORSOrigins) > 0 {
		router.Use(middleware.CORSMiddleware(cfg.CORSOrigins))
	}
	router.Use(middleware.MetricsMiddleware(), middleware.TimeoutMiddleware(cfg.RequestTimeout))

	// Health check and metrics (no rate limiting)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/v1")
	v1.Use(r.generalRate.LimitMiddleware())
	{
		// Login and registration get the stricter limiter
		v1.POST("/login", r.authRate.LimitMiddleware(), r.auth.Login)
		v1.POST("/users", r.authRate.LimitMiddleware(), r.users.Create)

		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(tokens))
		{
			protected.GET("/users", r.users.List)
			protected.GET("/users/:id", r.users.Get)
			protected.PUT("/users/:id", r.users.Update)
			protected.DELETE("/users/:id", r.users.Delete)
			protected.GET("/users/:id/groups", r.users.Groups)

			protected.POST("/groups", r.groups.Create)
			protected.GET("/groups", r.groups.List)
			protected.GET("/groups/:id", r.groups.Get)
			protected.PUT("/groups/:id", r.groups.Update)
			protected.DELETE("/groups/:id", r.groups.Delete)
			protected.POST("/groups/:id/members", r.groups.AddMember)
			protected.DELETE("/groups/:id/members/:user_id", r.groups.RemoveMember)

			pbi := protected.Group("/powerbi")
			pbi.POST("/sync", r.dashboards.Sync)
			pbi.GET("/dashboards", r.dashboards.List)
			pbi.GET("/dashboards/group/:group_id", r.dashboards.ListByGroup)
			pbi.GET("/workspaces/:workspace_id/dashboards/:dashboard_id", r.dashboards.Get)
			pbi.PATCH("/workspaces/:workspace_id/dashboards/:dashboard_id", r.dashboards.Update)
			pbi.DELETE("/workspaces/:workspace_id/dashboards/:dashboard_id", r.dashboards.Delete)
			pbi.GET("/workspaces/:workspace_id/dashboards/:dashboard_id/qrcode", r.dashboards.QRCode)
			pbi.POST("/refresh", r.dashboards.Refresh)
			pbi.GET("/refresh-status", r.dashboards.RefreshStatus)
		}
	}

	return router, nil
}

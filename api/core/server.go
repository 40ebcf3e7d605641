package core

import (
	"net/http"
	"time"

	"github.com/anoixa/bandpress/api/middleware"
	"github.com/anoixa/bandpress/config"
	"github.com/anoixa/bandpress/internal/app"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// 启动gin
func setupRouter(container *app.Container) (*gin.Engine, func()) {
	cfg := container.GetConfig()
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// 全局中间件
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	// 仅在 debug 模式启用 gin 日志
	if gin.Mode() == gin.DebugMode {
		router.Use(gin.Logger())
	}
	if len(cfg.CORSAllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSAllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "HEAD", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	_ = router.SetTrustedProxies(nil)

	// 基础监控指标
	router.Use(middleware.Metrics())

	// 并发限制
	if cfg.MaxConcurrency > 0 {
		router.Use(middleware.NewConcurrencyLimiter(cfg.MaxConcurrency).Middleware())
	}

	// 速率限制
	apiRateLimiter := middleware.NewIPRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, cfg.RateLimitExpireTime)
	authRateLimiter := middleware.NewIPRateLimiter(cfg.RateLimitAuthRPS, cfg.RateLimitAuthBurst, cfg.RateLimitExpireTime)
	cleanup := func() {
		apiRateLimiter.StopCleanup()
		authRateLimiter.StopCleanup()
	}
	router.Use(apiRateLimiter.Middleware())

	// 会话与当前用户
	router.Use(middleware.Session(container.GetSessionManager()))
	if container.Auth != nil {
		router.Use(middleware.CurrentUser(container.Auth))
	}

	RegisterRoutes(router, &RouterDependencies{
		Container:       container,
		AuthRateLimiter: authRateLimiter,
	})

	return router, cleanup
}

// StartServer 创建 http.Server
func StartServer(container *app.Container) (*http.Server, func()) {
	cfg := container.GetConfig()
	router, clean := setupRouter(container)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  cfg.ServerIdleTimeout,
	}

	return srv, clean
}

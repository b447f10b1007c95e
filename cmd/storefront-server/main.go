package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/egooptika/storefront/internal/api"
	"github.com/egooptika/storefront/internal/cache"
	"github.com/egooptika/storefront/internal/config"
	"github.com/egooptika/storefront/internal/limiter"
	"github.com/egooptika/storefront/internal/logger"
	mw "github.com/egooptika/storefront/internal/middleware"
	"github.com/egooptika/storefront/internal/repo"
	"github.com/egooptika/storefront/internal/router"
	"github.com/egooptika/storefront/internal/service"
	"github.com/egooptika/storefront/internal/woo"
	"github.com/egooptika/storefront/internal/wp"
)

// initConfigAndLogger 初始化配置和日志器
func initConfigAndLogger() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %v", err)
	}

	// init logger
	lg, err := logger.New(cfg.App.Env, cfg.Log.Level, cfg.Log.Encoding, cfg.App.Name, cfg.App.Version)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %v", err)
	}

	return cfg, lg, nil
}

// initCache 初始化缓存实例
func initCache(cfg *config.Config, lg *zap.Logger) cache.Cache {
	var cacheInstance cache.Cache
	if cfg.Cache.Enabled {
		switch cfg.Cache.Type {
		case "redis":
			redisAddr := fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)
			redisCache, err := cache.NewRedisCache(redisAddr, cfg.Redis.Password, cfg.Redis.DB)
			if err != nil {
				lg.Sugar().Warnw("failed to connect to Redis, falling back to memory cache", "error", err)
				cacheInstance = cache.NewMemoryCache()
				lg.Sugar().Infow("cache enabled", "type", "memory (fallback)", "ttl", cfg.Cache.TTL)
			} else {
				cacheInstance = redisCache
				lg.Sugar().Infow("cache enabled", "type", "redis", "addr", redisAddr, "ttl", cfg.Cache.TTL)
			}
		case "memory":
			cacheInstance = cache.NewMemoryCache()
			lg.Sugar().Infow("cache enabled", "type", "memory", "ttl", cfg.Cache.TTL)
		default:
			lg.Sugar().Warnw("unknown cache type, using memory cache", "type", cfg.Cache.Type)
			cacheInstance = cache.NewMemoryCache()
			lg.Sugar().Infow("cache enabled", "type", "memory (default)", "ttl", cfg.Cache.TTL)
		}
	} else {
		cacheInstance = cache.NewNullCache()
		lg.Sugar().Infow("cache disabled")
	}
	return cacheInstance
}

// initCatalogLimiter 初始化目录接口限流器。
// 限流状态需要跨实例共享，只在缓存后端为Redis时启用。
func initCatalogLimiter(cfg *config.Config, cacheInstance cache.Cache, lg *zap.Logger) limiter.Limiter {
	if !cfg.RateLimit.Enabled {
		return nil
	}

	redisCache, ok := cacheInstance.(*cache.RedisCache)
	if !ok {
		lg.Sugar().Warnw("rate limiting requires redis cache, disabled")
		return nil
	}

	l, err := limiter.NewTokenBucketLimiter(redisCache.Client(), &limiter.Config{
		Rate:      cfg.RateLimit.Rate,
		Burst:     cfg.RateLimit.Burst,
		Window:    cfg.RateLimit.Window,
		KeyPrefix: "limiter:tb",
	})
	if err != nil {
		lg.Sugar().Warnw("failed to create rate limiter, disabled", "err", err)
		return nil
	}

	lg.Sugar().Infow("catalog rate limiting enabled",
		"rate", cfg.RateLimit.Rate, "burst", cfg.RateLimit.Burst, "window", cfg.RateLimit.Window)
	return l
}

// initDependencies 初始化应用依赖（客户端、仓储、服务、处理器）
func initDependencies(cfg *config.Config, cacheInstance cache.Cache, lg *zap.Logger) *router.Dependencies {
	// 目录链路：网关 -> 快照仓储 -> 引擎/分面 -> 目录服务
	gateway := woo.NewClient(cfg.Woo, lg)
	catalogRepo := repo.NewCatalogRepository(cacheInstance, cfg.Cache.TTL)
	engine := service.NewCatalogEngine()
	facets := service.NewFacetService()
	catalogService := service.NewCatalogService(gateway, catalogRepo, engine, facets, cfg.Cache.TTL, lg)
	catalogHandler := api.NewCatalogHandler(catalogService, lg)

	// 认证与订单链路：远端商城客户端 -> 服务 -> 处理器
	wpClient := wp.NewClient(cfg.WP, lg)
	jwtService := service.NewJWTService(cfg, lg)
	authService := service.NewAuthService(wpClient, jwtService, lg)
	authHandler := api.NewAuthHandler(authService, lg)

	cartService := service.NewCartService(cacheInstance, lg)
	cartHandler := api.NewCartHandler(cartService, lg)

	orderService := service.NewOrderService(wpClient, cartService, lg)
	orderHandler := api.NewOrderHandler(orderService, lg)

	return &router.Dependencies{
		CatalogHandler: catalogHandler,
		AuthHandler:    authHandler,
		CartHandler:    cartHandler,
		OrderHandler:   orderHandler,
		JWTService:     jwtService,
		CatalogLimiter: initCatalogLimiter(cfg, cacheInstance, lg),
	}
}

// startServer 启动服务器并处理优雅关闭
func startServer(cfg *config.Config, handler http.Handler, lg *zap.Logger) {
	addr := fmt.Sprintf(":%d", cfg.App.Port)
	lg.Sugar().Infow("server starting", "addr", addr)
	srv := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 5 * time.Second}

	// 启动服务器（异步）
	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.ListenAndServe()
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	select {
	case err := <-serverErrCh:
		if err != nil && err != http.ErrServerClosed {
			lg.Sugar().Fatalw("server error", "err", err)
		}
	case <-quit:
		lg.Sugar().Infow("shutdown signal received")
	}

	// 优雅关闭
	ctx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		lg.Sugar().Errorw("server shutdown error", "err", err)
	}
	lg.Sugar().Infow("server exited")
}

// main 为应用入口，协调各个组件的初始化和启动
func main() {
	// 1) 加载配置和初始化日志
	cfg, lg, err := initConfigAndLogger()
	if err != nil {
		log.Fatalf("failed to initialize config and logger: %v", err)
	}

	// 2) 初始化缓存
	cacheInstance := initCache(cfg, lg)
	defer func() {
		if err := cacheInstance.Close(); err != nil {
			lg.Sugar().Errorw("failed to close cache", "err", err)
		}
	}()

	// 3) 初始化应用依赖（客户端、仓储、服务、处理器）
	deps := initDependencies(cfg, cacheInstance, lg)

	// 4) 设置路由和中间件，外层加整体请求超时
	handler := router.New().Setup(cfg, deps, lg)
	handler = mw.Timeout(cfg.App.RequestTimeout)(handler)

	// 5) 启动 HTTP 服务器
	startServer(cfg, handler, lg)
}

// Package router 提供 HTTP 路由设置和中间件配置功能
package router

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/egooptika/storefront/internal/api"
	"github.com/egooptika/storefront/internal/config"
	"github.com/egooptika/storefront/internal/limiter"
	"github.com/egooptika/storefront/internal/middleware"
	"github.com/egooptika/storefront/internal/service"
)

// Dependencies 包含路由设置所需的所有依赖
type Dependencies struct {
	CatalogHandler *api.CatalogHandler
	AuthHandler    *api.AuthHandler
	CartHandler    *api.CartHandler
	OrderHandler   *api.OrderHandler
	JWTService     service.JWTService

	// CatalogLimiter 为空时目录接口不限流
	CatalogLimiter limiter.Limiter
}

// Router 路由器接口
type Router interface {
	Setup(cfg *config.Config, deps *Dependencies, lg *zap.Logger) http.Handler
}

// GinRouter Gin路由器实现
type GinRouter struct {
	engine *gin.Engine
	cfg    *config.Config
	deps   *Dependencies
	logger *zap.Logger
}

// New 创建新的路由器实例
func New() Router {
	return &GinRouter{}
}

// Setup 设置路由和中间件
func (r *GinRouter) Setup(cfg *config.Config, deps *Dependencies, lg *zap.Logger) http.Handler {
	// 根据环境设置 Gin 模式
	if cfg.App.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	r.engine = gin.New()
	r.cfg = cfg
	r.deps = deps
	r.logger = lg

	// 设置中间件
	r.setupMiddleware(cfg)

	// 设置路由
	r.setupRoutes()

	return r.engine
}

// setupMiddleware 设置全局中间件
func (r *GinRouter) setupMiddleware(cfg *config.Config) {
	// 恢复中间件（从 panic 中恢复）
	r.engine.Use(r.wrapMiddleware(middleware.Recovery(r.logger)))

	// 请求ID中间件
	r.engine.Use(r.wrapMiddleware(middleware.RequestID))

	// 访问日志中间件
	r.engine.Use(r.wrapMiddleware(middleware.AccessLog(r.logger)))

	// CORS 中间件
	r.engine.Use(r.corsMiddleware(cfg))
}

// setupRoutes 设置所有路由
func (r *GinRouter) setupRoutes() {
	// 健康检查
	r.engine.GET("/healthz", r.healthCheck)

	// API v1 路由组
	v1 := r.engine.Group("/api/v1")
	{
		// 目录路由（公开，可选限流）
		catalog := v1.Group("/catalog")
		if r.deps.CatalogLimiter != nil {
			catalog.Use(limiter.CatalogRateLimitMiddleware(r.deps.CatalogLimiter))
		}
		{
			catalog.GET("/:category/products", r.wrapHandler(r.deps.CatalogHandler.ListProducts))
			catalog.GET("/:category/facets", r.wrapHandler(r.deps.CatalogHandler.GetFacets))
		}

		// 认证路由（无需认证）
		auth := v1.Group("/auth")
		{
			auth.POST("/register", r.wrapHandler(r.deps.AuthHandler.Register))
			auth.POST("/login", r.wrapHandler(r.deps.AuthHandler.Login))
		}

		// 用户路由（需要认证）
		users := v1.Group("/users")
		users.Use(r.authMiddleware())
		{
			users.GET("/profile", r.wrapHandler(r.deps.AuthHandler.GetProfile))
		}

		// 购物车路由（需要认证）
		cart := v1.Group("/cart")
		cart.Use(r.authMiddleware())
		{
			cart.GET("", r.wrapHandler(r.deps.CartHandler.GetCart))
			cart.DELETE("", r.wrapHandler(r.deps.CartHandler.ClearCart))
			cart.POST("/items", r.wrapHandler(r.deps.CartHandler.AddItem))
			cart.PUT("/items/:id", r.wrapHandler(r.deps.CartHandler.UpdateItem))
			cart.DELETE("/items/:id", r.wrapHandler(r.deps.CartHandler.RemoveItem))
		}

		// 订单路由（需要认证）
		orders := v1.Group("/orders")
		orders.Use(r.authMiddleware())
		{
			orders.POST("", r.wrapHandler(r.deps.OrderHandler.CreateOrder))
			orders.GET("", r.wrapHandler(r.deps.OrderHandler.ListOrders))
		}
	}
}

// healthCheck 健康检查处理器
func (r *GinRouter) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": r.cfg.App.Version,
	})
}

// wrapHandler 将标准的 http.HandlerFunc 包装为 gin.HandlerFunc
func (r *GinRouter) wrapHandler(handler func(http.ResponseWriter, *http.Request)) gin.HandlerFunc {
	return gin.WrapF(handler)
}

// wrapMiddleware 将标准库风格的中间件适配为 gin.HandlerFunc。
// 内层处理器被调用说明中间件放行，此时携带中间件写入的上下文继续链路；
// 未被调用说明中间件已写出响应，终止链路。
func (r *GinRouter) wrapMiddleware(mw func(http.Handler) http.Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		passed := false
		mw(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			passed = true
			c.Request = req
			c.Next()
		})).ServeHTTP(c.Writer, c.Request)
		if !passed {
			c.Abort()
		}
	}
}

// corsMiddleware CORS 中间件
func (r *GinRouter) corsMiddleware(cfg *config.Config) gin.HandlerFunc {
	allowedOrigin := "*"
	if len(cfg.CORS.AllowedOrigins) > 0 {
		allowedOrigin = strings.Join(cfg.CORS.AllowedOrigins, ", ")
	}
	allowedMethods := strings.Join(cfg.CORS.AllowedMethods, ", ")
	allowedHeaders := strings.Join(cfg.CORS.AllowedHeaders, ", ")

	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", allowedOrigin)
		c.Header("Access-Control-Allow-Methods", allowedMethods)
		c.Header("Access-Control-Allow-Headers", allowedHeaders)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// authMiddleware 会话认证中间件
func (r *GinRouter) authMiddleware() gin.HandlerFunc {
	return r.wrapMiddleware(middleware.AuthMiddleware(r.deps.JWTService, r.logger))
}

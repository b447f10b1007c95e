// Package limiter 限流中间件实现
package limiter

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/egooptika/storefront/internal/resp"
)

// MiddlewareConfig 中间件配置
type MiddlewareConfig struct {
	// 限流器
	Limiter Limiter

	// Key生成函数
	KeyGenerator func(*gin.Context) string

	// 错误处理函数
	ErrorHandler func(*gin.Context, error)

	// 限流回调函数
	OnLimitReached func(*gin.Context, *LimitResult)
}

// DefaultKeyGenerator 默认Key生成器（基于IP）
func DefaultKeyGenerator(c *gin.Context) string {
	return fmt.Sprintf("global:%s", c.ClientIP())
}

// RateLimitMiddleware 创建限流中间件。
// 限流器自身故障时放行请求：限流是保护手段，不能成为单点。
func RateLimitMiddleware(config *MiddlewareConfig) gin.HandlerFunc {
	if config.KeyGenerator == nil {
		config.KeyGenerator = DefaultKeyGenerator
	}
	if config.ErrorHandler == nil {
		config.ErrorHandler = defaultErrorHandler
	}
	if config.OnLimitReached == nil {
		config.OnLimitReached = defaultOnLimitReached
	}

	return func(c *gin.Context) {
		key := config.KeyGenerator(c)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		result, err := config.Limiter.Allow(ctx, key)
		if err != nil {
			config.ErrorHandler(c, err)
			return
		}

		c.Header("X-RateLimit-Remaining", strconv.FormatInt(result.Remaining, 10))
		if result.RetryAfter > 0 {
			c.Header("Retry-After", strconv.FormatInt(int64(result.RetryAfter.Seconds()), 10))
		}

		if !result.Allowed {
			config.OnLimitReached(c, result)
			return
		}

		c.Next()
	}
}

// defaultErrorHandler 默认错误处理器：限流器不可用时放行
func defaultErrorHandler(c *gin.Context, err error) {
	c.Next()
}

// defaultOnLimitReached 默认限流回调
func defaultOnLimitReached(c *gin.Context, result *LimitResult) {
	requestID := c.GetString("request_id")
	resp.Error(c.Writer, http.StatusTooManyRequests, resp.CodeRateLimited,
		"too many requests, please retry later", requestID, "")
	c.Abort()
}

// CatalogRateLimitMiddleware 目录接口限流中间件。
// 目录接口是公开接口，按调用方IP限流，防止爬虫把远端抓取打满。
func CatalogRateLimitMiddleware(l Limiter) gin.HandlerFunc {
	return RateLimitMiddleware(&MiddlewareConfig{
		Limiter: l,
		KeyGenerator: func(c *gin.Context) string {
			return fmt.Sprintf("catalog:ip:%s", c.ClientIP())
		},
	})
}

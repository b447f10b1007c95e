// Package config 提供应用配置的加载与校验，配置来源为环境变量（支持 .env 文件）。
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig 应用基础配置
type AppConfig struct {
	Name            string
	Version         string
	Env             string // dev / prod
	Port            int
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

// LogConfig 日志配置
type LogConfig struct {
	Level    string // debug / info / warn / error
	Encoding string // json / console
}

// WooConfig 远端商品目录服务（WooCommerce REST API）配置。
// 未配置密钥对时目录抓取进入软禁用模式：直接返回空结果而不报错。
type WooConfig struct {
	BaseURL        string
	ConsumerKey    string
	ConsumerSecret string
	PerPage        int           // 每页抓取数量
	MaxPages       int           // 单次抓取的最大页数上限
	PagePause      time.Duration // 相邻页请求之间的间隔
	PageTimeout    time.Duration // 单页请求超时
	MaxRetries     int           // 整个抓取序列的额外重试次数
	RetryBackoff   time.Duration // 线性退避基数：第N次重试等待 N*RetryBackoff
}

// Enabled 判断目录抓取是否可用（密钥对齐全）
func (c *WooConfig) Enabled() bool {
	return c.ConsumerKey != "" && c.ConsumerSecret != ""
}

// WPConfig 远端认证/订单服务配置
type WPConfig struct {
	BaseURL string
	Timeout time.Duration
}

// CacheConfig 分类快照缓存配置
type CacheConfig struct {
	Enabled bool
	Type    string        // memory / redis
	TTL     time.Duration // 快照有效期
}

// RedisConfig Redis连接配置
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// JWTConfig 本地会话令牌配置
type JWTConfig struct {
	Secret     string
	SessionTTL time.Duration
}

// RateLimitConfig 公开目录接口的限流配置（需要Redis）
type RateLimitConfig struct {
	Enabled bool
	Rate    int64
	Burst   int64
	Window  time.Duration
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// Config 汇总应用全部配置
type Config struct {
	App       AppConfig
	Log       LogConfig
	Woo       WooConfig
	WP        WPConfig
	Cache     CacheConfig
	Redis     RedisConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
}

// Load 从环境变量加载配置并校验。
// 若工作目录存在 .env 文件则先行加载（仅用于本地开发，不覆盖已有环境变量）。
func Load() (*Config, error) {
	// .env 不存在不算错误
	_ = godotenv.Load()

	cfg := &Config{
		App: AppConfig{
			Name:            getEnv("APP_NAME", "storefront"),
			Version:         getEnv("APP_VERSION", "1.0.0"),
			Env:             getEnv("APP_ENV", "dev"),
			Port:            getEnvInt("APP_PORT", 8080),
			RequestTimeout:  getEnvDuration("APP_REQUEST_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("APP_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Log: LogConfig{
			Level:    getEnv("LOG_LEVEL", "info"),
			Encoding: getEnv("LOG_ENCODING", "json"),
		},
		Woo: WooConfig{
			BaseURL:        getEnv("WC_BASE_URL", "https://egooptika.ru/wp-json/wc/v3"),
			ConsumerKey:    getEnv("WC_CONSUMER_KEY", ""),
			ConsumerSecret: getEnv("WC_CONSUMER_SECRET", ""),
			PerPage:        getEnvInt("WC_PER_PAGE", 50),
			MaxPages:       getEnvInt("WC_MAX_PAGES", 10),
			PagePause:      getEnvDuration("WC_PAGE_PAUSE", 100*time.Millisecond),
			PageTimeout:    getEnvDuration("WC_PAGE_TIMEOUT", 30*time.Second),
			MaxRetries:     getEnvInt("WC_MAX_RETRIES", 2),
			RetryBackoff:   getEnvDuration("WC_RETRY_BACKOFF", 2*time.Second),
		},
		WP: WPConfig{
			BaseURL: getEnv("WP_BASE_URL", "https://egooptika.ru"),
			Timeout: getEnvDuration("WP_TIMEOUT", 30*time.Second),
		},
		Cache: CacheConfig{
			Enabled: getEnvBool("CACHE_ENABLED", true),
			Type:    getEnv("CACHE_TYPE", "memory"),
			TTL:     getEnvDuration("CACHE_TTL", 5*time.Minute),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:     getEnv("JWT_SECRET", ""),
			SessionTTL: getEnvDuration("JWT_SESSION_TTL", 24*time.Hour),
		},
		RateLimit: RateLimitConfig{
			Enabled: getEnvBool("RATE_LIMIT_ENABLED", false),
			Rate:    int64(getEnvInt("RATE_LIMIT_RATE", 100)),
			Burst:   int64(getEnvInt("RATE_LIMIT_BURST", 200)),
			Window:  getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods: getEnvSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			AllowedHeaders: getEnvSlice("CORS_ALLOWED_HEADERS", []string{"Content-Type", "Authorization", "X-Request-ID"}),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate 校验配置取值
func (c *Config) validate() error {
	if c.App.Port <= 0 || c.App.Port > 65535 {
		return fmt.Errorf("invalid APP_PORT: %d", c.App.Port)
	}
	switch c.App.Env {
	case "dev", "prod":
	default:
		return fmt.Errorf("invalid APP_ENV: %s", c.App.Env)
	}
	if c.Woo.PerPage <= 0 {
		return fmt.Errorf("invalid WC_PER_PAGE: %d", c.Woo.PerPage)
	}
	if c.Woo.MaxPages <= 0 {
		return fmt.Errorf("invalid WC_MAX_PAGES: %d", c.Woo.MaxPages)
	}
	switch c.Cache.Type {
	case "memory", "redis":
	default:
		return fmt.Errorf("invalid CACHE_TYPE: %s", c.Cache.Type)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("invalid CACHE_TTL: %s", c.Cache.TTL)
	}
	if c.JWT.Secret == "" && c.App.Env == "prod" {
		return fmt.Errorf("JWT_SECRET is required in prod")
	}
	return nil
}

// getEnv 读取字符串环境变量，缺失时返回默认值
func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

// getEnvInt 读取整型环境变量，解析失败时返回默认值
func getEnvInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// getEnvBool 读取布尔环境变量，解析失败时返回默认值
func getEnvBool(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

// getEnvDuration 读取时长环境变量（如 "5m"、"30s"），解析失败时返回默认值
func getEnvDuration(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

// getEnvSlice 读取逗号分隔的字符串列表环境变量
func getEnvSlice(key string, def []string) []string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if s := strings.TrimSpace(p); s != "" {
				out = append(out, s)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return def
}

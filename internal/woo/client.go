// Package woo 提供远端商品目录服务的分页抓取客户端。
package woo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/egooptika/storefront/internal/config"
	"github.com/egooptika/storefront/internal/domain"
)

// CatalogFetchError 表示分页抓取在重试预算耗尽后的最终失败。
type CatalogFetchError struct {
	CategoryID string
	Attempts   int
	Err        error // 最后一次底层错误
}

func (e *CatalogFetchError) Error() string {
	return fmt.Sprintf("catalog fetch for category %s failed after %d attempts: %v", e.CategoryID, e.Attempts, e.Err)
}

func (e *CatalogFetchError) Unwrap() error {
	return e.Err
}

// Gateway 定义目录抓取接口，供服务层依赖注入与测试替换。
type Gateway interface {
	// Enabled 返回抓取是否可用；未配置API密钥时为软禁用模式
	Enabled() bool
	// FetchCategory 抓取指定分类的全部商品并规范化，按到达顺序返回
	FetchCategory(ctx context.Context, categoryID string) ([]domain.Product, error)
}

// Client 是Gateway的HTTP实现。
// 页请求串行发出，相邻页之间由限速器插入固定间隔，避免压垮远端接口。
type Client struct {
	cfg        config.WooConfig
	httpClient *http.Client
	pacer      *rate.Limiter
	logger     *zap.Logger
}

// NewClient 创建目录抓取客户端
func NewClient(cfg config.WooConfig, logger *zap.Logger) *Client {
	pause := cfg.PagePause
	if pause <= 0 {
		pause = 100 * time.Millisecond
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.PageTimeout},
		pacer:      rate.NewLimiter(rate.Every(pause), 1),
		logger:     logger,
	}
}

// Enabled 返回抓取是否可用
func (c *Client) Enabled() bool {
	return c.cfg.Enabled()
}

// FetchCategory 抓取指定分类的全部商品。
// 未配置密钥时立即返回空结果且不报错（软禁用，属预期的降级而非故障）。
// 任一页失败时整个抓取序列最多额外重试 MaxRetries 次，第N次重试前等待 N*RetryBackoff；
// 全部失败后返回 *CatalogFetchError。
func (c *Client) FetchCategory(ctx context.Context, categoryID string) ([]domain.Product, error) {
	if !c.Enabled() {
		c.logger.Warn("catalog API credentials not configured, returning empty result",
			zap.String("category_id", categoryID))
		return []domain.Product{}, nil
	}

	var lastErr error
	attempts := c.cfg.MaxRetries + 1
	for attempt := 1; attempt <= attempts; attempt++ {
		products, err := c.fetchAllPages(ctx, categoryID)
		if err == nil {
			c.logger.Info("category fetched",
				zap.String("category_id", categoryID),
				zap.Int("products", len(products)),
				zap.Int("attempt", attempt))
			return products, nil
		}

		lastErr = err
		c.logger.Warn("category fetch attempt failed",
			zap.String("category_id", categoryID),
			zap.Int("attempt", attempt),
			zap.Error(err))

		if attempt < attempts {
			backoff := time.Duration(attempt) * c.cfg.RetryBackoff
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, &CatalogFetchError{CategoryID: categoryID, Attempts: attempt, Err: ctx.Err()}
			}
		}
	}

	return nil, &CatalogFetchError{CategoryID: categoryID, Attempts: attempts, Err: lastErr}
}

// fetchAllPages 串行抓取分类下的所有页：空页或达到页数上限时停止。
func (c *Client) fetchAllPages(ctx context.Context, categoryID string) ([]domain.Product, error) {
	var products []domain.Product

	for page := 1; page <= c.cfg.MaxPages; page++ {
		// 相邻页之间的固定间隔；首个令牌立即可用
		if err := c.pacer.Wait(ctx); err != nil {
			return nil, err
		}

		raws, err := c.fetchPage(ctx, categoryID, page)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}
		if len(raws) == 0 {
			break
		}

		for i := range raws {
			products = append(products, Normalize(&raws[i]))
		}
		c.logger.Debug("page fetched",
			zap.String("category_id", categoryID),
			zap.Int("page", page),
			zap.Int("records", len(raws)))
	}

	if products == nil {
		products = []domain.Product{}
	}
	return products, nil
}

// fetchPage 抓取单页原始记录
func (c *Client) fetchPage(ctx context.Context, categoryID string, page int) ([]RawProduct, error) {
	q := url.Values{}
	q.Set("per_page", strconv.Itoa(c.cfg.PerPage))
	q.Set("page", strconv.Itoa(page))
	q.Set("category", categoryID)
	q.Set("consumer_key", c.cfg.ConsumerKey)
	q.Set("consumer_secret", c.cfg.ConsumerSecret)
	q.Set("status", "publish")
	q.Set("stock_status", "instock")

	reqURL := fmt.Sprintf("%s/products?%s", c.cfg.BaseURL, q.Encode())

	ctx, cancel := context.WithTimeout(ctx, c.cfg.PageTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return nil, fmt.Errorf("unexpected status %d: %s", res.StatusCode, string(body))
	}

	var raws []RawProduct
	if err := json.NewDecoder(res.Body).Decode(&raws); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return raws, nil
}

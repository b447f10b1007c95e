// Package api 提供HTTP API处理器实现。
// API层负责处理HTTP请求/响应，进行数据验证和格式转换。
package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/egooptika/storefront/internal/domain"
	"github.com/egooptika/storefront/internal/middleware"
	"github.com/egooptika/storefront/internal/resp"
	"github.com/egooptika/storefront/internal/service"
	"github.com/egooptika/storefront/internal/woo"
)

// CatalogHandler 目录相关的HTTP处理器
type CatalogHandler struct {
	catalogService service.CatalogService
	logger         *zap.Logger
}

// NewCatalogHandler 创建目录处理器实例
func NewCatalogHandler(catalogService service.CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

// ListProducts 返回分类的目录页：过滤、排序、分页后的商品与分面选项
// GET /api/v1/catalog/{category}/products
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())

	categoryID, ok := resolveCategory(categoryFromPath(r.URL.Path))
	if !ok {
		resp.Error(w, http.StatusNotFound, resp.CodeNotFound, "unknown category", reqID, "")
		return
	}

	sess := service.NewCatalogSession(categoryID)

	// 先确保快照就绪并建立价格边界，价格参数才能正确钳制
	if err := h.catalogService.InitSession(r.Context(), sess); err != nil {
		h.logger.Error("catalog init failed",
			zap.String("request_id", reqID),
			zap.String("category_id", categoryID),
			zap.Error(err))
		resp.Error(w, http.StatusBadGateway, resp.CodeUpstreamError, catalogUnavailableMessage(err), reqID, "")
		return
	}

	applyQuery(sess, r.URL.Query())

	view, err := h.catalogService.Query(r.Context(), sess)
	if err != nil {
		h.logger.Error("catalog query failed",
			zap.String("request_id", reqID),
			zap.String("category_id", categoryID),
			zap.Error(err))
		resp.Error(w, http.StatusBadGateway, resp.CodeUpstreamError, catalogUnavailableMessage(err), reqID, "")
		return
	}

	resp.OK(w, view, reqID, "")
}

// GetFacets 返回分类的分面选项与观测价格边界
// GET /api/v1/catalog/{category}/facets
func (h *CatalogHandler) GetFacets(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())

	categoryID, ok := resolveCategory(categoryFromPath(r.URL.Path))
	if !ok {
		resp.Error(w, http.StatusNotFound, resp.CodeNotFound, "unknown category", reqID, "")
		return
	}

	facets, bounds, err := h.catalogService.Facets(r.Context(), categoryID)
	if err != nil {
		h.logger.Error("facets query failed",
			zap.String("request_id", reqID),
			zap.String("category_id", categoryID),
			zap.Error(err))
		resp.Error(w, http.StatusBadGateway, resp.CodeUpstreamError, catalogUnavailableMessage(err), reqID, "")
		return
	}

	out := map[string]interface{}{
		"facets":       facets,
		"price_bounds": bounds,
	}
	resp.OK(w, &out, reqID, "")
}

// catalogUnavailableMessage 组装目录不可用的提示。
// 抓取类失败属可重试错误，附带底层原因便于用户与排障；其余错误不外泄细节。
func catalogUnavailableMessage(err error) string {
	var fe *woo.CatalogFetchError
	if errors.As(err, &fe) {
		return fmt.Sprintf("catalog temporarily unavailable, please retry: %v", fe.Err)
	}
	return "catalog temporarily unavailable"
}

// categoryFromPath 取出路径中的分类段
func categoryFromPath(path string) string {
	parts := strings.Split(path, "/")
	if len(parts) < 5 {
		return ""
	}
	return parts[4] // /api/v1/catalog/{category}/...
}

// resolveCategory 解析路径中的分类：支持别名和数字ID两种形式
func resolveCategory(raw string) (string, bool) {
	if id, ok := domain.CategoryIDBySlug[raw]; ok {
		return id, true
	}
	if raw != "" {
		if _, err := strconv.Atoi(raw); err == nil {
			return raw, true
		}
	}
	return "", false
}

// applyQuery 把查询参数套用到会话上。
// 通过会话变更方法应用，以获得页码重置与价格钳制语义；
// 页码最后设置，避免被过滤参数触发的重置覆盖。
func applyQuery(sess *service.CatalogSession, q url.Values) {
	if v := q.Get("gender"); v != "" {
		sess.SetGender(v)
	}
	if v := q.Get("country"); v != "" {
		sess.SetCountry(v)
	}
	if vs := queryList(q, "materials"); len(vs) > 0 {
		sess.SetMaterials(vs)
	}
	if vs := queryList(q, "frame_types"); len(vs) > 0 {
		sess.SetFrameTypes(vs)
	}
	if vs := queryList(q, "colors"); len(vs) > 0 {
		sess.SetColors(vs)
	}
	if vs := queryList(q, "brands"); len(vs) > 0 {
		sess.SetBrands(vs)
	}
	if v := q.Get("sort"); v != "" {
		sess.SetSort(domain.SortKey(v))
	}
	if v := q.Get("min_price"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			sess.SetMinPrice(n)
		}
	}
	if v := q.Get("max_price"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			sess.SetMaxPrice(n)
		}
	}
	if v := q.Get("page_size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			sess.SetPageSize(n)
		}
	}
	if v := q.Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			sess.SetPage(n)
		}
	}
}

// queryList 收集多值查询参数，重复键和逗号分隔两种写法都支持
func queryList(q url.Values, key string) []string {
	var out []string
	for _, raw := range q[key] {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

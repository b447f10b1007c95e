// Package api 提供购物车相关的HTTP处理器。
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/egooptika/storefront/internal/domain"
	"github.com/egooptika/storefront/internal/middleware"
	"github.com/egooptika/storefront/internal/resp"
	"github.com/egooptika/storefront/internal/service"
)

// CartHandler 购物车相关的HTTP处理器
type CartHandler struct {
	cartService service.CartService
	logger      *zap.Logger
}

// NewCartHandler 创建购物车处理器实例
func NewCartHandler(cartService service.CartService, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		logger:      logger,
	}
}

// updateQuantityRequest 是数量调整请求体
type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// GetCart 返回当前用户的购物车
// GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		resp.Error(w, http.StatusUnauthorized, resp.CodeUnauthorized, "authentication required", reqID, "")
		return
	}

	cart, err := h.cartService.Get(r.Context(), user.Username)
	if err != nil {
		h.logger.Error("get cart failed", zap.String("request_id", reqID), zap.Error(err))
		resp.Error(w, http.StatusInternalServerError, resp.CodeInternalError, "get cart failed", reqID, "")
		return
	}

	resp.OK(w, cart, reqID, "")
}

// AddItem 向购物车加入商品
// POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		resp.Error(w, http.StatusUnauthorized, resp.CodeUnauthorized, "authentication required", reqID, "")
		return
	}

	var item domain.CartItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		h.logger.Warn("invalid request body", zap.String("request_id", reqID), zap.Error(err))
		resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "invalid request body", reqID, "")
		return
	}
	if item.ProductID <= 0 {
		resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "product_id is required", reqID, "")
		return
	}
	if item.Quantity == 0 {
		item.Quantity = 1
	}

	cart, err := h.cartService.AddItem(r.Context(), user.Username, item)
	if err != nil {
		if errors.Is(err, service.ErrInvalidQuantity) {
			resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "invalid quantity", reqID, "")
			return
		}
		h.logger.Error("add cart item failed", zap.String("request_id", reqID), zap.Error(err))
		resp.Error(w, http.StatusInternalServerError, resp.CodeInternalError, "add cart item failed", reqID, "")
		return
	}

	resp.OK(w, cart, reqID, "")
}

// UpdateItem 调整购物车中某商品的数量
// PUT /api/v1/cart/items/{productID}
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		resp.Error(w, http.StatusUnauthorized, resp.CodeUnauthorized, "authentication required", reqID, "")
		return
	}

	productID, ok := productIDFromPath(r.URL.Path)
	if !ok {
		resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "invalid product ID", reqID, "")
		return
	}

	var req updateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid request body", zap.String("request_id", reqID), zap.Error(err))
		resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "invalid request body", reqID, "")
		return
	}

	cart, err := h.cartService.UpdateQuantity(r.Context(), user.Username, productID, req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCartItemNotFound):
			resp.Error(w, http.StatusNotFound, resp.CodeNotFound, "cart item not found", reqID, "")
		case errors.Is(err, service.ErrInvalidQuantity):
			resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "invalid quantity", reqID, "")
		default:
			h.logger.Error("update cart item failed", zap.String("request_id", reqID), zap.Error(err))
			resp.Error(w, http.StatusInternalServerError, resp.CodeInternalError, "update cart item failed", reqID, "")
		}
		return
	}

	resp.OK(w, cart, reqID, "")
}

// RemoveItem 从购物车移除商品
// DELETE /api/v1/cart/items/{productID}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		resp.Error(w, http.StatusUnauthorized, resp.CodeUnauthorized, "authentication required", reqID, "")
		return
	}

	productID, ok := productIDFromPath(r.URL.Path)
	if !ok {
		resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "invalid product ID", reqID, "")
		return
	}

	cart, err := h.cartService.RemoveItem(r.Context(), user.Username, productID)
	if err != nil {
		if errors.Is(err, service.ErrCartItemNotFound) {
			resp.Error(w, http.StatusNotFound, resp.CodeNotFound, "cart item not found", reqID, "")
			return
		}
		h.logger.Error("remove cart item failed", zap.String("request_id", reqID), zap.Error(err))
		resp.Error(w, http.StatusInternalServerError, resp.CodeInternalError, "remove cart item failed", reqID, "")
		return
	}

	resp.OK(w, cart, reqID, "")
}

// ClearCart 清空购物车
// DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		resp.Error(w, http.StatusUnauthorized, resp.CodeUnauthorized, "authentication required", reqID, "")
		return
	}

	if err := h.cartService.Clear(r.Context(), user.Username); err != nil {
		h.logger.Error("clear cart failed", zap.String("request_id", reqID), zap.Error(err))
		resp.Error(w, http.StatusInternalServerError, resp.CodeInternalError, "clear cart failed", reqID, "")
		return
	}

	resp.OK(w, nil, reqID, "")
}

// productIDFromPath 取出路径末段的商品ID
func productIDFromPath(path string) (int64, bool) {
	parts := strings.Split(path, "/")
	if len(parts) < 6 {
		return 0, false
	}
	id, err := strconv.ParseInt(parts[5], 10, 64) // /api/v1/cart/items/{productID}
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// Package api 提供订单相关的HTTP处理器。
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/egooptika/storefront/internal/domain"
	"github.com/egooptika/storefront/internal/middleware"
	"github.com/egooptika/storefront/internal/resp"
	"github.com/egooptika/storefront/internal/service"
)

// OrderHandler 订单相关的HTTP处理器
type OrderHandler struct {
	orderService service.OrderService
	logger       *zap.Logger
}

// NewOrderHandler 创建订单处理器实例
func NewOrderHandler(orderService service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		logger:       logger,
	}
}

// CreateOrder 创建订单
// POST /api/v1/orders
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())
	user := middleware.UserFromContext(r.Context())
	remoteToken := middleware.RemoteTokenFromContext(r.Context())
	if user == nil || remoteToken == "" {
		resp.Error(w, http.StatusUnauthorized, resp.CodeUnauthorized, "authentication required", reqID, "")
		return
	}

	var req domain.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid request body", zap.String("request_id", reqID), zap.Error(err))
		resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "invalid request body", reqID, "")
		return
	}

	orderID, err := h.orderService.Create(r.Context(), remoteToken, user.Username, &req)
	if err != nil {
		if errors.Is(err, service.ErrEmptyOrder) {
			resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "order has no line items", reqID, "")
			return
		}
		h.logger.Error("create order failed", zap.String("request_id", reqID), zap.Error(err))
		resp.Error(w, http.StatusBadGateway, resp.CodeUpstreamError, "create order failed", reqID, "")
		return
	}

	out := map[string]interface{}{"order_id": orderID}
	resp.OK(w, &out, reqID, "")
}

// ListOrders 查询当前用户的历史订单
// GET /api/v1/orders
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())
	user := middleware.UserFromContext(r.Context())
	remoteToken := middleware.RemoteTokenFromContext(r.Context())
	if user == nil || remoteToken == "" {
		resp.Error(w, http.StatusUnauthorized, resp.CodeUnauthorized, "authentication required", reqID, "")
		return
	}

	orders, err := h.orderService.List(r.Context(), remoteToken, user.Username, user.Email)
	if err != nil {
		h.logger.Error("list orders failed", zap.String("request_id", reqID), zap.Error(err))
		resp.Error(w, http.StatusBadGateway, resp.CodeUpstreamError, "list orders failed", reqID, "")
		return
	}

	resp.OK(w, orders, reqID, "")
}

// Package service 提供订单业务逻辑：下单与历史订单查询代理到远端商城。
package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/egooptika/storefront/internal/domain"
	"github.com/egooptika/storefront/internal/wp"
)

// 订单业务错误
var (
	ErrEmptyOrder = errors.New("order has no line items")
)

// OrderService 定义订单服务接口。
// 订单数据不在本地落库，远端商城是唯一事实来源；
// 下单成功后清空该用户的购物车。
type OrderService interface {
	Create(ctx context.Context, remoteToken, username string, req *domain.CreateOrderRequest) (int64, error)
	List(ctx context.Context, remoteToken, username, email string) ([]domain.Order, error)
}

// orderService 是OrderService接口的实现
type orderService struct {
	wpClient    wp.Client
	cartService CartService
	logger      *zap.Logger
}

// NewOrderService 创建订单服务实例
func NewOrderService(wpClient wp.Client, cartService CartService, logger *zap.Logger) OrderService {
	return &orderService{
		wpClient:    wpClient,
		cartService: cartService,
		logger:      logger,
	}
}

// Create 创建订单
// 业务规则：
// 1. 订单必须包含至少一个商品行
// 2. 远端下单成功后清空购物车；清空失败只记日志，不影响下单结果
func (s *orderService) Create(ctx context.Context, remoteToken, username string, req *domain.CreateOrderRequest) (int64, error) {
	if len(req.LineItems) == 0 {
		return 0, ErrEmptyOrder
	}

	orderID, err := s.wpClient.CreateOrder(ctx, remoteToken, req)
	if err != nil {
		s.logger.Error("failed to create order",
			zap.String("username", username),
			zap.Error(err))
		return 0, fmt.Errorf("create order: %w", err)
	}

	if err := s.cartService.Clear(ctx, username); err != nil {
		// 订单已创建成功，购物车残留只影响体验
		s.logger.Warn("failed to clear cart after order",
			zap.String("username", username),
			zap.Int64("order_id", orderID),
			zap.Error(err))
	}

	s.logger.Info("order created",
		zap.String("username", username),
		zap.Int64("order_id", orderID),
	)
	return orderID, nil
}

// List 查询用户历史订单
func (s *orderService) List(ctx context.Context, remoteToken, username, email string) ([]domain.Order, error) {
	orders, err := s.wpClient.UserOrders(ctx, remoteToken, username, email)
	if err != nil {
		s.logger.Error("failed to list orders",
			zap.String("username", username),
			zap.Error(err))
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

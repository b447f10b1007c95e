// Package service 提供购物车业务逻辑。
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/egooptika/storefront/internal/cache"
	"github.com/egooptika/storefront/internal/domain"
)

// 购物车业务错误
var (
	ErrCartItemNotFound = errors.New("cart item not found")
	ErrInvalidQuantity  = errors.New("invalid quantity")
)

// cartTTL 是购物车在缓存中的保留时间。
// 购物车不是订单，允许在长时间不活跃后被回收。
const cartTTL = 7 * 24 * time.Hour

// CartService 定义购物车服务接口。
// 购物车按用户隔离，商品保持加入顺序；同一商品重复加入时累加数量。
type CartService interface {
	Get(ctx context.Context, username string) (*domain.Cart, error)
	AddItem(ctx context.Context, username string, item domain.CartItem) (*domain.Cart, error)
	UpdateQuantity(ctx context.Context, username string, productID int64, quantity int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, username string, productID int64) (*domain.Cart, error)
	Clear(ctx context.Context, username string) error
}

// cartService 是CartService接口的实现，购物车整体存于缓存
type cartService struct {
	cache  cache.Cache
	logger *zap.Logger
}

// NewCartService 创建购物车服务实例
func NewCartService(c cache.Cache, logger *zap.Logger) CartService {
	return &cartService{
		cache:  c,
		logger: logger,
	}
}

// Get 读取用户购物车；不存在时返回空购物车
func (s *cartService) Get(ctx context.Context, username string) (*domain.Cart, error) {
	cart, err := s.load(ctx, username)
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// AddItem 向购物车加入商品
// 业务规则：
// 1. 数量必须为正
// 2. 已存在的商品累加数量，保持原有位置
// 3. 新商品追加到末尾
func (s *cartService) AddItem(ctx context.Context, username string, item domain.CartItem) (*domain.Cart, error) {
	if item.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	cart, err := s.load(ctx, username)
	if err != nil {
		return nil, err
	}

	found := false
	for i := range cart.Items {
		if cart.Items[i].ProductID == item.ProductID {
			cart.Items[i].Quantity += item.Quantity
			found = true
			break
		}
	}
	if !found {
		cart.Items = append(cart.Items, item)
	}

	if err := s.store(ctx, username, cart); err != nil {
		return nil, err
	}

	s.logger.Info("cart item added",
		zap.String("username", username),
		zap.Int64("product_id", item.ProductID),
		zap.Int("quantity", item.Quantity),
	)
	return cart, nil
}

// UpdateQuantity 修改购物车中商品的数量；数量为0等同于移除
func (s *cartService) UpdateQuantity(ctx context.Context, username string, productID int64, quantity int) (*domain.Cart, error) {
	if quantity < 0 {
		return nil, ErrInvalidQuantity
	}
	if quantity == 0 {
		return s.RemoveItem(ctx, username, productID)
	}

	cart, err := s.load(ctx, username)
	if err != nil {
		return nil, err
	}

	found := false
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			cart.Items[i].Quantity = quantity
			found = true
			break
		}
	}
	if !found {
		return nil, ErrCartItemNotFound
	}

	if err := s.store(ctx, username, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// RemoveItem 从购物车移除商品
func (s *cartService) RemoveItem(ctx context.Context, username string, productID int64) (*domain.Cart, error) {
	cart, err := s.load(ctx, username)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrCartItemNotFound
	}
	cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)

	if err := s.store(ctx, username, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// Clear 清空购物车，通常在下单成功后调用
func (s *cartService) Clear(ctx context.Context, username string) error {
	if err := s.cache.Del(ctx, s.cartKey(username)); err != nil {
		return fmt.Errorf("clear cart for %s: %w", username, err)
	}
	return nil
}

// load 读取并汇总购物车；缓存未命中视作空购物车
func (s *cartService) load(ctx context.Context, username string) (*domain.Cart, error) {
	var cart domain.Cart
	if err := s.cache.Get(ctx, s.cartKey(username), &cart); err != nil {
		cart = domain.Cart{Items: []domain.CartItem{}}
	}
	if cart.Items == nil {
		cart.Items = []domain.CartItem{}
	}
	recalc(&cart)
	return &cart, nil
}

// store 重算汇总并整体写回
func (s *cartService) store(ctx context.Context, username string, cart *domain.Cart) error {
	recalc(cart)
	if err := s.cache.Set(ctx, s.cartKey(username), cart, cartTTL); err != nil {
		return fmt.Errorf("store cart for %s: %w", username, err)
	}
	return nil
}

// recalc 重算购物车的商品总数与总价
func recalc(cart *domain.Cart) {
	var totalItems int
	var totalPrice int64
	for i := range cart.Items {
		totalItems += cart.Items[i].Quantity
		totalPrice += cart.Items[i].Price * int64(cart.Items[i].Quantity)
	}
	cart.TotalItems = totalItems
	cart.TotalPrice = totalPrice
}

// cartKey 生成购物车缓存键
func (s *cartService) cartKey(username string) string {
	return fmt.Sprintf("cart:user:%s", username)
}

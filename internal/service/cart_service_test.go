package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/egooptika/storefront/internal/cache"
	"github.com/egooptika/storefront/internal/domain"
)

func newTestCartService() CartService {
	return NewCartService(cache.NewMemoryCache(), zap.NewNop())
}

func TestCartService_AddItem(t *testing.T) {
	svc := newTestCartService()
	ctx := context.Background()

	cart, err := svc.AddItem(ctx, "ivan", domain.CartItem{ProductID: 1, Name: "Оправа", Price: 5000, Quantity: 2})
	if err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}

	if len(cart.Items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(cart.Items))
	}
	if cart.TotalItems != 2 {
		t.Errorf("Expected 2 total items, got %d", cart.TotalItems)
	}
	if cart.TotalPrice != 10000 {
		t.Errorf("Expected total 10000, got %d", cart.TotalPrice)
	}
}

func TestCartService_AddItem_AccumulatesQuantity(t *testing.T) {
	svc := newTestCartService()
	ctx := context.Background()

	_, _ = svc.AddItem(ctx, "ivan", domain.CartItem{ProductID: 1, Price: 5000, Quantity: 1})
	_, _ = svc.AddItem(ctx, "ivan", domain.CartItem{ProductID: 2, Price: 3000, Quantity: 1})
	cart, err := svc.AddItem(ctx, "ivan", domain.CartItem{ProductID: 1, Price: 5000, Quantity: 2})
	if err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}

	if len(cart.Items) != 2 {
		t.Fatalf("Expected 2 distinct items, got %d", len(cart.Items))
	}
	// 已有商品累加数量并保持原有位置
	if cart.Items[0].ProductID != 1 || cart.Items[0].Quantity != 3 {
		t.Errorf("Expected item 1 at front with quantity 3, got %+v", cart.Items[0])
	}
	if cart.TotalItems != 4 {
		t.Errorf("Expected 4 total items, got %d", cart.TotalItems)
	}
}

func TestCartService_AddItem_RejectsNonPositiveQuantity(t *testing.T) {
	svc := newTestCartService()

	_, err := svc.AddItem(context.Background(), "ivan", domain.CartItem{ProductID: 1, Quantity: 0})
	if !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("Expected ErrInvalidQuantity, got %v", err)
	}
}

func TestCartService_UpdateQuantity(t *testing.T) {
	svc := newTestCartService()
	ctx := context.Background()

	_, _ = svc.AddItem(ctx, "ivan", domain.CartItem{ProductID: 1, Price: 5000, Quantity: 1})

	cart, err := svc.UpdateQuantity(ctx, "ivan", 1, 5)
	if err != nil {
		t.Fatalf("UpdateQuantity failed: %v", err)
	}
	if cart.Items[0].Quantity != 5 {
		t.Errorf("Expected quantity 5, got %d", cart.Items[0].Quantity)
	}

	// 数量0等同于移除
	cart, err = svc.UpdateQuantity(ctx, "ivan", 1, 0)
	if err != nil {
		t.Fatalf("UpdateQuantity to zero failed: %v", err)
	}
	if len(cart.Items) != 0 {
		t.Errorf("Expected empty cart, got %d items", len(cart.Items))
	}
}

func TestCartService_UpdateQuantity_MissingItem(t *testing.T) {
	svc := newTestCartService()

	_, err := svc.UpdateQuantity(context.Background(), "ivan", 42, 1)
	if !errors.Is(err, ErrCartItemNotFound) {
		t.Errorf("Expected ErrCartItemNotFound, got %v", err)
	}
}

func TestCartService_RemoveItem(t *testing.T) {
	svc := newTestCartService()
	ctx := context.Background()

	_, _ = svc.AddItem(ctx, "ivan", domain.CartItem{ProductID: 1, Price: 5000, Quantity: 1})
	_, _ = svc.AddItem(ctx, "ivan", domain.CartItem{ProductID: 2, Price: 3000, Quantity: 1})

	cart, err := svc.RemoveItem(ctx, "ivan", 1)
	if err != nil {
		t.Fatalf("RemoveItem failed: %v", err)
	}
	if len(cart.Items) != 1 || cart.Items[0].ProductID != 2 {
		t.Errorf("Unexpected cart after removal: %+v", cart.Items)
	}
	if cart.TotalPrice != 3000 {
		t.Errorf("Expected total 3000, got %d", cart.TotalPrice)
	}

	if _, err := svc.RemoveItem(ctx, "ivan", 99); !errors.Is(err, ErrCartItemNotFound) {
		t.Errorf("Expected ErrCartItemNotFound, got %v", err)
	}
}

func TestCartService_Clear(t *testing.T) {
	svc := newTestCartService()
	ctx := context.Background()

	_, _ = svc.AddItem(ctx, "ivan", domain.CartItem{ProductID: 1, Price: 5000, Quantity: 1})
	if err := svc.Clear(ctx, "ivan"); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	cart, err := svc.Get(ctx, "ivan")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(cart.Items) != 0 || cart.TotalItems != 0 {
		t.Errorf("Expected empty cart after clear, got %+v", cart)
	}
}

func TestCartService_CartsAreIsolatedPerUser(t *testing.T) {
	svc := newTestCartService()
	ctx := context.Background()

	_, _ = svc.AddItem(ctx, "ivan", domain.CartItem{ProductID: 1, Price: 5000, Quantity: 1})
	_, _ = svc.AddItem(ctx, "maria", domain.CartItem{ProductID: 2, Price: 3000, Quantity: 1})

	ivanCart, _ := svc.Get(ctx, "ivan")
	mariaCart, _ := svc.Get(ctx, "maria")

	if len(ivanCart.Items) != 1 || ivanCart.Items[0].ProductID != 1 {
		t.Errorf("Unexpected cart for ivan: %+v", ivanCart.Items)
	}
	if len(mariaCart.Items) != 1 || mariaCart.Items[0].ProductID != 2 {
		t.Errorf("Unexpected cart for maria: %+v", mariaCart.Items)
	}
}

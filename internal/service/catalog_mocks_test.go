package service

import (
	"context"
	"sync"

	"github.com/egooptika/storefront/internal/domain"
)

// mockGateway 是用于测试的目录网关模拟实现
type mockGateway struct {
	mu       sync.Mutex
	enabled  bool
	products []domain.Product
	err      error
	calls    int
	block    chan struct{} // 非nil时抓取阻塞到通道关闭
}

func newMockGateway(products []domain.Product) *mockGateway {
	return &mockGateway{enabled: true, products: products}
}

func (m *mockGateway) Enabled() bool {
	return m.enabled
}

func (m *mockGateway) FetchCategory(ctx context.Context, categoryID string) ([]domain.Product, error) {
	m.mu.Lock()
	m.calls++
	block := m.block
	err := m.err
	products := m.products
	m.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	out := make([]domain.Product, len(products))
	copy(out, products)
	return out, nil
}

func (m *mockGateway) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *mockGateway) setResult(products []domain.Product, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products = products
	m.err = err
}

// mockCatalogRepository 是用于测试的快照仓储模拟实现
type mockCatalogRepository struct {
	mu        sync.Mutex
	snapshots map[string]*domain.CategorySnapshot
	puts      int
}

func newMockCatalogRepository() *mockCatalogRepository {
	return &mockCatalogRepository{snapshots: make(map[string]*domain.CategorySnapshot)}
}

func (m *mockCatalogRepository) GetSnapshot(ctx context.Context, categoryID string) (*domain.CategorySnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshots[categoryID], nil
}

func (m *mockCatalogRepository) PutSnapshot(ctx context.Context, snapshot *domain.CategorySnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[snapshot.CategoryID] = snapshot
	m.puts++
	return nil
}

func (m *mockCatalogRepository) putCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.puts
}

func (m *mockCatalogRepository) seed(snapshot *domain.CategorySnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[snapshot.CategoryID] = snapshot
}

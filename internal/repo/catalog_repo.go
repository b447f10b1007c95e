// Package repo 提供分类快照的缓存仓储实现。
package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/egooptika/storefront/internal/cache"
	"github.com/egooptika/storefront/internal/domain"
)

// CatalogRepository 定义分类快照的存取接口。
// 快照只在一次成功抓取后整体写入，从不部分更新；
// 过期条目照常返回，由调用方通过 Fresh 判断是否触发重新抓取
// （过期快照在后台刷新期间仍可展示，避免出现可见的空态）。
type CatalogRepository interface {
	// GetSnapshot 读取分类快照；未命中时返回 (nil, nil)
	GetSnapshot(ctx context.Context, categoryID string) (*domain.CategorySnapshot, error)
	// PutSnapshot 整体替换分类快照
	PutSnapshot(ctx context.Context, snapshot *domain.CategorySnapshot) error
}

// cachedCatalogRepository 基于通用缓存的快照仓储
type cachedCatalogRepository struct {
	cache cache.Cache
	ttl   time.Duration
}

// NewCatalogRepository 创建快照仓储。
// ttl 为快照的业务有效期；底层缓存条目的保留时间为其两倍，
// 以便过期后、新快照写入前仍能读到旧数据。
func NewCatalogRepository(c cache.Cache, ttl time.Duration) CatalogRepository {
	return &cachedCatalogRepository{
		cache: c,
		ttl:   ttl,
	}
}

// GetSnapshot 读取分类快照
func (r *cachedCatalogRepository) GetSnapshot(ctx context.Context, categoryID string) (*domain.CategorySnapshot, error) {
	var snapshot domain.CategorySnapshot
	if err := r.cache.Get(ctx, r.snapshotKey(categoryID), &snapshot); err != nil {
		// 未命中与过期淘汰都视作miss
		return nil, nil
	}
	return &snapshot, nil
}

// PutSnapshot 整体替换分类快照
func (r *cachedCatalogRepository) PutSnapshot(ctx context.Context, snapshot *domain.CategorySnapshot) error {
	if snapshot.TTL == 0 {
		snapshot.TTL = r.ttl
	}
	if err := r.cache.Set(ctx, r.snapshotKey(snapshot.CategoryID), snapshot, r.ttl*2); err != nil {
		return fmt.Errorf("put snapshot for category %s: %w", snapshot.CategoryID, err)
	}
	return nil
}

// snapshotKey 生成缓存键
func (r *cachedCatalogRepository) snapshotKey(categoryID string) string {
	return fmt.Sprintf("catalog:category:%s", categoryID)
}

// Package service 提供目录视图编排：快照获取、分面推导与查询引擎的组合。
package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/egooptika/storefront/internal/domain"
	"github.com/egooptika/storefront/internal/repo"
	"github.com/egooptika/storefront/internal/woo"
)

// fetchTimeout 是一次分类抓取的总时限。
// 网关内部自带单页超时与重试，这里只兜底防止泄漏。
const fetchTimeout = 5 * time.Minute

// CatalogService 是目录视图的单一查询入口。
// 过滤、排序、分页的任何变化都只在内存中重算，绝不触发网络抓取；
// 只有快照缺失或过期才会调用网关。
type CatalogService interface {
	// InitSession 确保分类快照就绪并把观测价格边界写入会话
	InitSession(ctx context.Context, sess *CatalogSession) error
	// Query 对会话当前状态执行查询，返回展示层读模型
	Query(ctx context.Context, sess *CatalogSession) (*domain.CatalogView, error)
	// Facets 返回分类的分面选项与观测价格边界
	Facets(ctx context.Context, categoryID string) (*domain.FacetOptions, domain.PriceBounds, error)
}

// fetchCall 表示一次进行中的分类抓取，同分类的并发请求共享同一次抓取
type fetchCall struct {
	done     chan struct{}
	snapshot *domain.CategorySnapshot
	err      error
}

// catalogService 实现CatalogService
type catalogService struct {
	gateway woo.Gateway
	repo    repo.CatalogRepository
	engine  *CatalogEngine
	facets  *FacetService
	ttl     time.Duration
	logger  *zap.Logger

	mu       sync.Mutex
	seq      map[string]uint64 // 每分类的抓取代次，用于丢弃迟到的旧结果
	inflight map[string]*fetchCall
}

// NewCatalogService 创建目录服务实例
func NewCatalogService(
	gateway woo.Gateway,
	catalogRepo repo.CatalogRepository,
	engine *CatalogEngine,
	facets *FacetService,
	ttl time.Duration,
	logger *zap.Logger,
) CatalogService {
	return &catalogService{
		gateway:  gateway,
		repo:     catalogRepo,
		engine:   engine,
		facets:   facets,
		ttl:      ttl,
		logger:   logger,
		seq:      make(map[string]uint64),
		inflight: make(map[string]*fetchCall),
	}
}

// InitSession 确保快照就绪并初始化会话的价格边界
func (s *catalogService) InitSession(ctx context.Context, sess *CatalogSession) error {
	snapshot, err := s.ensureSnapshot(ctx, sess.CategoryID)
	if err != nil {
		return err
	}
	_, bounds := s.facets.Derive(snapshot)
	sess.InitBounds(bounds)
	return nil
}

// Query 执行目录查询
func (s *catalogService) Query(ctx context.Context, sess *CatalogSession) (*domain.CatalogView, error) {
	snapshot, err := s.ensureSnapshot(ctx, sess.CategoryID)
	if err != nil {
		return nil, err
	}

	facets, bounds := s.facets.Derive(snapshot)
	sess.InitBounds(bounds)

	page := s.engine.Query(snapshot, sess.Filter, sess.PriceRange, sess.Sort, sess.PageRequest())

	return &domain.CatalogView{
		Products:    page.Items,
		Total:       page.TotalMatched,
		Page:        sess.Page,
		PageSize:    sess.PageSize,
		PriceBounds: bounds,
		PriceRange:  sess.PriceRange,
		Facets:      facets,
	}, nil
}

// Facets 返回分类的分面选项与价格边界
func (s *catalogService) Facets(ctx context.Context, categoryID string) (*domain.FacetOptions, domain.PriceBounds, error) {
	snapshot, err := s.ensureSnapshot(ctx, categoryID)
	if err != nil {
		return nil, domain.PriceBounds{}, err
	}
	facets, bounds := s.facets.Derive(snapshot)
	return &facets, bounds, nil
}

// ensureSnapshot 返回可用的分类快照。
// 新鲜快照直接返回；过期快照立即返回旧数据并在后台刷新（避免刷新期间的可见空态）；
// 无快照时同步抓取。抓取失败不写缓存，错误原样上抛为该分类的终态。
func (s *catalogService) ensureSnapshot(ctx context.Context, categoryID string) (*domain.CategorySnapshot, error) {
	// 软禁用：无API密钥时直接给出空目录，不报错也不占用缓存
	if !s.gateway.Enabled() {
		return &domain.CategorySnapshot{
			CategoryID: categoryID,
			Products:   []domain.Product{},
			FetchedAt:  time.Now(),
			TTL:        s.ttl,
		}, nil
	}

	snapshot, err := s.repo.GetSnapshot(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if snapshot != nil {
		if snapshot.Fresh(time.Now()) {
			return snapshot, nil
		}
		s.refreshAsync(categoryID)
		return snapshot, nil
	}

	return s.refreshSync(ctx, categoryID)
}

// refreshSync 同步等待分类抓取完成；同分类的并发调用共享一次进行中的抓取。
// 抓取本身运行在独立的后台上下文上：某个调用方断开只结束它自己的等待，
// 不会把取消错误扩散给共享同一次抓取的其他请求。
func (s *catalogService) refreshSync(ctx context.Context, categoryID string) (*domain.CategorySnapshot, error) {
	call := s.launch(categoryID)
	select {
	case <-call.done:
		return call.snapshot, call.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// refreshAsync 在后台刷新过期快照，不等待结果
func (s *catalogService) refreshAsync(categoryID string) {
	s.launch(categoryID)
}

// launch 确保分类有一次进行中的抓取并返回它；已有进行中的抓取时不重复发起。
// 抓取在后台goroutine中执行，生命周期与任何单个请求解耦。
func (s *catalogService) launch(categoryID string) *fetchCall {
	call, seq, started := s.begin(categoryID)
	if !started {
		return call
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		snapshot, err := s.fetch(ctx, categoryID, seq)
		s.finish(categoryID, call, snapshot, err)
		if err != nil {
			s.logger.Warn("category fetch failed",
				zap.String("category_id", categoryID),
				zap.Error(err))
		}
	}()
	return call
}

// begin 登记一次抓取；返回started=false表示已有进行中的抓取可等待。
func (s *catalogService) begin(categoryID string) (*fetchCall, uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if call, ok := s.inflight[categoryID]; ok {
		return call, 0, false
	}
	call := &fetchCall{done: make(chan struct{})}
	s.inflight[categoryID] = call
	s.seq[categoryID]++
	return call, s.seq[categoryID], true
}

// finish 完成一次抓取并唤醒等待者
func (s *catalogService) finish(categoryID string, call *fetchCall, snapshot *domain.CategorySnapshot, err error) {
	call.snapshot, call.err = snapshot, err

	s.mu.Lock()
	if s.inflight[categoryID] == call {
		delete(s.inflight, categoryID)
	}
	s.mu.Unlock()

	close(call.done)
}

// fetch 调用网关抓取并在校验代次后写入快照。
// 代次不匹配说明期间已有更新的抓取启动，本次结果不得覆盖较新的状态。
func (s *catalogService) fetch(ctx context.Context, categoryID string, seq uint64) (*domain.CategorySnapshot, error) {
	products, err := s.gateway.FetchCategory(ctx, categoryID)
	if err != nil {
		// 失败的抓取绝不写缓存：不能让空/残缺结果被误认为有效的空分类
		return nil, err
	}

	snapshot := &domain.CategorySnapshot{
		CategoryID: categoryID,
		Products:   products,
		FetchedAt:  time.Now(),
		TTL:        s.ttl,
	}

	s.mu.Lock()
	current := s.seq[categoryID]
	s.mu.Unlock()
	if seq != current {
		s.logger.Warn("discarding outdated fetch result",
			zap.String("category_id", categoryID),
			zap.Uint64("seq", seq),
			zap.Uint64("current", current))
		return snapshot, nil
	}

	if err := s.repo.PutSnapshot(ctx, snapshot); err != nil {
		s.logger.Error("failed to store snapshot",
			zap.String("category_id", categoryID),
			zap.Error(err))
	}
	return snapshot, nil
}

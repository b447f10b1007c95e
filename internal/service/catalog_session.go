// Package service 提供目录会话状态：用户可调整的过滤、排序、分页与价格区间。
package service

import (
	"github.com/egooptika/storefront/internal/domain"
)

// 会话默认值
const (
	DefaultPageSize = 16
	// PriceStep 是价格滑块两端的最小间隔
	PriceStep = 1000
)

// CatalogSession 持有一次目录浏览的全部用户态。
// 所有变更方法维护两条不变量：
//  1. 过滤、排序或价格区间变化后页码重置为1（结果集已变，原页位失效）；
//  2. 价格区间始终满足 bounds.Min <= Min <= Max <= bounds.Max。
type CatalogSession struct {
	CategoryID string
	Filter     domain.FilterSpec
	PriceRange domain.PriceRange
	Sort       domain.SortKey
	Page       int
	PageSize   int

	bounds        domain.PriceBounds
	boundsKnown   bool
	priceAdjusted bool // 用户动过价格区间后不再被观测边界覆盖
}

// NewCatalogSession 创建带默认状态的目录会话
func NewCatalogSession(categoryID string) *CatalogSession {
	return &CatalogSession{
		CategoryID: categoryID,
		Filter:     domain.NewFilterSpec(),
		PriceRange: domain.PriceRange{Min: domain.DefaultPriceMin, Max: domain.DefaultPriceMax},
		Sort:       domain.SortDefault,
		Page:       1,
		PageSize:   DefaultPageSize,
		bounds:     domain.DefaultPriceBounds(),
	}
}

// InitBounds 记录观测价格边界。
// 首次获得边界时把价格区间初始化为边界本身；用户已调整过的区间只做收敛钳制。
func (s *CatalogSession) InitBounds(bounds domain.PriceBounds) {
	s.bounds = bounds
	if !s.boundsKnown && !s.priceAdjusted {
		s.PriceRange = domain.PriceRange{Min: bounds.Min, Max: bounds.Max}
	} else {
		s.PriceRange.Min = clamp(s.PriceRange.Min, bounds.Min, bounds.Max)
		s.PriceRange.Max = clamp(s.PriceRange.Max, s.PriceRange.Min, bounds.Max)
	}
	s.boundsKnown = true
}

// Bounds 返回当前已知的观测价格边界
func (s *CatalogSession) Bounds() domain.PriceBounds {
	return s.bounds
}

// SetGender 设置性别过滤
func (s *CatalogSession) SetGender(v string) {
	if v == "" {
		v = domain.FilterAll
	}
	s.Filter.Gender = v
	s.resetPage()
}

// SetCountry 设置产地过滤
func (s *CatalogSession) SetCountry(v string) {
	if v == "" {
		v = domain.FilterAll
	}
	s.Filter.Country = v
	s.resetPage()
}

// SetMaterials 设置材质多选过滤
func (s *CatalogSession) SetMaterials(v []string) {
	s.Filter.Materials = v
	s.resetPage()
}

// SetFrameTypes 设置镜框类型多选过滤
func (s *CatalogSession) SetFrameTypes(v []string) {
	s.Filter.FrameTypes = v
	s.resetPage()
}

// SetColors 设置颜色多选过滤
func (s *CatalogSession) SetColors(v []string) {
	s.Filter.Colors = v
	s.resetPage()
}

// SetBrands 设置品牌多选过滤
func (s *CatalogSession) SetBrands(v []string) {
	s.Filter.Brands = v
	s.resetPage()
}

// SetSort 设置排序键，非法取值回落到default
func (s *CatalogSession) SetSort(k domain.SortKey) {
	if !k.Valid() {
		k = domain.SortDefault
	}
	s.Sort = k
	s.resetPage()
}

// SetPage 设置页码
func (s *CatalogSession) SetPage(n int) {
	if n < 1 {
		n = 1
	}
	s.Page = n
}

// SetPageSize 设置每页数量；数量变化使原页位失效
func (s *CatalogSession) SetPageSize(n int) {
	if n < 1 {
		n = DefaultPageSize
	}
	s.PageSize = n
	s.resetPage()
}

// SetMinPrice 拖动价格下界。
// 下界越过上界时上界被推高，保持最小1000单位间隔；两端都钳制在观测边界内。
func (s *CatalogSession) SetMinPrice(v int64) {
	v = clamp(v, s.bounds.Min, s.bounds.Max)
	if v > s.PriceRange.Max-PriceStep {
		s.PriceRange.Max = clamp(v+PriceStep, s.bounds.Min, s.bounds.Max)
	}
	if v > s.PriceRange.Max {
		v = s.PriceRange.Max
	}
	s.PriceRange.Min = v
	s.priceAdjusted = true
	s.resetPage()
}

// SetMaxPrice 拖动价格上界，规则与SetMinPrice对称
func (s *CatalogSession) SetMaxPrice(v int64) {
	v = clamp(v, s.bounds.Min, s.bounds.Max)
	if v < s.PriceRange.Min+PriceStep {
		s.PriceRange.Min = clamp(v-PriceStep, s.bounds.Min, s.bounds.Max)
	}
	if v < s.PriceRange.Min {
		v = s.PriceRange.Min
	}
	s.PriceRange.Max = v
	s.priceAdjusted = true
	s.resetPage()
}

// PageRequest 返回当前分页请求
func (s *CatalogSession) PageRequest() domain.PageRequest {
	return domain.PageRequest{Index: s.Page, Size: s.PageSize}
}

// resetPage 过滤、排序或价格变化后回到第一页
func (s *CatalogSession) resetPage() {
	s.Page = 1
}

// clamp 把v钳制到[lo, hi]
func clamp(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Package domain 定义目录查询相关的领域模型：过滤条件、排序、分页、分面选项与分类快照。
package domain

import (
	"time"
)

// FilterAll 表示单值过滤字段（性别、产地）不做筛选的哨兵值。
const FilterAll = "all"

// SortKey 定义目录排序方式
type SortKey string

const (
	SortDefault   SortKey = "default"    // 保持快照内的原始顺序
	SortPriceLow  SortKey = "price-low"  // 价格升序
	SortPriceHigh SortKey = "price-high" // 价格降序
	SortName      SortKey = "name"       // 名称排序（俄语排序规则）
)

// Valid 判断排序方式是否受支持
func (k SortKey) Valid() bool {
	switch k {
	case SortDefault, SortPriceLow, SortPriceHigh, SortName:
		return true
	}
	return false
}

// FilterSpec 表示用户选择的过滤条件。
// 列表字段内部为 OR 语义，字段之间为 AND 语义。
type FilterSpec struct {
	Gender     string   `json:"gender"`      // "all" 或具体值
	Country    string   `json:"country"`     // "all" 或具体值
	Materials  []string `json:"materials"`   // 空表示不过滤
	FrameTypes []string `json:"frame_types"` // 空表示不过滤
	Colors     []string `json:"colors"`      // 空表示不过滤
	Brands     []string `json:"brands"`      // 空表示不过滤
}

// NewFilterSpec 创建默认过滤条件（全部不过滤）
func NewFilterSpec() FilterSpec {
	return FilterSpec{
		Gender:  FilterAll,
		Country: FilterAll,
	}
}

// PriceRange 表示用户选择的价格区间，闭区间。
// 不变量：Min <= Max，且始终落在当前分类的观测价格边界内。
type PriceRange struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
}

// PriceBounds 表示从商品集合观测到的价格边界（按千取整）。
type PriceBounds struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
}

// 价格边界的缺省取值：商品集合为空或全部价格为零时使用。
const (
	DefaultPriceMin = 0
	DefaultPriceMax = 70000
)

// DefaultPriceBounds 返回缺省价格边界
func DefaultPriceBounds() PriceBounds {
	return PriceBounds{Min: DefaultPriceMin, Max: DefaultPriceMax}
}

// PageRequest 表示分页请求，页码从1开始。
type PageRequest struct {
	Index int `json:"index"`
	Size  int `json:"size"`
}

// FacetOption 表示一个可选的过滤选项
type FacetOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// ColorOption 表示颜色过滤选项，附带固定的HEX色板值
type ColorOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Hex   string `json:"hex"`
}

// FacetOptions 表示从分类快照推导出的全部过滤维度选项。
// 颜色选项不从数据推导，而是固定色板（见 service 层）。
type FacetOptions struct {
	Genders    []FacetOption `json:"genders"`     // 首项为 "all" 哨兵
	Countries  []FacetOption `json:"countries"`   // 首项为 "all" 哨兵
	Materials  []FacetOption `json:"materials"`   // 多选，无哨兵
	FrameTypes []FacetOption `json:"frame_types"` // 多选，无哨兵
	Brands     []FacetOption `json:"brands"`      // 多选，无哨兵
	Colors     []ColorOption `json:"colors"`      // 固定色板
}

// 预置分类：值为远端商城的分类ID
const (
	CategoryFrames     = "104" // 医学验光镜架
	CategorySunglasses = "108" // 太阳镜
)

// CategoryIDBySlug 把路径中的分类别名映射为远端分类ID
var CategoryIDBySlug = map[string]string{
	"frames":     CategoryFrames,
	"sunglasses": CategorySunglasses,
}

// CategorySnapshot 表示某个分类一次成功抓取后的不可变快照。
// 快照整体替换、从不部分更新；读取方通过 Fresh 判断是否过期。
type CategorySnapshot struct {
	CategoryID string        `json:"category_id"`
	Products   []Product     `json:"products"`
	FetchedAt  time.Time     `json:"fetched_at"`
	TTL        time.Duration `json:"ttl"`
}

// Fresh 判断快照在给定时刻是否仍然有效
func (s *CategorySnapshot) Fresh(now time.Time) bool {
	return now.Sub(s.FetchedAt) < s.TTL
}

// CatalogPage 表示过滤、排序、分页后的可见页。
type CatalogPage struct {
	Items        []Product `json:"items"`
	TotalMatched int       `json:"total_matched"` // 分页前的命中总数
}

// CatalogView 表示目录视图对外暴露的读模型，供展示层直接消费。
type CatalogView struct {
	Products    []Product    `json:"products"`
	Total       int          `json:"total"`
	Page        int          `json:"page"`
	PageSize    int          `json:"page_size"`
	PriceBounds PriceBounds  `json:"price_bounds"`
	PriceRange  PriceRange   `json:"price_range"`
	Facets      FacetOptions `json:"facets"`
}

// Package service 提供内存中的目录过滤、排序与分页引擎。
package service

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/egooptika/storefront/internal/domain"
)

// CatalogEngine 对不可变的分类快照执行多条件过滤、排序与分页。
// 纯计算、确定性；按输入做单槽记忆化：输入未变化时直接返回上次结果
// （同一指针），避免无关状态变化引起的重复计算。
type CatalogEngine struct {
	mu       sync.Mutex
	collator *collate.Collator // 俄语排序规则，非并发安全，由mu保护
	lastKey  string
	lastPage *domain.CatalogPage
}

// NewCatalogEngine 创建目录查询引擎
func NewCatalogEngine() *CatalogEngine {
	return &CatalogEngine{
		collator: collate.New(language.Russian),
	}
}

// Query 计算可见页及分页前的命中总数。
// 超出范围的页码返回空页，不报错。
func (e *CatalogEngine) Query(
	snapshot *domain.CategorySnapshot,
	filter domain.FilterSpec,
	priceRange domain.PriceRange,
	sortKey domain.SortKey,
	page domain.PageRequest,
) *domain.CatalogPage {
	key := memoKey(snapshot, filter, priceRange, sortKey, page)

	e.mu.Lock()
	defer e.mu.Unlock()
	if key == e.lastKey && e.lastPage != nil {
		return e.lastPage
	}

	filtered := filterProducts(snapshot.Products, filter, priceRange)
	sorted := e.sortProducts(filtered, sortKey)
	items := paginate(sorted, page)

	result := &domain.CatalogPage{
		Items:        items,
		TotalMatched: len(filtered),
	}
	e.lastKey = key
	e.lastPage = result
	return result
}

// filterProducts 按过滤条件筛选商品：字段之间AND，列表字段内部OR。
// 廉价的标量判断在前，列表相交判断在后；由于全部条件AND，顺序只影响性能。
func filterProducts(products []domain.Product, filter domain.FilterSpec, priceRange domain.PriceRange) []domain.Product {
	filtered := make([]domain.Product, 0, len(products))
	for i := range products {
		p := &products[i]

		if filter.Gender != domain.FilterAll && p.Gender != filter.Gender {
			continue
		}
		if filter.Country != domain.FilterAll && p.Country != filter.Country {
			continue
		}
		if p.Price < priceRange.Min || p.Price > priceRange.Max {
			continue
		}
		if len(filter.Materials) > 0 && !hasAnyMaterial(p, filter.Materials) {
			continue
		}
		// 镜框类型是标量字段，做成员判断而非列表相交
		if len(filter.FrameTypes) > 0 && !containsString(filter.FrameTypes, p.FrameType) {
			continue
		}
		if len(filter.Colors) > 0 && !hasAnyColor(p, filter.Colors) {
			continue
		}
		if len(filter.Brands) > 0 && !containsString(filter.Brands, p.Brand) {
			continue
		}

		filtered = append(filtered, *p)
	}
	return filtered
}

// sortProducts 按排序键稳定排序。
// default保持过滤后的原始顺序；其余排序在副本上进行，不改动过滤结果。
func (e *CatalogEngine) sortProducts(filtered []domain.Product, sortKey domain.SortKey) []domain.Product {
	if sortKey == domain.SortDefault {
		return filtered
	}

	sorted := make([]domain.Product, len(filtered))
	copy(sorted, filtered)

	switch sortKey {
	case domain.SortPriceLow:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Price < sorted[j].Price
		})
	case domain.SortPriceHigh:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Price > sorted[j].Price
		})
	case domain.SortName:
		sort.SliceStable(sorted, func(i, j int) bool {
			return e.collator.CompareString(sorted[i].Name, sorted[j].Name) < 0
		})
	}
	return sorted
}

// paginate 切出请求页；页码从1开始，越界返回空页
func paginate(sorted []domain.Product, page domain.PageRequest) []domain.Product {
	if page.Index < 1 || page.Size < 1 {
		return []domain.Product{}
	}
	start := (page.Index - 1) * page.Size
	if start >= len(sorted) {
		return []domain.Product{}
	}
	end := start + page.Size
	if end > len(sorted) {
		end = len(sorted)
	}
	return sorted[start:end]
}

// memoKey 由全部查询输入构造记忆化键。
// 快照不可变，分类ID加抓取时间即可标识商品集合。
func memoKey(
	snapshot *domain.CategorySnapshot,
	filter domain.FilterSpec,
	priceRange domain.PriceRange,
	sortKey domain.SortKey,
	page domain.PageRequest,
) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s@%d|%s|%s|", snapshot.CategoryID, snapshot.FetchedAt.UnixNano(), filter.Gender, filter.Country)
	b.WriteString(strings.Join(filter.Materials, "\x1f"))
	b.WriteByte('|')
	b.WriteString(strings.Join(filter.FrameTypes, "\x1f"))
	b.WriteByte('|')
	b.WriteString(strings.Join(filter.Colors, "\x1f"))
	b.WriteByte('|')
	b.WriteString(strings.Join(filter.Brands, "\x1f"))
	fmt.Fprintf(&b, "|%d-%d|%s|%d:%d", priceRange.Min, priceRange.Max, sortKey, page.Index, page.Size)
	return b.String()
}

// hasAnyColor 判断商品是否命中任一所选颜色
func hasAnyColor(p *domain.Product, colors []string) bool {
	for _, c := range colors {
		if p.HasColor(c) {
			return true
		}
	}
	return false
}

// hasAnyMaterial 判断商品是否命中任一所选材质
func hasAnyMaterial(p *domain.Product, materials []string) bool {
	for _, m := range materials {
		if p.HasMaterial(m) {
			return true
		}
	}
	return false
}

// containsString 判断列表是否包含指定值
func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

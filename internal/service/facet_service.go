// Package service 实现目录业务逻辑层：分面推导、过滤排序分页引擎与视图编排。
package service

import (
	"fmt"
	"sync"

	"github.com/egooptika/storefront/internal/domain"
)

// allOptionLabel 是单值过滤维度（性别、产地）列表首项的"全部"选项文案。
const allOptionLabel = "Все"

// colorPalette 是固定的颜色色板：颜色选项不从数据推导，
// 即使某分类暂时缺货某颜色，色块也要稳定一致地渲染。
var colorPalette = []domain.ColorOption{
	{Value: "Бежевый", Label: "Бежевый", Hex: "#ebc8b2"},
	{Value: "Белый", Label: "Белый", Hex: "#ffffff"},
	{Value: "Бронза", Label: "Бронза", Hex: "#43291f"},
	{Value: "Голубой", Label: "Голубой", Hex: "#b3dcfd"},
	{Value: "Желтый", Label: "Желтый", Hex: "#ffff00"},
	{Value: "Зеленый", Label: "Зеленый", Hex: "#4caf50"},
	{Value: "Золотой", Label: "Золотой", Hex: "#ffdf2b"},
	{Value: "Коралловый", Label: "Коралловый", Hex: "#ff7f50"},
	{Value: "Коричневый", Label: "Коричневый", Hex: "#795548"},
	{Value: "Красный", Label: "Красный", Hex: "#ff0000"},
	{Value: "Медь", Label: "Медь", Hex: "#b87333"},
	{Value: "Оранжевый", Label: "Оранжевый", Hex: "#dd9933"},
	{Value: "Прозрачный", Label: "Прозрачный", Hex: "#ffffff"},
	{Value: "Розовый", Label: "Розовый", Hex: "#ffc0cb"},
	{Value: "Серебряный", Label: "Серебряный", Hex: "#e5e5e5"},
	{Value: "Серый", Label: "Серый", Hex: "#bcbcbc"},
	{Value: "Синий", Label: "Синий", Hex: "#0000ff"},
	{Value: "Слоновая кость", Label: "Слоновая кость", Hex: "#fffff0"},
	{Value: "Фиолетовый", Label: "Фиолетовый", Hex: "#8b00ff"},
	{Value: "Черный", Label: "Черный", Hex: "#212121"},
}

// ColorPalette 返回固定色板的副本
func ColorPalette() []domain.ColorOption {
	out := make([]domain.ColorOption, len(colorPalette))
	copy(out, colorPalette)
	return out
}

// FacetService 从分类快照推导过滤维度选项和价格边界。
// 快照不可变，推导结果按快照身份做单槽记忆化，避免重复计算。
type FacetService struct {
	mu         sync.Mutex
	lastKey    string
	lastFacets domain.FacetOptions
	lastBounds domain.PriceBounds
}

// NewFacetService 创建分面推导服务
func NewFacetService() *FacetService {
	return &FacetService{}
}

// Derive 返回快照的分面选项和观测价格边界。
// 同一快照的重复调用直接命中记忆化结果。
func (s *FacetService) Derive(snapshot *domain.CategorySnapshot) (domain.FacetOptions, domain.PriceBounds) {
	key := fmt.Sprintf("%s@%d", snapshot.CategoryID, snapshot.FetchedAt.UnixNano())

	s.mu.Lock()
	defer s.mu.Unlock()
	if key == s.lastKey {
		return s.lastFacets, s.lastBounds
	}

	facets := deriveFacets(snapshot.Products)
	bounds := derivePriceBounds(snapshot.Products)

	s.lastKey = key
	s.lastFacets = facets
	s.lastBounds = bounds
	return facets, bounds
}

// deriveFacets 单次遍历商品集合，推导各维度的去重选项。
// 哨兵默认值不作为选项出现；选项顺序为首次出现顺序，不做字典序排序。
func deriveFacets(products []domain.Product) domain.FacetOptions {
	facets := domain.FacetOptions{
		Genders:    []domain.FacetOption{{Value: domain.FilterAll, Label: allOptionLabel}},
		Countries:  []domain.FacetOption{{Value: domain.FilterAll, Label: allOptionLabel}},
		Materials:  []domain.FacetOption{},
		FrameTypes: []domain.FacetOption{},
		Brands:     []domain.FacetOption{},
		Colors:     ColorPalette(),
	}

	seenGenders := make(map[string]struct{})
	seenCountries := make(map[string]struct{})
	seenMaterials := make(map[string]struct{})
	seenFrameTypes := make(map[string]struct{})
	seenBrands := make(map[string]struct{})

	for i := range products {
		p := &products[i]

		if p.Gender != "" && p.Gender != domain.GenderUnisex {
			if _, ok := seenGenders[p.Gender]; !ok {
				seenGenders[p.Gender] = struct{}{}
				facets.Genders = append(facets.Genders, domain.FacetOption{Value: p.Gender, Label: p.Gender})
			}
		}
		if p.Country != "" && p.Country != domain.CountryUnknown {
			if _, ok := seenCountries[p.Country]; !ok {
				seenCountries[p.Country] = struct{}{}
				facets.Countries = append(facets.Countries, domain.FacetOption{Value: p.Country, Label: p.Country})
			}
		}
		if p.FrameType != "" && p.FrameType != domain.FrameTypeUnknown {
			if _, ok := seenFrameTypes[p.FrameType]; !ok {
				seenFrameTypes[p.FrameType] = struct{}{}
				facets.FrameTypes = append(facets.FrameTypes, domain.FacetOption{Value: p.FrameType, Label: p.FrameType})
			}
		}
		if p.Brand != "" && p.Brand != domain.BrandNone {
			if _, ok := seenBrands[p.Brand]; !ok {
				seenBrands[p.Brand] = struct{}{}
				facets.Brands = append(facets.Brands, domain.FacetOption{Value: p.Brand, Label: p.Brand})
			}
		}
		// 一个商品可以贡献多个材质选项
		for _, m := range p.Materials {
			if m == "" {
				continue
			}
			if _, ok := seenMaterials[m]; !ok {
				seenMaterials[m] = struct{}{}
				facets.Materials = append(facets.Materials, domain.FacetOption{Value: m, Label: m})
			}
		}
	}

	return facets
}

// derivePriceBounds 计算观测价格边界，按千取整以适配滑块刻度。
// 商品集合为空或全部价格为零时回落到固定默认区间。
func derivePriceBounds(products []domain.Product) domain.PriceBounds {
	var minPrice, maxPrice int64
	found := false
	for i := range products {
		price := products[i].Price
		if price <= 0 {
			continue
		}
		if !found {
			minPrice, maxPrice = price, price
			found = true
			continue
		}
		if price < minPrice {
			minPrice = price
		}
		if price > maxPrice {
			maxPrice = price
		}
	}

	if !found {
		return domain.DefaultPriceBounds()
	}

	return domain.PriceBounds{
		Min: minPrice / 1000 * 1000,
		Max: (maxPrice + 999) / 1000 * 1000,
	}
}

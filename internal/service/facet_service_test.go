package service

import (
	"testing"
	"time"

	"github.com/egooptika/storefront/internal/domain"
)

func snapshotOf(products ...domain.Product) *domain.CategorySnapshot {
	return &domain.CategorySnapshot{
		CategoryID: "104",
		Products:   products,
		FetchedAt:  time.Now(),
		TTL:        5 * time.Minute,
	}
}

func TestFacetService_Derive_SkipsSentinels(t *testing.T) {
	s := NewFacetService()

	facets, _ := s.Derive(snapshotOf(
		domain.Product{ID: 1, Gender: "Мужской", Country: "Италия", FrameType: "Полная", Brand: "Ray-Ban", Price: 5000},
		domain.Product{ID: 2, Gender: domain.GenderUnisex, Country: domain.CountryUnknown, FrameType: domain.FrameTypeUnknown, Brand: domain.BrandNone, Price: 3000},
	))

	// 哨兵默认值不进入选项；性别维度首项是"全部"
	if len(facets.Genders) != 2 {
		t.Fatalf("Expected all-option + 1 gender, got %v", facets.Genders)
	}
	if facets.Genders[0].Value != domain.FilterAll {
		t.Errorf("Expected all-option first, got %v", facets.Genders[0])
	}
	if facets.Genders[1].Value != "Мужской" {
		t.Errorf("Expected Мужской, got %v", facets.Genders[1])
	}
	if len(facets.Countries) != 2 {
		t.Errorf("Expected all-option + 1 country, got %v", facets.Countries)
	}
	if len(facets.FrameTypes) != 1 || facets.FrameTypes[0].Value != "Полная" {
		t.Errorf("Unexpected frame types: %v", facets.FrameTypes)
	}
	if len(facets.Brands) != 1 || facets.Brands[0].Value != "Ray-Ban" {
		t.Errorf("Unexpected brands: %v", facets.Brands)
	}
}

func TestFacetService_Derive_FirstAppearanceOrder(t *testing.T) {
	s := NewFacetService()

	facets, _ := s.Derive(snapshotOf(
		domain.Product{ID: 1, Brand: "Persol", Price: 1000},
		domain.Product{ID: 2, Brand: "Armani", Price: 1000},
		domain.Product{ID: 3, Brand: "Persol", Price: 1000},
	))

	if len(facets.Brands) != 2 {
		t.Fatalf("Expected 2 unique brands, got %v", facets.Brands)
	}
	// 不做字典序排序，保持首次出现顺序
	if facets.Brands[0].Value != "Persol" || facets.Brands[1].Value != "Armani" {
		t.Errorf("Expected first-appearance order, got %v", facets.Brands)
	}
}

func TestFacetService_Derive_MaterialsFlattened(t *testing.T) {
	s := NewFacetService()

	facets, _ := s.Derive(snapshotOf(
		domain.Product{ID: 1, Materials: []string{"Металл", "Пластик"}, Price: 1000},
		domain.Product{ID: 2, Materials: []string{"Пластик", "Титан"}, Price: 1000},
	))

	if len(facets.Materials) != 3 {
		t.Fatalf("Expected 3 unique materials, got %v", facets.Materials)
	}
	want := []string{"Металл", "Пластик", "Титан"}
	for i, m := range facets.Materials {
		if m.Value != want[i] {
			t.Errorf("Material %d: expected %s, got %s", i, want[i], m.Value)
		}
	}
}

func TestFacetService_Derive_ColorsAreFixedPalette(t *testing.T) {
	s := NewFacetService()

	// 颜色选项不从数据推导
	facets, _ := s.Derive(snapshotOf(
		domain.Product{ID: 1, Colors: []string{"Черный"}, Price: 1000},
	))

	if len(facets.Colors) != len(colorPalette) {
		t.Fatalf("Expected fixed palette of %d colors, got %d", len(colorPalette), len(facets.Colors))
	}
	for i := range colorPalette {
		if facets.Colors[i] != colorPalette[i] {
			t.Errorf("Color %d differs from palette: %v", i, facets.Colors[i])
		}
	}
}

func TestFacetService_PriceBounds_RoundedToThousand(t *testing.T) {
	s := NewFacetService()

	_, bounds := s.Derive(snapshotOf(
		domain.Product{ID: 1, Price: 3499},
		domain.Product{ID: 2, Price: 18200},
		domain.Product{ID: 3, Price: 0}, // 零价不参与边界
	))

	if bounds.Min != 3000 {
		t.Errorf("Expected min floored to 3000, got %d", bounds.Min)
	}
	if bounds.Max != 19000 {
		t.Errorf("Expected max ceiled to 19000, got %d", bounds.Max)
	}
}

func TestFacetService_PriceBounds_DefaultsWhenNoPrices(t *testing.T) {
	s := NewFacetService()

	_, bounds := s.Derive(snapshotOf(
		domain.Product{ID: 1, Price: 0},
	))

	def := domain.DefaultPriceBounds()
	if bounds != def {
		t.Errorf("Expected default bounds %+v, got %+v", def, bounds)
	}

	_, bounds = s.Derive(snapshotOf())
	if bounds != def {
		t.Errorf("Expected default bounds for empty snapshot, got %+v", bounds)
	}
}

func TestFacetService_Derive_MemoizedPerSnapshot(t *testing.T) {
	s := NewFacetService()
	snap := snapshotOf(domain.Product{ID: 1, Brand: "Persol", Price: 5000})

	f1, b1 := s.Derive(snap)
	f2, b2 := s.Derive(snap)

	if b1 != b2 {
		t.Error("Expected identical bounds from memoized derive")
	}
	if len(f1.Brands) != len(f2.Brands) {
		t.Error("Expected identical facets from memoized derive")
	}
}

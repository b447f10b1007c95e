// Package woo 提供远端商品目录服务（WooCommerce REST API）的客户端与记录规范化。
package woo

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/egooptika/storefront/internal/domain"
)

// RawProduct 表示远端目录接口返回的单条原始记录。
// 字段的存在性和类型均无保证，消费一次后即丢弃。
type RawProduct struct {
	ID         int64           `json:"id"`
	Name       string          `json:"name"`
	Price      json.RawMessage `json:"price"` // 可能是字符串、数字或缺失
	SKU        string          `json:"sku"`
	Images     []RawImage      `json:"images"`
	Attributes []RawAttribute  `json:"attributes"`
	Categories []RawCategory   `json:"categories"`
	Brands     []RawBrand      `json:"etheme_brands"`
}

// RawImage 原始记录中的图片项
type RawImage struct {
	Src string `json:"src"`
}

// RawAttribute 原始记录中的供应商属性项，按slug区分
type RawAttribute struct {
	Slug    string   `json:"slug"`
	Options []string `json:"options"`
}

// RawCategory 原始记录中的分类项
type RawCategory struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// RawBrand 原始记录中的品牌项
type RawBrand struct {
	Name string `json:"name"`
}

// 供应商属性slug到规范字段名的映射
const (
	attrGender    = "gender"
	attrCountry   = "country"
	attrFrameType = "frameType"
	attrColor     = "color"
	attrMaterial  = "material"
)

// Normalize 将一条原始目录记录映射为规范化商品。
// 全函数：任何字段缺失、为空或类型错误都回落到哨兵默认值，绝不失败。
func Normalize(raw *RawProduct) domain.Product {
	attrs := collectAttributes(raw.Attributes)

	p := domain.Product{
		ID:         raw.ID,
		Name:       raw.Name,
		Brand:      domain.BrandNone,
		Price:      parsePrice(raw.Price),
		ImageURL:   domain.PlaceholderImageURL,
		Gender:     firstOr(attrs[attrGender], domain.GenderUnisex),
		Country:    firstOr(attrs[attrCountry], domain.CountryUnknown),
		FrameType:  firstOr(attrs[attrFrameType], domain.FrameTypeUnknown),
		Colors:     orEmpty(attrs[attrColor]),
		Materials:  orEmpty(attrs[attrMaterial]),
		Categories: make([]string, 0, len(raw.Categories)),
		SKU:        domain.SKUNone,
	}

	if len(raw.Brands) > 0 && raw.Brands[0].Name != "" {
		p.Brand = raw.Brands[0].Name
	}
	if len(raw.Images) > 0 && raw.Images[0].Src != "" {
		p.ImageURL = raw.Images[0].Src
	}
	if raw.SKU != "" {
		p.SKU = raw.SKU
	}
	for _, c := range raw.Categories {
		if c.Name != "" {
			p.Categories = append(p.Categories, c.Name)
		}
	}

	return p
}

// collectAttributes 按slug归集供应商属性并重映射到规范字段名。
// 未识别的slug原样保留，不影响规范化（对新增属性前向兼容）。
func collectAttributes(attrs []RawAttribute) map[string][]string {
	out := make(map[string][]string, len(attrs))
	for _, a := range attrs {
		key := strings.TrimPrefix(a.Slug, "pa_")
		switch key {
		case "sex":
			key = attrGender
		case "тип-оправы":
			key = attrFrameType
		}
		out[key] = a.Options
	}
	return out
}

// parsePrice 解析原始价格字段为非负整数。
// 接受JSON字符串或数字，小数截断取整；解析失败或为负时返回0。
func parsePrice(raw json.RawMessage) int64 {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return 0
	}
	s = strings.Trim(s, `"`)
	if s == "" {
		return 0
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0
	}
	return int64(v)
}

// firstOr 取列表首个非空元素，否则返回默认值
func firstOr(options []string, def string) string {
	for _, o := range options {
		if o != "" {
			return o
		}
	}
	return def
}

// orEmpty 保证列表字段非nil
func orEmpty(options []string) []string {
	if options == nil {
		return []string{}
	}
	return options
}

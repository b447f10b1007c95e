// Package domain 定义商品目录相关的业务领域模型和核心业务规则。
package domain

// 规范化缺省值：远端目录记录缺失字段时统一填充的哨兵值。
// 店面面向俄语用户，哨兵值与前端展示文案保持一致。
const (
	BrandNone        = "Без бренда" // 品牌缺失
	GenderUnisex     = "Унисекс"    // 性别缺失
	CountryUnknown   = "Не указано" // 产地缺失
	FrameTypeUnknown = "Не указан"  // 镜框类型缺失
	SKUNone          = "—"          // SKU缺失
)

// PlaceholderImageURL 商品无图片时使用的占位图地址。
const PlaceholderImageURL = "https://via.placeholder.com/300x300?text=No+Image"

// Product 表示规范化后的商品领域模型。
// 规范化完成后所有字段均有值（缺失字段已填充哨兵值），且创建后不可变，
// 可在快照和查询引擎之间按引用安全共享。
type Product struct {
	ID         int64    `json:"id"`
	Name       string   `json:"name"`
	Brand      string   `json:"brand"`
	Price      int64    `json:"price"` // 最小货币单位取整，恒 >= 0
	ImageURL   string   `json:"image_url"`
	Gender     string   `json:"gender"`
	Country    string   `json:"country"`
	FrameType  string   `json:"frame_type"`
	Colors     []string `json:"colors"`
	Materials  []string `json:"materials"`
	Categories []string `json:"categories"`
	SKU        string   `json:"sku"`
}

// HasColor 判断商品是否包含指定颜色
func (p *Product) HasColor(color string) bool {
	for _, c := range p.Colors {
		if c == color {
			return true
		}
	}
	return false
}

// HasMaterial 判断商品是否包含指定材质
func (p *Product) HasMaterial(material string) bool {
	for _, m := range p.Materials {
		if m == material {
			return true
		}
	}
	return false
}

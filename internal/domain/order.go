// Package domain 定义购物车和订单相关的领域模型。
package domain

// CartItem 表示购物车中的一个条目
type CartItem struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	ImageURL  string `json:"image_url"`
	Quantity  int    `json:"quantity"` // 恒 >= 1
}

// Cart 表示单个用户的购物车：按商品ID去重的数量容器，保持加入顺序。
type Cart struct {
	Items      []CartItem `json:"items"`
	TotalItems int        `json:"total_items"`
	TotalPrice int64      `json:"total_price"`
}

// OrderAddress 表示订单的账单/收货地址
type OrderAddress struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Address1  string `json:"address_1"`
	City      string `json:"city"`
	State     string `json:"state"`
	Postcode  string `json:"postcode"`
	Country   string `json:"country"`
}

// OrderLineItem 表示订单中的一个商品行
type OrderLineItem struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

// OrderMeta 表示订单的附加元数据键值对
type OrderMeta struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// CreateOrderRequest 表示下单请求，字段结构与远端订单服务的报文保持一致。
type CreateOrderRequest struct {
	PaymentMethod      string          `json:"payment_method"`
	PaymentMethodTitle string          `json:"payment_method_title"`
	Billing            OrderAddress    `json:"billing"`
	Shipping           OrderAddress    `json:"shipping"`
	LineItems          []OrderLineItem `json:"line_items"`
	CustomerNote       string          `json:"customer_note"`
	MetaData           []OrderMeta     `json:"meta_data"`
}

// Order 表示远端订单服务返回的历史订单摘要。
type Order struct {
	ID             int64  `json:"id"`
	IDFormatted    string `json:"id_formatted,omitempty"`
	Date           string `json:"date"`
	ItemsCount     int    `json:"items_count"`
	Total          string `json:"total"`
	TotalFormatted string `json:"total_formatted,omitempty"`
	Status         string `json:"status"`
	StatusText     string `json:"status_text,omitempty"`
	UserLogin      string `json:"user_login,omitempty"`
}

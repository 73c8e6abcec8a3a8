package models

import "time"

type Cart struct {
	ID             int        `json:"id"`
	UserID         *int       `json:"user_id,omitempty"`
	SessionID      *string    `json:"session_id,omitempty"`
	CouponCode     *string    `json:"coupon_code,omitempty"`
	Subtotal       float64    `json:"subtotal"`
	TaxAmount      float64    `json:"tax_amount"`
	ShippingCost   float64    `json:"shipping_cost"`
	DiscountAmount float64    `json:"discount_amount"`
	Total          float64    `json:"total"`
	Items          []CartItem `json:"items"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

type CartItem struct {
	ID            int               `json:"id"`
	CartID        int               `json:"cart_id"`
	ProductID     int               `json:"product_id"`
	VariantID     *int              `json:"variant_id,omitempty"`
	ProductName   string            `json:"product_name,omitempty"`
	Quantity      int               `json:"quantity"`
	UnitPrice     float64           `json:"unit_price"`
	CustomOptions map[string]string `json:"custom_options,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

func (i *CartItem) LineTotal() float64 {
	return i.UnitPrice * float64(i.Quantity)
}

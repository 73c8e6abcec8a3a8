package models

import "time"

type Category struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

type Product struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CategoryID  int       `json:"category_id"`
	Price       float64   `json:"price"`
	Stock       int       `json:"stock"`
	ImageURL    string    `json:"image_url,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ProductVariant struct {
	ID        int       `json:"id"`
	ProductID int       `json:"product_id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Stock     int       `json:"stock"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// EffectiveStock returns the variant stock when a variant is selected,
// otherwise the product stock.
func EffectiveStock(product *Product, variant *ProductVariant) int {
	if variant != nil {
		return variant.Stock
	}
	return product.Stock
}

// EffectivePrice mirrors EffectiveStock for the unit price snapshot.
func EffectivePrice(product *Product, variant *ProductVariant) float64 {
	if variant != nil {
		return variant.Price
	}
	return product.Price
}

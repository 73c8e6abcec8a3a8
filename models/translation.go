package models

import "time"

// CatalogTranslation is one translated field of a catalog entity
// (product, category, page), independent of the YAML UI-string files.
type CatalogTranslation struct {
	ID         int       `json:"id"`
	EntityType string    `json:"entity_type"`
	EntityID   int       `json:"entity_id"`
	Locale     string    `json:"locale"`
	Field      string    `json:"field"`
	Value      string    `json:"value"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type TranslationStats struct {
	Locale     string  `json:"locale"`
	Total      int     `json:"total"`
	Translated int     `json:"translated"`
	Missing    int     `json:"missing"`
	Percent    float64 `json:"percent"`
}

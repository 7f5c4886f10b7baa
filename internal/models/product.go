package models

import (
	"time"

	"github.com/gocql/gocql"
)

type Product struct {
	ID          gocql.UUID `json:"id" db:"product_id"`
	Name        string     `json:"name" db:"name"`
	Slug        string     `json:"slug" db:"slug"`
	Description string     `json:"description" db:"description"`
	Price       float64    `json:"price" db:"price"`
	Stock       int        `json:"stock" db:"stock"`
	SKU         string     `json:"sku" db:"sku"`
	Category    string     `json:"category" db:"category"`
	Material    string     `json:"material,omitempty" db:"material"`
	ImageURLs   []string   `json:"image_urls" db:"image_urls"`
	Tags        []string   `json:"tags" db:"tags"`
	IsActive    bool       `json:"is_active" db:"is_active"`
	IsFeatured  bool       `json:"is_featured" db:"is_featured"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// Categories de meubles reconnues par le catalogue
var ProductCategories = []string{
	"sofas", "beds", "tables", "chairs", "wardrobes", "shelves", "desks", "decor",
}

func IsValidCategory(c string) bool {
	for _, cat := range ProductCategories {
		if cat == c {
			return true
		}
	}
	return false
}

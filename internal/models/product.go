package models

import (
	"time"

	"github.com/gocql/gocql"
)

type Product struct {
	ID            gocql.UUID `json:"id" db:"product_id"`
	ShopID        gocql.UUID `json:"shop_id" db:"shop_id"`
	Name          string     `json:"name" db:"name"`
	Slug          string     `json:"slug" db:"slug"`
	Description   string     `json:"description" db:"description"`
	Price         float64    `json:"price" db:"price"`
	Stock         int        `json:"stock" db:"stock"`
	SKU           string     `json:"sku" db:"sku"`
	CategoryID    gocql.UUID `json:"category_id" db:"category_id"`
	BrandID       gocql.UUID `json:"brand_id" db:"brand_id"`
	ImageURLs     []string   `json:"image_urls" db:"image_urls"`
	Tags          []string   `json:"tags" db:"tags"`
	Colors        []string   `json:"colors" db:"colors"` // attributs de variantes dénormalisés pour le filtrage public
	Sizes         []string   `json:"sizes" db:"sizes"`
	IsActive      bool       `json:"is_active" db:"is_active"`
	HasVariants   bool       `json:"has_variants" db:"has_variants"`
	AverageRating float64    `json:"average_rating" db:"average_rating"`
	RatingCount   int        `json:"rating_count" db:"rating_count"`
	DeletedAt     *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

type ProductVariant struct {
	ID         gocql.UUID        `json:"id" db:"variant_id"`
	ProductID  gocql.UUID        `json:"product_id" db:"product_id"`
	ShopID     gocql.UUID        `json:"shop_id" db:"shop_id"`
	SKU        string            `json:"sku" db:"sku"`
	Price      float64           `json:"price" db:"price"`
	Stock      int               `json:"stock" db:"stock"`
	Attributes map[string]string `json:"attributes" db:"attributes"` // ex: {"color": "rouge", "size": "M"}
	IsActive   bool              `json:"is_active" db:"is_active"`
	CreatedAt  time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at" db:"updated_at"`
}

package models

import (
	"time"

	"github.com/gocql/gocql"
)

type OrderItem struct {
	ProductID   string  `json:"product_id"`
	VariantID   string  `json:"variant_id,omitempty"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
}

type Order struct {
	ID              gocql.UUID  `json:"id" db:"order_id"`
	UserID          string      `json:"user_id" db:"user_id"`
	ShopID          gocql.UUID  `json:"shop_id" db:"shop_id"`
	Items           []OrderItem `json:"items"` // stocké en JSON dans la colonne items
	TotalPrice      float64     `json:"total_price" db:"total_price"`
	Status          string      `json:"status" db:"status"` // pending | paid | shipped | delivered | cancelled | refunded
	PaymentIntentID string      `json:"payment_intent_id,omitempty" db:"payment_intent_id"`
	Address         string      `json:"address" db:"address"`
	CreatedAt       time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at" db:"updated_at"`
}

package models

import (
	"time"

	"github.com/gocql/gocql"
)

// Shop : la boutique d'un vendeur. Chaque produit appartient à une boutique.
type Shop struct {
	ID          gocql.UUID `json:"id" db:"shop_id"`
	OwnerID     string     `json:"owner_id" db:"owner_id"`
	Name        string     `json:"name" db:"name"`
	Slug        string     `json:"slug" db:"slug"`
	Description string     `json:"description" db:"description"`
	LogoURL     string     `json:"logo_url" db:"logo_url"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

package models

import (
	"time"

	"github.com/gocql/gocql"
)

type User struct {
	ID         string     `json:"id" db:"user_id"`
	Email      string     `json:"email" db:"email"`
	Password   string     `json:"-" db:"password"`
	Name       string     `json:"name" db:"name"`
	Role       string     `json:"role" db:"role"` // customer | seller
	Provider   string     `json:"provider" db:"provider"`
	ProviderID string     `json:"provider_id,omitempty" db:"provider_id"`
	ShopID     gocql.UUID `json:"shop_id,omitempty" db:"shop_id"` // zéro si l'utilisateur n'a pas de boutique
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
}

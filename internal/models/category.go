package models

import (
	"time"

	"github.com/gocql/gocql"
)

type Category struct {
	ID          gocql.UUID `json:"id" db:"category_id"`
	Name        string     `json:"name" db:"name"`
	Slug        string     `json:"slug" db:"slug"`
	Description string     `json:"description" db:"description"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

type Brand struct {
	ID        gocql.UUID `json:"id" db:"brand_id"`
	Name      string     `json:"name" db:"name"`
	Slug      string     `json:"slug" db:"slug"`
	LogoURL   string     `json:"logo_url" db:"logo_url"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

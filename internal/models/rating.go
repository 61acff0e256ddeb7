package models

import (
	"time"

	"github.com/gocql/gocql"
)

// Rating : une note par couple (produit, utilisateur). L'upsert Cassandra
// garantit qu'un utilisateur ne compte qu'une fois dans l'agrégat.
type Rating struct {
	ProductID gocql.UUID `json:"product_id" db:"product_id"`
	UserID    string     `json:"user_id" db:"user_id"`
	UserName  string     `json:"user_name" db:"user_name"`
	Rating    int        `json:"rating" db:"rating"`
	Comment   string     `json:"comment" db:"comment"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

package models

import (
	"time"

	"github.com/gocql/gocql"
)

type Notification struct {
	ID        gocql.UUID `json:"id" db:"notification_id"`
	UserID    string     `json:"user_id" db:"user_id"`
	Type      string     `json:"type" db:"type"` // order_status | new_order | new_rating
	Title     string     `json:"title" db:"title"`
	Body      string     `json:"body" db:"body"`
	IsRead    bool       `json:"is_read" db:"is_read"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

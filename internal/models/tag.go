package models

import (
	"time"
)

// Tag labels articles; titles are unique and shared across authors
type Tag struct {
	ID          string    `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description,omitempty" db:"description"`
	AuthorID    *string   `json:"author,omitempty" db:"author_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

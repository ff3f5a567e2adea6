package models

import (
	"time"
)

// Comment represents a comment on an article.
// A nil Parent marks a top-level comment; children form a tree of
// unbounded depth through the parent pointer.
type Comment struct {
	ID        string     `json:"id" db:"id"`
	ArticleID string     `json:"article" db:"article_id"`
	AuthorID  string     `json:"-" db:"author_id"`
	Author    *Profile   `json:"author,omitempty" db:"-"`
	Content   string     `json:"content" db:"content"`
	ParentID  *string    `json:"parent" db:"parent_id"`
	Status    Status     `json:"status" db:"status"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	Children  []*Comment `json:"children" db:"-"`
}

package models

import (
	"time"
)

// Status is the content lifecycle state shared by articles and comments
type Status int

const (
	StatusPosted    Status = 1
	StatusDeleted   Status = 2
	StatusRedaction Status = 3
)

// Valid reports whether the status is one of the known states
func (s Status) Valid() bool {
	return s == StatusPosted || s == StatusDeleted || s == StatusRedaction
}

// Article represents a wiki article.
// The slug is the public lookup key; the numeric-free id stays internal.
type Article struct {
	ID        string    `json:"id" db:"id"`
	Slug      string    `json:"slug" db:"slug"`
	Title     string    `json:"title" db:"title"`
	Body      string    `json:"body" db:"body"`
	AuthorID  string    `json:"-" db:"author_id"`
	Author    *Profile  `json:"author,omitempty" db:"-"`
	Tags      []string  `json:"tags" db:"-"`
	Visits    int       `json:"visits" db:"visits"`
	Status    Status    `json:"status" db:"status"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ArticleSnapshot is one entry of an article's append-only edit history
type ArticleSnapshot struct {
	ID        string    `json:"id" db:"id"`
	ArticleID string    `json:"-" db:"article_id"`
	Title     string    `json:"title" db:"title"`
	Body      string    `json:"body" db:"body"`
	AuthorID  string    `json:"author" db:"author_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ArticleRating records one user's star vote for an article
type ArticleRating struct {
	UserID    string    `json:"user_id" db:"user_id"`
	ArticleID string    `json:"article_id" db:"article_id"`
	Star      int       `json:"star" db:"star"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// RatingSummary is the aggregate over all votes for an article
type RatingSummary struct {
	Rating    float64 `json:"rating"`
	RateVotes int     `json:"rate_votes"`
}

// MaxStar bounds the rating scale; votes are accepted in [0, MaxStar]
const MaxStar = 5

// MinBodyLength is the minimum article body length accepted on create/update
const MinBodyLength = 10

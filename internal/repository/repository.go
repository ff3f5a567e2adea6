package repository

import (
	"context"

	"github.com/devwiki-api/internal/database"
	"github.com/devwiki-api/internal/models"
)

// ArticleListOptions narrows and orders article listings
type ArticleListOptions struct {
	Status   models.Status
	Search   string // case-insensitive title substring
	TagTitle string
	AuthorID string
	Sort     string // "new" (default) or "popular"
	Page     int
	PageSize int
}

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, page, pageSize int) ([]*models.User, int, error)
	Count(ctx context.Context) (int, error)
}

// TagRepository defines the interface for tag data operations
type TagRepository interface {
	Create(ctx context.Context, tag *models.Tag) error
	// GetOrCreate resolves a tag by title, creating it when absent.
	// Concurrent callers racing on the same new title all receive the
	// single winning row.
	GetOrCreate(ctx context.Context, title, authorID string) (*models.Tag, error)
	GetByID(ctx context.Context, id string) (*models.Tag, error)
	List(ctx context.Context) ([]*models.Tag, error)
	ListWithoutArticles(ctx context.Context) ([]*models.Tag, error)
	ListWithArticles(ctx context.Context) ([]*models.Tag, error)
	Update(ctx context.Context, tag *models.Tag) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// ArticleRepository defines the interface for article data operations.
// Create and Update append a history snapshot in the same transaction
// as the row mutation.
type ArticleRepository interface {
	Create(ctx context.Context, article *models.Article) error
	GetBySlug(ctx context.Context, slug string) (*models.Article, error)
	List(ctx context.Context, opts ArticleListOptions) ([]*models.Article, int, error)
	Update(ctx context.Context, article *models.Article) error
	SetStatus(ctx context.Context, id string, status models.Status) error
	// IncrementVisits bumps the visit counter atomically at the store
	// level and returns the new value.
	IncrementVisits(ctx context.Context, id string) (int, error)
	ReplaceTags(ctx context.Context, articleID string, tagIDs []string) error
	History(ctx context.Context, articleID string) ([]*models.ArticleSnapshot, error)
	Count(ctx context.Context) (int, error)
}

// RatingRepository defines the interface for article rating operations
type RatingRepository interface {
	// Upsert records a vote, replacing any prior vote by the same user
	// on the same article.
	Upsert(ctx context.Context, rating *models.ArticleRating) error
	Summary(ctx context.Context, articleID string) (*models.RatingSummary, error)
}

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id string) (*models.Comment, error)
	// ListByArticle returns the flat comment set for an article in
	// creation order, all statuses included; the tree is assembled in
	// memory by the service.
	ListByArticle(ctx context.Context, articleID string) ([]*models.Comment, error)
	ListDeleted(ctx context.Context, authorID string, page, pageSize int) ([]*models.Comment, int, error)
	Update(ctx context.Context, comment *models.Comment) error
	SetStatus(ctx context.Context, id string, status models.Status) error
	Count(ctx context.Context) (int, error)
}

// Repositories holds all repository interfaces
type Repositories struct {
	User    UserRepository
	Tag     TagRepository
	Article ArticleRepository
	Rating  RatingRepository
	Comment CommentRepository
}

// New creates all repositories with the given database connection
func New(db *database.DB) *Repositories {
	return &Repositories{
		User:    NewUserRepo(db),
		Tag:     NewTagRepo(db),
		Article: NewArticleRepo(db),
		Rating:  NewRatingRepo(db),
		Comment: NewCommentRepo(db),
	}
}

package service

import (
	"context"

	"github.com/devwiki-api/internal/auth"
	"github.com/devwiki-api/internal/config"
	"github.com/devwiki-api/internal/models"
	"github.com/devwiki-api/internal/repository"
	"github.com/rs/zerolog"
)

// ArticleListQuery carries the listing query parameters
type ArticleListQuery struct {
	Search   string
	TagTitle string
	AuthorID string
	Sort     string
	Page     int
	PageSize int
}

// ArticleService defines article lifecycle operations
type ArticleService interface {
	Create(ctx context.Context, identity *models.User, req *models.ArticleCreateRequest) (*models.ArticleDetail, error)
	List(ctx context.Context, q ArticleListQuery) (*models.Page, error)
	// Get retrieves by slug and atomically increments the visit counter.
	Get(ctx context.Context, identity *models.User, slug string) (*models.ArticleDetail, error)
	Update(ctx context.Context, identity *models.User, slug string, req *models.ArticleUpdateRequest) (*models.ArticleDetail, error)
	// Delete soft-deletes and returns the path of the deleted view.
	Delete(ctx context.Context, identity *models.User, slug string) (string, error)
	ListDeleted(ctx context.Context, identity *models.User, page, pageSize int) (*models.Page, error)
	GetDeleted(ctx context.Context, identity *models.User, slug string) (*models.ArticleDetail, error)
	// PatchDeleted edits a soft-deleted article without restoring it.
	PatchDeleted(ctx context.Context, identity *models.User, slug string, req *models.ArticleUpdateRequest) (*models.ArticleDetail, error)
	Vote(ctx context.Context, identity *models.User, slug string, star int) (*models.ArticleDetail, error)
}

// CommentService defines threaded comment operations
type CommentService interface {
	Create(ctx context.Context, identity *models.User, req *models.CommentCreateRequest) (*models.Comment, error)
	// ListTree returns posted top-level comments for an article with
	// children recursively embedded.
	ListTree(ctx context.Context, articleID string) ([]*models.Comment, error)
	Get(ctx context.Context, id string) (*models.Comment, error)
	Update(ctx context.Context, identity *models.User, id string, req *models.CommentUpdateRequest) (*models.Comment, error)
	Delete(ctx context.Context, identity *models.User, id string) error
	ListDeleted(ctx context.Context, identity *models.User, page, pageSize int) (*models.Page, error)
	GetDeleted(ctx context.Context, identity *models.User, id string) (*models.Comment, error)
	PatchDeleted(ctx context.Context, identity *models.User, id string, req *models.CommentUpdateRequest) (*models.Comment, error)
}

// TagService defines tag CRUD operations
type TagService interface {
	Create(ctx context.Context, identity *models.User, req *models.TagCreateRequest) (*models.Tag, error)
	List(ctx context.Context) ([]*models.Tag, error)
	ListWithoutArticles(ctx context.Context) ([]*models.Tag, error)
	ListWithArticles(ctx context.Context) ([]*models.Tag, error)
	Get(ctx context.Context, id string) (*models.Tag, error)
	Update(ctx context.Context, identity *models.User, id string, req *models.TagUpdateRequest) (*models.Tag, error)
	Delete(ctx context.Context, identity *models.User, id string) error
}

// AccountService defines registration, login, profile and admin operations
type AccountService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error)
	SocialAuth(ctx context.Context, req *models.SocialAuthRequest) (*models.AuthResponse, error)
	// Authenticate resolves a bearer token to a live user record.
	Authenticate(ctx context.Context, token string) (*models.User, error)
	UpdateProfile(ctx context.Context, identity *models.User, req *models.ProfileUpdateRequest) (*models.User, error)

	ListAccounts(ctx context.Context, identity *models.User, page, pageSize int) (*models.Page, error)
	CreateAccount(ctx context.Context, identity *models.User, req *models.AdminAccountRequest) (*models.User, error)
	GetAccount(ctx context.Context, identity *models.User, id string) (*models.User, error)
	UpdateAccount(ctx context.Context, identity *models.User, id string, req *models.AdminAccountRequest) (*models.User, error)
	DeleteAccount(ctx context.Context, identity *models.User, id string) error
}

// StatsService exposes entity counts for the metrics endpoint
type StatsService interface {
	Counts(ctx context.Context) (map[string]int, error)
}

// Services holds all service interfaces
type Services struct {
	Article ArticleService
	Comment CommentService
	Tag     TagService
	Account AccountService
	Stats   StatsService
}

// NewServices creates all services
func NewServices(repos *repository.Repositories, cfg *config.Config, log zerolog.Logger) (*Services, error) {
	tokens, err := auth.NewTokenService(cfg.Auth.TokenKeyHex, cfg.Auth.TokenTTL)
	if err != nil {
		return nil, err
	}
	github := auth.NewGithubClient(cfg.Auth.GithubAPIURL)

	return &Services{
		Article: newArticleService(repos, log),
		Comment: newCommentService(repos, log),
		Tag:     newTagService(repos, log),
		Account: newAccountService(repos, tokens, github, log),
		Stats:   newStatsService(repos),
	}, nil
}

package service

import (
	"context"

	"github.com/devwiki-api/internal/apperr"
	"github.com/devwiki-api/internal/models"
	"github.com/devwiki-api/internal/permissions"
	"github.com/devwiki-api/internal/repository"
	"github.com/devwiki-api/internal/validation"
	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

// listBodyLimit truncates bodies in list payloads
const listBodyLimit = 255

// slugAlphabet keeps slugs lowercase and URL-safe
const (
	slugAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	slugLength   = 8
)

// articleService is the concrete implementation of ArticleService
type articleService struct {
	articles repository.ArticleRepository
	tags     repository.TagRepository
	ratings  repository.RatingRepository
	log      zerolog.Logger
}

func newArticleService(repos *repository.Repositories, log zerolog.Logger) ArticleService {
	return &articleService{
		articles: repos.Article,
		tags:     repos.Tag,
		ratings:  repos.Rating,
		log:      log.With().Str("service", "article").Logger(),
	}
}

// Create validates and stores a new article; the author always comes
// from the authenticated identity, never from the payload
func (s *articleService) Create(ctx context.Context, identity *models.User, req *models.ArticleCreateRequest) (*models.ArticleDetail, error) {
	if err := permissions.Articles.Check(permissions.ActionCreate, identity, ""); err != nil {
		return nil, err
	}

	var fields []apperr.FieldError
	if fe := validation.ArticleTitle(req.Title); fe != nil {
		fields = append(fields, *fe)
	}
	if fe := validation.ArticleBody(req.Body); fe != nil {
		fields = append(fields, *fe)
	}
	for _, title := range req.UpdateTags {
		if fe := validation.TagTitle(title); fe != nil {
			fields = append(fields, *fe)
		}
	}
	if len(fields) > 0 {
		return nil, apperr.Validation(fields...)
	}

	slug, err := gonanoid.Generate(slugAlphabet, slugLength)
	if err != nil {
		return nil, apperr.Internalf(err, "failed to generate slug")
	}

	article := &models.Article{
		ID:       uuid.NewString(),
		Slug:     slug,
		Title:    req.Title,
		Body:     req.Body,
		AuthorID: identity.ID,
		Status:   models.StatusPosted,
	}

	if err := s.articles.Create(ctx, article); err != nil {
		if e, ok := apperr.As(err); ok && e.Kind == apperr.KindConflict {
			return nil, apperr.Validation(apperr.FieldError{
				Field: "title", Message: "article with this title already exists", Value: req.Title,
			})
		}
		return nil, err
	}

	if err := s.replaceTags(ctx, article, identity.ID, req.UpdateTags); err != nil {
		return nil, err
	}

	s.log.Info().Str("slug", article.Slug).Str("author", identity.ID).Msg("Article created")

	return s.detail(ctx, article, identity)
}

// replaceTags upserts the named tags and swaps the article's tag set
func (s *articleService) replaceTags(ctx context.Context, article *models.Article, authorID string, titles []string) error {
	tagIDs := make([]string, 0, len(titles))
	names := make([]string, 0, len(titles))
	for _, title := range titles {
		tag, err := s.tags.GetOrCreate(ctx, title, authorID)
		if err != nil {
			return err
		}
		tagIDs = append(tagIDs, tag.ID)
		names = append(names, tag.Title)
	}
	if err := s.articles.ReplaceTags(ctx, article.ID, tagIDs); err != nil {
		return err
	}
	article.Tags = names
	return nil
}

// detail decorates an article with rating aggregates and, for the
// author, the previous history snapshot
func (s *articleService) detail(ctx context.Context, article *models.Article, identity *models.User) (*models.ArticleDetail, error) {
	summary, err := s.ratings.Summary(ctx, article.ID)
	if err != nil {
		return nil, err
	}

	detail := &models.ArticleDetail{
		Article:   article,
		Rating:    summary.Rating,
		RateVotes: summary.RateVotes,
	}

	prev, err := s.previousVersion(ctx, article, identity)
	if err != nil {
		return nil, err
	}
	detail.PreviousVersion = prev

	return detail, nil
}

// previousVersion returns the second-newest snapshot for the author
// only. The newest snapshot mirrors the current state already present
// in the main payload, so index 1 is "what it looked like before the
// last edit". Non-authors and short histories get null, not an error.
func (s *articleService) previousVersion(ctx context.Context, article *models.Article, identity *models.User) (*models.ArticleSnapshot, error) {
	if identity == nil || identity.ID != article.AuthorID {
		return nil, nil
	}
	history, err := s.articles.History(ctx, article.ID)
	if err != nil {
		return nil, err
	}
	if len(history) < 2 {
		return nil, nil
	}
	return history[1], nil
}

// List returns posted articles with truncated bodies
func (s *articleService) List(ctx context.Context, q ArticleListQuery) (*models.Page, error) {
	articles, total, err := s.articles.List(ctx, repository.ArticleListOptions{
		Status:   models.StatusPosted,
		Search:   q.Search,
		TagTitle: q.TagTitle,
		AuthorID: q.AuthorID,
		Sort:     q.Sort,
		Page:     q.Page,
		PageSize: q.PageSize,
	})
	if err != nil {
		return nil, err
	}

	for _, a := range articles {
		if len(a.Body) > listBodyLimit {
			a.Body = a.Body[:listBodyLimit]
		}
	}
	if articles == nil {
		articles = []*models.Article{}
	}

	return &models.Page{Count: total, Results: articles}, nil
}

// Get retrieves a posted article and counts the visit
func (s *articleService) Get(ctx context.Context, identity *models.User, slug string) (*models.ArticleDetail, error) {
	article, err := s.articles.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if article == nil || article.Status != models.StatusPosted {
		return nil, apperr.NotFound("article")
	}

	visits, err := s.articles.IncrementVisits(ctx, article.ID)
	if err != nil {
		return nil, err
	}
	article.Visits = visits

	return s.detail(ctx, article, identity)
}

// Update edits a posted article; nil request fields stay untouched
func (s *articleService) Update(ctx context.Context, identity *models.User, slug string, req *models.ArticleUpdateRequest) (*models.ArticleDetail, error) {
	article, err := s.articles.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if article == nil || article.Status != models.StatusPosted {
		return nil, apperr.NotFound("article")
	}

	if err := permissions.Articles.Check(permissions.ActionUpdate, identity, article.AuthorID); err != nil {
		return nil, err
	}

	return s.applyUpdate(ctx, article, identity, req)
}

// applyUpdate mutates the editable fields, appends history and swaps tags
func (s *articleService) applyUpdate(ctx context.Context, article *models.Article, identity *models.User, req *models.ArticleUpdateRequest) (*models.ArticleDetail, error) {
	var fields []apperr.FieldError
	if req.Title != nil {
		if fe := validation.ArticleTitle(*req.Title); fe != nil {
			fields = append(fields, *fe)
		} else {
			article.Title = *req.Title
		}
	}
	if req.Body != nil {
		if fe := validation.ArticleBody(*req.Body); fe != nil {
			fields = append(fields, *fe)
		} else {
			article.Body = *req.Body
		}
	}
	if req.UpdateTags != nil {
		for _, title := range *req.UpdateTags {
			if fe := validation.TagTitle(title); fe != nil {
				fields = append(fields, *fe)
			}
		}
	}
	if len(fields) > 0 {
		return nil, apperr.Validation(fields...)
	}

	if err := s.articles.Update(ctx, article); err != nil {
		return nil, err
	}

	if req.UpdateTags != nil {
		if err := s.replaceTags(ctx, article, identity.ID, *req.UpdateTags); err != nil {
			return nil, err
		}
	}

	s.log.Info().Str("slug", article.Slug).Str("editor", identity.ID).Msg("Article updated")

	return s.detail(ctx, article, identity)
}

// Delete soft-deletes the article and returns the deleted-view path
func (s *articleService) Delete(ctx context.Context, identity *models.User, slug string) (string, error) {
	article, err := s.articles.GetBySlug(ctx, slug)
	if err != nil {
		return "", err
	}
	if article == nil || article.Status != models.StatusPosted {
		return "", apperr.NotFound("article")
	}

	if err := permissions.Articles.Check(permissions.ActionDestroy, identity, article.AuthorID); err != nil {
		return "", err
	}

	if err := s.articles.SetStatus(ctx, article.ID, models.StatusDeleted); err != nil {
		return "", err
	}

	s.log.Info().Str("slug", slug).Str("actor", identity.ID).Msg("Article soft-deleted")

	return "/v1/articles/deleted/" + article.Slug, nil
}

// ListDeleted pages soft-deleted articles: everything for moderators,
// the caller's own otherwise
func (s *articleService) ListDeleted(ctx context.Context, identity *models.User, page, pageSize int) (*models.Page, error) {
	if err := permissions.Articles.Check(permissions.ActionListDeleted, identity, ""); err != nil {
		return nil, err
	}

	opts := repository.ArticleListOptions{
		Status:   models.StatusDeleted,
		Page:     page,
		PageSize: pageSize,
	}
	if !identity.CanModerate() {
		opts.AuthorID = identity.ID
	}

	articles, total, err := s.articles.List(ctx, opts)
	if err != nil {
		return nil, err
	}
	if articles == nil {
		articles = []*models.Article{}
	}
	return &models.Page{Count: total, Results: articles}, nil
}

// GetDeleted retrieves a soft-deleted article for its author or a moderator
func (s *articleService) GetDeleted(ctx context.Context, identity *models.User, slug string) (*models.ArticleDetail, error) {
	article, err := s.deletedBySlug(ctx, identity, slug)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, article, identity)
}

// PatchDeleted edits a soft-deleted article; status stays Deleted
func (s *articleService) PatchDeleted(ctx context.Context, identity *models.User, slug string, req *models.ArticleUpdateRequest) (*models.ArticleDetail, error) {
	article, err := s.deletedBySlug(ctx, identity, slug)
	if err != nil {
		return nil, err
	}
	return s.applyUpdate(ctx, article, identity, req)
}

func (s *articleService) deletedBySlug(ctx context.Context, identity *models.User, slug string) (*models.Article, error) {
	article, err := s.articles.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if article == nil || article.Status != models.StatusDeleted {
		return nil, apperr.NotFound("article")
	}
	if err := permissions.Articles.Check(permissions.ActionPatchDeleted, identity, article.AuthorID); err != nil {
		return nil, err
	}
	return article, nil
}

// Vote upserts the caller's star vote; aggregates are recomputed on read
func (s *articleService) Vote(ctx context.Context, identity *models.User, slug string, star int) (*models.ArticleDetail, error) {
	if err := permissions.Articles.Check(permissions.ActionVote, identity, ""); err != nil {
		return nil, err
	}
	if fe := validation.Star(star); fe != nil {
		return nil, apperr.Validation(*fe)
	}

	article, err := s.articles.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if article == nil || article.Status != models.StatusPosted {
		return nil, apperr.NotFound("article")
	}

	rating := &models.ArticleRating{
		UserID:    identity.ID,
		ArticleID: article.ID,
		Star:      star,
	}
	if err := s.ratings.Upsert(ctx, rating); err != nil {
		return nil, err
	}

	return s.detail(ctx, article, identity)
}

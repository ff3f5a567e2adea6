package service

import (
	"context"

	"github.com/devwiki-api/internal/apperr"
	"github.com/devwiki-api/internal/models"
	"github.com/devwiki-api/internal/permissions"
	"github.com/devwiki-api/internal/repository"
	"github.com/devwiki-api/internal/validation"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// tagService is the concrete implementation of TagService
type tagService struct {
	tags repository.TagRepository
	log  zerolog.Logger
}

func newTagService(repos *repository.Repositories, log zerolog.Logger) TagService {
	return &tagService{
		tags: repos.Tag,
		log:  log.With().Str("service", "tag").Logger(),
	}
}

// Create stores a new tag owned by the caller
func (s *tagService) Create(ctx context.Context, identity *models.User, req *models.TagCreateRequest) (*models.Tag, error) {
	if err := permissions.Tags.Check(permissions.ActionCreate, identity, ""); err != nil {
		return nil, err
	}
	if fe := validation.TagTitle(req.Title); fe != nil {
		return nil, apperr.Validation(*fe)
	}

	authorID := identity.ID
	tag := &models.Tag{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		AuthorID:    &authorID,
	}
	if err := s.tags.Create(ctx, tag); err != nil {
		if e, ok := apperr.As(err); ok && e.Kind == apperr.KindConflict {
			return nil, apperr.Validation(apperr.FieldError{
				Field: "title", Message: "tag with this title already exists", Value: req.Title,
			})
		}
		return nil, err
	}
	return tag, nil
}

// List returns all tags
func (s *tagService) List(ctx context.Context) ([]*models.Tag, error) {
	return s.notNil(s.tags.List(ctx))
}

// ListWithoutArticles returns unused tags
func (s *tagService) ListWithoutArticles(ctx context.Context) ([]*models.Tag, error) {
	return s.notNil(s.tags.ListWithoutArticles(ctx))
}

// ListWithArticles returns tags in use
func (s *tagService) ListWithArticles(ctx context.Context) ([]*models.Tag, error) {
	return s.notNil(s.tags.ListWithArticles(ctx))
}

func (s *tagService) notNil(tags []*models.Tag, err error) ([]*models.Tag, error) {
	if err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []*models.Tag{}
	}
	return tags, nil
}

// Get retrieves a tag by id
func (s *tagService) Get(ctx context.Context, id string) (*models.Tag, error) {
	tag, err := s.tags.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tag == nil {
		return nil, apperr.NotFound("tag")
	}
	return tag, nil
}

// Update edits a tag; only the owner or an admin may do so
func (s *tagService) Update(ctx context.Context, identity *models.User, id string, req *models.TagUpdateRequest) (*models.Tag, error) {
	tag, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	ownerID := ""
	if tag.AuthorID != nil {
		ownerID = *tag.AuthorID
	}
	if err := permissions.Tags.Check(permissions.ActionPartialUpdate, identity, ownerID); err != nil {
		return nil, err
	}

	if req.Title != nil {
		if fe := validation.TagTitle(*req.Title); fe != nil {
			return nil, apperr.Validation(*fe)
		}
		tag.Title = *req.Title
	}
	if req.Description != nil {
		tag.Description = *req.Description
	}

	if err := s.tags.Update(ctx, tag); err != nil {
		if e, ok := apperr.As(err); ok && e.Kind == apperr.KindConflict {
			return nil, apperr.Validation(apperr.FieldError{
				Field: "title", Message: "tag with this title already exists", Value: tag.Title,
			})
		}
		return nil, err
	}
	return tag, nil
}

// Delete removes a tag entirely; articles lose the label but are
// otherwise untouched
func (s *tagService) Delete(ctx context.Context, identity *models.User, id string) error {
	tag, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	ownerID := ""
	if tag.AuthorID != nil {
		ownerID = *tag.AuthorID
	}
	if err := permissions.Tags.Check(permissions.ActionDestroy, identity, ownerID); err != nil {
		return err
	}

	return s.tags.Delete(ctx, id)
}

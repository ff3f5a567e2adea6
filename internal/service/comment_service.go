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

// commentService is the concrete implementation of CommentService
type commentService struct {
	comments repository.CommentRepository
	log      zerolog.Logger
}

func newCommentService(repos *repository.Repositories, log zerolog.Logger) CommentService {
	return &commentService{
		comments: repos.Comment,
		log:      log.With().Str("service", "comment").Logger(),
	}
}

// Create posts a comment; the author comes from the identity and the
// parent, when given, must be an existing comment on the same article
func (s *commentService) Create(ctx context.Context, identity *models.User, req *models.CommentCreateRequest) (*models.Comment, error) {
	if err := permissions.Comments.Check(permissions.ActionCreate, identity, ""); err != nil {
		return nil, err
	}
	if fe := validation.CommentContent(req.Content); fe != nil {
		return nil, apperr.Validation(*fe)
	}

	if req.Parent != nil {
		parent, err := s.comments.GetByID(ctx, *req.Parent)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, apperr.Validation(apperr.FieldError{
				Field: "parent", Message: "parent comment does not exist", Value: *req.Parent,
			})
		}
		if parent.ArticleID != req.Article {
			return nil, apperr.Validation(apperr.FieldError{
				Field: "parent", Message: "parent comment belongs to a different article", Value: *req.Parent,
			})
		}
	}

	comment := &models.Comment{
		ID:        uuid.NewString(),
		ArticleID: req.Article,
		AuthorID:  identity.ID,
		Content:   req.Content,
		ParentID:  req.Parent,
		Status:    models.StatusPosted,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	comment.Author = identity.Profile()
	comment.Children = []*models.Comment{}

	s.log.Info().Str("comment", comment.ID).Str("article", req.Article).Msg("Comment created")

	return comment, nil
}

// ListTree returns the article's posted top-level comments with
// children embedded to unbounded depth. The tree is assembled from one
// flat query, grouped by parent id in memory.
func (s *commentService) ListTree(ctx context.Context, articleID string) ([]*models.Comment, error) {
	flat, err := s.comments.ListByArticle(ctx, articleID)
	if err != nil {
		return nil, err
	}
	return BuildCommentTree(flat), nil
}

// BuildCommentTree links a flat comment list into a forest of
// top-level comments. Top level excludes soft-deleted comments;
// descendants keep their place regardless of status so replies under
// a deleted parent stay reachable. A leaf serializes children as an
// empty list, never null.
func BuildCommentTree(flat []*models.Comment) []*models.Comment {
	byParent := make(map[string][]*models.Comment)
	for _, c := range flat {
		c.Children = []*models.Comment{}
		if c.ParentID != nil {
			byParent[*c.ParentID] = append(byParent[*c.ParentID], c)
		}
	}

	for _, c := range flat {
		if kids, ok := byParent[c.ID]; ok {
			c.Children = kids
		}
	}

	top := []*models.Comment{}
	for _, c := range flat {
		if c.ParentID == nil && c.Status == models.StatusPosted {
			top = append(top, c)
		}
	}
	return top
}

// Get retrieves a single comment
func (s *commentService) Get(ctx context.Context, id string) (*models.Comment, error) {
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if comment == nil {
		return nil, apperr.NotFound("comment")
	}
	if comment.Children == nil {
		comment.Children = []*models.Comment{}
	}
	return comment, nil
}

// Update edits a posted comment's content
func (s *commentService) Update(ctx context.Context, identity *models.User, id string, req *models.CommentUpdateRequest) (*models.Comment, error) {
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if comment == nil || comment.Status != models.StatusPosted {
		return nil, apperr.NotFound("comment")
	}
	if err := permissions.Comments.Check(permissions.ActionPartialUpdate, identity, comment.AuthorID); err != nil {
		return nil, err
	}
	if fe := validation.CommentContent(req.Content); fe != nil {
		return nil, apperr.Validation(*fe)
	}

	comment.Content = req.Content
	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, err
	}
	if comment.Children == nil {
		comment.Children = []*models.Comment{}
	}
	return comment, nil
}

// Delete soft-deletes a comment; children stay attached to the
// deleted parent rather than cascading
func (s *commentService) Delete(ctx context.Context, identity *models.User, id string) error {
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if comment == nil || comment.Status != models.StatusPosted {
		return apperr.NotFound("comment")
	}
	if err := permissions.Comments.Check(permissions.ActionDestroy, identity, comment.AuthorID); err != nil {
		return err
	}

	if err := s.comments.SetStatus(ctx, comment.ID, models.StatusDeleted); err != nil {
		return err
	}

	s.log.Info().Str("comment", id).Str("actor", identity.ID).Msg("Comment soft-deleted")
	return nil
}

// ListDeleted pages soft-deleted comments: everything for moderators,
// the caller's own otherwise
func (s *commentService) ListDeleted(ctx context.Context, identity *models.User, page, pageSize int) (*models.Page, error) {
	if err := permissions.Comments.Check(permissions.ActionListDeleted, identity, ""); err != nil {
		return nil, err
	}

	authorID := ""
	if !identity.CanModerate() {
		authorID = identity.ID
	}

	comments, total, err := s.comments.ListDeleted(ctx, authorID, page, pageSize)
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []*models.Comment{}
	}
	for _, c := range comments {
		if c.Children == nil {
			c.Children = []*models.Comment{}
		}
	}
	return &models.Page{Count: total, Results: comments}, nil
}

// GetDeleted retrieves a soft-deleted comment for its author or an admin
func (s *commentService) GetDeleted(ctx context.Context, identity *models.User, id string) (*models.Comment, error) {
	return s.deletedByID(ctx, identity, id)
}

// PatchDeleted edits a soft-deleted comment without restoring it
func (s *commentService) PatchDeleted(ctx context.Context, identity *models.User, id string, req *models.CommentUpdateRequest) (*models.Comment, error) {
	comment, err := s.deletedByID(ctx, identity, id)
	if err != nil {
		return nil, err
	}
	if fe := validation.CommentContent(req.Content); fe != nil {
		return nil, apperr.Validation(*fe)
	}

	comment.Content = req.Content
	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *commentService) deletedByID(ctx context.Context, identity *models.User, id string) (*models.Comment, error) {
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if comment == nil || comment.Status != models.StatusDeleted {
		return nil, apperr.NotFound("comment")
	}
	if err := permissions.Comments.Check(permissions.ActionPatchDeleted, identity, comment.AuthorID); err != nil {
		return nil, err
	}
	if comment.Children == nil {
		comment.Children = []*models.Comment{}
	}
	return comment, nil
}

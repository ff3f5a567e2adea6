package api

import (
	"net/http"

	"github.com/devwiki-api/internal/config"
	"github.com/devwiki-api/internal/models"
	"github.com/devwiki-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// CommentHandler handles comment endpoints
type CommentHandler struct {
	services *service.Services
	cfg      *config.Config
	log      zerolog.Logger
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) *CommentHandler {
	return &CommentHandler{
		services: services,
		cfg:      cfg,
		log:      handlerLogger(log, "comment"),
	}
}

// List handles GET /v1/comments?article=<id>
// Returns the posted top-level comments with children embedded
func (h *CommentHandler) List(c *gin.Context) {
	articleID := c.Query("article")
	if articleID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "article parameter is required"})
		return
	}

	tree, err := h.services.Comment.ListTree(c.Request.Context(), articleID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tree)
}

// Create handles POST /v1/comments
func (h *CommentHandler) Create(c *gin.Context) {
	var req models.CommentCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	comment, err := h.services.Comment.Create(c.Request.Context(), identityFrom(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.log.Info().Str("comment_id", comment.ID).Str("article_id", comment.ArticleID).Msg("Comment created")
	c.JSON(http.StatusCreated, comment)
}

// Get handles GET /v1/comments/:id
func (h *CommentHandler) Get(c *gin.Context) {
	comment, err := h.services.Comment.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, comment)
}

// Update handles PATCH /v1/comments/:id
func (h *CommentHandler) Update(c *gin.Context) {
	var req models.CommentUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	comment, err := h.services.Comment.Update(c.Request.Context(), identityFrom(c), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, comment)
}

// Delete handles DELETE /v1/comments/:id
// Soft-deletes the comment; replies stay attached
func (h *CommentHandler) Delete(c *gin.Context) {
	if err := h.services.Comment.Delete(c.Request.Context(), identityFrom(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted"})
}

// ListDeleted handles GET /v1/comments/deleted
func (h *CommentHandler) ListDeleted(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	page, pageSize := pageParams(c, &h.cfg.Page)
	result, err := h.services.Comment.ListDeleted(c.Request.Context(), identity, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetDeleted handles GET /v1/comments/deleted/:id
func (h *CommentHandler) GetDeleted(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	comment, err := h.services.Comment.GetDeleted(c.Request.Context(), identity, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, comment)
}

// PatchDeleted handles PATCH /v1/comments/deleted/:id
func (h *CommentHandler) PatchDeleted(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	var req models.CommentUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	comment, err := h.services.Comment.PatchDeleted(c.Request.Context(), identity, c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, comment)
}

package api

import (
	"net/http"

	"github.com/devwiki-api/internal/config"
	"github.com/devwiki-api/internal/models"
	"github.com/devwiki-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// ArticleHandler handles article endpoints
type ArticleHandler struct {
	services *service.Services
	cfg      *config.Config
	log      zerolog.Logger
}

// NewArticleHandler creates a new ArticleHandler
func NewArticleHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) *ArticleHandler {
	return &ArticleHandler{
		services: services,
		cfg:      cfg,
		log:      handlerLogger(log, "article"),
	}
}

// List handles GET /v1/articles
// Supports ?search=, ?tag=, ?author=, ?sort=popular and pagination
func (h *ArticleHandler) List(c *gin.Context) {
	page, pageSize := pageParams(c, &h.cfg.Page)

	result, err := h.services.Article.List(c.Request.Context(), service.ArticleListQuery{
		Search:   c.Query("search"),
		TagTitle: c.Query("tag"),
		AuthorID: c.Query("author"),
		Sort:     c.Query("sort"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Create handles POST /v1/articles
func (h *ArticleHandler) Create(c *gin.Context) {
	var req models.ArticleCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	detail, err := h.services.Article.Create(c.Request.Context(), identityFrom(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.log.Info().Str("slug", detail.Slug).Msg("Article created")
	c.JSON(http.StatusCreated, detail)
}

// Get handles GET /v1/articles/:slug
func (h *ArticleHandler) Get(c *gin.Context) {
	detail, err := h.services.Article.Get(c.Request.Context(), identityFrom(c), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// Update handles PUT/PATCH /v1/articles/:slug
func (h *ArticleHandler) Update(c *gin.Context) {
	var req models.ArticleUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	detail, err := h.services.Article.Update(c.Request.Context(), identityFrom(c), c.Param("slug"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// Delete handles DELETE /v1/articles/:slug
// Soft-deletes the article and points at the deleted view
func (h *ArticleHandler) Delete(c *gin.Context) {
	deletedPath, err := h.services.Article.Delete(c.Request.Context(), identityFrom(c), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}

	h.log.Info().Str("slug", c.Param("slug")).Msg("Article deleted")
	c.JSON(http.StatusOK, gin.H{
		"message": "Article deleted",
		"deleted": deletedPath,
	})
}

// ListDeleted handles GET /v1/articles/deleted
func (h *ArticleHandler) ListDeleted(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	page, pageSize := pageParams(c, &h.cfg.Page)
	result, err := h.services.Article.ListDeleted(c.Request.Context(), identity, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetDeleted handles GET /v1/articles/deleted/:slug
func (h *ArticleHandler) GetDeleted(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	detail, err := h.services.Article.GetDeleted(c.Request.Context(), identity, c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// PatchDeleted handles PATCH /v1/articles/deleted/:slug
// Edits a soft-deleted article without restoring it
func (h *ArticleHandler) PatchDeleted(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	var req models.ArticleUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	detail, err := h.services.Article.PatchDeleted(c.Request.Context(), identity, c.Param("slug"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// Vote handles POST /v1/articles/:slug/vote
func (h *ArticleHandler) Vote(c *gin.Context) {
	var req models.VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Rating == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rating is required"})
		return
	}

	detail, err := h.services.Article.Vote(c.Request.Context(), identityFrom(c), c.Param("slug"), *req.Rating)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

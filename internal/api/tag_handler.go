package api

import (
	"net/http"

	"github.com/devwiki-api/internal/models"
	"github.com/devwiki-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// TagHandler handles tag endpoints
type TagHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewTagHandler creates a new TagHandler
func NewTagHandler(services *service.Services, log zerolog.Logger) *TagHandler {
	return &TagHandler{
		services: services,
		log:      handlerLogger(log, "tag"),
	}
}

// List handles GET /v1/tags
func (h *TagHandler) List(c *gin.Context) {
	tags, err := h.services.Tag.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tags)
}

// ListWithoutArticles handles GET /v1/tags/without_article
func (h *TagHandler) ListWithoutArticles(c *gin.Context) {
	tags, err := h.services.Tag.ListWithoutArticles(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tags)
}

// ListWithArticles handles GET /v1/tags/with_article
func (h *TagHandler) ListWithArticles(c *gin.Context) {
	tags, err := h.services.Tag.ListWithArticles(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tags)
}

// Create handles POST /v1/tags
func (h *TagHandler) Create(c *gin.Context) {
	var req models.TagCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	tag, err := h.services.Tag.Create(c.Request.Context(), identityFrom(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.log.Info().Str("tag_id", tag.ID).Str("title", tag.Title).Msg("Tag created")
	c.JSON(http.StatusCreated, tag)
}

// Get handles GET /v1/tags/:id
func (h *TagHandler) Get(c *gin.Context) {
	tag, err := h.services.Tag.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tag)
}

// Update handles PUT/PATCH /v1/tags/:id
func (h *TagHandler) Update(c *gin.Context) {
	var req models.TagUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	tag, err := h.services.Tag.Update(c.Request.Context(), identityFrom(c), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tag)
}

// Delete handles DELETE /v1/tags/:id
func (h *TagHandler) Delete(c *gin.Context) {
	if err := h.services.Tag.Delete(c.Request.Context(), identityFrom(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Tag deleted"})
}

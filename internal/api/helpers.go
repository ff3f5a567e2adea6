package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/devwiki-api/internal/apperr"
	"github.com/devwiki-api/internal/config"
	"github.com/devwiki-api/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// identityKey is the gin context key holding the authenticated user
const identityKey = "identity"

// identityFrom returns the authenticated user or nil for anonymous requests
func identityFrom(c *gin.Context) *models.User {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}

// requireIdentity aborts with 401 when the request is anonymous
func requireIdentity(c *gin.Context) (*models.User, bool) {
	identity := identityFrom(c)
	if identity == nil {
		respondError(c, apperr.Unauthenticated(""))
		return nil, false
	}
	return identity, true
}

// respondError maps the application error taxonomy onto HTTP statuses.
// Unclassified errors become opaque 500s; details stay in the log.
func respondError(c *gin.Context, err error) {
	e, ok := apperr.As(err)
	if !ok {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	switch e.Kind {
	case apperr.KindValidation:
		body := gin.H{"error": e.Message}
		if len(e.Fields) > 0 {
			body["errors"] = e.Fields
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, body)
	case apperr.KindUnauthenticated:
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": e.Message})
	case apperr.KindForbidden:
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"detail": e.Message})
	case apperr.KindNotFound:
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"detail": e.Message})
	case apperr.KindConflict:
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": e.Message})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// pageParams parses page/page_size query parameters with config defaults
func pageParams(c *gin.Context, cfg *config.PageConfig) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	size, err := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(cfg.DefaultSize)))
	if err != nil || size < 1 {
		size = cfg.DefaultSize
	}
	if size > cfg.MaxSize {
		size = cfg.MaxSize
	}
	return page, size
}

// bearerToken extracts the token from an Authorization header
func bearerToken(header string) string {
	const prefix = "Bearer "
	if strings.HasPrefix(header, prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	// Older clients send "Token <key>"; accept both schemes.
	const tokenPrefix = "Token "
	if strings.HasPrefix(header, tokenPrefix) {
		return strings.TrimSpace(header[len(tokenPrefix):])
	}
	return ""
}

// handlerLogger names a handler's logger
func handlerLogger(log zerolog.Logger, name string) zerolog.Logger {
	return log.With().Str("handler", name).Logger()
}

package api

import (
	"net/http"
	"time"

	"github.com/devwiki-api/internal/apperr"
	"github.com/devwiki-api/internal/config"
	"github.com/devwiki-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// NewRouter creates and configures the Gin router
func NewRouter(services *service.Services, cfg *config.Config, log zerolog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Middleware
	router.Use(recoveryMiddleware(log))
	router.Use(loggingMiddleware(log))
	router.Use(corsMiddleware())
	router.Use(authMiddleware(services))

	// Handlers
	articleHandler := NewArticleHandler(services, cfg, log)
	commentHandler := NewCommentHandler(services, cfg, log)
	tagHandler := NewTagHandler(services, log)
	accountHandler := NewAccountHandler(services, cfg, log)

	// Health check
	router.GET("/health", healthCheck)
	router.GET("/metrics", metricsHandler(services))

	// API v1
	v1 := router.Group("/v1")
	{
		articles := v1.Group("/articles")
		{
			articles.GET("", articleHandler.List)
			articles.POST("", articleHandler.Create)
			articles.GET("/deleted", articleHandler.ListDeleted)
			articles.GET("/deleted/:slug", articleHandler.GetDeleted)
			articles.PATCH("/deleted/:slug", articleHandler.PatchDeleted)
			articles.GET("/:slug", articleHandler.Get)
			articles.PUT("/:slug", articleHandler.Update)
			articles.PATCH("/:slug", articleHandler.Update)
			articles.DELETE("/:slug", articleHandler.Delete)
			articles.POST("/:slug/vote", articleHandler.Vote)
		}

		comments := v1.Group("/comments")
		{
			comments.GET("", commentHandler.List)
			comments.POST("", commentHandler.Create)
			comments.GET("/deleted", commentHandler.ListDeleted)
			comments.GET("/deleted/:id", commentHandler.GetDeleted)
			comments.PATCH("/deleted/:id", commentHandler.PatchDeleted)
			comments.GET("/:id", commentHandler.Get)
			comments.PATCH("/:id", commentHandler.Update)
			comments.DELETE("/:id", commentHandler.Delete)
		}

		tags := v1.Group("/tags")
		{
			tags.GET("", tagHandler.List)
			tags.POST("", tagHandler.Create)
			tags.GET("/without_article", tagHandler.ListWithoutArticles)
			tags.GET("/with_article", tagHandler.ListWithArticles)
			tags.GET("/:id", tagHandler.Get)
			tags.PUT("/:id", tagHandler.Update)
			tags.PATCH("/:id", tagHandler.Update)
			tags.DELETE("/:id", tagHandler.Delete)
		}

		accounts := v1.Group("/accounts")
		{
			accounts.POST("/create", accountHandler.Register)
			accounts.POST("/login", accountHandler.Login)
			accounts.POST("/oauth", accountHandler.SocialAuth)
			accounts.GET("/me", accountHandler.Me)
			accounts.PATCH("/me", accountHandler.UpdateMe)
		}

		admin := v1.Group("/admin/accounts")
		{
			admin.GET("", accountHandler.AdminList)
			admin.POST("", accountHandler.AdminCreate)
			admin.GET("/:id", accountHandler.AdminGet)
			admin.PATCH("/:id", accountHandler.AdminUpdate)
			admin.DELETE("/:id", accountHandler.AdminDelete)
		}
	}

	return router
}

// healthCheck returns the health status
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"service":   "devwiki-api",
	})
}

// metricsHandler returns entity counts
func metricsHandler(services *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		counts, err := services.Stats.Counts(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"database":  counts,
			"timestamp": time.Now().Format(time.RFC3339),
		})
	}
}

// authMiddleware resolves the bearer token, when present, to a user.
// Requests without credentials pass through anonymously; permission
// tables decide per action whether that is acceptable.
func authMiddleware(services *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		token := bearerToken(header)
		if token == "" {
			respondError(c, apperr.Unauthenticated("Invalid authorization header."))
			return
		}

		user, err := services.Account.Authenticate(c.Request.Context(), token)
		if err != nil {
			respondError(c, err)
			return
		}

		c.Set(identityKey, user)
		c.Next()
	}
}

// recoveryMiddleware handles panics
func recoveryMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().Interface("error", err).Msg("Panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": "Internal server error",
				})
			}
		}()
		c.Next()
	}
}

// loggingMiddleware logs requests
func loggingMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		event := log.Info()
		if statusCode >= 400 {
			event = log.Warn()
		}
		if statusCode >= 500 {
			event = log.Error()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", statusCode).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("Request completed")
	}
}

// corsMiddleware handles CORS
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

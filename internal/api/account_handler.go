package api

import (
	"net/http"

	"github.com/devwiki-api/internal/config"
	"github.com/devwiki-api/internal/models"
	"github.com/devwiki-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// AccountHandler handles registration, login, profile and admin endpoints
type AccountHandler struct {
	services *service.Services
	cfg      *config.Config
	log      zerolog.Logger
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) *AccountHandler {
	return &AccountHandler{
		services: services,
		cfg:      cfg,
		log:      handlerLogger(log, "account"),
	}
}

// Register handles POST /v1/accounts/create
func (h *AccountHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	resp, err := h.services.Account.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.log.Info().Str("email", req.Email).Msg("Account registered")
	c.JSON(http.StatusCreated, resp)
}

// Login handles POST /v1/accounts/login
func (h *AccountHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	resp, err := h.services.Account.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// SocialAuth handles POST /v1/accounts/oauth
func (h *AccountHandler) SocialAuth(c *gin.Context) {
	var req models.SocialAuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "provider and access_token are required"})
		return
	}

	resp, err := h.services.Account.SocialAuth(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Me handles GET /v1/accounts/me
func (h *AccountHandler) Me(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, identity)
}

// UpdateMe handles PATCH /v1/accounts/me
func (h *AccountHandler) UpdateMe(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	var req models.ProfileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, err := h.services.Account.UpdateProfile(c.Request.Context(), identity, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// AdminList handles GET /v1/admin/accounts
func (h *AccountHandler) AdminList(c *gin.Context) {
	page, pageSize := pageParams(c, &h.cfg.Page)

	result, err := h.services.Account.ListAccounts(c.Request.Context(), identityFrom(c), page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// AdminCreate handles POST /v1/admin/accounts
func (h *AccountHandler) AdminCreate(c *gin.Context) {
	var req models.AdminAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, err := h.services.Account.CreateAccount(c.Request.Context(), identityFrom(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.log.Info().Str("user_id", user.ID).Msg("Account created by admin")
	c.JSON(http.StatusCreated, user)
}

// AdminGet handles GET /v1/admin/accounts/:id
func (h *AccountHandler) AdminGet(c *gin.Context) {
	user, err := h.services.Account.GetAccount(c.Request.Context(), identityFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// AdminUpdate handles PATCH /v1/admin/accounts/:id
func (h *AccountHandler) AdminUpdate(c *gin.Context) {
	var req models.AdminAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, err := h.services.Account.UpdateAccount(c.Request.Context(), identityFrom(c), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// AdminDelete handles DELETE /v1/admin/accounts/:id
func (h *AccountHandler) AdminDelete(c *gin.Context) {
	if err := h.services.Account.DeleteAccount(c.Request.Context(), identityFrom(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	h.log.Info().Str("user_id", c.Param("id")).Msg("Account deleted by admin")
	c.JSON(http.StatusOK, gin.H{"message": "Account deleted"})
}

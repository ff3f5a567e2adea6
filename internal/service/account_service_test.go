package service_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/devwiki-api/internal/apperr"
	"github.com/devwiki-api/internal/config"
	"github.com/devwiki-api/internal/mocks"
	"github.com/devwiki-api/internal/models"
	"github.com/devwiki-api/internal/service"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()

	resp, err := h.services.Account.Register(ctx, &models.RegisterRequest{
		Email:    "new@example.com",
		Password: "secret",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	require.NotNil(t, resp.User)
	assert.Equal(t, "new@example.com", resp.User.Email)

	// The issued token resolves back to the account
	user, err := h.services.Account.Authenticate(ctx, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, user.ID)

	// Login with the same credentials works
	login, err := h.services.Account.Login(ctx, &models.LoginRequest{
		Email:    "new@example.com",
		Password: "secret",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, login.Token)

	// Stored hash never equals the raw password
	stored, err := h.userRepo.GetByEmail(ctx, "new@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "secret", stored.PasswordHash)
}

func TestRegisterValidation(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()

	// Malformed email
	_, err := h.services.Account.Register(ctx, &models.RegisterRequest{
		Email:    "not-an-email",
		Password: "secret",
	})
	assert.Equal(t, apperr.KindValidation, kindOf(t, err))

	// Password below the minimum length
	_, err = h.services.Account.Register(ctx, &models.RegisterRequest{
		Email:    "short@example.com",
		Password: "abc",
	})
	assert.Equal(t, apperr.KindValidation, kindOf(t, err))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()

	req := &models.RegisterRequest{Email: "dup@example.com", Password: "secret"}
	_, err := h.services.Account.Register(ctx, req)
	require.NoError(t, err)

	_, err = h.services.Account.Register(ctx, req)
	assert.Equal(t, apperr.KindValidation, kindOf(t, err))
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()

	_, err := h.services.Account.Register(ctx, &models.RegisterRequest{
		Email:    "known@example.com",
		Password: "secret",
	})
	require.NoError(t, err)

	_, err = h.services.Account.Login(ctx, &models.LoginRequest{
		Email:    "known@example.com",
		Password: "wrong",
	})
	assert.Equal(t, apperr.KindUnauthenticated, kindOf(t, err))

	_, err = h.services.Account.Login(ctx, &models.LoginRequest{
		Email:    "unknown@example.com",
		Password: "secret",
	})
	assert.Equal(t, apperr.KindUnauthenticated, kindOf(t, err))
}

func TestAuthenticateRejectsGarbage(t *testing.T) {
	h := newTestHarness(t)

	_, err := h.services.Account.Authenticate(context.Background(), "v4.local.garbage")
	assert.Equal(t, apperr.KindUnauthenticated, kindOf(t, err))
}

func TestUpdateProfile(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()
	user := h.seedUser(t, nil)

	nickname := "renamed"
	updated, err := h.services.Account.UpdateProfile(ctx, user, &models.ProfileUpdateRequest{
		Nickname: &nickname,
	})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Nickname)
}

func TestSocialAuth(t *testing.T) {
	stub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{
			"login":      "octocat",
			"email":      "octocat@example.com",
			"avatar_url": "https://example.com/a.png",
		})
	}))
	defer stub.Close()

	repos := mocks.NewRepositories()
	cfg := &config.Config{
		Auth: config.AuthConfig{
			TokenKeyHex:  testTokenKey,
			TokenTTL:     time.Hour,
			GithubAPIURL: stub.URL,
		},
	}
	services, err := service.NewServices(repos, cfg, zerolog.Nop())
	require.NoError(t, err)
	ctx := context.Background()

	// First login creates the account
	resp, err := services.Account.SocialAuth(ctx, &models.SocialAuthRequest{
		Provider:    "github",
		AccessToken: "good-token",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "octocat@example.com", resp.User.Email)

	// Second login reuses it
	again, err := services.Account.SocialAuth(ctx, &models.SocialAuthRequest{
		Provider:    "github",
		AccessToken: "good-token",
	})
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, again.User.ID)

	// Bad provider token
	_, err = services.Account.SocialAuth(ctx, &models.SocialAuthRequest{
		Provider:    "github",
		AccessToken: "bad-token",
	})
	assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err))

	// Unknown provider
	_, err = services.Account.SocialAuth(ctx, &models.SocialAuthRequest{
		Provider:    "gitlab",
		AccessToken: "good-token",
	})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestAdminAccountsRequireAdmin(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()
	regular := h.seedUser(t, nil)
	moderator := h.seedUser(t, func(u *models.User) { u.IsModer = true })
	admin := h.seedUser(t, func(u *models.User) { u.IsStaff = true })

	_, err := h.services.Account.ListAccounts(ctx, regular, 1, 20)
	assert.Equal(t, apperr.KindForbidden, kindOf(t, err))

	// Moderation rights do not extend to the accounts panel
	_, err = h.services.Account.ListAccounts(ctx, moderator, 1, 20)
	assert.Equal(t, apperr.KindForbidden, kindOf(t, err))

	_, err = h.services.Account.ListAccounts(ctx, nil, 1, 20)
	assert.Equal(t, apperr.KindUnauthenticated, kindOf(t, err))

	listing, err := h.services.Account.ListAccounts(ctx, admin, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 3, listing.Count)
}

func TestAdminAccountLifecycle(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()
	admin := h.seedUser(t, func(u *models.User) { u.IsSuperuser = true })

	email := "managed@example.com"
	password := "secret"
	banned := true

	created, err := h.services.Account.CreateAccount(ctx, admin, &models.AdminAccountRequest{
		Email:    &email,
		Password: &password,
	})
	require.NoError(t, err)
	assert.Equal(t, email, created.Email)
	assert.False(t, created.IsBanned)

	updated, err := h.services.Account.UpdateAccount(ctx, admin, created.ID, &models.AdminAccountRequest{
		IsBanned: &banned,
	})
	require.NoError(t, err)
	assert.True(t, updated.IsBanned)
	assert.Equal(t, email, updated.Email)

	require.NoError(t, h.services.Account.DeleteAccount(ctx, admin, created.ID))

	_, err = h.services.Account.GetAccount(ctx, admin, created.ID)
	assert.Equal(t, apperr.KindNotFound, kindOf(t, err))
}

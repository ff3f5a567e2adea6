package service

import (
	"context"

	"github.com/devwiki-api/internal/apperr"
	"github.com/devwiki-api/internal/auth"
	"github.com/devwiki-api/internal/models"
	"github.com/devwiki-api/internal/permissions"
	"github.com/devwiki-api/internal/repository"
	"github.com/devwiki-api/internal/validation"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// accountService is the concrete implementation of AccountService
type accountService struct {
	users  repository.UserRepository
	tokens *auth.TokenService
	github *auth.GithubClient
	log    zerolog.Logger
}

func newAccountService(repos *repository.Repositories, tokens *auth.TokenService, github *auth.GithubClient, log zerolog.Logger) AccountService {
	return &accountService{
		users:  repos.User,
		tokens: tokens,
		github: github,
		log:    log.With().Str("service", "account").Logger(),
	}
}

// Register creates an account from email and password and issues a token
func (s *accountService) Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error) {
	var fields []apperr.FieldError
	if fe := validation.Email(req.Email); fe != nil {
		fields = append(fields, *fe)
	}
	if fe := validation.Password(req.Password, auth.MinPasswordLength); fe != nil {
		fields = append(fields, *fe)
	}
	if len(fields) > 0 {
		return nil, apperr.Validation(fields...)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperr.Internalf(err, "failed to hash password")
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if e, ok := apperr.As(err); ok && e.Kind == apperr.KindConflict {
			return nil, apperr.Validation(apperr.FieldError{
				Field: "email", Message: "user with this email already exists", Value: req.Email,
			})
		}
		return nil, err
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, apperr.Internalf(err, "failed to issue token")
	}

	s.log.Info().Str("user", user.ID).Msg("User registered")

	return &models.AuthResponse{Token: token, User: user.Profile()}, nil
}

// Login verifies credentials and issues a token
func (s *accountService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if user == nil || !auth.CheckPassword(req.Password, user.PasswordHash) {
		return nil, apperr.Unauthenticated("Unable to authenticate with provided credentials")
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, apperr.Internalf(err, "failed to issue token")
	}

	return &models.AuthResponse{Token: token, User: user.Profile(), Profile: user}, nil
}

// SocialAuth exchanges a provider access token for a local token,
// creating the account on first sight of the provider email
func (s *accountService) SocialAuth(ctx context.Context, req *models.SocialAuthRequest) (*models.AuthResponse, error) {
	if req.Provider != "github" {
		return nil, apperr.Validation(apperr.FieldError{
			Field: "provider", Message: "invalid auth provider", Value: req.Provider,
		})
	}

	profile, err := s.github.FetchProfile(ctx, req.AccessToken)
	if err != nil {
		return nil, apperr.Unauthenticated("Unable to authenticate with provided credentials")
	}

	user, err := s.users.GetByEmail(ctx, profile.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		user = &models.User{
			ID:        uuid.NewString(),
			Email:     profile.Email,
			Nickname:  profile.Nickname,
			AvatarURL: profile.AvatarURL,
			// Social accounts carry no usable local password.
			PasswordHash: "!",
		}
		if err := s.users.Create(ctx, user); err != nil {
			if e, ok := apperr.As(err); ok && e.Kind == apperr.KindConflict {
				// Lost a race against a concurrent first login; the
				// winner's row is the account.
				user, err = s.users.GetByEmail(ctx, profile.Email)
				if err != nil {
					return nil, err
				}
			} else {
				return nil, err
			}
		}
		s.log.Info().Str("user", user.ID).Str("provider", req.Provider).Msg("Social account created")
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, apperr.Internalf(err, "failed to issue token")
	}

	return &models.AuthResponse{Token: token, User: user.Profile(), Profile: user}, nil
}

// Authenticate resolves a bearer token to a live user record so role
// flag changes apply to the very next request
func (s *accountService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	userID, err := s.tokens.Verify(token)
	if err != nil {
		return nil, apperr.Unauthenticated("Invalid token.")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.Unauthenticated("Invalid token.")
	}
	return user, nil
}

// UpdateProfile patches the caller's own profile fields
func (s *accountService) UpdateProfile(ctx context.Context, identity *models.User, req *models.ProfileUpdateRequest) (*models.User, error) {
	if req.Nickname != nil {
		identity.Nickname = *req.Nickname
	}
	if req.AvatarURL != nil {
		identity.AvatarURL = *req.AvatarURL
	}
	if req.Password != nil {
		if fe := validation.Password(*req.Password, auth.MinPasswordLength); fe != nil {
			return nil, apperr.Validation(*fe)
		}
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			return nil, apperr.Internalf(err, "failed to hash password")
		}
		identity.PasswordHash = hash
	}

	if err := s.users.Update(ctx, identity); err != nil {
		return nil, err
	}
	return identity, nil
}

// ListAccounts pages all accounts for the admin panel
func (s *accountService) ListAccounts(ctx context.Context, identity *models.User, page, pageSize int) (*models.Page, error) {
	if err := permissions.AdminAccounts.Check(permissions.ActionList, identity, ""); err != nil {
		return nil, err
	}

	users, total, err := s.users.List(ctx, page, pageSize)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []*models.User{}
	}
	return &models.Page{Count: total, Results: users}, nil
}

// CreateAccount creates an account with explicit role flags
func (s *accountService) CreateAccount(ctx context.Context, identity *models.User, req *models.AdminAccountRequest) (*models.User, error) {
	if err := permissions.AdminAccounts.Check(permissions.ActionCreate, identity, ""); err != nil {
		return nil, err
	}
	if req.Email == nil || req.Password == nil {
		return nil, apperr.Validationf("email and password are required")
	}

	var fields []apperr.FieldError
	if fe := validation.Email(*req.Email); fe != nil {
		fields = append(fields, *fe)
	}
	if fe := validation.Password(*req.Password, auth.MinPasswordLength); fe != nil {
		fields = append(fields, *fe)
	}
	if len(fields) > 0 {
		return nil, apperr.Validation(fields...)
	}

	hash, err := auth.HashPassword(*req.Password)
	if err != nil {
		return nil, apperr.Internalf(err, "failed to hash password")
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        *req.Email,
		PasswordHash: hash,
	}
	applyAccountFlags(user, req)

	if err := s.users.Create(ctx, user); err != nil {
		if e, ok := apperr.As(err); ok && e.Kind == apperr.KindConflict {
			return nil, apperr.Validation(apperr.FieldError{
				Field: "email", Message: "user with this email already exists", Value: *req.Email,
			})
		}
		return nil, err
	}

	s.log.Info().Str("user", user.ID).Str("admin", identity.ID).Msg("Account created by admin")
	return user, nil
}

// GetAccount retrieves any account for the admin panel
func (s *accountService) GetAccount(ctx context.Context, identity *models.User, id string) (*models.User, error) {
	if err := permissions.AdminAccounts.Check(permissions.ActionRetrieve, identity, ""); err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.NotFound("user")
	}
	return user, nil
}

// UpdateAccount patches profile fields and role flags; banning and
// muting are soft states flipped here, never row deletion
func (s *accountService) UpdateAccount(ctx context.Context, identity *models.User, id string, req *models.AdminAccountRequest) (*models.User, error) {
	user, err := s.GetAccount(ctx, identity, id)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		if fe := validation.Email(*req.Email); fe != nil {
			return nil, apperr.Validation(*fe)
		}
		user.Email = *req.Email
	}
	if req.Password != nil {
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			return nil, apperr.Internalf(err, "failed to hash password")
		}
		user.PasswordHash = hash
	}
	applyAccountFlags(user, req)

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info().Str("user", user.ID).Str("admin", identity.ID).Msg("Account updated by admin")
	return user, nil
}

// DeleteAccount removes an account row entirely (admin panel only)
func (s *accountService) DeleteAccount(ctx context.Context, identity *models.User, id string) error {
	if err := permissions.AdminAccounts.Check(permissions.ActionDestroy, identity, ""); err != nil {
		return err
	}
	return s.users.Delete(ctx, id)
}

func applyAccountFlags(user *models.User, req *models.AdminAccountRequest) {
	if req.Nickname != nil {
		user.Nickname = *req.Nickname
	}
	if req.AvatarURL != nil {
		user.AvatarURL = *req.AvatarURL
	}
	if req.IsStaff != nil {
		user.IsStaff = *req.IsStaff
	}
	if req.IsSuperuser != nil {
		user.IsSuperuser = *req.IsSuperuser
	}
	if req.IsModer != nil {
		user.IsModer = *req.IsModer
	}
	if req.IsBanned != nil {
		user.IsBanned = *req.IsBanned
	}
	if req.IsMuted != nil {
		user.IsMuted = *req.IsMuted
	}
}

package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// ProviderProfile is the subset of an identity provider's user record
// needed to create or look up a local account
type ProviderProfile struct {
	Email     string
	Nickname  string
	AvatarURL string
}

// GithubClient exchanges a GitHub access token for the user's profile.
// The OAuth handshake itself happens on the client side; the backend
// only sees the resulting access token.
type GithubClient struct {
	baseURL string
	http    *http.Client
}

// NewGithubClient creates a client against the given GitHub API base URL
func NewGithubClient(baseURL string) *GithubClient {
	return &GithubClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type githubUser struct {
	Login     string `json:"login"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

// FetchProfile resolves the access token to the provider's user profile
func (c *GithubClient) FetchProfile(ctx context.Context, accessToken string) (*ProviderProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/user", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("provider request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("provider rejected token: status %d", resp.StatusCode)
	}

	var u githubUser
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return nil, fmt.Errorf("failed to decode provider response: %w", err)
	}

	email := u.Email
	if email == "" {
		// GitHub hides the email for some accounts; fall back to the
		// login-scoped noreply address so the identity key stays stable.
		email = u.Login + "@users.noreply.github.com"
	}

	return &ProviderProfile{
		Email:     email,
		Nickname:  u.Login,
		AvatarURL: u.AvatarURL,
	}, nil
}

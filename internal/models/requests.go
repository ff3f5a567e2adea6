package models

// Page is the envelope for every paginated listing
type Page struct {
	Count   int         `json:"count"`
	Results interface{} `json:"results"`
}

// ArticleDetail is the retrieve payload: the article plus computed
// rating aggregates and, for the author only, the previous version
type ArticleDetail struct {
	*Article
	Rating    float64 `json:"rating"`
	RateVotes int     `json:"rate_votes"`
	// PreviousVersion is the second-newest history snapshot; null for
	// non-authors and for articles edited fewer than two times.
	PreviousVersion *ArticleSnapshot `json:"previous_version"`
}

// AuthResponse is returned by register, login and social auth
type AuthResponse struct {
	Token   string   `json:"token"`
	User    *Profile `json:"user"`
	Profile *User    `json:"profile,omitempty"`
}

// RegisterRequest creates a new account
type RegisterRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest exchanges credentials for a token
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SocialAuthRequest exchanges a provider access token for a local token
type SocialAuthRequest struct {
	Provider    string `json:"provider" binding:"required"`
	AccessToken string `json:"access_token" binding:"required"`
}

// ProfileUpdateRequest patches the caller's own profile
type ProfileUpdateRequest struct {
	Nickname  *string `json:"nickname"`
	AvatarURL *string `json:"avatar_url"`
	Password  *string `json:"password"`
}

// AdminAccountRequest creates or patches an account from the admin panel
type AdminAccountRequest struct {
	Email       *string `json:"email"`
	Password    *string `json:"password"`
	Nickname    *string `json:"nickname"`
	AvatarURL   *string `json:"avatar_url"`
	IsStaff     *bool   `json:"is_staff"`
	IsSuperuser *bool   `json:"is_superuser"`
	IsModer     *bool   `json:"is_moder"`
	IsBanned    *bool   `json:"is_banned"`
	IsMuted     *bool   `json:"is_muted"`
}

// ArticleCreateRequest creates an article; UpdateTags replaces the
// full tag set by title, creating unseen tags on first use
type ArticleCreateRequest struct {
	Title      string   `json:"title"`
	Body       string   `json:"body"`
	UpdateTags []string `json:"update_tags"`
}

// ArticleUpdateRequest patches an article; nil fields are untouched
type ArticleUpdateRequest struct {
	Title      *string   `json:"title"`
	Body       *string   `json:"body"`
	UpdateTags *[]string `json:"update_tags"`
}

// VoteRequest casts a star vote for an article
type VoteRequest struct {
	Rating *int `json:"rating" binding:"required"`
}

// CommentCreateRequest posts a comment, optionally as a reply
type CommentCreateRequest struct {
	Article string  `json:"article" binding:"required"`
	Content string  `json:"content" binding:"required"`
	Parent  *string `json:"parent"`
}

// CommentUpdateRequest patches a comment body
type CommentUpdateRequest struct {
	Content string `json:"content" binding:"required"`
}

// TagCreateRequest creates a tag
type TagCreateRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

// TagUpdateRequest patches a tag; nil fields are untouched
type TagUpdateRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

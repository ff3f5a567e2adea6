// Package validation holds field-level input checks shared by the
// services. Checks return apperr field errors so the HTTP layer can
// surface every offending field in one 400 response.
package validation

import (
	"regexp"
	"strings"

	"github.com/devwiki-api/internal/apperr"
	"github.com/devwiki-api/internal/models"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	// Tag titles accept letters only, Latin and Cyrillic included.
	tagTitleRegex = regexp.MustCompile(`^\p{L}+$`)
)

// Email validates an email address
func Email(email string) *apperr.FieldError {
	if email == "" {
		return &apperr.FieldError{Field: "email", Message: "email is required"}
	}
	if !emailRegex.MatchString(email) {
		return &apperr.FieldError{Field: "email", Message: "invalid email format", Value: email}
	}
	return nil
}

// Password validates a plaintext password against the minimum length
func Password(password string, minLength int) *apperr.FieldError {
	if len(password) < minLength {
		return &apperr.FieldError{Field: "password", Message: "password is too short"}
	}
	return nil
}

// ArticleTitle validates an article title
func ArticleTitle(title string) *apperr.FieldError {
	if len(strings.TrimSpace(title)) < 1 {
		return &apperr.FieldError{Field: "title", Message: "title must not be empty"}
	}
	return nil
}

// ArticleBody validates an article body against the minimum length
func ArticleBody(body string) *apperr.FieldError {
	if len(body) < models.MinBodyLength {
		return &apperr.FieldError{
			Field:   "body",
			Message: "body must be at least 10 characters",
			Value:   body,
		}
	}
	return nil
}

// TagTitle validates a tag title: non-empty, letters only
func TagTitle(title string) *apperr.FieldError {
	if title == "" {
		return &apperr.FieldError{Field: "title", Message: "title is required"}
	}
	if !tagTitleRegex.MatchString(title) {
		return &apperr.FieldError{Field: "title", Message: "That field can contain only letters", Value: title}
	}
	return nil
}

// Star validates a rating vote against the [0, MaxStar] scale
func Star(star int) *apperr.FieldError {
	if star < 0 || star > models.MaxStar {
		return &apperr.FieldError{Field: "rating", Message: "rating must be between 0 and 5", Value: star}
	}
	return nil
}

// CommentContent validates a comment body
func CommentContent(content string) *apperr.FieldError {
	if strings.TrimSpace(content) == "" {
		return &apperr.FieldError{Field: "content", Message: "content must not be empty"}
	}
	return nil
}

package repository

import (
	"context"
	"time"

	"github.com/devwiki-api/internal/database"
	"github.com/devwiki-api/internal/models"
)

// ratingRepo is the concrete implementation of RatingRepository
type ratingRepo struct {
	db *database.DB
}

// NewRatingRepo creates a new rating repository
func NewRatingRepo(db *database.DB) RatingRepository {
	return &ratingRepo{db: db}
}

// Upsert records a vote; a second vote by the same user on the same
// article replaces the star value rather than adding a row
func (r *ratingRepo) Upsert(ctx context.Context, rating *models.ArticleRating) error {
	query := `
		INSERT INTO article_ratings (user_id, article_id, star, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, article_id) DO UPDATE SET
			star = EXCLUDED.star,
			updated_at = EXCLUDED.updated_at
	`
	rating.UpdatedAt = time.Now()
	_, err := r.db.ExecContext(ctx, query,
		rating.UserID, rating.ArticleID, rating.Star, rating.UpdatedAt,
	)
	return err
}

// Summary computes the mean star value and vote count on read;
// nothing is stored denormalized
func (r *ratingRepo) Summary(ctx context.Context, articleID string) (*models.RatingSummary, error) {
	query := `
		SELECT COALESCE(ROUND(AVG(star)::numeric, 2), 0), COUNT(*)
		FROM article_ratings
		WHERE article_id = $1
	`
	var s models.RatingSummary
	err := r.db.QueryRowContext(ctx, query, articleID).Scan(&s.Rating, &s.RateVotes)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

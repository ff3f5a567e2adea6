package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/devwiki-api/internal/apperr"
	"github.com/devwiki-api/internal/database"
	"github.com/devwiki-api/internal/models"
	"github.com/google/uuid"
)

// tagRepo is the concrete implementation of TagRepository
type tagRepo struct {
	db *database.DB
}

// NewTagRepo creates a new tag repository
func NewTagRepo(db *database.DB) TagRepository {
	return &tagRepo{db: db}
}

const tagColumns = `id, title, description, author_id, created_at`

func scanTag(row interface{ Scan(...interface{}) error }) (*models.Tag, error) {
	var t models.Tag
	var authorID sql.NullString
	err := row.Scan(&t.ID, &t.Title, &t.Description, &authorID, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if authorID.Valid {
		t.AuthorID = &authorID.String
	}
	return &t, nil
}

// Create inserts a new tag
func (r *tagRepo) Create(ctx context.Context, tag *models.Tag) error {
	query := `
		INSERT INTO tags (id, title, description, author_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	tag.CreatedAt = time.Now()
	_, err := r.db.ExecContext(ctx, query,
		tag.ID, tag.Title, tag.Description, tag.AuthorID, tag.CreatedAt,
	)
	if isUniqueViolation(err) {
		return apperr.Conflict("tag with this title already exists")
	}
	return err
}

// GetOrCreate resolves a tag by title with an insert-or-ignore upsert.
// The loser of a concurrent race on a new title reuses the winner's row.
func (r *tagRepo) GetOrCreate(ctx context.Context, title, authorID string) (*models.Tag, error) {
	insert := `
		INSERT INTO tags (id, title, description, author_id, created_at)
		VALUES ($1, $2, '', $3, $4)
		ON CONFLICT (title) DO NOTHING
	`
	var author interface{}
	if authorID != "" {
		author = authorID
	}
	if _, err := r.db.ExecContext(ctx, insert, uuid.NewString(), title, author, time.Now()); err != nil {
		return nil, err
	}

	row := r.db.QueryRowContext(ctx, `SELECT `+tagColumns+` FROM tags WHERE title = $1`, title)
	return scanTag(row)
}

// GetByID retrieves a tag by ID
func (r *tagRepo) GetByID(ctx context.Context, id string) (*models.Tag, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+tagColumns+` FROM tags WHERE id = $1`, id)
	return scanTag(row)
}

// List returns all tags ordered by title
func (r *tagRepo) List(ctx context.Context) ([]*models.Tag, error) {
	return r.listWhere(ctx, "")
}

// ListWithoutArticles returns tags no article references
func (r *tagRepo) ListWithoutArticles(ctx context.Context) ([]*models.Tag, error) {
	return r.listWhere(ctx, `WHERE NOT EXISTS (SELECT 1 FROM article_tags at WHERE at.tag_id = tags.id)`)
}

// ListWithArticles returns tags referenced by at least one article
func (r *tagRepo) ListWithArticles(ctx context.Context) ([]*models.Tag, error) {
	return r.listWhere(ctx, `WHERE EXISTS (SELECT 1 FROM article_tags at WHERE at.tag_id = tags.id)`)
}

func (r *tagRepo) listWhere(ctx context.Context, where string) ([]*models.Tag, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+tagColumns+` FROM tags `+where+` ORDER BY title`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []*models.Tag
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// Update persists changed tag fields
func (r *tagRepo) Update(ctx context.Context, tag *models.Tag) error {
	query := `UPDATE tags SET title = $2, description = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, tag.ID, tag.Title, tag.Description)
	if isUniqueViolation(err) {
		return apperr.Conflict("tag with this title already exists")
	}
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("tag")
	}
	return nil
}

// Delete removes a tag and its article links
func (r *tagRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tags WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("tag")
	}
	return nil
}

// Count returns the total number of tags
func (r *tagRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tags").Scan(&count)
	return count, err
}

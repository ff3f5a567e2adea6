package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/devwiki-api/internal/apperr"
	"github.com/devwiki-api/internal/database"
	"github.com/devwiki-api/internal/models"
)

// commentRepo is the concrete implementation of CommentRepository
type commentRepo struct {
	db *database.DB
}

// NewCommentRepo creates a new comment repository
func NewCommentRepo(db *database.DB) CommentRepository {
	return &commentRepo{db: db}
}

const commentColumns = `c.id, c.article_id, c.author_id, c.content, c.parent_id, c.status,
	c.created_at, u.id, u.email, u.nickname, u.avatar_url`

func scanComment(row interface{ Scan(...interface{}) error }) (*models.Comment, error) {
	var c models.Comment
	var p models.Profile
	var parentID sql.NullString
	err := row.Scan(
		&c.ID, &c.ArticleID, &c.AuthorID, &c.Content, &parentID, &c.Status,
		&c.CreatedAt, &p.ID, &p.Email, &p.Nickname, &p.AvatarURL,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if parentID.Valid {
		c.ParentID = &parentID.String
	}
	c.Author = &p
	return &c, nil
}

// Create inserts a new comment
func (r *commentRepo) Create(ctx context.Context, comment *models.Comment) error {
	query := `
		INSERT INTO comments (id, article_id, author_id, content, parent_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	comment.CreatedAt = time.Now()
	_, err := r.db.ExecContext(ctx, query,
		comment.ID, comment.ArticleID, comment.AuthorID, comment.Content,
		comment.ParentID, comment.Status, comment.CreatedAt,
	)
	if isForeignKeyViolation(err) {
		return apperr.NotFound("article")
	}
	return err
}

// GetByID retrieves a comment with its author profile
func (r *commentRepo) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	query := `
		SELECT ` + commentColumns + `
		FROM comments c
		JOIN users u ON u.id = c.author_id
		WHERE c.id = $1
	`
	return scanComment(r.db.QueryRowContext(ctx, query, id))
}

// ListByArticle returns the article's flat comment set in creation order
func (r *commentRepo) ListByArticle(ctx context.Context, articleID string) ([]*models.Comment, error) {
	query := `
		SELECT ` + commentColumns + `
		FROM comments c
		JOIN users u ON u.id = c.author_id
		WHERE c.article_id = $1
		ORDER BY c.created_at, c.id
	`
	rows, err := r.db.QueryContext(ctx, query, articleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []*models.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// ListDeleted returns a page of soft-deleted comments, optionally
// restricted to one author
func (r *commentRepo) ListDeleted(ctx context.Context, authorID string, page, pageSize int) ([]*models.Comment, int, error) {
	where := `WHERE c.status = $1`
	args := []interface{}{models.StatusDeleted}
	if authorID != "" {
		where += ` AND c.author_id = $2`
		args = append(args, authorID)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM comments c `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, pageSize, (page-1)*pageSize)
	query := `
		SELECT ` + commentColumns + `
		FROM comments c
		JOIN users u ON u.id = c.author_id
		` + where + `
		ORDER BY c.created_at DESC`
	if authorID != "" {
		query += ` LIMIT $3 OFFSET $4`
	} else {
		query += ` LIMIT $2 OFFSET $3`
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var comments []*models.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, 0, err
		}
		comments = append(comments, c)
	}
	return comments, total, rows.Err()
}

// Update persists an edited comment body
func (r *commentRepo) Update(ctx context.Context, comment *models.Comment) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE comments SET content = $2 WHERE id = $1`, comment.ID, comment.Content)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("comment")
	}
	return nil
}

// SetStatus updates only the lifecycle status of a comment
func (r *commentRepo) SetStatus(ctx context.Context, id string, status models.Status) error {
	res, err := r.db.ExecContext(ctx, `UPDATE comments SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("comment")
	}
	return nil
}

// Count returns the total number of comments
func (r *commentRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM comments").Scan(&count)
	return count, err
}

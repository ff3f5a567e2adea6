package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/devwiki-api/internal/apperr"
	"github.com/devwiki-api/internal/database"
	"github.com/devwiki-api/internal/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// articleRepo is the concrete implementation of ArticleRepository
type articleRepo struct {
	db *database.DB
}

// NewArticleRepo creates a new article repository
func NewArticleRepo(db *database.DB) ArticleRepository {
	return &articleRepo{db: db}
}

const articleColumns = `a.id, a.slug, a.title, a.body, a.author_id, a.visits, a.status,
	a.created_at, a.updated_at, u.id, u.email, u.nickname, u.avatar_url`

func scanArticle(row interface{ Scan(...interface{}) error }) (*models.Article, error) {
	var a models.Article
	var p models.Profile
	err := row.Scan(
		&a.ID, &a.Slug, &a.Title, &a.Body, &a.AuthorID, &a.Visits, &a.Status,
		&a.CreatedAt, &a.UpdatedAt,
		&p.ID, &p.Email, &p.Nickname, &p.AvatarURL,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	a.Author = &p
	return &a, nil
}

// Create inserts a new article and its first history snapshot in one transaction
func (r *articleRepo) Create(ctx context.Context, article *models.Article) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now()
	article.CreatedAt = now
	article.UpdatedAt = now

	query := `
		INSERT INTO articles (id, slug, title, body, author_id, visits, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = tx.ExecContext(ctx, query,
		article.ID, article.Slug, article.Title, article.Body, article.AuthorID,
		article.Visits, article.Status, now, now,
	)
	if isUniqueViolation(err) {
		return apperr.Conflict("article with this slug or title already exists")
	}
	if err != nil {
		return err
	}

	if err := appendHistory(ctx, tx, article); err != nil {
		return err
	}

	return tx.Commit()
}

// Update persists editable fields and appends a history snapshot in one transaction
func (r *articleRepo) Update(ctx context.Context, article *models.Article) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	article.UpdatedAt = time.Now()
	query := `
		UPDATE articles SET title = $2, body = $3, status = $4, updated_at = $5
		WHERE id = $1
	`
	res, err := tx.ExecContext(ctx, query,
		article.ID, article.Title, article.Body, article.Status, article.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("article")
	}

	if err := appendHistory(ctx, tx, article); err != nil {
		return err
	}

	return tx.Commit()
}

// appendHistory writes one snapshot of the article's editable fields
func appendHistory(ctx context.Context, tx *sql.Tx, article *models.Article) error {
	query := `
		INSERT INTO article_history (id, article_id, title, body, author_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := tx.ExecContext(ctx, query,
		uuid.NewString(), article.ID, article.Title, article.Body, article.AuthorID, time.Now(),
	)
	return err
}

// GetBySlug retrieves an article with its author profile and tag titles
func (r *articleRepo) GetBySlug(ctx context.Context, slug string) (*models.Article, error) {
	query := `
		SELECT ` + articleColumns + `
		FROM articles a
		JOIN users u ON u.id = a.author_id
		WHERE a.slug = $1
	`
	article, err := scanArticle(r.db.QueryRowContext(ctx, query, slug))
	if err != nil || article == nil {
		return article, err
	}

	tagsByArticle, err := r.tagsForArticles(ctx, []string{article.ID})
	if err != nil {
		return nil, err
	}
	article.Tags = tagsByArticle[article.ID]
	if article.Tags == nil {
		article.Tags = []string{}
	}
	return article, nil
}

// List returns a filtered, ordered page of articles plus the total match count
func (r *articleRepo) List(ctx context.Context, opts ArticleListOptions) ([]*models.Article, int, error) {
	var conds []string
	var args []interface{}

	add := func(cond string, val interface{}) {
		args = append(args, val)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	add("a.status = $%d", opts.Status)
	if opts.Search != "" {
		add("a.title ILIKE $%d", "%"+opts.Search+"%")
	}
	if opts.AuthorID != "" {
		add("a.author_id = $%d", opts.AuthorID)
	}
	if opts.TagTitle != "" {
		add(`EXISTS (SELECT 1 FROM article_tags at JOIN tags t ON t.id = at.tag_id
			WHERE at.article_id = a.id AND t.title = $%d)`, opts.TagTitle)
	}

	where := "WHERE " + strings.Join(conds, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM articles a ` + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	order := "a.created_at DESC, a.id DESC"
	if opts.Sort == "popular" {
		order = "a.visits DESC, a.id DESC"
	}

	args = append(args, opts.PageSize, (opts.Page-1)*opts.PageSize)
	query := fmt.Sprintf(`
		SELECT `+articleColumns+`
		FROM articles a
		JOIN users u ON u.id = a.author_id
		%s
		ORDER BY %s
		LIMIT $%d OFFSET $%d
	`, where, order, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var articles []*models.Article
	var ids []string
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, 0, err
		}
		articles = append(articles, a)
		ids = append(ids, a.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	tagsByArticle, err := r.tagsForArticles(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for _, a := range articles {
		a.Tags = tagsByArticle[a.ID]
		if a.Tags == nil {
			a.Tags = []string{}
		}
	}

	return articles, total, nil
}

// tagsForArticles loads tag titles for a set of articles in one query
func (r *articleRepo) tagsForArticles(ctx context.Context, articleIDs []string) (map[string][]string, error) {
	result := make(map[string][]string)
	if len(articleIDs) == 0 {
		return result, nil
	}

	query := `
		SELECT at.article_id, t.title
		FROM article_tags at
		JOIN tags t ON t.id = at.tag_id
		WHERE at.article_id = ANY($1)
		ORDER BY t.title
	`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(articleIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var articleID, title string
		if err := rows.Scan(&articleID, &title); err != nil {
			return nil, err
		}
		result[articleID] = append(result[articleID], title)
	}
	return result, rows.Err()
}

// SetStatus updates only the lifecycle status of an article
func (r *articleRepo) SetStatus(ctx context.Context, id string, status models.Status) error {
	res, err := r.db.ExecContext(ctx, `UPDATE articles SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("article")
	}
	return nil
}

// IncrementVisits bumps the counter with a single atomic UPDATE so
// concurrent reads never lose increments
func (r *articleRepo) IncrementVisits(ctx context.Context, id string) (int, error) {
	var visits int
	err := r.db.QueryRowContext(ctx,
		`UPDATE articles SET visits = visits + 1 WHERE id = $1 RETURNING visits`, id,
	).Scan(&visits)
	if err == sql.ErrNoRows {
		return 0, apperr.NotFound("article")
	}
	return visits, err
}

// ReplaceTags swaps the article's full tag set in one transaction
func (r *articleRepo) ReplaceTags(ctx context.Context, articleID string, tagIDs []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM article_tags WHERE article_id = $1`, articleID); err != nil {
		return err
	}

	for _, tagID := range tagIDs {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO article_tags (article_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			articleID, tagID,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// History returns the article's snapshots newest-first
func (r *articleRepo) History(ctx context.Context, articleID string) ([]*models.ArticleSnapshot, error) {
	query := `
		SELECT id, article_id, title, body, author_id, created_at
		FROM article_history
		WHERE article_id = $1
		ORDER BY seq DESC
	`
	rows, err := r.db.QueryContext(ctx, query, articleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snapshots []*models.ArticleSnapshot
	for rows.Next() {
		var s models.ArticleSnapshot
		err := rows.Scan(&s.ID, &s.ArticleID, &s.Title, &s.Body, &s.AuthorID, &s.CreatedAt)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, &s)
	}
	return snapshots, rows.Err()
}

// Count returns the total number of articles
func (r *articleRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM articles").Scan(&count)
	return count, err
}

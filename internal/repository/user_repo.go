package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/devwiki-api/internal/apperr"
	"github.com/devwiki-api/internal/database"
	"github.com/devwiki-api/internal/models"
)

// userRepo is the concrete implementation of UserRepository
type userRepo struct {
	db *database.DB
}

// NewUserRepo creates a new user repository
func NewUserRepo(db *database.DB) UserRepository {
	return &userRepo{db: db}
}

const userColumns = `id, email, password_hash, nickname, avatar_url,
	is_staff, is_superuser, is_moder, is_banned, is_muted, created_at, updated_at`

func scanUser(row interface{ Scan(...interface{}) error }) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Nickname, &u.AvatarURL,
		&u.IsStaff, &u.IsSuperuser, &u.IsModer, &u.IsBanned, &u.IsMuted,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user
func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, nickname, avatar_url,
			is_staff, is_superuser, is_moder, is_banned, is_muted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.Nickname, user.AvatarURL,
		user.IsStaff, user.IsSuperuser, user.IsModer, user.IsBanned, user.IsMuted,
		now, now,
	)
	if isUniqueViolation(err) {
		return apperr.Conflict("user with this email already exists")
	}
	return err
}

// GetByID retrieves a user by ID
func (r *userRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// GetByEmail retrieves a user by email
func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// Update persists changed user fields
func (r *userRepo) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users SET email = $2, password_hash = $3, nickname = $4, avatar_url = $5,
			is_staff = $6, is_superuser = $7, is_moder = $8, is_banned = $9, is_muted = $10,
			updated_at = $11
		WHERE id = $1
	`
	user.UpdatedAt = time.Now()
	res, err := r.db.ExecContext(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.Nickname, user.AvatarURL,
		user.IsStaff, user.IsSuperuser, user.IsModer, user.IsBanned, user.IsMuted,
		user.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return apperr.Conflict("user with this email already exists")
	}
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("user")
	}
	return nil
}

// Delete removes a user row; content rows keep their author reference
func (r *userRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("user")
	}
	return nil
}

// List returns a page of users ordered by registration time
func (r *userRepo) List(ctx context.Context, page, pageSize int) ([]*models.User, int, error) {
	total, err := r.Count(ctx)
	if err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, query, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

// Count returns the total number of users
func (r *userRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count)
	return count, err
}

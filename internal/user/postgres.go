package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yourusername/launchbase/internal/database"
)

var _ Repository = (*PostgresRepository)(nil)

// PostgresRepository は users テーブルに対する Repository 実装です。
type PostgresRepository struct {
	db *database.Connection
}

// NewPostgresRepository は PostgresRepository を作成します。
func NewPostgresRepository(db *database.Connection) *PostgresRepository {
	return &PostgresRepository{
		db: db,
	}
}

const userColumns = `id, name, email, phone, avatar_url, password_hash, status, email_verified, last_login_at, created_at, updated_at`

func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, NormalizeEmail(email)))
}

func (r *PostgresRepository) Create(ctx context.Context, u User) (User, error) {
	query := `INSERT INTO users (id, name, email, phone, password_hash, status, email_verified, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			  RETURNING ` + userColumns

	saved, err := r.scanOneErr(r.db.QueryRow(ctx, query,
		u.ID, u.Name, NormalizeEmail(u.Email), u.Phone, u.PasswordHash, u.Status, u.EmailVerified,
		u.CreatedAt, u.UpdatedAt,
	))
	if err != nil {
		return User{}, fmt.Errorf("failed to create user: %w", err)
	}
	return saved, nil
}

func (r *PostgresRepository) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `UPDATE users SET last_login_at = $2, updated_at = $2 WHERE id = $1`
	if _, err := r.db.Exec(ctx, query, id, at); err != nil {
		return fmt.Errorf("failed to touch last login: %w", err)
	}
	return nil
}

func (r *PostgresRepository) scanOne(row pgx.Row) (User, error) {
	u, err := r.scanOneErr(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

func (r *PostgresRepository) scanOneErr(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.Phone, &u.AvatarURL, &u.PasswordHash,
		&u.Status, &u.EmailVerified, &u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt,
	)
	return u, err
}

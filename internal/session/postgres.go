package session

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

// PostgresRepository は sessions テーブルに対する Repository 実装です。
type PostgresRepository struct {
	db *database.Connection
}

// NewPostgresRepository は PostgresRepository を作成します。
func NewPostgresRepository(db *database.Connection) *PostgresRepository {
	return &PostgresRepository{
		db: db,
	}
}

func (r *PostgresRepository) Create(ctx context.Context, s Session) (Session, error) {
	query := `INSERT INTO sessions (id, user_id, ip, user_agent, created_at, expires_at)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING id, user_id, ip, user_agent, created_at, expires_at`

	var saved Session
	err := r.db.QueryRow(ctx, query,
		s.ID, s.UserID, s.IP, s.UserAgent, s.CreatedAt, s.ExpiresAt,
	).Scan(&saved.ID, &saved.UserID, &saved.IP, &saved.UserAgent, &saved.CreatedAt, &saved.ExpiresAt)
	if err != nil {
		return Session{}, fmt.Errorf("failed to create session: %w", err)
	}
	return saved, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Session, error) {
	query := `SELECT id, user_id, ip, user_agent, created_at, expires_at
			  FROM sessions WHERE id = $1`

	var s Session
	err := r.db.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.UserID, &s.IP, &s.UserAgent, &s.CreatedAt, &s.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &s, nil
}

// Delete は指定セッションを削除します。レコードが存在しなくてもエラーにしません。
func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpired は有効期限が before より前のセッションを一括削除し、件数を返します。
func (r *PostgresRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE expires_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}

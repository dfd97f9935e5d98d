// Package user はユーザーのモデルと永続化を提供します。
package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound はユーザーが存在しないことを表します。
var ErrNotFound = errors.New("user not found")

// Status はアカウントの状態を表します。
// 認証およびセッション維持が許されるのは StatusActive のみです。
type Status string

const (
	StatusActive      Status = "ACTIVE"
	StatusSuspended   Status = "SUSPENDED"
	StatusBanned      Status = "BANNED"
	StatusDeactivated Status = "DEACTIVATED"
)

// User は保存済みユーザーを表します。
type User struct {
	ID            uuid.UUID
	Name          string
	Email         string
	Phone         *string
	AvatarURL     *string
	PasswordHash  string
	Status        Status
	EmailVerified bool
	LastLoginAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Repository はユーザーの永続化操作を定義します。
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	Create(ctx context.Context, u User) (User, error)
	TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

// NormalizeEmail はメールアドレスを検索・保存用の正規形（小文字）に変換します。
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Package session はDBに裏付けられたセッションのライフサイクルを管理します。
//
// クッキー値はセッションレコードのIDそのものであり、クライアントが保持する唯一の
// 外部参照です。セッションは store に存在し、かつ有効期限が未来である場合のみ有効です。
package session

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Duration はセッションの有効期間です（作成時刻から30日）。
const Duration = 30 * 24 * time.Hour

// Session はサーバー側のセッションレコードを表します。
type Session struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	IP        *string
	UserAgent *string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired は有効期限が経過しているかを返します。
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

// Repository はセッションの永続化操作を定義します。
type Repository interface {
	Create(ctx context.Context, s Session) (Session, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Session, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/launchbase/internal/logger"
	"github.com/yourusername/launchbase/internal/user"
)

// Store はセッションとユーザーの参照を組み合わせたセッション操作を提供します。
// クッキーの読み書きはハンドラー側の責務で、Store はセッションIDを明示的に受け取ります。
type Store struct {
	sessions Repository
	users    user.Repository
	log      *logger.Logger
	nowFn    func() time.Time
}

// NewStore は Store を作成します。
func NewStore(sessions Repository, users user.Repository, log *logger.Logger) *Store {
	return &Store{
		sessions: sessions,
		users:    users,
		log:      log,
		nowFn:    time.Now,
	}
}

// Create は新しいセッションを作成します。有効期限は現在時刻 + 30日です。
func (s *Store) Create(ctx context.Context, userID uuid.UUID, ip, userAgent *string) (Session, error) {
	now := s.nowFn()
	return s.sessions.Create(ctx, Session{
		ID:        uuid.New(),
		UserID:    userID,
		IP:        ip,
		UserAgent: userAgent,
		CreatedAt: now,
		ExpiresAt: now.Add(Duration),
	})
}

// Get はセッションを取得します。存在しない・期限切れの場合は nil を返します。
// 期限切れのレコードはその場で削除します（ベストエフォート）。
func (s *Store) Get(ctx context.Context, sessionID uuid.UUID) (*Session, error) {
	sess, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, nil
	}

	if sess.Expired(s.nowFn()) {
		s.deleteQuietly(ctx, sessionID)
		return nil, nil
	}

	return sess, nil
}

// Delete はセッションを削除します。二重に呼んでもエラーにしません。
func (s *Store) Delete(ctx context.Context, sessionID uuid.UUID) error {
	return s.sessions.Delete(ctx, sessionID)
}

// ResolveUser はセッションからユーザーを解決します。
// ユーザーが存在しない、または ACTIVE でない場合はセッションを削除して nil を返します。
// 成功時は最終ログイン時刻を更新します（失敗してもログのみ、本処理は進めます）。
func (s *Store) ResolveUser(ctx context.Context, sessionID uuid.UUID) (*user.User, error) {
	sess, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, nil
	}

	u, err := s.users.GetByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			// セッションがユーザーのいない状態で残っている。自己修復として削除する。
			s.deleteQuietly(ctx, sessionID)
			return nil, nil
		}
		return nil, err
	}

	if u.Status != user.StatusActive {
		s.deleteQuietly(ctx, sessionID)
		return nil, nil
	}

	// 最終ログインの更新は check-then-touch がアトミックでなくてよい。
	// 同一セッションの並行リクエストは last-write-wins で構わない。
	if err := s.users.TouchLastLogin(ctx, u.ID, s.nowFn()); err != nil {
		s.log.Warn("failed to touch last login", "userId", u.ID.String(), "error", err)
	}

	return &u, nil
}

// CleanupExpired は期限切れセッションを一括削除し、削除件数を返します。
// リクエスト経路の外でスケジュール実行される想定です。
func (s *Store) CleanupExpired(ctx context.Context) (int64, error) {
	return s.sessions.DeleteExpired(ctx, s.nowFn())
}

func (s *Store) deleteQuietly(ctx context.Context, sessionID uuid.UUID) {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		s.log.Warn("failed to delete stale session", "sessionId", sessionID.String(), "error", err)
	}
}

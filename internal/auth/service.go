// Package auth は認証のサービス層とHTTPハンドラーを提供します。
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/launchbase/internal/logger"
	"github.com/yourusername/launchbase/internal/password"
	"github.com/yourusername/launchbase/internal/session"
	"github.com/yourusername/launchbase/internal/user"
)

// Mailer は認証イベントの通知メールを送信します。
// 送信は常にベストエフォートで、失敗してもリクエスト処理には影響しません。
type Mailer interface {
	SendAccountCreated(ctx context.Context, to, name string)
	SendLoginNotification(ctx context.Context, to, name, ip, userAgent string)
}

// NopMailer は何も送信しない Mailer です。
type NopMailer struct{}

func (NopMailer) SendAccountCreated(context.Context, string, string) {}

func (NopMailer) SendLoginNotification(context.Context, string, string, string, string) {}

// RegisterInput は登録リクエストの入力です。
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    *string
}

// Result は登録・ログイン成功時の結果です。
type Result struct {
	User    user.User
	Session session.Session
}

// Service は資格情報の検証とセッション発行を編成します。
type Service struct {
	users    user.Repository
	sessions *session.Store
	mailer   Mailer
	log      *logger.Logger
	nowFn    func() time.Time
}

// NewService は Service を作成します。mailer が nil の場合は送信しません。
func NewService(users user.Repository, sessions *session.Store, mailer Mailer, log *logger.Logger) *Service {
	if mailer == nil {
		mailer = NopMailer{}
	}
	return &Service{
		users:    users,
		sessions: sessions,
		mailer:   mailer,
		log:      log,
		nowFn:    time.Now,
	}
}

// Register は新規ユーザーを作成し、セッションを発行します。
// 正規化済みメールアドレスが既に存在する場合は KindConflict のエラーを返します。
func (s *Service) Register(ctx context.Context, in RegisterInput, ip, userAgent *string) (*Result, error) {
	email := user.NormalizeEmail(in.Email)

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, user.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	hash, err := password.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.nowFn()
	created, err := s.users.Create(ctx, user.User{
		ID:           uuid.New(),
		Name:         in.Name,
		Email:        email,
		Phone:        in.Phone,
		PasswordHash: hash,
		Status:       user.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	sess, err := s.sessions.Create(ctx, created.ID, ip, userAgent)
	if err != nil {
		return nil, err
	}

	s.mailer.SendAccountCreated(ctx, created.Email, created.Name)

	return &Result{User: created, Session: sess}, nil
}

// Login は資格情報を検証し、セッションを発行します。
// メールアドレス不明とパスワード不一致は呼び出し側から区別できません。
func (s *Service) Login(ctx context.Context, email, plaintext string, ip, userAgent *string) (*Result, error) {
	u, err := s.users.GetByEmail(ctx, user.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if u.Status != user.StatusActive {
		return nil, ErrAccountSuspended
	}

	if u.PasswordHash == "" || !password.Verify(plaintext, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	sess, err := s.sessions.Create(ctx, u.ID, ip, userAgent)
	if err != nil {
		return nil, err
	}

	if err := s.users.TouchLastLogin(ctx, u.ID, s.nowFn()); err != nil {
		s.log.Warn("failed to touch last login", "userId", u.ID.String(), "error", err)
	}

	s.mailer.SendLoginNotification(ctx, u.Email, u.Name, derefOr(ip, "unknown"), derefOr(userAgent, ""))

	return &Result{User: u, Session: sess}, nil
}

// Logout は現在のセッションを削除します。セッションが存在しなくても失敗しません。
func (s *Service) Logout(ctx context.Context, sessionID uuid.UUID) {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		s.log.Warn("failed to delete session on logout", "sessionId", sessionID.String(), "error", err)
	}
}

func derefOr(v *string, fallback string) string {
	if v == nil {
		return fallback
	}
	return *v
}

package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/launchbase/internal/logger"
	"github.com/yourusername/launchbase/internal/password"
	"github.com/yourusername/launchbase/internal/session"
	"github.com/yourusername/launchbase/internal/user"
)

type memSessionRepo struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]session.Session
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{sessions: make(map[uuid.UUID]session.Session)}
}

func (r *memSessionRepo) Create(_ context.Context, s session.Session) (session.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s
	return s, nil
}

func (r *memSessionRepo) GetByID(_ context.Context, id uuid.UUID) (*session.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r *memSessionRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

func (r *memSessionRepo) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for id, s := range r.sessions {
		if s.ExpiresAt.Before(before) {
			delete(r.sessions, id)
			count++
		}
	}
	return count, nil
}

type memUserRepo struct {
	mu      sync.Mutex
	byEmail map[string]user.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byEmail: make(map[string]user.User)}
}

func (r *memUserRepo) GetByID(_ context.Context, id uuid.UUID) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byEmail[user.NormalizeEmail(email)]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (r *memUserRepo) Create(_ context.Context, u user.User) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u.Email = user.NormalizeEmail(u.Email)
	r.byEmail[u.Email] = u
	return u, nil
}

func (r *memUserRepo) TouchLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	return nil
}

func newTestService(t *testing.T) (*Service, *memUserRepo, *memSessionRepo) {
	t.Helper()
	users := newMemUserRepo()
	sessions := newMemSessionRepo()
	log := logger.New(0)
	store := session.NewStore(sessions, users, log)
	return NewService(users, store, nil, log), users, sessions
}

func TestServiceRegister(t *testing.T) {
	ctx := context.Background()
	svc, _, sessions := newTestService(t)

	result, err := svc.Register(ctx, RegisterInput{
		Name:     "Taro",
		Email:    "Taro@Example.com",
		Password: "secret password",
	}, nil, nil)
	require.NoError(t, err)

	// メールアドレスは正規化して保存される
	assert.Equal(t, "taro@example.com", result.User.Email)
	assert.Equal(t, user.StatusActive, result.User.Status)
	assert.True(t, password.Verify("secret password", result.User.PasswordHash))
	assert.Contains(t, sessions.sessions, result.Session.ID)
	assert.Equal(t, result.User.ID, result.Session.UserID)
}

func TestServiceRegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	_, err := svc.Register(ctx, RegisterInput{Name: "A", Email: "User@x.com", Password: "password123"}, nil, nil)
	require.NoError(t, err)

	// 大文字小文字が違っても同じメールアドレスとして扱う
	_, err = svc.Register(ctx, RegisterInput{Name: "B", Email: "user@x.com", Password: "password456"}, nil, nil)
	require.Error(t, err)

	var authErr *Error
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, KindConflict, authErr.Kind)
}

func TestServiceLogin(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	registered, err := svc.Register(ctx, RegisterInput{Name: "Taro", Email: "taro@example.com", Password: "secret password"}, nil, nil)
	require.NoError(t, err)

	result, err := svc.Login(ctx, "TARO@example.com", "secret password", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, result.User.ID)
	assert.NotEqual(t, registered.Session.ID, result.Session.ID)
}

func TestServiceLoginFailuresAreIndistinguishable(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	_, err := svc.Register(ctx, RegisterInput{Name: "Taro", Email: "taro@example.com", Password: "secret password"}, nil, nil)
	require.NoError(t, err)

	// 未知のメールアドレスとパスワード不一致は同一のエラーになる
	_, unknownErr := svc.Login(ctx, "nobody@example.com", "secret password", nil, nil)
	_, badPassErr := svc.Login(ctx, "taro@example.com", "wrong password", nil, nil)

	require.Error(t, unknownErr)
	require.Error(t, badPassErr)
	assert.Equal(t, unknownErr, badPassErr)
	assert.Equal(t, unknownErr.Error(), badPassErr.Error())

	var authErr *Error
	require.ErrorAs(t, unknownErr, &authErr)
	assert.Equal(t, KindInvalidCredentials, authErr.Kind)
}

func TestServiceLoginSuspendedAccount(t *testing.T) {
	ctx := context.Background()
	svc, users, _ := newTestService(t)

	registered, err := svc.Register(ctx, RegisterInput{Name: "Taro", Email: "taro@example.com", Password: "secret password"}, nil, nil)
	require.NoError(t, err)

	u := registered.User
	u.Status = user.StatusSuspended
	users.byEmail[u.Email] = u

	_, err = svc.Login(ctx, "taro@example.com", "secret password", nil, nil)
	require.Error(t, err)

	var authErr *Error
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, KindAccountSuspended, authErr.Kind)
}

func TestServiceLogoutMissingSession(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	// セッションが存在しなくてもエラーにならない
	svc.Logout(ctx, uuid.New())
}

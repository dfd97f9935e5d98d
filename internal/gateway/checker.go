package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/launchbase/internal/session"
)

// StoreChecker はプロセス内のセッションストアで検証する SessionChecker です。
type StoreChecker struct {
	store *session.Store
}

// NewStoreChecker は StoreChecker を作成します。
func NewStoreChecker(store *session.Store) *StoreChecker {
	return &StoreChecker{store: store}
}

// Check はセッションを解決し、ACTIVE なユーザーに紐付いているかを返します。
func (sc *StoreChecker) Check(ctx context.Context, sessionID string) (bool, error) {
	id, err := uuid.Parse(sessionID)
	if err != nil {
		// 形式不正のクッキーは無効扱い（エラーではない）
		return false, nil
	}
	u, err := sc.store.ResolveUser(ctx, id)
	if err != nil {
		return false, err
	}
	return u != nil, nil
}

// HTTPChecker はセッション確認エンドポイントを呼び出して検証する SessionChecker です。
// エッジをアプリ本体と別プロセスに置く構成で使います。
type HTTPChecker struct {
	endpoint string // セッション確認エンドポイントのURL
	client   *http.Client
}

// NewHTTPChecker は HTTPChecker を作成します。
func NewHTTPChecker(endpoint string) *HTTPChecker {
	return &HTTPChecker{
		endpoint: endpoint,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// Check は元リクエストのクッキーを転送してセッション確認エンドポイントを呼びます。
// 200 以外はすべて無効扱いです。
func (hc *HTTPChecker) Check(ctx context.Context, sessionID string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, hc.endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("failed to build session check request: %w", err)
	}
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: sessionID})

	resp, err := hc.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("session check request failed: %w", err)
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK, nil
}

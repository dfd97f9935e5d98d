// Package gateway はルートハンドラーより前に実行されるリクエスト許可判定を提供します。
//
// 公開ルート以外はセッションの有効性を検証し、未認証・無効の場合は
// ランディングサイトのログイン画面へリダイレクトします。検証そのものが
// 失敗した場合も「無効」と同じ扱い（フェイルクローズ）です。
package gateway

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/launchbase/internal/logger"
	"github.com/yourusername/launchbase/internal/session"
)

// 認証なしで通過できるルート。
var (
	publicRoutes = []string{
		"/api/auth/login",
		"/api/auth/register",
		"/api/auth/session",
		"/health",
	}
	publicPrefixes = []string{
		"/api/auth",
	}
)

// SessionChecker はクッキー値の指すセッションが有効かを判定します。
type SessionChecker interface {
	Check(ctx context.Context, sessionID string) (bool, error)
}

// Gatekeeper はエッジでのリクエスト許可判定を行います。
type Gatekeeper struct {
	checker    SessionChecker
	landingURL string // ログイン画面を持つランディングサイトのベースURL
	appURL     string // リダイレクト後に戻るためのメインアプリURL
	cookieOpts session.CookieOptions
	log        *logger.Logger
}

// New は Gatekeeper を作成します。
func New(checker SessionChecker, landingURL, appURL string, cookieOpts session.CookieOptions, log *logger.Logger) *Gatekeeper {
	return &Gatekeeper{
		checker:    checker,
		landingURL: strings.TrimRight(landingURL, "/"),
		appURL:     strings.TrimRight(appURL, "/"),
		cookieOpts: cookieOpts,
		log:        log,
	}
}

// Middleware はリクエスト許可判定のミドルウェアを返します。
// クッキーの消去以外でアプリケーションデータを変更することはありません。
func (g *Gatekeeper) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path

		// 1. 公開ルートはそのまま通す
		if isPublic(path) {
			c.Next()
			return
		}

		// 2. クッキーが無ければログイン画面へ
		sessionID, err := c.Cookie(session.CookieName)
		if err != nil || sessionID == "" {
			g.redirectToLogin(c)
			return
		}

		// 3. セッションを検証する。検証呼び出し自体の失敗も無効と同じ扱い。
		valid, err := g.checker.Check(c.Request.Context(), sessionID)
		if err != nil {
			g.log.Warn("session check failed", "path", path, "error", err)
			valid = false
		}
		if !valid {
			session.ClearCookie(c, g.cookieOpts)
			g.redirectToLogin(c)
			return
		}

		// 4. 認証済みでルートに来た場合はダッシュボードへ
		if path == "/" {
			c.Redirect(http.StatusFound, "/dashboard")
			c.Abort()
			return
		}

		// 5. それ以外は通す
		c.Next()
	}
}

func (g *Gatekeeper) redirectToLogin(c *gin.Context) {
	target := g.appURL + c.Request.URL.RequestURI()

	loginURL := g.landingURL + "/login?" + url.Values{"redirect": {target}}.Encode()
	c.Redirect(http.StatusFound, loginURL)
	c.Abort()
}

func isPublic(path string) bool {
	for _, route := range publicRoutes {
		if path == route {
			return true
		}
	}
	for _, prefix := range publicPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

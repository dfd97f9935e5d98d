package session

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// CookieName はセッションIDを保持するクッキー名です。
const CookieName = "session_id"

// CookieOptions はクッキー属性の環境依存部分を表します。
type CookieOptions struct {
	Secure bool // 本番（release モード）では true
}

// IssueCookie はセッションIDをクッキーとして発行します。
// HttpOnly・SameSite=Lax・パスはオリジン全体、有効期限はセッションと同じです。
func IssueCookie(c *gin.Context, s Session, opts CookieOptions) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     CookieName,
		Value:    s.ID.String(),
		Path:     "/",
		Expires:  s.ExpiresAt,
		MaxAge:   int(time.Until(s.ExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie はセッションクッキーを失効させます。
// 対応するレコードが存在したかどうかに関わらず呼び出せます。
func ClearCookie(c *gin.Context, opts CookieOptions) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

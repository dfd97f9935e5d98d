package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/launchbase/internal/logger"
	"github.com/yourusername/launchbase/internal/session"
)

type stubChecker struct {
	valid bool
	err   error
}

func (s *stubChecker) Check(context.Context, string) (bool, error) {
	return s.valid, s.err
}

func newTestGateway(checker SessionChecker) *gin.Engine {
	gin.SetMode(gin.TestMode)

	gk := New(checker, "http://landing.local", "http://app.local", session.CookieOptions{}, logger.New(0))

	router := gin.New()
	router.Use(gk.Middleware())
	ok := func(c *gin.Context) { c.String(http.StatusOK, "ok") }
	router.POST("/api/auth/login", ok)
	router.GET("/dashboard", ok)
	router.GET("/reports", ok)
	router.GET("/", ok)
	return router
}

func doRequest(router *gin.Engine, method, path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func validCookie() *http.Cookie {
	return &http.Cookie{Name: session.CookieName, Value: "11111111-1111-1111-1111-111111111111"}
}

func TestGatekeeperPublicRoute(t *testing.T) {
	router := newTestGateway(&stubChecker{})

	rec := doRequest(router, http.MethodPost, "/api/auth/login", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("public route status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestGatekeeperNoCookieRedirects(t *testing.T) {
	router := newTestGateway(&stubChecker{valid: true})

	rec := doRequest(router, http.MethodGet, "/reports?page=2", nil)
	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusFound)
	}

	location := rec.Header().Get("Location")
	if !strings.HasPrefix(location, "http://landing.local/login?") {
		t.Fatalf("unexpected redirect target: %q", location)
	}

	// 元のURLが戻り先として保持される
	parsed, err := url.Parse(location)
	if err != nil {
		t.Fatalf("failed to parse location: %v", err)
	}
	if got := parsed.Query().Get("redirect"); got != "http://app.local/reports?page=2" {
		t.Fatalf("redirect param = %q", got)
	}
}

func TestGatekeeperInvalidSessionClearsCookie(t *testing.T) {
	router := newTestGateway(&stubChecker{valid: false})

	rec := doRequest(router, http.MethodGet, "/reports", validCookie())
	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusFound)
	}
	if !strings.HasPrefix(rec.Header().Get("Location"), "http://landing.local/login?") {
		t.Fatalf("unexpected redirect target: %q", rec.Header().Get("Location"))
	}

	var cleared bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.CookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Fatal("session cookie should be cleared on invalid session")
	}
}

func TestGatekeeperCheckErrorFailsClosed(t *testing.T) {
	router := newTestGateway(&stubChecker{valid: true, err: errors.New("store unreachable")})

	rec := doRequest(router, http.MethodGet, "/reports", validCookie())
	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want %d (fail closed)", rec.Code, http.StatusFound)
	}
}

func TestGatekeeperRootRedirectsToDashboard(t *testing.T) {
	router := newTestGateway(&stubChecker{valid: true})

	rec := doRequest(router, http.MethodGet, "/", validCookie())
	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusFound)
	}
	if got := rec.Header().Get("Location"); got != "/dashboard" {
		t.Fatalf("Location = %q, want /dashboard", got)
	}
}

func TestGatekeeperValidSessionPassesThrough(t *testing.T) {
	router := newTestGateway(&stubChecker{valid: true})

	rec := doRequest(router, http.MethodGet, "/reports", validCookie())
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestHTTPCheckerForwardsCookie(t *testing.T) {
	var gotCookie string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie(session.CookieName); err == nil {
			gotCookie = c.Value
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	checker := NewHTTPChecker(ts.URL + "/api/auth/session")
	valid, err := checker.Check(context.Background(), "abc-123")
	if err != nil {
		t.Fatalf("Check returned error: %v", err)
	}
	if !valid {
		t.Fatal("200 response should be valid")
	}
	if gotCookie != "abc-123" {
		t.Fatalf("forwarded cookie = %q, want abc-123", gotCookie)
	}
}

func TestHTTPCheckerNon200IsInvalid(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer ts.Close()

	checker := NewHTTPChecker(ts.URL + "/api/auth/session")
	valid, err := checker.Check(context.Background(), "abc-123")
	if err != nil {
		t.Fatalf("Check returned error: %v", err)
	}
	if valid {
		t.Fatal("401 response should be invalid")
	}
}

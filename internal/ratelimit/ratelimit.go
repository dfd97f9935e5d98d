// Package ratelimit は認証エンドポイントを守るインメモリのレート制限を提供します。
//
// 単一プロセス前提の実装です。水平スケール時は制限がインスタンス単位になるため、
// グローバルな制限が必要になったら Redis ベースの実装に差し替えてください。
package ratelimit

import (
	"net/http"
	"strings"
	"sync"
	"time"
)

// DefaultCleanupInterval は期限切れエントリ掃除の既定間隔です。
const DefaultCleanupInterval = 60 * time.Second

// よく使う制限値のプリセット。
var (
	// Auth は認証エンドポイント用（IPごとに 10 リクエスト / 60 秒）です。
	Auth = Config{MaxRequests: 10, WindowSeconds: 60}
	// API は一般APIエンドポイント用（IPごとに 60 リクエスト / 60 秒）です。
	API = Config{MaxRequests: 60, WindowSeconds: 60}
)

// Config はウィンドウあたりの上限を表します。
type Config struct {
	MaxRequests   int // ウィンドウ内に許可する最大リクエスト数
	WindowSeconds int // ウィンドウ秒数
}

// Result はレート制限判定の結果です。
type Result struct {
	Allowed           bool
	Remaining         int
	ResetAt           time.Time
	RetryAfterSeconds int
}

type entry struct {
	count   int
	resetAt time.Time
}

// Limiter はキーごとのスライディングウィンドウカウンタです。
// テストから独立したインスタンスを作れるよう、隠れたシングルトンにはしていません。
type Limiter struct {
	mu      sync.Mutex
	entries map[string]*entry

	done   chan struct{}
	once   sync.Once
	nowFn  func() time.Time
	ticker *time.Ticker
}

// New は Limiter を作成し、バックグラウンドの掃除を開始します。
// 使い終わったら Stop を呼んでください。
func New(cleanupInterval time.Duration) *Limiter {
	if cleanupInterval <= 0 {
		cleanupInterval = DefaultCleanupInterval
	}
	l := &Limiter{
		entries: make(map[string]*entry),
		done:    make(chan struct{}),
		nowFn:   time.Now,
		ticker:  time.NewTicker(cleanupInterval),
	}
	go l.cleanupLoop()
	return l
}

// Check はキーに対する1回のリクエストを判定します。
// エントリが無い、またはウィンドウが経過していれば新しいウィンドウを開始します。
func (l *Limiter) Check(key string, cfg Config) Result {
	now := l.now()
	window := time.Duration(cfg.WindowSeconds) * time.Second

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok || now.After(e.resetAt) {
		resetAt := now.Add(window)
		l.entries[key] = &entry{count: 1, resetAt: resetAt}
		return Result{
			Allowed:   true,
			Remaining: cfg.MaxRequests - 1,
			ResetAt:   resetAt,
		}
	}

	e.count++

	if e.count > cfg.MaxRequests {
		retryAfter := int((e.resetAt.Sub(now) + time.Second - 1) / time.Second)
		if retryAfter < 1 {
			retryAfter = 1
		}
		return Result{
			Allowed:           false,
			Remaining:         0,
			ResetAt:           e.resetAt,
			RetryAfterSeconds: retryAfter,
		}
	}

	return Result{
		Allowed:   true,
		Remaining: cfg.MaxRequests - e.count,
		ResetAt:   e.resetAt,
	}
}

// Stop は掃除用のタイマーを停止します。複数回呼んでも安全です。
func (l *Limiter) Stop() {
	l.once.Do(func() {
		l.ticker.Stop()
		close(l.done)
	})
}

func (l *Limiter) cleanupLoop() {
	for {
		select {
		case <-l.done:
			return
		case <-l.ticker.C:
			l.evictExpired()
		}
	}
}

// evictExpired はウィンドウが経過したエントリを削除してメモリを抑えます。
// リクエスト経路の Check と同じロックを短時間だけ取ります。
func (l *Limiter) evictExpired() {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, e := range l.entries {
		if now.After(e.resetAt) {
			delete(l.entries, key)
		}
	}
}

func (l *Limiter) now() time.Time {
	return l.nowFn()
}

// ClientIP はリクエストからクライアントIPを導出します。
// X-Forwarded-For の先頭 → X-Real-IP → "unknown" の順で解決します。
func ClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	return "unknown"
}

// Package main はAPIサーバーのエントリーポイントです。
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/launchbase/internal/auth"
	"github.com/yourusername/launchbase/internal/config"
	"github.com/yourusername/launchbase/internal/database"
	"github.com/yourusername/launchbase/internal/gateway"
	"github.com/yourusername/launchbase/internal/logger"
	"github.com/yourusername/launchbase/internal/mailer"
	"github.com/yourusername/launchbase/internal/ratelimit"
	"github.com/yourusername/launchbase/internal/session"
	"github.com/yourusername/launchbase/internal/user"
)

func main() {
	// 設定の読み込み
	cfg, err := config.Load()
	if err != nil {
		logger.New(0).Fatal("failed to load config", "error", err)
	}

	log := logger.New(cfg.LogLevel)

	// Ginのモードを設定
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// データベース接続（起動時にマイグレーションを適用）
	db, err := database.New(ctx, cfg.DatabaseDSN)
	if err != nil {
		log.Fatal("failed to connect to database", "error", err)
	}
	defer db.Close()

	// 依存の組み立て
	users := user.NewPostgresRepository(db)
	sessions := session.NewStore(session.NewPostgresRepository(db), users, log)
	cookieOpts := session.CookieOptions{Secure: cfg.GinMode == gin.ReleaseMode}

	limiter := ratelimit.New(ratelimit.DefaultCleanupInterval)
	defer limiter.Stop()

	mail := mailer.New(cfg.ResendAPIKey, cfg.ResendFromEmail, log)
	authService := auth.NewService(users, sessions, mail, log)

	authLimit := ratelimit.Config{
		MaxRequests:   cfg.AuthRateMax,
		WindowSeconds: cfg.AuthRateWindowSeconds,
	}
	authHandler := auth.NewHandler(authService, sessions, limiter, authLimit, cookieOpts, log)

	// 定期掃除ジョブの起動
	manager, err := setupJobs(cfg, sessions, log)
	if err != nil {
		log.Fatal("failed to setup cleanup jobs", "error", err)
	}
	manager.Start()
	defer manager.Shutdown(context.Background())

	// Ginルーターの初期化（デフォルトミドルウェア: Logger, Recovery）
	router := gin.Default()

	// CORSミドルウェアの設定
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = strings.Split(cfg.CORSAllowedOrigins, ",")
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{
		"Origin",
		"Content-Type",
		"Accept",
		"Authorization",
	}
	// クライアントが再試行までの秒数を読み取れるように公開
	corsConfig.ExposeHeaders = []string{"Retry-After"}
	router.Use(cors.New(corsConfig))

	// ゲートキーパーはルートハンドラーより前に実行する
	gatekeeper := gateway.New(gateway.NewStoreChecker(sessions), cfg.LandingURL, cfg.MainAppURL, cookieOpts, log)
	router.Use(gatekeeper.Middleware())

	// ルーティングの設定
	setupRoutes(router, authHandler, manager)

	// サーバーの起動
	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Info("starting API server", "addr", addr, "mode", cfg.GinMode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to start server", "error", err)
		}
	}()

	<-ctx.Done()

	// 終了シグナル受信後、処理中のリクエストを待って停止する
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", "error", err)
	}
	log.Info("server stopped")
}

// handleHealth はヘルスチェックエンドポイントのハンドラーです。
func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "launchbase-api",
		"version": "0.1.0",
	})
}

// handleDashboard は認証済みユーザー向けダッシュボードシェルのハンドラーです。
// セッション検証はゲートキーパーが済ませています。
func handleDashboard(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"page": "dashboard",
		},
	})
}

// setupRoutes は API グループと認証周りの配線を行います。
func setupRoutes(router *gin.Engine, authHandler *auth.Handler, manager jobRecorder) {
	// まずは誰でも叩けるヘルスチェックを登録
	router.GET("/health", handleHealth)

	api := router.Group("/api")
	{
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/logout", authHandler.Logout)
			authRoutes.GET("/session", authHandler.Session)
		}

		// /api/auth 以外はゲートキーパーが有効セッションを要求する
		api.GET("/jobs/cleanup", cleanupStatusHandler(manager))
	}

	router.GET("/dashboard", handleDashboard)
}

// Package main は初期データ投入用のCLIです。
//
// 管理者ユーザーが存在しない場合にのみ作成します。必要に応じて
// 参照データや初期設定の投入を追加してください。
package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/launchbase/internal/config"
	"github.com/yourusername/launchbase/internal/database"
	"github.com/yourusername/launchbase/internal/logger"
	"github.com/yourusername/launchbase/internal/password"
	"github.com/yourusername/launchbase/internal/user"
)

const (
	defaultAdminEmail = "admin@example.com"
	defaultAdminName  = "Admin User"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New(0).Fatal("failed to load config", "error", err)
	}
	log := logger.New(cfg.LogLevel)

	ctx := context.Background()
	db, err := database.New(ctx, cfg.DatabaseDSN)
	if err != nil {
		log.Fatal("failed to connect to database", "error", err)
	}
	defer db.Close()

	log.Info("starting database seeding")

	users := user.NewPostgresRepository(db)

	email := envOr("SEED_ADMIN_EMAIL", defaultAdminEmail)
	plaintext := os.Getenv("SEED_ADMIN_PASSWORD")
	if plaintext == "" {
		log.Fatal("SEED_ADMIN_PASSWORD is required")
	}

	if _, err := users.GetByEmail(ctx, email); err == nil {
		log.Info("admin user already exists, skipping", "email", user.NormalizeEmail(email))
		return
	} else if !errors.Is(err, user.ErrNotFound) {
		log.Fatal("failed to check existing user", "error", err)
	}

	hash, err := password.Hash(plaintext)
	if err != nil {
		log.Fatal("failed to hash password", "error", err)
	}

	now := time.Now()
	created, err := users.Create(ctx, user.User{
		ID:            uuid.New(),
		Name:          envOr("SEED_ADMIN_NAME", defaultAdminName),
		Email:         email,
		PasswordHash:  hash,
		Status:        user.StatusActive,
		EmailVerified: true,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		log.Fatal("failed to create admin user", "error", err)
	}

	log.Info("seeding completed", "email", created.Email)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

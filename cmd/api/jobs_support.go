package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"

	"github.com/yourusername/launchbase/internal/config"
	"github.com/yourusername/launchbase/internal/jobs"
	"github.com/yourusername/launchbase/internal/logger"
	"github.com/yourusername/launchbase/internal/session"
)

// jobRecorder は掃除実行記録の参照に必要な操作です。
type jobRecorder interface {
	LastRecord(ctx context.Context) (*jobs.Record, error)
}

func setupJobs(cfg *config.Config, sessions *session.Store, log *logger.Logger) (*jobs.Manager, error) {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, err
	}

	redisClient := redis.NewClient(opt)

	intervalMinutes := cfg.CleanupIntervalMinutes
	if intervalMinutes <= 0 {
		intervalMinutes = 60
	}
	interval := time.Duration(intervalMinutes) * time.Minute

	// 記録は少なくとも次の実行まで参照できるよう、間隔の数倍残す
	store := jobs.NewStore(redisClient, 24*time.Hour)
	return jobs.NewManager(cfg.RedisURL, interval, sessions, store, log)
}

// cleanupStatusHandler は直近のセッション掃除の結果を返すハンドラーです。
func cleanupStatusHandler(manager jobRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		record, err := manager.LastRecord(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error":   "掃除記録の取得に失敗しました",
			})
			return
		}
		if record == nil {
			c.JSON(http.StatusOK, gin.H{
				"success": true,
				"data":    nil,
				"message": "まだ実行されていません",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    record,
		})
	}
}

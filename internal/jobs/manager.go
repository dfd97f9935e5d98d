// Package jobs は期限切れセッションの定期掃除ジョブを管理します。
package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/yourusername/launchbase/internal/logger"
	"github.com/yourusername/launchbase/internal/session"
)

const (
	taskTypeSessionCleanup = "session:cleanup"

	queueMaintenance = "maintenance"
)

// Manager はジョブの定期実行と状態記録を担います。
type Manager struct {
	client    *asynq.Client
	server    *asynq.Server
	scheduler *asynq.Scheduler
	mux       *asynq.ServeMux
	store     *Store
	sessions  *session.Store
	log       *logger.Logger
}

// NewManager は Manager を初期化し、掃除タスクをスケジュールに登録します。
func NewManager(redisURL string, interval time.Duration, sessions *session.Store, store *Store, log *logger.Logger) (*Manager, error) {
	if sessions == nil {
		return nil, errors.New("sessions is nil")
	}
	if store == nil {
		return nil, errors.New("store is nil")
	}
	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := asynq.NewClient(opt)
	server := asynq.NewServer(
		opt,
		asynq.Config{
			Concurrency: 1,
			Queues: map[string]int{
				queueMaintenance: 1,
			},
		},
	)
	scheduler := asynq.NewScheduler(opt, nil)

	mux := asynq.NewServeMux()
	manager := &Manager{
		client:    client,
		server:    server,
		scheduler: scheduler,
		mux:       mux,
		store:     store,
		sessions:  sessions,
		log:       log,
	}
	mux.HandleFunc(taskTypeSessionCleanup, manager.handleCleanupTask)

	task := asynq.NewTask(taskTypeSessionCleanup, nil, asynq.Queue(queueMaintenance), asynq.MaxRetry(1))
	if _, err := scheduler.Register(fmt.Sprintf("@every %s", interval), task); err != nil {
		return nil, fmt.Errorf("failed to register cleanup schedule: %w", err)
	}

	return manager, nil
}

// Start はワーカーとスケジューラーをバックグラウンドで起動します。
func (m *Manager) Start() {
	go func() {
		if err := m.server.Run(m.mux); err != nil && err != asynq.ErrServerClosed {
			m.log.Error("asynq server stopped with error", "error", err)
		}
	}()
	go func() {
		if err := m.scheduler.Run(); err != nil {
			m.log.Error("asynq scheduler stopped with error", "error", err)
		}
	}()
}

// Shutdown はスケジューラー・サーバー・クライアントを閉じます。
func (m *Manager) Shutdown(ctx context.Context) error {
	m.scheduler.Shutdown()
	m.server.Shutdown()
	m.client.Close()
	return nil
}

// LastRecord は直近の掃除実行の記録を返します。
func (m *Manager) LastRecord(ctx context.Context) (*Record, error) {
	return m.store.GetLast(ctx)
}

func (m *Manager) handleCleanupTask(ctx context.Context, _ *asynq.Task) error {
	start := time.Now()
	deleted, err := m.sessions.CleanupExpired(ctx)

	record := &Record{
		Deleted:    deleted,
		RanAt:      start,
		DurationMS: time.Since(start).Milliseconds(),
	}
	if err != nil {
		record.Error = err.Error()
	}
	if storeErr := m.store.SetLast(ctx, record); storeErr != nil {
		m.log.Warn("failed to save cleanup record", "error", storeErr)
	}

	if err != nil {
		m.log.Error("session cleanup failed", "error", err)
		return err
	}

	m.log.Info("session cleanup completed", "deleted", deleted, "durationMs", record.DurationMS)
	return nil
}

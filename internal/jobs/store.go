package jobs

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const lastSweepKey = "session_cleanup:last"

// Store は掃除実行の記録を Redis に保存します。
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewStore は Store を作成します。
func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{
		rdb: rdb,
		ttl: ttl,
	}
}

// GetLast は直近の実行記録を取得します。記録が無い場合は nil を返します。
func (s *Store) GetLast(ctx context.Context) (*Record, error) {
	data, err := s.rdb.Get(ctx, lastSweepKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// SetLast は直近の実行記録を保存します。
func (s *Store) SetLast(ctx context.Context, record *Record) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, lastSweepKey, payload, s.ttl).Err()
}

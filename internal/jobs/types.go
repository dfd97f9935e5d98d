package jobs

import "time"

// Record は直近の掃除実行の結果を表します。
type Record struct {
	Deleted    int64     `json:"deleted"`
	RanAt      time.Time `json:"ranAt"`
	DurationMS int64     `json:"durationMs"`
	Error      string    `json:"error,omitempty"`
}

package model

import "time"

// Run statuses and kinds as stored in the run database.
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"

	RunKindFull    = "full"    // fetch + combine + group
	RunKindRefresh = "refresh" // combine + group over already-fetched files
)

// Run is one recorded execution of the pipeline or a subset of its stages.
type Run struct {
	ID         string         `json:"id"`
	Kind       string         `json:"kind"`
	Source     string         `json:"source"`
	Status     string         `json:"status"`
	Error      string         `json:"error,omitempty"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt *time.Time     `json:"finished_at,omitempty"`
	Stages     []StageMetrics `json:"stages,omitempty"`
}

// StageMetrics records one stage of a run: fetch, combine or group.
type StageMetrics struct {
	RunID      string     `json:"run_id"`
	Stage      string     `json:"stage"`
	Status     string     `json:"status"`
	RecordsIn  int64      `json:"records_in"`
	RecordsOut int64      `json:"records_out"`
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// Duration is the stage wall time, zero while the stage is still running.
func (s StageMetrics) Duration() time.Duration {
	if s.FinishedAt == nil {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

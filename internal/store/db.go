package store

import (
	"database/sql"
	"time"

	"autosched-insights/internal/model"

	_ "github.com/mattn/go-sqlite3"
)

var db *sql.DB

// Initialize DB connection
func InitDB(dbPath string) error {
	var err error
	db, err = sql.Open("sqlite3", dbPath)
	if err != nil {
		return err
	}

	// Create tables if not exists
	runTable := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		kind TEXT,
		source TEXT,
		status TEXT,
		error TEXT,
		started_at DATETIME,
		finished_at DATETIME
	);
	`
	stageTable := `
	CREATE TABLE IF NOT EXISTS run_stages (
		run_id TEXT,
		stage TEXT,
		status TEXT,
		records_in INTEGER,
		records_out INTEGER,
		error TEXT,
		started_at DATETIME,
		finished_at DATETIME,
		PRIMARY KEY (run_id, stage)
	);
	`

	if _, err := db.Exec(runTable); err != nil {
		return err
	}
	if _, err := db.Exec(stageTable); err != nil {
		return err
	}

	return nil
}

// Close releases the DB connection.
func Close() error {
	if db == nil {
		return nil
	}
	return db.Close()
}

// SaveRun stores a new pipeline run
func SaveRun(run model.Run) error {
	_, err := db.Exec(`INSERT INTO runs (id, kind, source, status, error, started_at) VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.Kind, run.Source, run.Status, run.Error, run.StartedAt.UTC())
	return err
}

// UpdateRunStatus updates run status, recording the failure message and
// finish time where they apply
func UpdateRunStatus(runID string, status string, runErr error) error {
	msg := ""
	if runErr != nil {
		msg = runErr.Error()
	}
	if status == model.RunStatusCompleted || status == model.RunStatusFailed {
		now := time.Now().UTC()
		_, err := db.Exec(`UPDATE runs SET status = ?, error = ?, finished_at = ? WHERE id = ?`,
			status, msg, now, runID)
		return err
	}
	_, err := db.Exec(`UPDATE runs SET status = ?, error = ? WHERE id = ?`, status, msg, runID)
	return err
}

// SaveStage inserts or replaces one stage record of a run
func SaveStage(s model.StageMetrics) error {
	var finished interface{}
	if s.FinishedAt != nil {
		finished = s.FinishedAt.UTC()
	}
	_, err := db.Exec(`INSERT OR REPLACE INTO run_stages
		(run_id, stage, status, records_in, records_out, error, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.RunID, s.Stage, s.Status, s.RecordsIn, s.RecordsOut, s.Error, s.StartedAt.UTC(), finished)
	return err
}

// ListRuns returns the most recent runs, newest first
func ListRuns(limit int) ([]model.Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Query(`SELECT id, kind, source, status, error, started_at, finished_at
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun fetches one run with its stages
func GetRun(runID string) (*model.Run, error) {
	row := db.QueryRow(`SELECT id, kind, source, status, error, started_at, finished_at
		FROM runs WHERE id = ?`, runID)
	run, err := scanRun(row)
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(`SELECT run_id, stage, status, records_in, records_out, error, started_at, finished_at
		FROM run_stages WHERE run_id = ? ORDER BY started_at`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var s model.StageMetrics
		var finished sql.NullTime
		if err := rows.Scan(&s.RunID, &s.Stage, &s.Status, &s.RecordsIn, &s.RecordsOut, &s.Error, &s.StartedAt, &finished); err != nil {
			return nil, err
		}
		if finished.Valid {
			t := finished.Time
			s.FinishedAt = &t
		}
		run.Stages = append(run.Stages, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &run, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (model.Run, error) {
	var run model.Run
	var finished sql.NullTime
	if err := row.Scan(&run.ID, &run.Kind, &run.Source, &run.Status, &run.Error, &run.StartedAt, &finished); err != nil {
		return model.Run{}, err
	}
	if finished.Valid {
		t := finished.Time
		run.FinishedAt = &t
	}
	return run, nil
}

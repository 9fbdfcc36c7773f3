package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"autosched-insights/internal/model"
)

func initTestDB(t *testing.T) {
	t.Helper()
	require.NoError(t, InitDB(filepath.Join(t.TempDir(), "runs.db")))
	t.Cleanup(func() { Close() })
}

func TestSaveAndGetRun(t *testing.T) {
	initTestDB(t)

	run := model.Run{
		ID:        "run-1",
		Kind:      model.RunKindFull,
		Source:    "json",
		Status:    model.RunStatusRunning,
		StartedAt: time.Now().UTC(),
	}
	require.NoError(t, SaveRun(run))

	got, err := GetRun("run-1")
	require.NoError(t, err)
	require.Equal(t, "run-1", got.ID)
	require.Equal(t, model.RunKindFull, got.Kind)
	require.Equal(t, model.RunStatusRunning, got.Status)
	require.Nil(t, got.FinishedAt)
	require.Empty(t, got.Stages)
}

func TestUpdateRunStatusRecordsFinishAndError(t *testing.T) {
	initTestDB(t)

	require.NoError(t, SaveRun(model.Run{
		ID: "run-2", Kind: model.RunKindRefresh, Source: "parquet",
		Status: model.RunStatusRunning, StartedAt: time.Now().UTC(),
	}))
	require.NoError(t, UpdateRunStatus("run-2", model.RunStatusFailed, errors.New("combine blew up")))

	got, err := GetRun("run-2")
	require.NoError(t, err)
	require.Equal(t, model.RunStatusFailed, got.Status)
	require.Equal(t, "combine blew up", got.Error)
	require.NotNil(t, got.FinishedAt)
}

func TestSaveStageUpsertsAndOrdersByStart(t *testing.T) {
	initTestDB(t)

	started := time.Now().UTC()
	require.NoError(t, SaveRun(model.Run{
		ID: "run-3", Kind: model.RunKindFull, Source: "json",
		Status: model.RunStatusRunning, StartedAt: started,
	}))

	// Stage starts running, then gets replaced with its final record.
	require.NoError(t, SaveStage(model.StageMetrics{
		RunID: "run-3", Stage: "combine", Status: model.RunStatusRunning, StartedAt: started,
	}))
	finished := started.Add(2 * time.Second)
	require.NoError(t, SaveStage(model.StageMetrics{
		RunID: "run-3", Stage: "combine", Status: model.RunStatusCompleted,
		RecordsIn: 120, RecordsOut: 120, StartedAt: started, FinishedAt: &finished,
	}))
	require.NoError(t, SaveStage(model.StageMetrics{
		RunID: "run-3", Stage: "group", Status: model.RunStatusCompleted,
		RecordsIn: 120, RecordsOut: 40, StartedAt: started.Add(3 * time.Second),
	}))

	got, err := GetRun("run-3")
	require.NoError(t, err)
	require.Len(t, got.Stages, 2)
	require.Equal(t, "combine", got.Stages[0].Stage)
	require.Equal(t, model.RunStatusCompleted, got.Stages[0].Status)
	require.Equal(t, int64(120), got.Stages[0].RecordsOut)
	require.NotNil(t, got.Stages[0].FinishedAt)
	require.Equal(t, "group", got.Stages[1].Stage)
	require.Equal(t, int64(40), got.Stages[1].RecordsOut)
}

func TestListRunsNewestFirst(t *testing.T) {
	initTestDB(t)

	base := time.Now().UTC()
	for i, id := range []string{"old", "mid", "new"} {
		require.NoError(t, SaveRun(model.Run{
			ID: id, Kind: model.RunKindRefresh, Source: "json",
			Status: model.RunStatusCompleted, StartedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	runs, err := ListRuns(2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	require.Equal(t, "new", runs[0].ID)
	require.Equal(t, "mid", runs[1].ID)

	runs, err = ListRuns(0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
}

package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"autosched-insights/internal/config"
	"autosched-insights/internal/dataset"
	"autosched-insights/internal/model"
	"autosched-insights/internal/store"
)

// Two identical scheduler entries, so the grouped dataset collapses their
// rows into one configuration with a count of 2.
const duplicatedEntries = `[
  {
    "providerSiteCode": {"x": "BA", "y": "LHR"},
    "siteHierarchy": {"customer": "globex", "customerSiteCode": "GLX-9", "priority": 1},
    "timeBox": {"earliestStartTime": 600}
  },
  {
    "providerSiteCode": {"x": "BA", "y": "LHR"},
    "siteHierarchy": {"customer": "globex", "customerSiteCode": "GLX-9", "priority": 1},
    "timeBox": {"earliestStartTime": 600}
  }
]`

const singleEntry = `[
  {
    "providerSiteCode": {"x": "AA", "y": "JFK"},
    "siteHierarchy": {"customer": "acme", "customerSiteCode": "ACM-1", "priority": 2},
    "timeBox": {"earliestStartTime": 500}
  }
]`

func testConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()

	cfg := config.Load()
	cfg.JSONDir = filepath.Join(dir, "s3_repo")
	cfg.CombinedJSONFile = filepath.Join(dir, "combined_all_data.csv")
	cfg.CombinedParquetFile = filepath.Join(dir, "combined_all_parquet_data.csv")
	cfg.DBPath = filepath.Join(dir, "insights.db")
	cfg.ParseWorkers = 2
	cfg.ChunkSize = 10

	require.NoError(t, os.MkdirAll(cfg.JSONDir, 0755))
	require.NoError(t, store.InitDB(cfg.DBPath))
	t.Cleanup(func() { store.Close() })
	return cfg
}

func TestExecuteRefreshRun(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(filepath.Join(cfg.JSONDir, "Daily-7.json"), []byte(duplicatedEntries), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.JSONDir, "adhoc-9.json"), []byte(singleEntry), 0644))

	run, err := NewRun(model.RunKindRefresh, "json")
	require.NoError(t, err)
	require.NotEmpty(t, run.ID)
	require.Equal(t, model.RunStatusRunning, run.Status)

	require.NoError(t, Execute(context.Background(), cfg, run))

	combined, err := dataset.ReadCSV(cfg.CombinedJSONFile)
	require.NoError(t, err)
	require.Len(t, combined.Rows, 3)

	grouped, err := dataset.ReadCSV(cfg.GroupedFile("json"))
	require.NoError(t, err)
	require.Len(t, grouped.Rows, 2)

	countIdx := grouped.ColumnIndex(dataset.CountColumn)
	require.GreaterOrEqual(t, countIdx, 0)
	total := 0
	for _, row := range grouped.Rows {
		switch row[grouped.ColumnIndex("site")] {
		case "LHR":
			require.Equal(t, "2", row[countIdx])
			total += 2
		case "JFK":
			require.Equal(t, "1", row[countIdx])
			total++
		}
	}
	require.Equal(t, len(combined.Rows), total)

	recorded, err := store.GetRun(run.ID)
	require.NoError(t, err)
	require.Equal(t, model.RunStatusCompleted, recorded.Status)
	require.NotNil(t, recorded.FinishedAt)
	require.Len(t, recorded.Stages, 2) // refresh runs skip fetch

	stages := make(map[string]model.StageMetrics)
	for _, s := range recorded.Stages {
		stages[s.Stage] = s
	}
	require.NotContains(t, stages, StageFetch)
	require.Equal(t, model.RunStatusCompleted, stages[StageCombine].Status)
	require.Equal(t, int64(2), stages[StageCombine].RecordsIn)  // files
	require.Equal(t, int64(3), stages[StageCombine].RecordsOut) // rows
	require.Equal(t, model.RunStatusCompleted, stages[StageGroup].Status)
	require.Equal(t, int64(3), stages[StageGroup].RecordsIn)
	require.Equal(t, int64(2), stages[StageGroup].RecordsOut)
}

func TestExecuteRecordsFailure(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(filepath.Join(cfg.JSONDir, "Daily-7.json"), []byte("{broken"), 0644))

	run, err := NewRun(model.RunKindRefresh, "json")
	require.NoError(t, err)
	require.Error(t, Execute(context.Background(), cfg, run))

	recorded, err := store.GetRun(run.ID)
	require.NoError(t, err)
	require.Equal(t, model.RunStatusFailed, recorded.Status)
	require.NotEmpty(t, recorded.Error)
	require.NotNil(t, recorded.FinishedAt)

	require.Len(t, recorded.Stages, 1)
	require.Equal(t, StageCombine, recorded.Stages[0].Stage)
	require.Equal(t, model.RunStatusFailed, recorded.Stages[0].Status)
}

func TestExecuteIsIdempotent(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(filepath.Join(cfg.JSONDir, "Daily-7.json"), []byte(duplicatedEntries), 0644))

	for i := 0; i < 2; i++ {
		run, err := NewRun(model.RunKindRefresh, "json")
		require.NoError(t, err)
		require.NoError(t, Execute(context.Background(), cfg, run))
	}

	// Re-running over the same inputs rewrites identical artifacts.
	grouped, err := dataset.ReadCSV(cfg.GroupedFile("json"))
	require.NoError(t, err)
	require.Len(t, grouped.Rows, 1)
	require.Equal(t, "2", grouped.Rows[0][grouped.ColumnIndex(dataset.CountColumn)])

	runs, err := store.ListRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
}

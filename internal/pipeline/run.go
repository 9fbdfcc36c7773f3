package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"autosched-insights/internal/combine"
	"autosched-insights/internal/config"
	"autosched-insights/internal/fetch"
	"autosched-insights/internal/group"
	"autosched-insights/internal/model"
	"autosched-insights/internal/store"
)

// Stage names recorded in the run store.
const (
	StageFetch   = "fetch"
	StageCombine = "combine"
	StageGroup   = "group"
)

// NewRun registers a run in the store and returns it. Execution happens
// separately so callers can return the run ID before the work finishes.
func NewRun(kind, source string) (model.Run, error) {
	run := model.Run{
		ID:        uuid.New().String(),
		Kind:      kind,
		Source:    source,
		Status:    model.RunStatusRunning,
		StartedAt: time.Now().UTC(),
	}
	if err := store.SaveRun(run); err != nil {
		return model.Run{}, fmt.Errorf("failed to record run: %w", err)
	}
	return run, nil
}

// Execute runs the pipeline stages for one run in order: fetch (full runs
// only), combine, group. Each stage finishes before the next starts and the
// first failure halts the pipeline; downstream stages never see incomplete
// input.
func Execute(ctx context.Context, cfg config.Config, run model.Run) (err error) {
	fmt.Printf("🚀 Starting %s run %s (source=%s)\n", run.Kind, run.ID, run.Source)

	defer func() {
		status := model.RunStatusCompleted
		if err != nil {
			status = model.RunStatusFailed
			fmt.Printf("❌ Run %s failed: %v\n", run.ID, err)
		} else {
			fmt.Printf("✅ Run %s completed\n", run.ID)
		}
		if storeErr := store.UpdateRunStatus(run.ID, status, err); storeErr != nil {
			fmt.Printf("⚠️ Failed to record run outcome: %v\n", storeErr)
		}
	}()

	if run.Kind == model.RunKindFull {
		if err = runStage(run.ID, StageFetch, func(s *model.StageMetrics) error {
			stats, fetchErr := Fetch(ctx, cfg, run.Source)
			if fetchErr != nil {
				return fetchErr
			}
			s.RecordsIn = int64(stats.Listed)
			s.RecordsOut = int64(stats.Downloaded + stats.Skipped)
			return nil
		}); err != nil {
			return err
		}
	}

	var combined *combine.Result
	if err = runStage(run.ID, StageCombine, func(s *model.StageMetrics) error {
		var combineErr error
		combined, combineErr = Combine(ctx, cfg, run.Source)
		if combineErr != nil {
			return combineErr
		}
		s.RecordsIn = int64(combined.Files)
		s.RecordsOut = int64(combined.Rows)
		return nil
	}); err != nil {
		return err
	}

	if err = runStage(run.ID, StageGroup, func(s *model.StageMetrics) error {
		_, stats, groupErr := group.GroupFile(cfg.CombinedFile(run.Source), cfg.GroupedFile(run.Source), cfg.ChunkSize)
		if groupErr != nil {
			return groupErr
		}
		s.RecordsIn = stats.TotalRows
		s.RecordsOut = int64(stats.Configurations)
		group.PrintSummary(stats)
		return nil
	}); err != nil {
		return err
	}

	return nil
}

// Fetch mirrors the source's bucket locally; JSON sources additionally get
// their .json.gz payloads decompressed in place.
func Fetch(ctx context.Context, cfg config.Config, source string) (*fetch.Stats, error) {
	client, err := fetch.NewS3Client(ctx, cfg)
	if err != nil {
		return nil, err
	}
	manifest, err := fetch.OpenManifest(cfg.ManifestDir)
	if err != nil {
		return nil, err
	}
	defer manifest.Close()

	f := &fetch.Fetcher{
		Client:   client,
		Manifest: manifest,
		Workers:  cfg.DownloadWorkers,
	}
	if source == combine.SourceParquet {
		f.Bucket = cfg.ParquetBucket
		f.Prefix = cfg.ParquetPrefix
		f.LocalDir = cfg.ParquetDir
		f.Extensions = []string{".parquet"}
	} else {
		f.Bucket = cfg.JSONBucket
		f.Prefix = cfg.JSONPrefix
		f.LocalDir = cfg.JSONDir
		f.Extensions = []string{".json.gz"}
	}

	stats, err := f.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	if source != combine.SourceParquet {
		n, err := fetch.DecompressDir(ctx, cfg.JSONDir, cfg.DownloadWorkers)
		if err != nil {
			return nil, err
		}
		stats.Decompressed = n
	}
	return stats, nil
}

// Combine unifies the fetched files of a source into its combined CSV.
func Combine(ctx context.Context, cfg config.Config, source string) (*combine.Result, error) {
	if source == combine.SourceParquet {
		return combine.CombineParquet(ctx, cfg.ParquetDir, cfg.CombinedParquetFile, cfg.ParseWorkers)
	}
	return combine.CombineJSON(ctx, cfg.JSONDir, cfg.CombinedJSONFile, cfg.ParseWorkers)
}

// runStage records one stage around fn, saving its counters and outcome.
func runStage(runID, stage string, fn func(*model.StageMetrics) error) error {
	s := model.StageMetrics{
		RunID:     runID,
		Stage:     stage,
		Status:    model.RunStatusRunning,
		StartedAt: time.Now().UTC(),
	}
	if err := store.SaveStage(s); err != nil {
		fmt.Printf("⚠️ Failed to record %s stage start: %v\n", stage, err)
	}

	err := fn(&s)

	now := time.Now().UTC()
	s.FinishedAt = &now
	if err != nil {
		s.Status = model.RunStatusFailed
		s.Error = err.Error()
	} else {
		s.Status = model.RunStatusCompleted
	}
	if storeErr := store.SaveStage(s); storeErr != nil {
		fmt.Printf("⚠️ Failed to record %s stage outcome: %v\n", stage, storeErr)
	}
	if err != nil {
		return fmt.Errorf("%s stage failed: %w", stage, err)
	}
	return nil
}

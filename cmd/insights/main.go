package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"autosched-insights/internal/analyze"
	"autosched-insights/internal/combine"
	"autosched-insights/internal/config"
	"autosched-insights/internal/dataset"
	"autosched-insights/internal/group"
	"autosched-insights/internal/model"
	"autosched-insights/internal/pipeline"
	"autosched-insights/internal/store"
	"autosched-insights/pkg/utils"
)

var (
	cfg        config.Config
	sourceFlag string
)

func main() {
	cfg = config.Load()

	root := &cobra.Command{
		Use:   "insights",
		Short: "Scheduler-log insights pipeline",
		Long: `Batch pipeline over scheduler log records: fetch raw files from S3,
combine them into one dataset, group identical rows, and render analysis
artifacts. Stages run independently and in order; each stage is idempotent
where the data allows it.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&sourceFlag, "source", combine.SourceJSON, "data source: json or parquet")
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if sourceFlag != combine.SourceJSON && sourceFlag != combine.SourceParquet {
			return fmt.Errorf("invalid --source %q: must be json or parquet", sourceFlag)
		}
		return nil
	}

	root.AddCommand(fetchCmd(), combineCmd(), groupCmd(), analyzeCmd(), reportCmd(), runCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func fetchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "Download source files from S3, skipping files already present",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := pipeline.Fetch(cmd.Context(), cfg, sourceFlag)
			return err
		},
	}
}

func combineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "combine",
		Short: "Combine fetched files into one unified CSV dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := pipeline.Combine(cmd.Context(), cfg, sourceFlag)
			return err
		},
	}
}

func groupCmd() *cobra.Command {
	var analyzeFlag bool
	cmd := &cobra.Command{
		Use:   "group",
		Short: "Group identical rows of the combined dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			grouped, stats, err := group.GroupFile(
				cfg.CombinedFile(sourceFlag), cfg.GroupedFile(sourceFlag), cfg.ChunkSize)
			if err != nil {
				return err
			}
			group.PrintSummary(stats)
			if analyzeFlag {
				group.PrintAnalysis(group.Analyze(grouped))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&analyzeFlag, "analyze", false, "print extended aggregate statistics")
	return cmd
}

func analyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze",
		Short: "Render chart PNG artifacts from the grouped dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := dataset.ReadCSV(cfg.GroupedFile(sourceFlag))
			if err != nil {
				return err
			}
			report := analyze.BuildReport(sourceFlag, t)

			om := utils.NewOutputManager(cfg.ArtifactsDir)
			dashPath, err := om.ArtifactPath(fmt.Sprintf("analysis_dashboard_%s.png", sourceFlag))
			if err != nil {
				return err
			}
			if err := analyze.RenderDashboard(report, dashPath); err != nil {
				return err
			}
			timePath, err := om.ArtifactPath(fmt.Sprintf("time_analysis_%s.png", sourceFlag))
			if err != nil {
				return err
			}
			return analyze.RenderTimeAnalysis(report, timePath)
		},
	}
}

func reportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Write Markdown summaries and the Parquet tree analysis",
		RunE: func(cmd *cobra.Command, args []string) error {
			om := utils.NewOutputManager(cfg.ArtifactsDir)

			summaryPath, err := om.ArtifactPath("combined_dataset_summary.md")
			if err != nil {
				return err
			}
			if err := analyze.WriteDatasetSummary(cfg.CombinedFile(sourceFlag), summaryPath); err != nil {
				return err
			}

			reportPath, err := om.ArtifactPath("analysis_report.md")
			if err != nil {
				return err
			}
			grouped := map[string]string{
				"json":    cfg.GroupedFile("json"),
				"parquet": cfg.GroupedFile("parquet"),
			}
			if err := analyze.WriteAnalysisReport(grouped, reportPath); err != nil {
				return err
			}

			if _, err := os.Stat(cfg.ParquetDir); err == nil {
				analysisPath, err := om.ArtifactPath("parquet_analysis.json")
				if err != nil {
					return err
				}
				if _, err := analyze.WriteParquetAnalysis(cfg.ParquetDir, analysisPath); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run fetch, combine and group in order as one tracked run",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := store.InitDB(cfg.DBPath); err != nil {
				return fmt.Errorf("failed to open run store: %w", err)
			}
			defer store.Close()

			run, err := pipeline.NewRun(model.RunKindFull, sourceFlag)
			if err != nil {
				return err
			}
			return pipeline.Execute(cmd.Context(), cfg, run)
		},
	}
}

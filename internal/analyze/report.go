package analyze

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"autosched-insights/internal/combine"
	"autosched-insights/internal/dataset"
	"autosched-insights/internal/model"
)

// WriteDatasetSummary writes the combined-dataset Markdown summary. The
// combined file is streamed so the summary works on datasets that do not
// fit comfortably in memory.
func WriteDatasetSummary(combinedPath, outPath string) error {
	header, err := dataset.ReadHeader(combinedPath)
	if err != nil {
		return &model.RenderError{Artifact: outPath, Err: err}
	}

	freqIdx := -1
	for i, h := range header {
		for _, cand := range freqColumns {
			if h == cand && freqIdx < 0 {
				freqIdx = i
			}
		}
	}

	var rows int64
	freqCounts := make(map[string]int64)
	nonEmpty := make([]int64, len(header))

	_, _, err = dataset.StreamCSV(combinedPath, 50000, func(chunk [][]string) error {
		for _, row := range chunk {
			rows++
			if freqIdx >= 0 && row[freqIdx] != "" {
				freqCounts[row[freqIdx]]++
			}
			for i, cell := range row {
				if cell != "" {
					nonEmpty[i]++
				}
			}
		}
		return nil
	})
	if err != nil {
		return &model.RenderError{Artifact: outPath, Err: err}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Combined Dataset Analysis Report\n\n")
	fmt.Fprintf(&b, "Generated %s from `%s`\n\n", time.Now().UTC().Format("2006-01-02 15:04 UTC"), combinedPath)

	fmt.Fprintf(&b, "## Dataset Overview\n\n")
	fmt.Fprintf(&b, "- **Total Records**: %d\n", rows)
	fmt.Fprintf(&b, "- **Total Columns**: %d\n\n", len(header))

	if len(freqCounts) > 0 {
		fmt.Fprintf(&b, "## Collection Frequency Distribution\n\n")
		for _, freq := range sortedMapKeys(freqCounts) {
			count := freqCounts[freq]
			pct := 0.0
			if rows > 0 {
				pct = float64(count) / float64(rows) * 100
			}
			fmt.Fprintf(&b, "- **%s**: %d records (%.1f%%)\n", freq, count, pct)
		}
		fmt.Fprintf(&b, "\n")
	}

	complete, partial := 0, 0
	for _, n := range nonEmpty {
		if n == rows {
			complete++
		} else {
			partial++
		}
	}
	fmt.Fprintf(&b, "## Data Quality\n\n")
	fmt.Fprintf(&b, "- **Complete columns** (no missing data): %d\n", complete)
	fmt.Fprintf(&b, "- **Partial columns** (some missing data): %d\n", partial)

	if err := os.WriteFile(outPath, []byte(b.String()), 0644); err != nil {
		return &model.RenderError{Artifact: outPath, Err: err}
	}
	fmt.Printf("📄 Summary report saved to %s\n", outPath)
	return nil
}

// WriteAnalysisReport writes the grouped-dataset Markdown report for every
// source whose grouped artifact exists, with a pipeline comparison section
// when both do.
func WriteAnalysisReport(groupedPaths map[string]string, outPath string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# Scheduler Analysis Report\n\n")
	fmt.Fprintf(&b, "Generated %s\n\n", time.Now().UTC().Format("2006-01-02 15:04 UTC"))

	tables := make(map[string]*dataset.Table)
	var sources []string
	for source := range groupedPaths {
		sources = append(sources, source)
	}
	sort.Strings(sources)

	for _, source := range sources {
		path := groupedPaths[source]
		if _, err := os.Stat(path); err != nil {
			continue
		}
		t, err := dataset.ReadCSV(path)
		if err != nil {
			return &model.RenderError{Artifact: outPath, Err: err}
		}
		tables[source] = t
		writeSourceSection(&b, source, t)
	}

	if len(tables) == 0 {
		return &model.RenderError{
			Artifact: outPath,
			Err:      fmt.Errorf("no grouped dataset found; run the group step first"),
		}
	}

	if jt, pt := tables["json"], tables["parquet"]; jt != nil && pt != nil {
		writeComparisonSection(&b, jt, pt)
	}

	if err := os.WriteFile(outPath, []byte(b.String()), 0644); err != nil {
		return &model.RenderError{Artifact: outPath, Err: err}
	}
	fmt.Printf("📄 Analysis report saved to %s\n", outPath)
	return nil
}

func writeSourceSection(b *strings.Builder, source string, t *dataset.Table) {
	summary := Summarize(source, t)
	fmt.Fprintf(b, "## %s pipeline\n\n", strings.ToUpper(source[:1])+source[1:])
	fmt.Fprintf(b, "- **Unique configurations**: %d\n", summary.TotalConfigurations)
	fmt.Fprintf(b, "- **Total records**: %d\n", summary.TotalRecords)
	if summary.TotalConfigurations > 0 {
		fmt.Fprintf(b, "- **Compression ratio**: %.1fx\n", float64(summary.TotalRecords)/float64(summary.TotalConfigurations))
	}
	fmt.Fprintf(b, "- **Providers / sites / customers**: %d / %d / %d\n\n",
		summary.UniqueProviders, summary.UniqueSites, summary.UniqueCustomers)

	freq := FrequencyRecordSeries(t)
	if len(freq.Labels) > 0 {
		fmt.Fprintf(b, "### Records by collection frequency\n\n")
		fmt.Fprintf(b, "| Frequency | Records |\n|---|---|\n")
		for i, label := range freq.Labels {
			fmt.Fprintf(b, "| %s | %.0f |\n", label, freq.Values[i])
		}
		fmt.Fprintf(b, "\n")
	}

	top := TopSitesSeries(t, 10)
	if len(top.Labels) > 0 {
		fmt.Fprintf(b, "### Top sites by records\n\n")
		fmt.Fprintf(b, "| Site | Records |\n|---|---|\n")
		for i, label := range top.Labels {
			fmt.Fprintf(b, "| %s | %.0f |\n", label, top.Values[i])
		}
		fmt.Fprintf(b, "\n")
	}
}

func writeComparisonSection(b *strings.Builder, jt, pt *dataset.Table) {
	fmt.Fprintf(b, "## Pipeline comparison\n\n")
	fmt.Fprintf(b, "| | JSON | Parquet |\n|---|---|---|\n")
	fmt.Fprintf(b, "| Configurations | %d | %d |\n", len(jt.Rows), len(pt.Rows))
	fmt.Fprintf(b, "| Columns | %d | %d |\n", len(jt.Header), len(pt.Header))

	js := Summarize("json", jt)
	ps := Summarize("parquet", pt)
	fmt.Fprintf(b, "| Records | %d | %d |\n", js.TotalRecords, ps.TotalRecords)
	fmt.Fprintf(b, "| Providers | %d | %d |\n", js.UniqueProviders, ps.UniqueProviders)
	fmt.Fprintf(b, "| Sites | %d | %d |\n\n", js.UniqueSites, ps.UniqueSites)

	jsonCols := make(map[string]bool, len(jt.Header))
	for _, c := range jt.Header {
		jsonCols[c] = true
	}
	shared, parquetOnly := 0, 0
	for _, c := range pt.Header {
		if jsonCols[c] {
			shared++
			delete(jsonCols, c)
		} else {
			parquetOnly++
		}
	}
	fmt.Fprintf(b, "Shared columns: %d, JSON-only: %d, Parquet-only: %d\n", shared, len(jsonCols), parquetOnly)
}

// ParquetFileInfo is one analyzed file in the Parquet tree report.
type ParquetFileInfo struct {
	RelativePath string   `json:"relative_path"`
	Folder       string   `json:"folder"`
	RowCount     int64    `json:"row_count"`
	ColumnCount  int      `json:"column_count"`
	Columns      []string `json:"columns"`
}

// ParquetAnalysis is the per-frequency file and row inventory of the local
// Parquet tree.
type ParquetAnalysis struct {
	TotalFiles      int                 `json:"total_files"`
	TotalRows       int64               `json:"total_rows"`
	Files           []ParquetFileInfo   `json:"files"`
	FolderStructure map[string][]string `json:"folder_structure"`
	RowCounts       map[string]int64    `json:"row_counts"`
	SchemaCount     int                 `json:"schema_count"`
}

// WriteParquetAnalysis scans the local Parquet mirror and writes the
// per-frequency statistics JSON. Row counts come from file footers, so the
// scan never loads row data.
func WriteParquetAnalysis(parquetDir, outPath string) (*ParquetAnalysis, error) {
	a := &ParquetAnalysis{
		FolderStructure: make(map[string][]string),
		RowCounts:       make(map[string]int64),
	}
	schemas := make(map[string]bool)

	err := filepath.WalkDir(parquetDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".parquet") {
			return nil
		}

		rel, err := filepath.Rel(parquetDir, path)
		if err != nil {
			rel = d.Name()
		}
		folder := filepath.Dir(rel)
		if folder == "." {
			folder = "root"
		}

		rows, err := combine.ParquetRowCount(path)
		if err != nil {
			return err
		}
		block, err := combine.ReadParquetSchema(path)
		if err != nil {
			return err
		}

		a.Files = append(a.Files, ParquetFileInfo{
			RelativePath: rel,
			Folder:       folder,
			RowCount:     rows,
			ColumnCount:  len(block),
			Columns:      block,
		})
		a.TotalFiles++
		a.TotalRows += rows
		a.FolderStructure[folder] = append(a.FolderStructure[folder], d.Name())
		a.RowCounts[folder] += rows
		schemas[strings.Join(block, "\x1f")] = true
		return nil
	})
	if err != nil {
		return nil, &model.RenderError{Artifact: outPath, Err: err}
	}
	a.SchemaCount = len(schemas)

	for folder := range a.FolderStructure {
		sort.Strings(a.FolderStructure[folder])
	}

	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return nil, &model.RenderError{Artifact: outPath, Err: err}
	}
	if err := os.WriteFile(outPath, data, 0644); err != nil {
		return nil, &model.RenderError{Artifact: outPath, Err: err}
	}
	fmt.Printf("💾 Parquet analysis saved to %s (%d files, %d rows)\n", outPath, a.TotalFiles, a.TotalRows)
	return a, nil
}

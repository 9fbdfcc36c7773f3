package combine

import (
	"context"
	"encoding/csv"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Source formats accepted by the combiner.
const (
	SourceJSON    = "json"
	SourceParquet = "parquet"
)

// SchemaGroup reports the files sharing one column signature.
type SchemaGroup struct {
	Columns []string
	Files   []string
}

// Result summarizes one combine run.
type Result struct {
	Files        int
	SkippedFiles []string
	Rows         int
	Columns      int
	Schemas      []SchemaGroup
	OutputPath   string
}

// sourceFile is one file scheduled for parsing, with the metadata its path
// encodes.
type sourceFile struct {
	path      string
	frequency string
	planID    string
}

// CombineJSON flattens every decompressed .json file in dir into one
// unified CSV dataset at outPath.
func CombineJSON(ctx context.Context, dir, outPath string, workers int) (*Result, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read source directory %s: %w", dir, err)
	}

	var files []sourceFile
	var skipped []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		frequency, planID, ok := FileMeta(name)
		if !ok {
			fmt.Printf("⚠️ Skipping %s: filename does not match <frequency>-<planID>.json\n", name)
			skipped = append(skipped, name)
			continue
		}
		files = append(files, sourceFile{
			path:      filepath.Join(dir, name),
			frequency: frequency,
			planID:    planID,
		})
	}

	fmt.Printf("🚀 Combining %d JSON files from %s\n", len(files), dir)
	result, err := combineBlocks(ctx, files, workers, outPath, func(sf sourceFile) (*Block, error) {
		block, err := FlattenFile(sf.path)
		if err != nil {
			return nil, err
		}
		if err := ValidateBlock(block, jsonRules); err != nil {
			return nil, err
		}
		return block, nil
	})
	if err != nil {
		return nil, err
	}
	result.SkippedFiles = skipped
	return result, nil
}

// CombineParquet reads every .parquet under dir (one subdirectory per
// collection frequency) into one unified CSV dataset at outPath.
func CombineParquet(ctx context.Context, dir, outPath string, workers int) (*Result, error) {
	var files []sourceFile
	var skipped []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".parquet") {
			return nil
		}
		frequency, planID, ok := ParquetFileMeta(d.Name())
		if !ok {
			// Fall back to the folder name, which mirrors the collection
			// frequency in the remote layout.
			frequency = filepath.Base(filepath.Dir(path))
			if frequency == filepath.Base(dir) {
				fmt.Printf("⚠️ Skipping %s: cannot determine collection frequency\n", d.Name())
				skipped = append(skipped, d.Name())
				return nil
			}
		}
		files = append(files, sourceFile{path: path, frequency: frequency, planID: planID})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk source directory %s: %w", dir, err)
	}

	fmt.Printf("🚀 Combining %d Parquet files from %s\n", len(files), dir)
	result, err := combineBlocks(ctx, files, workers, outPath, func(sf sourceFile) (*Block, error) {
		block, err := ReadParquetFile(sf.path)
		if err != nil {
			return nil, err
		}
		block.WithFileMeta(sf.frequency, sf.planID)
		if err := ValidateBlock(block, parquetRules); err != nil {
			return nil, err
		}
		return block, nil
	})
	if err != nil {
		return nil, err
	}
	result.SkippedFiles = skipped
	return result, nil
}

// combineBlocks parses files on a worker pool, then merges the blocks into
// one CSV with the union of all column sets. Missing cells default to the
// empty string. File order is preserved so output is deterministic.
func combineBlocks(ctx context.Context, files []sourceFile, workers int, outPath string, parse func(sourceFile) (*Block, error)) (*Result, error) {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	blocks := make([]*Block, len(files))
	jobs := make(chan int)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(workerID int) {
			defer wg.Done()
			workerFiles := 0
			workerRows := 0

			for idx := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}

				block, err := parse(files[idx])
				if err != nil {
					fmt.Printf("❌ Parse Worker %d: %s failed - %v\n", workerID, filepath.Base(files[idx].path), err)
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
					cancel()
					return
				}
				blocks[idx] = block
				workerFiles++
				workerRows += len(block.Rows)
				fmt.Printf("📄 Parse Worker %d: %s (%d rows)\n", workerID, filepath.Base(files[idx].path), len(block.Rows))
			}

			fmt.Printf("📄 Parse Worker %d completed: %d files, %d rows\n", workerID, workerFiles, workerRows)
		}(i)
	}

	for idx := range files {
		select {
		case <-ctx.Done():
		case jobs <- idx:
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	// Union header in first-observation order across files.
	cols := newColSet()
	for _, block := range blocks {
		for _, c := range block.Columns {
			cols.add(c)
		}
	}

	out, err := os.Create(outPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create combined dataset %s: %w", outPath, err)
	}
	defer out.Close()

	w := csv.NewWriter(out)
	if err := w.Write(cols.names); err != nil {
		return nil, fmt.Errorf("failed to write header of %s: %w", outPath, err)
	}

	total := 0
	schemaGroups := make(map[string]*SchemaGroup)
	var schemaOrder []string
	for _, block := range blocks {
		// Projection of the block's columns onto the union header.
		proj := make([]int, len(cols.names))
		for i := range proj {
			proj[i] = -1
		}
		for bi, c := range block.Columns {
			proj[cols.index[c]] = bi
		}

		for _, cells := range block.Rows {
			row := make([]string, len(cols.names))
			for i, bi := range proj {
				if bi >= 0 {
					row[i] = cells[bi]
				}
			}
			if err := w.Write(row); err != nil {
				return nil, fmt.Errorf("failed to write row of %s: %w", outPath, err)
			}
			total++
		}

		sig := strings.Join(block.Columns, "\x1f")
		group, ok := schemaGroups[sig]
		if !ok {
			group = &SchemaGroup{Columns: block.Columns}
			schemaGroups[sig] = group
			schemaOrder = append(schemaOrder, sig)
		}
		group.Files = append(group.Files, filepath.Base(block.File))
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush combined dataset %s: %w", outPath, err)
	}

	result := &Result{
		Files:      len(files),
		Rows:       total,
		Columns:    len(cols.names),
		OutputPath: outPath,
	}
	for _, sig := range schemaOrder {
		result.Schemas = append(result.Schemas, *schemaGroups[sig])
	}

	fmt.Printf("📊 Combine Summary: %d files, %d rows, %d columns → %s\n", result.Files, result.Rows, result.Columns, outPath)
	printSchemaReport(result)
	return result, nil
}

// printSchemaReport lists the distinct column signatures and which files
// needed default-filling against the union schema.
func printSchemaReport(result *Result) {
	if len(result.Schemas) <= 1 {
		fmt.Printf("🔍 Schema report: all %d files share one schema (%d columns)\n", result.Files, result.Columns)
		return
	}
	fmt.Printf("🔍 Schema report: %d distinct schemas across %d files\n", len(result.Schemas), result.Files)
	for i, group := range result.Schemas {
		filled := result.Columns - len(group.Columns)
		fmt.Printf("   Schema %d: %d files, %d columns, %d filled with defaults (e.g. %s)\n",
			i+1, len(group.Files), len(group.Columns), filled, group.Files[0])
	}
}

package fetch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"

	"autosched-insights/internal/model"
)

// DecompressDir expands every .json.gz under dir into a sibling .json file
// so downstream stages read plain JSON. Outputs that already exist are
// skipped, keeping the stage idempotent alongside the download skip.
func DecompressDir(ctx context.Context, dir string, workerCount int) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasSuffix(entry.Name(), ".json.gz") {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	if len(files) == 0 {
		return 0, nil
	}

	if workerCount <= 0 {
		workerCount = 1
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan string)

	// Track decompression stats
	var decompressedCount, skippedCount int
	var mu sync.Mutex
	var firstErr error

	var wg sync.WaitGroup
	wg.Add(workerCount)

	for i := 0; i < workerCount; i++ {
		go func(workerID int) {
			defer wg.Done()
			workerDecompressed := 0
			workerSkipped := 0

			for path := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}

				done, err := decompressFile(path)
				if err != nil {
					fmt.Printf("❌ Decompress Worker %d: %s failed - %v\n", workerID, filepath.Base(path), err)
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
					cancel()
					return
				}
				if done {
					workerDecompressed++
				} else {
					workerSkipped++
				}
			}

			// Update global counters
			mu.Lock()
			decompressedCount += workerDecompressed
			skippedCount += workerSkipped
			mu.Unlock()

			fmt.Printf("📄 Decompress Worker %d completed: %d decompressed, %d skipped\n", workerID, workerDecompressed, workerSkipped)
		}(i)
	}

	for _, path := range files {
		select {
		case <-ctx.Done():
		case jobs <- path:
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return decompressedCount, firstErr
	}
	fmt.Printf("✅ Decompression complete: %d decompressed, %d already present\n", decompressedCount, skippedCount)
	return decompressedCount, nil
}

// decompressFile expands one .json.gz into its .json sibling. Returns false
// when the output already exists.
func decompressFile(path string) (bool, error) {
	outPath := strings.TrimSuffix(path, ".gz")
	if _, err := os.Stat(outPath); err == nil {
		return false, nil
	}

	src, err := os.Open(path)
	if err != nil {
		return false, &model.ParseError{File: path, Err: err}
	}
	defer src.Close()

	zr, err := gzip.NewReader(src)
	if err != nil {
		return false, &model.ParseError{File: path, Err: err}
	}
	defer zr.Close()

	tmpPath := outPath + ".part"
	dst, err := os.Create(tmpPath)
	if err != nil {
		return false, &model.ParseError{File: path, Err: err}
	}

	_, err = io.Copy(dst, zr)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmpPath)
		return false, &model.ParseError{File: path, Err: err}
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		os.Remove(tmpPath)
		return false, &model.ParseError{File: path, Err: err}
	}
	return true, nil
}

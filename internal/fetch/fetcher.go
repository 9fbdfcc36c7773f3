package fetch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"autosched-insights/internal/config"
	"autosched-insights/internal/model"
)

// ObjectClient is the subset of the S3 API the fetcher uses.
type ObjectClient interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// NewS3Client builds an S3 client for the configured region. Static
// credentials from the environment take precedence over the default
// provider chain.
func NewS3Client(ctx context.Context, cfg config.Config) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return s3.NewFromConfig(awsCfg), nil
}

// object is one remote file scheduled for download.
type object struct {
	Key  string
	ETag string
	Size int64
}

// Stats summarizes one fetch pass.
type Stats struct {
	Listed       int
	Downloaded   int
	Skipped      int
	Decompressed int
	Bytes        int64
}

// Fetcher mirrors one bucket prefix into a local directory. Downloads are
// independent and idempotent, so they run on a bounded worker pool with no
// ordering requirement.
type Fetcher struct {
	Client   ObjectClient
	Manifest *Manifest
	Bucket   string
	Prefix   string
	LocalDir string
	Workers  int

	// Extensions filters remote keys; empty fetches every key under the
	// prefix.
	Extensions []string
}

// Fetch lists the remote prefix and downloads every missing object. Files
// already present with the expected size are skipped; a local size mismatch
// means a corrupted or partial download and forces a re-fetch. The first
// download failure cancels the remaining work and aborts the run.
func (f *Fetcher) Fetch(ctx context.Context) (*Stats, error) {
	if err := os.MkdirAll(f.LocalDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create local directory %s: %w", f.LocalDir, err)
	}

	objects, err := f.list(ctx)
	if err != nil {
		return nil, &model.RetrievalError{Bucket: f.Bucket, Err: err}
	}
	fmt.Printf("📥 Found %d objects under s3://%s/%s\n", len(objects), f.Bucket, f.Prefix)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	workers := f.Workers
	if workers <= 0 {
		workers = 1
	}

	jobs := make(chan object)
	stats := &Stats{Listed: len(objects)}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
		cancel()
	}

	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(workerID int) {
			defer wg.Done()
			workerDownloaded := 0
			workerSkipped := 0
			var workerBytes int64

			for obj := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}

				downloaded, n, err := f.fetchOne(ctx, obj)
				if err != nil {
					fmt.Printf("❌ Download Worker %d: %s failed - %v\n", workerID, obj.Key, err)
					fail(err)
					return
				}
				if downloaded {
					workerDownloaded++
					workerBytes += n
					fmt.Printf("📥 Download Worker %d: %s (%d bytes)\n", workerID, obj.Key, n)
				} else {
					workerSkipped++
				}
			}

			// Update global counters
			mu.Lock()
			stats.Downloaded += workerDownloaded
			stats.Skipped += workerSkipped
			stats.Bytes += workerBytes
			mu.Unlock()

			fmt.Printf("📥 Download Worker %d completed: %d downloaded, %d skipped\n", workerID, workerDownloaded, workerSkipped)
		}(i)
	}

	for _, obj := range objects {
		select {
		case <-ctx.Done():
		case jobs <- obj:
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	fmt.Printf("✅ Fetch complete: %d downloaded, %d skipped, %d bytes\n", stats.Downloaded, stats.Skipped, stats.Bytes)
	return stats, nil
}

// list pages through ListObjectsV2 and returns the matching objects.
func (f *Fetcher) list(ctx context.Context) ([]object, error) {
	var (
		objects []object
		token   *string
	)
	for {
		out, err := f.Client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(f.Bucket),
			Prefix:            aws.String(f.Prefix),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, err
		}
		for _, obj := range out.Contents {
			key := aws.ToString(obj.Key)
			if strings.HasSuffix(key, "/") {
				continue
			}
			if !f.matchExtension(key) {
				continue
			}
			objects = append(objects, object{
				Key:  key,
				ETag: strings.Trim(aws.ToString(obj.ETag), `"`),
				Size: aws.ToInt64(obj.Size),
			})
		}
		if !aws.ToBool(out.IsTruncated) {
			break
		}
		token = out.NextContinuationToken
	}
	return objects, nil
}

func (f *Fetcher) matchExtension(key string) bool {
	if len(f.Extensions) == 0 {
		return true
	}
	for _, ext := range f.Extensions {
		if strings.HasSuffix(key, ext) {
			return true
		}
	}
	return false
}

// localPath mirrors the object key under the local directory, preserving
// any folder structure below the prefix.
func (f *Fetcher) localPath(key string) string {
	rel := strings.TrimPrefix(key, f.Prefix)
	rel = strings.TrimPrefix(rel, "/")
	return filepath.Join(f.LocalDir, filepath.FromSlash(rel))
}

// fetchOne downloads a single object unless it is already present intact.
// Returns whether a transfer happened and how many bytes moved.
func (f *Fetcher) fetchOne(ctx context.Context, obj object) (bool, int64, error) {
	localPath := f.localPath(obj.Key)

	if st, err := os.Stat(localPath); err == nil {
		if st.Size() == obj.Size {
			// Already present and intact. Adopt it into the manifest if an
			// earlier run predates manifest tracking.
			entry, err := f.Manifest.Get(f.Bucket, obj.Key)
			if err != nil {
				return false, 0, err
			}
			if entry == nil {
				err = f.Manifest.Put(f.Bucket, obj.Key, ManifestEntry{
					ETag:         obj.ETag,
					Size:         obj.Size,
					DownloadedAt: time.Now().UTC(),
				})
				if err != nil {
					return false, 0, err
				}
			}
			return false, 0, nil
		}
		fmt.Printf("⚠️ %s: local size %d does not match remote %d, re-downloading\n", localPath, st.Size(), obj.Size)
	}

	if err := os.MkdirAll(filepath.Dir(localPath), 0755); err != nil {
		return false, 0, &model.RetrievalError{Bucket: f.Bucket, Key: obj.Key, Err: err}
	}

	out, err := f.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(f.Bucket),
		Key:    aws.String(obj.Key),
	})
	if err != nil {
		return false, 0, &model.RetrievalError{Bucket: f.Bucket, Key: obj.Key, Err: err}
	}
	defer out.Body.Close()

	tmpPath := localPath + ".part"
	dst, err := os.Create(tmpPath)
	if err != nil {
		return false, 0, &model.RetrievalError{Bucket: f.Bucket, Key: obj.Key, Err: err}
	}

	n, err := io.Copy(dst, out.Body)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmpPath)
		return false, 0, &model.RetrievalError{Bucket: f.Bucket, Key: obj.Key, Err: err}
	}
	if expected := aws.ToInt64(out.ContentLength); expected > 0 && n != expected {
		os.Remove(tmpPath)
		return false, 0, &model.RetrievalError{
			Bucket: f.Bucket,
			Key:    obj.Key,
			Err:    fmt.Errorf("corrupted in transit: got %d bytes, expected %d", n, expected),
		}
	}

	if err := os.Rename(tmpPath, localPath); err != nil {
		os.Remove(tmpPath)
		return false, 0, &model.RetrievalError{Bucket: f.Bucket, Key: obj.Key, Err: err}
	}

	err = f.Manifest.Put(f.Bucket, obj.Key, ManifestEntry{
		ETag:         obj.ETag,
		Size:         n,
		DownloadedAt: time.Now().UTC(),
	})
	if err != nil {
		return false, 0, err
	}
	return true, n, nil
}

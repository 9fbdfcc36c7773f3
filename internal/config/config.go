package config

import (
	"os"
	"path/filepath"
	"strconv"
)

// Defaults mirror the production buckets and paths this pipeline was built
// against. Every value can be overridden through an INSIGHTS_* environment
// variable.
const (
	DefaultRegion = "us-east-1"

	DefaultJSONBucket = "s3-atp-3victors-3vdev-use1-pe-as-persistence"
	DefaultJSONPrefix = "v1/10/"
	DefaultJSONDir    = "s3_repo"

	DefaultParquetBucket = "s3-atp-3victors-3vdev-use1-pe-as-parquet-temp"
	DefaultParquetPrefix = "parquet-69-temp/"
	DefaultParquetDir    = "s3_parquet_repo"

	DefaultCombinedJSONFile    = "combined_all_data.csv"
	DefaultCombinedParquetFile = "combined_all_parquet_data.csv"
	GroupedPrefix              = "grouped_"

	DefaultDBPath       = "insights.db"
	DefaultManifestDir  = ".fetch-manifest"
	DefaultArtifactsDir = "artifacts"

	DefaultListenAddr = ":8501"

	DefaultDownloadWorkers = 8
	DefaultParseWorkers    = 4
	DefaultChunkSize       = 100000
)

// Config carries every tunable the pipeline and the dashboard server read.
type Config struct {
	Region    string
	AccessKey string
	SecretKey string

	JSONBucket string
	JSONPrefix string
	JSONDir    string

	ParquetBucket string
	ParquetPrefix string
	ParquetDir    string

	CombinedJSONFile    string
	CombinedParquetFile string

	DBPath       string
	ManifestDir  string
	ArtifactsDir string
	ListenAddr   string

	DownloadWorkers int
	ParseWorkers    int
	ChunkSize       int
}

// Load builds a Config from defaults and INSIGHTS_* environment overrides.
func Load() Config {
	return Config{
		Region:    getenv("INSIGHTS_AWS_REGION", DefaultRegion),
		AccessKey: os.Getenv("INSIGHTS_AWS_ACCESS_KEY"),
		SecretKey: os.Getenv("INSIGHTS_AWS_SECRET_KEY"),

		JSONBucket: getenv("INSIGHTS_JSON_BUCKET", DefaultJSONBucket),
		JSONPrefix: getenv("INSIGHTS_JSON_PREFIX", DefaultJSONPrefix),
		JSONDir:    getenv("INSIGHTS_JSON_DIR", DefaultJSONDir),

		ParquetBucket: getenv("INSIGHTS_PARQUET_BUCKET", DefaultParquetBucket),
		ParquetPrefix: getenv("INSIGHTS_PARQUET_PREFIX", DefaultParquetPrefix),
		ParquetDir:    getenv("INSIGHTS_PARQUET_DIR", DefaultParquetDir),

		CombinedJSONFile:    getenv("INSIGHTS_COMBINED_JSON_FILE", DefaultCombinedJSONFile),
		CombinedParquetFile: getenv("INSIGHTS_COMBINED_PARQUET_FILE", DefaultCombinedParquetFile),

		DBPath:       getenv("INSIGHTS_DB_PATH", DefaultDBPath),
		ManifestDir:  getenv("INSIGHTS_MANIFEST_DIR", DefaultManifestDir),
		ArtifactsDir: getenv("INSIGHTS_ARTIFACTS_DIR", DefaultArtifactsDir),
		ListenAddr:   getenv("INSIGHTS_LISTEN_ADDR", DefaultListenAddr),

		DownloadWorkers: getenvInt("INSIGHTS_DOWNLOAD_WORKERS", DefaultDownloadWorkers),
		ParseWorkers:    getenvInt("INSIGHTS_PARSE_WORKERS", DefaultParseWorkers),
		ChunkSize:       getenvInt("INSIGHTS_CHUNK_SIZE", DefaultChunkSize),
	}
}

// CombinedFile returns the combined dataset artifact for a source.
func (c Config) CombinedFile(source string) string {
	if source == "parquet" {
		return c.CombinedParquetFile
	}
	return c.CombinedJSONFile
}

// GroupedFile returns the grouped dataset artifact for a source, next to
// its combined artifact.
func (c Config) GroupedFile(source string) string {
	combined := c.CombinedFile(source)
	return filepath.Join(filepath.Dir(combined), GroupedPrefix+filepath.Base(combined))
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

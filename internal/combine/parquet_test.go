package combine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/require"
)

type parquetRow struct {
	Provider  string  `parquet:"provider"`
	Site      string  `parquet:"site"`
	Priority  int64   `parquet:"priority"`
	StartTime float64 `parquet:"earliest_start_time"`
}

func writeParquetFile(t *testing.T, dir, name string, rows []parquetRow) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)

	w := parquet.NewGenericWriter[parquetRow](f)
	_, err = w.Write(rows)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())
	return path
}

func TestParquetFileMeta(t *testing.T) {
	freq, plan, ok := ParquetFileMeta("Daily-17219.parquet")
	require.True(t, ok)
	require.Equal(t, "Daily", freq)
	require.Equal(t, "17219", plan)

	_, _, ok = ParquetFileMeta("Daily-17219.json")
	require.False(t, ok)
}

func TestReadParquetFile(t *testing.T) {
	dir := t.TempDir()
	path := writeParquetFile(t, dir, "Daily-1.parquet", []parquetRow{
		{Provider: "AA", Site: "JFK", Priority: 2, StartTime: 500},
		{Provider: "BA", Site: "LHR", Priority: 1, StartTime: 1730.5},
	})

	block, err := ReadParquetFile(path)
	require.NoError(t, err)
	require.Equal(t, []string{"provider", "site", "priority", "earliest_start_time"}, block.Columns)
	require.Equal(t, [][]string{
		{"AA", "JFK", "2", "500"},
		{"BA", "LHR", "1", "1730.5"},
	}, block.Rows)
}

func TestWithFileMeta(t *testing.T) {
	block := &Block{
		Columns: []string{"provider"},
		Rows:    [][]string{{"AA"}, {"BA"}},
	}
	block.WithFileMeta("Daily", "17219")

	require.Equal(t, []string{"provider", "file_collection_frequency", "file_hourly_collection_plan_id"}, block.Columns)
	require.Equal(t, []string{"AA", "Daily", "17219"}, block.Rows[0])

	// Columns already present are not duplicated.
	block.WithFileMeta("Daily", "17219")
	require.Len(t, block.Columns, 3)
}

func TestParquetRowCountAndSchema(t *testing.T) {
	dir := t.TempDir()
	path := writeParquetFile(t, dir, "Adhoc-2.parquet", []parquetRow{
		{Provider: "AA"}, {Provider: "BA"}, {Provider: "DL"},
	})

	n, err := ParquetRowCount(path)
	require.NoError(t, err)
	require.Equal(t, int64(3), n)

	cols, err := ReadParquetSchema(path)
	require.NoError(t, err)
	require.Equal(t, []string{"provider", "site", "priority", "earliest_start_time"}, cols)
}

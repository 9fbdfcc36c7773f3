package group

import (
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"autosched-insights/internal/dataset"
	"autosched-insights/internal/model"
)

func writeCSV(t *testing.T, header []string, rows [][]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "in.csv")
	table := &dataset.Table{Header: header, Rows: rows}
	require.NoError(t, table.WriteCSV(path))
	return path
}

func sumCounts(t *testing.T, grouped *dataset.Table) int64 {
	t.Helper()
	idx := grouped.ColumnIndex(dataset.CountColumn)
	require.GreaterOrEqual(t, idx, 0)
	var sum int64
	for _, row := range grouped.Rows {
		n, err := strconv.ParseInt(row[idx], 10, 64)
		require.NoError(t, err)
		sum += n
	}
	return sum
}

func TestGroupCollapsesDuplicates(t *testing.T) {
	in := writeCSV(t,
		[]string{"provider", "site", "collection_frequency"},
		[][]string{
			{"AA", "JFK", "Daily"},
			{"AA", "JFK", "Daily"},
			{"AA", "JFK", "Daily"},
			{"BA", "LHR", "Adhoc"},
		})
	out := filepath.Join(t.TempDir(), "out.csv")

	grouped, stats, err := GroupFile(in, out, 0)
	require.NoError(t, err)

	require.Equal(t, 2, stats.Configurations)
	require.Equal(t, int64(4), stats.TotalRows)
	require.Len(t, grouped.Rows, 2)

	// Descending count, so the triplicate row comes first.
	countIdx := grouped.ColumnIndex(dataset.CountColumn)
	require.Equal(t, "3", grouped.Rows[0][countIdx])
	require.Equal(t, "1", grouped.Rows[1][countIdx])
	require.Equal(t, "AA", grouped.Rows[0][grouped.ColumnIndex("provider")])
}

func TestGroupConservesRecordCount(t *testing.T) {
	rows := [][]string{
		{"AA", "JFK", "Daily"},
		{"AA", "JFK", "Daily"},
		{"BA", "LHR", "Adhoc"},
		{"BA", "LHR", "Adhoc"},
		{"BA", "LHR", "Daily"},
		{"DL", "ATL", "Daily"},
	}
	in := writeCSV(t, []string{"provider", "site", "collection_frequency"}, rows)
	out := filepath.Join(t.TempDir(), "out.csv")

	grouped, stats, err := GroupFile(in, out, 0)
	require.NoError(t, err)
	require.Equal(t, int64(len(rows)), stats.TotalRows)
	require.Equal(t, int64(len(rows)), sumCounts(t, grouped))
}

func TestGroupUniqueRowsGetCountOne(t *testing.T) {
	in := writeCSV(t,
		[]string{"provider", "site"},
		[][]string{
			{"AA", "JFK"},
			{"BA", "LHR"},
			{"DL", "ATL"},
		})
	out := filepath.Join(t.TempDir(), "out.csv")

	grouped, stats, err := GroupFile(in, out, 0)
	require.NoError(t, err)
	require.Equal(t, 3, stats.Configurations)

	countIdx := grouped.ColumnIndex(dataset.CountColumn)
	for _, row := range grouped.Rows {
		require.Equal(t, "1", row[countIdx])
	}
}

func TestGroupSingleFieldDifferenceYieldsTwoConfigurations(t *testing.T) {
	in := writeCSV(t,
		[]string{"provider", "site", "priority"},
		[][]string{
			{"AA", "JFK", "1"},
			{"AA", "JFK", "1"},
			{"AA", "JFK", "2"},
		})
	out := filepath.Join(t.TempDir(), "out.csv")

	_, stats, err := GroupFile(in, out, 0)
	require.NoError(t, err)
	require.Equal(t, 2, stats.Configurations)
	require.Equal(t, int64(3), stats.TotalRows)
}

func TestGroupIsIdempotent(t *testing.T) {
	in := writeCSV(t,
		[]string{"provider", "site"},
		[][]string{
			{"AA", "JFK"},
			{"AA", "JFK"},
			{"AA", "JFK"},
			{"BA", "LHR"},
			{"BA", "LHR"},
		})
	dir := t.TempDir()
	once := filepath.Join(dir, "once.csv")
	twice := filepath.Join(dir, "twice.csv")

	first, firstStats, err := GroupFile(in, once, 0)
	require.NoError(t, err)

	// Grouping the grouped artifact sums row_count instead of comparing it.
	second, secondStats, err := GroupFile(once, twice, 0)
	require.NoError(t, err)

	require.Equal(t, firstStats.TotalRows, secondStats.TotalRows)
	require.Equal(t, first.Header, second.Header)
	require.Equal(t, first.Rows, second.Rows)
}

func TestGroupSumsExistingCounts(t *testing.T) {
	in := writeCSV(t,
		[]string{"provider", dataset.CountColumn, "site"},
		[][]string{
			{"AA", "5", "JFK"},
			{"AA", "2", "JFK"},
			{"BA", "", "LHR"}, // empty count defaults to 1
		})
	out := filepath.Join(t.TempDir(), "out.csv")

	grouped, stats, err := GroupFile(in, out, 0)
	require.NoError(t, err)
	require.Equal(t, int64(8), stats.TotalRows)
	require.Equal(t, 2, stats.Configurations)

	// Count column keeps its position when the input already had one.
	require.Equal(t, []string{"provider", dataset.CountColumn, "site"}, grouped.Header)
	require.Equal(t, "7", grouped.Rows[0][1])
}

func TestGroupRejectsMalformedCounts(t *testing.T) {
	in := writeCSV(t,
		[]string{"provider", dataset.CountColumn},
		[][]string{{"AA", "not-a-number"}})
	out := filepath.Join(t.TempDir(), "out.csv")

	_, _, err := GroupFile(in, out, 0)
	require.Error(t, err)
	var parseErr *model.ParseError
	require.ErrorAs(t, err, &parseErr)
	require.Equal(t, 1, parseErr.Row)
}

func TestGroupStreamsInChunks(t *testing.T) {
	var rows [][]string
	for i := 0; i < 250; i++ {
		rows = append(rows, []string{"AA", "JFK"})
		rows = append(rows, []string{"BA", strconv.Itoa(i)})
	}
	in := writeCSV(t, []string{"provider", "site"}, rows)
	out := filepath.Join(t.TempDir(), "out.csv")

	grouped, stats, err := GroupFile(in, out, 64)
	require.NoError(t, err)
	require.Equal(t, int64(500), stats.TotalRows)
	require.Equal(t, 251, stats.Configurations)
	require.Equal(t, int64(500), sumCounts(t, grouped))
}

func TestAnalyzeDistribution(t *testing.T) {
	grouped := &dataset.Table{
		Header: []string{"provider", "site", "collection_frequency", dataset.CountColumn},
		Rows: [][]string{
			{"AA", "JFK", "Daily", "10"},
			{"AA", "LAX", "Daily", "6"},
			{"BA", "LHR", "Adhoc", "4"},
		},
	}

	a := Analyze(grouped)
	require.Len(t, a.PerFrequency, 2)
	require.Equal(t, "Adhoc", a.PerFrequency[0].Frequency)
	require.Equal(t, int64(4), a.PerFrequency[0].Sum)
	require.Equal(t, int64(16), a.PerFrequency[1].Sum)
	require.Equal(t, int64(2), a.PerFrequency[1].Count)
	require.Equal(t, 8.0, a.PerFrequency[1].Mean)

	require.Equal(t, "AA|JFK", a.TopPairs[0].Pair)
	require.Equal(t, int64(10), a.TopPairs[0].Records)

	require.Equal(t, 4.0, a.Distribution.Min)
	require.Equal(t, 10.0, a.Distribution.Max)
	require.Equal(t, 6.0, a.Distribution.Median)
}

func TestPercentile(t *testing.T) {
	sorted := []float64{1, 2, 3, 4}
	require.Equal(t, 1.0, Percentile(sorted, 0))
	require.Equal(t, 2.5, Percentile(sorted, 0.5))
	require.Equal(t, 4.0, Percentile(sorted, 1))
	require.Equal(t, 0.0, Percentile(nil, 0.5))
}

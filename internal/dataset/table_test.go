package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestReadCSVPadsShortRows(t *testing.T) {
	path := writeFile(t, "a,b,c\n1,2,3\n4,5\n")

	table, err := ReadCSV(path)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c"}, table.Header)
	require.Equal(t, [][]string{{"1", "2", "3"}, {"4", "5", ""}}, table.Rows)
}

func TestReadCSVRejectsLongRows(t *testing.T) {
	path := writeFile(t, "a,b\n1,2,3\n")

	_, err := ReadCSV(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "has 3 fields")
}

func TestReadCSVTrimsHeaderWhitespace(t *testing.T) {
	path := writeFile(t, " a , b\n1,2\n")

	table, err := ReadCSV(path)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, table.Header)
}

func TestStreamCSVChunks(t *testing.T) {
	path := writeFile(t, "a\n1\n2\n3\n4\n5\n")

	var chunks []int
	header, total, err := StreamCSV(path, 2, func(chunk [][]string) error {
		chunks = append(chunks, len(chunk))
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []string{"a"}, header)
	require.Equal(t, 5, total)
	require.Equal(t, []int{2, 2, 1}, chunks)
}

func TestWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	in := &Table{
		Header: []string{"x", "y"},
		Rows:   [][]string{{"1", "hello, world"}, {"", "2"}},
	}
	require.NoError(t, in.WriteCSV(path))

	out, err := ReadCSV(path)
	require.NoError(t, err)
	require.Equal(t, in.Header, out.Header)
	require.Equal(t, in.Rows, out.Rows)
}

func TestFilterEqual(t *testing.T) {
	table := &Table{
		Header: []string{"provider", "site"},
		Rows: [][]string{
			{"AA", "JFK"},
			{"AA", "LAX"},
			{"BA", "JFK"},
		},
	}

	got := table.FilterEqual(map[string]string{"provider": "AA"})
	require.Len(t, got.Rows, 2)

	got = table.FilterEqual(map[string]string{"provider": "AA", "site": "JFK"})
	require.Equal(t, [][]string{{"AA", "JFK"}}, got.Rows)

	// Absent columns and empty values are ignored.
	got = table.FilterEqual(map[string]string{"missing": "x", "provider": ""})
	require.Len(t, got.Rows, 3)
}

func TestDistinct(t *testing.T) {
	table := &Table{
		Header: []string{"provider"},
		Rows:   [][]string{{"BA"}, {"AA"}, {"BA"}, {""}},
	}
	require.Equal(t, []string{"AA", "BA"}, table.Distinct("provider"))
	require.Nil(t, table.Distinct("missing"))
}

func TestFirstPresent(t *testing.T) {
	table := &Table{Header: []string{"x", "file_collection_frequency"}}
	require.Equal(t, 1, table.FirstPresent("collection_frequency", "file_collection_frequency"))
	require.Equal(t, -1, table.FirstPresent("nope"))
}

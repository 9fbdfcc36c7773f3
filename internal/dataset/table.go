package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// CountColumn is the occurrence-count column appended by grouping. Every
// other column is an attribute column and participates in row equality.
const CountColumn = "row_count"

// Table is an in-memory tabular dataset: a named header and string rows.
// Cell values are kept as raw strings so that no type coercion can change
// row equality.
type Table struct {
	Header []string
	Rows   [][]string
}

// CleanHeader trims surrounding whitespace from every column name.
func CleanHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		out[i] = strings.TrimSpace(h)
	}
	return out
}

// ReadCSV loads a whole CSV file into memory. Short rows are padded with
// empty strings; rows longer than the header are an error.
func ReadCSV(path string) (*Table, error) {
	t := &Table{}
	header, _, err := StreamCSV(path, 0, func(chunk [][]string) error {
		t.Rows = append(t.Rows, chunk...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	t.Header = header
	return t, nil
}

// ReadHeader reads just the cleaned header row of a CSV file.
func ReadHeader(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header of %s: %w", path, err)
	}
	return CleanHeader(header), nil
}

// StreamCSV reads a CSV file in chunks of chunkSize rows, invoking fn for
// each chunk. A chunkSize of 0 or less delivers the whole file as one chunk.
// Returns the cleaned header and the total number of data rows.
func StreamCSV(path string, chunkSize int, fn func(chunk [][]string) error) ([]string, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open dataset %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read header of %s: %w", path, err)
	}
	header = CleanHeader(header)

	var (
		chunk [][]string
		total int
	)
	flush := func() error {
		if len(chunk) == 0 {
			return nil
		}
		if err := fn(chunk); err != nil {
			return err
		}
		chunk = nil
		return nil
	}

	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("failed to read row %d of %s: %w", total+1, path, err)
		}
		if len(rec) > len(header) {
			return nil, 0, fmt.Errorf("row %d of %s has %d fields, header has %d", total+1, path, len(rec), len(header))
		}
		for len(rec) < len(header) {
			rec = append(rec, "")
		}
		chunk = append(chunk, rec)
		total++
		if chunkSize > 0 && len(chunk) >= chunkSize {
			if err := flush(); err != nil {
				return nil, 0, err
			}
		}
	}
	if err := flush(); err != nil {
		return nil, 0, err
	}
	return header, total, nil
}

// WriteCSV writes the table to path, header first.
func (t *Table) WriteCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create dataset %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(t.Header); err != nil {
		return fmt.Errorf("failed to write header of %s: %w", path, err)
	}
	for i, row := range t.Rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write row %d of %s: %w", i+1, path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush dataset %s: %w", path, err)
	}
	return nil
}

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// FirstPresent returns the index of the first candidate column that exists,
// or -1 when none do. Datasets from the two pipelines name some columns
// differently, so lookups go through candidate lists.
func (t *Table) FirstPresent(candidates ...string) int {
	for _, name := range candidates {
		if i := t.ColumnIndex(name); i >= 0 {
			return i
		}
	}
	return -1
}

// FilterEqual returns the rows whose cells equal every condition value.
// Conditions naming absent columns are ignored, matching the dashboard
// behavior of only offering filters for columns the source actually has.
func (t *Table) FilterEqual(conds map[string]string) *Table {
	type cond struct {
		idx int
		val string
	}
	var active []cond
	for name, val := range conds {
		if val == "" {
			continue
		}
		if i := t.ColumnIndex(name); i >= 0 {
			active = append(active, cond{i, val})
		}
	}
	out := &Table{Header: t.Header}
	if len(active) == 0 {
		out.Rows = t.Rows
		return out
	}
	for _, row := range t.Rows {
		ok := true
		for _, c := range active {
			if row[c.idx] != c.val {
				ok = false
				break
			}
		}
		if ok {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

// Distinct returns the sorted distinct non-empty values of a column, or nil
// when the column is absent.
func (t *Table) Distinct(name string) []string {
	i := t.ColumnIndex(name)
	if i < 0 {
		return nil
	}
	seen := make(map[string]bool)
	for _, row := range t.Rows {
		if row[i] != "" {
			seen[row[i]] = true
		}
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

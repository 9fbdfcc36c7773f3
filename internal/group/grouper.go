package group

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"autosched-insights/internal/dataset"
	"autosched-insights/internal/model"
)

// bucket is one equivalence class: the representative attribute cells and
// the running occurrence count.
type bucket struct {
	key   []string
	count int64
	seq   int
}

// TopConfig is one of the most frequent configurations, for summaries.
type TopConfig struct {
	Count     int64
	Frequency string
	Provider  string
	Site      string
}

// Stats summarizes one grouping run.
type Stats struct {
	TotalRows      int64
	Configurations int
	Ratio          float64
	Top            []TopConfig
}

// GroupFile streams the dataset at inPath in chunks, groups rows by exact
// equality over every attribute column and writes the grouped dataset to
// outPath. An existing row_count column is excluded from the equality key
// and summed instead, so grouping an already-grouped dataset is a no-op.
func GroupFile(inPath, outPath string, chunkSize int) (*dataset.Table, *Stats, error) {
	header, err := dataset.ReadHeader(inPath)
	if err != nil {
		return nil, nil, &model.ParseError{File: inPath, Err: err}
	}

	grouper := newGrouper()
	grouper.bind(header)

	rowNum := 0
	_, _, err = dataset.StreamCSV(inPath, chunkSize, func(chunk [][]string) error {
		for _, row := range chunk {
			rowNum++
			if err := grouper.add(row); err != nil {
				return &model.ParseError{File: inPath, Row: rowNum, Err: err}
			}
		}
		return nil
	})
	if err != nil {
		if _, ok := err.(*model.ParseError); ok {
			return nil, nil, err
		}
		return nil, nil, &model.ParseError{File: inPath, Err: err}
	}

	grouped := grouper.table(header)
	if err := grouped.WriteCSV(outPath); err != nil {
		return nil, nil, err
	}

	stats := grouper.stats(grouped)
	fmt.Printf("💾 Grouped dataset written to %s\n", outPath)
	return grouped, stats, nil
}

// grouper accumulates rows into equivalence classes.
type grouper struct {
	countIdx int
	buckets  map[uint64][]*bucket
	seq      int
	total    int64
}

func newGrouper() *grouper {
	return &grouper{countIdx: -1, buckets: make(map[uint64][]*bucket)}
}

// bind locates the count column in the header before any rows are added.
func (g *grouper) bind(header []string) {
	g.countIdx = -1
	for i, h := range header {
		if h == dataset.CountColumn {
			g.countIdx = i
		}
	}
}

func (g *grouper) add(row []string) error {
	weight := int64(1)
	if g.countIdx >= 0 {
		cell := row[g.countIdx]
		if cell != "" {
			n, err := strconv.ParseInt(cell, 10, 64)
			if err != nil {
				return fmt.Errorf("column %s must be an integer, got %q", dataset.CountColumn, cell)
			}
			if n < 0 {
				return fmt.Errorf("column %s must be non-negative, got %d", dataset.CountColumn, n)
			}
			weight = n
		}
	}
	g.total += weight

	key := row
	if g.countIdx >= 0 {
		key = make([]string, 0, len(row)-1)
		key = append(key, row[:g.countIdx]...)
		key = append(key, row[g.countIdx+1:]...)
	}

	h := hashKey(key)
	for _, b := range g.buckets[h] {
		if equalKey(b.key, key) {
			b.count += weight
			return nil
		}
	}
	g.buckets[h] = append(g.buckets[h], &bucket{key: key, count: weight, seq: g.seq})
	g.seq++
	return nil
}

// table renders the grouped rows ordered by descending count. Ties keep
// first-seen order. The count column stays in place when the input already
// had one, and is appended otherwise.
func (g *grouper) table(header []string) *dataset.Table {
	var all []*bucket
	for _, chain := range g.buckets {
		all = append(all, chain...)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].count != all[j].count {
			return all[i].count > all[j].count
		}
		return all[i].seq < all[j].seq
	})

	countIdx := g.countIdx
	outHeader := header
	if countIdx < 0 {
		outHeader = make([]string, 0, len(header)+1)
		outHeader = append(outHeader, header...)
		outHeader = append(outHeader, dataset.CountColumn)
		countIdx = len(outHeader) - 1
	}

	t := &dataset.Table{Header: outHeader, Rows: make([][]string, 0, len(all))}
	for _, b := range all {
		row := make([]string, len(outHeader))
		ki := 0
		for i := range outHeader {
			if i == countIdx {
				row[i] = strconv.FormatInt(b.count, 10)
				continue
			}
			row[i] = b.key[ki]
			ki++
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// stats computes the run summary including the top 10 configurations.
func (g *grouper) stats(grouped *dataset.Table) *Stats {
	s := &Stats{
		TotalRows:      g.total,
		Configurations: len(grouped.Rows),
	}
	if s.Configurations > 0 {
		s.Ratio = float64(s.TotalRows) / float64(s.Configurations)
	}

	countIdx := grouped.ColumnIndex(dataset.CountColumn)
	freqIdx := grouped.FirstPresent("collection_frequency", "file_collection_frequency")
	providerIdx := grouped.ColumnIndex("provider")
	siteIdx := grouped.ColumnIndex("site")

	for i, row := range grouped.Rows {
		if i >= 10 {
			break
		}
		top := TopConfig{}
		if countIdx >= 0 {
			top.Count, _ = strconv.ParseInt(row[countIdx], 10, 64)
		}
		if freqIdx >= 0 {
			top.Frequency = row[freqIdx]
		}
		if providerIdx >= 0 {
			top.Provider = row[providerIdx]
		}
		if siteIdx >= 0 {
			top.Site = row[siteIdx]
		}
		s.Top = append(s.Top, top)
	}
	return s
}

func hashKey(key []string) uint64 {
	d := xxhash.New()
	for _, cell := range key {
		d.WriteString(cell)
		d.Write(keySep)
	}
	return d.Sum64()
}

var keySep = []byte{0x1f}

func equalKey(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

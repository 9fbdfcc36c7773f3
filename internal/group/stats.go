package group

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"autosched-insights/internal/dataset"
)

// PrintSummary prints the grouping outcome in the console report format.
func PrintSummary(s *Stats) {
	fmt.Printf("📊 Grouping Summary:\n")
	fmt.Printf("   Total rows:            %d\n", s.TotalRows)
	fmt.Printf("   Unique configurations: %d\n", s.Configurations)
	fmt.Printf("   Compression ratio:     %.1fx\n", s.Ratio)
	if len(s.Top) == 0 {
		return
	}
	fmt.Printf("🏆 Top %d configurations:\n", len(s.Top))
	for _, top := range s.Top {
		fmt.Printf("   %8d × %-10s %s|%s\n", top.Count, top.Frequency, top.Provider, top.Site)
	}
}

// FrequencyStat aggregates configuration counts for one collection
// frequency.
type FrequencyStat struct {
	Frequency string
	Sum       int64
	Count     int64
	Mean      float64
	Max       int64
}

// PairStat is records attributed to one provider|site combination.
type PairStat struct {
	Pair    string
	Records int64
}

// Distribution describes the spread of the count column.
type Distribution struct {
	Min    float64
	P25    float64
	Median float64
	P75    float64
	Max    float64
	Mean   float64
}

// Analysis is the extended console report behind the --analyze flag.
type Analysis struct {
	PerFrequency []FrequencyStat
	TopPairs     []PairStat
	Distribution Distribution
}

// Analyze computes per-frequency aggregates, top provider|site combinations
// and the count distribution of a grouped dataset.
func Analyze(t *dataset.Table) *Analysis {
	countIdx := t.ColumnIndex(dataset.CountColumn)
	freqIdx := t.FirstPresent("collection_frequency", "file_collection_frequency")
	providerIdx := t.ColumnIndex("provider")
	siteIdx := t.ColumnIndex("site")

	a := &Analysis{}

	counts := make([]float64, 0, len(t.Rows))
	freqStats := make(map[string]*FrequencyStat)
	var freqOrder []string
	pairRecords := make(map[string]int64)

	for _, row := range t.Rows {
		var count int64 = 1
		if countIdx >= 0 {
			if n, err := strconv.ParseInt(row[countIdx], 10, 64); err == nil {
				count = n
			}
		}
		counts = append(counts, float64(count))

		if freqIdx >= 0 {
			freq := row[freqIdx]
			fs, ok := freqStats[freq]
			if !ok {
				fs = &FrequencyStat{Frequency: freq}
				freqStats[freq] = fs
				freqOrder = append(freqOrder, freq)
			}
			fs.Sum += count
			fs.Count++
			if count > fs.Max {
				fs.Max = count
			}
		}

		if providerIdx >= 0 && siteIdx >= 0 {
			pairRecords[row[providerIdx]+"|"+row[siteIdx]] += count
		}
	}

	sort.Strings(freqOrder)
	for _, freq := range freqOrder {
		fs := freqStats[freq]
		if fs.Count > 0 {
			fs.Mean = float64(fs.Sum) / float64(fs.Count)
		}
		a.PerFrequency = append(a.PerFrequency, *fs)
	}

	for pair, records := range pairRecords {
		a.TopPairs = append(a.TopPairs, PairStat{Pair: pair, Records: records})
	}
	sort.Slice(a.TopPairs, func(i, j int) bool {
		if a.TopPairs[i].Records != a.TopPairs[j].Records {
			return a.TopPairs[i].Records > a.TopPairs[j].Records
		}
		return a.TopPairs[i].Pair < a.TopPairs[j].Pair
	})
	if len(a.TopPairs) > 10 {
		a.TopPairs = a.TopPairs[:10]
	}

	if len(counts) > 0 {
		sort.Float64s(counts)
		var sum float64
		for _, c := range counts {
			sum += c
		}
		a.Distribution = Distribution{
			Min:    counts[0],
			P25:    Percentile(counts, 0.25),
			Median: Percentile(counts, 0.5),
			P75:    Percentile(counts, 0.75),
			Max:    counts[len(counts)-1],
			Mean:   sum / float64(len(counts)),
		}
	}

	return a
}

// PrintAnalysis prints the --analyze report.
func PrintAnalysis(a *Analysis) {
	if len(a.PerFrequency) > 0 {
		fmt.Printf("📊 Records by collection frequency:\n")
		fmt.Printf("   %-12s %10s %8s %10s %8s\n", "frequency", "records", "configs", "mean", "max")
		for _, fs := range a.PerFrequency {
			fmt.Printf("   %-12s %10d %8d %10.1f %8d\n", fs.Frequency, fs.Sum, fs.Count, fs.Mean, fs.Max)
		}
	}
	if len(a.TopPairs) > 0 {
		fmt.Printf("🏆 Top provider|site combinations:\n")
		for _, p := range a.TopPairs {
			fmt.Printf("   %8d × %s\n", p.Records, p.Pair)
		}
	}
	d := a.Distribution
	fmt.Printf("📊 %s distribution:\n", dataset.CountColumn)
	fmt.Printf("   min=%.0f p25=%.1f median=%.1f p75=%.1f max=%.0f mean=%.2f\n",
		d.Min, d.P25, d.Median, d.P75, d.Max, d.Mean)
}

// Percentile returns the linearly interpolated p-quantile (0..1) of sorted
// values.
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

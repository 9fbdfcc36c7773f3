package analyze

import (
	"fmt"
	"sort"
	"strconv"

	"autosched-insights/internal/dataset"
	"autosched-insights/internal/model"
	"autosched-insights/pkg/utils"
)

// Column candidates, in lookup order. The two pipelines name overlapping
// columns differently, so every lookup goes through a candidate list.
var (
	freqColumns         = []string{"collection_frequency", "file_collection_frequency"}
	planColumns         = []string{"hourly_collection_plan_id", "file_hourly_collection_plan_id"}
	customerColumns     = []string{"siteHierarchy_customer", "customerCollection_customer"}
	collectionColumns   = []string{"customerCollection_name"}
	priorityColumns     = []string{"siteHierarchy_priority"}
	customerSiteColumns = []string{"siteHierarchy_customerSiteCode"}
	startColumns        = []string{"customerCollection_earliestStartTime", "timeBox_earliestStartTime", "timebox_earliestStartTime"}
	endColumns          = []string{"customerCollection_expectedDeliveryTime", "timeBox_expectedDeliveryTime", "timebox_expectedDeliveryTime"}
)

// Time-of-day categories for the time analysis report.
var timeCategories = []struct {
	Name      string
	FromHour  int
	UntilHour int
}{
	{"Early Morning", 0, 6},
	{"Morning", 6, 12},
	{"Afternoon", 12, 18},
	{"Evening", 18, 24},
}

// rowCount reads the occurrence count of a grouped row, defaulting to 1.
func rowCount(row []string, idx int) int64 {
	if idx < 0 {
		return 1
	}
	if n, err := strconv.ParseInt(row[idx], 10, 64); err == nil && n > 0 {
		return n
	}
	return 1
}

// Summarize computes the dashboard metric cards for a grouped dataset.
func Summarize(source string, t *dataset.Table) model.Summary {
	countIdx := t.ColumnIndex(dataset.CountColumn)
	var records int64
	for _, row := range t.Rows {
		records += rowCount(row, countIdx)
	}
	return model.Summary{
		Source:              source,
		TotalConfigurations: len(t.Rows),
		TotalRecords:        records,
		UniqueProviders:     len(t.Distinct("provider")),
		UniqueSites:         len(t.Distinct("site")),
		UniqueCustomers:     distinctFirst(t, customerColumns),
	}
}

func distinctFirst(t *dataset.Table, candidates []string) int {
	for _, name := range candidates {
		if t.ColumnIndex(name) >= 0 {
			return len(t.Distinct(name))
		}
	}
	return 0
}

// Options lists the distinct values available for each dashboard filter.
func Options(t *dataset.Table) model.FilterOptions {
	return model.FilterOptions{
		Frequencies:       distinctValues(t, freqColumns),
		Providers:         t.Distinct("provider"),
		Sites:             t.Distinct("site"),
		Customers:         distinctValues(t, customerColumns),
		Collections:       distinctValues(t, collectionColumns),
		Priorities:        distinctValues(t, priorityColumns),
		CustomerSiteCodes: distinctValues(t, customerSiteColumns),
	}
}

func distinctValues(t *dataset.Table, candidates []string) []string {
	for _, name := range candidates {
		if t.ColumnIndex(name) >= 0 {
			return t.Distinct(name)
		}
	}
	return nil
}

// ApplyFilter narrows the dataset to rows matching every set filter field.
func ApplyFilter(t *dataset.Table, f model.Filter) *dataset.Table {
	if f.IsZero() {
		return t
	}
	conds := make(map[string]string)
	setCond := func(candidates []string, val string) {
		if val == "" {
			return
		}
		for _, name := range candidates {
			if t.ColumnIndex(name) >= 0 {
				conds[name] = val
				return
			}
		}
	}
	setCond(freqColumns, f.Frequency)
	setCond([]string{"provider"}, f.Provider)
	setCond([]string{"site"}, f.Site)
	setCond(customerColumns, f.Customer)
	setCond(collectionColumns, f.Collection)
	setCond(priorityColumns, f.Priority)
	setCond(customerSiteColumns, f.CustomerSiteCode)
	return t.FilterEqual(conds)
}

// weightedBy sums row counts per distinct value of a column.
func weightedBy(t *dataset.Table, colIdx int) (map[string]int64, []string) {
	countIdx := t.ColumnIndex(dataset.CountColumn)
	sums := make(map[string]int64)
	var order []string
	for _, row := range t.Rows {
		v := row[colIdx]
		if v == "" {
			continue
		}
		if _, ok := sums[v]; !ok {
			order = append(order, v)
		}
		sums[v] += rowCount(row, countIdx)
	}
	return sums, order
}

// FrequencyConfigSeries counts configurations per collection frequency.
func FrequencyConfigSeries(t *dataset.Table) model.ChartSeries {
	s := model.ChartSeries{Name: "configurations_by_frequency"}
	idx := t.FirstPresent(freqColumns...)
	if idx < 0 {
		return s
	}
	counts := make(map[string]int64)
	for _, row := range t.Rows {
		if row[idx] != "" {
			counts[row[idx]]++
		}
	}
	for _, freq := range sortedMapKeys(counts) {
		s.Labels = append(s.Labels, freq)
		s.Values = append(s.Values, float64(counts[freq]))
	}
	return s
}

// FrequencyRecordSeries sums records per collection frequency.
func FrequencyRecordSeries(t *dataset.Table) model.ChartSeries {
	s := model.ChartSeries{Name: "records_by_frequency"}
	idx := t.FirstPresent(freqColumns...)
	if idx < 0 {
		return s
	}
	sums, _ := weightedBy(t, idx)
	for _, freq := range sortedMapKeys(sums) {
		s.Labels = append(s.Labels, freq)
		s.Values = append(s.Values, float64(sums[freq]))
	}
	return s
}

// TopSeries returns the n values of a column with the most records.
func TopSeries(name string, t *dataset.Table, candidates []string, n int) model.ChartSeries {
	s := model.ChartSeries{Name: name}
	idx := t.FirstPresent(candidates...)
	if idx < 0 {
		return s
	}
	sums, order := weightedBy(t, idx)
	sort.SliceStable(order, func(i, j int) bool {
		return sums[order[i]] > sums[order[j]]
	})
	if len(order) > n {
		order = order[:n]
	}
	for _, v := range order {
		s.Labels = append(s.Labels, v)
		s.Values = append(s.Values, float64(sums[v]))
	}
	return s
}

// TopSitesSeries ranks sites by records.
func TopSitesSeries(t *dataset.Table, n int) model.ChartSeries {
	return TopSeries("top_sites", t, []string{"site"}, n)
}

// TopCustomersSeries ranks customers by records.
func TopCustomersSeries(t *dataset.Table, n int) model.ChartSeries {
	return TopSeries("top_customers", t, customerColumns, n)
}

// TopStartTimesSeries ranks scheduled start times by records, labeled HH:MM.
func TopStartTimesSeries(t *dataset.Table, n int) model.ChartSeries {
	s := model.ChartSeries{Name: "top_start_times"}
	idx := t.FirstPresent(startColumns...)
	if idx < 0 {
		return s
	}
	countIdx := t.ColumnIndex(dataset.CountColumn)
	sums := make(map[string]int64)
	for _, row := range t.Rows {
		h, m, ok := utils.ParseHHMM(row[idx])
		if !ok {
			continue
		}
		sums[utils.FormatHHMM(h, m)] += rowCount(row, countIdx)
	}
	labels := sortedMapKeys(sums)
	sort.SliceStable(labels, func(i, j int) bool {
		return sums[labels[i]] > sums[labels[j]]
	})
	if len(labels) > n {
		labels = labels[:n]
	}
	for _, l := range labels {
		s.Labels = append(s.Labels, l)
		s.Values = append(s.Values, float64(sums[l]))
	}
	return s
}

// HourlySeries is the records-by-hour-of-day histogram, weighted by
// occurrence count. Rows without a parseable start time are excluded.
func HourlySeries(t *dataset.Table) model.ChartSeries {
	s := model.ChartSeries{Name: "records_by_hour"}
	idx := t.FirstPresent(startColumns...)
	countIdx := t.ColumnIndex(dataset.CountColumn)
	var hours [24]int64
	if idx >= 0 {
		for _, row := range t.Rows {
			h, _, ok := utils.ParseHHMM(row[idx])
			if !ok {
				continue
			}
			hours[h] += rowCount(row, countIdx)
		}
	}
	for h := 0; h < 24; h++ {
		s.Labels = append(s.Labels, fmt.Sprintf("%02d", h))
		s.Values = append(s.Values, float64(hours[h]))
	}
	return s
}

// TimeCategorySeries buckets records into the four time-of-day categories.
func TimeCategorySeries(t *dataset.Table) model.ChartSeries {
	s := model.ChartSeries{Name: "time_categories"}
	idx := t.FirstPresent(startColumns...)
	countIdx := t.ColumnIndex(dataset.CountColumn)
	sums := make([]int64, len(timeCategories))
	if idx >= 0 {
		for _, row := range t.Rows {
			h, _, ok := utils.ParseHHMM(row[idx])
			if !ok {
				continue
			}
			for ci, cat := range timeCategories {
				if h >= cat.FromHour && h < cat.UntilHour {
					sums[ci] += rowCount(row, countIdx)
					break
				}
			}
		}
	}
	for ci, cat := range timeCategories {
		s.Labels = append(s.Labels, cat.Name)
		s.Values = append(s.Values, float64(sums[ci]))
	}
	return s
}

// Durations lists the scheduling window lengths in minutes with midnight
// rollover, one entry per configuration. Occurrence counts are not applied
// so the histogram shows configuration shapes rather than volume.
func Durations(t *dataset.Table) []float64 {
	startIdx := t.FirstPresent(startColumns...)
	endIdx := t.FirstPresent(endColumns...)
	if startIdx < 0 || endIdx < 0 {
		return nil
	}
	var out []float64
	for _, row := range t.Rows {
		sh, sm, ok := utils.ParseHHMM(row[startIdx])
		if !ok {
			continue
		}
		eh, em, ok := utils.ParseHHMM(row[endIdx])
		if !ok {
			continue
		}
		out = append(out, float64(utils.DurationMinutes(sh, sm, eh, em)))
	}
	return out
}

// DurationStats summarizes scheduling window lengths.
func DurationStats(durations []float64) model.DurationStats {
	s := model.DurationStats{Count: len(durations)}
	if len(durations) == 0 {
		return s
	}
	s.MinMinutes = durations[0]
	s.MaxMinutes = durations[0]
	var sum float64
	for _, d := range durations {
		if d < s.MinMinutes {
			s.MinMinutes = d
		}
		if d > s.MaxMinutes {
			s.MaxMinutes = d
		}
		sum += d
	}
	s.MeanMinutes = sum / float64(len(durations))
	return s
}

func sortedMapKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

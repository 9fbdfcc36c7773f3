package analyze

import (
	"testing"

	"github.com/stretchr/testify/require"

	"autosched-insights/internal/dataset"
	"autosched-insights/internal/model"
)

func groupedFixture() *dataset.Table {
	return &dataset.Table{
		Header: []string{
			"collection_frequency", "provider", "site", "siteHierarchy_customer",
			"customerCollection_earliestStartTime", "customerCollection_expectedDeliveryTime",
			dataset.CountColumn,
		},
		Rows: [][]string{
			{"Daily", "AA", "JFK", "acme", "500", "900", "10"},
			{"Daily", "AA", "LAX", "acme", "2300", "100", "5"},
			{"Adhoc", "BA", "LHR", "globex", "1730", "1930", "3"},
			{"Adhoc", "BA", "LHR", "globex", "9999", "", "2"}, // invalid time
		},
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize("json", groupedFixture())
	require.Equal(t, "json", s.Source)
	require.Equal(t, 4, s.TotalConfigurations)
	require.Equal(t, int64(20), s.TotalRecords)
	require.Equal(t, 2, s.UniqueProviders)
	require.Equal(t, 3, s.UniqueSites)
	require.Equal(t, 2, s.UniqueCustomers)
}

func TestApplyFilter(t *testing.T) {
	got := ApplyFilter(groupedFixture(), model.Filter{Provider: "AA"})
	require.Len(t, got.Rows, 2)

	got = ApplyFilter(groupedFixture(), model.Filter{Provider: "AA", Frequency: "Adhoc"})
	require.Empty(t, got.Rows)

	got = ApplyFilter(groupedFixture(), model.Filter{})
	require.Len(t, got.Rows, 4)
}

func TestFrequencySeries(t *testing.T) {
	configs := FrequencyConfigSeries(groupedFixture())
	require.Equal(t, []string{"Adhoc", "Daily"}, configs.Labels)
	require.Equal(t, []float64{2, 2}, configs.Values)

	records := FrequencyRecordSeries(groupedFixture())
	require.Equal(t, []string{"Adhoc", "Daily"}, records.Labels)
	require.Equal(t, []float64{5, 15}, records.Values)
}

func TestTopSitesSeries(t *testing.T) {
	s := TopSitesSeries(groupedFixture(), 2)
	require.Equal(t, []string{"JFK", "LAX"}, s.Labels)
	require.Equal(t, []float64{10, 5}, s.Values)
}

func TestHourlySeriesSkipsInvalidTimes(t *testing.T) {
	s := HourlySeries(groupedFixture())
	require.Len(t, s.Labels, 24)
	require.Equal(t, float64(10), s.Values[5])  // 0500
	require.Equal(t, float64(5), s.Values[23])  // 2300
	require.Equal(t, float64(3), s.Values[17])  // 1730
	// The 9999 row is excluded, so hours sum to 18, not 20.
	var sum float64
	for _, v := range s.Values {
		sum += v
	}
	require.Equal(t, float64(18), sum)
}

func TestTimeCategorySeries(t *testing.T) {
	s := TimeCategorySeries(groupedFixture())
	require.Equal(t, []string{"Early Morning", "Morning", "Afternoon", "Evening"}, s.Labels)
	require.Equal(t, []float64{10, 0, 3, 5}, s.Values)
}

func TestDurationsRollOverMidnight(t *testing.T) {
	d := Durations(groupedFixture())
	// 500→900 = 240m, 2300→100 = 120m (rollover), 1730→1930 = 120m.
	require.Equal(t, []float64{240, 120, 120}, d)

	stats := DurationStats(d)
	require.Equal(t, 3, stats.Count)
	require.Equal(t, 120.0, stats.MinMinutes)
	require.Equal(t, 240.0, stats.MaxMinutes)
	require.Equal(t, 160.0, stats.MeanMinutes)
}

func TestOptions(t *testing.T) {
	opts := Options(groupedFixture())
	require.Equal(t, []string{"Adhoc", "Daily"}, opts.Frequencies)
	require.Equal(t, []string{"AA", "BA"}, opts.Providers)
	require.Equal(t, []string{"acme", "globex"}, opts.Customers)
	require.Empty(t, opts.Collections)
}

func TestBuildHeatmap(t *testing.T) {
	table := &dataset.Table{
		Header: []string{
			"hourly_collection_plan_id", "provider", "site", "siteHierarchy_customer",
			"customerCollection_earliestStartTime", "customerCollection_expectedDeliveryTime",
			dataset.CountColumn,
		},
		Rows: [][]string{
			{"20", "AA", "JFK", "acme", "500", "700", "2"},
			{"10", "BA", "LHR", "globex", "2300", "100", "1"},
		},
	}

	hm := BuildHeatmap(table)
	require.Len(t, hm.Hours, 24)
	// Rows ordered by first plan ID: BA (plan 10) before AA (plan 20).
	require.Equal(t, []string{"BA|LHR|globex", "AA|JFK|acme"}, hm.RowLabels)

	// AA covers hours 5..7 with count 2.
	require.Equal(t, float64(2), hm.Values[1][5])
	require.Equal(t, float64(2), hm.Values[1][7])
	require.Equal(t, float64(0), hm.Values[1][8])

	// BA wraps midnight: hours 23, 0, 1.
	require.Equal(t, float64(1), hm.Values[0][23])
	require.Equal(t, float64(1), hm.Values[0][0])
	require.Equal(t, float64(1), hm.Values[0][1])
	require.Equal(t, float64(0), hm.Values[0][2])
}

package analyze

import (
	"sort"
	"strconv"
	"strings"

	"autosched-insights/internal/dataset"
	"autosched-insights/internal/model"
	"autosched-insights/pkg/utils"
)

// maxHeatmapRows bounds the dashboard payload.
const maxHeatmapRows = 300

// BuildHeatmap builds the provider|site|customer by hour-of-day activity
// matrix. Each configuration contributes its occurrence count to every hour
// of its scheduling window; windows crossing midnight wrap around. Rows are
// ordered by the first plan ID they were seen with, matching the scheduler
// plan order.
func BuildHeatmap(t *dataset.Table) model.Heatmap {
	hm := model.Heatmap{}
	for h := 0; h < 24; h++ {
		hm.Hours = append(hm.Hours, h)
	}

	providerIdx := t.ColumnIndex("provider")
	siteIdx := t.ColumnIndex("site")
	customerIdx := t.FirstPresent(customerColumns...)
	startIdx := t.FirstPresent(startColumns...)
	endIdx := t.FirstPresent(endColumns...)
	countIdx := t.ColumnIndex(dataset.CountColumn)
	planIdx := t.FirstPresent(planColumns...)
	if startIdx < 0 {
		return hm
	}

	type rowAgg struct {
		label     string
		firstPlan int64
		seq       int
		hours     [24]float64
		total     float64
	}

	aggs := make(map[string]*rowAgg)
	var all []*rowAgg

	for _, row := range t.Rows {
		sh, _, ok := utils.ParseHHMM(row[startIdx])
		if !ok {
			continue
		}

		var parts []string
		for _, idx := range []int{providerIdx, siteIdx, customerIdx} {
			if idx >= 0 && row[idx] != "" {
				parts = append(parts, row[idx])
			}
		}
		if len(parts) == 0 {
			continue
		}
		label := strings.Join(parts, "|")

		agg, ok := aggs[label]
		if !ok {
			agg = &rowAgg{label: label, firstPlan: -1, seq: len(all)}
			if planIdx >= 0 {
				if n, err := strconv.ParseInt(row[planIdx], 10, 64); err == nil {
					agg.firstPlan = n
				}
			}
			aggs[label] = agg
			all = append(all, agg)
		}

		endH := sh
		if endIdx >= 0 {
			if eh, _, ok := utils.ParseHHMM(row[endIdx]); ok {
				endH = eh
			}
		}
		span := endH - sh
		if span < 0 {
			span += 24
		}

		count := float64(rowCount(row, countIdx))
		for i := 0; i <= span; i++ {
			agg.hours[(sh+i)%24] += count
			agg.total += count
		}
	}

	if len(all) > maxHeatmapRows {
		sort.SliceStable(all, func(i, j int) bool {
			return all[i].total > all[j].total
		})
		all = all[:maxHeatmapRows]
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].firstPlan != all[j].firstPlan {
			if all[i].firstPlan < 0 {
				return false
			}
			if all[j].firstPlan < 0 {
				return true
			}
			return all[i].firstPlan < all[j].firstPlan
		}
		return all[i].seq < all[j].seq
	})

	for _, agg := range all {
		hm.RowLabels = append(hm.RowLabels, agg.label)
		values := make([]float64, 24)
		copy(values, agg.hours[:])
		hm.Values = append(hm.Values, values)
	}
	return hm
}

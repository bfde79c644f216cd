package pipeline

import "github.com/theirongolddev/orgburn/internal/model"

// TotalCost sums record costs into a total and a day-of-month histogram.
// Records without a derivable date count toward the total only.
func TotalCost(records []model.UsageRecord) model.CostSummary {
	var s model.CostSummary
	for _, r := range records {
		cost := r.Cost()
		s.Total += cost
		if day, ok := r.DayOfMonth(); ok {
			s.ByDay.Add(day, cost)
		}
	}
	return s
}

// RebuildToCost rolls up each group with TotalCost, preserving group order.
func RebuildToCost(grouped *model.GroupedRecords) []model.GroupCost {
	keys := grouped.Keys()
	out := make([]model.GroupCost, 0, len(keys))
	for _, k := range keys {
		records, _ := grouped.Get(k)
		s := TotalCost(records)
		out = append(out, model.GroupCost{
			Key:            k,
			TotalCost:      s.Total,
			CostTransition: s.ByDay,
		})
	}
	return out
}

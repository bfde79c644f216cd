package pipeline

import (
	"sort"

	"github.com/theirongolddev/orgburn/internal/model"
)

// NameResolver maps user ids to display names.
type NameResolver interface {
	DisplayName(userID string) string
}

// UserTotals returns one cost row per user in first-occurrence order. Names
// come from names when given, else the row shows the user id.
func UserTotals(records []model.UsageRecord, names NameResolver) []model.UserTotal {
	grouped := GroupByUser(records)
	out := make([]model.UserTotal, 0, grouped.Len())
	for _, userID := range grouped.Keys() {
		recs, _ := grouped.Get(userID)
		s := TotalCost(recs)
		name := userID
		if names != nil {
			name = names.DisplayName(userID)
		}
		out = append(out, model.UserTotal{
			UserID:    userID,
			Name:      name,
			TotalCost: s.Total,
			ByDay:     s.ByDay,
			Requests:  len(recs),
		})
	}
	return out
}

// DailyModelCosts splits cost per date and then per model. Dates sort
// ascending with undated records last; models keep first-occurrence order.
func DailyModelCosts(records []model.UsageRecord) []model.DailyModelCosts {
	byDate := GroupByDate(records)
	dates := byDate.Keys()
	sort.SliceStable(dates, func(i, j int) bool {
		if dates[i] == UndatedKey || dates[j] == UndatedKey {
			return dates[j] == UndatedKey && dates[i] != UndatedKey
		}
		return dates[i] < dates[j]
	})

	out := make([]model.DailyModelCosts, 0, len(dates))
	for _, date := range dates {
		recs, _ := byDate.Get(date)
		out = append(out, model.DailyModelCosts{
			Date:   date,
			Models: RebuildToCost(GroupByModel(recs)),
		})
	}
	return out
}

// ModelTotals returns per-model cost and request counts, most expensive first.
func ModelTotals(records []model.UsageRecord) []model.ModelTotal {
	grouped := GroupByModel(records)
	total := TotalCost(records).Total

	out := make([]model.ModelTotal, 0, grouped.Len())
	for _, name := range grouped.Keys() {
		recs, _ := grouped.Get(name)
		cost := TotalCost(recs).Total
		mt := model.ModelTotal{Model: name, Requests: len(recs), Cost: cost}
		if total > 0 {
			mt.SharePercent = cost / total * 100
		}
		out = append(out, mt)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Cost > out[j].Cost })
	return out
}

// ChartCeiling picks the y-axis ceiling of a user's daily cost chart from
// their total cost over the period.
func ChartCeiling(total float64) float64 {
	switch {
	case total < 10:
		return 10
	case total < 50:
		return 50
	case total < 100:
		return 100
	case total < 1000:
		return 500
	case total < 3000:
		return 1500
	default:
		return 3000
	}
}

// ActiveProjects drops archived and otherwise inactive projects.
func ActiveProjects(projects []model.Project) []model.Project {
	out := make([]model.Project, 0, len(projects))
	for _, p := range projects {
		if p.Active() {
			out = append(out, p)
		}
	}
	return out
}

// DistinctUserIDs returns the user ids seen in records, in encounter order,
// skipping records without a user.
func DistinctUserIDs(records []model.UsageRecord) []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, r := range records {
		if r.UserID == "" || r.UserID == model.UnknownUser {
			continue
		}
		if _, ok := seen[r.UserID]; ok {
			continue
		}
		seen[r.UserID] = struct{}{}
		ids = append(ids, r.UserID)
	}
	return ids
}

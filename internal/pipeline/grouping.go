// Package pipeline loads usage exports and aggregates them into cost views.
package pipeline

import "github.com/theirongolddev/orgburn/internal/model"

// UndatedKey groups records with no derivable date.
const UndatedKey = ""

// KeyFunc extracts a grouping key from a record.
type KeyFunc func(model.UsageRecord) string

// GroupBy partitions records by key. Records whose key is empty fall under
// defaultKey. Groups iterate in first-occurrence order and no record is dropped.
func GroupBy(records []model.UsageRecord, key KeyFunc, defaultKey string) *model.GroupedRecords {
	g := model.NewGroupedRecords()
	for _, r := range records {
		k := key(r)
		if k == "" {
			k = defaultKey
		}
		g.Add(k, r)
	}
	return g
}

// GroupByUser groups records by user id, defaulting to model.UnknownUser.
func GroupByUser(records []model.UsageRecord) *model.GroupedRecords {
	return GroupBy(records, func(r model.UsageRecord) string { return r.UserID }, model.UnknownUser)
}

// GroupByDate groups records by calendar date, deriving it from start_time
// when no date was attached. Undated records share UndatedKey.
func GroupByDate(records []model.UsageRecord) *model.GroupedRecords {
	return GroupBy(records, model.UsageRecord.DateKey, UndatedKey)
}

// GroupByModel groups records by the model named in their line item.
func GroupByModel(records []model.UsageRecord) *model.GroupedRecords {
	return GroupBy(records, model.UsageRecord.Model, "")
}

// GroupByProject groups records by project id, defaulting to model.NoProject.
func GroupByProject(records []model.UsageRecord) *model.GroupedRecords {
	return GroupBy(records, func(r model.UsageRecord) string { return r.ProjectID }, model.NoProject)
}

// Filter returns the records for which keep reports true, in order.
func Filter(records []model.UsageRecord, keep func(model.UsageRecord) bool) []model.UsageRecord {
	var out []model.UsageRecord
	for _, r := range records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// ForUser returns the records of one user. model.UnknownUser matches records
// with no user id.
func ForUser(records []model.UsageRecord, userID string) []model.UsageRecord {
	return Filter(records, func(r model.UsageRecord) bool {
		id := r.UserID
		if id == "" {
			id = model.UnknownUser
		}
		return id == userID
	})
}

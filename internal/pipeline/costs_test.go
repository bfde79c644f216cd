package pipeline

import (
	"math"
	"testing"
	"time"

	"github.com/theirongolddev/orgburn/internal/model"
	"github.com/theirongolddev/orgburn/internal/source"
)

func TestTotalCost_DayOfMonth(t *testing.T) {
	records := []model.UsageRecord{
		rec("2025-01-05", "u1", "", "", 1.5),
		rec("2025-02-05", "u1", "", "", 2),
		rec("2025-01-31", "u1", "", "", 4),
		rec("", "u1", "", "", 8),
	}
	s := TotalCost(records)
	if s.Total != 15.5 {
		t.Errorf("Total = %f, want 15.5", s.Total)
	}
	if s.ByDay.At(5) != 3.5 {
		t.Errorf("ByDay[5] = %f, want 3.5 (day of month, not day of year)", s.ByDay.At(5))
	}
	if s.ByDay.At(31) != 4 {
		t.Errorf("ByDay[31] = %f, want 4", s.ByDay.At(31))
	}
	if s.ByDay.Sum() != 7.5 {
		t.Errorf("ByDay.Sum() = %f, want 7.5 (undated excluded)", s.ByDay.Sum())
	}
}

func TestTotalCost_SanitizesAmounts(t *testing.T) {
	records := []model.UsageRecord{
		{Date: "2025-01-01"},
		{Date: "2025-01-01", Amount: &model.Amount{Value: math.NaN()}},
		{Date: "2025-01-01", Amount: &model.Amount{Value: math.Inf(1)}},
		rec("2025-01-01", "", "", "", 0.25),
	}
	s := TotalCost(records)
	if s.Total != 0.25 || s.ByDay.At(1) != 0.25 {
		t.Errorf("summary = %+v, want total 0.25", s)
	}
}

func TestTotalCost_TwoBucketsSameDay(t *testing.T) {
	doc, err := source.ParseDocument([]byte(`{"data":[
		{"start_time":1736078400,"end_time":1736082000,"results":[{"user_id":"u1","amount":{"value":2.5}}]},
		{"start_time":1736082000,"end_time":1736085600,"results":[{"user_id":"u1","amount":{"value":2.5}}]}
	]}`))
	if err != nil {
		t.Fatal(err)
	}
	records := source.Extract(doc, time.UTC)

	byUser := RebuildToCost(GroupByUser(records))
	if len(byUser) != 1 {
		t.Fatalf("groups = %d, want 1", len(byUser))
	}
	if byUser[0].Key != "u1" || byUser[0].TotalCost != 5.0 {
		t.Errorf("group = %+v, want u1 total 5.0", byUser[0])
	}
	if byUser[0].CostTransition.At(5) != 5.0 {
		t.Errorf("CostTransition[5] = %f, want 5.0", byUser[0].CostTransition.At(5))
	}
}

func TestTotalCost_DerivesDateFromStartTime(t *testing.T) {
	// Noon UTC lands on the 5th in every zone from UTC-11 to UTC+11.
	start := int64(1736078400)
	s := TotalCost([]model.UsageRecord{{StartTime: &start, Amount: &model.Amount{Value: 1}}})
	if s.ByDay.At(5) != 1 {
		t.Errorf("ByDay[5] = %f, want 1", s.ByDay.At(5))
	}
}

func TestRebuildToCost_PreservesOrder(t *testing.T) {
	records := []model.UsageRecord{
		rec("2025-01-02", "b", "", "", 1),
		rec("2025-01-02", "a", "", "", 2),
		rec("2025-01-03", "b", "", "", 3),
	}
	costs := RebuildToCost(GroupByUser(records))
	if len(costs) != 2 || costs[0].Key != "b" || costs[1].Key != "a" {
		t.Fatalf("costs = %+v, want b then a", costs)
	}
	if costs[0].TotalCost != 4 || costs[0].CostTransition.At(3) != 3 {
		t.Errorf("costs[0] = %+v, want total 4 with 3 on day 3", costs[0])
	}
}

package pipeline

import (
	"testing"

	"github.com/theirongolddev/orgburn/internal/model"
)

type staticNames map[string]string

func (n staticNames) DisplayName(id string) string {
	if name, ok := n[id]; ok {
		return name
	}
	return "Unknown"
}

func TestUserTotals(t *testing.T) {
	records := []model.UsageRecord{
		rec("2025-01-02", "u1", "p1", "", 1),
		rec("2025-01-02", "u2", "p1", "", 2),
		rec("2025-01-03", "u1", "p1", "", 3),
	}
	rows := UserTotals(records, staticNames{"u1": "Ada"})
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}
	if rows[0].UserID != "u1" || rows[0].Name != "Ada" || rows[0].TotalCost != 4 || rows[0].Requests != 2 {
		t.Errorf("rows[0] = %+v", rows[0])
	}
	if rows[0].ByDay.At(3) != 3 {
		t.Errorf("rows[0].ByDay[3] = %f, want 3", rows[0].ByDay.At(3))
	}
	if rows[1].Name != "Unknown" {
		t.Errorf("rows[1].Name = %q, want Unknown", rows[1].Name)
	}

	if plain := UserTotals(records, nil); plain[0].Name != "u1" {
		t.Errorf("Name without resolver = %q, want user id", plain[0].Name)
	}
}

func TestDailyModelCosts(t *testing.T) {
	records := []model.UsageRecord{
		rec("2025-01-03", "u1", "", "gpt-4o, input", 1),
		{UserID: "u1", LineItem: "gpt-4o, input", Amount: &model.Amount{Value: 9}},
		rec("2025-01-02", "u1", "", "gpt-4o-mini, input", 2),
		rec("2025-01-02", "u1", "", "gpt-4o, output", 4),
		rec("2025-01-02", "u1", "", "gpt-4o-mini, output", 8),
	}
	days := DailyModelCosts(records)

	if len(days) != 3 {
		t.Fatalf("len(days) = %d, want 3", len(days))
	}
	if days[0].Date != "2025-01-02" || days[1].Date != "2025-01-03" || days[2].Date != UndatedKey {
		t.Errorf("dates = %q %q %q, want ascending with undated last", days[0].Date, days[1].Date, days[2].Date)
	}
	models := days[0].Models
	if len(models) != 2 || models[0].Key != "gpt-4o-mini" || models[0].TotalCost != 10 || models[1].TotalCost != 4 {
		t.Errorf("2025-01-02 models = %+v", models)
	}
}

func TestModelTotals(t *testing.T) {
	records := []model.UsageRecord{
		rec("", "", "", "gpt-4o-mini, input", 1),
		rec("", "", "", "gpt-4o, input", 2),
		rec("", "", "", "gpt-4o, output", 5),
	}
	totals := ModelTotals(records)
	if len(totals) != 2 || totals[0].Model != "gpt-4o" {
		t.Fatalf("totals = %+v, want gpt-4o first", totals)
	}
	if totals[0].Cost != 7 || totals[0].Requests != 2 || totals[0].SharePercent != 87.5 {
		t.Errorf("totals[0] = %+v, want cost 7, 2 requests, 87.5%%", totals[0])
	}
	if empty := ModelTotals([]model.UsageRecord{{LineItem: "x"}}); empty[0].SharePercent != 0 {
		t.Errorf("SharePercent with zero total = %f, want 0", empty[0].SharePercent)
	}
}

func TestChartCeiling(t *testing.T) {
	tests := []struct {
		total, want float64
	}{
		{0, 10}, {9.99, 10}, {10, 50}, {49, 50}, {50, 100},
		{99, 100}, {100, 500}, {999, 500}, {1000, 1500}, {2999, 1500}, {3000, 3000}, {1e6, 3000},
	}
	for _, tt := range tests {
		if got := ChartCeiling(tt.total); got != tt.want {
			t.Errorf("ChartCeiling(%v) = %v, want %v", tt.total, got, tt.want)
		}
	}
}

func TestActiveProjects(t *testing.T) {
	archived := int64(1700000000)
	projects := []model.Project{
		{ID: "p1", Status: "active"},
		{ID: "p2", Status: "archived"},
		{ID: "p3"},
		{ID: "p4", Status: "active", ArchivedAt: &archived},
	}
	active := ActiveProjects(projects)
	if len(active) != 2 || active[0].ID != "p1" || active[1].ID != "p3" {
		t.Errorf("active = %+v, want p1 and p3", active)
	}
}

func TestDistinctUserIDs(t *testing.T) {
	records := []model.UsageRecord{
		{UserID: "u2"}, {UserID: ""}, {UserID: "u1"}, {UserID: "u2"}, {UserID: model.UnknownUser},
	}
	ids := DistinctUserIDs(records)
	if len(ids) != 2 || ids[0] != "u2" || ids[1] != "u1" {
		t.Errorf("ids = %v, want [u2 u1]", ids)
	}
}

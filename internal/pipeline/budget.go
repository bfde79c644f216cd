package pipeline

import (
	"sort"

	"github.com/theirongolddev/orgburn/internal/model"
)

// Default usage-rate thresholds, in percent of the budget limit.
const (
	DefaultWarningPercent  = 70
	DefaultCriticalPercent = 90
)

// Thresholds are the usage-rate percentages at which a budget turns warning or critical.
type Thresholds struct {
	Warning  float64
	Critical float64
}

// DefaultThresholds returns the standard 70% / 90% thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{Warning: DefaultWarningPercent, Critical: DefaultCriticalPercent}
}

// FindOverages reports projects whose usage exceeds their budget, largest
// overage first. A budgeted project with no usage counts as zero spend, except
// when the usage holds unattributed records and a project directory was given:
// such budgets are skipped since project usage cannot be attributed reliably.
// Budgets are visited in sorted key order and ties keep that order.
func FindOverages(usage model.ProjectUsageSummary, budgets map[string]float64, projects []model.Project) []model.BudgetOverage {
	_, hasUnattributed := usage.Get(model.NoProject)

	var overages []model.BudgetOverage
	for _, projectID := range sortedKeys(budgets) {
		budget := budgets[projectID]

		var actual float64
		var details *model.ProjectUsage
		if u, ok := usage.Get(projectID); ok {
			actual = u.TotalCost
			details = &u
		} else if hasUnattributed && len(projects) > 0 {
			continue
		}

		if actual <= budget {
			continue
		}
		amount := actual - budget
		var pct float64
		if budget > 0 {
			pct = amount / budget * 100
		}
		overages = append(overages, model.BudgetOverage{
			ProjectID:         projectID,
			ProjectName:       ProjectName(projects, projectID),
			Budget:            budget,
			ActualUsage:       actual,
			OverageAmount:     amount,
			OveragePercentage: pct,
			UsageDetails:      details,
		})
	}

	sort.SliceStable(overages, func(i, j int) bool {
		return overages[i].OverageAmount > overages[j].OverageAmount
	})
	return overages
}

// UsageRate returns spent as a percentage of limit, or 0 for a zero limit.
func UsageRate(spent, limit float64) float64 {
	if limit <= 0 {
		return 0
	}
	return spent / limit * 100
}

// ClassifyBudget returns the budget state for the given spend against limit.
func ClassifyBudget(spent, limit float64, th Thresholds) model.BudgetState {
	rate := UsageRate(spent, limit)
	switch {
	case spent > limit:
		return model.BudgetExceeded
	case rate >= th.Critical:
		return model.BudgetCritical
	case rate >= th.Warning:
		return model.BudgetWarning
	default:
		return model.BudgetOK
	}
}

// BudgetStatuses tracks every budgeted project, most severe first and then by
// usage rate. Projects without usage have zero spend.
func BudgetStatuses(usage model.ProjectUsageSummary, budgets map[string]float64, projects []model.Project, th Thresholds) []model.BudgetStatus {
	statuses := make([]model.BudgetStatus, 0, len(budgets))
	for _, projectID := range sortedKeys(budgets) {
		limit := budgets[projectID]
		var spent float64
		if u, ok := usage.Get(projectID); ok {
			spent = u.TotalCost
		}
		statuses = append(statuses, model.BudgetStatus{
			ProjectID:   projectID,
			ProjectName: ProjectName(projects, projectID),
			Limit:       limit,
			Spent:       spent,
			UsageRate:   UsageRate(spent, limit),
			State:       ClassifyBudget(spent, limit, th),
		})
	}

	sort.SliceStable(statuses, func(i, j int) bool {
		si, sj := statuses[i].State.Severity(), statuses[j].State.Severity()
		if si != sj {
			return si > sj
		}
		return statuses[i].UsageRate > statuses[j].UsageRate
	})
	return statuses
}

// ProjectName returns the directory name of a project, or its id when unknown.
func ProjectName(projects []model.Project, projectID string) string {
	for _, p := range projects {
		if p.ID == projectID && p.Name != "" {
			return p.Name
		}
	}
	return projectID
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

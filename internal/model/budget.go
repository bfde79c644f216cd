package model

// Project is an entry of the organization project directory.
type Project struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Status     string `json:"status,omitempty"`
	ArchivedAt *int64 `json:"archived_at,omitempty"`
	CreatedAt  int64  `json:"created_at,omitempty"`
}

// Active reports whether the project is neither archived nor in a non-active state.
func (p Project) Active() bool {
	if p.ArchivedAt != nil {
		return false
	}
	return p.Status == "" || p.Status == "active"
}

// BudgetOverage describes a project whose actual usage exceeds its budget.
type BudgetOverage struct {
	ProjectID         string        `json:"project_id"`
	ProjectName       string        `json:"project_name"`
	Budget            float64       `json:"budget"`
	ActualUsage       float64       `json:"actual_usage"`
	OverageAmount     float64       `json:"overage_amount"`
	OveragePercentage float64       `json:"overage_percentage"`
	UsageDetails      *ProjectUsage `json:"usage_details,omitempty"`
}

// BudgetState classifies spend against a budget limit.
type BudgetState string

// Budget states, from least to most severe.
const (
	BudgetOK       BudgetState = "ok"
	BudgetWarning  BudgetState = "warning"
	BudgetCritical BudgetState = "critical"
	BudgetExceeded BudgetState = "exceeded"
)

// Severity orders states for sorting; higher is worse.
func (s BudgetState) Severity() int {
	switch s {
	case BudgetExceeded:
		return 3
	case BudgetCritical:
		return 2
	case BudgetWarning:
		return 1
	default:
		return 0
	}
}

// BudgetStatus holds budget tracking data for one project.
type BudgetStatus struct {
	ProjectID   string      `json:"project_id"`
	ProjectName string      `json:"project_name"`
	Limit       float64     `json:"limit"`
	Spent       float64     `json:"spent"`
	UsageRate   float64     `json:"usage_rate"` // percent of limit
	State       BudgetState `json:"state"`
}

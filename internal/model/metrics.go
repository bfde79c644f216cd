package model

// DayCosts is a cost histogram keyed by calendar day of month (1..31), not day
// of year. Slot 0 is unused so that the day number is the index.
type DayCosts [32]float64

// At returns the cost accumulated on the given day of month, or 0 when out of range.
func (d DayCosts) At(day int) float64 {
	if day < 1 || day > 31 {
		return 0
	}
	return d[day]
}

// Add accumulates cost on the given day of month. Out-of-range days are ignored.
func (d *DayCosts) Add(day int, cost float64) {
	if day < 1 || day > 31 {
		return
	}
	d[day] += cost
}

// Sum returns the total over days 1..31.
func (d DayCosts) Sum() float64 {
	var sum float64
	for day := 1; day <= 31; day++ {
		sum += d[day]
	}
	return sum
}

// Series returns days 1..31 as a 31-element slice for charting.
func (d DayCosts) Series() []float64 {
	out := make([]float64, 31)
	copy(out, d[1:])
	return out
}

// CostSummary holds a total and its day-of-month breakdown.
type CostSummary struct {
	Total float64
	ByDay DayCosts
}

// GroupCost is the cost rollup of one group of records.
type GroupCost struct {
	Key            string
	TotalCost      float64
	CostTransition DayCosts
}

// UserUsage is one user's share of a project's usage.
type UserUsage struct {
	UserID   string  `json:"user_id"`
	Email    string  `json:"email"`
	Cost     float64 `json:"cost"`
	Requests int     `json:"requests"`
}

// ProjectUsage is the usage rollup of a single project.
type ProjectUsage struct {
	ProjectID     string      `json:"project_id"`
	TotalCost     float64     `json:"total_cost"`
	TotalRequests int         `json:"total_requests"`
	Users         []UserUsage `json:"users"` // first-occurrence order
}

// User returns the breakdown entry for userID.
func (p ProjectUsage) User(userID string) (UserUsage, bool) {
	for _, u := range p.Users {
		if u.UserID == userID {
			return u, true
		}
	}
	return UserUsage{}, false
}

// ProjectUsageSummary maps project ids to their usage, in first-occurrence order.
type ProjectUsageSummary struct {
	projects []ProjectUsage
	index    map[string]int
}

// NewProjectUsageSummary builds a summary from project rollups. A repeated
// project id replaces the earlier entry in place.
func NewProjectUsageSummary(projects ...ProjectUsage) ProjectUsageSummary {
	s := ProjectUsageSummary{index: make(map[string]int, len(projects))}
	for _, p := range projects {
		if i, ok := s.index[p.ProjectID]; ok {
			s.projects[i] = p
			continue
		}
		s.index[p.ProjectID] = len(s.projects)
		s.projects = append(s.projects, p)
	}
	return s
}

// Get returns the usage of one project.
func (s ProjectUsageSummary) Get(projectID string) (ProjectUsage, bool) {
	i, ok := s.index[projectID]
	if !ok {
		return ProjectUsage{}, false
	}
	return s.projects[i], true
}

// Projects returns all project rollups in first-occurrence order.
func (s ProjectUsageSummary) Projects() []ProjectUsage {
	out := make([]ProjectUsage, len(s.projects))
	copy(out, s.projects)
	return out
}

// Len returns the number of projects.
func (s ProjectUsageSummary) Len() int {
	return len(s.projects)
}

// UserTotal is a per-user cost row for the usage overview.
type UserTotal struct {
	UserID    string
	Name      string
	TotalCost float64
	ByDay     DayCosts
	Requests  int
}

// ModelTotal holds aggregated cost for a single model.
type ModelTotal struct {
	Model        string
	Requests     int
	Cost         float64
	SharePercent float64
}

// DailyModelCosts holds the per-model cost split of one calendar date.
type DailyModelCosts struct {
	Date   string
	Models []GroupCost
}

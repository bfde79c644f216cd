package pipeline

import "github.com/theirongolddev/orgburn/internal/model"

// CalculateProjectUsage rolls records up per project with a per-user breakdown.
// Every record counts as one request, including zero-cost ones. A user's email
// is taken from their first record in the project.
func CalculateProjectUsage(records []model.UsageRecord) model.ProjectUsageSummary {
	grouped := GroupByProject(records)

	projects := make([]model.ProjectUsage, 0, grouped.Len())
	for _, projectID := range grouped.Keys() {
		recs, _ := grouped.Get(projectID)

		usage := model.ProjectUsage{
			ProjectID:     projectID,
			TotalCost:     TotalCost(recs).Total,
			TotalRequests: len(recs),
		}

		index := make(map[string]int)
		for _, r := range recs {
			userID := r.UserID
			if userID == "" {
				userID = model.UnknownUser
			}
			i, ok := index[userID]
			if !ok {
				email := r.UserEmail
				if email == "" {
					email = model.UnknownEmail
				}
				i = len(usage.Users)
				index[userID] = i
				usage.Users = append(usage.Users, model.UserUsage{UserID: userID, Email: email})
			}
			usage.Users[i].Cost += r.Cost()
			usage.Users[i].Requests++
		}

		projects = append(projects, usage)
	}
	return model.NewProjectUsageSummary(projects...)
}

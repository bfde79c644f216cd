package pipeline

import "github.com/theirongolddev/orgburn/internal/model"

// rec builds a dated record with the given cost.
func rec(date, userID, projectID, lineItem string, cost float64) model.UsageRecord {
	return model.UsageRecord{
		Date:      date,
		UserID:    userID,
		ProjectID: projectID,
		LineItem:  lineItem,
		Amount:    &model.Amount{Value: cost, Currency: "usd"},
	}
}

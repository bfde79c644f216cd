// Package model defines domain types for orgburn usage records and reports.
package model

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Sentinel keys used when a record lacks the attribute being grouped on.
const (
	UnknownUser  = "unknown_user"
	NoProject    = "no_project"
	UnknownEmail = "unknown@email.com"
)

// DateLayout is the calendar-date format carried on every extracted record.
const DateLayout = "2006-01-02"

// Amount is the billed amount of one usage line item.
type Amount struct {
	Value    float64 `json:"value"`
	Currency string  `json:"currency,omitempty"`
}

// UsageRecord is one line item of API usage after extraction from an export.
// Optional attributes are zero-valued when absent in the export; StartTime and
// EndTime are nil when the owning bucket carried no time window.
type UsageRecord struct {
	Date      string  `json:"date,omitempty"`
	StartTime *int64  `json:"start_time,omitempty"`
	EndTime   *int64  `json:"end_time,omitempty"`
	UserID    string  `json:"user_id,omitempty"`
	UserEmail string  `json:"user_email,omitempty"`
	ProjectID string  `json:"project_id,omitempty"`
	APIKeyID  string  `json:"api_key_id,omitempty"`
	LineItem  string  `json:"line_item,omitempty"`
	Amount    *Amount `json:"amount,omitempty"`
}

// Cost returns the record's billed value. Absent, NaN and infinite amounts count as zero.
func (r UsageRecord) Cost() float64 {
	if r.Amount == nil {
		return 0
	}
	v := r.Amount.Value
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// DateKey returns the record's calendar date, deriving it from StartTime in the
// local zone when the date was not attached. Empty when neither is available.
func (r UsageRecord) DateKey() string {
	if r.Date != "" {
		return r.Date
	}
	if r.StartTime != nil {
		return FormatDate(*r.StartTime, time.Local)
	}
	return ""
}

// DayOfMonth returns the calendar day (1..31) of the record's date.
func (r UsageRecord) DayOfMonth() (int, bool) {
	date := r.DateKey()
	if date == "" {
		return 0, false
	}
	parts := strings.Split(date, "-")
	if len(parts) != 3 {
		return 0, false
	}
	day, err := strconv.Atoi(parts[2])
	if err != nil || day < 1 || day > 31 {
		return 0, false
	}
	return day, true
}

// Model returns the model name: the first comma-separated token of LineItem.
func (r UsageRecord) Model() string {
	name, _, _ := strings.Cut(r.LineItem, ",")
	return strings.TrimSpace(name)
}

// FormatDate converts unix seconds to a YYYY-MM-DD calendar date in loc.
func FormatDate(unix int64, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return time.Unix(unix, 0).In(loc).Format(DateLayout)
}

// GroupedRecords maps a grouping key to its records. Keys iterate in order of
// first occurrence and records keep encounter order within a group.
type GroupedRecords struct {
	keys   []string
	groups map[string][]UsageRecord
}

// NewGroupedRecords returns an empty grouping.
func NewGroupedRecords() *GroupedRecords {
	return &GroupedRecords{groups: make(map[string][]UsageRecord)}
}

// Add appends r to the group for key, creating the group on first use.
func (g *GroupedRecords) Add(key string, r UsageRecord) {
	if _, ok := g.groups[key]; !ok {
		g.keys = append(g.keys, key)
	}
	g.groups[key] = append(g.groups[key], r)
}

// Keys returns group keys in first-occurrence order.
func (g *GroupedRecords) Keys() []string {
	out := make([]string, len(g.keys))
	copy(out, g.keys)
	return out
}

// Get returns the records of one group.
func (g *GroupedRecords) Get(key string) ([]UsageRecord, bool) {
	recs, ok := g.groups[key]
	return recs, ok
}

// Len returns the number of groups.
func (g *GroupedRecords) Len() int {
	return len(g.keys)
}

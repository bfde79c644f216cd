// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/theirongolddev/orgburn/internal/model"
)

// FormatCost formats a USD cost value.
func FormatCost(cost float64) string {
	if cost < 0 {
		return "-" + FormatCost(-cost)
	}
	if cost >= 1000 {
		return "$" + FormatNumber(int64(math.Round(cost)))
	}
	if cost >= 100 {
		return fmt.Sprintf("$%.0f", cost)
	}
	if cost >= 10 {
		return fmt.Sprintf("$%.1f", cost)
	}
	return fmt.Sprintf("$%.2f", cost)
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatPercent formats a value already expressed in percent.
func FormatPercent(pct float64) string {
	return fmt.Sprintf("%.1f%%", pct)
}

// FormatUnixDate formats unix seconds as a calendar date in loc, or "-" for zero.
func FormatUnixDate(ts int64, loc *time.Location) string {
	if ts == 0 {
		return "-"
	}
	return model.FormatDate(ts, loc)
}

// FormatBudgetState renders a budget state with its severity color.
func FormatBudgetState(s model.BudgetState) string {
	switch s {
	case model.BudgetExceeded:
		return errorStyle.Render(strings.ToUpper(string(s)))
	case model.BudgetCritical:
		return warnStyle.Render(string(s))
	case model.BudgetWarning:
		return cautionStyle.Render(string(s))
	default:
		return costStyle.Render(string(s))
	}
}

// MaskKey shows only the start and end of a secret.
func MaskKey(key string) string {
	if len(key) > 16 {
		return key[:8] + "..." + key[len(key)-4:]
	}
	if len(key) > 4 {
		return key[:4] + "..."
	}
	return "****"
}

// ModelLabel names a model group, including the group of records without one.
func ModelLabel(name string) string {
	if name == "" {
		return "(unknown)"
	}
	return name
}

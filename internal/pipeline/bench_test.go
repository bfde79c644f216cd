package pipeline

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/theirongolddev/orgburn/internal/model"
	"github.com/theirongolddev/orgburn/internal/source"
)

// syntheticExport builds a month of hourly buckets with a handful of users and projects.
func syntheticExport(buckets int) []byte {
	var sb strings.Builder
	sb.WriteString(`{"data":[`)
	start := int64(1735689600)
	for i := 0; i < buckets; i++ {
		if i > 0 {
			sb.WriteByte(',')
		}
		fmt.Fprintf(&sb, `{"start_time":%d,"end_time":%d,"results":[`, start+int64(i)*3600, start+int64(i+1)*3600)
		for j := 0; j < 8; j++ {
			if j > 0 {
				sb.WriteByte(',')
			}
			fmt.Fprintf(&sb, `{"user_id":"user-%d","project_id":"proj-%d","line_item":"gpt-4o, input","amount":{"value":%g}}`,
				j%5, j%3, float64(i%7)*0.01)
		}
		sb.WriteString(`]}`)
	}
	sb.WriteString(`]}`)
	return []byte(sb.String())
}

func benchRecords(b *testing.B) []model.UsageRecord {
	b.Helper()
	doc, err := source.ParseDocument(syntheticExport(24 * 31))
	if err != nil {
		b.Fatal(err)
	}
	return source.Extract(doc, time.UTC)
}

func BenchmarkParseDocument(b *testing.B) {
	data := syntheticExport(24 * 31)
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := source.ParseDocument(data); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkCalculateProjectUsage(b *testing.B) {
	records := benchRecords(b)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = CalculateProjectUsage(records)
	}
}

func BenchmarkDailyModelCosts(b *testing.B) {
	records := benchRecords(b)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = DailyModelCosts(records)
	}
}

package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
)

func TestFormatCost(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{2.345, "$2.35"},
		{12.34, "$12.3"},
		{123.4, "$123"},
		{12345.6, "$12,346"},
		{-5, "-$5.00"},
	}
	for _, tt := range tests {
		if got := FormatCost(tt.in); got != tt.want {
			t.Errorf("FormatCost(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"}, {999, "999"}, {1000, "1,000"}, {1234567, "1,234,567"}, {-4321, "-4,321"},
	}
	for _, tt := range tests {
		if got := FormatNumber(tt.in); got != tt.want {
			t.Errorf("FormatNumber(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMaskKey(t *testing.T) {
	if got := MaskKey("sk-admin-abcdefghijklmnop"); got != "sk-admin...mnop" {
		t.Errorf("MaskKey(long) = %q", got)
	}
	if got := MaskKey("abcdef"); got != "abcd..." {
		t.Errorf("MaskKey(short) = %q", got)
	}
	if got := MaskKey("abc"); got != "****" {
		t.Errorf("MaskKey(tiny) = %q", got)
	}
}

func TestFormatUnixDate(t *testing.T) {
	if got := FormatUnixDate(1736078400, time.UTC); got != "2025-01-05" {
		t.Errorf("FormatUnixDate = %q, want 2025-01-05", got)
	}
	if got := FormatUnixDate(0, time.UTC); got != "-" {
		t.Errorf("FormatUnixDate(0) = %q, want -", got)
	}
}

func TestRenderTable_AlignsColumns(t *testing.T) {
	out := RenderTable(Table{
		Headers: []string{"User", "Cost"},
		Rows: [][]string{
			{"ada", "$1.00"},
			SeparatorRow,
			{"grace hopper", "$120"},
		},
	})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 7 {
		t.Fatalf("got %d lines, want 7:\n%s", len(lines), out)
	}
	width := lipgloss.Width(lines[0])
	for i, l := range lines {
		if w := lipgloss.Width(l); w != width {
			t.Errorf("line %d width = %d, want %d", i, w, width)
		}
	}
}

func TestRenderSparkline(t *testing.T) {
	if got := RenderSparkline([]float64{0, 1, 2}); got != "▁▄█" {
		t.Errorf("RenderSparkline = %q", got)
	}
	if RenderSparkline(nil) != "" {
		t.Error("empty series should render empty")
	}
}

func TestRenderDayChart(t *testing.T) {
	series := make([]float64, 31)
	series[4] = 5
	out := RenderDayChart(series, 10, 31, 5, "daily cost")
	if !strings.Contains(out, "daily cost") {
		t.Errorf("chart missing caption:\n%s", out)
	}
	if !strings.Contains(out, "10.00") {
		t.Errorf("chart should reach the ceiling 10.00:\n%s", out)
	}
}

func TestSetTheme(t *testing.T) {
	defer SetTheme(FlexokiDark.Name)

	SetTheme("tokyo-night")
	if ColorAccent != TokyoNight.Accent {
		t.Fatalf("ColorAccent = %s, want %s", ColorAccent, TokyoNight.Accent)
	}

	SetTheme("no-such-theme")
	if ColorAccent != FlexokiDark.Accent {
		t.Fatalf("unknown theme: ColorAccent = %s, want %s", ColorAccent, FlexokiDark.Accent)
	}
}

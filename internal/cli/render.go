package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
)

// Colors of the active theme.
var (
	ColorBorder    lipgloss.Color
	ColorTextDim   lipgloss.Color
	ColorTextMuted lipgloss.Color
	ColorText      lipgloss.Color
	ColorAccent    lipgloss.Color
	ColorGreen     lipgloss.Color
	ColorOrange    lipgloss.Color
	ColorRed       lipgloss.Color
	ColorYellow    lipgloss.Color
)

// Styles
var (
	titleStyle   lipgloss.Style
	headerStyle  lipgloss.Style
	valueStyle   lipgloss.Style
	mutedStyle   lipgloss.Style
	costStyle    lipgloss.Style
	cautionStyle lipgloss.Style
	warnStyle    lipgloss.Style
	errorStyle   lipgloss.Style
	dimStyle     lipgloss.Style
)

func init() {
	applyTheme(FlexokiDark)
}

func applyTheme(t Theme) {
	ColorBorder = t.Border
	ColorTextDim = t.TextDim
	ColorTextMuted = t.TextMuted
	ColorText = t.Text
	ColorAccent = t.Accent
	ColorGreen = t.Green
	ColorOrange = t.Orange
	ColorRed = t.Red
	ColorYellow = t.Yellow

	titleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorText).
		Align(lipgloss.Center)

	headerStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorAccent)

	valueStyle = lipgloss.NewStyle().
		Foreground(ColorText)

	mutedStyle = lipgloss.NewStyle().
		Foreground(ColorTextMuted)

	costStyle = lipgloss.NewStyle().
		Foreground(ColorGreen)

	cautionStyle = lipgloss.NewStyle().
		Foreground(ColorYellow)

	warnStyle = lipgloss.NewStyle().
		Foreground(ColorOrange)

	errorStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorRed)

	dimStyle = lipgloss.NewStyle().
		Foreground(ColorTextDim)
}

// Table represents a bordered text table for CLI output.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	Widths  []int // optional column widths, auto-calculated if nil
}

// SeparatorRow marks a horizontal rule inside a table body.
var SeparatorRow = []string{"---"}

// RenderTitle renders a centered title bar in a bordered box.
func RenderTitle(title string) string {
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(55).
		Align(lipgloss.Center).
		Padding(0, 1)

	return border.Render(titleStyle.Render(title))
}

// Muted renders secondary text.
func Muted(s string) string {
	return mutedStyle.Render(s)
}

// Warn renders a warning line.
func Warn(s string) string {
	return warnStyle.Render(s)
}

// RenderTable renders a bordered table with headers and rows. The first
// column is left-aligned and the rest right-aligned. Widths are measured in
// display cells so pre-styled cells line up.
func RenderTable(t Table) string {
	if len(t.Rows) == 0 && len(t.Headers) == 0 {
		return ""
	}

	numCols := len(t.Headers)
	if numCols == 0 && len(t.Rows) > 0 {
		numCols = len(t.Rows[0])
	}

	widths := make([]int, numCols)
	if t.Widths != nil {
		copy(widths, t.Widths)
	} else {
		for i, h := range t.Headers {
			widths[i] = max(widths[i], lipgloss.Width(h))
		}
		for _, row := range t.Rows {
			for i, cell := range row {
				if i < numCols {
					widths[i] = max(widths[i], lipgloss.Width(cell))
				}
			}
		}
	}

	var b strings.Builder

	if t.Title != "" {
		b.WriteString("  ")
		b.WriteString(headerStyle.Render(t.Title))
		b.WriteString("\n")
	}

	rule := func(left, mid, right string) {
		b.WriteString(dimStyle.Render(left))
		for i, w := range widths {
			b.WriteString(dimStyle.Render(strings.Repeat("─", w+2)))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render(mid))
			}
		}
		b.WriteString(dimStyle.Render(right))
		b.WriteString("\n")
	}

	rule("╭", "┬", "╮")

	if len(t.Headers) > 0 {
		b.WriteString(dimStyle.Render("│"))
		for i, h := range t.Headers {
			b.WriteString(headerStyle.Render(" " + pad(h, widths[i], i == 0) + " "))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render("│"))
			}
		}
		b.WriteString(dimStyle.Render("│"))
		b.WriteString("\n")
		rule("├", "┼", "┤")
	}

	for _, row := range t.Rows {
		if len(row) == 1 && row[0] == SeparatorRow[0] {
			rule("├", "┼", "┤")
			continue
		}

		b.WriteString(dimStyle.Render("│"))
		for i := 0; i < numCols; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			b.WriteString(valueStyle.Render(" " + pad(cell, widths[i], i == 0) + " "))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render("│"))
			}
		}
		b.WriteString(dimStyle.Render("│"))
		b.WriteString("\n")
	}

	rule("╰", "┴", "╯")
	return b.String()
}

func pad(s string, width int, left bool) string {
	gap := width - lipgloss.Width(s)
	if gap <= 0 {
		return s
	}
	if left {
		return s + strings.Repeat(" ", gap)
	}
	return strings.Repeat(" ", gap) + s
}

// RenderProgressBar renders a simple text progress bar.
func RenderProgressBar(current, total int, width int) string {
	if total <= 0 {
		return ""
	}

	pct := float64(current) / float64(total)
	if pct > 1 {
		pct = 1
	}

	filled := int(pct * float64(width))
	if filled > width {
		filled = width
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("[%s] %s/%s",
		mutedStyle.Render(bar),
		FormatNumber(int64(current)),
		FormatNumber(int64(total)),
	)
}

// RenderSparkline generates a unicode block sparkline from a series of values.
func RenderSparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}

	blocks := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	peak := values[0]
	for _, v := range values[1:] {
		if v > peak {
			peak = v
		}
	}
	if peak == 0 {
		peak = 1
	}

	var b strings.Builder
	for _, v := range values {
		idx := int(v / peak * float64(len(blocks)-1))
		if idx >= len(blocks) {
			idx = len(blocks) - 1
		}
		if idx < 0 {
			idx = 0
		}
		b.WriteRune(blocks[idx])
	}

	return b.String()
}

// RenderHorizontalBar renders a bar scaled against maxValue.
func RenderHorizontalBar(value, maxValue float64, maxWidth int) string {
	if maxValue <= 0 || value <= 0 {
		return ""
	}
	barLen := int(value / maxValue * float64(maxWidth))
	if barLen > maxWidth {
		barLen = maxWidth
	}
	return costStyle.Render(strings.Repeat("█", barLen))
}

// RenderDayChart plots a day-of-month cost series with a fixed y-axis
// ceiling. The ceiling is raised to the series peak when it would clip.
func RenderDayChart(series []float64, ceiling float64, width, height int, caption string) string {
	if len(series) == 0 {
		return ""
	}
	for _, v := range series {
		if v > ceiling {
			ceiling = v
		}
	}
	return asciigraph.Plot(series,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.LowerBound(0),
		asciigraph.UpperBound(ceiling),
		asciigraph.Precision(2),
		asciigraph.Caption(caption),
	)
}

var seriesColors = []asciigraph.AnsiColor{
	asciigraph.Green, asciigraph.Blue, asciigraph.Yellow, asciigraph.Red, asciigraph.Cyan, asciigraph.Magenta,
}

// RenderMultiChart plots several series on one axis in distinct colors.
// Series beyond the palette size are dropped; callers order by importance.
func RenderMultiChart(series [][]float64, width, height int, caption string) string {
	if len(series) == 0 {
		return ""
	}
	if len(series) > len(seriesColors) {
		series = series[:len(seriesColors)]
	}
	return asciigraph.PlotMany(series,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.LowerBound(0),
		asciigraph.Precision(2),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(seriesColors[:len(series)]...),
	)
}

// SeriesSwatch renders the legend marker for the i-th series of RenderMultiChart.
func SeriesSwatch(i int) string {
	if i < 0 || i >= len(seriesColors) {
		return " "
	}
	return seriesColors[i].String() + "━━" + asciigraph.Default.String()
}

// Package components provides reusable UI components for the TUI.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/j-veylop/sleep-insight-tui/internal/ui/styles"
)

// NoData is shown in place of an empty chart.
const NoData = "No data available"

// RenderLineChart creates a single-series ASCII line chart.
func RenderLineChart(data []float64, width, height int, caption string, color asciigraph.AnsiColor) string {
	if len(data) == 0 {
		return styles.HelpStyle.Render(NoData)
	}

	// Ensure minimum dimensions
	if width < 20 {
		width = 20
	}
	if height < 3 {
		height = 3
	}

	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Precision(0),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(color),
	)
}

// RenderBarChart creates a simple horizontal bar chart.
func RenderBarChart(values []float64, labels []string, width int, color lipgloss.Color) string {
	if len(values) == 0 {
		return styles.HelpStyle.Render(NoData)
	}

	maxVal := 0.0
	for _, v := range values {
		maxVal = max(maxVal, v)
	}
	if maxVal == 0 {
		maxVal = 1
	}

	maxLabelLen := 0
	for _, l := range labels {
		maxLabelLen = max(maxLabelLen, lipgloss.Width(l))
	}

	barWidth := max(width-maxLabelLen-10, 10) // room for label and value
	barStyle := lipgloss.NewStyle().Foreground(color)

	lines := make([]string, 0, len(values))
	for i, v := range values {
		label := ""
		if i < len(labels) {
			label = labels[i]
		}

		barLen := max(int((v/maxVal)*float64(barWidth)), 0)
		lines = append(lines, fmt.Sprintf("%*s │%s %.0f",
			maxLabelLen, label, barStyle.Render(strings.Repeat("█", barLen)), v))
	}

	return strings.Join(lines, "\n")
}

// RenderShareBars renders one bar per label, scaled to its share of 100%.
func RenderShareBars(labels []string, shares []float64, width int) string {
	if len(labels) == 0 {
		return styles.HelpStyle.Render(NoData)
	}

	maxLabelLen := 0
	for _, l := range labels {
		maxLabelLen = max(maxLabelLen, lipgloss.Width(l))
	}
	barWidth := max(width-maxLabelLen-8, 10)

	lines := make([]string, 0, len(labels))
	for i, label := range labels {
		share := 0.0
		if i < len(shares) {
			share = min(max(shares[i], 0), 1)
		}
		filled := int(share * float64(barWidth))
		bar := lipgloss.NewStyle().Foreground(styles.StageColor(i)).Render(strings.Repeat("█", filled)) +
			lipgloss.NewStyle().Foreground(styles.Subtle).Render(strings.Repeat("░", barWidth-filled))
		lines = append(lines, fmt.Sprintf("%-*s %s %3.0f%%", maxLabelLen, label, bar, share*100))
	}
	return strings.Join(lines, "\n")
}

// SparkChars are the block characters used by sparklines (low to high).
var SparkChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// RenderSparkline creates a compact inline sparkline chart scaled between
// the series minimum and maximum.
func RenderSparkline(values []float64, width int) string {
	if len(values) == 0 || width < 1 {
		return ""
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	// Sample values to fit width
	step := max(float64(len(values))/float64(width), 1)

	var result strings.Builder
	for i := 0; i < width && int(float64(i)*step) < len(values); i++ {
		val := values[int(float64(i)*step)]
		idx := int((val - lo) / span * float64(len(SparkChars)-1))
		idx = min(max(idx, 0), len(SparkChars)-1)
		result.WriteRune(SparkChars[idx])
	}
	return result.String()
}

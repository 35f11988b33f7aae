package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/sleep-insight-tui/internal/ui/styles"
)

// StatCard is one summary value with its caption.
type StatCard struct {
	Label string
	Value string
}

// RenderStatCards lays the cards out in a row, wrapping when they do not fit.
func RenderStatCards(cards []StatCard, width int) string {
	if len(cards) == 0 {
		return ""
	}

	rendered := make([]string, len(cards))
	for i, c := range cards {
		rendered[i] = styles.StatCardStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
			styles.StatValueStyle.Render(c.Value),
			styles.StatLabelStyle.Render(c.Label),
		))
	}

	var rows []string
	var row []string
	rowWidth := 0
	for _, r := range rendered {
		w := lipgloss.Width(r)
		if len(row) > 0 && rowWidth+w > width {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
			row, rowWidth = nil, 0
		}
		row = append(row, r)
		rowWidth += w
	}
	rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

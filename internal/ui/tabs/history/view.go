package history

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/guptarohit/asciigraph"

	"github.com/j-veylop/sleep-insight-tui/internal/models"
	"github.com/j-veylop/sleep-insight-tui/internal/sleep"
	"github.com/j-veylop/sleep-insight-tui/internal/ui/components"
	"github.com/j-veylop/sleep-insight-tui/internal/ui/styles"
)

// View renders the history tab.
func (m *Model) View() string {
	if m.loading && m.trend == nil {
		return m.renderLoading()
	}
	if m.errorMsg != "" {
		return m.renderError()
	}
	if (m.trend == nil || !m.trend.HasData()) && len(m.uploads) == 0 {
		return m.renderEmpty()
	}

	sections := []string{
		m.renderHeader(),
		m.renderScoreChart(),
		m.renderUploads(),
	}

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) renderLoading() string {
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(styles.HelpStyle.Render("Loading history..."))
}

func (m *Model) renderError() string {
	content := fmt.Sprintf("%s %s",
		styles.ErrorTextStyle.Render("Error:"),
		m.errorMsg,
	)
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) renderEmpty() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		styles.HelpStyle.Render("No history recorded yet."),
		styles.HelpStyle.Render("A score is stored each time results load, and every upload attempt is logged."),
	)
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) renderHeader() string {
	title := styles.TitleStyle.Render("History")

	rangeStyle := lipgloss.NewStyle().
		Foreground(styles.Primary).
		Bold(true).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Primary)

	rangeIndicator := rangeStyle.Render(fmt.Sprintf("[t] %s", m.timeRange.String()))

	header := lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", rangeIndicator)

	var subtitle string
	if m.trend != nil && m.trend.HasData() {
		subtitle = styles.HelpStyle.Render(fmt.Sprintf("Scores: %s → %s (%d snapshots) %s",
			m.trend.First.Format("Jan 2, 2006"),
			m.trend.Last.Format("Jan 2, 2006"),
			len(m.trend.Snapshots),
			components.RenderSparkline(m.trend.Scores(), 30),
		))
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, subtitle, "")
}

func (m *Model) cardWidth() int {
	return max(m.width-6, 40)
}

func (m *Model) renderScoreChart() string {
	cardWidth := m.cardWidth()

	rows := []string{styles.CardTitleStyle.Render("Sleep Score"), ""}

	if m.trend == nil || !m.trend.HasData() {
		rows = append(rows, styles.HelpStyle.Render("  No scores in this range"))
	} else {
		chart := components.RenderLineChart(m.trend.Scores(), max(cardWidth-12, 30), 8,
			fmt.Sprintf("%d snapshots", len(m.trend.Snapshots)), asciigraph.Blue)
		for line := range strings.SplitSeq(chart, "\n") {
			rows = append(rows, "  "+line)
		}

		latest := m.trend.Snapshots[len(m.trend.Snapshots)-1]
		rows = append(rows, "",
			"  "+components.RenderStatCards([]components.StatCard{
				{Label: "Latest", Value: scoreText(latest.Score)},
				{Label: "Average", Value: fmt.Sprintf("%.1f", m.trend.Average)},
				{Label: "Best", Value: scoreText(m.trend.Best)},
				{Label: "Worst", Value: scoreText(m.trend.Worst)},
			}, cardWidth-4),
		)
	}

	rows = append(rows, "")

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func scoreText(score int) string {
	return styles.GetScoreStyle(score).Render(fmt.Sprintf("%d %s", score, sleep.Grade(score)))
}

func (m *Model) renderUploads() string {
	cardWidth := m.cardWidth()

	rows := []string{styles.CardTitleStyle.Render("Recent Uploads"), ""}

	if len(m.uploads) == 0 {
		rows = append(rows, styles.HelpStyle.Render("  No uploads yet"))
	}
	for _, u := range m.uploads {
		rows = append(rows, "  "+renderUpload(u))
	}

	rows = append(rows, "")

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func renderUpload(u models.UploadRecord) string {
	mark := styles.SuccessTextStyle.Render("✓")
	if !u.Success {
		mark = styles.ErrorTextStyle.Render("✗")
	}

	line := fmt.Sprintf("%s %-28s %9s  %s", mark, u.FileName,
		humanize.Bytes(uint64(max(u.SizeBytes, 0))),
		styles.HelpStyle.Render(humanize.Time(u.Timestamp)),
	)
	if u.Error != "" {
		line += "  " + styles.ErrorTextStyle.Render(u.Error)
	}
	return line
}

package results

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/j-veylop/sleep-insight-tui/internal/config"
	"github.com/j-veylop/sleep-insight-tui/internal/models"
	"github.com/j-veylop/sleep-insight-tui/internal/report"
	"github.com/j-veylop/sleep-insight-tui/internal/ui/components"
	"github.com/j-veylop/sleep-insight-tui/internal/ui/styles"
)

// NotAvailable is shown for a missing summary value.
const NotAvailable = "n/a"

// NoChartData replaces the chart grid when no series came back.
const NoChartData = "No chart data yet. Upload an export to fill the charts."

// wideLayout is the width from which charts are laid out two per row.
const wideLayout = 100

const maxTableRows = 15

func tableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = styles.TableHeaderStyle
	s.Cell = styles.TableCellStyle
	s.Selected = styles.TableSelectedStyle
	return s
}

// refreshTable rebuilds the table from the current page.
func (m *Model) refreshTable() {
	cols := m.view.Columns()
	records := m.view.Records()

	rows := make([]table.Row, len(records))
	for i, r := range records {
		rows[i] = r.Strings(cols)
	}

	colWidth := 12
	if len(cols) > 0 {
		colWidth = max((m.contentWidth()-4)/len(cols)-2, 10)
	}
	columns := make([]table.Column, len(cols))
	for i, c := range cols {
		columns[i] = table.Column{Title: c, Width: colWidth}
	}

	// Rows must never have more cells than there are columns.
	m.table.SetRows(nil)
	m.table.SetColumns(columns)
	m.table.SetRows(rows)
	m.table.SetHeight(min(max(len(rows), 1), maxTableRows) + 1)
	m.table.SetWidth(m.contentWidth())
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

func (m *Model) contentWidth() int {
	return max(m.width-4, 40)
}

// View renders the results tab.
func (m *Model) View() string {
	if m.loading && m.dataset == nil {
		return components.RenderSpinnerCentered(m.spinner, m.width, m.height)
	}

	var sections []string
	sections = append(sections, m.renderHeader())

	switch {
	case m.err != "":
		sections = append(sections,
			styles.ErrorTextStyle.Render("✗ "+m.err),
			styles.HelpStyle.Render("r: retry • s: switch to sample data"),
		)
	case m.dataset != nil:
		sections = append(sections,
			m.renderStats(),
			"",
			m.scoreBar.View(min(m.contentWidth(), 90)),
			"",
			m.renderCharts(),
			"",
			m.renderTable(),
		)
	}

	content := styles.DocStyle.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
	if m.height == 0 {
		return content
	}
	m.viewport.SetContent(content)
	return m.viewport.View()
}

func (m *Model) renderHeader() string {
	title := styles.TitleStyle.Render("Sleep Results")

	source := "sample data"
	if m.source() == config.SourceBackend {
		source = "backend"
		if m.services != nil {
			source += " " + m.services.BackendURL()
		}
	}
	meta := "Source: " + source
	if m.loading {
		meta += " • " + m.spinner.ViewWithLabel()
	} else if !m.lastLoaded.IsZero() {
		meta += " • loaded " + m.lastLoaded.Format("15:04:05")
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, styles.HelpStyle.Render(meta), "")
}

func (m *Model) renderStats() string {
	stats := m.dataset.Summary.Stats
	cards := []components.StatCard{
		{Label: "Average Sleep (min)", Value: fmt.Sprintf("%.0f", stats.AvgSleepMinutes)},
		{Label: "Average Heart Rate (bpm)", Value: optional(stats.AvgHR, "%.1f")},
		{Label: "Average Sound Level (dB)", Value: optional(stats.AvgSoundDB, "%.1f")},
		{Label: "REM Ratio", Value: optional(stats.RemRatio, "%.2f")},
	}
	return components.RenderStatCards(cards, m.contentWidth())
}

func optional(v *float64, format string) string {
	if v == nil {
		return NotAvailable
	}
	return fmt.Sprintf(format, *v)
}

func (m *Model) renderCharts() string {
	width := m.contentWidth()
	twoColumns := width >= wideLayout
	chartWidth := width - 4
	if twoColumns {
		chartWidth = width/2 - 4
	}

	ds := m.dataset
	if !ds.HasSeries() {
		return chartCard("Charts", width-4, styles.HelpStyle.Render(NoChartData))
	}
	trend := ds.Summary.Trend
	stages := ds.Summary.Stages

	shares := make([]float64, len(stages.Labels))
	for i := range shares {
		shares[i] = stages.Share(i)
	}

	hrCaption := timeCaption(len(ds.HeartRate), func(i int) string { return ds.HeartRate[i].Time })
	soundCaption := timeCaption(len(ds.SoundLevels), func(i int) string { return ds.SoundLevels[i].Time })

	cards := []string{
		chartCard(report.TitleSleepByDay, chartWidth,
			components.RenderBarChart(trend.SleepMinutes[:trend.Len()], trend.Dates[:trend.Len()], chartWidth-4, styles.SleepColor)),
		chartCard(report.TitleHeartRate, chartWidth,
			components.RenderLineChart(ds.HeartRateSeries(), chartWidth-12, 8, hrCaption, asciigraph.Red)),
		chartCard(report.TitleSoundLevel, chartWidth,
			components.RenderLineChart(ds.SoundSeries(), chartWidth-12, 8, soundCaption, asciigraph.Teal)),
		chartCard(report.TitleStageShares, chartWidth,
			components.RenderShareBars(stages.Labels, shares, chartWidth-4)),
	}

	if !twoColumns {
		return lipgloss.JoinVertical(lipgloss.Left, cards...)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, cards[0], cards[1]),
		lipgloss.JoinHorizontal(lipgloss.Top, cards[2], cards[3]),
	)
}

func chartCard(title string, width int, body string) string {
	return styles.CardStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left,
		styles.CardTitleStyle.Render(title),
		body,
	))
}

// timeCaption spans the first and last sample time.
func timeCaption(n int, at func(i int) string) string {
	if n == 0 {
		return ""
	}
	return models.TimeLabel(at(0)) + " - " + models.TimeLabel(at(n-1))
}

func (m *Model) renderTable() string {
	v := m.view
	status := fmt.Sprintf("%s • page %d/%d • %d per page • %d records",
		v.Category().Label(), v.Page(), v.PageCount(), v.PageSize(), v.Total())

	var body string
	switch {
	case m.pageLoading:
		body = m.spinner.View() + " Loading page..."
	case m.pageErr != "":
		body = styles.ErrorTextStyle.Render("✗ " + m.pageErr)
	case len(v.Records()) == 0:
		body = styles.HelpStyle.Render("No records")
	default:
		body = m.table.View()
	}

	hints := []string{"c: category", "n/p: page", "z: page size", "e: export"}

	return styles.CardStyle.Width(m.contentWidth()).Render(lipgloss.JoinVertical(lipgloss.Left,
		styles.CardTitleStyle.Render("Records"),
		styles.HelpStyle.Render(status),
		"",
		body,
		"",
		styles.HelpStyle.Render(strings.Join(hints, " • ")),
	))
}

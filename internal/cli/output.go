package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/j-veylop/sleep-insight-tui/internal/config"
	"github.com/j-veylop/sleep-insight-tui/internal/models"
	"github.com/j-veylop/sleep-insight-tui/internal/sleep"
)

const notAvailable = "n/a"

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...)
}

func optional(v *float64, format string) string {
	if v == nil {
		return notAvailable
	}
	return fmt.Sprintf(format, *v)
}

func renderSummary(ds *models.Dataset) string {
	stats := ds.Summary.Stats
	score := sleep.Score(stats, ds.Summary.Trend)

	t := newTable("Metric", "Value").Rows(
		[]string{"Average Sleep (min)", fmt.Sprintf("%.0f", stats.AvgSleepMinutes)},
		[]string{"Average Heart Rate (bpm)", optional(stats.AvgHR, "%.1f")},
		[]string{"Average Sound Level (dB)", optional(stats.AvgSoundDB, "%.1f")},
		[]string{"REM Ratio", optional(stats.RemRatio, "%.2f")},
		[]string{"Sleep Quality Score", fmt.Sprintf("%d (%s)", score, sleep.Grade(score))},
	)

	trend := newTable("Date", "Sleep (min)")
	for _, p := range ds.Summary.Trend.Points() {
		trend.Row(p.Date, models.FormatValue(p.Minutes))
	}

	return t.Render() + "\n" + trend.Render()
}

func renderPage(mp *models.MetricPage) string {
	header := fmt.Sprintf("%s • page %d • %d per page • %d records",
		mp.Category.Label(), mp.Page, mp.PageSize, mp.Total)
	if len(mp.Records) == 0 {
		return header + "\nNo records"
	}

	cols := mp.Records[0].Keys()
	t := newTable(cols...)
	for _, r := range mp.Records {
		t.Row(r.Strings(cols)...)
	}
	return header + "\n" + t.Render()
}

func renderBreakdown(b sleep.Breakdown) string {
	term := func(v, weight float64) string {
		return fmt.Sprintf("%.2f / %.0f", v, weight)
	}
	return newTable("Term", "Points").Rows(
		[]string{"Duration", term(b.Duration, sleep.DurationWeight)},
		[]string{"REM", term(b.Rem, sleep.RemWeight)},
		[]string{"Heart rate", term(b.HeartRate, sleep.HeartRateWeight)},
		[]string{"Sound", term(b.Sound, sleep.SoundWeight)},
		[]string{"Consistency", term(b.Consistency, sleep.ConsistencyWeight)},
		[]string{"Score", fmt.Sprintf("%d (%s)", b.Total, sleep.Grade(b.Total))},
	).Render()
}

func renderConfig(cfg *config.Config) string {
	return newTable("Key", "Value").Rows(
		[]string{"BACKEND_URL", cfg.BackendURL},
		[]string{"SETTINGS_PATH", cfg.SettingsPath},
		[]string{"DATABASE_PATH", cfg.DatabasePath},
		[]string{"LOG_PATH", cfg.LogPath},
		[]string{"LOG_LEVEL", cfg.LogLevel},
		[]string{"EXPORT_DIR", cfg.ExportDir},
		[]string{"RESULTS_SOURCE", string(cfg.ResultsSource)},
		[]string{"REQUEST_TIMEOUT", cfg.RequestTimeout.String()},
		[]string{"HISTORY_RETENTION_DAYS", strconv.Itoa(cfg.HistoryRetentionDays)},
		[]string{"DESKTOP_NOTIFY", strconv.FormatBool(cfg.DesktopNotify)},
		[]string{"OPEN_REPORT", strconv.FormatBool(cfg.OpenReport)},
	).Render()
}

// Package report renders the results charts as a standalone HTML page.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/cli/browser"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/j-veylop/sleep-insight-tui/internal/models"
	"github.com/j-veylop/sleep-insight-tui/internal/sleep"
)

const (
	// PageTitle is the HTML document title.
	PageTitle = "Sleep Health Insight"

	theme = "macarons"
)

// Chart titles, shared with the terminal view.
const (
	TitleSleepByDay  = "Sleep Minutes by Day"
	TitleHeartRate   = "Heart Rate (bpm)"
	TitleSoundLevel  = "Sound Level (dB)"
	TitleStageShares = "Sleep Stage Distribution"
)

var openURL = browser.OpenURL

// Page builds the chart page for ds.
func Page(ds *models.Dataset) *components.Page {
	page := components.NewPage()
	page.PageTitle = PageTitle
	page.SetLayout(components.PageFlexLayout)
	page.AddCharts(
		sleepByDay(ds),
		heartRate(ds),
		soundLevel(ds),
		stageShares(ds),
	)
	return page
}

// Write renders the page for ds to w.
func Write(w io.Writer, ds *models.Dataset) error {
	return Page(ds).Render(w)
}

// Export writes the report into dir and returns the file path.
func Export(dir string, ds *models.Dataset, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	path := filepath.Join(dir, "sleep-report-"+now.Format("20060102-150405")+".html")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create report: %w", err)
	}

	if err := Write(f, ds); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("failed to render report: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}

// Open shows the report in the default browser.
func Open(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	return openURL("file://" + filepath.ToSlash(abs))
}

func title(t, sub string) charts.GlobalOpts {
	return charts.WithTitleOpts(opts.Title{Title: t, Subtitle: sub})
}

func sleepByDay(ds *models.Dataset) *charts.Bar {
	stats := ds.Summary.Stats
	score := sleep.Score(stats, ds.Summary.Trend)

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: theme}),
		title(TitleSleepByDay, fmt.Sprintf("Sleep Quality Score: %d (%s)", score, sleep.Grade(score))),
		charts.WithXAxisOpts(opts.XAxis{
			AxisLabel: &opts.AxisLabel{Rotate: 45},
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Trigger:     "axis",
			AxisPointer: &opts.AxisPointer{Type: "shadow"},
		}),
	)

	points := ds.Summary.Trend.Points()
	dates := make([]string, len(points))
	items := make([]opts.BarData, len(points))
	for i, p := range points {
		dates[i] = p.Date
		items[i] = opts.BarData{Value: p.Minutes}
	}
	bar.SetXAxis(dates).AddSeries("Minutes", items)
	return bar
}

func lineChart(name, subtitle string, labels []string, values []float64) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: theme}),
		title(name, subtitle),
		charts.WithXAxisOpts(opts.XAxis{
			AxisLabel: &opts.AxisLabel{Rotate: 45},
		}),
		charts.WithYAxisOpts(opts.YAxis{Scale: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
	)

	items := make([]opts.LineData, len(values))
	for i, v := range values {
		items[i] = opts.LineData{Value: v}
	}
	line.SetXAxis(labels).AddSeries(name, items)
	line.SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))
	return line
}

func heartRate(ds *models.Dataset) *charts.Line {
	labels := make([]string, len(ds.HeartRate))
	for i, p := range ds.HeartRate {
		labels[i] = models.TimeLabel(p.Time)
	}
	return lineChart(TitleHeartRate, averageSubtitle(ds.Summary.Stats.AvgHR, "bpm"), labels, ds.HeartRateSeries())
}

func soundLevel(ds *models.Dataset) *charts.Line {
	labels := make([]string, len(ds.SoundLevels))
	for i, p := range ds.SoundLevels {
		labels[i] = models.TimeLabel(p.Time)
	}
	return lineChart(TitleSoundLevel, averageSubtitle(ds.Summary.Stats.AvgSoundDB, "dB"), labels, ds.SoundSeries())
}

func averageSubtitle(v *float64, unit string) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("Average %.1f %s", *v, unit)
}

func stageShares(ds *models.Dataset) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: theme}),
		title(TitleStageShares, ""),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item"}),
	)

	stages := ds.Summary.Stages
	items := make([]opts.PieData, 0, len(stages.Labels))
	for i, label := range stages.Labels {
		if i >= len(stages.Minutes) {
			break
		}
		items = append(items, opts.PieData{Name: label, Value: stages.Minutes[i]})
	}

	pie.AddSeries("Minutes", items).SetSeriesOptions(
		charts.WithPieChartOpts(opts.PieChart{Radius: []string{"40%", "70%"}}),
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Formatter: "{b}: {d}%"}),
	)
	return pie
}

package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/guptarohit/asciigraph"
)

func TestNewSpinner(t *testing.T) {
	s := NewSpinner("Loading")
	if s.label != "Loading" {
		t.Error("Spinner label mismatch")
	}
}

func TestSpinner_Methods(t *testing.T) {
	s := NewSpinner("Init")

	s.SetLabel("Loading")
	if s.label != "Loading" {
		t.Errorf("label = %s, want Loading", s.label)
	}

	if s.View() == "" {
		t.Error("View returned empty")
	}
	if !strings.Contains(s.ViewWithLabel(), "Loading") {
		t.Error("ViewWithLabel should contain the label")
	}

	_, cmd := s.Update(spinner.TickMsg{})
	if cmd == nil {
		t.Error("Update should return command for tick")
	}

	if s.Tick() == nil {
		t.Error("Tick should return command")
	}
}

func TestRenderSpinnerCentered(t *testing.T) {
	s := NewSpinner("Loading...")
	view := RenderSpinnerCentered(s, 20, 5)
	if !strings.Contains(view, "Loading...") {
		t.Error("RenderSpinnerCentered should contain the label")
	}
}

func TestRenderLineChart(t *testing.T) {
	s := RenderLineChart([]float64{58, 61, 57, 60}, 20, 5, "Heart Rate (bpm)", asciigraph.Red)
	if !strings.Contains(s, "Heart Rate (bpm)") {
		t.Error("RenderLineChart should include the caption")
	}

	if got := RenderLineChart(nil, 20, 5, "x", asciigraph.Red); !strings.Contains(got, NoData) {
		t.Errorf("empty chart = %q", got)
	}
}

func TestRenderBarChart(t *testing.T) {
	s := RenderBarChart([]float64{400, 440}, []string{"Mon", "Tue"}, 40, lipgloss.Color("63"))
	lines := strings.Split(s, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[1], "Tue") || !strings.Contains(lines[1], "440") {
		t.Errorf("unexpected line %q", lines[1])
	}
	// The largest value fills more of the bar.
	if strings.Count(lines[0], "█") >= strings.Count(lines[1], "█") {
		t.Error("bars should scale with their values")
	}

	if got := RenderBarChart(nil, nil, 40, lipgloss.Color("63")); !strings.Contains(got, NoData) {
		t.Errorf("empty chart = %q", got)
	}
}

func TestRenderShareBars(t *testing.T) {
	s := RenderShareBars([]string{"Deep", "REM", "Core"}, []float64{0.2, 0.3, 0.5}, 40)
	if !strings.Contains(s, "50%") || !strings.Contains(s, "Deep") {
		t.Errorf("unexpected output %q", s)
	}

	// Missing or out-of-range shares render as bounded bars.
	s = RenderShareBars([]string{"A", "B"}, []float64{1.7}, 30)
	if !strings.Contains(s, "100%") || !strings.Contains(s, "  0%") {
		t.Errorf("unexpected output %q", s)
	}
}

func TestRenderSparkline(t *testing.T) {
	s := RenderSparkline([]float64{1, 5, 10}, 10)
	if len([]rune(s)) != 3 {
		t.Errorf("len = %d, want 3", len([]rune(s)))
	}
	if []rune(s)[0] != SparkChars[0] || []rune(s)[2] != SparkChars[len(SparkChars)-1] {
		t.Errorf("sparkline should span min to max, got %q", s)
	}

	if s := RenderSparkline([]float64{3, 3}, 10); s != "▁▁" {
		t.Errorf("flat series = %q", s)
	}
	if RenderSparkline(nil, 10) != "" {
		t.Error("empty series should render nothing")
	}
	if got := len([]rune(RenderSparkline(make([]float64, 100), 10))); got != 10 {
		t.Errorf("long series should be sampled to width, got %d", got)
	}
}

func TestScoreBar(t *testing.T) {
	bar := NewScoreBar(30)
	if cmd := bar.SetScore(81); cmd == nil {
		t.Fatal("SetScore should start the animation")
	}
	if bar.Score() != 81 {
		t.Errorf("Score() = %d", bar.Score())
	}

	for i := 0; i < 500 && bar.isAnimating; i++ {
		bar, _ = bar.Update(AnimationTickMsg{})
	}
	if bar.isAnimating || bar.current != 81 {
		t.Errorf("animation did not settle: current = %v", bar.current)
	}

	view := bar.View(70)
	if !strings.Contains(view, ScoreLabel) || !strings.Contains(view, "81") || !strings.Contains(view, "Good") {
		t.Errorf("View() = %q", view)
	}

	bar.SetScore(140)
	if bar.Score() != 100 {
		t.Errorf("score should clamp to 100, got %d", bar.Score())
	}
}

func TestScoreBar_IgnoresOtherMessages(t *testing.T) {
	bar := NewScoreBar(30)
	bar, cmd := bar.Update(spinner.TickMsg{})
	if cmd != nil {
		t.Error("unrelated messages should not produce commands")
	}
	_ = bar
}

func TestRenderStatCards(t *testing.T) {
	cards := []StatCard{
		{Label: "Average Sleep (min)", Value: "425"},
		{Label: "REM Ratio", Value: "21%"},
	}
	wide := RenderStatCards(cards, 200)
	if !strings.Contains(wide, "Average Sleep (min)") || !strings.Contains(wide, "21%") {
		t.Errorf("RenderStatCards() = %q", wide)
	}

	narrow := RenderStatCards(cards, 10)
	if lipgloss.Height(narrow) <= lipgloss.Height(wide) {
		t.Error("cards should wrap onto more rows when narrow")
	}

	if RenderStatCards(nil, 80) != "" {
		t.Error("no cards should render nothing")
	}
}

func TestRenderMarkdown(t *testing.T) {
	out := ansi.Strip(RenderMarkdown("# Tips\n\n- Large exports may take time\n- Check the **backend URL**", 60))
	for _, want := range []string{"Tips", "exports", "backend"} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered markdown missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "**") {
		t.Error("emphasis markers should be rendered, not printed")
	}

	// Narrow widths are clamped rather than rejected.
	if RenderMarkdown("hello", 1) == "" {
		t.Error("RenderMarkdown returned empty output")
	}
}

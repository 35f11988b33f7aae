package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/sleep-insight-tui/internal/sleep"
	"github.com/j-veylop/sleep-insight-tui/internal/ui/styles"
)

// ScoreLabel captions the score bar.
const ScoreLabel = "Sleep Quality Score"

// AnimationTickMsg advances the score bar animation.
type AnimationTickMsg time.Time

func animationTick() tea.Cmd {
	return tea.Tick(time.Millisecond*50, func(t time.Time) tea.Msg {
		return AnimationTickMsg(t)
	})
}

// ScoreBar renders the 0-100 sleep score as an animated progress bar.
type ScoreBar struct {
	progress    progress.Model
	score       int
	current     float64
	isAnimating bool
}

// NewScoreBar creates a score bar with a red-to-green gradient.
func NewScoreBar(width int) ScoreBar {
	return ScoreBar{
		progress: progress.New(
			progress.WithScaledGradient("#ff6b6b", "#51cf66"),
			progress.WithWidth(width),
			progress.WithoutPercentage(),
		),
	}
}

// Score returns the target score.
func (s ScoreBar) Score() int {
	return s.score
}

// SetScore sets the target score and starts the fill animation.
func (s *ScoreBar) SetScore(score int) tea.Cmd {
	s.score = min(max(score, 0), 100)
	if s.isAnimating {
		return nil
	}
	s.isAnimating = true
	return animationTick()
}

// Update steps the animation toward the target score.
func (s ScoreBar) Update(msg tea.Msg) (ScoreBar, tea.Cmd) {
	if _, ok := msg.(AnimationTickMsg); !ok || !s.isAnimating {
		return s, nil
	}

	target := float64(s.score)
	diff := target - s.current
	if diff == 0 {
		s.isAnimating = false
		return s, nil
	}

	if diff > -0.5 && diff < 0.5 {
		s.current = target
		return s, animationTick()
	}

	step := diff / 10
	switch {
	case diff > 0:
		step = max(step, 0.5)
	default:
		step = min(step, -0.5)
	}
	s.current += step
	return s, animationTick()
}

// View renders the label, the bar and the score with its grade.
func (s ScoreBar) View(width int) string {
	labelStr := styles.ProgressLabelStyle.Width(20).Render(ScoreLabel)

	scoreStr := styles.GetScoreStyle(s.score).
		Render(fmt.Sprintf("%3d  %s", s.score, sleep.Grade(s.score)))

	s.progress.Width = max(width-20-lipgloss.Width(scoreStr)-2, 10)
	bar := s.progress.ViewAs(s.current / 100)

	return lipgloss.JoinHorizontal(lipgloss.Center, labelStr, bar, "  ", scoreStr)
}

// Package sleep computes the heuristic sleep quality score.
package sleep

import (
	"math"

	"github.com/j-veylop/sleep-insight-tui/internal/models"
)

// Term weights. They sum to 100.
const (
	DurationWeight    = 40.0
	RemWeight         = 25.0
	HeartRateWeight   = 15.0
	SoundWeight       = 10.0
	ConsistencyWeight = 10.0
)

const (
	targetMinutes   = 480.0
	idealRemRatio   = 0.22
	remTolerance    = 0.12
	hrCeiling       = 80.0
	hrSpan          = 20.0
	soundCeiling    = 50.0
	soundSpan       = 20.0
	stdDevTolerance = 60.0
)

// Breakdown holds each clamped term and the rounded total.
type Breakdown struct {
	Duration    float64
	Rem         float64
	HeartRate   float64
	Sound       float64
	Consistency float64
	Total       int
}

// Sum returns the unrounded total of all terms.
func (b Breakdown) Sum() float64 {
	return b.Duration + b.Rem + b.HeartRate + b.Sound + b.Consistency
}

// Score returns the sleep quality score in [0, 100].
func Score(stats models.SummaryStats, trend models.WeeklyTrend) int {
	return Compute(stats, trend).Total
}

// Compute evaluates every term of the score.
func Compute(stats models.SummaryStats, trend models.WeeklyTrend) Breakdown {
	minutes := orDefault(stats.AvgSleepMinutes, 0)
	rem := orDefault(stats.RemRatioOr(models.NeutralRemRatio), models.NeutralRemRatio)
	hr := orDefault(stats.HeartRateOr(models.NeutralHeartRate), models.NeutralHeartRate)
	sound := orDefault(stats.SoundLevelOr(models.NeutralSoundLevel), models.NeutralSoundLevel)

	b := Breakdown{
		Duration:    clamp(minutes/targetMinutes*DurationWeight, 0, DurationWeight),
		Rem:         clamp((1-math.Abs(rem-idealRemRatio)/remTolerance)*RemWeight, 0, RemWeight),
		HeartRate:   clamp((hrCeiling-hr)/hrSpan*HeartRateWeight, 0, HeartRateWeight),
		Sound:       clamp((soundCeiling-sound)/soundSpan*SoundWeight, 0, SoundWeight),
		Consistency: clamp((stdDevTolerance-StdDev(trend.SleepMinutes))/stdDevTolerance*ConsistencyWeight, 0, ConsistencyWeight),
	}
	b.Total = int(math.Round(b.Sum()))
	return b
}

// StdDev returns the population standard deviation, or 0 for an empty sequence.
// NaN entries are ignored.
func StdDev(values []float64) float64 {
	var sum float64
	var n int
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return 0
	}
	mean := sum / float64(n)
	var variance float64
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		variance += (v - mean) * (v - mean)
	}
	return math.Sqrt(variance / float64(n))
}

// Grade returns a short label for a score.
func Grade(score int) string {
	switch {
	case score >= 85:
		return "Excellent"
	case score >= 70:
		return "Good"
	case score >= 50:
		return "Fair"
	default:
		return "Poor"
	}
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

func orDefault(v, def float64) float64 {
	if math.IsNaN(v) {
		return def
	}
	return v
}

package sleep

import (
	"math"
	"testing"

	"github.com/j-veylop/sleep-insight-tui/internal/models"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 0.01
}

func stats(minutes, hr, sound, rem float64) models.SummaryStats {
	return models.SummaryStats{
		AvgSleepMinutes: minutes,
		AvgHR:           models.Float(hr),
		AvgSoundDB:      models.Float(sound),
		RemRatio:        models.Float(rem),
	}
}

func TestCompute_Example(t *testing.T) {
	trend := models.WeeklyTrend{SleepMinutes: []float64{400, 410, 420, 430, 415, 405, 420}}
	b := Compute(stats(420, 65, 40, 0.20), trend)

	if !approx(b.Duration, 35) {
		t.Errorf("Duration = %v, want 35", b.Duration)
	}
	if !approx(b.Rem, 20.83) {
		t.Errorf("Rem = %v, want ~20.83", b.Rem)
	}
	if !approx(b.HeartRate, 11.25) {
		t.Errorf("HeartRate = %v, want 11.25", b.HeartRate)
	}
	if !approx(b.Sound, 5) {
		t.Errorf("Sound = %v, want 5", b.Sound)
	}
	if !approx(b.Consistency, 8.43) {
		t.Errorf("Consistency = %v, want ~8.43", b.Consistency)
	}
	// 80.51 before rounding.
	if b.Total != 81 {
		t.Errorf("Total = %d, want 81", b.Total)
	}
}

func TestScore_Bounds(t *testing.T) {
	tests := []struct {
		name  string
		stats models.SummaryStats
		trend models.WeeklyTrend
		want  int
	}{
		{"Best", stats(600, 40, 10, 0.22), models.WeeklyTrend{SleepMinutes: []float64{480, 480}}, 100},
		{"Worst", stats(0, 120, 90, 0.9), models.WeeklyTrend{SleepMinutes: []float64{0, 600}}, 0},
		{"Negative inputs", stats(-50, 80, 50, -1), models.WeeklyTrend{SleepMinutes: []float64{100, 700}}, 0},
		{"Missing fields", models.SummaryStats{AvgSleepMinutes: 480}, models.WeeklyTrend{}, 50},
		{"NaN fields", stats(math.NaN(), math.NaN(), math.NaN(), math.NaN()), models.WeeklyTrend{}, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.stats, tt.trend)
			if got != tt.want {
				t.Errorf("Score() = %d, want %d", got, tt.want)
			}
			if got < 0 || got > 100 {
				t.Errorf("Score() = %d out of [0, 100]", got)
			}
		})
	}
}

func TestScore_DurationMonotonic(t *testing.T) {
	prev := -1
	for m := 0.0; m <= 720; m += 15 {
		got := Score(stats(m, 70, 40, 0.22), models.WeeklyTrend{})
		if got < prev {
			t.Fatalf("Score decreased at %v minutes: %d < %d", m, got, prev)
		}
		if m >= 480 && got != prev && prev != -1 && m > 480 {
			t.Fatalf("Score changed beyond 480 minutes: %d -> %d", prev, got)
		}
		prev = got
	}
}

func TestCompute_RemSymmetry(t *testing.T) {
	peak := Compute(stats(0, 80, 50, 0.22), models.WeeklyTrend{}).Rem
	if !approx(peak, RemWeight) {
		t.Fatalf("Rem at ideal ratio = %v, want %v", peak, RemWeight)
	}
	for _, d := range []float64{0.01, 0.05, 0.1} {
		lo := Compute(stats(0, 80, 50, 0.22-d), models.WeeklyTrend{}).Rem
		hi := Compute(stats(0, 80, 50, 0.22+d), models.WeeklyTrend{}).Rem
		if !approx(lo, hi) {
			t.Errorf("Rem asymmetric at diff %v: %v vs %v", d, lo, hi)
		}
		if lo >= peak {
			t.Errorf("Rem at diff %v = %v, want < %v", d, lo, peak)
		}
	}
	for _, rem := range []float64{0.10, 0.34, 0.5, 0} {
		if got := Compute(stats(0, 80, 50, rem), models.WeeklyTrend{}).Rem; got != 0 {
			t.Errorf("Rem at ratio %v = %v, want 0", rem, got)
		}
	}
}

func TestCompute_Consistency(t *testing.T) {
	tests := []struct {
		name    string
		minutes []float64
		want    float64
	}{
		{"Empty", nil, 10},
		{"Constant", []float64{420, 420, 420}, 10},
		{"Single", []float64{300}, 10},
		{"Std 30", []float64{390, 450}, 5},
		{"Std >= 60", []float64{300, 420}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute(models.SummaryStats{}, models.WeeklyTrend{SleepMinutes: tt.minutes}).Consistency
			if !approx(got, tt.want) {
				t.Errorf("Consistency = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStdDev(t *testing.T) {
	tests := []struct {
		name string
		in   []float64
		want float64
	}{
		{"Empty", nil, 0},
		{"Constant", []float64{5, 5, 5}, 0},
		{"Pair", []float64{2, 4}, 1},
		{"Classic", []float64{2, 4, 4, 4, 5, 5, 7, 9}, 2},
		{"NaN ignored", []float64{2, math.NaN(), 4}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StdDev(tt.in); !approx(got, tt.want) {
				t.Errorf("StdDev() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGrade(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{100, "Excellent"},
		{85, "Excellent"},
		{84, "Good"},
		{70, "Good"},
		{50, "Fair"},
		{49, "Poor"},
		{0, "Poor"},
	}
	for _, tt := range tests {
		if got := Grade(tt.score); got != tt.want {
			t.Errorf("Grade(%d) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

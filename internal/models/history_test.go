package models

import (
	"testing"
	"time"
)

func TestTimeRange_String(t *testing.T) {
	tests := []struct {
		name string
		tr   TimeRange
		want string
	}{
		{"24Hours", TimeRange24Hours, "24 Hours"},
		{"7Days", TimeRange7Days, "7 Days"},
		{"30Days", TimeRange30Days, "30 Days"},
		{"AllTime", TimeRangeAllTime, "All Time"},
		{"Unknown", TimeRange(999), "Unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tr.String(); got != tt.want {
				t.Errorf("TimeRange.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTimeRange_Days(t *testing.T) {
	tests := []struct {
		name string
		tr   TimeRange
		want int
	}{
		{"24Hours", TimeRange24Hours, 1},
		{"7Days", TimeRange7Days, 7},
		{"30Days", TimeRange30Days, 30},
		{"AllTime", TimeRangeAllTime, 0},
		{"Unknown", TimeRange(999), 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tr.Days(); got != tt.want {
				t.Errorf("TimeRange.Days() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTimeRange_Next(t *testing.T) {
	tests := []struct {
		name string
		tr   TimeRange
		want TimeRange
	}{
		{"24Hours -> 7Days", TimeRange24Hours, TimeRange7Days},
		{"7Days -> 30Days", TimeRange7Days, TimeRange30Days},
		{"30Days -> AllTime", TimeRange30Days, TimeRangeAllTime},
		{"AllTime -> 24Hours", TimeRangeAllTime, TimeRange24Hours},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tr.Next(); got != tt.want {
				t.Errorf("TimeRange.Next() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTimeRange_Since(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		tr   TimeRange
		want time.Time
	}{
		{"24Hours", TimeRange24Hours, time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)},
		{"7Days", TimeRange7Days, time.Date(2026, 3, 3, 12, 0, 0, 0, time.UTC)},
		{"AllTime", TimeRangeAllTime, time.Time{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tr.Since(now); !got.Equal(tt.want) {
				t.Errorf("TimeRange.Since() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewScoreTrend(t *testing.T) {
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	t.Run("Empty", func(t *testing.T) {
		trend := NewScoreTrend(TimeRange7Days, nil)
		if trend.HasData() {
			t.Error("HasData() = true, want false")
		}
		if len(trend.Scores()) != 0 {
			t.Errorf("Scores() = %v, want empty", trend.Scores())
		}
	})

	t.Run("Aggregates", func(t *testing.T) {
		snaps := []ScoreSnapshot{
			{Timestamp: base, Score: 70},
			{Timestamp: base.Add(24 * time.Hour), Score: 90},
			{Timestamp: base.Add(48 * time.Hour), Score: 80},
		}
		trend := NewScoreTrend(TimeRange30Days, snaps)
		if !trend.HasData() {
			t.Fatal("HasData() = false, want true")
		}
		if trend.Best != 90 || trend.Worst != 70 {
			t.Errorf("Best/Worst = %d/%d, want 90/70", trend.Best, trend.Worst)
		}
		if trend.Average != 80 {
			t.Errorf("Average = %v, want 80", trend.Average)
		}
		if !trend.First.Equal(base) || !trend.Last.Equal(base.Add(48*time.Hour)) {
			t.Errorf("First/Last = %v/%v", trend.First, trend.Last)
		}
		want := []float64{70, 90, 80}
		got := trend.Scores()
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("Scores()[%d] = %v, want %v", i, got[i], want[i])
			}
		}
	})
}

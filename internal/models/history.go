package models

import "time"

// TimeRange represents the selected history time range.
type TimeRange int

const (
	// TimeRange24Hours shows data from the last 24 hours.
	TimeRange24Hours TimeRange = iota
	// TimeRange7Days shows data from the last 7 days.
	TimeRange7Days
	// TimeRange30Days shows data from the last 30 days.
	TimeRange30Days
	// TimeRangeAllTime shows all available historical data.
	TimeRangeAllTime
)

// String returns the display name for a time range.
func (t TimeRange) String() string {
	switch t {
	case TimeRange24Hours:
		return "24 Hours"
	case TimeRange7Days:
		return "7 Days"
	case TimeRange30Days:
		return "30 Days"
	case TimeRangeAllTime:
		return "All Time"
	default:
		return "Unknown"
	}
}

// Days returns the number of days for the time range (0 = unlimited).
func (t TimeRange) Days() int {
	switch t {
	case TimeRange24Hours:
		return 1
	case TimeRange7Days:
		return 7
	case TimeRange30Days:
		return 30
	case TimeRangeAllTime:
		return 0
	default:
		return 30
	}
}

// Next cycles to the next time range.
func (t TimeRange) Next() TimeRange {
	return (t + 1) % 4
}

// Since returns the lower bound of the range relative to now, or the zero time for all time.
func (t TimeRange) Since(now time.Time) time.Time {
	days := t.Days()
	if days == 0 {
		return time.Time{}
	}
	return now.AddDate(0, 0, -days)
}

// ScoreSnapshot is a sleep score computed at a point in time.
type ScoreSnapshot struct {
	Timestamp       time.Time
	Source          string // "mock" or "backend"
	Score           int
	AvgSleepMinutes float64
	RemRatio        float64
	AvgHR           float64
	AvgSoundDB      float64
}

// UploadRecord describes one export file upload attempt.
type UploadRecord struct {
	Timestamp  time.Time
	FileName   string
	BackendURL string
	Error      string
	SizeBytes  int64
	Success    bool
}

// ScoreTrend aggregates score snapshots over a time range.
type ScoreTrend struct {
	First     time.Time
	Last      time.Time
	Snapshots []ScoreSnapshot
	Average   float64
	Best      int
	Worst     int
	TimeRange TimeRange
}

// HasData returns true if the trend contains any snapshots.
func (s *ScoreTrend) HasData() bool {
	return len(s.Snapshots) > 0
}

// Scores returns the score values in chronological order.
func (s *ScoreTrend) Scores() []float64 {
	out := make([]float64, len(s.Snapshots))
	for i, snap := range s.Snapshots {
		out[i] = float64(snap.Score)
	}
	return out
}

// NewScoreTrend builds a ScoreTrend from chronologically ordered snapshots.
func NewScoreTrend(tr TimeRange, snaps []ScoreSnapshot) *ScoreTrend {
	trend := &ScoreTrend{TimeRange: tr, Snapshots: snaps}
	if len(snaps) == 0 {
		return trend
	}
	trend.First = snaps[0].Timestamp
	trend.Last = snaps[len(snaps)-1].Timestamp
	trend.Best = snaps[0].Score
	trend.Worst = snaps[0].Score
	var sum int
	for _, snap := range snaps {
		sum += snap.Score
		trend.Best = max(trend.Best, snap.Score)
		trend.Worst = min(trend.Worst, snap.Score)
	}
	trend.Average = float64(sum) / float64(len(snaps))
	return trend
}

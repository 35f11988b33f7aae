// Package models defines data structures and domain types.
package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Neutral values used when a summary field is missing.
const (
	NeutralRemRatio   = 0.0
	NeutralHeartRate  = 80.0
	NeutralSoundLevel = 50.0
)

// SummaryStats holds aggregate sleep statistics for a period.
// Optional fields are pointers so a missing value can be told apart from zero.
type SummaryStats struct {
	AvgHR           *float64 `json:"avg_hr,omitempty"`
	AvgSoundDB      *float64 `json:"avg_sound_db,omitempty"`
	RemRatio        *float64 `json:"rem_ratio,omitempty"`
	AvgSleepMinutes float64  `json:"avg_sleep_minutes"`
}

// HeartRateOr returns the average heart rate or def when missing.
func (s SummaryStats) HeartRateOr(def float64) float64 {
	if s.AvgHR == nil {
		return def
	}
	return *s.AvgHR
}

// SoundLevelOr returns the average sound level or def when missing.
func (s SummaryStats) SoundLevelOr(def float64) float64 {
	if s.AvgSoundDB == nil {
		return def
	}
	return *s.AvgSoundDB
}

// RemRatioOr returns the REM ratio or def when missing.
func (s SummaryStats) RemRatioOr(def float64) float64 {
	if s.RemRatio == nil {
		return def
	}
	return *s.RemRatio
}

// Float returns a pointer to v, for building optional summary fields.
func Float(v float64) *float64 {
	return &v
}

// WeeklyTrend holds per-day sleep minutes. Dates and SleepMinutes are index-aligned.
type WeeklyTrend struct {
	Dates        []string  `json:"dates"`
	SleepMinutes []float64 `json:"sleep_minutes"`
}

// TrendPoint is a single day of the weekly trend.
type TrendPoint struct {
	Date    string
	Minutes float64
}

// Len returns the number of aligned points.
func (w WeeklyTrend) Len() int {
	return min(len(w.Dates), len(w.SleepMinutes))
}

// Points pairs dates with minutes. Unequal lengths pair the common prefix only.
func (w WeeklyTrend) Points() []TrendPoint {
	n := w.Len()
	points := make([]TrendPoint, n)
	for i := range n {
		points[i] = TrendPoint{Date: w.Dates[i], Minutes: w.SleepMinutes[i]}
	}
	return points
}

// StageDistribution holds minutes spent in each sleep stage.
type StageDistribution struct {
	Labels  []string  `json:"labels"`
	Minutes []float64 `json:"minutes"`
}

// Total returns the sum of all aligned stage minutes.
func (d StageDistribution) Total() float64 {
	var total float64
	for i := range min(len(d.Labels), len(d.Minutes)) {
		total += d.Minutes[i]
	}
	return total
}

// Share returns the fraction of total minutes for stage i.
func (d StageDistribution) Share(i int) float64 {
	total := d.Total()
	if total == 0 || i < 0 || i >= len(d.Minutes) {
		return 0
	}
	return d.Minutes[i] / total
}

// Summary is the payload returned by the summary endpoint and by the bundled fixture.
type Summary struct {
	Trend  WeeklyTrend       `json:"weekly_trend"`
	Stages StageDistribution `json:"sleep_stage_distribution"`
	Stats  SummaryStats      `json:"summary"`
}

// ErrNotObject is returned when a payload is valid JSON but not an object.
var ErrNotObject = errors.New("payload is not a JSON object")

type summaryEnvelope struct {
	Summary *SummaryStats      `json:"summary"`
	Trend   *WeeklyTrend       `json:"weekly_trend"`
	Stages  *StageDistribution `json:"sleep_stage_distribution"`
}

// ParseSummary decodes a summary payload. Both a flat stats object and the
// {"summary": {...}, "weekly_trend": {...}} envelope are accepted.
func ParseSummary(data []byte) (*Summary, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] != '{' && json.Valid(data) {
		return nil, ErrNotObject
	}

	var env summaryEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to decode summary: %w", err)
	}

	out := &Summary{}
	if env.Summary != nil {
		out.Stats = *env.Summary
	} else if err := json.Unmarshal(data, &out.Stats); err != nil {
		return nil, fmt.Errorf("failed to decode summary stats: %w", err)
	}
	if env.Trend != nil {
		out.Trend = *env.Trend
	}
	if env.Stages != nil {
		out.Stages = *env.Stages
	}
	return out, nil
}

package models

import "time"

// HeartRatePoint is a single heart rate sample.
type HeartRatePoint struct {
	Time string  `json:"t"`
	BPM  float64 `json:"bpm"`
}

// SoundPoint is a single ambient sound level sample.
type SoundPoint struct {
	Time string  `json:"t"`
	DB   float64 `json:"db"`
}

// Dataset is everything the results view renders.
type Dataset struct {
	Summary     Summary
	HeartRate   []HeartRatePoint
	SoundLevels []SoundPoint
}

// HasSeries reports whether any chartable series is present.
func (d *Dataset) HasSeries() bool {
	return d.Summary.Trend.Len() > 0 || len(d.HeartRate) > 0 || len(d.SoundLevels) > 0
}

// Records derives the full ordered record sequence for a category.
func (d *Dataset) Records(c Category) []Record {
	switch c {
	case CategoryActivity:
		points := d.Summary.Trend.Points()
		out := make([]Record, len(points))
		for i, p := range points {
			out[i] = Record{{Key: "date", Value: p.Date}, {Key: "total_minutes", Value: p.Minutes}}
		}
		return out
	case CategoryVitals:
		out := make([]Record, len(d.HeartRate))
		for i, p := range d.HeartRate {
			out[i] = Record{{Key: "timestamp", Value: p.Time}, {Key: "bpm", Value: p.BPM}}
		}
		return out
	case CategoryEnvironment:
		out := make([]Record, len(d.SoundLevels))
		for i, p := range d.SoundLevels {
			out[i] = Record{{Key: "timestamp", Value: p.Time}, {Key: "db", Value: p.DB}}
		}
		return out
	default:
		return nil
	}
}

// HeartRateFromRecords converts vitals records back into chart points.
// Records without a numeric bpm are skipped.
func HeartRateFromRecords(records []Record) []HeartRatePoint {
	out := make([]HeartRatePoint, 0, len(records))
	for _, r := range records {
		bpm, ok := numberField(r, "bpm")
		if !ok {
			continue
		}
		out = append(out, HeartRatePoint{Time: stringField(r, "timestamp"), BPM: bpm})
	}
	return out
}

// SoundFromRecords converts environment records back into chart points.
func SoundFromRecords(records []Record) []SoundPoint {
	out := make([]SoundPoint, 0, len(records))
	for _, r := range records {
		db, ok := numberField(r, "db")
		if !ok {
			continue
		}
		out = append(out, SoundPoint{Time: stringField(r, "timestamp"), DB: db})
	}
	return out
}

func numberField(r Record, key string) (float64, bool) {
	v, ok := r.Get(key)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

func stringField(r Record, key string) string {
	v, ok := r.Get(key)
	if !ok {
		return ""
	}
	return FormatValue(v)
}

// TimeLabel shortens an RFC 3339 timestamp to HH:MM for axis labels. Other
// strings are returned unchanged.
func TimeLabel(s string) string {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return s
	}
	return t.Format("15:04")
}

// HeartRateSeries returns the bpm values in order.
func (d *Dataset) HeartRateSeries() []float64 {
	out := make([]float64, len(d.HeartRate))
	for i, p := range d.HeartRate {
		out[i] = p.BPM
	}
	return out
}

// SoundSeries returns the dB values in order.
func (d *Dataset) SoundSeries() []float64 {
	out := make([]float64, len(d.SoundLevels))
	for i, p := range d.SoundLevels {
		out[i] = p.DB
	}
	return out
}

package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"sort"
	"strconv"
	"strings"
)

// Category selects which metric series the records table displays.
type Category int

const (
	// CategoryActivity holds nightly sleep totals: {date, total_minutes}.
	CategoryActivity Category = iota
	// CategoryVitals holds heart rate samples: {timestamp, bpm}.
	CategoryVitals
	// CategoryEnvironment holds sound level samples: {timestamp, db}.
	CategoryEnvironment
)

// Categories lists every category in display order.
var Categories = []Category{CategoryActivity, CategoryVitals, CategoryEnvironment}

// String returns the wire name used in the metrics endpoint path.
func (c Category) String() string {
	switch c {
	case CategoryActivity:
		return "activity"
	case CategoryVitals:
		return "vitals"
	case CategoryEnvironment:
		return "environment"
	default:
		return "unknown"
	}
}

// Label returns the display name for a category.
func (c Category) Label() string {
	switch c {
	case CategoryActivity:
		return "Activity"
	case CategoryVitals:
		return "Vitals"
	case CategoryEnvironment:
		return "Environment"
	default:
		return "Unknown"
	}
}

// Next cycles to the next category.
func (c Category) Next() Category {
	return (c + 1) % Category(len(Categories))
}

// Schema returns the canonical field order for records of this category.
func (c Category) Schema() []string {
	switch c {
	case CategoryActivity:
		return []string{"date", "total_minutes"}
	case CategoryVitals:
		return []string{"timestamp", "bpm"}
	case CategoryEnvironment:
		return []string{"timestamp", "db"}
	default:
		return nil
	}
}

// ParseCategory maps a wire name to a Category.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "activity":
		return CategoryActivity, nil
	case "vitals":
		return CategoryVitals, nil
	case "environment":
		return CategoryEnvironment, nil
	default:
		return 0, fmt.Errorf("unknown category %q (want activity, vitals or environment)", s)
	}
}

// Field is one key/value pair of a metric record.
type Field struct {
	Value any
	Key   string
}

// Record is an ordered set of fields. It has no identity beyond its position in a page.
type Record []Field

// Keys returns the field names in order.
func (r Record) Keys() []string {
	keys := make([]string, len(r))
	for i, f := range r {
		keys[i] = f.Key
	}
	return keys
}

// Get returns the value for key.
func (r Record) Get(key string) (any, bool) {
	for _, f := range r {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Strings formats the values for the given columns.
func (r Record) Strings(columns []string) []string {
	out := make([]string, len(columns))
	for i, col := range columns {
		if v, ok := r.Get(col); ok {
			out[i] = FormatValue(v)
		}
	}
	return out
}

// FormatValue renders a decoded JSON value for display.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		if val == math.Trunc(val) && math.Abs(val) < 1e15 {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case bool:
		return strconv.FormatBool(val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
}

// RecordFromMap orders the map keys by the category schema, then alphabetically.
func RecordFromMap(c Category, m map[string]any) Record {
	rec := make(Record, 0, len(m))
	schema := c.Schema()
	for _, key := range schema {
		if v, ok := m[key]; ok {
			rec = append(rec, Field{Key: key, Value: v})
		}
	}
	rest := make([]string, 0, len(m))
	for key := range m {
		if !slices.Contains(schema, key) {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	for _, key := range rest {
		rec = append(rec, Field{Key: key, Value: m[key]})
	}
	return rec
}

// MetricPage is one page of metric records for a category.
type MetricPage struct {
	Records  []Record
	Category Category
	Page     int
	PageSize int
	Total    int
}

type metricPageWire struct {
	Records  []map[string]any `json:"records"`
	Items    []map[string]any `json:"items"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
	Total    int              `json:"total"`
}

// ParseMetricPage decodes a metrics payload. The body may be an object with a
// "records" (or "items") array or a bare array of record objects.
func ParseMetricPage(c Category, page, pageSize int, data []byte) (*MetricPage, error) {
	data = bytes.TrimSpace(data)
	out := &MetricPage{Category: c, Page: page, PageSize: pageSize}

	var raw []map[string]any
	if len(data) > 0 && data[0] == '[' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to decode metric records: %w", err)
		}
		out.Total = len(raw)
	} else {
		var wire metricPageWire
		if err := json.Unmarshal(data, &wire); err != nil {
			return nil, fmt.Errorf("failed to decode metric page: %w", err)
		}
		raw = wire.Records
		if raw == nil {
			raw = wire.Items
		}
		if wire.Page > 0 {
			out.Page = wire.Page
		}
		if wire.PageSize > 0 {
			out.PageSize = wire.PageSize
		}
		out.Total = wire.Total
	}

	out.Records = make([]Record, 0, len(raw))
	for _, m := range raw {
		out.Records = append(out.Records, RecordFromMap(c, m))
	}
	return out, nil
}

package domain

import "time"

// Bucket summarizes tracked time inside one aggregation window.
// PerCategory holds only non-zero entries; Total always equals their sum.
type Bucket struct {
	WindowStart time.Time                `json:"window_start"`
	WindowEnd   time.Time                `json:"window_end"`
	PerCategory map[string]time.Duration `json:"per_category"`
	Total       time.Duration            `json:"total"`
}

// Add attributes d to category and keeps Total in step.
func (b *Bucket) Add(category string, d time.Duration) {
	if d <= 0 {
		return
	}
	if b.PerCategory == nil {
		b.PerCategory = make(map[string]time.Duration)
	}
	b.PerCategory[category] += d
	b.Total += d
}

// Window returns the bucket window as a range.
func (b Bucket) Window() TimeRange {
	return TimeRange{Start: b.WindowStart, End: b.WindowEnd}
}

// Overview is the per-window breakdown of a range.
type Overview struct {
	Range       TimeRange     `json:"range"`
	Granularity Granularity   `json:"granularity"`
	Total       time.Duration `json:"total"`
	Buckets     []Bucket      `json:"buckets"`
}

// CategoryShare is one slice of the category breakdown.
type CategoryShare struct {
	Category Category      `json:"category"`
	Total    time.Duration `json:"total"`
	Percent  float64       `json:"percent"`
}

// Disruptor ranks a source by how often and how long it was observed.
type Disruptor struct {
	Source      string        `json:"source"`
	Category    Category      `json:"category"`
	Occurrences int           `json:"occurrences"`
	Total       time.Duration `json:"total"`
}

// TimelineSegment is one contiguous stretch of a daily timeline. Offsets are
// measured from local midnight.
type TimelineSegment struct {
	StartOffset time.Duration `json:"start_offset"`
	EndOffset   time.Duration `json:"end_offset"`
	Category    Category      `json:"category"`
}

// Duration returns the length of the segment.
func (s TimelineSegment) Duration() time.Duration {
	return s.EndOffset - s.StartOffset
}

// HeatmapCell is the tracked time for one hour of one day.
type HeatmapCell struct {
	Hour      int           `json:"hour"`
	Duration  time.Duration `json:"duration"`
	Intensity float64       `json:"intensity"`
}

// HeatmapDay holds the 24 hourly cells of a local day.
type HeatmapDay struct {
	Day   time.Time     `json:"day"`
	Cells []HeatmapCell `json:"cells"`
}

// WeekBreakdown is one week of a weekly breakdown with its per-day buckets.
type WeekBreakdown struct {
	WeekStart time.Time     `json:"week_start"`
	WeekEnd   time.Time     `json:"week_end"`
	Total     time.Duration `json:"total"`
	Days      []Bucket      `json:"days"`
}

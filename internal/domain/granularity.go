package domain

import (
	"fmt"
	"strings"
	"time"
)

// Granularity is the window size used for aggregation.
type Granularity string

const (
	GranularityHour  Granularity = "hour"
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
)

// Granularities lists every supported granularity from finest to coarsest.
var Granularities = []Granularity{GranularityHour, GranularityDay, GranularityWeek, GranularityMonth}

// ParseGranularity parses a granularity name. Plural and "-ly" forms are accepted.
func ParseGranularity(s string) (Granularity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hour", "hours", "hourly", "h":
		return GranularityHour, nil
	case "day", "days", "daily", "d":
		return GranularityDay, nil
	case "week", "weeks", "weekly", "w":
		return GranularityWeek, nil
	case "month", "months", "monthly", "m":
		return GranularityMonth, nil
	default:
		return "", fmt.Errorf("%w: %q (valid: hour, day, week, month)", ErrInvalidGranularity, s)
	}
}

// String implements fmt.Stringer and pflag.Value.
func (g Granularity) String() string {
	return string(g)
}

// Set implements pflag.Value.
func (g *Granularity) Set(s string) error {
	parsed, err := ParseGranularity(s)
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

// Type implements pflag.Value.
func (g *Granularity) Type() string {
	return "granularity"
}

// Floor returns the start of the window containing t, in loc.
// Weeks start on Monday.
func (g Granularity) Floor(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	switch g {
	case GranularityHour:
		return t.Add(-time.Duration(t.Minute())*time.Minute -
			time.Duration(t.Second())*time.Second -
			time.Duration(t.Nanosecond()))
	case GranularityWeek:
		offset := (int(t.Weekday()) + 6) % 7
		return time.Date(t.Year(), t.Month(), t.Day()-offset, 0, 0, 0, 0, loc)
	case GranularityMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc)
	default:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	}
}

// Next returns the start of the window following the one starting at start.
func (g Granularity) Next(start time.Time, loc *time.Location) time.Time {
	start = start.In(loc)
	switch g {
	case GranularityHour:
		return start.Add(time.Hour)
	case GranularityWeek:
		return time.Date(start.Year(), start.Month(), start.Day()+7, 0, 0, 0, 0, loc)
	case GranularityMonth:
		return time.Date(start.Year(), start.Month()+1, 1, 0, 0, 0, 0, loc)
	default:
		return time.Date(start.Year(), start.Month(), start.Day()+1, 0, 0, 0, 0, loc)
	}
}

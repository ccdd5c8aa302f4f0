package util

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/emiliopalmerini/mfocus/internal/domain"
)

// FormatDuration renders a duration the way the dashboard shows it.
// Examples: 45s -> "45s", 90m -> "1h 30m", 26h -> "26h 0m"
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh %dm", h, m)
}

// FormatOffset renders an offset from midnight as HH:MM.
func FormatOffset(d time.Duration) string {
	return fmt.Sprintf("%02d:%02d", int(d.Hours()), int(d.Minutes())%60)
}

// FormatPercent renders a percentage with one decimal.
func FormatPercent(p float64) string {
	return fmt.Sprintf("%.1f%%", p)
}

// FormatDateISO formats t as 2006-01-02.
func FormatDateISO(t time.Time) string {
	return t.Format("2006-01-02")
}

// FormatDateTime formats t as 2006-01-02 15:04.
func FormatDateTime(t time.Time) string {
	return t.Format("2006-01-02 15:04")
}

// ParseDate parses YYYY-MM-DD as local midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}

// ParseTime accepts RFC3339, "2006-01-02 15:04" and "2006-01-02" in loc.
func ParseTime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02 15:04", s, loc); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", s, loc); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid time %q (want RFC3339, YYYY-MM-DD HH:MM or YYYY-MM-DD)", s)
}

// GetRangeForPeriod returns the range a named period covers, ending at the end
// of the current local day, week or month.
// Supported periods: "today"/"day", "week", "month", and "Nd" for the last N days.
func GetRangeForPeriod(period string, now time.Time, loc *time.Location) (domain.TimeRange, error) {
	period = strings.ToLower(strings.TrimSpace(period))
	switch period {
	case "", "today", "day":
		return domain.Day(now, loc), nil
	case "week":
		start := domain.GranularityWeek.Floor(now, loc)
		return domain.TimeRange{Start: start, End: domain.GranularityWeek.Next(start, loc)}, nil
	case "month":
		start := domain.GranularityMonth.Floor(now, loc)
		return domain.TimeRange{Start: start, End: domain.GranularityMonth.Next(start, loc)}, nil
	}

	if n, ok := strings.CutSuffix(period, "d"); ok {
		days, err := strconv.Atoi(n)
		if err == nil && days > 0 {
			end := domain.Day(now, loc).End
			start := time.Date(end.Year(), end.Month(), end.Day()-days, 0, 0, 0, 0, loc)
			return domain.TimeRange{Start: start, End: end}, nil
		}
	}
	return domain.TimeRange{}, fmt.Errorf("%w: unknown period %q (valid: today, week, month, Nd)", domain.ErrInvalidRange, period)
}

// DefaultGranularity picks a bucket size that keeps a range readable.
func DefaultGranularity(r domain.TimeRange) domain.Granularity {
	switch d := r.Duration(); {
	case d <= 2*24*time.Hour:
		return domain.GranularityHour
	case d <= 62*24*time.Hour:
		return domain.GranularityDay
	case d <= 366*24*time.Hour:
		return domain.GranularityWeek
	default:
		return domain.GranularityMonth
	}
}

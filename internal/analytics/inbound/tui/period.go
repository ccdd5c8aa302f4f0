package tui

import (
	"time"

	"github.com/emiliopalmerini/mfocus/internal/domain"
	"github.com/emiliopalmerini/mfocus/internal/util"
)

// Period is the range every screen reports on.
type Period struct {
	Name  string
	Range domain.TimeRange
}

// NewPeriod resolves a named period ("today", "week", "month", "7d") at now.
func NewPeriod(name string, now time.Time, loc *time.Location) (Period, error) {
	r, err := util.GetRangeForPeriod(name, now, loc)
	if err != nil {
		return Period{}, err
	}
	return Period{Name: name, Range: r}, nil
}

// Label is the human form shown in screen titles.
func (p Period) Label() string {
	end := p.Range.End.Add(-time.Nanosecond)
	if util.FormatDateISO(p.Range.Start) == util.FormatDateISO(end) {
		return util.FormatDateISO(p.Range.Start)
	}
	return util.FormatDateISO(p.Range.Start) + " → " + util.FormatDateISO(end)
}

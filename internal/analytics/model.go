package analytics

import (
	"time"

	"github.com/emiliopalmerini/mfocus/internal/domain"
)

// Dashboard bundles the views the dashboard shows for one period.
type Dashboard struct {
	Range      domain.TimeRange         `json:"range"`
	Overview   domain.Overview          `json:"overview"`
	Categories []domain.CategoryShare   `json:"categories"`
	Disruptors []domain.Disruptor       `json:"disruptors"`
	Timeline   []domain.TimelineSegment `json:"timeline"`
}

// DashboardQuery selects what Dashboard computes.
type DashboardQuery struct {
	Range          domain.TimeRange
	Granularity    domain.Granularity
	Day            time.Time
	DisruptorLimit int
}

// Rule update outcomes reported to metrics.
const (
	OutcomeApplied  = "applied"
	OutcomeConflict = "conflict"
	OutcomeInvalid  = "invalid"
	OutcomeFailed   = "failed"
)

package ports

import (
	"context"
	"time"
)

// MetricsExporter records service activity in an external observability system.
type MetricsExporter interface {
	// ObservationAppended records one stored observation and its tracked time.
	ObservationAppended(ctx context.Context, category string, d time.Duration)
	// QueryCompleted records the latency of an aggregation query.
	QueryCompleted(ctx context.Context, operation string, elapsed time.Duration, err error)
	// RulesSwapped records a rule table update attempt by outcome.
	RulesSwapped(ctx context.Context, outcome string)
	// Close shuts down the exporter and flushes any pending metrics.
	Close(ctx context.Context) error
}

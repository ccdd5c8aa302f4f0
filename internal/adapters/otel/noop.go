package otel

import (
	"context"
	"time"
)

// NoOpExporter is a metrics exporter that does nothing.
type NoOpExporter struct{}

// NewNoOpExporter creates a new no-op exporter for graceful degradation.
func NewNoOpExporter() *NoOpExporter {
	return &NoOpExporter{}
}

func (e *NoOpExporter) ObservationAppended(context.Context, string, time.Duration) {}

func (e *NoOpExporter) QueryCompleted(context.Context, string, time.Duration, error) {}

func (e *NoOpExporter) RulesSwapped(context.Context, string) {}

func (e *NoOpExporter) Close(context.Context) error {
	return nil
}

package ports_test

import (
	"testing"

	"github.com/emiliopalmerini/mfocus/internal/adapters/otel"
	"github.com/emiliopalmerini/mfocus/internal/adapters/turso"
	"github.com/emiliopalmerini/mfocus/internal/analytics"
	"github.com/emiliopalmerini/mfocus/internal/classifier"
	"github.com/emiliopalmerini/mfocus/internal/eventstore"
	"github.com/emiliopalmerini/mfocus/internal/ports"
)

// Compile-time interface conformance checks.
// These verify that concrete adapters properly implement their port interfaces.

func TestObservationStoreConformance(t *testing.T) {
	var _ ports.ObservationStore = (*turso.ObservationRepository)(nil)
	var _ ports.ObservationStore = (*eventstore.Memory)(nil)
}

func TestObservationReaderConformance(t *testing.T) {
	var _ ports.ObservationReader = (*turso.ObservationRepository)(nil)
	var _ ports.ObservationReader = (*eventstore.Memory)(nil)
}

func TestRuleRepositoryConformance(t *testing.T) {
	var _ ports.RuleRepository = (*turso.RuleRepository)(nil)
}

func TestPreferenceRepositoryConformance(t *testing.T) {
	var _ ports.PreferenceRepository = (*turso.PreferenceRepository)(nil)
	var _ ports.PreferenceRepository = (*analytics.MemoryPreferences)(nil)
}

func TestMetricsExporterConformance(t *testing.T) {
	var _ ports.MetricsExporter = (*otel.Exporter)(nil)
	var _ ports.MetricsExporter = (*otel.NoOpExporter)(nil)
}

func TestRuleTableConformance(t *testing.T) {
	var _ analytics.RuleTable = (*classifier.Classifier)(nil)
}

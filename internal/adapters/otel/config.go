package otel

import "github.com/emiliopalmerini/mfocus/internal/infrastructure/config"

// Config holds OTEL exporter configuration.
type Config struct {
	Endpoint string
	Enabled  bool
	Insecure bool
}

// FromConfig maps the MFOCUS_OTEL_* settings.
func FromConfig(c config.Otel) Config {
	return Config{
		Endpoint: c.Endpoint,
		Enabled:  c.Enabled,
		Insecure: c.Insecure,
	}
}

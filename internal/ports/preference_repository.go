package ports

import (
	"context"

	"github.com/emiliopalmerini/mfocus/internal/domain"
)

// PreferenceRepository stores user preferences as key/value pairs.
type PreferenceRepository interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Tracking(ctx context.Context) (bool, error)
	SetTracking(ctx context.Context, enabled bool) error
	Settings(ctx context.Context) (domain.Settings, error)
	SaveSettings(ctx context.Context, s domain.Settings) error
}

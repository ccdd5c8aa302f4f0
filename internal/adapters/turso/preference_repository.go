package turso

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/emiliopalmerini/mfocus/internal/domain"
)

// Preference keys.
const (
	PrefTracking         = "tracking"
	PrefDistractionSites = "distraction_sites"
	PrefWhitelistSites   = "whitelist_sites"
)

// PreferenceRepository stores preferences as key/value rows. Site lists are
// JSON arrays.
type PreferenceRepository struct {
	db *sql.DB
}

func NewPreferenceRepository(db *sql.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

func (r *PreferenceRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM preferences WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get preference %s: %w", key, err)
	}
	return value, true, nil
}

func (r *PreferenceRepository) Set(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO preferences (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set preference %s: %w", key, err)
	}
	return nil
}

// Tracking defaults to enabled when never set.
func (r *PreferenceRepository) Tracking(ctx context.Context) (bool, error) {
	value, ok, err := r.Get(ctx, PrefTracking)
	if err != nil || !ok {
		return true, err
	}
	enabled, err := strconv.ParseBool(value)
	if err != nil {
		return true, fmt.Errorf("invalid tracking preference %q: %w", value, err)
	}
	return enabled, nil
}

func (r *PreferenceRepository) SetTracking(ctx context.Context, enabled bool) error {
	return r.Set(ctx, PrefTracking, strconv.FormatBool(enabled))
}

func (r *PreferenceRepository) Settings(ctx context.Context) (domain.Settings, error) {
	var s domain.Settings
	var err error
	if s.DistractionSites, err = r.sites(ctx, PrefDistractionSites); err != nil {
		return domain.Settings{}, err
	}
	if s.WhitelistSites, err = r.sites(ctx, PrefWhitelistSites); err != nil {
		return domain.Settings{}, err
	}
	return s, nil
}

func (r *PreferenceRepository) SaveSettings(ctx context.Context, s domain.Settings) error {
	s = s.Normalize()
	if err := r.setSites(ctx, PrefDistractionSites, s.DistractionSites); err != nil {
		return err
	}
	return r.setSites(ctx, PrefWhitelistSites, s.WhitelistSites)
}

func (r *PreferenceRepository) sites(ctx context.Context, key string) ([]string, error) {
	value, ok, err := r.Get(ctx, key)
	if err != nil || !ok {
		return []string{}, err
	}
	var sites []string
	if err := json.Unmarshal([]byte(value), &sites); err != nil {
		return nil, fmt.Errorf("invalid %s preference: %w", key, err)
	}
	return sites, nil
}

func (r *PreferenceRepository) setSites(ctx context.Context, key string, sites []string) error {
	if sites == nil {
		sites = []string{}
	}
	data, err := json.Marshal(sites)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return r.Set(ctx, key, string(data))
}

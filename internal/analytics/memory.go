package analytics

import (
	"context"
	"sync"

	"github.com/emiliopalmerini/mfocus/internal/domain"
)

// MemoryPreferences keeps preferences in process. It backs offline analysis
// of JSONL files where there is no database.
type MemoryPreferences struct {
	mu       sync.RWMutex
	values   map[string]string
	tracking bool
	settings domain.Settings
}

func NewMemoryPreferences() *MemoryPreferences {
	return &MemoryPreferences{values: map[string]string{}, tracking: true}
}

func (m *MemoryPreferences) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryPreferences) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryPreferences) Tracking(context.Context) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tracking, nil
}

func (m *MemoryPreferences) SetTracking(_ context.Context, enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tracking = enabled
	return nil
}

func (m *MemoryPreferences) Settings(context.Context) (domain.Settings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return domain.Settings{
		DistractionSites: append([]string{}, m.settings.DistractionSites...),
		WhitelistSites:   append([]string{}, m.settings.WhitelistSites...),
	}, nil
}

func (m *MemoryPreferences) SaveSettings(_ context.Context, s domain.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = s.Normalize()
	return nil
}

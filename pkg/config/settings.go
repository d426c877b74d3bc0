package config

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"gopkg.in/yaml.v3"
)

// Settings is the operator-edited YAML file carrying company identity and
// access-control settings that are data rather than deployment config.
type Settings struct {
	// Company is the display name used by the UI shell.
	Company string `yaml:"company"`
	// OwnerEmail is the single recognized identity auto-granted the owner
	// role, matched case-insensitively.
	OwnerEmail string `yaml:"owner_email"`
	// PendingInviteDays is how many days a provisioned profile may stay
	// pending before the nightly sweep removes it. Zero disables the sweep.
	PendingInviteDays int `yaml:"pending_invite_days"`
}

// PendingInviteTTL returns the sweep threshold as a duration.
func (s *Settings) PendingInviteTTL() time.Duration {
	return time.Duration(s.PendingInviteDays) * 24 * time.Hour
}

// Validate checks settings for operator mistakes worth failing on.
func (s *Settings) Validate() error {
	if strings.TrimSpace(s.OwnerEmail) == "" {
		return fmt.Errorf("owner_email is required")
	}
	if !strings.Contains(s.OwnerEmail, "@") {
		return fmt.Errorf("owner_email %q is not an email address", s.OwnerEmail)
	}
	if s.PendingInviteDays < 0 {
		return fmt.Errorf("pending_invite_days must not be negative")
	}
	return nil
}

// LoadSettings reads and validates the settings file.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	var settings Settings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings file: %w", err)
	}

	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	return &settings, nil
}

// SettingsStore publishes settings atomically so no reader ever observes a
// half-applied update during hot reload.
type SettingsStore struct {
	current atomic.Pointer[Settings]
}

// NewSettingsStore creates a store holding the initial settings.
func NewSettingsStore(initial *Settings) *SettingsStore {
	store := &SettingsStore{}
	store.current.Store(initial)
	return store
}

// Current returns the active settings snapshot.
func (s *SettingsStore) Current() *Settings {
	return s.current.Load()
}

// Replace swaps in a new settings snapshot.
func (s *SettingsStore) Replace(settings *Settings) {
	s.current.Store(settings)
}

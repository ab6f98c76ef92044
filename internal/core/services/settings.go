package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/docwatch/internal/core/domain"
	"github.com/custodia-labs/docwatch/internal/core/ports/driven"
	"github.com/custodia-labs/docwatch/internal/core/ports/driving"
)

// Ensure SettingsService implements the interfaces.
var (
	_ driving.SettingsService = (*SettingsService)(nil)
	_ driven.SettingsSource   = (*SettingsService)(nil)
)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	KeyUsername   = "github.username"
	KeyToken      = "github.token"
	KeyRepo       = "github.repo"
	KeyPath       = "github.path"
	KeyBranch     = "github.branch"
	KeyIntervalMS = "poll.interval_ms"
)

// SettingsService manages application settings in a ConfigStore.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings, filling defaults for unset keys.
func (s *SettingsService) Get(_ context.Context) (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Credentials: domain.Credentials{
			Username: s.configStore.GetString(KeyUsername),
			Token:    s.configStore.GetString(KeyToken),
		},
		Repo:         s.getString(KeyRepo, defaults.Repo),
		Path:         s.getString(KeyPath, defaults.Path),
		Branch:       s.getString(KeyBranch, defaults.Branch),
		PollInterval: s.getInterval(defaults.PollInterval),
	}
	return settings, nil
}

// Status returns the masked view of the current settings.
func (s *SettingsService) Status(ctx context.Context) (*domain.SettingsStatus, error) {
	settings, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	status := settings.Status()
	return &status, nil
}

// Update applies a partial edit and persists it.
func (s *SettingsService) Update(_ context.Context, update domain.SettingsUpdate) error {
	if update.IsEmpty() {
		return nil
	}

	if update.Username != nil {
		if err := s.configStore.Set(KeyUsername, strings.TrimSpace(*update.Username)); err != nil {
			return fmt.Errorf("save username: %w", err)
		}
	}
	if update.Token != nil {
		if err := s.configStore.Set(KeyToken, strings.TrimSpace(*update.Token)); err != nil {
			return fmt.Errorf("save token: %w", err)
		}
	}
	if update.Repo != nil {
		if err := s.configStore.Set(KeyRepo, strings.TrimSpace(*update.Repo)); err != nil {
			return fmt.Errorf("save repo: %w", err)
		}
	}

	if err := s.configStore.Save(); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}

// SetPollInterval validates and persists the polling interval.
func (s *SettingsService) SetPollInterval(_ context.Context, interval time.Duration) error {
	if err := domain.ValidatePollInterval(interval); err != nil {
		return err
	}
	if err := s.configStore.Set(KeyIntervalMS, int(interval.Milliseconds())); err != nil {
		return fmt.Errorf("save interval: %w", err)
	}
	if err := s.configStore.Save(); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}

func (s *SettingsService) getString(key, defaultVal string) string {
	if val := s.configStore.GetString(key); val != "" {
		return val
	}
	return defaultVal
}

func (s *SettingsService) getInterval(defaultVal time.Duration) time.Duration {
	ms := s.configStore.GetInt(KeyIntervalMS)
	if ms <= 0 || int64(ms) > domain.MaxPollIntervalMS {
		return defaultVal
	}
	return domain.ClampPollInterval(time.Duration(ms) * time.Millisecond)
}

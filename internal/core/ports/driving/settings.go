package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/docwatch/internal/core/domain"
)

// SettingsService manages user settings.
type SettingsService interface {
	// Get returns the current settings.
	Get(ctx context.Context) (*domain.AppSettings, error)

	// Status returns the masked settings view.
	Status(ctx context.Context) (*domain.SettingsStatus, error)

	// Update applies a partial edit of credentials and repository.
	Update(ctx context.Context, update domain.SettingsUpdate) error

	// SetPollInterval changes the polling cadence. Values below the floor are rejected.
	SetPollInterval(ctx context.Context, interval time.Duration) error
}

package driven

import (
	"context"

	"github.com/custodia-labs/docwatch/internal/core/domain"
)

// SettingsSource supplies the settings in effect right now.
// It is read on every fetch so credential edits apply to the next cycle.
type SettingsSource interface {
	Get(ctx context.Context) (*domain.AppSettings, error)
}

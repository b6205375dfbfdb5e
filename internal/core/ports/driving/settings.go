package driving

import "github.com/custodia-labs/syllabusmatch/internal/core/domain"

// SettingsService resolves application settings.
type SettingsService interface {
	// Get returns the effective settings with defaults applied.
	Get() (*domain.Settings, error)

	// Set stores a single setting by dotted key and persists it.
	Set(key string, value any) error
}

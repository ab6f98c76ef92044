package driven

// ConfigStore provides access to application configuration.
// Keys are dotted paths into the underlying document, e.g. "github.token".
type ConfigStore interface {
	// Get retrieves a configuration value by key.
	Get(key string) (any, bool)

	// GetString returns "" if the key is missing or not a string.
	GetString(key string) string

	// GetInt returns 0 if the key is missing or not an integer.
	GetInt(key string) int

	GetBool(key string) bool

	GetStringSlice(key string) []string

	// Set stores a configuration value in memory. Call Save to persist.
	Set(key string, value any) error

	// Save persists the current configuration to storage.
	Save() error

	// Load re-reads configuration from storage, replacing in-memory values.
	Load() error

	// Path returns the configuration file path, or "" for non-file stores.
	Path() string
}

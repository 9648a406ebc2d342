// Package config provides configuration management for the theme router.
package config

// Config holds the runtime configuration for the themerouter service.
type Config struct {
	// DatabaseURL selects the backing store, sqlite:// or postgres://.
	DatabaseURL string
	// ThemesDir is scanned for theme manifests and watched for changes.
	ThemesDir string
	// RestPrefix is the default API URL prefix before any per-theme
	// override applies.
	RestPrefix string
	// WatchThemes enables the filesystem watcher on ThemesDir.
	WatchThemes bool
	// MetricsEnabled exposes Prometheus counters when set.
	MetricsEnabled bool
}

// DefaultConfig returns configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		DatabaseURL:    "sqlite://./themerouter.db",
		ThemesDir:      "./themes",
		RestPrefix:     "wp-json",
		WatchThemes:    true,
		MetricsEnabled: false,
	}
}

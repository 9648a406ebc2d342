package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoadConfig loads configuration from file using viper.
// CLI flags > environment > config file > defaults precedence.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults matching DefaultConfig
	v.SetDefault("database_url", "sqlite://./themerouter.db")
	v.SetDefault("themes_dir", "./themes")
	v.SetDefault("rest_prefix", "wp-json")
	v.SetDefault("watch_themes", true)
	v.SetDefault("metrics_enabled", false)

	// Bind environment variables with THEMEROUTER_ prefix
	v.SetEnvPrefix("THEMEROUTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Load config file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		DatabaseURL:    v.GetString("database_url"),
		ThemesDir:      v.GetString("themes_dir"),
		RestPrefix:     v.GetString("rest_prefix"),
		WatchThemes:    v.GetBool("watch_themes"),
		MetricsEnabled: v.GetBool("metrics_enabled"),
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateConfig checks the store URL scheme and required paths.
func validateConfig(cfg *Config) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("database_url must be set")
	}
	if !strings.HasPrefix(cfg.DatabaseURL, "sqlite://") && !strings.HasPrefix(cfg.DatabaseURL, "postgres://") {
		return fmt.Errorf("database_url must use sqlite:// or postgres:// scheme, got %q", cfg.DatabaseURL)
	}
	if cfg.ThemesDir == "" {
		return fmt.Errorf("themes_dir must be set")
	}
	if cfg.RestPrefix == "" {
		return fmt.Errorf("rest_prefix must be set")
	}
	if strings.Trim(cfg.RestPrefix, "/") == "" {
		return fmt.Errorf("rest_prefix must not be only slashes")
	}
	return nil
}

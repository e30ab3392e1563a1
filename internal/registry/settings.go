package registry

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Settings are the catalog-wide defaults applied when a declaration leaves
// an attribute unspecified.
type Settings struct {
	// CacheEnabled gates the second-level cache globally.
	CacheEnabled bool `mapstructure:"cacheEnabled"`

	// LazyLoadingEnabled is the default for association/collection lazy
	// flags.
	LazyLoadingEnabled bool `mapstructure:"lazyLoadingEnabled"`

	// DefaultStatementTimeout bounds execution when a statement declares no
	// timeout.
	DefaultStatementTimeout time.Duration `mapstructure:"defaultStatementTimeout"`

	// DefaultFetchSize is the driver fetch-size hint when unspecified.
	DefaultFetchSize int `mapstructure:"defaultFetchSize"`

	// Environment discriminates cache keys between configured environments.
	Environment string `mapstructure:"environment"`

	// BlockingCacheTimeout bounds the per-key lock wait of blocking caches.
	BlockingCacheTimeout time.Duration `mapstructure:"blockingCacheTimeout"`
}

// DefaultSettings returns the stock configuration.
func DefaultSettings() Settings {
	return Settings{
		CacheEnabled:       true,
		LazyLoadingEnabled: false,
		Environment:        "default",
	}
}

// LoadSettings reads a settings file (YAML, JSON or TOML, decided by
// extension) over the defaults.
func LoadSettings(path string) (Settings, error) {
	settings := DefaultSettings()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetDefault("cacheEnabled", settings.CacheEnabled)
	v.SetDefault("lazyLoadingEnabled", settings.LazyLoadingEnabled)
	v.SetDefault("environment", settings.Environment)
	if err := v.ReadInConfig(); err != nil {
		return settings, fmt.Errorf("reading settings %s: %w", path, err)
	}
	if err := v.Unmarshal(&settings); err != nil {
		return settings, fmt.Errorf("decoding settings %s: %w", path, err)
	}
	return settings, nil
}

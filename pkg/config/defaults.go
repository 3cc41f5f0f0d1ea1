package config

import (
	"strings"
)

// ApplyDefaults sets default values for any unspecified configuration fields.
//
// This function is called after loading configuration from file and environment
// variables to fill in any missing values with sensible defaults.
//
// Default Strategy:
//   - Zero values (0, "", false, nil) are replaced with defaults
//   - Explicit values are preserved
//   - Backend-specific defaults are handled by the backends
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyMetricsDefaults(&cfg.Metrics)

	// Mount a scratch drive if none configured
	if len(cfg.Drives) == 0 {
		cfg.Drives = []DriveConfig{
			{Letter: "A", Type: "memory"},
		}
	}

	applyDriveDefaults(cfg.Drives)
}

func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}

	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Port == 0 {
		cfg.Port = 9090
	}
}

func applyDriveDefaults(drives []DriveConfig) {
	for i := range drives {
		drives[i].Letter = strings.ToUpper(drives[i].Letter)
		drives[i].Type = strings.ToLower(drives[i].Type)
	}
}

// GetDefaultConfig returns a Config with all default values applied.
//
// This is used by InitConfig to write a starting configuration file.
func GetDefaultConfig() *Config {
	cfg := &Config{
		Drives: []DriveConfig{
			{
				Letter: "A",
				Type:   "memory",
				Memory: map[string]any{"max_nodes": 0},
			},
			{
				Letter: "B",
				Type:   "badger",
				Badger: map[string]any{"block_cache_mb": 16, "index_cache_mb": 16},
			},
		},
	}
	ApplyDefaults(cfg)
	return cfg
}

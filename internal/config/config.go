// Package config loads client configuration from an optional YAML file with
// environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all client settings.
type Config struct {
	// BackendURL is the planning backend base URL.
	BackendURL string `yaml:"backend_url"`

	// GeocoderURL is the reverse-geocoding base URL.
	GeocoderURL string `yaml:"geocoder_url"`

	// RequestTimeout is the blanket backend request timeout.
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// PollInterval is the agent-status poll cadence in the chat view.
	PollInterval time.Duration `yaml:"poll_interval"`

	// Driver is the default driver name for manifests.
	Driver string `yaml:"driver"`

	// StorePath is the local state database path.
	StorePath string `yaml:"store_path"`

	// ListenAddr is the bind address for serve mode.
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel is the zerolog level name.
	LogLevel string `yaml:"log_level"`

	Telemetry Telemetry `yaml:"telemetry"`
}

// Telemetry holds the OTLP tracing settings.
type Telemetry struct {
	Enabled      bool   `yaml:"enabled"`
	OTLPEndpoint string `yaml:"otlp_endpoint"`
}

// Default returns the built-in defaults.
func Default() Config {
	storePath := "logihub.db"
	if home, err := os.UserHomeDir(); err == nil {
		storePath = filepath.Join(home, ".logihub", "state.db")
	}

	return Config{
		BackendURL:     "http://localhost:8000",
		GeocoderURL:    "https://nominatim.openstreetmap.org",
		RequestTimeout: 60 * time.Second,
		PollInterval:   60 * time.Second,
		Driver:         "Default Driver",
		StorePath:      storePath,
		ListenAddr:     "127.0.0.1:7080",
		LogLevel:       "info",
		Telemetry: Telemetry{
			Enabled:      false,
			OTLPEndpoint: "localhost:4317",
		},
	}
}

// Load reads the config file at path (when it exists) over the defaults,
// then applies environment overrides. An empty path checks the default
// location without complaining about its absence.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if path == "" {
		if configDir, err := os.UserConfigDir(); err == nil {
			path = filepath.Join(configDir, "logihub", "config.yaml")
		}
	}

	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(raw, &cfg); err != nil {
				return cfg, fmt.Errorf("parsing config %s: %w", path, err)
			}
		case os.IsNotExist(err) && !explicit:
			// Missing default config is fine.
		default:
			return cfg, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

// applyEnv overrides settings from LOGIHUB_* environment variables.
func applyEnv(cfg *Config) {
	if v := os.Getenv("LOGIHUB_BACKEND_URL"); v != "" {
		cfg.BackendURL = v
	}
	if v := os.Getenv("LOGIHUB_GEOCODER_URL"); v != "" {
		cfg.GeocoderURL = v
	}
	if v := os.Getenv("LOGIHUB_STORE_PATH"); v != "" {
		cfg.StorePath = v
	}
	if v := os.Getenv("LOGIHUB_LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("LOGIHUB_DRIVER"); v != "" {
		cfg.Driver = v
	}
	if v := os.Getenv("LOGIHUB_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("LOGIHUB_REQUEST_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.RequestTimeout = d
		}
	}
	if v := os.Getenv("LOGIHUB_POLL_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.PollInterval = d
		}
	}
	if v := os.Getenv("OTEL_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Telemetry.Enabled = enabled
		}
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		cfg.Telemetry.OTLPEndpoint = v
	}
}

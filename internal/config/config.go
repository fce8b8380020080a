// Package config loads this server's configuration from a config file,
// environment variables, and CLI flags, in that order of increasing
// precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config is this server's full runtime configuration.
//
// Configuration sources, in order of precedence (highest to lowest):
//  1. CLI flags bound onto the same viper instance by cmd/nfs4d
//  2. Environment variables (NFS4D_*)
//  3. Configuration file (YAML)
//  4. Default values
type Config struct {
	// Root is the filesystem directory this server exports. There is
	// exactly one export (§1): no share/mount indirection.
	Root string `mapstructure:"root" validate:"required" yaml:"root"`

	// Bind is the "host:port" address the TCP listener binds.
	Bind string `mapstructure:"bind" validate:"required" yaml:"bind"`

	// Lease is the NFSv4.0 lease duration (RFC 7530 §9.1) after which an
	// unrenewed client record expires.
	Lease time.Duration `mapstructure:"lease" validate:"required,gt=0" yaml:"lease"`

	// FSIDMajor/FSIDMinor are the fsid values GETATTR reports for every
	// object, since this server exports a single filesystem (§4.6.1).
	FSIDMajor uint32 `mapstructure:"fsid_major" yaml:"fsid_major"`
	FSIDMinor uint32 `mapstructure:"fsid_minor" yaml:"fsid_minor"`

	Logging   LoggingConfig   `mapstructure:"logging" yaml:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`
	Metrics   MetricsConfig   `mapstructure:"metrics" yaml:"metrics"`
}

// LoggingConfig controls log output behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`
	Output string `mapstructure:"output" yaml:"output"`
}

// TelemetryConfig controls OpenTelemetry distributed tracing.
type TelemetryConfig struct {
	Enabled    bool    `mapstructure:"enabled" yaml:"enabled"`
	Endpoint   string  `mapstructure:"endpoint" yaml:"endpoint"`
	Insecure   bool    `mapstructure:"insecure" yaml:"insecure"`
	SampleRate float64 `mapstructure:"sample_rate" validate:"gte=0,lte=1" yaml:"sample_rate"`
}

// MetricsConfig controls the Prometheus /metrics HTTP endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Bind    string `mapstructure:"bind" yaml:"bind"`
}

// Load loads configuration from v, which the caller has already bound
// to CLI flags and a config file (if any); Load adds environment
// variable support, applies defaults for unset fields, and validates
// the result.
//
// Environment variables use the NFS4D_ prefix and underscores in place
// of dots, e.g. NFS4D_LOGGING_LEVEL=DEBUG.
func Load(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix("NFS4D")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}
	if err := checkRoot(cfg.Root); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills in zero-valued fields with sensible defaults.
// Explicit values (from flags, env vars, or the config file) are
// always preserved.
func applyDefaults(cfg *Config) {
	if cfg.Bind == "" {
		cfg.Bind = "127.0.0.1:11112"
	}
	if cfg.Lease == 0 {
		cfg.Lease = 60 * time.Second
	}
	if cfg.FSIDMajor == 0 {
		cfg.FSIDMajor = 152
	}
	if cfg.FSIDMinor == 0 {
		cfg.FSIDMinor = 152
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "INFO"
	}
	cfg.Logging.Level = strings.ToUpper(cfg.Logging.Level)
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
	if cfg.Telemetry.Endpoint == "" {
		cfg.Telemetry.Endpoint = "localhost:4317"
	}
	if cfg.Telemetry.SampleRate == 0 {
		cfg.Telemetry.SampleRate = 1.0
	}
	if cfg.Metrics.Bind == "" {
		cfg.Metrics.Bind = "127.0.0.1:9090"
	}
}

func validate(cfg *Config) error {
	return validator.New().Struct(cfg)
}

func checkRoot(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("config: root %q: %w", root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("config: root %q is not a directory", root)
	}
	return nil
}

// DefaultConfigDir returns $XDG_CONFIG_HOME/nfs4d, falling back to
// ~/.config/nfs4d.
func DefaultConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "nfs4d")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "nfs4d")
}

// DefaultConfigPath returns the default config file path within
// DefaultConfigDir.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

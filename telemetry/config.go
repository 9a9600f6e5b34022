// Package telemetry provides OpenTelemetry metrics plumbing: a meter provider
// manager, a registry of metrics providers and instrument builders.
package telemetry

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Exporter names
const (
	ExporterNone   = "none"
	ExporterStdout = "stdout"
)

// Config metrics configuration (config key "metrics")
type Config struct {
	Enabled        bool           `mapstructure:"enabled"`
	Namespace      string         `mapstructure:"namespace"` // instrument name prefix
	Exporter       string         `mapstructure:"exporter"`  // none | stdout
	ExportInterval time.Duration  `mapstructure:"export_interval"`
	ExportTimeout  time.Duration  `mapstructure:"export_timeout"`
	ServiceName    string         `mapstructure:"service_name"`
	ServiceVersion string         `mapstructure:"service_version"`
	ResourceAttrs  map[string]any `mapstructure:"resource_attrs"` // nested maps are flattened with dots
}

// DefaultConfig metrics are off by default
func DefaultConfig() Config {
	return Config{
		Enabled:        false,
		Namespace:      "",
		Exporter:       ExporterNone,
		ExportInterval: 10 * time.Second,
		ExportTimeout:  5 * time.Second,
		ServiceName:    "bindctl",
		ServiceVersion: "dev",
	}
}

// ApplyDefaults fills zero-valued fields in place
func (c *Config) ApplyDefaults() {
	defaults := DefaultConfig()
	if c.Exporter == "" {
		c.Exporter = defaults.Exporter
	}
	if c.ExportInterval == 0 {
		c.ExportInterval = defaults.ExportInterval
	}
	if c.ExportTimeout == 0 {
		c.ExportTimeout = defaults.ExportTimeout
	}
	if c.ServiceName == "" {
		c.ServiceName = defaults.ServiceName
	}
	if c.ServiceVersion == "" {
		c.ServiceVersion = defaults.ServiceVersion
	}
}

// Validate implements config.Validator
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Exporter, validation.Required, validation.In(ExporterNone, ExporterStdout)),
		validation.Field(&c.ExportInterval, validation.Min(100*time.Millisecond)),
		validation.Field(&c.ExportTimeout, validation.Min(time.Duration(0))),
		validation.Field(&c.ServiceName, validation.When(c.Enabled, validation.Required)),
	)
}

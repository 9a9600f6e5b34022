// Package config loads engine configuration from layered sources through viper
package config

// ConfigSource a configuration data source (file, environment, ...)
type ConfigSource interface {
	// Name identifies the source in errors and logs
	Name() string

	// Priority higher values override lower ones.
	// Conventional values: config.yaml 10, <env>.yaml 20, environment 50.
	Priority() int

	// Load returns flat data keyed by dot-separated paths, e.g. "metrics.namespace"
	Load() (map[string]any, error)
}

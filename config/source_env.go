package config

import (
	"os"
	"strings"
)

// EnvSource environment variable data source
type EnvSource struct {
	prefix   string // e.g. "BINDCTL"
	priority int
	bindings map[string]string // config key -> env name
}

// NewEnvSource creates an environment data source
func NewEnvSource(prefix string, priority int) *EnvSource {
	return &EnvSource{
		prefix:   prefix,
		priority: priority,
		bindings: make(map[string]string),
	}
}

// AddBinding maps a config key to an env name, for keys whose segments contain underscores.
//
//	src.AddBinding("metrics.export_interval", "METRICS_EXPORT_INTERVAL")
func (s *EnvSource) AddBinding(key, envKey string) {
	s.bindings[key] = envKey
}

// Name data source name
func (s *EnvSource) Name() string {
	return "env:" + s.prefix
}

// Priority priority
func (s *EnvSource) Priority() int {
	return s.priority
}

// Load uses explicit bindings when present, otherwise scans every variable with the prefix
func (s *EnvSource) Load() (map[string]any, error) {
	result := make(map[string]any)

	if len(s.bindings) > 0 {
		for key, envKey := range s.bindings {
			fullEnvKey := envKey
			if s.prefix != "" && !strings.HasPrefix(envKey, s.prefix+"_") {
				fullEnvKey = s.prefix + "_" + envKey
			}
			if value := os.Getenv(fullEnvKey); value != "" {
				result[key] = value
			}
		}
		return result, nil
	}

	if s.prefix == "" {
		return result, nil
	}

	prefix := s.prefix + "_"
	for _, env := range os.Environ() {
		key, value, ok := strings.Cut(env, "=")
		if !ok || !strings.HasPrefix(key, prefix) {
			continue
		}
		// BINDCTL_LOGGER_LEVEL -> logger.level
		configKey := strings.ToLower(strings.TrimPrefix(key, prefix))
		result[strings.ReplaceAll(configKey, "_", ".")] = value
	}

	return result, nil
}

package config

import (
	"os"
	"path/filepath"
)

// Source priorities used by LoaderBuilder
const (
	PriorityBaseFile = 10
	PriorityEnvFile  = 20
	PriorityEnvVars  = 50
)

// LoaderBuilder assembles the conventional source stack:
// <dir>/config.yaml, <dir>/<env>.yaml, then prefixed environment variables.
type LoaderBuilder struct {
	configPath  string
	envPrefix   string
	env         string
	envBindings map[string]string
}

// NewLoaderBuilder creates a loader builder
func NewLoaderBuilder() *LoaderBuilder {
	return &LoaderBuilder{envBindings: make(map[string]string)}
}

// WithConfigPath sets the configuration directory
func (b *LoaderBuilder) WithConfigPath(path string) *LoaderBuilder {
	b.configPath = path
	return b
}

// WithEnvPrefix sets the environment variable prefix
func (b *LoaderBuilder) WithEnvPrefix(prefix string) *LoaderBuilder {
	b.envPrefix = prefix
	return b
}

// WithEnv overrides the environment name, which otherwise comes from GetEnv
func (b *LoaderBuilder) WithEnv(env string) *LoaderBuilder {
	b.env = env
	return b
}

// WithEnvBinding maps a config key to an env name (see EnvSource.AddBinding)
func (b *LoaderBuilder) WithEnvBinding(key, envKey string) *LoaderBuilder {
	b.envBindings[key] = envKey
	return b
}

// Build creates and loads the loader
func (b *LoaderBuilder) Build() (*Loader, error) {
	loader := NewLoader()

	if b.configPath != "" {
		loader.AddSource(NewFileSource(filepath.Join(b.configPath, "config.yaml"), PriorityBaseFile))

		env := b.env
		if env == "" {
			env = GetEnv()
		}
		loader.AddSource(NewFileSource(filepath.Join(b.configPath, env+".yaml"), PriorityEnvFile))
	}

	if b.envPrefix != "" {
		src := NewEnvSource(b.envPrefix, PriorityEnvVars)
		for key, envKey := range b.envBindings {
			src.AddBinding(key, envKey)
		}
		loader.AddSource(src)
	}

	if err := loader.Load(); err != nil {
		return nil, err
	}
	return loader, nil
}

// GetEnv APP_ENV, then ENV, then "dev"
func GetEnv() string {
	if env := os.Getenv("APP_ENV"); env != "" {
		return env
	}
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "dev"
}

package config

import (
	"fmt"

	"github.com/samber/do/v2"
)

// ProvideLoaderOptions options of ProvideLoader
type ProvideLoaderOptions struct {
	ConfigPath  string // empty: environment only
	EnvPrefix   string
	Env         string
	EnvBindings map[string]string
}

// ProvideLoader do provider building a Loader. The loader has no dependencies.
//
//	do.Provide(injector, config.ProvideLoader(config.ProvideLoaderOptions{
//	    ConfigPath: "configs",
//	    EnvPrefix:  "BINDCTL",
//	}))
func ProvideLoader(opts ProvideLoaderOptions) func(do.Injector) (*Loader, error) {
	return func(do.Injector) (*Loader, error) {
		b := NewLoaderBuilder().
			WithConfigPath(opts.ConfigPath).
			WithEnvPrefix(opts.EnvPrefix).
			WithEnv(opts.Env)
		for key, envKey := range opts.EnvBindings {
			b.WithEnvBinding(key, envKey)
		}

		loader, err := b.Build()
		if err != nil {
			return nil, fmt.Errorf("config loader build failed: %w", err)
		}
		return loader, nil
	}
}

// ProvideLoaderValue registers an already built loader
func ProvideLoaderValue(loader *Loader) func(do.Injector) (*Loader, error) {
	return func(do.Injector) (*Loader, error) {
		return loader, nil
	}
}

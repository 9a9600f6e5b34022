package di

import (
	"fmt"

	"github.com/KOMKZ/go-yogan-binding/binding"
	"github.com/KOMKZ/go-yogan-binding/config"
	"github.com/KOMKZ/go-yogan-binding/logger"
	"github.com/KOMKZ/go-yogan-binding/registry"
	"github.com/KOMKZ/go-yogan-binding/telemetry"
	"github.com/samber/do/v2"
)

// Config engine configuration: the "logger" and "metrics" sections
type Config struct {
	Logger  logger.ManagerConfig `mapstructure:"logger"`
	Metrics telemetry.Config     `mapstructure:"metrics"`
}

// DefaultConfig console logging, metrics off
func DefaultConfig() Config {
	return Config{
		Logger:  logger.DefaultManagerConfig(),
		Metrics: telemetry.DefaultConfig(),
	}
}

// ApplyDefaults fills zero-valued fields of both sections
func (c *Config) ApplyDefaults() {
	c.Logger.ApplyDefaults()
	c.Metrics.ApplyDefaults()
}

// Validate validates both sections
func (c Config) Validate() error {
	return config.ValidateAll(c.Logger, c.Metrics)
}

// RegisterCoreProviders registers the engine services, by dependency level.
// Everything is lazy; nothing is built until invoked.
func RegisterCoreProviders(injector do.Injector, opts Options) {
	// Layer 0: configuration
	if opts.Config != nil {
		cfg := *opts.Config
		do.Provide(injector, func(do.Injector) (*Config, error) {
			return prepareConfig(cfg)
		})
	} else {
		do.Provide(injector, config.ProvideLoader(config.ProvideLoaderOptions{
			ConfigPath:  opts.ConfigPath,
			EnvPrefix:   opts.EnvPrefix,
			Env:         opts.Env,
			EnvBindings: opts.EnvBindings,
		}))
		do.Provide(injector, ProvideEngineConfig)
	}

	// Layer 1: logging and metrics
	do.Provide(injector, ProvideLoggerManager)
	do.Provide(injector, ProvideCtxLogger(opts.LoggerModule))
	do.Provide(injector, ProvideMetricsManager(opts.MetricsOptions...))
	do.Provide(injector, ProvideMetricsRegistry)

	// Layer 2: binding runtime
	do.Provide(injector, ProvideBindingMetrics)
	do.Provide(injector, ProvideObserver)
	do.Provide(injector, ProvideDefaultCollection)
}

// ProvideEngineConfig reads the logger and metrics sections from config.Loader.
// Missing sections keep their defaults.
func ProvideEngineConfig(i do.Injector) (*Config, error) {
	loader, err := do.Invoke[*config.Loader](i)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := loader.UnmarshalKey("logger", &cfg.Logger); err != nil {
		return nil, ErrInvalidConfig.Wrapf(err, "decode logger config")
	}
	if err := loader.UnmarshalKey("metrics", &cfg.Metrics); err != nil {
		return nil, ErrInvalidConfig.Wrapf(err, "decode metrics config")
	}

	return prepareConfig(cfg)
}

// prepareConfig applies defaults, then validates
func prepareConfig(cfg Config) (*Config, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, ErrInvalidConfig.Wrap(err)
	}
	return &cfg, nil
}

// ProvideLoggerManager depends on *Config
func ProvideLoggerManager(i do.Injector) (*logger.Manager, error) {
	cfg, err := do.Invoke[*Config](i)
	if err != nil {
		return nil, err
	}
	return logger.NewManager(cfg.Logger), nil
}

// ProvideCtxLogger logger of one module, "binding" when empty
func ProvideCtxLogger(module string) func(do.Injector) (*logger.CtxZapLogger, error) {
	if module == "" {
		module = "binding"
	}
	return func(i do.Injector) (*logger.CtxZapLogger, error) {
		mgr, err := do.Invoke[*logger.Manager](i)
		if err != nil {
			return nil, err
		}
		return mgr.GetLogger(module), nil
	}
}

// ProvideMetricsManager depends on *Config; opts reach telemetry.NewMetricsManager
func ProvideMetricsManager(opts ...telemetry.ManagerOption) func(do.Injector) (*telemetry.MetricsManager, error) {
	return func(i do.Injector) (*telemetry.MetricsManager, error) {
		cfg, err := do.Invoke[*Config](i)
		if err != nil {
			return nil, err
		}
		return telemetry.NewMetricsManager(cfg.Metrics, opts...)
	}
}

// ProvideMetricsRegistry registry over the managed meter provider
func ProvideMetricsRegistry(i do.Injector) (*telemetry.MetricsRegistry, error) {
	mm, err := do.Invoke[*telemetry.MetricsManager](i)
	if err != nil {
		return nil, err
	}
	mgr, err := do.Invoke[*logger.Manager](i)
	if err != nil {
		return nil, err
	}

	r := telemetry.NewMetricsRegistry(mm.MeterProvider(),
		telemetry.WithLogger(mgr.GetLogger("telemetry")),
	)
	r.SetEnabled(mm.IsEnabled())
	return r, nil
}

// ProvideBindingMetrics creates binding.Metrics and registers it
func ProvideBindingMetrics(i do.Injector) (*binding.Metrics, error) {
	cfg, err := do.Invoke[*Config](i)
	if err != nil {
		return nil, err
	}
	r, err := do.Invoke[*telemetry.MetricsRegistry](i)
	if err != nil {
		return nil, err
	}

	m := binding.NewMetrics(binding.MetricsConfig{
		Enabled:   cfg.Metrics.Enabled,
		Namespace: cfg.Metrics.Namespace,
	})
	if err := r.Register(m); err != nil {
		return nil, fmt.Errorf("register binding metrics: %w", err)
	}
	return m, nil
}

// ProvideObserver logs and measures every binding event
func ProvideObserver(i do.Injector) (binding.Observer, error) {
	log, err := do.Invoke[*logger.CtxZapLogger](i)
	if err != nil {
		return nil, err
	}
	m, err := do.Invoke[*binding.Metrics](i)
	if err != nil {
		return nil, err
	}
	return binding.Observers(binding.NewLogObserver(log), m), nil
}

// ProvideDefaultCollection empty collection logging to the "registry" module
func ProvideDefaultCollection(i do.Injector) (*registry.Collection, error) {
	mgr, err := do.Invoke[*logger.Manager](i)
	if err != nil {
		return nil, err
	}
	c := registry.NewCollection()
	c.SetLogger(mgr.GetLogger("registry"))
	return c, nil
}

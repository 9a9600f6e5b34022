package di

import (
	"context"
	"fmt"
	"sync"

	"github.com/KOMKZ/go-yogan-binding/binding"
	"github.com/KOMKZ/go-yogan-binding/logger"
	"github.com/KOMKZ/go-yogan-binding/registry"
	"github.com/KOMKZ/go-yogan-binding/telemetry"
	"github.com/samber/do/v2"
	"go.uber.org/zap"
)

// EngineState engine lifecycle state
type EngineState int

const (
	StateRunning EngineState = iota
	StateStopping
	StateStopped
)

// String state name
func (s EngineState) String() string {
	switch s {
	case StateRunning:
		return "Running"
	case StateStopping:
		return "Stopping"
	case StateStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// Options engine bootstrap options
type Options struct {
	ConfigPath  string            // directory holding config.yaml and <env>.yaml
	EnvPrefix   string            // environment variable prefix
	Env         string            // overrides APP_ENV / ENV
	EnvBindings map[string]string // config key -> env name

	// Config skips the loader entirely when set
	Config *Config

	LoggerModule   string // module of Engine.Logger, default "binding"
	MetricsOptions []telemetry.ManagerOption
}

// Option configures NewEngine
type Option func(*Options)

// WithConfigPath sets the configuration directory
func WithConfigPath(path string) Option {
	return func(o *Options) {
		o.ConfigPath = path
	}
}

// WithEnvPrefix sets the environment variable prefix
func WithEnvPrefix(prefix string) Option {
	return func(o *Options) {
		o.EnvPrefix = prefix
	}
}

// WithEnv sets the environment name used for the overlay file
func WithEnv(env string) Option {
	return func(o *Options) {
		o.Env = env
	}
}

// WithEnvBinding maps a config key to an env name
func WithEnvBinding(key, envKey string) Option {
	return func(o *Options) {
		if o.EnvBindings == nil {
			o.EnvBindings = make(map[string]string)
		}
		o.EnvBindings[key] = envKey
	}
}

// WithConfig uses cfg instead of loading configuration
func WithConfig(cfg Config) Option {
	return func(o *Options) {
		o.Config = &cfg
	}
}

// WithLoggerModule sets the module name of the engine logger
func WithLoggerModule(module string) Option {
	return func(o *Options) {
		o.LoggerModule = module
	}
}

// WithMetricsOptions passes options to telemetry.NewMetricsManager
func WithMetricsOptions(opts ...telemetry.ManagerOption) Option {
	return func(o *Options) {
		o.MetricsOptions = append(o.MetricsOptions, opts...)
	}
}

// Engine owns the injector and the services every binding shares
type Engine struct {
	injector   *do.RootScope
	collection *registry.Collection
	observer   binding.Observer
	logger     *logger.CtxZapLogger
	metrics    *telemetry.MetricsManager

	mu    sync.RWMutex
	state EngineState
}

// NewEngine registers the core providers and builds them eagerly, so
// configuration errors surface here rather than on first resolution.
//
//	engine, err := di.NewEngine(di.WithConfigPath("configs"), di.WithEnvPrefix("BINDCTL"))
//	svc, err := binding.Declare[*Service](declare, engine.BindingOptions()...)
//	err = engine.Add(svc)
func NewEngine(opts ...Option) (*Engine, error) {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}

	injector := do.New()
	RegisterCoreProviders(injector, o)

	e := &Engine{injector: injector, state: StateRunning}
	if err := e.build(); err != nil {
		_ = injector.Shutdown()
		return nil, err
	}

	e.logger.Debug("engine started",
		zap.Bool("metrics", e.metrics.IsEnabled()),
		zap.String("exporter", e.metrics.GetConfig().Exporter),
	)
	return e, nil
}

func (e *Engine) build() error {
	var err error
	if e.logger, err = do.Invoke[*logger.CtxZapLogger](e.injector); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	if e.metrics, err = do.Invoke[*telemetry.MetricsManager](e.injector); err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	if e.observer, err = do.Invoke[binding.Observer](e.injector); err != nil {
		return fmt.Errorf("init observer: %w", err)
	}
	if e.collection, err = do.Invoke[*registry.Collection](e.injector); err != nil {
		return fmt.Errorf("init collection: %w", err)
	}
	return nil
}

// Injector underlying samber/do root scope
func (e *Engine) Injector() *do.RootScope {
	return e.injector
}

// Collection the engine's binding collection
func (e *Engine) Collection() *registry.Collection {
	return e.collection
}

// Observer logs and measures binding events
func (e *Engine) Observer() binding.Observer {
	return e.observer
}

// BindingOptions options wiring new bindings to the engine observer
func (e *Engine) BindingOptions() []binding.Option {
	return []binding.Option{binding.WithObserver(e.observer)}
}

// Logger engine logger
func (e *Engine) Logger() *logger.CtxZapLogger {
	return e.logger
}

// Metrics the metrics manager
func (e *Engine) Metrics() *telemetry.MetricsManager {
	return e.metrics
}

// State current lifecycle state
func (e *Engine) State() EngineState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// Add adds bindings to the collection; nothing is added if any is nil
func (e *Engine) Add(bindings ...binding.Untyped) error {
	if e.State() != StateRunning {
		return ErrEngineClosed
	}
	return e.collection.AddRange(bindings)
}

// Shutdown stops every service in reverse dependency order.
// Metrics are flushed, log files closed. Later calls are no-ops.
func (e *Engine) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	if e.state != StateRunning {
		e.mu.Unlock()
		return nil
	}
	e.state = StateStopping
	e.mu.Unlock()

	e.logger.InfoCtx(ctx, "engine shutting down",
		zap.Int("bindings", e.collection.BindingCount()),
	)

	var shutdownErr error
	if report := e.injector.ShutdownWithContext(ctx); report != nil && !report.Succeed {
		shutdownErr = fmt.Errorf("shutdown injector: %w", report)
	}

	e.mu.Lock()
	e.state = StateStopped
	e.mu.Unlock()
	return shutdownErr
}

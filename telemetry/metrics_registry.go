package telemetry

import (
	"fmt"
	"sync"

	"github.com/KOMKZ/go-yogan-binding/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// MetricsProvider something that owns a group of instruments, e.g. binding.Metrics
type MetricsProvider interface {
	// MetricsName short lowercase group name, used for meter naming
	MetricsName() string

	// RegisterMetrics creates the instruments on meter
	RegisterMetrics(meter metric.Meter) error

	// IsMetricsEnabled disabled providers are skipped by the registry
	IsMetricsEnabled() bool
}

// MetricsRegistry hands each provider its own meter and tracks registrations
type MetricsRegistry struct {
	meterProvider metric.MeterProvider
	meters        map[string]metric.Meter
	providers     []MetricsProvider
	baseLabels    []attribute.KeyValue
	namespace     string
	enabled       bool
	logger        *logger.CtxZapLogger
	mu            sync.RWMutex
}

// MetricsRegistryOption configures the MetricsRegistry
type MetricsRegistryOption func(*MetricsRegistry)

// WithNamespace sets the meter name prefix
func WithNamespace(namespace string) MetricsRegistryOption {
	return func(r *MetricsRegistry) {
		r.namespace = namespace
	}
}

// WithBaseLabels sets labels shared by every provider
func WithBaseLabels(labels []attribute.KeyValue) MetricsRegistryOption {
	return func(r *MetricsRegistry) {
		r.baseLabels = labels
	}
}

// WithLogger sets the registry logger
func WithLogger(l *logger.CtxZapLogger) MetricsRegistryOption {
	return func(r *MetricsRegistry) {
		r.logger = l
	}
}

// NewMetricsRegistry creates a registry; a nil provider means the global one
func NewMetricsRegistry(mp metric.MeterProvider, opts ...MetricsRegistryOption) *MetricsRegistry {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}

	r := &MetricsRegistry{
		meterProvider: mp,
		meters:        make(map[string]metric.Meter),
		namespace:     "binding",
		enabled:       true,
		logger:        logger.Nop(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Register creates a dedicated meter for provider and calls RegisterMetrics.
// Disabled providers and a disabled registry are silently skipped.
func (r *MetricsRegistry) Register(provider MetricsProvider) error {
	if provider == nil {
		return fmt.Errorf("metrics provider is nil")
	}

	if !r.IsEnabled() {
		return nil
	}

	if !provider.IsMetricsEnabled() {
		r.logger.Debug("metrics disabled for provider",
			zap.String("provider", provider.MetricsName()))
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	name := provider.MetricsName()
	if name == "" {
		return fmt.Errorf("metrics provider name is empty")
	}

	for _, p := range r.providers {
		if p.MetricsName() == name {
			return fmt.Errorf("metrics provider %q already registered", name)
		}
	}

	meter := r.getMeterLocked(name)
	if err := provider.RegisterMetrics(meter); err != nil {
		return fmt.Errorf("register metrics for %q failed: %w", name, err)
	}

	r.providers = append(r.providers, provider)
	r.logger.Info("metrics provider registered", zap.String("provider", name))

	return nil
}

// GetMeter returns the meter named {namespace}_{name}
func (r *MetricsRegistry) GetMeter(name string) metric.Meter {
	r.mu.RLock()
	if meter, ok := r.meters[name]; ok {
		r.mu.RUnlock()
		return meter
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.getMeterLocked(name)
}

// getMeterLocked must hold lock
func (r *MetricsRegistry) getMeterLocked(name string) metric.Meter {
	if meter, ok := r.meters[name]; ok {
		return meter
	}

	meterName := name
	if r.namespace != "" {
		meterName = r.namespace + "_" + name
	}

	meter := r.meterProvider.Meter(meterName)
	r.meters[name] = meter
	return meter
}

// GetBaseLabels returns a copy of the shared labels
func (r *MetricsRegistry) GetBaseLabels() []attribute.KeyValue {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]attribute.KeyValue{}, r.baseLabels...)
}

// IsEnabled returns whether registration is enabled
func (r *MetricsRegistry) IsEnabled() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.enabled
}

// SetEnabled enables or disables registration
func (r *MetricsRegistry) SetEnabled(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enabled = enabled
}

// GetProviders returns the registered providers
func (r *MetricsRegistry) GetProviders() []MetricsProvider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]MetricsProvider{}, r.providers...)
}

// GetProviderCount returns the number of registered providers
func (r *MetricsRegistry) GetProviderCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.providers)
}

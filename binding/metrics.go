package binding

import (
	"context"
	"reflect"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/KOMKZ/go-yogan-binding/telemetry"
)

// MetricsConfig holds configuration for binding metrics
type MetricsConfig struct {
	Enabled   bool
	Namespace string
}

// Metrics records resolution events as OpenTelemetry instruments.
// It is an Observer; events before RegisterMetrics are dropped.
type Metrics struct {
	config     MetricsConfig
	mu         sync.RWMutex
	registered bool

	resolutions  metric.Int64Counter
	duration     metric.Float64Histogram
	compilations metric.Int64Counter
	scope        *telemetry.CacheMetrics
}

// NewMetrics creates a binding metrics provider
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{config: cfg}
}

// MetricsName returns the metrics group name
func (m *Metrics) MetricsName() string {
	return "binding"
}

// IsMetricsEnabled returns whether metrics collection is enabled
func (m *Metrics) IsMetricsEnabled() bool {
	return m.config.Enabled
}

// IsRegistered returns whether instruments have been created
func (m *Metrics) IsRegistered() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.registered
}

// RegisterMetrics creates the instruments on meter
func (m *Metrics) RegisterMetrics(meter metric.Meter) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.registered {
		return nil
	}

	b := telemetry.NewMetricsBuilder(meter, m.config.Namespace)
	var err error

	m.resolutions, err = b.Counter("binding_resolutions_total", "Total number of binding resolutions")
	if err != nil {
		return err
	}

	m.duration, err = b.DurationHistogram("binding_resolution_duration_seconds", "Binding resolution duration distribution")
	if err != nil {
		return err
	}

	m.compilations, err = b.Counter("binding_compilations_total", "Total number of lazy binding compilations")
	if err != nil {
		return err
	}

	m.scope, err = b.NewCacheMetrics("binding_scope")
	if err != nil {
		return err
	}

	m.registered = true
	return nil
}

// Resolved counts the resolution and records its duration, labeled by result
func (m *Metrics) Resolved(t reflect.Type, kind Kind, d time.Duration, err error) {
	if !m.ready() {
		return
	}
	opt := metric.WithAttributes(
		attribute.String("type", typeString(t)),
		attribute.String("kind", kind.String()),
		attribute.String("result", resultLabel(err)),
	)
	ctx := context.Background()
	m.resolutions.Add(ctx, 1, opt)
	m.duration.Record(ctx, d.Seconds(), opt)
}

// Compiled counts a lazy compilation
func (m *Metrics) Compiled(t reflect.Type, _ time.Duration, err error) {
	if !m.ready() {
		return
	}
	m.compilations.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("type", typeString(t)),
		attribute.String("result", resultLabel(err)),
	))
}

// ScopeLookup records a scope cache hit or miss
func (m *Metrics) ScopeLookup(t reflect.Type, kind Kind, hit bool) {
	if !m.ready() {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("type", typeString(t)),
		attribute.String("kind", kind.String()),
	}
	if hit {
		m.scope.RecordHit(context.Background(), attrs...)
		return
	}
	m.scope.RecordMiss(context.Background(), attrs...)
}

func (m *Metrics) ready() bool {
	if !m.config.Enabled {
		return false
	}
	return m.IsRegistered()
}

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func typeString(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}

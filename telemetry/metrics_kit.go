package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsBuilder creates namespaced instruments
type MetricsBuilder struct {
	meter     metric.Meter
	namespace string
}

// NewMetricsBuilder creates a builder; instrument names become {namespace}_{name}
func NewMetricsBuilder(meter metric.Meter, namespace string) *MetricsBuilder {
	return &MetricsBuilder{
		meter:     meter,
		namespace: namespace,
	}
}

// fullName applies the namespace prefix
func (b *MetricsBuilder) fullName(name string) string {
	if b.namespace == "" {
		return name
	}
	return b.namespace + "_" + name
}

// ========== Instruments ==========

// Counter creates an Int64Counter with unit {count}
func (b *MetricsBuilder) Counter(name, desc string) (metric.Int64Counter, error) {
	return b.meter.Int64Counter(
		b.fullName(name),
		metric.WithDescription(desc),
		metric.WithUnit("{count}"),
	)
}

// CounterWithUnit creates an Int64Counter with a custom unit
func (b *MetricsBuilder) CounterWithUnit(name, desc, unit string) (metric.Int64Counter, error) {
	return b.meter.Int64Counter(
		b.fullName(name),
		metric.WithDescription(desc),
		metric.WithUnit(unit),
	)
}

// Histogram creates a Float64Histogram
func (b *MetricsBuilder) Histogram(name, desc, unit string) (metric.Float64Histogram, error) {
	return b.meter.Float64Histogram(
		b.fullName(name),
		metric.WithDescription(desc),
		metric.WithUnit(unit),
	)
}

// DurationHistogram creates a histogram in seconds
func (b *MetricsBuilder) DurationHistogram(name, desc string) (metric.Float64Histogram, error) {
	return b.Histogram(name, desc, "s")
}

// BytesHistogram creates a histogram in bytes
func (b *MetricsBuilder) BytesHistogram(name, desc string) (metric.Int64Histogram, error) {
	return b.meter.Int64Histogram(
		b.fullName(name),
		metric.WithDescription(desc),
		metric.WithUnit("By"),
	)
}

// Gauge creates an observable gauge read through callback
func (b *MetricsBuilder) Gauge(name, desc string, callback func(context.Context) (int64, error)) (metric.Int64ObservableGauge, error) {
	return b.meter.Int64ObservableGauge(
		b.fullName(name),
		metric.WithDescription(desc),
		metric.WithInt64Callback(func(ctx context.Context, o metric.Int64Observer) error {
			val, err := callback(ctx)
			if err != nil {
				return err
			}
			o.Observe(val)
			return nil
		}),
	)
}

// GaugeWithAttrs creates an observable gauge whose callback also returns attributes
func (b *MetricsBuilder) GaugeWithAttrs(name, desc string, callback func(context.Context) (int64, []attribute.KeyValue, error)) (metric.Int64ObservableGauge, error) {
	return b.meter.Int64ObservableGauge(
		b.fullName(name),
		metric.WithDescription(desc),
		metric.WithInt64Callback(func(ctx context.Context, o metric.Int64Observer) error {
			val, attrs, err := callback(ctx)
			if err != nil {
				return err
			}
			o.Observe(val, metric.WithAttributes(attrs...))
			return nil
		}),
	)
}

// UpDownCounter creates an Int64UpDownCounter
func (b *MetricsBuilder) UpDownCounter(name, desc string) (metric.Int64UpDownCounter, error) {
	return b.meter.Int64UpDownCounter(
		b.fullName(name),
		metric.WithDescription(desc),
		metric.WithUnit("{count}"),
	)
}

// ========== Templates ==========

// CacheMetrics hit/miss instruments of a cache
type CacheMetrics struct {
	Hits     metric.Int64Counter
	Misses   metric.Int64Counter
	Gets     metric.Int64Counter // hits + misses
	Sets     metric.Int64Counter
	Deletes  metric.Int64Counter
	Duration metric.Float64Histogram
}

// NewCacheMetrics creates {prefix}_cache_{hits,misses,gets,sets,deletes}_total and {prefix}_cache_duration_seconds
func (b *MetricsBuilder) NewCacheMetrics(prefix string) (*CacheMetrics, error) {
	hits, err := b.Counter(prefix+"_cache_hits_total", "Total number of "+prefix+" cache hits")
	if err != nil {
		return nil, err
	}

	misses, err := b.Counter(prefix+"_cache_misses_total", "Total number of "+prefix+" cache misses")
	if err != nil {
		return nil, err
	}

	gets, err := b.Counter(prefix+"_cache_gets_total", "Total number of "+prefix+" cache get operations")
	if err != nil {
		return nil, err
	}

	sets, err := b.Counter(prefix+"_cache_sets_total", "Total number of "+prefix+" cache set operations")
	if err != nil {
		return nil, err
	}

	deletes, err := b.Counter(prefix+"_cache_deletes_total", "Total number of "+prefix+" cache delete operations")
	if err != nil {
		return nil, err
	}

	duration, err := b.DurationHistogram(prefix+"_cache_duration_seconds", prefix+" cache operation duration")
	if err != nil {
		return nil, err
	}

	return &CacheMetrics{
		Hits:     hits,
		Misses:   misses,
		Gets:     gets,
		Sets:     sets,
		Deletes:  deletes,
		Duration: duration,
	}, nil
}

// RecordHit counts a get that found a value
func (m *CacheMetrics) RecordHit(ctx context.Context, attrs ...attribute.KeyValue) {
	opt := metric.WithAttributes(attrs...)
	m.Gets.Add(ctx, 1, opt)
	m.Hits.Add(ctx, 1, opt)
}

// RecordMiss counts a get that had to build the value
func (m *CacheMetrics) RecordMiss(ctx context.Context, attrs ...attribute.KeyValue) {
	opt := metric.WithAttributes(attrs...)
	m.Gets.Add(ctx, 1, opt)
	m.Misses.Add(ctx, 1, opt)
}

// RecordSet counts a stored value
func (m *CacheMetrics) RecordSet(ctx context.Context, attrs ...attribute.KeyValue) {
	m.Sets.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordDelete counts an evicted value
func (m *CacheMetrics) RecordDelete(ctx context.Context, attrs ...attribute.KeyValue) {
	m.Deletes.Add(ctx, 1, metric.WithAttributes(attrs...))
}

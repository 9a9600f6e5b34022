package telemetry

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// MetricsManager owns the meter provider. Disabled managers hand out no-op meters.
type MetricsManager struct {
	provider metric.MeterProvider
	sdk      *sdkmetric.MeterProvider // nil when disabled
	config   Config
}

type managerOptions struct {
	readers []sdkmetric.Reader
	writer  io.Writer
}

// ManagerOption configures NewMetricsManager
type ManagerOption func(*managerOptions)

// WithReader attaches an extra reader, e.g. sdkmetric.NewManualReader() in tests
func WithReader(r sdkmetric.Reader) ManagerOption {
	return func(o *managerOptions) {
		o.readers = append(o.readers, r)
	}
}

// WithWriter redirects the stdout exporter
func WithWriter(w io.Writer) ManagerOption {
	return func(o *managerOptions) {
		o.writer = w
	}
}

// NewMetricsManager creates the meter provider described by cfg
func NewMetricsManager(cfg Config, opts ...ManagerOption) (*MetricsManager, error) {
	cfg.ApplyDefaults()

	if !cfg.Enabled {
		return &MetricsManager{
			provider: noop.NewMeterProvider(),
			config:   cfg,
		}, nil
	}

	o := managerOptions{writer: os.Stdout}
	for _, opt := range opts {
		opt(&o)
	}

	res, err := newResource(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics resource: %w", err)
	}

	mpOpts := []sdkmetric.Option{sdkmetric.WithResource(res)}

	switch cfg.Exporter {
	case ExporterStdout:
		exporter, err := stdoutmetric.New(stdoutmetric.WithWriter(o.writer))
		if err != nil {
			return nil, fmt.Errorf("failed to create stdout metrics exporter: %w", err)
		}
		mpOpts = append(mpOpts, sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(
				exporter,
				sdkmetric.WithInterval(cfg.ExportInterval),
				sdkmetric.WithTimeout(cfg.ExportTimeout),
			),
		))
	case ExporterNone:
	default:
		return nil, fmt.Errorf("unsupported metrics exporter type: %s", cfg.Exporter)
	}

	for _, r := range o.readers {
		mpOpts = append(mpOpts, sdkmetric.WithReader(r))
	}

	mp := sdkmetric.NewMeterProvider(mpOpts...)
	return &MetricsManager{
		provider: mp,
		sdk:      mp,
		config:   cfg,
	}, nil
}

// MeterProvider returns the provider, no-op when disabled
func (m *MetricsManager) MeterProvider() metric.MeterProvider {
	return m.provider
}

// GetMeter returns a meter from the managed provider
func (m *MetricsManager) GetMeter(name string) metric.Meter {
	return m.provider.Meter(name)
}

// IsEnabled is metrics collection enabled
func (m *MetricsManager) IsEnabled() bool {
	return m.sdk != nil
}

// GetConfig returns the effective configuration
func (m *MetricsManager) GetConfig() Config {
	return m.config
}

// ForceFlush exports pending data through every reader
func (m *MetricsManager) ForceFlush(ctx context.Context) error {
	if m.sdk == nil {
		return nil
	}
	return m.sdk.ForceFlush(ctx)
}

// Shutdown flushes and stops the provider
func (m *MetricsManager) Shutdown(ctx context.Context) error {
	if m.sdk == nil {
		return nil
	}
	return m.sdk.Shutdown(ctx)
}

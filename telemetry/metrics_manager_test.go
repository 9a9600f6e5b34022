package telemetry

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestNewMetricsManager_Disabled(t *testing.T) {
	m, err := NewMetricsManager(Config{})
	require.NoError(t, err)

	assert.False(t, m.IsEnabled())
	assert.NotNil(t, m.GetMeter("binding"))
	assert.Equal(t, ExporterNone, m.GetConfig().Exporter)
	assert.NoError(t, m.ForceFlush(context.Background()))
	assert.NoError(t, m.Shutdown(context.Background()))
}

func TestNewMetricsManager_ManualReader(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	m, err := NewMetricsManager(Config{
		Enabled:       true,
		ResourceAttrs: map[string]any{"deployment": map[string]any{"environment": "test"}},
	}, WithReader(reader))
	require.NoError(t, err)
	defer m.Shutdown(context.Background())

	assert.True(t, m.IsEnabled())

	counter, err := NewMetricsBuilder(m.GetMeter("binding"), "app").Counter("resolutions_total", "")
	require.NoError(t, err)
	counter.Add(context.Background(), 5)

	assert.Equal(t, int64(5), collectSums(t, reader)["app_resolutions_total"])

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	env, ok := rm.Resource.Set().Value("deployment.environment")
	require.True(t, ok)
	assert.Equal(t, "test", env.AsString())
	name, ok := rm.Resource.Set().Value("service.name")
	require.True(t, ok)
	assert.Equal(t, "bindctl", name.AsString())
}

func TestNewMetricsManager_StdoutExporter(t *testing.T) {
	var buf bytes.Buffer
	m, err := NewMetricsManager(Config{
		Enabled:        true,
		Exporter:       ExporterStdout,
		ExportInterval: time.Hour,
	}, WithWriter(&buf))
	require.NoError(t, err)

	counter, err := m.GetMeter("binding").Int64Counter("binding_resolutions_total")
	require.NoError(t, err)
	counter.Add(context.Background(), 1)

	require.NoError(t, m.Shutdown(context.Background()))
	assert.Contains(t, buf.String(), "binding_resolutions_total")
}

func TestNewMetricsManager_UnsupportedExporter(t *testing.T) {
	_, err := NewMetricsManager(Config{Enabled: true, Exporter: "otlp"})
	assert.EqualError(t, err, "unsupported metrics exporter type: otlp")
}

func TestConfig_ApplyDefaults(t *testing.T) {
	cfg := Config{Namespace: "app"}
	cfg.ApplyDefaults()

	assert.Equal(t, "app", cfg.Namespace)
	assert.Equal(t, ExporterNone, cfg.Exporter)
	assert.Equal(t, 10*time.Second, cfg.ExportInterval)
	assert.Equal(t, "bindctl", cfg.ServiceName)
}

func TestConfig_Validate(t *testing.T) {
	valid := DefaultConfig()
	assert.NoError(t, valid.Validate())

	bad := DefaultConfig()
	bad.Exporter = "otlp"
	assert.Error(t, bad.Validate())

	fast := DefaultConfig()
	fast.ExportInterval = time.Millisecond
	assert.Error(t, fast.Validate())

	unnamed := DefaultConfig()
	unnamed.Enabled = true
	unnamed.ServiceName = ""
	assert.Error(t, unnamed.Validate())
}

func TestFlattenAttrs(t *testing.T) {
	flat := flattenAttrs(map[string]any{
		"deployment": map[string]any{"environment": "test"},
		"replicas":   3,
		"region":     "eu",
	}, "")

	assert.Equal(t, map[string]string{
		"deployment.environment": "test",
		"replicas":               "3",
		"region":                 "eu",
	}, flat)
}

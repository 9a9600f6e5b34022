package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KOMKZ/go-yogan-binding/di"
	"github.com/KOMKZ/go-yogan-binding/logger"
	"github.com/KOMKZ/go-yogan-binding/validator"
)

func TestResolveCmd_OneConstructionPerScope(t *testing.T) {
	configDir, logDir := writeConfig(t, "")

	out, err := execute(t, "resolve", "--config-dir", configDir, "--env", "test",
		"--count", "50", "--scopes", "3", "--workers", "8")
	require.NoError(t, err)

	assert.Contains(t, out, "resolved:      150\n")
	assert.Contains(t, out, "distinct:      3\n")
	assert.Contains(t, out, "constructions: 3\n")
	assert.Contains(t, out, "cached keys:   3\n")
	assert.Contains(t, out, "caches:        1\n")
	assert.Contains(t, out, "clocks:        3\n")

	data, err := os.ReadFile(filepath.Join(logDir, "bindctl", "bindctl-info.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "resolve finished")
	assert.Contains(t, string(data), "engine shutting down")
}

func TestResolveCmd_StdoutMetrics(t *testing.T) {
	configDir, _ := writeConfig(t, "metrics:\n"+
		"  enabled: true\n"+
		"  exporter: stdout\n"+
		"  namespace: bindctl\n")

	out, err := execute(t, "resolve", "--config-dir", configDir, "--env", "test", "-n", "5", "-s", "2")
	require.NoError(t, err)

	assert.Contains(t, out, "constructions: 2\n")
	assert.Contains(t, out, "bindctl_binding_resolutions_total")
}

func TestResolveCmd_InvalidRequest(t *testing.T) {
	_, err := execute(t, "resolve", "--count", "0", "--workers", "1000")
	require.Error(t, err)

	assert.ErrorIs(t, err, validator.ErrValidationFailed)
	fields := validator.Fields(err)
	assert.Contains(t, fields, "Count")
	assert.Contains(t, fields, "Workers")
	assert.NotContains(t, fields, "Scopes")
}

func TestResolveCmd_InvalidConfig(t *testing.T) {
	configDir, _ := writeConfig(t, "metrics:\n  enabled: true\n  exporter: carrier-pigeon\n")

	_, err := execute(t, "resolve", "--config-dir", configDir, "--env", "test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid engine configuration")
}

func TestRunResolve(t *testing.T) {
	cfg := di.DefaultConfig()
	cfg.Logger = logger.ManagerConfig{BaseLogDir: t.TempDir(), EnableConsole: false}
	engine, err := di.NewEngine(di.WithConfig(cfg))
	require.NoError(t, err)
	defer engine.Shutdown(context.Background())

	report, err := runResolve(context.Background(), engine, resolveRequest{Count: 10, Scopes: 1, Workers: 1})
	require.NoError(t, err)
	assert.Equal(t, resolveReport{
		Resolved:      10,
		Distinct:      1,
		Constructions: 1,
		CachedKeys:    1,
		Caches:        1,
		Clocks:        1,
	}, report)
	assert.Equal(t, 6, engine.Collection().BindingCount())
}

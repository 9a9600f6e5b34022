package config

import (
	"testing"

	"github.com/samber/do/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("ENV", "")
	assert.Equal(t, "dev", GetEnv())

	t.Setenv("ENV", "staging")
	assert.Equal(t, "staging", GetEnv())

	t.Setenv("APP_ENV", "prod")
	assert.Equal(t, "prod", GetEnv())
}

func TestLoaderBuilder_Layers(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config.yaml", baseYAML)
	writeFile(t, dir, "test.yaml", devYAML)
	t.Setenv("BINDTEST_METRICS_EXPORT_INTERVAL", "2s")

	loader, err := NewLoaderBuilder().
		WithConfigPath(dir).
		WithEnv("test").
		WithEnvPrefix("BINDTEST").
		WithEnvBinding("metrics.export_interval", "METRICS_EXPORT_INTERVAL").
		Build()
	require.NoError(t, err)

	assert.Equal(t, "debug", loader.GetString("logger.level"))
	assert.Equal(t, "2s", loader.GetString("metrics.export_interval"))
	assert.Len(t, loader.GetLoadedFiles(), 2)
}

func TestLoaderBuilder_EnvFromProcess(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config.yaml", baseYAML)
	writeFile(t, dir, "qa.yaml", "demo:\n  scopes: 9\n")
	t.Setenv("APP_ENV", "qa")

	loader, err := NewLoaderBuilder().WithConfigPath(dir).Build()
	require.NoError(t, err)
	assert.Equal(t, 9, loader.GetInt("demo.scopes"))
}

func TestLoaderBuilder_Empty(t *testing.T) {
	loader, err := NewLoaderBuilder().Build()
	require.NoError(t, err)
	assert.Empty(t, loader.AllSettings())
	assert.Empty(t, loader.GetLoadedFiles())
}

func TestProvideLoader(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config.yaml", baseYAML)

	injector := do.New()
	do.Provide(injector, ProvideLoader(ProvideLoaderOptions{ConfigPath: dir, Env: "none"}))

	loader, err := do.Invoke[*Loader](injector)
	require.NoError(t, err)
	assert.Equal(t, "bindctl", loader.GetString("metrics.namespace"))
}

func TestProvideLoader_Error(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config.yaml", "logger: [unclosed")

	injector := do.New()
	do.Provide(injector, ProvideLoader(ProvideLoaderOptions{ConfigPath: dir, Env: "none"}))

	_, err := do.Invoke[*Loader](injector)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config loader build failed")
}

func TestProvideLoaderValue(t *testing.T) {
	loader := NewLoader()
	injector := do.New()
	do.Provide(injector, ProvideLoaderValue(loader))

	got, err := do.Invoke[*Loader](injector)
	require.NoError(t, err)
	assert.Same(t, loader, got)
}

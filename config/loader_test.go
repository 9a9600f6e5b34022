package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseYAML = `
logger:
  level: info
  encoding: json
metrics:
  enabled: false
  namespace: bindctl
demo:
  scopes: 4
`

const devYAML = `
logger:
  level: debug
metrics:
  enabled: true
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

type fakeSource struct {
	name     string
	priority int
	data     map[string]any
	err      error
}

func (s fakeSource) Name() string                  { return s.name }
func (s fakeSource) Priority() int                 { return s.priority }
func (s fakeSource) Load() (map[string]any, error) { return s.data, s.err }

func TestLoader_FileSource(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", baseYAML)

	loader := NewLoader()
	loader.AddSource(NewFileSource(path, PriorityBaseFile))
	require.NoError(t, loader.Load())

	assert.Equal(t, "info", loader.GetString("logger.level"))
	assert.Equal(t, 4, loader.GetInt("demo.scopes"))
	assert.False(t, loader.GetBool("metrics.enabled"))
	assert.True(t, loader.IsSet("metrics.namespace"))
	assert.Equal(t, []string{path}, loader.GetLoadedFiles())
}

func TestLoader_PriorityOverride(t *testing.T) {
	dir := t.TempDir()
	loader := NewLoader()
	// added out of order on purpose
	loader.AddSource(NewFileSource(writeFile(t, dir, "dev.yaml", devYAML), PriorityEnvFile))
	loader.AddSource(NewFileSource(writeFile(t, dir, "config.yaml", baseYAML), PriorityBaseFile))
	require.NoError(t, loader.Load())

	assert.Equal(t, "debug", loader.GetString("logger.level"))
	assert.Equal(t, "json", loader.GetString("logger.encoding"), "untouched keys survive")
	assert.True(t, loader.GetBool("metrics.enabled"))
	assert.Equal(t, "bindctl", loader.GetString("metrics.namespace"))
}

func TestLoader_MissingFileIsEmpty(t *testing.T) {
	loader := NewLoader()
	loader.AddSource(NewFileSource(filepath.Join(t.TempDir(), "absent.yaml"), PriorityBaseFile))
	require.NoError(t, loader.Load())
	assert.Empty(t, loader.AllSettings())
}

func TestLoader_MalformedFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", "logger: [unclosed")
	loader := NewLoader()
	loader.AddSource(NewFileSource(path, PriorityBaseFile))

	err := loader.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file:"+path)
}

func TestLoader_SourceError(t *testing.T) {
	boom := errors.New("boom")
	loader := NewLoader()
	loader.AddSource(fakeSource{name: "fake", data: nil, err: boom})

	err := loader.Load()
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "load source fake")
}

func TestLoader_Unmarshal(t *testing.T) {
	type section struct {
		Level    string `mapstructure:"level"`
		Encoding string `mapstructure:"encoding"`
	}
	type root struct {
		Logger section `mapstructure:"logger"`
	}

	loader := NewLoader()
	loader.AddSource(NewFileSource(writeFile(t, t.TempDir(), "config.yaml", baseYAML), PriorityBaseFile))
	require.NoError(t, loader.Load())

	var all root
	require.NoError(t, loader.Unmarshal(&all))
	assert.Equal(t, "json", all.Logger.Encoding)

	var logger section
	require.NoError(t, loader.UnmarshalKey("logger", &logger))
	assert.Equal(t, section{Level: "info", Encoding: "json"}, logger)

	untouched := section{Level: "warn"}
	require.NoError(t, loader.UnmarshalKey("absent", &untouched))
	assert.Equal(t, "warn", untouched.Level)
}

func TestLoader_ReloadPicksUpChanges(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", baseYAML)

	loader := NewLoader()
	loader.AddSource(NewFileSource(path, PriorityBaseFile))
	require.NoError(t, loader.Load())
	assert.Equal(t, 4, loader.GetInt("demo.scopes"))

	writeFile(t, dir, "config.yaml", "demo:\n  scopes: 8\n")
	require.NoError(t, loader.Reload())
	assert.Equal(t, 8, loader.GetInt("demo.scopes"))
	assert.False(t, loader.IsSet("logger.level"))
	assert.Len(t, loader.GetLoadedFiles(), 1)
}

func TestSplitKey(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, splitKey("a.b.c"))
	assert.Equal(t, []string{"a", "b"}, splitKey(".a..b."))
	assert.Empty(t, splitKey(""))
}

func TestFlattenMap(t *testing.T) {
	flat := flattenMap("", map[string]any{
		"logger": map[string]any{"level": "info"},
		"top":    1,
	})
	assert.Equal(t, map[string]any{"logger.level": "info", "top": 1}, flat)
}

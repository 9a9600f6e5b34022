package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

// Loader merges data sources by priority into a viper instance
type Loader struct {
	sources      []ConfigSource
	mergedConfig map[string]any // flat, dot-separated keys
	v            *viper.Viper
	loadedFiles  []string
}

// NewLoader creates an empty loader
func NewLoader() *Loader {
	return &Loader{
		mergedConfig: make(map[string]any),
		v:            viper.New(),
	}
}

// AddSource adds a data source
func (l *Loader) AddSource(source ConfigSource) {
	l.sources = append(l.sources, source)
}

// Load loads every source, lowest priority first, later values overriding earlier ones
func (l *Loader) Load() error {
	sort.SliceStable(l.sources, func(i, j int) bool {
		return l.sources[i].Priority() < l.sources[j].Priority()
	})

	merged := make(map[string]any)
	var files []string
	for _, source := range l.sources {
		data, err := source.Load()
		if err != nil {
			return fmt.Errorf("load source %s: %w", source.Name(), err)
		}
		if fileSource, ok := source.(*FileSource); ok {
			files = append(files, fileSource.path)
		}
		for key, value := range data {
			merged[key] = value
		}
	}

	l.mergedConfig = merged
	l.loadedFiles = files
	l.syncToViper()
	return nil
}

// syncToViper rebuilds the viper instance from the merged flat map
func (l *Loader) syncToViper() {
	nested := make(map[string]any)
	for key, value := range l.mergedConfig {
		setNestedValue(nested, key, value)
	}

	l.v = viper.New()
	for key, value := range nested {
		l.v.Set(key, value)
	}
}

// setNestedValue "a.b.c" -> {"a": {"b": {"c": value}}}; a scalar in the way is replaced
func setNestedValue(m map[string]any, key string, value any) {
	keys := splitKey(key)
	if len(keys) == 0 {
		return
	}

	current := m
	for _, k := range keys[:len(keys)-1] {
		nested, ok := current[k].(map[string]any)
		if !ok {
			nested = make(map[string]any)
			current[k] = nested
		}
		current = nested
	}
	current[keys[len(keys)-1]] = value
}

// splitKey splits on dots, dropping empty segments
func splitKey(key string) []string {
	parts := strings.Split(key, ".")
	result := parts[:0]
	for _, p := range parts {
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// Unmarshal decodes the whole configuration into v (mapstructure tags)
func (l *Loader) Unmarshal(v any) error {
	return l.v.Unmarshal(v)
}

// UnmarshalKey decodes one section, e.g. "logger", into v.
// A missing section leaves v untouched.
func (l *Loader) UnmarshalKey(key string, v any) error {
	if !l.v.IsSet(key) {
		return nil
	}
	return l.v.UnmarshalKey(key, v)
}

// Get configuration value
func (l *Loader) Get(key string) any {
	return l.v.Get(key)
}

// GetString string value
func (l *Loader) GetString(key string) string {
	return l.v.GetString(key)
}

// GetInt integer value
func (l *Loader) GetInt(key string) int {
	return l.v.GetInt(key)
}

// GetBool boolean value
func (l *Loader) GetBool(key string) bool {
	return l.v.GetBool(key)
}

// IsSet reports whether a key exists
func (l *Loader) IsSet(key string) bool {
	return l.v.IsSet(key)
}

// AllSettings nested view of every setting
func (l *Loader) AllSettings() map[string]any {
	return l.v.AllSettings()
}

// GetLoadedFiles file sources read by the last Load, missing files included
func (l *Loader) GetLoadedFiles() []string {
	return l.loadedFiles
}

// GetViper underlying viper instance
func (l *Loader) GetViper() *viper.Viper {
	return l.v
}

// Reload reloads every source
func (l *Loader) Reload() error {
	return l.Load()
}

package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// FileSource a configuration file in any format viper understands
type FileSource struct {
	path     string
	priority int
}

// NewFileSource creates a file data source
func NewFileSource(path string, priority int) *FileSource {
	return &FileSource{
		path:     path,
		priority: priority,
	}
}

// Name data source name
func (s *FileSource) Name() string {
	return "file:" + s.path
}

// Priority priority
func (s *FileSource) Priority() int {
	return s.priority
}

// Path file path
func (s *FileSource) Path() string {
	return s.path
}

// Load reads the file. A missing file yields empty data, not an error.
func (s *FileSource) Load() (map[string]any, error) {
	if _, err := os.Stat(s.path); err != nil {
		if os.IsNotExist(err) {
			return make(map[string]any), nil
		}
		return nil, fmt.Errorf("stat config file %s: %w", s.path, err)
	}

	v := viper.New()
	v.SetConfigFile(s.path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config file %s: %w", s.path, err)
	}

	return flattenMap("", v.AllSettings()), nil
}

// flattenMap {"metrics": {"enabled": true}} -> {"metrics.enabled": true}
func flattenMap(prefix string, data map[string]any) map[string]any {
	result := make(map[string]any)

	for key, value := range data {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}

		if nested, ok := value.(map[string]any); ok {
			for k, v := range flattenMap(fullKey, nested) {
				result[k] = v
			}
			continue
		}
		result[fullKey] = value
	}

	return result
}

package di

import (
	"testing"

	"github.com/KOMKZ/go-yogan-binding/logger"
)

type clock struct{ now int }

type repo struct{ clock *clock }

type handler interface{ Name() string }

type namedHandler string

func (h namedHandler) Name() string { return string(h) }

// quietConfig logs nothing to the console
func quietConfig(t *testing.T) Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Logger = logger.ManagerConfig{
		BaseLogDir:    t.TempDir(),
		Level:         "debug",
		Encoding:      "json",
		EnableConsole: false,
	}
	return cfg
}

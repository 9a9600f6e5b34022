package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeConfig a config dir whose logger writes only to files under a temp dir
func writeConfig(t *testing.T, extra string) (configDir, logDir string) {
	t.Helper()
	configDir = t.TempDir()
	logDir = t.TempDir()
	yaml := "logger:\n" +
		"  level: debug\n" +
		"  encoding: json\n" +
		"  enable_console: false\n" +
		"  enable_file: true\n" +
		"  base_log_dir: " + logDir + "\n" +
		extra
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte(yaml), 0o644))
	return configDir, logDir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

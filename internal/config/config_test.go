package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	require.Equal(t, "info", cfg.Log.Level)
	require.Equal(t, "console", cfg.Log.Format)
	require.Equal(t, 200*time.Millisecond, cfg.Watch.Debounce)
	require.Empty(t, cfg.Declarations)
	require.False(t, cfg.Trace.Enabled)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "depgraph.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
declarations: ["scopes/*.yaml"]
log:
  level: debug
  format: json
timing: true
watch:
  debounce: 1s
metrics:
  addr: ":9090"
trace:
  enabled: true
`), 0o644))

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)
	require.Equal(t, []string{"scopes/*.yaml"}, cfg.Declarations)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, "json", cfg.Log.Format)
	require.True(t, cfg.Timing)
	require.Equal(t, time.Second, cfg.Watch.Debounce)
	require.Equal(t, ":9090", cfg.Metrics.Addr)
	require.True(t, cfg.Trace.Enabled)
}

func TestLoad_DefaultFileInWorkingDirectory(t *testing.T) {
	t.Chdir(t.TempDir())
	require.NoError(t, os.WriteFile(DefaultFile, []byte("timing: true\n"), 0o644))

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	require.True(t, cfg.Timing)
}

func TestLoad_Environment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DEPGRAPH_LOG_LEVEL", "warn")

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	require.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "depgraph.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  format: xml\n"), 0o644))

	_, err := Load(viper.New(), path)
	require.Error(t, err)
	require.Contains(t, err.Error(), `unknown format "xml"`)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "reading config")
}

func TestExpandDeclarations(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.yaml", "a.yaml", "c.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}

	files, err := ExpandDeclarations([]string{filepath.Join(dir, "*.yaml"), filepath.Join(dir, "a.yaml")})
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "a.yaml"), filepath.Join(dir, "b.yaml")}, files)

	_, err = ExpandDeclarations([]string{filepath.Join(dir, "*.json")})
	require.Error(t, err)
	require.Contains(t, err.Error(), "matches no files")
}

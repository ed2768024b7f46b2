package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "info", cfg.Logging.Level)
	require.Equal(t, []string{"./modules"}, cfg.Modules.SearchPaths)
	require.False(t, cfg.Backstage.Enabled)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kernel.ini")
	require.NoError(t, os.WriteFile(path, []byte(
		"[logging]\nlevel = trace\n\n[backstage]\nenabled = true\nport = 7800\n",
	), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "trace", cfg.Logging.Level)
	require.True(t, cfg.Backstage.Enabled)
	require.Equal(t, 7800, cfg.Backstage.Port)
}

func TestResolveModule(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "xml.mod"), []byte("x"), 0o644))

	cfg := &Config{Modules: ModulesConfig{SearchPaths: []string{dir}}}
	path, ok := cfg.ResolveModule("xml.mod")
	require.True(t, ok)
	require.Equal(t, filepath.Join(dir, "xml.mod"), path)

	_, ok = cfg.ResolveModule("missing.mod")
	require.False(t, ok)
}

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cpgkit/cpg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := config.DefaultConfig()

	name, ok := cfg.FrontendFor(".go")
	require.True(t, ok)
	assert.Equal(t, "golike", name)

	_, ok = cfg.FrontendFor(".rs")
	assert.False(t, ok)

	assert.Equal(t, config.Lenient, cfg.Parsing)
	assert.False(t, cfg.EnableCallGraphClosure)
}

func TestLoadFillsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cpg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rootDir: /src\nparsing: strict\n"), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/src", cfg.RootDir)
	assert.Equal(t, config.Strict, cfg.Parsing)
	assert.Equal(t, 10, cfg.MaxFixedPointIterations, "unset cap falls back to the default")
	assert.NotEmpty(t, cfg.Extensions, "unset extensions fall back to the built-in registry")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/brogergvhs/mandl/internal/providers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMergedWithoutFileUsesDefaults(t *testing.T) {
	cfg, used, err := loadMergedFrom(filepath.Join(t.TempDir(), "config.yaml"), Options{})
	require.NoError(t, err)

	assert.Contains(t, used, "default config")
	assert.Equal(t, EngineChromedp, cfg.Engine)
	assert.Equal(t, providers.DefaultInclude, cfg.Include)
}

func TestLoadMergedFlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output: /tmp/comics\nengine: rod\nheadless: true\nscope: qq\n"), 0644))

	headless := false
	cfg, used, err := loadMergedFrom(path, Options{
		Engine:   "HTTP",
		Headless: &headless,
		Include:  []string{"*://*.pufeimanhua.com/*"},
	})
	require.NoError(t, err)

	assert.Equal(t, path, used)
	assert.Equal(t, "/tmp/comics", cfg.Output)
	assert.Equal(t, EngineHTTP, cfg.Engine)
	assert.False(t, cfg.Headless)
	assert.Equal(t, "qq", cfg.Scope)
	assert.Contains(t, cfg.Include, "*://*.pufeimanhua.com/*")
	assert.Contains(t, cfg.Include, providers.DefaultInclude[0])
}

func TestLoadMergedRejectsUnknownEngine(t *testing.T) {
	_, _, err := loadMergedFrom("", Options{IgnoreConfig: true, Engine: "firefox"})
	assert.Error(t, err)
}

func TestSaveYAMLRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	def := DefaultConfig()
	def.Output = "out"
	require.NoError(t, SaveYAML(def, path))

	cfg, _, err := loadMergedFrom(path, Options{})
	require.NoError(t, err)
	assert.Equal(t, "out", cfg.Output)
}

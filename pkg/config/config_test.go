package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, env, body string) {
	t.Helper()
	path := filepath.Join(dir, env+"_config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
}

func TestLoadDefaultsOnly(t *testing.T) {
	cfg, err := Load("dev", t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "chrome", cfg.GetString("browser.type", ""))
	assert.False(t, cfg.GetBool("browser.headless", true))
	assert.Equal(t, 10*time.Second, cfg.GetDuration("browser.timeout", 0))
	assert.Equal(t, "dev", cfg.GetString("app.env", ""))
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "staging", `
browser:
  type: edge
  headless: true
app:
  url: https://staging.example.com
`)

	cfg, err := Load("staging", dir)
	require.NoError(t, err)

	assert.Equal(t, "edge", cfg.GetString("browser.type", ""))
	assert.True(t, cfg.GetBool("browser.headless", false))
	assert.Equal(t, "https://staging.example.com", cfg.GetString("app.url", ""))
	// Untouched sibling keys keep their defaults after the merge.
	assert.Equal(t, 10*time.Second, cfg.GetDuration("browser.timeout", 0))
}

func TestEnvVariableWinsOverFileAndDefault(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "dev", "browser:\n  type: edge\n")

	cfg, err := Load("dev", dir)
	require.NoError(t, err)

	t.Setenv("BROWSER_TYPE", "chromium")
	assert.Equal(t, "chromium", cfg.GetString("browser.type", ""))
}

func TestSetCreatesIntermediateLevels(t *testing.T) {
	cfg, err := Load("dev", t.TempDir())
	require.NoError(t, err)

	cfg.Set("grid.nodes.max", 4)
	assert.Equal(t, 4, cfg.GetInt("grid.nodes.max", 0))

	cfg.Set("browser.type", "chromium")
	assert.Equal(t, "chromium", cfg.GetString("browser.type", ""))
}

func TestGetMissingKey(t *testing.T) {
	cfg, err := Load("dev", t.TempDir())
	require.NoError(t, err)

	_, ok := cfg.Get("no.such.key")
	assert.False(t, ok)
	assert.Equal(t, "fallback", cfg.GetString("no.such.key", "fallback"))
}

func TestTypedAccessorCoercion(t *testing.T) {
	cfg, err := Load("dev", t.TempDir())
	require.NoError(t, err)

	// Env vars arrive as strings; the typed accessors must coerce them.
	t.Setenv("DRIVER_WINDOW_WIDTH", "1280")
	assert.Equal(t, 1280, cfg.GetInt("driver.window_width", 0))

	t.Setenv("BROWSER_HEADLESS", "true")
	assert.True(t, cfg.GetBool("browser.headless", false))

	t.Setenv("BROWSER_TIMEOUT", "5s")
	assert.Equal(t, 5*time.Second, cfg.GetDuration("browser.timeout", 0))

	// Bare numbers in the file are seconds.
	cfg.Set("driver.page_load_timeout", 45)
	assert.Equal(t, 45*time.Second, cfg.GetDuration("driver.page_load_timeout", 0))
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "BROWSER_TYPE", EnvKey("browser.type"))
	assert.Equal(t, "EXECUTION_RESULTS_DSN", EnvKey("execution.results_dsn"))
}

func TestSectionReturnsCopy(t *testing.T) {
	cfg, err := Load("dev", t.TempDir())
	require.NoError(t, err)

	section := cfg.Section("browser")
	require.NotEmpty(t, section)
	section["type"] = "mutated"
	assert.Equal(t, "chrome", cfg.GetString("browser.type", ""))

	assert.Empty(t, cfg.Section("nonexistent"))
}

func TestDefaultReturnsSameInstance(t *testing.T) {
	first := Default()
	second := Default()
	assert.Same(t, first, second)

	first.Set("browser.type", "edge")
	assert.Equal(t, "edge", second.GetString("browser.type", ""))
}

// Package config resolves harness configuration from built-in defaults,
// a per-environment YAML file, and environment variable overrides.
//
// Lookup precedence for Get and the typed accessors is:
// environment variable (key upper-cased, dots replaced by underscores) >
// file value > built-in default. Set writes into the in-memory tree only.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultEnv is used when no environment name is supplied or configured.
const DefaultEnv = "dev"

// Config is a hierarchical, dot-addressable configuration tree.
//
// It is read-mostly. Set is not synchronized and is expected to run only
// during single-threaded test setup, before parallel tests start.
type Config struct {
	env  string
	data map[string]any
}

// Load reads <env>_config.yml from dir and merges it over the built-in
// defaults. A missing file is not an error; the defaults stand alone.
func Load(env, dir string) (*Config, error) {
	if env == "" {
		env = DefaultEnv
	}
	cfg := &Config{env: env, data: defaults(env)}

	path := filepath.Join(dir, env+"_config.yml")
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var loaded map[string]any
	if err := yaml.Unmarshal(raw, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	mergeTree(cfg.data, loaded)
	return cfg, nil
}

// Env returns the environment name this configuration was loaded for.
func (c *Config) Env() string { return c.env }

// Get returns the value for a dotted key, honoring the precedence
// environment variable > file value > default. The boolean reports
// whether the key resolved at all.
func (c *Config) Get(key string) (any, bool) {
	if v, ok := os.LookupEnv(EnvKey(key)); ok {
		return v, true
	}
	node := any(c.data)
	for _, part := range strings.Split(key, ".") {
		m, ok := node.(map[string]any)
		if !ok {
			return nil, false
		}
		node, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return node, true
}

// GetDefault returns the value for key, or def when the key is absent.
func (c *Config) GetDefault(key string, def any) any {
	if v, ok := c.Get(key); ok {
		return v
	}
	return def
}

// Set writes a value into the in-memory tree, creating intermediate
// levels as needed. Nothing is persisted.
func (c *Config) Set(key string, value any) {
	parts := strings.Split(key, ".")
	node := c.data
	for _, part := range parts[:len(parts)-1] {
		next, ok := node[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			node[part] = next
		}
		node = next
	}
	node[parts[len(parts)-1]] = value
}

// Section returns a copy of one top-level section of the tree.
func (c *Config) Section(name string) map[string]any {
	section, ok := c.data[name].(map[string]any)
	if !ok {
		return map[string]any{}
	}
	out := make(map[string]any, len(section))
	for k, v := range section {
		out[k] = v
	}
	return out
}

// GetString returns the value for key rendered as a string.
func (c *Config) GetString(key, def string) string {
	v, ok := c.Get(key)
	if !ok {
		return def
	}
	switch s := v.(type) {
	case string:
		return s
	default:
		return fmt.Sprintf("%v", v)
	}
}

// GetInt returns the value for key as an int, tolerating the string
// form produced by environment variables.
func (c *Config) GetInt(key string, def int) int {
	v, ok := c.Get(key)
	if !ok {
		return def
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case string:
		if parsed, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return parsed
		}
	}
	return def
}

// GetBool returns the value for key as a bool, tolerating the string
// form produced by environment variables.
func (c *Config) GetBool(key string, def bool) bool {
	v, ok := c.Get(key)
	if !ok {
		return def
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		if parsed, err := strconv.ParseBool(strings.TrimSpace(b)); err == nil {
			return parsed
		}
	}
	return def
}

// GetDuration returns the value for key as a duration. Accepts
// time.Duration values, Go duration strings ("30s"), and bare numbers,
// which are taken as seconds to match the file format.
func (c *Config) GetDuration(key string, def time.Duration) time.Duration {
	v, ok := c.Get(key)
	if !ok {
		return def
	}
	switch d := v.(type) {
	case time.Duration:
		return d
	case int:
		return time.Duration(d) * time.Second
	case int64:
		return time.Duration(d) * time.Second
	case float64:
		return time.Duration(d * float64(time.Second))
	case string:
		s := strings.TrimSpace(d)
		if parsed, err := time.ParseDuration(s); err == nil {
			return parsed
		}
		if secs, err := strconv.ParseFloat(s, 64); err == nil {
			return time.Duration(secs * float64(time.Second))
		}
	}
	return def
}

// EnvKey converts a dotted key into its environment variable form,
// e.g. "browser.type" -> "BROWSER_TYPE".
func EnvKey(key string) string {
	return strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

var (
	defaultOnce sync.Once
	defaultCfg  *Config
)

// Default returns the process-wide configuration instance, loading it on
// first use from the directory named by CONFIG_DIR (default "config") and
// the environment named by TEST_ENV (default "dev"). Subsequent calls
// return the same state.
func Default() *Config {
	defaultOnce.Do(func() {
		env := os.Getenv("TEST_ENV")
		dir := os.Getenv("CONFIG_DIR")
		if dir == "" {
			dir = "config"
		}
		cfg, err := Load(env, dir)
		if err != nil {
			cfg = &Config{env: env, data: defaults(env)}
		}
		defaultCfg = cfg
	})
	return defaultCfg
}

// mergeTree recursively copies src over dst; src values win.
func mergeTree(dst, src map[string]any) {
	for k, v := range src {
		if srcChild, ok := v.(map[string]any); ok {
			if dstChild, ok := dst[k].(map[string]any); ok {
				mergeTree(dstChild, srcChild)
				continue
			}
		}
		dst[k] = v
	}
}

func defaults(env string) map[string]any {
	if env == "" {
		env = DefaultEnv
	}
	return map[string]any{
		"browser": map[string]any{
			"type":     "chrome",
			"headless": false,
			"timeout":  "10s",
			"bin":      "",
		},
		"app": map[string]any{
			"url": "http://localhost:8080",
			"env": env,
		},
		"driver": map[string]any{
			"remote_url":        "",
			"page_load_timeout": "30s",
			"script_timeout":    "30s",
			"poll_interval":     "250ms",
			"window_width":      1920,
			"window_height":     1080,
		},
		"reporting": map[string]any{
			"screenshots_on_failure": true,
			"screenshot_dir":         "screenshots",
			"baseline_dir":           "screenshots/baseline",
			"similarity_threshold":   0.95,
		},
		"execution": map[string]any{
			"results_dsn": "",
		},
		"logging": map[string]any{
			"level":   "info",
			"file":    "logs/test_execution.log",
			"console": true,
		},
	}
}

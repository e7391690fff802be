package driver

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"dev/bravebird/e2e-harness-go/pkg/config"
)

func TestNewSessionRejectsUnsupportedBrowser(t *testing.T) {
	for _, name := range []string{"firefox", "safari", "netscape", ""} {
		f := &Factory{Browser: name, log: zap.NewNop()}
		_, err := f.NewSession(context.Background())

		var ube *UnsupportedBrowserError
		require.ErrorAs(t, err, &ube, "browser %q", name)
		assert.Equal(t, name, ube.Name)
		assert.Contains(t, err.Error(), "chrome")
		assert.Contains(t, err.Error(), "edge")
	}
}

func TestBrowserNameIsCaseInsensitive(t *testing.T) {
	// "Chrome" must not hit the unsupported-browser path; it will fail
	// later at launch on machines without a browser, which is fine here.
	f := &Factory{Browser: "Chrome", RemoteURL: "ws://127.0.0.1:1/unreachable", log: zap.NewNop()}
	_, err := f.NewSession(context.Background())

	var ube *UnsupportedBrowserError
	assert.NotErrorAs(t, err, &ube)
}

func TestNewFactoryReadsConfig(t *testing.T) {
	cfg, err := config.Load("dev", t.TempDir())
	require.NoError(t, err)
	cfg.Set("browser.type", "edge")
	cfg.Set("browser.headless", true)
	cfg.Set("driver.page_load_timeout", "45s")
	cfg.Set("driver.window_width", 1280)

	f := NewFactory(cfg, zap.NewNop())
	assert.Equal(t, "edge", f.Browser)
	assert.True(t, f.Headless)
	assert.Equal(t, 45*time.Second, f.PageLoadTimeout)
	assert.Equal(t, 1280, f.WindowWidth)
	assert.Equal(t, 1080, f.WindowHeight)
}

func TestCloseIsIdempotentOnZeroSession(t *testing.T) {
	s := &Session{}
	// Must never panic or raise, even without a live browser.
	s.Close()
	s.Close()
}

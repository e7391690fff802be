// Package driver manages browser session lifecycle: one session per test,
// created from configuration, torn down best-effort at test end. All
// remote control is delegated to the DevTools protocol client; this
// package only launches, connects and configures.
package driver

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"dev/bravebird/e2e-harness-go/pkg/config"
)

// Browser families this factory can drive. All of them speak the DevTools
// protocol; Firefox and Safari do not and are rejected up front.
var supportedBrowsers = map[string]bool{
	"chrome":   true,
	"chromium": true,
	"edge":     true,
}

// UnsupportedBrowserError is returned for a browser family the factory
// cannot drive. It is fatal; there is no fallback family.
type UnsupportedBrowserError struct {
	Name string
}

func (e *UnsupportedBrowserError) Error() string {
	names := make([]string, 0, len(supportedBrowsers))
	for name := range supportedBrowsers {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("unsupported browser: %s (supported: %s)", e.Name, strings.Join(names, ", "))
}

// Factory creates browser sessions with uniform session-level settings.
type Factory struct {
	Browser         string
	Headless        bool
	RemoteURL       string // DevTools websocket URL; when set, no local launch
	Bin             string // explicit browser binary, required for edge
	PageLoadTimeout time.Duration // bounds the local browser launch
	WindowWidth     int
	WindowHeight    int

	log *zap.Logger
}

// NewFactory builds a Factory from the browser and driver config sections.
func NewFactory(cfg *config.Config, log *zap.Logger) *Factory {
	if log == nil {
		log = zap.NewNop()
	}
	return &Factory{
		Browser:         cfg.GetString("browser.type", "chrome"),
		Headless:        cfg.GetBool("browser.headless", false),
		Bin:             cfg.GetString("browser.bin", ""),
		RemoteURL:       cfg.GetString("driver.remote_url", ""),
		PageLoadTimeout: cfg.GetDuration("driver.page_load_timeout", 30*time.Second),
		WindowWidth:     cfg.GetInt("driver.window_width", 1920),
		WindowHeight:    cfg.GetInt("driver.window_height", 1080),
		log:             log,
	}
}

// Session is one browser instance bound to one test execution. It is
// never shared or pooled; create at test start, Close at test end.
type Session struct {
	ID      string
	Browser *rod.Browser
	Page    *rod.Page

	launcher  *launcher.Launcher
	log       *zap.Logger
	closeOnce sync.Once
}

// NewSession launches (or connects to) a browser and opens a blank page
// with the factory's uniform settings applied.
func (f *Factory) NewSession(ctx context.Context) (*Session, error) {
	family := strings.ToLower(f.Browser)
	if !supportedBrowsers[family] {
		return nil, &UnsupportedBrowserError{Name: f.Browser}
	}

	// Bound the launch phase only. The browser connection must not
	// inherit this deadline or the session would die mid-test, so
	// Connect runs unbounded.
	if _, ok := ctx.Deadline(); !ok && f.PageLoadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.PageLoadTimeout)
		defer cancel()
	}

	id := uuid.New().String()
	log := f.log.With(zap.String("session_id", id))
	log.Info("creating browser session",
		zap.String("browser", family),
		zap.Bool("headless", f.Headless),
		zap.String("remote_url", f.RemoteURL))

	var (
		controlURL string
		l          *launcher.Launcher
	)
	if f.RemoteURL != "" {
		controlURL = f.RemoteURL
	} else {
		l = launcher.New().Headless(f.Headless)
		if f.Bin != "" {
			l = l.Bin(f.Bin)
		}
		// Container compatibility flags, applied uniformly per family.
		l = l.Set("no-sandbox").
			Set("disable-gpu").
			Set("disable-dev-shm-usage").
			Set("disable-notifications")
		if f.Headless {
			l = l.Set("window-size", fmt.Sprintf("%d,%d", f.WindowWidth, f.WindowHeight))
		}
		url, err := l.Context(ctx).Launch()
		if err != nil {
			return nil, fmt.Errorf("failed to launch %s: %w", family, err)
		}
		controlURL = url
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		if l != nil {
			l.Kill()
		}
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		_ = browser.Close()
		if l != nil {
			l.Kill()
		}
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:  f.WindowWidth,
		Height: f.WindowHeight,
	}); err != nil {
		log.Warn("failed to set viewport", zap.Error(err))
	}

	log.Info("browser session ready")
	return &Session{
		ID:       id,
		Browser:  browser,
		Page:     page,
		launcher: l,
		log:      log,
	}, nil
}

// Close tears the session down. It is idempotent and best-effort: errors
// are logged and never propagated, so teardown cannot fail a test.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		if s.log == nil {
			s.log = zap.NewNop()
		}
		s.log.Info("closing browser session")
		if s.Browser != nil {
			if err := s.Browser.Close(); err != nil {
				s.log.Warn("error closing browser", zap.Error(err))
			}
		}
		if s.launcher != nil {
			s.launcher.Kill()
			s.launcher.Cleanup()
		}
	})
}

// Available reports whether a chromium-family browser binary can be found
// locally. Tests use this to skip cleanly on machines without one.
func Available() bool {
	_, has := launcher.LookPath()
	return has
}

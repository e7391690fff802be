// Package harness wires configuration, browser sessions, and artifact
// capture into Go tests. Tests call Start once and get a ready browser
// with cleanup, failure screenshots, and optional result recording
// handled for them.
package harness

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-rod/rod"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"dev/bravebird/e2e-harness-go/pkg/artifacts"
	"dev/bravebird/e2e-harness-go/pkg/config"
	"dev/bravebird/e2e-harness-go/pkg/driver"
	"dev/bravebird/e2e-harness-go/pkg/fixtureapp"
	"dev/bravebird/e2e-harness-go/pkg/interact"
	"dev/bravebird/e2e-harness-go/pkg/results"
)

// Env is everything a browser test needs.
type Env struct {
	T           *testing.T
	Config      *config.Config
	Log         *zap.Logger
	Session     *driver.Session
	UI          *interact.Interactor
	Screenshots *artifacts.Capturer

	baseURL string
}

// Option customizes Start.
type Option func(*Env)

// WithBaseURL points the environment at an externally running application.
func WithBaseURL(url string) Option {
	return func(e *Env) { e.baseURL = url }
}

// WithFixtureApp serves the built-in login fixture for the lifetime of
// the test and points the environment at it.
func WithFixtureApp() Option {
	return func(e *Env) {
		srv := httptest.NewServer(fixtureapp.New(e.Log).Handler())
		e.T.Cleanup(srv.Close)
		e.baseURL = srv.URL
	}
}

// Start builds a browser test environment. It skips the test when no
// supported browser is installed, and registers cleanup that captures a
// failure screenshot before the session closes.
func Start(t *testing.T, opts ...Option) *Env {
	t.Helper()

	if !driver.Available() {
		t.Skip("no supported browser found in PATH")
	}

	cfg := config.Default()
	log := zaptest.NewLogger(t)

	env := &Env{
		T:       t,
		Config:  cfg,
		Log:     log,
		baseURL: cfg.GetString("app.url", ""),
	}
	for _, opt := range opts {
		opt(env)
	}

	factory := driver.NewFactory(cfg, log)
	session, err := factory.NewSession(context.Background())
	if err != nil {
		t.Fatalf("failed to start browser session: %v", err)
	}
	env.Session = session

	env.Screenshots = artifacts.NewCapturer(session.Page,
		cfg.GetString("reporting.screenshot_dir", "screenshots"), log)
	env.UI = interact.New(session.Page,
		interact.WithTimeout(cfg.GetDuration("browser.timeout", 10*time.Second)),
		interact.WithPollInterval(cfg.GetDuration("driver.poll_interval", 250*time.Millisecond)),
		interact.WithNavigateTimeout(cfg.GetDuration("driver.page_load_timeout", 30*time.Second)),
		interact.WithScriptTimeout(cfg.GetDuration("driver.script_timeout", 30*time.Second)),
		interact.WithLogger(log),
	)

	recorder := newRecorder(t, cfg, log)

	t.Cleanup(func() {
		var screenshotPath string
		if t.Failed() && cfg.GetBool("reporting.screenshots_on_failure", true) {
			if out := env.Screenshots.CaptureFailure(SanitizeTestName(t.Name())); out.OK() {
				screenshotPath = out.Path
				t.Logf("failure screenshot saved to %s", out.Path)
			}
		}
		recorder.finish(t, screenshotPath)
		session.Close()
	})

	return env
}

// BaseURL returns the application under test's root URL.
func (e *Env) BaseURL() string { return e.baseURL }

// URL joins a path onto the application base URL.
func (e *Env) URL(path string) string {
	return strings.TrimRight(e.baseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

// Open navigates the browser to a path under the application base URL.
func (e *Env) Open(path string) error {
	return e.UI.Navigate(e.URL(path))
}

// Page returns the underlying browser page.
func (e *Env) Page() *rod.Page { return e.Session.Page }

// SanitizeTestName makes a test name safe for use in a filename.
// Subtests carry slashes, t.Run names may carry spaces.
func SanitizeTestName(name string) string {
	r := strings.NewReplacer("/", "_", " ", "_", "\\", "_", ":", "_")
	return r.Replace(name)
}

// recorder writes the test outcome to the results store when a DSN is
// configured. Absent a DSN it is a no-op.
type recorder struct {
	store   *results.Store
	runID   string
	started time.Time
	log     *zap.Logger
}

func newRecorder(t *testing.T, cfg *config.Config, log *zap.Logger) *recorder {
	rec := &recorder{started: time.Now(), log: log}

	dsn := cfg.GetString("execution.results_dsn", "")
	if dsn == "" {
		return rec
	}

	store, err := results.Open(dsn)
	if err != nil {
		log.Warn("results store unavailable, not recording", zap.Error(err))
		return rec
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := store.EnsureSchema(ctx); err != nil {
		log.Warn("failed to ensure results schema", zap.Error(err))
		store.Close()
		return rec
	}

	runID, err := store.RecordRun(ctx, cfg.Env(), cfg.GetString("browser.type", "chrome"))
	if err != nil {
		log.Warn("failed to record run", zap.Error(err))
		store.Close()
		return rec
	}

	rec.store = store
	rec.runID = runID
	return rec
}

func (r *recorder) finish(t *testing.T, screenshotPath string) {
	if r.store == nil {
		return
	}
	defer r.store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	status := "passed"
	runStatus := results.RunPassed
	passed, failed := 1, 0
	if t.Failed() {
		status = "failed"
		runStatus = results.RunFailed
		passed, failed = 0, 1
	}

	err := r.store.RecordTest(ctx, &results.TestResult{
		RunID:          r.runID,
		Name:           t.Name(),
		Status:         status,
		Duration:       time.Since(r.started),
		ScreenshotPath: screenshotPath,
	})
	if err != nil {
		r.log.Warn("failed to record test result", zap.Error(err))
	}

	if err := r.store.FinishRun(ctx, r.runID, runStatus, passed, failed, 0); err != nil {
		r.log.Warn("failed to finish run", zap.Error(err))
	}
}

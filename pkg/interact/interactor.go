// Package interact is the wait/interaction layer of the harness. It turns
// asynchronous DOM state into deterministic, bounded operations: every
// interaction waits for its precondition on a poll loop before touching
// the page, and element handles are re-resolved on every use so a DOM
// mutation between two calls can never leave a stale handle behind.
//
// Operations take an explicit timeout; zero means the interactor's default.
// Error-returning operations fail with *TimeoutError or *InteractionError.
// Boolean-returning operations (IsVisible, WaitInvisible, WaitURLContains)
// treat an expired wait as a legitimate negative result, never an error.
package interact

import (
	"errors"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"
	"go.uber.org/zap"
)

const (
	// DefaultTimeout bounds waits when no per-call override is given and
	// the interactor was built without one.
	DefaultTimeout = 10 * time.Second
	// DefaultPollInterval is how often conditions are re-evaluated.
	DefaultPollInterval = 250 * time.Millisecond
	// DefaultNavigateTimeout bounds page loads.
	DefaultNavigateTimeout = 30 * time.Second
	// DefaultScriptTimeout bounds Eval calls.
	DefaultScriptTimeout = 30 * time.Second
)

// Condition is a named predicate over driver state, evaluated repeatedly
// by WaitFor until it reports true or the timeout elapses. Probe errors
// are treated as "not yet" and surface only in the final TimeoutError.
type Condition struct {
	Name    string
	Locator Locator
	Probe   func() (bool, error)
}

// Interactor drives one page. Construct one per session with New and hand
// it to page objects; they compose it rather than extending it.
type Interactor struct {
	page       *rod.Page
	main       *rod.Page // top-level page, restored by SwitchToMain
	probe      *rod.Page // non-retrying clone for single-shot DOM queries
	timeout    time.Duration
	interval   time.Duration
	navTimeout time.Duration // bounds Navigate, Refresh and history moves
	evalLimit  time.Duration // bounds script execution
	log        *zap.Logger
}

// Option configures an Interactor.
type Option func(*Interactor)

// WithTimeout sets the default wait timeout.
func WithTimeout(d time.Duration) Option {
	return func(ia *Interactor) { ia.timeout = d }
}

// WithPollInterval sets the condition polling interval.
func WithPollInterval(d time.Duration) Option {
	return func(ia *Interactor) { ia.interval = d }
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(ia *Interactor) { ia.log = log }
}

// WithNavigateTimeout bounds page loads.
func WithNavigateTimeout(d time.Duration) Option {
	return func(ia *Interactor) { ia.navTimeout = d }
}

// WithScriptTimeout bounds Eval and scroll script execution.
func WithScriptTimeout(d time.Duration) Option {
	return func(ia *Interactor) { ia.evalLimit = d }
}

// New builds an Interactor for the given page.
func New(page *rod.Page, opts ...Option) *Interactor {
	ia := &Interactor{
		page:       page,
		main:       page,
		timeout:    DefaultTimeout,
		interval:   DefaultPollInterval,
		navTimeout: DefaultNavigateTimeout,
		evalLimit:  DefaultScriptTimeout,
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(ia)
	}
	if page != nil {
		ia.probe = page.Sleeper(rod.NotFoundSleeper)
	}
	return ia
}

// Page returns the page currently targeted by the interactor.
func (ia *Interactor) Page() *rod.Page { return ia.page }

// Timeout returns the default wait timeout.
func (ia *Interactor) Timeout() time.Duration { return ia.timeout }

func (ia *Interactor) retarget(page *rod.Page) {
	ia.page = page
	ia.probe = page.Sleeper(rod.NotFoundSleeper)
}

// find resolves a locator to a fresh element handle without waiting.
func (ia *Interactor) find(loc Locator) (*rod.Element, error) {
	switch loc.Strategy {
	case StrategyCSS, StrategyID:
		return ia.probe.Element(loc.selector())
	case StrategyXPath, StrategyText:
		return ia.probe.ElementX(loc.xpath())
	default:
		return nil, errors.New("unsupported locator strategy: " + string(loc.Strategy))
	}
}

// findAll resolves a locator to all matching element handles.
func (ia *Interactor) findAll(loc Locator) (rod.Elements, error) {
	switch loc.Strategy {
	case StrategyCSS, StrategyID:
		return ia.probe.Elements(loc.selector())
	case StrategyXPath, StrategyText:
		return ia.probe.ElementsX(loc.xpath())
	default:
		return nil, errors.New("unsupported locator strategy: " + string(loc.Strategy))
	}
}

// ----- wait engine -----

// WaitFor blocks the calling goroutine, polling cond at the interactor's
// poll interval, until it reports true or timeout elapses. On expiry it
// returns a *TimeoutError carrying the locator and condition name.
func (ia *Interactor) WaitFor(cond Condition, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = ia.timeout
	}
	deadline := time.Now().Add(timeout)
	var lastErr error
	for {
		ok, err := cond.Probe()
		if err == nil && ok {
			return nil
		}
		lastErr = err
		remaining := time.Until(deadline)
		if remaining <= 0 {
			ia.log.Debug("wait condition expired",
				zap.String("condition", cond.Name),
				zap.Stringer("locator", cond.Locator),
				zap.Duration("timeout", timeout))
			return &TimeoutError{
				Locator:   cond.Locator,
				Condition: cond.Name,
				Timeout:   timeout,
				Cause:     lastErr,
			}
		}
		sleep := ia.interval
		if remaining < sleep {
			sleep = remaining
		}
		time.Sleep(sleep)
	}
}

// waitBool runs WaitFor and absorbs the timeout into a boolean: for the
// tolerant predicates, not-in-time is a valid negative answer.
func (ia *Interactor) waitBool(cond Condition, timeout time.Duration) bool {
	err := ia.WaitFor(cond, timeout)
	if err == nil {
		return true
	}
	var te *TimeoutError
	if !errors.As(err, &te) {
		ia.log.Warn("wait failed with non-timeout error",
			zap.String("condition", cond.Name), zap.Error(err))
	}
	return false
}

// ----- conditions -----

func (ia *Interactor) present(loc Locator) Condition {
	return Condition{Name: "present", Locator: loc, Probe: func() (bool, error) {
		_, err := ia.find(loc)
		return err == nil, nil
	}}
}

func (ia *Interactor) visible(loc Locator) Condition {
	return Condition{Name: "visible", Locator: loc, Probe: func() (bool, error) {
		el, err := ia.find(loc)
		if err != nil {
			return false, nil
		}
		return el.Visible()
	}}
}

func (ia *Interactor) invisible(loc Locator) Condition {
	return Condition{Name: "invisible", Locator: loc, Probe: func() (bool, error) {
		el, err := ia.find(loc)
		if err != nil {
			// Gone from the DOM counts as invisible.
			return true, nil
		}
		v, err := el.Visible()
		if err != nil {
			return true, nil
		}
		return !v, nil
	}}
}

func (ia *Interactor) clickable(loc Locator) Condition {
	return Condition{Name: "clickable", Locator: loc, Probe: func() (bool, error) {
		el, err := ia.find(loc)
		if err != nil {
			return false, nil
		}
		v, err := el.Visible()
		if err != nil || !v {
			return false, err
		}
		res, err := el.Eval(`() => !this.disabled`)
		if err != nil {
			return false, nil
		}
		return res.Value.Bool(), nil
	}}
}

func (ia *Interactor) countAtLeast(loc Locator, n int) Condition {
	return Condition{Name: "count", Locator: loc, Probe: func() (bool, error) {
		els, err := ia.findAll(loc)
		if err != nil {
			return false, nil
		}
		return len(els) >= n, nil
	}}
}

func (ia *Interactor) urlContains(substr string) Condition {
	return Condition{Name: "url contains " + substr, Probe: func() (bool, error) {
		info, err := ia.page.Info()
		if err != nil {
			return false, nil
		}
		return strings.Contains(info.URL, substr), nil
	}}
}

// ----- waits returning handles -----

// WaitPresent waits for the element to exist in the DOM and returns a
// fresh handle to it.
func (ia *Interactor) WaitPresent(loc Locator, timeout time.Duration) (*rod.Element, error) {
	if err := ia.WaitFor(ia.present(loc), timeout); err != nil {
		return nil, err
	}
	return ia.find(loc)
}

// WaitVisible waits for the element to be present and rendered visible.
func (ia *Interactor) WaitVisible(loc Locator, timeout time.Duration) (*rod.Element, error) {
	if err := ia.WaitFor(ia.visible(loc), timeout); err != nil {
		return nil, err
	}
	return ia.find(loc)
}

// WaitClickable waits for the element to be present, visible and enabled.
func (ia *Interactor) WaitClickable(loc Locator, timeout time.Duration) (*rod.Element, error) {
	if err := ia.WaitFor(ia.clickable(loc), timeout); err != nil {
		return nil, err
	}
	return ia.find(loc)
}

// WaitElements waits until at least one element matches and returns all
// current matches.
func (ia *Interactor) WaitElements(loc Locator, timeout time.Duration) (rod.Elements, error) {
	if err := ia.WaitFor(ia.countAtLeast(loc, 1), timeout); err != nil {
		return nil, err
	}
	return ia.findAll(loc)
}

// ----- tolerant predicates -----

// IsVisible reports whether the element becomes visible within the
// timeout. Expiry is a negative answer, not an error.
func (ia *Interactor) IsVisible(loc Locator, timeout time.Duration) bool {
	return ia.waitBool(ia.visible(loc), timeout)
}

// IsPresent reports whether the element exists in the DOM right now,
// without waiting.
func (ia *Interactor) IsPresent(loc Locator) bool {
	_, err := ia.find(loc)
	return err == nil
}

// WaitInvisible waits for the element to disappear or stop rendering.
// Still-visible-at-timeout returns false rather than an error, since
// absence after a wait is a valid pass condition in some flows.
func (ia *Interactor) WaitInvisible(loc Locator, timeout time.Duration) bool {
	return ia.waitBool(ia.invisible(loc), timeout)
}

// WaitURLContains waits for the page URL to contain substr.
func (ia *Interactor) WaitURLContains(substr string, timeout time.Duration) bool {
	return ia.waitBool(ia.urlContains(substr), timeout)
}

// ----- interactions -----

// Click waits for the element to be clickable, then clicks it. If the
// native click is rejected it falls back to a script click on a freshly
// resolved handle; overlapping or animated elements routinely reject
// native dispatch while being logically clickable.
func (ia *Interactor) Click(loc Locator, timeout time.Duration) error {
	el, err := ia.WaitClickable(loc, timeout)
	if err != nil {
		return err
	}
	ia.log.Debug("clicking element", zap.Stringer("locator", loc))
	return ia.clickWithFallback(loc,
		func() error {
			return el.Click(proto.InputMouseButtonLeft, 1)
		},
		func() error {
			fresh, ferr := ia.find(loc)
			if ferr != nil {
				return ferr
			}
			_, ferr = fresh.Eval(`() => this.click()`)
			return ferr
		})
}

func (ia *Interactor) clickWithFallback(loc Locator, primary, fallback func() error) error {
	err := primary()
	if err == nil {
		return nil
	}
	ia.log.Warn("native click failed, trying script click",
		zap.Stringer("locator", loc), zap.Error(err))
	if ferr := fallback(); ferr != nil {
		return &InteractionError{Locator: loc, Op: "click", Primary: err, Fallback: ferr}
	}
	return nil
}

// EnterText waits for the element to be visible, optionally clears the
// existing content, and types text. It does not wait for reactive UI to
// settle afterwards; chain an explicit wait when the flow depends on it.
func (ia *Interactor) EnterText(loc Locator, text string, clearFirst bool, timeout time.Duration) error {
	el, err := ia.WaitVisible(loc, timeout)
	if err != nil {
		return err
	}
	ia.log.Debug("entering text", zap.Stringer("locator", loc), zap.Bool("clear_first", clearFirst))
	if clearFirst {
		if err := el.SelectAllText(); err != nil {
			return err
		}
	}
	return el.Input(text)
}

// Text waits for presence and returns the element's text content.
func (ia *Interactor) Text(loc Locator, timeout time.Duration) (string, error) {
	el, err := ia.WaitPresent(loc, timeout)
	if err != nil {
		return "", err
	}
	return el.Text()
}

// Attribute waits for presence and returns the attribute value. An absent
// attribute reports ok=false, never an error.
func (ia *Interactor) Attribute(loc Locator, name string, timeout time.Duration) (string, bool, error) {
	el, err := ia.WaitPresent(loc, timeout)
	if err != nil {
		return "", false, err
	}
	v, err := el.Attribute(name)
	if err != nil {
		return "", false, err
	}
	if v == nil {
		return "", false, nil
	}
	return *v, true, nil
}

// Hover waits for visibility and moves the pointer over the element.
func (ia *Interactor) Hover(loc Locator, timeout time.Duration) error {
	el, err := ia.WaitVisible(loc, timeout)
	if err != nil {
		return err
	}
	return el.Hover()
}

// DoubleClick waits for clickability and double-clicks the element.
func (ia *Interactor) DoubleClick(loc Locator, timeout time.Duration) error {
	el, err := ia.WaitClickable(loc, timeout)
	if err != nil {
		return err
	}
	return el.Click(proto.InputMouseButtonLeft, 2)
}

// RightClick waits for clickability and context-clicks the element.
func (ia *Interactor) RightClick(loc Locator, timeout time.Duration) error {
	el, err := ia.WaitClickable(loc, timeout)
	if err != nil {
		return err
	}
	return el.Click(proto.InputMouseButtonRight, 1)
}

// DragAndDrop presses on the source element, moves the pointer to the
// target and releases. Synthesized mouse events drive listener-based
// drag implementations; HTML5 dragstart/drop handlers may not fire.
func (ia *Interactor) DragAndDrop(source, target Locator, timeout time.Duration) error {
	src, err := ia.WaitVisible(source, timeout)
	if err != nil {
		return err
	}
	dst, err := ia.WaitVisible(target, timeout)
	if err != nil {
		return err
	}
	srcShape, err := src.Shape()
	if err != nil {
		return err
	}
	dstShape, err := dst.Shape()
	if err != nil {
		return err
	}
	from := srcShape.OnePointInside()
	to := dstShape.OnePointInside()
	if from == nil || to == nil {
		return errors.New("element has no visible area to drag")
	}

	ia.log.Debug("dragging element",
		zap.Stringer("source", source), zap.Stringer("target", target))
	mouse := ia.page.Mouse
	if err := mouse.MoveTo(*from); err != nil {
		return err
	}
	if err := mouse.Down(proto.InputMouseButtonLeft, 1); err != nil {
		return err
	}
	if err := mouse.MoveTo(*to); err != nil {
		return err
	}
	return mouse.Up(proto.InputMouseButtonLeft, 1)
}

// ScrollIntoView waits for presence and scrolls the element into view.
func (ia *Interactor) ScrollIntoView(loc Locator, timeout time.Duration) error {
	el, err := ia.WaitPresent(loc, timeout)
	if err != nil {
		return err
	}
	return el.ScrollIntoView()
}

// scriptPage returns the page bounded by the script timeout.
func (ia *Interactor) scriptPage() *rod.Page {
	if ia.evalLimit <= 0 {
		return ia.page
	}
	return ia.page.Timeout(ia.evalLimit)
}

// navPage returns the page bounded by the navigation timeout.
func (ia *Interactor) navPage() *rod.Page {
	if ia.navTimeout <= 0 {
		return ia.page
	}
	return ia.page.Timeout(ia.navTimeout)
}

// ScrollToTop scrolls the window to the top of the document.
func (ia *Interactor) ScrollToTop() error {
	_, err := ia.scriptPage().Eval(`() => window.scrollTo(0, 0)`)
	return err
}

// ScrollToBottom scrolls the window to the bottom of the document.
func (ia *Interactor) ScrollToBottom() error {
	_, err := ia.scriptPage().Eval(`() => window.scrollTo(0, document.body.scrollHeight)`)
	return err
}

// Eval runs a JavaScript function in the page and returns its value.
func (ia *Interactor) Eval(js string, args ...any) (gson.JSON, error) {
	res, err := ia.scriptPage().Eval(js, args...)
	if err != nil {
		return gson.JSON{}, err
	}
	return res.Value, nil
}

// ----- navigation -----

// Navigate loads the URL and waits for the load event, bounded by the
// navigation timeout.
func (ia *Interactor) Navigate(url string) error {
	ia.log.Info("navigating", zap.String("url", url))
	p := ia.navPage()
	if err := p.Navigate(url); err != nil {
		return err
	}
	return p.WaitLoad()
}

// Refresh reloads the current page.
func (ia *Interactor) Refresh() error {
	ia.log.Info("refreshing page")
	return ia.navPage().Reload()
}

// Back navigates back in history.
func (ia *Interactor) Back() error { return ia.navPage().NavigateBack() }

// Forward navigates forward in history.
func (ia *Interactor) Forward() error { return ia.navPage().NavigateForward() }

// CurrentURL returns the page URL, or "" when it cannot be read.
func (ia *Interactor) CurrentURL() string {
	info, err := ia.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

// Title returns the page title, or "" when it cannot be read.
func (ia *Interactor) Title() string {
	info, err := ia.page.Info()
	if err != nil {
		return ""
	}
	return info.Title
}

// ----- cross-context -----

// SwitchToFrame waits for the iframe element and retargets the interactor
// at its content document. SwitchToMain restores the top-level page.
func (ia *Interactor) SwitchToFrame(loc Locator, timeout time.Duration) error {
	el, err := ia.WaitPresent(loc, timeout)
	if err != nil {
		return err
	}
	frame, err := el.Frame()
	if err != nil {
		return err
	}
	ia.log.Debug("switching to frame", zap.Stringer("locator", loc))
	ia.retarget(frame)
	return nil
}

// SwitchToMain retargets the interactor at the top-level page.
func (ia *Interactor) SwitchToMain() {
	ia.retarget(ia.main)
}

// SwitchToWindow waits for a browser target whose URL contains substr and
// retargets the interactor at it.
func (ia *Interactor) SwitchToWindow(substr string, timeout time.Duration) error {
	var target *rod.Page
	cond := Condition{Name: "window with url " + substr, Probe: func() (bool, error) {
		pages, err := ia.page.Browser().Pages()
		if err != nil {
			return false, nil
		}
		for _, p := range pages {
			info, err := p.Info()
			if err == nil && strings.Contains(info.URL, substr) {
				target = p
				return true, nil
			}
		}
		return false, nil
	}}
	if err := ia.WaitFor(cond, timeout); err != nil {
		return err
	}
	ia.log.Debug("switching to window", zap.String("url_contains", substr))
	ia.main = target
	ia.retarget(target)
	return nil
}

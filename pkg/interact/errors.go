package interact

import (
	"fmt"
	"time"
)

// TimeoutError reports that a wait condition did not become true before
// its deadline. It is an expected, recoverable failure: the caller decides
// whether it fails the test. Boolean-returning operations absorb it.
type TimeoutError struct {
	Locator   Locator
	Condition string
	Timeout   time.Duration
	Cause     error
}

func (e *TimeoutError) Error() string {
	msg := fmt.Sprintf("wait for %q timed out after %s", e.Condition, e.Timeout)
	if !e.Locator.IsZero() {
		msg = fmt.Sprintf("wait for %q on %s timed out after %s", e.Condition, e.Locator, e.Timeout)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *TimeoutError) Unwrap() error { return e.Cause }

// InteractionError reports that both the direct interaction path and its
// script-based fallback failed. It propagates to the test as a failure.
type InteractionError struct {
	Locator  Locator
	Op       string
	Primary  error
	Fallback error
}

func (e *InteractionError) Error() string {
	return fmt.Sprintf("%s on %s failed: %v (script fallback: %v)",
		e.Op, e.Locator, e.Primary, e.Fallback)
}

func (e *InteractionError) Unwrap() []error { return []error{e.Primary, e.Fallback} }

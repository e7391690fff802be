package interact

import (
	"time"

	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

// PendingDialog is an armed wait for a JavaScript dialog (alert, confirm,
// prompt). Dialogs arrive as protocol events, so the wait must be armed
// with ExpectDialog before triggering the action that opens the dialog;
// the bounded-wait discipline then applies when resolving it.
type PendingDialog struct {
	ia     *Interactor
	wait   func() *proto.PageJavascriptDialogOpening
	handle func(*proto.PageHandleJavaScriptDialog) error
}

// ExpectDialog arms a dialog wait on the current page. Call it before the
// click or script that opens the dialog, then resolve with Accept, Dismiss
// or Text.
func (ia *Interactor) ExpectDialog() *PendingDialog {
	wait, handle := ia.page.HandleDialog()
	return &PendingDialog{ia: ia, wait: wait, handle: handle}
}

// event waits for the dialog event within the timeout. A missing dialog is
// logged and reported as absent rather than failing the test.
func (d *PendingDialog) event(timeout time.Duration) (*proto.PageJavascriptDialogOpening, bool) {
	if timeout <= 0 {
		timeout = d.ia.timeout
	}
	// When no dialog ever arrives, the waiter goroutine stays blocked in
	// d.wait() until the page closes at session end; the buffered channel
	// lets it exit without a receiver.
	ch := make(chan *proto.PageJavascriptDialogOpening, 1)
	go func() { ch <- d.wait() }()
	select {
	case e := <-ch:
		return e, true
	case <-time.After(timeout):
		d.ia.log.Warn("no dialog appeared within timeout", zap.Duration("timeout", timeout))
		return nil, false
	}
}

// Accept waits for the dialog and accepts it. Returns false when no dialog
// appeared within the timeout.
func (d *PendingDialog) Accept(timeout time.Duration) bool {
	e, ok := d.event(timeout)
	if !ok {
		return false
	}
	d.ia.log.Info("accepting dialog", zap.String("message", e.Message))
	if err := d.handle(&proto.PageHandleJavaScriptDialog{Accept: true}); err != nil {
		d.ia.log.Warn("failed to accept dialog", zap.Error(err))
		return false
	}
	return true
}

// Dismiss waits for the dialog and dismisses it. Returns false when no
// dialog appeared within the timeout.
func (d *PendingDialog) Dismiss(timeout time.Duration) bool {
	e, ok := d.event(timeout)
	if !ok {
		return false
	}
	d.ia.log.Info("dismissing dialog", zap.String("message", e.Message))
	if err := d.handle(&proto.PageHandleJavaScriptDialog{Accept: false}); err != nil {
		d.ia.log.Warn("failed to dismiss dialog", zap.Error(err))
		return false
	}
	return true
}

// Text waits for the dialog, returns its message, and accepts it so the
// page does not stay blocked. ok is false when no dialog appeared.
func (d *PendingDialog) Text(timeout time.Duration) (string, bool) {
	e, ok := d.event(timeout)
	if !ok {
		return "", false
	}
	if err := d.handle(&proto.PageHandleJavaScriptDialog{Accept: true}); err != nil {
		d.ia.log.Warn("failed to close dialog after reading text", zap.Error(err))
	}
	return e.Message, true
}

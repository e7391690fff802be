// Package pages holds page objects for the application under test.
// Each page wraps an Interactor with the page's locators so tests read
// as intent rather than selectors.
package pages

import (
	"time"

	"go.uber.org/zap"

	"dev/bravebird/e2e-harness-go/pkg/interact"
)

// Locators for the login screen.
var (
	usernameField  = interact.ID("user-name")
	passwordField  = interact.ID("password")
	loginButton    = interact.ID("login-button")
	errorBanner    = interact.CSS("h3[data-test='error']")
	errorClose     = interact.CSS(".error-button")
	loginLogo      = interact.CSS(".login_logo")
	inventoryPanel = interact.ID("inventory_container")
)

// LoginPage drives the login screen.
type LoginPage struct {
	ui      *interact.Interactor
	baseURL string
	log     *zap.Logger
}

// NewLoginPage builds the page object for the login screen at baseURL.
func NewLoginPage(ui *interact.Interactor, baseURL string, log *zap.Logger) *LoginPage {
	if log == nil {
		log = zap.NewNop()
	}
	return &LoginPage{ui: ui, baseURL: baseURL, log: log}
}

// Open navigates to the login screen and waits for it to render.
func (p *LoginPage) Open() error {
	if err := p.ui.Navigate(p.baseURL); err != nil {
		return err
	}
	_, err := p.ui.WaitVisible(loginLogo, 0)
	return err
}

// EnterUsername types into the username field, clearing it first.
func (p *LoginPage) EnterUsername(username string) *LoginPage {
	if err := p.ui.EnterText(usernameField, username, true, 0); err != nil {
		p.log.Error("failed to enter username", zap.Error(err))
	}
	return p
}

// EnterPassword types into the password field, clearing it first.
func (p *LoginPage) EnterPassword(password string) *LoginPage {
	if err := p.ui.EnterText(passwordField, password, true, 0); err != nil {
		p.log.Error("failed to enter password", zap.Error(err))
	}
	return p
}

// SubmitLogin clicks the login button.
func (p *LoginPage) SubmitLogin() error {
	return p.ui.Click(loginButton, 0)
}

// Login performs the full credential entry and submit.
func (p *LoginPage) Login(username, password string) error {
	return p.EnterUsername(username).EnterPassword(password).SubmitLogin()
}

// IsErrorDisplayed reports whether the error banner becomes visible
// within the given timeout. The banner appears after a short delay, so
// this waits rather than probing once.
func (p *LoginPage) IsErrorDisplayed(timeout time.Duration) bool {
	return p.ui.IsVisible(errorBanner, timeout)
}

// ErrorMessage waits for the error banner and returns its text.
func (p *LoginPage) ErrorMessage(timeout time.Duration) (string, error) {
	return p.ui.Text(errorBanner, timeout)
}

// ClearError dismisses the error banner and waits for it to disappear.
func (p *LoginPage) ClearError() error {
	if err := p.ui.Click(errorClose, 0); err != nil {
		return err
	}
	if !p.ui.WaitInvisible(errorBanner, 0) {
		p.log.Warn("error banner still visible after dismissal")
	}
	return nil
}

// IsLoginSuccessful reports whether the browser landed on the inventory
// page within the timeout.
func (p *LoginPage) IsLoginSuccessful(timeout time.Duration) bool {
	return p.ui.WaitURLContains("inventory", timeout) && p.ui.IsVisible(inventoryPanel, timeout)
}

// IsOnInventoryPage reports whether the current URL is the inventory page.
func (p *LoginPage) IsOnInventoryPage(timeout time.Duration) bool {
	return p.ui.WaitURLContains("inventory.html", timeout)
}

// ValidateElements checks that the login form's controls are all
// present and visible.
func (p *LoginPage) ValidateElements() error {
	for _, loc := range []interact.Locator{loginLogo, usernameField, passwordField, loginButton} {
		if _, err := p.ui.WaitVisible(loc, 0); err != nil {
			return err
		}
	}
	return nil
}

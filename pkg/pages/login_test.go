package pages

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dev/bravebird/e2e-harness-go/pkg/fixtureapp"
	"dev/bravebird/e2e-harness-go/pkg/harness"
	"dev/bravebird/e2e-harness-go/pkg/interact"
)

const bannerTimeout = 5 * time.Second

func openLoginPage(t *testing.T) (*harness.Env, *LoginPage) {
	t.Helper()
	env := harness.Start(t, harness.WithFixtureApp())
	page := NewLoginPage(env.UI, env.BaseURL(), env.Log)
	require.NoError(t, page.Open())
	return env, page
}

func TestLoginWithValidCredentials(t *testing.T) {
	_, page := openLoginPage(t)

	require.NoError(t, page.Login(fixtureapp.ValidUser, fixtureapp.ValidPassword))
	assert.True(t, page.IsLoginSuccessful(bannerTimeout))
	assert.True(t, page.IsOnInventoryPage(bannerTimeout))
}

func TestLoginWithMissingUsername(t *testing.T) {
	_, page := openLoginPage(t)

	require.NoError(t, page.Login("", fixtureapp.ValidPassword))

	msg, err := page.ErrorMessage(bannerTimeout)
	require.NoError(t, err)
	assert.Contains(t, msg, fixtureapp.ErrUsernameRequired)
}

func TestLoginWithMissingPassword(t *testing.T) {
	_, page := openLoginPage(t)

	require.NoError(t, page.Login(fixtureapp.ValidUser, ""))

	msg, err := page.ErrorMessage(bannerTimeout)
	require.NoError(t, err)
	assert.Contains(t, msg, fixtureapp.ErrPasswordRequired)
}

func TestLoginWithLockedOutUser(t *testing.T) {
	_, page := openLoginPage(t)

	require.NoError(t, page.Login(fixtureapp.LockedUser, fixtureapp.ValidPassword))

	msg, err := page.ErrorMessage(bannerTimeout)
	require.NoError(t, err)
	assert.Contains(t, msg, fixtureapp.ErrLockedOut)
}

func TestLoginWithInvalidCredentials(t *testing.T) {
	_, page := openLoginPage(t)

	require.NoError(t, page.Login(fixtureapp.ValidUser, "wrong_password"))

	msg, err := page.ErrorMessage(bannerTimeout)
	require.NoError(t, err)
	assert.Contains(t, msg, fixtureapp.ErrBadCredentials)
}

func TestClearErrorBanner(t *testing.T) {
	_, page := openLoginPage(t)

	require.NoError(t, page.Login("", ""))
	require.True(t, page.IsErrorDisplayed(bannerTimeout))

	require.NoError(t, page.ClearError())
	assert.False(t, page.IsErrorDisplayed(500*time.Millisecond))
}

func TestRetryAfterFailedLogin(t *testing.T) {
	_, page := openLoginPage(t)

	require.NoError(t, page.Login(fixtureapp.ValidUser, "wrong_password"))
	require.True(t, page.IsErrorDisplayed(bannerTimeout))

	// Fields are cleared before retyping, so the retry starts clean.
	require.NoError(t, page.Login(fixtureapp.ValidUser, fixtureapp.ValidPassword))
	assert.True(t, page.IsLoginSuccessful(bannerTimeout))
}

func TestLoginPageElements(t *testing.T) {
	_, page := openLoginPage(t)
	assert.NoError(t, page.ValidateElements())
}

func TestInventoryAfterLogin(t *testing.T) {
	env, page := openLoginPage(t)

	require.NoError(t, page.Login(fixtureapp.ValidUser, fixtureapp.ValidPassword))
	require.True(t, page.IsLoginSuccessful(bannerTimeout))

	inventory := NewInventoryPage(env.UI)
	require.True(t, inventory.IsLoaded(bannerTimeout))

	title, err := inventory.Title(bannerTimeout)
	require.NoError(t, err)
	assert.Equal(t, "Products", title)

	names, err := inventory.ItemNames(bannerTimeout)
	require.NoError(t, err)
	assert.NotEmpty(t, names)
	assert.Contains(t, names, "Backpack")
}

func TestConfirmDialogAcceptAndDismiss(t *testing.T) {
	env := harness.Start(t, harness.WithFixtureApp())

	require.NoError(t, env.Open("/dialog"))

	deleteButton := interact.ID("confirm-delete")
	result := interact.ID("dialog-result")

	// The wait must be armed before the click that opens the dialog, and
	// the click blocks until the dialog is resolved, so it runs
	// concurrently with the accept.
	pending := env.UI.ExpectDialog()
	clickErr := make(chan error, 1)
	go func() { clickErr <- env.UI.Click(deleteButton, 0) }()
	require.True(t, pending.Accept(bannerTimeout))
	require.NoError(t, <-clickErr)

	text, err := env.UI.Text(result, bannerTimeout)
	require.NoError(t, err)
	assert.Equal(t, "deleted", text)

	pending = env.UI.ExpectDialog()
	go func() { clickErr <- env.UI.Click(deleteButton, 0) }()
	require.True(t, pending.Dismiss(bannerTimeout))
	require.NoError(t, <-clickErr)

	text, err = env.UI.Text(result, bannerTimeout)
	require.NoError(t, err)
	assert.Equal(t, "kept", text)
}

func TestSlowContentRequiresWaiting(t *testing.T) {
	env := harness.Start(t, harness.WithFixtureApp())

	require.NoError(t, env.Open("/slow"))

	// The element exists from page load but stays hidden until the
	// websocket feed completes.
	late := interact.ID("late-content")
	assert.True(t, env.UI.IsPresent(late))

	el, err := env.UI.WaitVisible(late, 10*time.Second)
	require.NoError(t, err)

	text, err := el.Text()
	require.NoError(t, err)
	assert.Equal(t, "feed complete", text)
}

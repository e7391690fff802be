package pages

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dev/bravebird/e2e-harness-go/pkg/harness"
	"dev/bravebird/e2e-harness-go/pkg/interact"
)

func fieldValue(t *testing.T, env *harness.Env, id string) string {
	t.Helper()
	res, err := env.UI.Eval(`(id) => document.getElementById(id).value`, id)
	require.NoError(t, err)
	return res.Str()
}

func TestEnterTextClearAndAppendSemantics(t *testing.T) {
	env, _ := openLoginPage(t)

	username := interact.ID("user-name")

	require.NoError(t, env.UI.EnterText(username, "stand", true, 0))
	assert.Equal(t, "stand", fieldValue(t, env, "user-name"))

	// clearFirst=false appends to the existing content.
	require.NoError(t, env.UI.EnterText(username, "ard_user", false, 0))
	assert.Equal(t, "standard_user", fieldValue(t, env, "user-name"))

	// clearFirst=true leaves only the newly entered text.
	require.NoError(t, env.UI.EnterText(username, "locked_out_user", true, 0))
	assert.Equal(t, "locked_out_user", fieldValue(t, env, "user-name"))
}

func TestAttributeAbsentReportsNotFoundWithoutError(t *testing.T) {
	env, _ := openLoginPage(t)

	username := interact.ID("user-name")

	v, ok, err := env.UI.Attribute(username, "placeholder", 0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Username", v)

	v, ok, err = env.UI.Attribute(username, "data-no-such-attribute", 0)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, v)
}

func TestSwitchToFrameAndBack(t *testing.T) {
	env := harness.Start(t, harness.WithFixtureApp())

	require.NoError(t, env.Open("/frame"))

	outerTitle := interact.ID("outer-title")
	frameTitle := interact.CSS("#inventory_container .title")

	require.True(t, env.UI.IsVisible(outerTitle, bannerTimeout))
	assert.False(t, env.UI.IsPresent(frameTitle))

	require.NoError(t, env.UI.SwitchToFrame(interact.ID("content-frame"), bannerTimeout))

	text, err := env.UI.Text(frameTitle, bannerTimeout)
	require.NoError(t, err)
	assert.Equal(t, "Products", text)
	assert.False(t, env.UI.IsPresent(outerTitle))

	env.UI.SwitchToMain()
	assert.True(t, env.UI.IsPresent(outerTitle))
}

func TestDragAndDropOntoZone(t *testing.T) {
	env := harness.Start(t, harness.WithFixtureApp())

	require.NoError(t, env.Open("/drag"))

	status := interact.ID("drag-status")
	text, err := env.UI.Text(status, bannerTimeout)
	require.NoError(t, err)
	require.Equal(t, "idle", text)

	err = env.UI.DragAndDrop(interact.ID("drag-source"), interact.ID("drop-zone"), bannerTimeout)
	require.NoError(t, err)

	text, err = env.UI.Text(status, bannerTimeout)
	require.NoError(t, err)
	assert.Equal(t, "dropped", text)
}

package interact

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocatorConstructors(t *testing.T) {
	assert.Equal(t, Locator{Strategy: StrategyCSS, Value: ".title"}, CSS(".title"))
	assert.Equal(t, Locator{Strategy: StrategyID, Value: "user-name"}, ID("user-name"))
	assert.Equal(t, Locator{Strategy: StrategyXPath, Value: "//h3"}, XPath("//h3"))
	assert.Equal(t, Locator{Strategy: StrategyText, Value: "Products"}, Text("Products"))
}

func TestLocatorString(t *testing.T) {
	assert.Equal(t, "id=login-button", ID("login-button").String())
	assert.Equal(t, "css=#inventory_container", CSS("#inventory_container").String())
}

func TestLocatorSelectorForms(t *testing.T) {
	assert.Equal(t, "#password", ID("password").selector())
	assert.Equal(t, ".error-button", CSS(".error-button").selector())
}

func TestLocatorXPathForms(t *testing.T) {
	assert.Equal(t, "//div[@id='x']", XPath("//div[@id='x']").xpath())
	assert.Equal(t, "//*[contains(normalize-space(.), 'Products')]", Text("Products").xpath())
}

func TestXPathQuote(t *testing.T) {
	assert.Equal(t, "'plain'", xpathQuote("plain"))
	assert.Equal(t, `"it's"`, xpathQuote("it's"))
	assert.Equal(t, `'say "hi"'`, xpathQuote(`say "hi"`))
	assert.Equal(t, `concat('a', "'", 'b"c')`, xpathQuote(`a'b"c`))
}

func TestLocatorIsZero(t *testing.T) {
	assert.True(t, Locator{}.IsZero())
	assert.False(t, CSS("body").IsZero())
}

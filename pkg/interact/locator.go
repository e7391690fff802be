package interact

import (
	"fmt"
	"strings"
)

// Strategy names how a locator's value is interpreted when querying the DOM.
type Strategy string

const (
	StrategyCSS   Strategy = "css"
	StrategyID    Strategy = "id"
	StrategyXPath Strategy = "xpath"
	StrategyText  Strategy = "text"
)

// Locator is an immutable (strategy, value) pair identifying zero or more
// DOM nodes. Page objects declare locators statically and pass them to the
// interaction layer, which re-resolves them on every use.
type Locator struct {
	Strategy Strategy
	Value    string
}

// CSS builds a locator from a CSS selector.
func CSS(selector string) Locator { return Locator{Strategy: StrategyCSS, Value: selector} }

// ID builds a locator matching an element id.
func ID(id string) Locator { return Locator{Strategy: StrategyID, Value: id} }

// XPath builds a locator from an XPath expression.
func XPath(expr string) Locator { return Locator{Strategy: StrategyXPath, Value: expr} }

// Text builds a locator matching elements by their visible text content.
func Text(text string) Locator { return Locator{Strategy: StrategyText, Value: text} }

// IsZero reports whether the locator is unset.
func (l Locator) IsZero() bool { return l.Strategy == "" && l.Value == "" }

func (l Locator) String() string {
	return fmt.Sprintf("%s=%s", l.Strategy, l.Value)
}

// selector returns the CSS selector form for css and id strategies.
func (l Locator) selector() string {
	if l.Strategy == StrategyID {
		return "#" + l.Value
	}
	return l.Value
}

// xpath returns the XPath form for xpath and text strategies.
func (l Locator) xpath() string {
	if l.Strategy == StrategyText {
		return fmt.Sprintf("//*[contains(normalize-space(.), %s)]", xpathQuote(l.Value))
	}
	return l.Value
}

// xpathQuote renders s as an XPath string literal, handling embedded quotes.
func xpathQuote(s string) string {
	if !strings.Contains(s, `'`) {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	parts := strings.Split(s, `'`)
	quoted := make([]string, 0, len(parts)*2)
	for i, p := range parts {
		if i > 0 {
			quoted = append(quoted, `"'"`)
		}
		if p != "" {
			quoted = append(quoted, "'"+p+"'")
		}
	}
	return "concat(" + strings.Join(quoted, ", ") + ")"
}

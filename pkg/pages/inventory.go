package pages

import (
	"time"

	"dev/bravebird/e2e-harness-go/pkg/interact"
)

var (
	inventoryTitle = interact.CSS("#inventory_container .title")
	inventoryItems = interact.CSS(".inventory_item")
)

// InventoryPage drives the product listing shown after login.
type InventoryPage struct {
	ui *interact.Interactor
}

// NewInventoryPage builds the page object for the inventory screen.
func NewInventoryPage(ui *interact.Interactor) *InventoryPage {
	return &InventoryPage{ui: ui}
}

// IsLoaded reports whether the inventory container rendered.
func (p *InventoryPage) IsLoaded(timeout time.Duration) bool {
	return p.ui.IsVisible(inventoryPanel, timeout)
}

// Title returns the page heading text.
func (p *InventoryPage) Title(timeout time.Duration) (string, error) {
	return p.ui.Text(inventoryTitle, timeout)
}

// ItemNames lists the product names on display.
func (p *InventoryPage) ItemNames(timeout time.Duration) ([]string, error) {
	els, err := p.ui.WaitElements(inventoryItems, timeout)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(els))
	for _, el := range els {
		name, err := el.Element(".inventory_item_name")
		if err != nil {
			continue
		}
		text, err := name.Text()
		if err != nil {
			continue
		}
		names = append(names, text)
	}
	return names, nil
}

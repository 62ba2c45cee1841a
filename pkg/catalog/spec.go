package catalog

import (
	"strings"

	"github.com/matzehuels/ioschema/pkg/points"
)

// Category decides how a module participates in the diagram.
type Category string

const (
	// CategoryController hosts the overview page and is placed first.
	CategoryController Category = "controller"
	// CategoryCard is an I/O card drawn on the controller's overview page.
	CategoryCard Category = "card"
	// CategoryExtension is a bus extension module.
	CategoryExtension Category = "extension"
)

// Legacy category tokens stored in the catalog database.
const (
	tokenController = "automate"
	tokenCard       = "carte"
)

// ParseCategory maps a catalog token to a Category. Unknown tokens are
// extensions.
func ParseCategory(token string) Category {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case tokenController, string(CategoryController):
		return CategoryController
	case tokenCard, string(CategoryCard):
		return CategoryCard
	}
	return CategoryExtension
}

// Capacity is the number of channels per allocatable signal type.
type Capacity struct {
	DI int `json:"di"`
	DO int `json:"do"`
	AI int `json:"ai"`
	AO int `json:"ao"`
}

// Of returns the capacity for one signal type. COM has no channels.
func (c Capacity) Of(t points.SignalType) int {
	switch t {
	case points.DI:
		return c.DI
	case points.DO:
		return c.DO
	case points.AI:
		return c.AI
	case points.AO:
		return c.AO
	}
	return 0
}

// Total returns the channel count across all types.
func (c Capacity) Total() int {
	return c.DI + c.DO + c.AI + c.AO
}

// ModuleSpec describes one catalog module.
type ModuleSpec struct {
	ID             string   `json:"id"`
	DisplayName    string   `json:"display_name"`
	Brand          string   `json:"brand"`
	Category       Category `json:"category"`
	Capacity       Capacity `json:"capacity"`
	TemplatePageID string   `json:"template_page_id"`
	GUIOrder       int      `json:"gui_order"`
}

// PageID returns the template page the module is drawn with.
func (s ModuleSpec) PageID() string {
	if s.TemplatePageID != "" {
		return s.TemplatePageID
	}
	return s.ID
}

// IsController reports whether the module is the controller.
func (s ModuleSpec) IsController() bool { return s.Category == CategoryController }

// IsCard reports whether the module is drawn on the overview page.
func (s ModuleSpec) IsCard() bool { return s.Category == CategoryCard }

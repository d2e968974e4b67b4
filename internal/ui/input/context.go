package input

import (
	"metagrip/internal/domain"
)

// ModelContext implements the Context interface for the input handler.
// The model fills it from its services before each key is handled.
type ModelContext struct {
	Index    int
	Entities []domain.Entity
	State    domain.QueryState
	Pages    int
}

// CurrentIndex returns the focused card
func (c *ModelContext) CurrentIndex() int {
	return c.Index
}

// TotalItems returns the number of cards on the page
func (c *ModelContext) TotalItems() int {
	return len(c.Entities)
}

// CurrentIsProgram reports whether the focused card supports start/stop
func (c *ModelContext) CurrentIsProgram() bool {
	if c.Index < 0 || c.Index >= len(c.Entities) {
		return false
	}
	return c.Entities[c.Index].IsProgram()
}

func (c *ModelContext) SearchQuery() string {
	return c.State.Query
}

func (c *ModelContext) CurrentSort() domain.SortSpec {
	return c.State.Sort
}

func (c *ModelContext) Filters() []domain.CategoryID {
	return c.State.Filters
}

func (c *ModelContext) Page() int {
	return c.State.Page
}

func (c *ModelContext) NumPages() int {
	return c.Pages
}

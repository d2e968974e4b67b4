package modes

import (
	"github.com/charmbracelet/bubbles/textinput"

	"metagrip/internal/ui/input/types"
)

// SearchMode edits the search text; it starts from the current query
type SearchMode struct {
	TextInputMode
}

func NewSearchMode(ti *textinput.Model) *SearchMode {
	return &SearchMode{
		TextInputMode: NewTextInputMode(types.ModeSearch, "search", "Search: ", ti),
	}
}

func (m *SearchMode) Enter(ctx types.Context) []types.Action {
	m.TextInputMode.Enter(ctx)
	if m.textInput != nil {
		m.textInput.SetValue(ctx.SearchQuery())
		m.textInput.CursorEnd()
	}
	return nil
}

// LocationMode accepts a location string such as "?q=purch&page=2"
type LocationMode struct {
	TextInputMode
}

func NewLocationMode(ti *textinput.Model) *LocationMode {
	return &LocationMode{
		TextInputMode: NewTextInputMode(types.ModeLocation, "location", "Go to: ", ti),
	}
}

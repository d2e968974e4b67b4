package ui

import (
	"github.com/charmbracelet/bubbles/key"
)

// keyMap is the short key reference shown in the footer. Dispatch happens
// in the input modes; these bindings only describe them.
type keyMap struct {
	Move   key.Binding
	Page   key.Binding
	Search key.Binding
	Filter key.Binding
	Sort   key.Binding
	Action key.Binding
	Detail key.Binding
	Help   key.Binding
	Quit   key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Move:   key.NewBinding(key.WithKeys("up", "down", "left", "right"), key.WithHelp("←↑↓→", "move")),
		Page:   key.NewBinding(key.WithKeys("n", "p"), key.WithHelp("n/p", "page")),
		Search: key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Filter: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filter")),
		Sort:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
		Action: key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "start/stop")),
		Detail: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
		Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:   key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Move, k.Page, k.Search, k.Filter, k.Sort, k.Action, k.Detail, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Move, k.Page, k.Detail},
		{k.Search, k.Filter, k.Sort},
		{k.Action, k.Help, k.Quit},
	}
}

package modes

import (
	tea "github.com/charmbracelet/bubbletea"

	"metagrip/internal/domain"
	"metagrip/internal/ui/input/types"
)

type SortSelectMode struct {
	sortIndex int
}

func NewSortSelectMode() *SortSelectMode {
	return &SortSelectMode{}
}

func (m *SortSelectMode) Name() string {
	return "sort"
}

func (m *SortSelectMode) Enter(ctx types.Context) []types.Action {
	// Start with the current sort option
	m.sortIndex = 0
	for i, option := range domain.SortOptions {
		if option == ctx.CurrentSort() {
			m.sortIndex = i
			break
		}
	}
	return []types.Action{types.UpdateSortIndexAction{Index: m.sortIndex}}
}

func (m *SortSelectMode) Exit(ctx types.Context) []types.Action {
	return nil
}

// HandleKey moves through the options; enter applies the highlighted one
func (m *SortSelectMode) HandleKey(msg tea.KeyMsg, ctx types.Context) ([]types.Action, bool) {
	switch msg.String() {
	case "ctrl+c":
		return []types.Action{types.QuitAction{Force: true}}, true

	case "esc", "q", "s":
		return []types.Action{types.ChangeModeAction{Mode: types.ModeNormal}}, true

	case "enter":
		actions := []types.Action{types.ChangeModeAction{Mode: types.ModeNormal}}
		if spec := domain.SortOptions[m.sortIndex]; spec != ctx.CurrentSort() {
			actions = append([]types.Action{types.SortByAction{Spec: spec}}, actions...)
		}
		return actions, true

	case "up", "k":
		m.sortIndex--
		if m.sortIndex < 0 {
			m.sortIndex = len(domain.SortOptions) - 1
		}
		return []types.Action{types.UpdateSortIndexAction{Index: m.sortIndex}}, true

	case "down", "j":
		m.sortIndex++
		if m.sortIndex >= len(domain.SortOptions) {
			m.sortIndex = 0
		}
		return []types.Action{types.UpdateSortIndexAction{Index: m.sortIndex}}, true
	}

	return nil, true
}

// GetCurrentIndex returns the current sort option index
func (m *SortSelectMode) GetCurrentIndex() int {
	return m.sortIndex
}

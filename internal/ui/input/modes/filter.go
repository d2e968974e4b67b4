package modes

import (
	tea "github.com/charmbracelet/bubbletea"

	"metagrip/internal/domain"
	"metagrip/internal/ui/input/types"
)

// FilterMode is the category checklist. Each toggle applies immediately.
type FilterMode struct {
	index int
}

func NewFilterMode() *FilterMode {
	return &FilterMode{}
}

func (m *FilterMode) Name() string {
	return "filter"
}

func (m *FilterMode) Enter(ctx types.Context) []types.Action {
	m.index = 0
	return []types.Action{types.UpdateFilterIndexAction{Index: m.index}}
}

func (m *FilterMode) Exit(ctx types.Context) []types.Action {
	return nil
}

func (m *FilterMode) HandleKey(msg tea.KeyMsg, ctx types.Context) ([]types.Action, bool) {
	switch msg.String() {
	case "ctrl+c":
		return []types.Action{types.QuitAction{Force: true}}, true

	case "esc", "enter", "q", "f":
		return []types.Action{types.ChangeModeAction{Mode: types.ModeNormal}}, true

	case "up", "k":
		m.index--
		if m.index < 0 {
			m.index = len(domain.Categories) - 1
		}
		return []types.Action{types.UpdateFilterIndexAction{Index: m.index}}, true

	case "down", "j":
		m.index++
		if m.index >= len(domain.Categories) {
			m.index = 0
		}
		return []types.Action{types.UpdateFilterIndexAction{Index: m.index}}, true

	case " ", "x":
		return []types.Action{types.ToggleFilterAction{Category: domain.Categories[m.index]}}, true

	case "1", "2", "3", "4", "5":
		i := int(msg.String()[0] - '1')
		m.index = i
		return []types.Action{
			types.UpdateFilterIndexAction{Index: i},
			types.ToggleFilterAction{Category: domain.Categories[i]},
		}, true
	}

	return nil, true
}

// GetCurrentIndex returns the highlighted category
func (m *FilterMode) GetCurrentIndex() int {
	return m.index
}

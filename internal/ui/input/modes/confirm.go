package modes

import (
	tea "github.com/charmbracelet/bubbletea"

	"metagrip/internal/ui/input/types"
)

// ConfirmMode drives the start/stop modal of the focused program card
type ConfirmMode struct{}

func NewConfirmMode() *ConfirmMode {
	return &ConfirmMode{}
}

func (m *ConfirmMode) Name() string {
	return "confirm"
}

func (m *ConfirmMode) Enter(ctx types.Context) []types.Action {
	return nil
}

func (m *ConfirmMode) Exit(ctx types.Context) []types.Action {
	return nil
}

func (m *ConfirmMode) HandleKey(msg tea.KeyMsg, ctx types.Context) ([]types.Action, bool) {
	switch msg.String() {
	case "ctrl+c":
		return []types.Action{types.QuitAction{Force: true}}, true
	case "esc", "n", "N", "q":
		return []types.Action{
			types.CloseProgramModalAction{},
			types.ChangeModeAction{Mode: types.ModeNormal},
		}, true
	case "y", "Y", "enter":
		// The modal stays up while the action runs
		return []types.Action{types.ConfirmProgramAction{}}, true
	}

	return nil, true
}

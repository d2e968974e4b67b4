package modes

import (
	tea "github.com/charmbracelet/bubbletea"

	"metagrip/internal/ui/input/types"
)

// SplashMode owns the keyboard while the welcome screen is up
type SplashMode struct{}

func NewSplashMode() *SplashMode {
	return &SplashMode{}
}

func (m *SplashMode) Name() string {
	return "welcome"
}

func (m *SplashMode) Enter(ctx types.Context) []types.Action {
	return nil
}

func (m *SplashMode) Exit(ctx types.Context) []types.Action {
	return nil
}

func (m *SplashMode) HandleKey(msg tea.KeyMsg, ctx types.Context) ([]types.Action, bool) {
	switch msg.String() {
	case "ctrl+c":
		return []types.Action{types.QuitAction{Force: true}}, true
	case " ", "d":
		return []types.Action{types.SplashToggleDontShowAction{}}, true
	case "v", "i":
		return []types.Action{types.SplashToggleIntroAction{}}, true
	case "enter", "esc", "q":
		return []types.Action{
			types.SplashCloseAction{},
			types.ChangeModeAction{Mode: types.ModeNormal},
		}, true
	}
	return nil, true
}

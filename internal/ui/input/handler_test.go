package input

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metagrip/internal/domain"
	"metagrip/internal/ui/input/types"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newContext(entities ...domain.Entity) *ModelContext {
	return &ModelContext{
		Entities: entities,
		State:    domain.DefaultQueryState(),
		Pages:    3,
	}
}

func TestSearchModeSubmitsText(t *testing.T) {
	h := New()
	ctx := newContext()
	ctx.State.Query = "pur"

	actions, _ := h.HandleKey(key("/"), ctx)
	assert.Empty(t, actions)
	require.Equal(t, types.ModeSearch, h.CurrentMode())
	assert.Equal(t, "pur", h.TextInput().Value(), "search starts from the current query")
	assert.Equal(t, "Search: ", h.Prompt())

	actions, _ = h.HandleKey(key("c"), ctx)
	assert.Equal(t, []types.Action{types.UpdateTextAction{Text: "purc"}}, actions)

	actions, _ = h.HandleKey(key("enter"), ctx)
	require.NotEmpty(t, actions)
	assert.Equal(t, types.SubmitTextAction{Text: "purc", Mode: types.ModeSearch}, actions[0])
	assert.Equal(t, types.ModeNormal, h.CurrentMode())
	assert.Nil(t, h.TextInput())
}

func TestPageKeys(t *testing.T) {
	h := New()
	ctx := newContext()
	ctx.State.Page = 2

	actions, _ := h.HandleKey(key("n"), ctx)
	assert.Equal(t, []types.Action{types.PageAction{Page: 3}}, actions)
	actions, _ = h.HandleKey(key("p"), ctx)
	assert.Equal(t, []types.Action{types.PageAction{Page: 1}}, actions)
}

func TestSortSelectAppliesOnEnter(t *testing.T) {
	h := New()
	ctx := newContext()

	actions, _ := h.HandleKey(key("s"), ctx)
	assert.Equal(t, []types.Action{types.UpdateSortIndexAction{Index: 3}}, actions)

	actions, _ = h.HandleKey(key("down"), ctx)
	assert.Equal(t, []types.Action{types.UpdateSortIndexAction{Index: 0}}, actions, "wraps around")

	actions, _ = h.HandleKey(key("enter"), ctx)
	assert.Equal(t, []types.Action{types.SortByAction{Spec: domain.SortOptions[0]}}, actions)
	assert.Equal(t, types.ModeNormal, h.CurrentMode())
}

func TestFilterToggleByNumber(t *testing.T) {
	h := New()
	ctx := newContext()

	h.HandleKey(key("f"), ctx)
	require.Equal(t, types.ModeFilter, h.CurrentMode())

	actions, _ := h.HandleKey(key("4"), ctx)
	assert.Contains(t, actions, types.ToggleFilterAction{Category: domain.CategoryProgram})

	h.HandleKey(key("esc"), ctx)
	assert.Equal(t, types.ModeNormal, h.CurrentMode())
}

func TestProgramModalOnlyOnPrograms(t *testing.T) {
	h := New()
	dataset := domain.Entity{ID: "ds", Type: domain.CategoryDataset}
	program := domain.Entity{ID: "wf", Type: domain.CategoryProgram, Application: "app", ProgramType: "Workflow"}

	actions, _ := h.HandleKey(key(" "), newContext(dataset))
	assert.Empty(t, actions)
	assert.Equal(t, types.ModeNormal, h.CurrentMode())

	actions, _ = h.HandleKey(key(" "), newContext(program))
	assert.Equal(t, []types.Action{types.OpenProgramModalAction{}}, actions)
	assert.Equal(t, types.ModeConfirm, h.CurrentMode())

	actions, _ = h.HandleKey(key("y"), newContext(program))
	assert.Equal(t, []types.Action{types.ConfirmProgramAction{}}, actions)
	assert.Equal(t, types.ModeConfirm, h.CurrentMode())

	actions, _ = h.HandleKey(key("esc"), newContext(program))
	assert.Equal(t, []types.Action{types.CloseProgramModalAction{}}, actions)
	assert.Equal(t, types.ModeNormal, h.CurrentMode())
}

func TestSplashMode(t *testing.T) {
	h := New()
	ctx := newContext()
	h.SetMode(types.ModeSplash, ctx)

	actions, _ := h.HandleKey(key("d"), ctx)
	assert.Equal(t, []types.Action{types.SplashToggleDontShowAction{}}, actions)

	actions, _ = h.HandleKey(key("j"), ctx)
	assert.Empty(t, actions, "other keys are swallowed")

	actions, _ = h.HandleKey(key("enter"), ctx)
	assert.Equal(t, []types.Action{types.SplashCloseAction{}}, actions)
	assert.Equal(t, types.ModeNormal, h.CurrentMode())
}

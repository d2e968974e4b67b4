package types

import "metagrip/internal/domain"

// Navigation actions
type NavigateAction struct {
	Direction string // "up", "down", "left", "right", "home", "end"
}

func (a NavigateAction) Type() string { return "navigate" }

// PageAction jumps to an absolute result page
type PageAction struct {
	Page int
}

func (a PageAction) Type() string { return "page" }

// BackAction restores the previous location
type BackAction struct{}

func (a BackAction) Type() string { return "back" }

// Mode transition actions
type ChangeModeAction struct {
	Mode Mode
	Data interface{} // Optional data for the mode
}

func (a ChangeModeAction) Type() string { return "change_mode" }

// Text input actions
type UpdateTextAction struct {
	Text string
}

func (a UpdateTextAction) Type() string { return "update_text" }

type SubmitTextAction struct {
	Text string
	Mode Mode // Which mode submitted the text
}

func (a SubmitTextAction) Type() string { return "submit_text" }

type CancelTextAction struct{}

func (a CancelTextAction) Type() string { return "cancel_text" }

// Sort actions
type SortByAction struct {
	Spec domain.SortSpec
}

func (a SortByAction) Type() string { return "sort_by" }

type UpdateSortIndexAction struct {
	Index int
}

func (a UpdateSortIndexAction) Type() string { return "update_sort_index" }

// Filter actions
type ToggleFilterAction struct {
	Category domain.CategoryID
}

func (a ToggleFilterAction) Type() string { return "toggle_filter" }

type UpdateFilterIndexAction struct {
	Index int
}

func (a UpdateFilterIndexAction) Type() string { return "update_filter_index" }

// Program actions
type OpenProgramModalAction struct{}

func (a OpenProgramModalAction) Type() string { return "open_program_modal" }

type ConfirmProgramAction struct{}

func (a ConfirmProgramAction) Type() string { return "confirm_program" }

type CloseProgramModalAction struct{}

func (a CloseProgramModalAction) Type() string { return "close_program_modal" }

// Pager actions
type OpenDetailAction struct{}

func (a OpenDetailAction) Type() string { return "open_detail" }

type OpenDraftsAction struct{}

func (a OpenDraftsAction) Type() string { return "open_drafts" }

// Splash actions
type SplashToggleDontShowAction struct{}

func (a SplashToggleDontShowAction) Type() string { return "splash_toggle_dont_show" }

type SplashToggleIntroAction struct{}

func (a SplashToggleIntroAction) Type() string { return "splash_toggle_intro" }

type SplashCloseAction struct{}

func (a SplashCloseAction) Type() string { return "splash_close" }

// Command actions
type RefreshAction struct{}

func (a RefreshAction) Type() string { return "refresh" }

type ToggleHelpAction struct{}

func (a ToggleHelpAction) Type() string { return "toggle_help" }

type QuitAction struct {
	Force bool // true for Ctrl+C, false for 'q'
}

func (a QuitAction) Type() string { return "quit" }

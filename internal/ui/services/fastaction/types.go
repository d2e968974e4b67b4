package fastaction

import (
	"context"
	"fmt"

	"metagrip/internal/domain"
)

// Actor is the program lifecycle API collaborator
type Actor interface {
	ProgramAction(ctx context.Context, ref domain.ProgramRef, action domain.ProgramAction) error
}

// Action is the start/stop widget state of one program card
type Action struct {
	EntityID        string
	Ref             domain.ProgramRef
	Status          domain.ProgramStatus
	ModalOpen       bool
	ErrorMessage    string
	ExtendedMessage string
	pending         domain.ProgramAction
}

// NewAction returns the initial state, loading until the first poll arrives
func NewAction(e domain.Entity) *Action {
	return &Action{
		EntityID: e.ID,
		Ref: domain.ProgramRef{
			Namespace:   e.Namespace,
			AppID:       e.Application,
			ProgramType: domain.ProgramTypeToAPI(e.ProgramType),
			ProgramID:   e.ID,
		},
		Status: domain.StatusLoading,
	}
}

// OnStatus records a polled status. A modal left open while the action was
// loading closes once the status settles, unless an error is on display.
func (a *Action) OnStatus(status domain.ProgramStatus) {
	if a.Status == domain.StatusLoading && a.Status != status && a.ModalOpen && a.ErrorMessage == "" {
		a.ModalOpen = false
	}
	a.Status = status
}

// ToggleModal opens or closes the confirmation and clears messages
func (a *Action) ToggleModal() {
	a.ModalOpen = !a.ModalOpen
	a.ErrorMessage = ""
	a.ExtendedMessage = ""
}

// NextAction is stop for running or starting programs, start otherwise
func (a *Action) NextAction() domain.ProgramAction {
	if a.Status.IsActive() {
		return domain.ActionStop
	}
	return domain.ActionStart
}

// Loading reports whether the widget shows a spinner
func (a *Action) Loading() bool {
	return a.Status == domain.StatusLoading
}

// Confirmable reports whether the confirm button is enabled
func (a *Action) Confirmable() bool {
	return a.ErrorMessage == "" && !a.Loading()
}

// Begin picks the action to run and enters the loading state
func (a *Action) Begin() domain.ProgramAction {
	a.pending = a.NextAction()
	a.Status = domain.StatusLoading
	return a.pending
}

// Complete records the action result. detail is the server's response text.
func (a *Action) Complete(err error, detail string) {
	if err == nil {
		a.ErrorMessage = ""
		a.ExtendedMessage = ""
		return
	}
	a.ErrorMessage = fmt.Sprintf("Program %s failed to %s", a.EntityID, a.pending)
	a.ExtendedMessage = detail
	a.Status = domain.StatusUnknown
}

// ConfirmationText is the question shown in the modal
func (a *Action) ConfirmationText() string {
	if a.NextAction() == domain.ActionStop {
		return fmt.Sprintf("Are you sure you want to stop %s?", a.EntityID)
	}
	return fmt.Sprintf("Are you sure you want to start %s?", a.EntityID)
}

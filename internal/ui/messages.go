package ui

import (
	"metagrip/internal/domain"
	"metagrip/internal/eventbus"
	"metagrip/internal/ui/services/querysync"
)

// EventMsg wraps a domain event for the UI
type EventMsg struct {
	Event eventbus.DomainEvent
}

// searchResultMsg carries the outcome of a search request
type searchResultMsg struct {
	outcome querysync.Outcome
}

// statusMsg is a polled program status for the card with key
type statusMsg struct {
	key    string
	status domain.ProgramStatus
}

// actionDoneMsg is the result of a start or stop call
type actionDoneMsg struct {
	key    string
	action domain.ProgramAction
	err    error
}

// splashDelayMsg fires once the splash delay has elapsed
type splashDelayMsg struct{}

// splashInitMsg reports whether the splash should be shown
type splashInitMsg struct {
	visible bool
}

// prefsSavedMsg is the result of closing the splash
type prefsSavedMsg struct {
	err error
}

// pagerDoneMsg is sent when the pager exits
type pagerDoneMsg struct {
	title string
	err   error
}

// draftsLoadedMsg carries the ETL listing for the pager
type draftsLoadedMsg struct {
	apps []domain.ETLApp
	err  error
}

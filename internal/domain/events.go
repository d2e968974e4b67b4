package domain

// EventType represents the type of domain event
type EventType string

// Event types
const (
	EventSearchStarted        EventType = "SearchStarted"
	EventSearchCompleted      EventType = "SearchCompleted"
	EventSearchFailed         EventType = "SearchFailed"
	EventLocationChanged      EventType = "LocationChanged"
	EventProgramStatusChanged EventType = "ProgramStatusChanged"
	EventProgramActionFailed  EventType = "ProgramActionFailed"
	EventPreferencesSaved     EventType = "PreferencesSaved"
	EventError                EventType = "Error"
	EventConfigLoaded         EventType = "ConfigLoaded"
	EventConfigSaved          EventType = "ConfigSaved"
)

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	Type() EventType
}

// SearchStartedEvent is emitted when a search request is issued
type SearchStartedEvent struct {
	Generation uint64
	State      QueryState
	PageSize   int
}

func (e SearchStartedEvent) Type() EventType { return EventSearchStarted }

// SearchCompletedEvent is emitted when a search result is applied
type SearchCompletedEvent struct {
	Generation uint64
	Count      int
	Total      int
	NumPages   int
}

func (e SearchCompletedEvent) Type() EventType { return EventSearchCompleted }

// SearchFailedEvent is emitted when a search request fails
type SearchFailedEvent struct {
	Generation uint64
	Err        error
}

func (e SearchFailedEvent) Type() EventType { return EventSearchFailed }

// LocationChangedEvent is emitted whenever the browse state is re-serialized
type LocationChangedEvent struct {
	Location string
}

func (e LocationChangedEvent) Type() EventType { return EventLocationChanged }

// ProgramStatusChangedEvent is emitted when a polled status differs from the last one
type ProgramStatusChangedEvent struct {
	Program ProgramRef
	Status  ProgramStatus
}

func (e ProgramStatusChangedEvent) Type() EventType { return EventProgramStatusChanged }

// ProgramActionFailedEvent is emitted when start or stop is rejected
type ProgramActionFailedEvent struct {
	Program ProgramRef
	Action  ProgramAction
	Err     error
}

func (e ProgramActionFailedEvent) Type() EventType { return EventProgramActionFailed }

// PreferencesSavedEvent is emitted after the user preference bag is written
type PreferencesSavedEvent struct {
	Key   string
	Value bool
}

func (e PreferencesSavedEvent) Type() EventType { return EventPreferencesSaved }

// ErrorEvent is emitted when an error occurs
type ErrorEvent struct {
	Message string
	Err     error
}

func (e ErrorEvent) Type() EventType { return EventError }

// ConfigLoadedEvent is emitted when configuration is loaded
type ConfigLoadedEvent struct {
	Path      string
	Namespace string
}

func (e ConfigLoadedEvent) Type() EventType { return EventConfigLoaded }

// ConfigSavedEvent is emitted when configuration is saved
type ConfigSavedEvent struct {
	Path string
}

func (e ConfigSavedEvent) Type() EventType { return EventConfigSaved }

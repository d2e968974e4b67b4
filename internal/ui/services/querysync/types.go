package querysync

import (
	"context"

	"metagrip/internal/client"
	"metagrip/internal/domain"
)

// Searcher is the search API collaborator
type Searcher interface {
	Search(ctx context.Context, req client.SearchRequest) (*client.SearchResponse, error)
}

// Phase is the state of the current search cycle
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseLoaded
	PhaseErrored
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseLoaded:
		return "loaded"
	case PhaseErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// Direction is the page transition direction handed to the renderer
type Direction string

const (
	DirectionNext Direction = "next"
	DirectionPrev Direction = "prev"
)

// Request is an issued search. Generation orders requests; only the
// outcome of the latest one is applied.
type Request struct {
	Generation uint64
	Search     client.SearchRequest
}

// Outcome is the result of running a Request
type Outcome struct {
	Generation uint64
	Entities   []domain.Entity
	Total      int
	Err        error
}

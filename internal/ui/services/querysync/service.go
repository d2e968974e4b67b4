package querysync

import (
	"context"
	"slices"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"metagrip/internal/client"
	"metagrip/internal/domain"
	"metagrip/internal/eventbus"
	"metagrip/internal/metadata"
)

// Options configures a Service
type Options struct {
	Namespace string
	Metrics   Metrics
	Logger    *zap.Logger
	KeyFunc   func() string // render key generator, uuid by default
}

// Service keeps the browse state, the location string and the paged
// search in step. It is not safe for concurrent use: all mutations happen
// on the UI event loop, only RunSearch is called from other goroutines.
type Service struct {
	searcher  Searcher
	bus       eventbus.EventBus
	logger    *zap.Logger
	namespace string
	metrics   Metrics
	keyFn     func() string

	state      domain.QueryState
	pageSize   int
	numPages   int
	total      int
	phase      Phase
	entities   []domain.Entity
	errored    bool
	direction  Direction
	history    []string
	generation uint64
	mounted    bool
}

// NewService creates a new query sync service
func NewService(searcher Searcher, bus eventbus.EventBus, opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	keyFn := opts.KeyFunc
	if keyFn == nil {
		keyFn = uuid.NewString
	}
	return &Service{
		searcher:  searcher,
		bus:       bus,
		logger:    logger.Named("querysync"),
		namespace: opts.Namespace,
		metrics:   opts.Metrics,
		keyFn:     keyFn,
		state:     domain.DefaultQueryState(),
		pageSize:  1,
		numPages:  1,
		phase:     PhaseIdle,
		direction: DirectionNext,
	}
}

// State returns a copy of the current query state
func (s *Service) State() domain.QueryState {
	st := s.state
	st.Filters = slices.Clone(s.state.Filters)
	return st
}

func (s *Service) PageSize() int             { return s.pageSize }
func (s *Service) NumPages() int             { return s.numPages }
func (s *Service) Phase() Phase              { return s.phase }
func (s *Service) Errored() bool             { return s.errored }
func (s *Service) Direction() Direction      { return s.direction }
func (s *Service) Entities() []domain.Entity { return s.entities }
func (s *Service) Namespace() string         { return s.namespace }

// Location returns the serialized current state
func (s *Service) Location() string {
	return SerializeQueryString(s.state)
}

// History returns the locations pushed so far, oldest first
func (s *Service) History() []string {
	return slices.Clone(s.history)
}

// Mount initializes state from location and issues the first search
func (s *Service) Mount(location string) Request {
	s.state = ParseLocation(location, s.state)
	s.mounted = true
	s.history = append(s.history[:0], s.Location())
	s.logger.Debug("mounted", zap.String("location", s.Location()))
	return s.issue()
}

// Resize recomputes the page size. A search is issued when the size changed
// after mount. When the last known total no longer reaches the current page
// the page is moved to the new last page.
func (s *Service) Resize(width, height int) (Request, bool) {
	size := ComputePageSize(width, height, s.metrics)
	if size == s.pageSize {
		return Request{}, false
	}
	s.logger.Debug("page size changed", zap.Int("from", s.pageSize), zap.Int("to", size))
	s.pageSize = size
	if !s.mounted {
		return Request{}, false
	}

	if s.total > 0 {
		if last := (s.total + size - 1) / size; s.state.Page > last {
			s.state.Page = last
			return s.search(), true
		}
	}
	return s.issue(), true
}

// OnFilterToggle flips id in the active filter set. The last active filter
// cannot be removed.
func (s *Service) OnFilterToggle(id domain.CategoryID) (Request, bool) {
	if _, ok := domain.ParseCategory(string(id)); !ok {
		return Request{}, false
	}
	var filters []domain.CategoryID
	if s.state.HasFilter(id) {
		if len(s.state.Filters) == 1 {
			return Request{}, false
		}
		for _, f := range s.state.Filters {
			if f != id {
				filters = append(filters, f)
			}
		}
	} else {
		filters = append(slices.Clone(s.state.Filters), id)
	}
	s.state.Filters = domain.NormalizeFilters(filters)
	return s.search(), true
}

// OnPageChange moves to page. Pages outside 1..NumPages are rejected
// without touching state.
func (s *Service) OnPageChange(page int) (Request, bool) {
	if page < 1 || page > s.numPages {
		return Request{}, false
	}
	if page >= s.state.Page {
		s.direction = DirectionNext
	} else {
		s.direction = DirectionPrev
	}
	s.state.Page = page
	return s.search(), true
}

// OnSortChange replaces the sort order
func (s *Service) OnSortChange(spec domain.SortSpec) (Request, bool) {
	if _, ok := domain.LookupSort(string(spec.Field), string(spec.Direction)); !ok {
		return Request{}, false
	}
	s.state.Sort = spec
	return s.search(), true
}

// OnSearchTextChange replaces the free-text query
func (s *Service) OnSearchTextChange(text string) Request {
	s.state.Query = text
	return s.search()
}

// OnLocationChange applies an externally supplied location
func (s *Service) OnLocationChange(location string) Request {
	s.state = ParseLocation(location, s.state)
	return s.search()
}

// Back restores the previous location from history
func (s *Service) Back() (Request, bool) {
	if len(s.history) < 2 {
		return Request{}, false
	}
	s.history = s.history[:len(s.history)-1]
	prev := s.history[len(s.history)-1]
	next := ParseLocation(prev, s.state)
	if next.Page < s.state.Page {
		s.direction = DirectionPrev
	} else {
		s.direction = DirectionNext
	}
	s.state = next
	s.publish(eventbus.LocationChangedEvent{Location: prev})
	return s.issue(), true
}

// search issues a request and records the new location
func (s *Service) search() Request {
	loc := s.Location()
	if len(s.history) == 0 || s.history[len(s.history)-1] != loc {
		s.history = append(s.history, loc)
	}
	s.publish(eventbus.LocationChangedEvent{Location: loc})
	return s.issue()
}

func (s *Service) issue() Request {
	s.generation++
	s.phase = PhaseLoading

	req := Request{
		Generation: s.generation,
		Search: client.SearchRequest{
			Namespace: s.namespace,
			Query:     s.state.Query + "*",
			Target:    slices.Clone(s.state.Filters),
			Limit:     s.pageSize,
			Offset:    (s.state.Page - 1) * s.pageSize,
			Sort:      s.state.Sort.ServerForm(),
		},
	}
	s.publish(eventbus.SearchStartedEvent{
		Generation: req.Generation,
		State:      s.State(),
		PageSize:   s.pageSize,
	})
	return req
}

// RunSearch performs req against the search API. It reads no mutable state
// and may run on any goroutine.
func (s *Service) RunSearch(ctx context.Context, req Request) Outcome {
	resp, err := s.searcher.Search(ctx, req.Search)
	if err != nil {
		return Outcome{Generation: req.Generation, Err: err}
	}
	entities, skipped := metadata.ParseAll(resp.Results)
	if skipped > 0 {
		s.logger.Warn("skipped unparsable search results", zap.Int("count", skipped))
	}
	return Outcome{Generation: req.Generation, Entities: entities, Total: resp.Total}
}

// Apply folds an outcome into state. Outcomes of superseded requests are
// dropped and false is returned.
func (s *Service) Apply(out Outcome) bool {
	if out.Generation != s.generation {
		s.logger.Debug("dropping stale search result",
			zap.Uint64("generation", out.Generation),
			zap.Uint64("latest", s.generation))
		return false
	}

	if out.Err != nil {
		s.logger.Warn("search failed", zap.Error(out.Err))
		s.entities = nil
		s.total = 0
		s.errored = true
		s.phase = PhaseErrored
		s.publish(eventbus.SearchFailedEvent{Generation: out.Generation, Err: out.Err})
		return true
	}

	entities := make([]domain.Entity, len(out.Entities))
	for i, e := range out.Entities {
		e.Key = s.keyFn()
		entities[i] = e
	}
	s.entities = entities
	s.errored = false
	s.phase = PhaseLoaded
	s.total = out.Total
	s.numPages = (out.Total + s.pageSize - 1) / s.pageSize
	s.publish(eventbus.SearchCompletedEvent{
		Generation: out.Generation,
		Count:      len(entities),
		Total:      out.Total,
		NumPages:   s.numPages,
	})
	return true
}

func (s *Service) publish(e eventbus.DomainEvent) {
	if s.bus != nil {
		s.bus.Publish(e)
	}
}

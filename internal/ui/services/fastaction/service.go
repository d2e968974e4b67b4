package fastaction

import (
	"context"

	"go.uber.org/zap"

	"metagrip/internal/client"
	"metagrip/internal/domain"
	"metagrip/internal/eventbus"
)

// StatusFunc receives polled statuses keyed by entity render key
type StatusFunc func(key string, status domain.ProgramStatus)

// Service owns the start/stop widgets of the cards on screen and their
// status subscriptions. Apart from Run, methods must be called from the UI
// event loop.
type Service struct {
	poller *Poller
	actor  Actor
	bus    eventbus.EventBus
	logger *zap.Logger

	actions map[string]*Action
	subs    map[string]*Subscription
}

// NewService creates a fast action service
func NewService(poller *Poller, actor Actor, bus eventbus.EventBus, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		poller:  poller,
		actor:   actor,
		bus:     bus,
		logger:  logger.Named("fastaction"),
		actions: make(map[string]*Action),
		subs:    make(map[string]*Subscription),
	}
}

// Track makes the program cards among entities the live set: widgets that
// left the page are released and new ones start polling.
func (s *Service) Track(ctx context.Context, entities []domain.Entity, deliver StatusFunc) {
	live := make(map[string]bool, len(entities))
	for _, e := range entities {
		if e.IsProgram() {
			live[e.Key] = true
		}
	}

	for key, sub := range s.subs {
		if !live[key] {
			sub.Dispose()
			delete(s.subs, key)
			delete(s.actions, key)
		}
	}

	for _, e := range entities {
		if !e.IsProgram() {
			continue
		}
		if _, ok := s.subs[e.Key]; ok {
			continue
		}
		key := e.Key
		action := NewAction(e)
		s.actions[key] = action
		s.subs[key] = s.poller.Subscribe(ctx, action.Ref, func(status domain.ProgramStatus) {
			deliver(key, status)
		})
	}
}

// Subscriptions returns the live subscriptions
func (s *Service) Subscriptions() []*Subscription {
	out := make([]*Subscription, 0, len(s.subs))
	for _, sub := range s.subs {
		out = append(out, sub)
	}
	return out
}

// DisposeAll releases every subscription, on teardown
func (s *Service) DisposeAll() {
	for key, sub := range s.subs {
		sub.Dispose()
		delete(s.subs, key)
	}
	s.actions = make(map[string]*Action)
}

// Action returns the widget for an entity key, nil for non-program cards
func (s *Service) Action(key string) *Action {
	return s.actions[key]
}

// OnStatus applies a polled status. Statuses for released widgets are ignored.
func (s *Service) OnStatus(key string, status domain.ProgramStatus) {
	a, ok := s.actions[key]
	if !ok {
		return
	}
	changed := a.Status != status
	a.OnStatus(status)
	if changed && s.bus != nil {
		s.bus.Publish(eventbus.ProgramStatusChangedEvent{Program: a.Ref, Status: status})
	}
}

// ToggleModal opens or closes the confirmation for key
func (s *Service) ToggleModal(key string) bool {
	a, ok := s.actions[key]
	if !ok {
		return false
	}
	a.ToggleModal()
	return true
}

// Begin confirms the modal for key and returns the call to make
func (s *Service) Begin(key string) (domain.ProgramRef, domain.ProgramAction, bool) {
	a, ok := s.actions[key]
	if !ok || !a.ModalOpen || !a.Confirmable() {
		return domain.ProgramRef{}, "", false
	}
	action := a.Begin()
	s.logger.Info("program action",
		zap.String("app", a.Ref.AppID),
		zap.String("program", a.Ref.ProgramID),
		zap.String("action", string(action)))
	return a.Ref, action, true
}

// Run performs the lifecycle call. Safe on any goroutine.
func (s *Service) Run(ctx context.Context, ref domain.ProgramRef, action domain.ProgramAction) error {
	return s.actor.ProgramAction(ctx, ref, action)
}

// Complete records the result of Run for key
func (s *Service) Complete(key string, action domain.ProgramAction, err error) {
	a, ok := s.actions[key]
	if !ok {
		return
	}
	a.Complete(err, client.ResponseDetail(err))
	if err != nil {
		s.logger.Warn("program action failed",
			zap.String("program", a.Ref.ProgramID),
			zap.String("action", string(action)),
			zap.Error(err))
		if s.bus != nil {
			s.bus.Publish(eventbus.ProgramActionFailedEvent{Program: a.Ref, Action: action, Err: err})
		}
	}
}

// OpenModal returns the widget whose confirmation is showing, if any
func (s *Service) OpenModal() (string, *Action) {
	for key, a := range s.actions {
		if a.ModalOpen {
			return key, a
		}
	}
	return "", nil
}

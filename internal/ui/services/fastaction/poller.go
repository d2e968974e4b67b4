package fastaction

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"metagrip/internal/domain"
)

// StatusSource is the program status API collaborator
type StatusSource interface {
	ProgramStatus(ctx context.Context, ref domain.ProgramRef) (domain.ProgramStatus, error)
}

// Poller issues recurring status checks
type Poller struct {
	source   StatusSource
	interval time.Duration
	logger   *zap.Logger
}

// NewPoller creates a poller checking every interval
func NewPoller(source StatusSource, interval time.Duration, logger *zap.Logger) *Poller {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Poller{source: source, interval: interval, logger: logger.Named("poller")}
}

// Subscription is a live status poll. It must be disposed by its owner.
type Subscription struct {
	ref    domain.ProgramRef
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Subscribe starts polling ref, delivering every status to fn from the
// poll goroutine. The poll stops when ctx ends or the subscription is
// disposed.
func (p *Poller) Subscribe(ctx context.Context, ref domain.ProgramRef, fn func(domain.ProgramStatus)) *Subscription {
	ctx, cancel := context.WithCancel(ctx)
	sub := &Subscription{ref: ref, cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(sub.done)

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			status, err := p.source.ProgramStatus(ctx, ref)
			if ctx.Err() != nil {
				return
			}
			if err != nil {
				p.logger.Debug("status poll failed",
					zap.String("app", ref.AppID),
					zap.String("program", ref.ProgramID),
					zap.Error(err))
			} else {
				fn(status)
			}

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	return sub
}

// Ref returns the polled program
func (s *Subscription) Ref() domain.ProgramRef {
	return s.ref
}

// Dispose stops the poll. It does not wait for an in-flight delivery; use
// Done for that. Safe to call more than once.
func (s *Subscription) Dispose() {
	s.once.Do(s.cancel)
}

// Done is closed once the poll goroutine has exited
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

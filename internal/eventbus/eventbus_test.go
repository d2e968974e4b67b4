package eventbus

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestPublishDeliversToSubscribers(t *testing.T) {
	defer goleak.VerifyNone(t)

	b := New(nil)
	defer b.Close()

	got := make(chan LocationChangedEvent, 1)
	b.Subscribe(EventLocationChanged, func(e DomainEvent) {
		got <- e.(LocationChangedEvent)
	})

	b.Publish(LocationChangedEvent{Location: "?page=2"})

	select {
	case e := <-got:
		assert.Equal(t, "?page=2", e.Location)
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	defer goleak.VerifyNone(t)

	b := New(nil)
	defer b.Close()

	var first, second atomic.Int32
	unsubscribe := b.Subscribe(EventSearchStarted, func(DomainEvent) { first.Add(1) })
	done := make(chan struct{}, 2)
	b.Subscribe(EventSearchStarted, func(DomainEvent) {
		second.Add(1)
		done <- struct{}{}
	})

	unsubscribe()
	b.Publish(SearchStartedEvent{Generation: 1})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}
	assert.Equal(t, int32(0), first.Load())
	assert.Equal(t, int32(1), second.Load())
}

func TestHandlerPanicIsRecovered(t *testing.T) {
	defer goleak.VerifyNone(t)

	b := New(nil)
	defer b.Close()

	done := make(chan struct{})
	b.Subscribe(EventError, func(DomainEvent) { panic("boom") })
	b.Subscribe(EventError, func(DomainEvent) { close(done) })

	b.Publish(ErrorEvent{Message: "x"})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("second handler did not run after panic")
	}
}

func TestPublishAfterCloseIsDropped(t *testing.T) {
	b := New(nil)
	b.Close()
	require.NotPanics(t, func() { b.Publish(ErrorEvent{Message: "late"}) })
	b.Close()
}

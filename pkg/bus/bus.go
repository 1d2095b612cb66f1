package bus

import (
	"context"
	"errors"
	"sync/atomic"
)

// ErrBusClosed is returned when publishing to a closed EventBus.
var ErrBusClosed = errors.New("event bus closed")

// EventBus carries inbound events from a source channel to the relay
// controller. It preserves publish order, which the controller relies
// on for per-channel delivery ordering.
type EventBus struct {
	inbound chan Event
	done    chan struct{}
	closed  atomic.Bool
}

func NewEventBus() *EventBus {
	return &EventBus{
		inbound: make(chan Event, 100),
		done:    make(chan struct{}),
	}
}

func (eb *EventBus) PublishInbound(ctx context.Context, ev Event) error {
	if eb.closed.Load() {
		return ErrBusClosed
	}
	select {
	case eb.inbound <- ev:
		return nil
	case <-eb.done:
		return ErrBusClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (eb *EventBus) ConsumeInbound(ctx context.Context) (Event, bool) {
	select {
	case ev, ok := <-eb.inbound:
		return ev, ok
	case <-eb.done:
		return Event{}, false
	case <-ctx.Done():
		return Event{}, false
	}
}

func (eb *EventBus) Close() {
	if eb.closed.CompareAndSwap(false, true) {
		close(eb.done)
	}
}

// Package channels implements the transport ends of the relay: a
// source of inbound events and a sender for rendered alerts.
package channels

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/tinyland-inc/rainrelay/pkg/bus"
)

type Channel interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	IsRunning() bool
}

type BaseChannel struct {
	events  *bus.EventBus
	running atomic.Bool
	name    string
}

func NewBaseChannel(name string, events *bus.EventBus) *BaseChannel {
	return &BaseChannel{
		events: events,
		name:   name,
	}
}

func (c *BaseChannel) Name() string {
	return c.name
}

func (c *BaseChannel) IsRunning() bool {
	return c.running.Load()
}

func (c *BaseChannel) SetRunning(running bool) {
	c.running.Store(running)
}

// HandleEvent publishes an inbound post to the event bus in arrival
// order.
func (c *BaseChannel) HandleEvent(ctx context.Context, chatID int64, messageID int, text string, at time.Time) error {
	return c.events.PublishInbound(ctx, bus.Event{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      text,
		Time:      at,
	})
}

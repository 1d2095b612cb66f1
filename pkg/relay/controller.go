// Package relay orchestrates the alert pipeline: dedup check,
// classification, field extraction, currency conversion, rendering,
// and forwarding with polite back-off on transport rate limits.
package relay

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/tinyland-inc/rainrelay/pkg/bus"
	"github.com/tinyland-inc/rainrelay/pkg/classify"
	"github.com/tinyland-inc/rainrelay/pkg/convert"
	"github.com/tinyland-inc/rainrelay/pkg/dedup"
	"github.com/tinyland-inc/rainrelay/pkg/extract"
	"github.com/tinyland-inc/rainrelay/pkg/format"
	"github.com/tinyland-inc/rainrelay/pkg/logger"
)

// Sender forwards rendered text to a destination chat. A rate-limited
// transport returns *RateLimitedError; any other error is treated as
// an irrecoverable failure for this delivery attempt.
type Sender interface {
	Send(ctx context.Context, chatID int64, text string) error
}

// DefaultSendDelay throttles outbound posts to reduce flood bans.
const DefaultSendDelay = 1500 * time.Millisecond

// Options tunes a Controller.
type Options struct {
	// TargetChatID is the destination for forwarded alerts.
	TargetChatID int64
	// SendDelay is a fixed pause before each send. Negative disables;
	// zero takes DefaultSendDelay.
	SendDelay time.Duration
}

// Controller owns the relay pipeline state: the dedup guard plus the
// stateless classifier, extractor, converter and renderer. It
// processes one event at a time, preserving arrival order.
type Controller struct {
	classifier *classify.Classifier
	extractor  *extract.Extractor
	converter  *convert.Converter
	renderer   *format.Renderer
	guard      *dedup.Guard
	sender     Sender

	target    int64
	sendDelay time.Duration
}

func NewController(
	classifier *classify.Classifier,
	extractor *extract.Extractor,
	converter *convert.Converter,
	renderer *format.Renderer,
	guard *dedup.Guard,
	sender Sender,
	opts Options,
) *Controller {
	delay := opts.SendDelay
	if delay == 0 {
		delay = DefaultSendDelay
	}
	if delay < 0 {
		delay = 0
	}
	return &Controller{
		classifier: classifier,
		extractor:  extractor,
		converter:  converter,
		renderer:   renderer,
		guard:      guard,
		sender:     sender,
		target:     opts.TargetChatID,
		sendDelay:  delay,
	}
}

// Run consumes inbound events until the bus closes or ctx is
// canceled. An in-flight delivery aborts cleanly on cancellation.
func (c *Controller) Run(ctx context.Context, events *bus.EventBus) {
	logger.InfoCF("relay", "Relay loop started", map[string]any{
		"target_chat_id": c.target,
	})
	for {
		ev, ok := events.ConsumeInbound(ctx)
		if !ok {
			logger.InfoC("relay", "Relay loop stopped")
			return
		}
		c.Process(ctx, ev)
	}
}

// Process runs one event through the pipeline. Errors are fully
// handled here: irrelevant and duplicate events are skipped, failed
// deliveries are logged and released for redelivery.
func (c *Controller) Process(ctx context.Context, ev bus.Event) {
	if ev.Text == "" {
		return
	}

	key := dedup.Key{ChatID: ev.ChatID, MessageID: ev.MessageID}
	if c.guard.Seen(key) {
		logger.DebugCF("relay", "Duplicate event skipped", map[string]any{
			"chat_id":    ev.ChatID,
			"message_id": ev.MessageID,
		})
		return
	}

	if !c.classifier.IsAlert(ev.Text) {
		return
	}

	// Mark before sending so a concurrent redelivery of the same
	// identity cannot race into a second send.
	c.guard.Mark(key)

	alert := c.extractor.Extract(ev.Text)
	audience := c.classifier.ResolveContext(c.classifier.Matches(ev.Text))
	converted := c.converter.Display(ctx, alert.Amount, alert.Currency)
	rendered := c.renderer.Render(alert, audience, converted)

	deliveryID := uuid.New().String()

	if err := c.deliver(ctx, rendered, deliveryID); err != nil {
		c.guard.Unmark(key)
		logger.ErrorCF("relay", "Failed to forward alert", map[string]any{
			"delivery_id": deliveryID,
			"message_id":  ev.MessageID,
			"error":       err.Error(),
		})
		return
	}

	logger.InfoCF("relay", "Alert forwarded", map[string]any{
		"delivery_id": deliveryID,
		"message_id":  ev.MessageID,
		"country":     audience.Country,
		"users":       alert.UserCount(),
	})
}

// deliver sends the rendered text, sleeping and retrying for as long
// as the transport keeps signaling rate limits. Any other error, or
// cancellation while waiting, aborts the delivery.
func (c *Controller) deliver(ctx context.Context, text, deliveryID string) error {
	if c.sendDelay > 0 {
		if err := sleep(ctx, c.sendDelay); err != nil {
			return err
		}
	}

	for {
		err := c.sender.Send(ctx, c.target, text)
		if err == nil {
			return nil
		}

		var limited *RateLimitedError
		if !errors.As(err, &limited) {
			return err
		}

		logger.WarnCF("relay", "Rate limited, backing off", map[string]any{
			"delivery_id": deliveryID,
			"wait":        limited.RetryAfter.String(),
		})
		if err := sleep(ctx, limited.RetryAfter); err != nil {
			return err
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

package channels

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/mymmrac/telego"
	"github.com/mymmrac/telego/telegoapi"

	"github.com/tinyland-inc/rainrelay/pkg/bus"
	"github.com/tinyland-inc/rainrelay/pkg/config"
	"github.com/tinyland-inc/rainrelay/pkg/logger"
	"github.com/tinyland-inc/rainrelay/pkg/relay"
)

// TelegramChannel watches one source channel for posts and sends
// rendered alerts to the target chat. Connection, authentication and
// long-poll reconnects are telego's concern; the relay core only sees
// the event stream and Send.
type TelegramChannel struct {
	*BaseChannel

	bot      *telego.Bot
	source   string
	target   string
	sourceID int64
	targetID int64

	cancel context.CancelFunc
	done   chan struct{}
}

func NewTelegramChannel(cfg config.TelegramConfig, events *bus.EventBus) (*TelegramChannel, error) {
	bot, err := telego.NewBot(cfg.Token, telego.WithDefaultLogger(false, true))
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}

	source, err := config.SanitizeChannel(cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("source channel: %w", err)
	}
	target, err := config.SanitizeChannel(cfg.Target)
	if err != nil {
		return nil, fmt.Errorf("target channel: %w", err)
	}

	return &TelegramChannel{
		BaseChannel: NewBaseChannel("telegram", events),
		bot:         bot,
		source:      source,
		target:      target,
	}, nil
}

// Resolve looks up both chat identities up front so bad configuration
// fails at startup rather than on the first alert.
func (t *TelegramChannel) Resolve(ctx context.Context) error {
	sourceID, err := t.resolveChat(ctx, t.source)
	if err != nil {
		return fmt.Errorf("resolve source %s: %w", config.DisplayChannel(t.source), err)
	}
	targetID, err := t.resolveChat(ctx, t.target)
	if err != nil {
		return fmt.Errorf("resolve target %s: %w", config.DisplayChannel(t.target), err)
	}

	t.sourceID = sourceID
	t.targetID = targetID
	logger.InfoCF("telegram", "Channels resolved", map[string]any{
		"source": config.DisplayChannel(t.source),
		"target": config.DisplayChannel(t.target),
	})
	return nil
}

func (t *TelegramChannel) resolveChat(ctx context.Context, ref string) (int64, error) {
	chat, err := t.bot.GetChat(ctx, &telego.GetChatParams{ChatID: chatRef(ref)})
	if err != nil {
		return 0, err
	}
	return chat.ID, nil
}

// TargetChatID returns the resolved destination chat. Valid after
// Resolve.
func (t *TelegramChannel) TargetChatID() int64 {
	return t.targetID
}

// Start begins long polling for channel posts and publishes posts
// from the source chat to the event bus.
func (t *TelegramChannel) Start(ctx context.Context) error {
	pollCtx, cancel := context.WithCancel(ctx)

	updates, err := t.bot.UpdatesViaLongPolling(pollCtx, &telego.GetUpdatesParams{
		Timeout:        30,
		AllowedUpdates: []string{telego.ChannelPostUpdates},
	})
	if err != nil {
		cancel()
		return fmt.Errorf("telegram long polling: %w", err)
	}

	t.cancel = cancel
	t.done = make(chan struct{})
	t.SetRunning(true)

	go func() {
		defer close(t.done)
		for update := range updates {
			post := update.ChannelPost
			if post == nil || post.Chat.ID != t.sourceID {
				continue
			}
			text := post.Text
			if text == "" {
				text = post.Caption
			}
			if text == "" {
				continue
			}
			at := time.Unix(post.Date, 0).UTC()
			if err := t.HandleEvent(pollCtx, post.Chat.ID, post.MessageID, text, at); err != nil {
				logger.WarnCF("telegram", "Dropping inbound post", map[string]any{
					"message_id": post.MessageID,
					"error":      err.Error(),
				})
			}
		}
	}()

	logger.InfoCF("telegram", "Watching source channel", map[string]any{
		"source": config.DisplayChannel(t.source),
	})
	return nil
}

// Stop halts long polling and waits for the update loop to drain,
// bounded by ctx.
func (t *TelegramChannel) Stop(ctx context.Context) error {
	if !t.IsRunning() {
		return nil
	}
	t.SetRunning(false)
	t.cancel()

	select {
	case <-t.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Send posts HTML-formatted text to a chat. Telegram flood control
// (HTTP 429 with retry_after) is surfaced as *relay.RateLimitedError
// so the controller can back off and retry.
func (t *TelegramChannel) Send(ctx context.Context, chatID int64, text string) error {
	_, err := t.bot.SendMessage(ctx, &telego.SendMessageParams{
		ChatID:    telego.ChatID{ID: chatID},
		Text:      text,
		ParseMode: telego.ModeHTML,
	})
	if err == nil {
		return nil
	}

	var apiErr *telegoapi.Error
	if errors.As(err, &apiErr) &&
		apiErr.ErrorCode == http.StatusTooManyRequests &&
		apiErr.Parameters != nil && apiErr.Parameters.RetryAfter > 0 {
		return &relay.RateLimitedError{
			RetryAfter: time.Duration(apiErr.Parameters.RetryAfter) * time.Second,
		}
	}
	return err
}

// chatRef accepts either a numeric chat ID or a channel username.
func chatRef(ref string) telego.ChatID {
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return telego.ChatID{ID: id}
	}
	return telego.ChatID{Username: config.DisplayChannel(ref)}
}

package relay

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tinyland-inc/rainrelay/cmd/rainrelay/internal"
	"github.com/tinyland-inc/rainrelay/pkg/bus"
	"github.com/tinyland-inc/rainrelay/pkg/channels"
	"github.com/tinyland-inc/rainrelay/pkg/classify"
	"github.com/tinyland-inc/rainrelay/pkg/config"
	"github.com/tinyland-inc/rainrelay/pkg/convert"
	"github.com/tinyland-inc/rainrelay/pkg/dedup"
	"github.com/tinyland-inc/rainrelay/pkg/extract"
	"github.com/tinyland-inc/rainrelay/pkg/format"
	"github.com/tinyland-inc/rainrelay/pkg/logger"
	"github.com/tinyland-inc/rainrelay/pkg/rates"
	relayctl "github.com/tinyland-inc/rainrelay/pkg/relay"
)

const shutdownGrace = 10 * time.Second

func relayCmd(debug bool) error {
	if debug {
		logger.SetLevel(logger.DEBUG)
		fmt.Println("🔍 Debug mode enabled")
	}

	cfg, err := internal.LoadConfig()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	events := bus.NewEventBus()

	telegram, err := channels.NewTelegramChannel(cfg.Telegram, events)
	if err != nil {
		return fmt.Errorf("error creating telegram channel: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := telegram.Resolve(ctx); err != nil {
		return fmt.Errorf("error resolving channels: %w", err)
	}

	rateCache := rates.NewCache(rates.Config{
		Endpoint: cfg.Rates.Endpoint,
		Currency: cfg.Rates.Currency,
		TTL:      time.Duration(cfg.Rates.TTLSeconds) * time.Second,
		Timeout:  time.Duration(cfg.Rates.TimeoutSeconds) * time.Second,
		Fallback: cfg.Rates.Fallback,
	})

	controller := relayctl.NewController(
		classify.NewDefault(),
		extract.New(),
		convert.New(rateCache, cfg.Rates.Symbol),
		format.NewRenderer(),
		dedup.NewGuard(cfg.Relay.DedupMaxEntries, cfg.Relay.DedupEvictBatch),
		telegram,
		relayctl.Options{
			TargetChatID: telegram.TargetChatID(),
			SendDelay:    time.Duration(cfg.Relay.SendDelayMS) * time.Millisecond,
		},
	)

	if err := telegram.Start(ctx); err != nil {
		return fmt.Errorf("error starting telegram channel: %w", err)
	}

	relayDone := make(chan struct{})
	go func() {
		defer close(relayDone)
		controller.Run(ctx, events)
	}()

	fmt.Printf("✓ Relaying %s → %s\n",
		config.DisplayChannel(cfg.Telegram.Source),
		config.DisplayChannel(cfg.Telegram.Target))
	fmt.Println("Press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	fmt.Println("\nShutting down...")

	// Stop accepting new events; let an in-flight delivery finish or
	// abort within the grace period.
	events.Close()

	graceCtx, graceCancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer graceCancel()

	if err := telegram.Stop(graceCtx); err != nil {
		logger.WarnCF("relay", "Telegram channel stop", map[string]any{"error": err.Error()})
	}

	select {
	case <-relayDone:
	case <-graceCtx.Done():
		cancel() // abort the in-flight delivery
		<-relayDone
	}

	fmt.Println("✓ Relay stopped")
	return nil
}

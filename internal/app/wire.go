package app

import (
	"fmt"
	"log/slog"

	"github.com/hyperwatch/hyperwatch/internal/bot"
	"github.com/hyperwatch/hyperwatch/internal/cache"
	"github.com/hyperwatch/hyperwatch/internal/config"
	"github.com/hyperwatch/hyperwatch/internal/monitor"
	"github.com/hyperwatch/hyperwatch/internal/notify"
	"github.com/hyperwatch/hyperwatch/internal/platform/hyperliquid"
	"github.com/hyperwatch/hyperwatch/internal/retry"
)

// Dependencies bundles the constructed components. Wire builds them;
// the App modes run them.
type Dependencies struct {
	Client      *hyperliquid.Client
	Cache       *cache.Cache
	Dispatcher  *notify.Dispatcher
	Coordinator *monitor.Coordinator
	Bot         *bot.Bot
}

// Wire constructs all components from the given configuration. The API
// client and the dispatcher share one retry policy so backoff behaves
// identically on both sides of the pipeline.
func Wire(cfg config.Config, logger *slog.Logger) (*Dependencies, error) {
	policy := retry.Policy{
		MaxAttempts: cfg.Hyperliquid.MaxRetries,
		BaseDelay:   cfg.Hyperliquid.RetryBaseDelay.Duration,
	}

	client := hyperliquid.NewClient(
		cfg.Hyperliquid.APIURL,
		cfg.Hyperliquid.WalletAddress,
		hyperliquid.Options{
			Timeout: cfg.Hyperliquid.RequestTimeout.Duration,
			Policy:  policy,
		},
		logger,
	)

	dataCache := cache.New(cache.Options{
		StaleFallback: cfg.Monitor.StaleFallback,
		MaxStale:      cfg.Monitor.MaxStale.Duration,
	})

	dispatcher := notify.NewDispatcher(
		notify.NewTelegramSender(cfg.Telegram.BotToken),
		policy,
		logger,
	)

	coordinator := monitor.New(monitor.Config{
		ChatID:          cfg.Telegram.ChatID,
		RefreshInterval: cfg.Monitor.RefreshInterval.Duration,
		CacheTTL:        cfg.Monitor.CacheTTL.Duration,
		PriceSymbols:    cfg.Monitor.PriceSymbols,
	}, client, dataCache, dispatcher, logger)

	commandBot, err := bot.New(cfg.Telegram.BotToken, cfg.Telegram.ChatID, coordinator, logger)
	if err != nil {
		return nil, fmt.Errorf("wire: telegram bot: %w", err)
	}

	return &Dependencies{
		Client:      client,
		Cache:       dataCache,
		Dispatcher:  dispatcher,
		Coordinator: coordinator,
		Bot:         commandBot,
	}, nil
}

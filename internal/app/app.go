// Package app provides the top-level application lifecycle for the
// monitor. It wires together the exchange client, cache, dispatcher,
// coordinator, and Telegram bot, and runs them until shutdown.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/hyperwatch/hyperwatch/internal/config"
)

// App is the root application object. It owns the configuration and
// logger; components are constructed in Wire and run in Run.
type App struct {
	cfg    config.Config
	logger *slog.Logger
}

// New creates a new App from the given configuration and logger.
func New(cfg config.Config, logger *slog.Logger) *App {
	return &App{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "app")),
	}
}

// Run wires all dependencies and starts the scheduled monitor loop and
// the Telegram command listener. It blocks until the context is
// cancelled or one of the goroutines fails.
func (a *App) Run(ctx context.Context) error {
	a.logger.InfoContext(ctx, "starting application",
		slog.String("wallet", a.cfg.Hyperliquid.WalletAddress),
		slog.Duration("refresh_interval", a.cfg.Monitor.RefreshInterval.Duration),
	)

	deps, err := Wire(a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("app: wire dependencies: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return deps.Coordinator.Run(ctx)
	})
	g.Go(func() error {
		return deps.Bot.Run(ctx)
	})
	return g.Wait()
}

// RunOnce wires dependencies, executes a single scheduled update cycle,
// and returns. Used by the -once flag for cron-style invocations.
func (a *App) RunOnce(ctx context.Context) error {
	a.logger.InfoContext(ctx, "running single update cycle")

	deps, err := Wire(a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("app: wire dependencies: %w", err)
	}

	deps.Coordinator.RunCycle(ctx)
	return nil
}

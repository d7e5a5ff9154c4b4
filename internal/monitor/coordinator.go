// Package monitor contains the scheduler/command coordinator: one
// component drives both the periodic refresh-and-notify cycle and
// on-demand chat commands, so each data category has a single fetch
// path with at most one request in flight at a time.
package monitor

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hyperwatch/hyperwatch/internal/cache"
	"github.com/hyperwatch/hyperwatch/internal/domain"
	"github.com/hyperwatch/hyperwatch/internal/format"
)

// DataSource is the read-only view of the exchange the coordinator
// needs. *hyperliquid.Client satisfies it.
type DataSource interface {
	ClearinghouseState(ctx context.Context) (domain.AccountSnapshot, error)
	UserFills(ctx context.Context) ([]domain.Fill, error)
	OpenOrders(ctx context.Context) ([]domain.OpenOrder, error)
	AllMids(ctx context.Context) (domain.PriceBook, error)
}

// MessageSender delivers formatted text to a chat target.
// *notify.Dispatcher satisfies it.
type MessageSender interface {
	Send(ctx context.Context, chatID, text string) error
}

// Command is an on-demand request routed through the coordinator.
type Command string

const (
	CommandPrices    Command = "prices"
	CommandPositions Command = "positions"
	CommandFills     Command = "fills"
	CommandOrders    Command = "orders"
	CommandHelp      Command = "help"
)

// Config holds the coordinator's schedule and cache parameters.
type Config struct {
	ChatID          string
	RefreshInterval time.Duration
	CacheTTL        time.Duration
	PriceSymbols    []string

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Coordinator runs the periodic cycle and serves commands. Both paths
// fetch through the same TTL cache, whose per-key single-flight
// guarantees that a command arriving while a scheduled fetch is in
// flight joins that fetch instead of duplicating it.
type Coordinator struct {
	cfg        Config
	source     DataSource
	cache      *cache.Cache
	dispatcher MessageSender
	logger     *slog.Logger
	now        func() time.Time
}

// New creates a Coordinator.
func New(cfg Config, source DataSource, c *cache.Cache, dispatcher MessageSender, logger *slog.Logger) *Coordinator {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Coordinator{
		cfg:        cfg,
		source:     source,
		cache:      c,
		dispatcher: dispatcher,
		logger:     logger.With(slog.String("component", "coordinator")),
		now:        now,
	}
}

// Run drives the periodic refresh-and-notify cycle until ctx is
// cancelled. The first cycle runs immediately. A failed cycle is logged
// and skipped; the loop keeps running.
func (c *Coordinator) Run(ctx context.Context) error {
	c.logger.InfoContext(ctx, "scheduled monitoring started",
		slog.Duration("interval", c.cfg.RefreshInterval),
	)

	ticker := time.NewTicker(c.cfg.RefreshInterval)
	defer ticker.Stop()

	c.RunCycle(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			c.RunCycle(ctx)
		}
	}
}

// RunCycle executes one scheduled update: force-refresh the account
// snapshot, format it, and dispatch it to the configured chat. On fetch
// failure nothing is sent; the formatter only ever sees a fully
// successful fetch.
func (c *Coordinator) RunCycle(ctx context.Context) {
	snap, err := c.snapshot(ctx, 0)
	if err != nil {
		c.logger.ErrorContext(ctx, "scheduled update fetch failed, skipping tick",
			slog.String("error", err.Error()),
		)
		return
	}

	text := format.Snapshot(snap.Summary, snap.Positions, c.now(), true)
	if err := c.dispatcher.Send(ctx, c.cfg.ChatID, text); err != nil {
		c.logger.ErrorContext(ctx, "scheduled update delivery failed",
			slog.String("error", err.Error()),
		)
		return
	}

	c.logger.InfoContext(ctx, "scheduled update delivered",
		slog.Int("positions", len(snap.Positions)),
	)
}

// HandleCommand runs one on-demand cycle for cmd and dispatches the
// reply to chatID. Commands read through the cache with the configured
// TTL, so a reply shortly after a scheduled update reuses its data. A
// fetch failure produces a user-visible error message, never partial
// output.
func (c *Coordinator) HandleCommand(ctx context.Context, chatID string, cmd Command) error {
	logger := c.logger.With(
		slog.String("request_id", uuid.NewString()),
		slog.String("command", string(cmd)),
	)
	logger.InfoContext(ctx, "handling command")

	var text string
	switch cmd {
	case CommandPrices:
		book, err := c.priceBook(ctx, c.cfg.CacheTTL)
		if err != nil {
			logger.ErrorContext(ctx, "command fetch failed", slog.String("error", err.Error()))
			text = format.CommandFailure("price data")
		} else {
			text = format.Prices(book, c.cfg.PriceSymbols, c.now())
		}

	case CommandPositions:
		snap, err := c.snapshot(ctx, c.cfg.CacheTTL)
		if err != nil {
			logger.ErrorContext(ctx, "command fetch failed", slog.String("error", err.Error()))
			text = format.CommandFailure("position data")
		} else {
			text = format.Snapshot(snap.Summary, snap.Positions, c.now(), false)
		}

	case CommandFills:
		fills, err := cache.GetOrFetch(ctx, c.cache, string(domain.CategoryFills), c.cfg.CacheTTL, c.source.UserFills)
		if err != nil {
			logger.ErrorContext(ctx, "command fetch failed", slog.String("error", err.Error()))
			text = format.CommandFailure("fill data")
		} else {
			text = format.Fills(fills, c.now())
		}

	case CommandOrders:
		orders, err := cache.GetOrFetch(ctx, c.cache, string(domain.CategoryOpenOrders), c.cfg.CacheTTL, c.source.OpenOrders)
		if err != nil {
			logger.ErrorContext(ctx, "command fetch failed", slog.String("error", err.Error()))
			text = format.CommandFailure("open order data")
		} else {
			text = format.OpenOrders(orders, c.now())
		}

	case CommandHelp:
		text = format.Help(c.cfg.PriceSymbols, c.cfg.RefreshInterval)

	default:
		text = format.Unknown("/" + string(cmd))
	}

	return c.dispatcher.Send(ctx, chatID, text)
}

// snapshot fetches the clearinghouse state through the cache and merges
// current mark prices into the positions. A failed price lookup leaves
// mark prices at the neutral zero rather than failing the snapshot.
func (c *Coordinator) snapshot(ctx context.Context, ttl time.Duration) (domain.AccountSnapshot, error) {
	snap, err := cache.GetOrFetch(ctx, c.cache, string(domain.CategoryClearinghouse), ttl, c.source.ClearinghouseState)
	if err != nil {
		return domain.AccountSnapshot{}, err
	}
	if len(snap.Positions) == 0 {
		return snap, nil
	}

	book, err := c.priceBook(ctx, max(ttl, c.cfg.CacheTTL))
	if err != nil {
		c.logger.WarnContext(ctx, "mark price lookup failed, positions shown without marks",
			slog.String("error", err.Error()),
		)
		return snap, nil
	}

	// Copy before merging so the cached snapshot stays untouched.
	positions := make([]domain.Position, len(snap.Positions))
	copy(positions, snap.Positions)
	for i := range positions {
		if q, ok := book.Quote(positions[i].Symbol); ok {
			positions[i].MarkPrice = q.Price
		}
	}
	snap.Positions = positions
	return snap, nil
}

func (c *Coordinator) priceBook(ctx context.Context, ttl time.Duration) (domain.PriceBook, error) {
	return cache.GetOrFetch(ctx, c.cache, string(domain.CategoryPrices), ttl, c.source.AllMids)
}

// Package notify delivers formatted messages to the chat channel. The
// Dispatcher wraps a Sender with the shared retry policy and an outbound
// rate limiter; transient delivery failures are retried with backoff,
// permanent ones surface immediately.
package notify

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/hyperwatch/hyperwatch/internal/retry"
)

// Sender is the interface a delivery channel must implement.
type Sender interface {
	// Send delivers text to the given chat target.
	Send(ctx context.Context, chatID, text string) error
	// Name returns a human-readable identifier for the sender.
	Name() string
}

// Dispatcher sends messages through a Sender with retry and rate
// limiting. Telegram allows roughly one message per second per chat, so
// the default limiter paces sends accordingly.
type Dispatcher struct {
	sender  Sender
	policy  retry.Policy
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewDispatcher creates a Dispatcher around the given sender.
func NewDispatcher(sender Sender, policy retry.Policy, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		sender:  sender,
		policy:  policy,
		limiter: rate.NewLimiter(rate.Every(time.Second), 3),
		logger:  logger.With(slog.String("component", "dispatcher")),
	}
}

// Send delivers text to chatID, retrying transient failures under the
// shared policy. Permanent failures are returned without retry.
func (d *Dispatcher) Send(ctx context.Context, chatID, text string) error {
	if err := d.limiter.Wait(ctx); err != nil {
		return err
	}

	err := d.policy.Do(ctx, func(ctx context.Context) error {
		return d.sender.Send(ctx, chatID, text)
	})
	if err != nil {
		d.logger.ErrorContext(ctx, "message delivery failed",
			slog.String("sender", d.sender.Name()),
			slog.String("error", err.Error()),
		)
		return err
	}

	d.logger.DebugContext(ctx, "message delivered",
		slog.String("sender", d.sender.Name()),
		slog.Int("bytes", len(text)),
	)
	return nil
}

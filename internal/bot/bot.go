// Package bot is the inbound Telegram command listener. It parses
// commands and inline-button callbacks from the configured chat and
// routes them through the coordinator; all data replies go out through
// the coordinator's dispatcher so scheduled and on-demand paths share
// one delivery pipeline.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/hyperwatch/hyperwatch/internal/format"
	"github.com/hyperwatch/hyperwatch/internal/monitor"
)

// Bot wraps the Telegram long-polling client.
type Bot struct {
	api    *tgbot.Bot
	coord  *monitor.Coordinator
	chatID string
	logger *slog.Logger
}

// New creates the bot for the given token. Only messages from chatID
// are honored.
func New(token, chatID string, coord *monitor.Coordinator, logger *slog.Logger) (*Bot, error) {
	b := &Bot{
		coord:  coord,
		chatID: chatID,
		logger: logger.With(slog.String("component", "bot")),
	}

	api, err := tgbot.New(token, tgbot.WithDefaultHandler(b.handle))
	if err != nil {
		return nil, fmt.Errorf("bot: create client: %w", err)
	}
	b.api = api
	return b, nil
}

// Run registers the command list and processes updates until ctx is
// cancelled.
func (b *Bot) Run(ctx context.Context) error {
	if ok, err := b.api.SetMyCommands(ctx, b.commands()); err != nil {
		return fmt.Errorf("bot: set commands: %w", err)
	} else if !ok {
		return fmt.Errorf("bot: could not set bot commands")
	}

	b.logger.InfoContext(ctx, "telegram bot started")
	b.api.Start(ctx)
	return ctx.Err()
}

func (b *Bot) commands() *tgbot.SetMyCommandsParams {
	return &tgbot.SetMyCommandsParams{
		Commands: []models.BotCommand{
			{Command: "prices", Description: "Current token prices"},
			{Command: "positions", Description: "Positions and account summary"},
			{Command: "fills", Description: "Recent order fills"},
			{Command: "orders", Description: "Open orders"},
			{Command: "menu", Description: "Show the button menu"},
			{Command: "help", Description: "Show available commands"},
		},
	}
}

func (b *Bot) handle(ctx context.Context, api *tgbot.Bot, update *models.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.Text != "":
		b.handleMessage(ctx, update.Message)
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *models.Message) {
	chatID := strconv.FormatInt(msg.Chat.ID, 10)
	if chatID != b.chatID {
		b.logger.WarnContext(ctx, "ignoring message from unknown chat",
			slog.String("chat_id", chatID),
		)
		return
	}

	text := strings.TrimSpace(strings.ToLower(msg.Text))
	b.logger.InfoContext(ctx, "received message", slog.String("text", text))
	b.route(ctx, chatID, text)
}

func (b *Bot) handleCallback(ctx context.Context, q *models.CallbackQuery) {
	// Acknowledge first so the client drops its loading spinner.
	if _, err := b.api.AnswerCallbackQuery(ctx, &tgbot.AnswerCallbackQueryParams{
		CallbackQueryID: q.ID,
	}); err != nil {
		b.logger.WarnContext(ctx, "answer callback query failed",
			slog.String("error", err.Error()),
		)
	}

	chatID := b.chatID
	if q.Message.Message != nil {
		chatID = strconv.FormatInt(q.Message.Message.Chat.ID, 10)
	}
	if chatID != b.chatID {
		b.logger.WarnContext(ctx, "ignoring callback from unknown chat",
			slog.String("chat_id", chatID),
		)
		return
	}

	b.logger.InfoContext(ctx, "received callback", slog.String("data", q.Data))
	b.route(ctx, chatID, q.Data)
}

// route maps a command string to a coordinator cycle. Command text may
// carry a @botname suffix, which is stripped.
func (b *Bot) route(ctx context.Context, chatID, text string) {
	if !strings.HasPrefix(text, "/") {
		return
	}
	cmd := strings.Fields(text)[0]
	if at := strings.Index(cmd, "@"); at > 0 {
		cmd = cmd[:at]
	}

	var err error
	switch cmd {
	case "/prices":
		err = b.coord.HandleCommand(ctx, chatID, monitor.CommandPrices)
	case "/position", "/positions":
		err = b.coord.HandleCommand(ctx, chatID, monitor.CommandPositions)
	case "/fills":
		err = b.coord.HandleCommand(ctx, chatID, monitor.CommandFills)
	case "/orders":
		err = b.coord.HandleCommand(ctx, chatID, monitor.CommandOrders)
	case "/help":
		err = b.coord.HandleCommand(ctx, chatID, monitor.CommandHelp)
	case "/start", "/menu":
		err = b.sendMenu(ctx, chatID)
	default:
		err = b.coord.HandleCommand(ctx, chatID, monitor.Command(strings.TrimPrefix(cmd, "/")))
	}
	if err != nil {
		b.logger.ErrorContext(ctx, "command handling failed",
			slog.String("command", cmd),
			slog.String("error", err.Error()),
		)
	}
}

// sendMenu sends the inline-keyboard menu. This goes through the bot
// API directly because the dispatcher's plain sendMessage path has no
// notion of reply markup.
func (b *Bot) sendMenu(ctx context.Context, chatID string) error {
	keyboard := &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{
				{Text: "📈 Prices", CallbackData: "/prices"},
				{Text: "📊 Positions", CallbackData: "/positions"},
			},
			{
				{Text: "📑 Fills", CallbackData: "/fills"},
				{Text: "🧾 Orders", CallbackData: "/orders"},
			},
			{
				{Text: "ℹ️ Help", CallbackData: "/help"},
			},
		},
	}

	_, err := b.api.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID:      chatID,
		Text:        format.Menu(),
		ParseMode:   "Markdown",
		ReplyMarkup: keyboard,
	})
	if err != nil {
		return fmt.Errorf("bot: send menu: %w", err)
	}
	return nil
}

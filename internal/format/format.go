// Package format renders the display model into Telegram-ready Markdown
// text. Every function is pure: the output depends only on its inputs,
// including the timestamp, so the same data always yields byte-identical
// messages.
package format

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/hyperwatch/hyperwatch/internal/domain"
)

var printer = message.NewPrinter(language.English)

// usd renders a dollar amount with thousands grouping, e.g. "1,234.56".
func usd(v float64) string { return printer.Sprintf("%.2f", v) }

// qty renders a contract size with four decimals.
func qty(v float64) string { return printer.Sprintf("%.4f", v) }

func footer(at time.Time) string {
	return fmt.Sprintf("🕐 *Updated*: %s UTC", at.UTC().Format("15:04:05"))
}

// Snapshot renders the account summary block followed by open positions
// in API order and a UTC timestamp footer. Scheduled and on-demand
// triggers get different headers.
func Snapshot(sum domain.AccountSummary, positions []domain.Position, at time.Time, scheduled bool) string {
	var b strings.Builder

	if scheduled {
		b.WriteString("🔥 *Hyperliquid Positions Update*\n\n")
	} else {
		b.WriteString("📊 *Hyperliquid Position Summary*\n\n")
	}

	b.WriteString("📊 *Account Summary*\n")
	fmt.Fprintf(&b, "• Account Equity: $%s\n", usd(sum.AccountValue))
	fmt.Fprintf(&b, "• Total Raw USD: $%s\n", usd(sum.TotalRawUSD))
	fmt.Fprintf(&b, "• Total Notional: $%s\n", usd(sum.TotalNotional))
	fmt.Fprintf(&b, "• Margin Used: $%s\n", usd(sum.TotalMarginUsed))
	fmt.Fprintf(&b, "• Cross Margin Ratio: %.2f%%\n", sum.CrossMarginRatio())
	fmt.Fprintf(&b, "• Cross Leverage: %.2fx\n\n", sum.CrossLeverage())

	if len(positions) == 0 {
		b.WriteString("📈 *No Open Positions*\n\n")
	} else {
		fmt.Fprintf(&b, "📈 *Open Positions (%d)*\n\n", len(positions))
		for _, pos := range positions {
			writePosition(&b, pos)
		}
	}

	b.WriteString(footer(at))
	return b.String()
}

func writePosition(b *strings.Builder, pos domain.Position) {
	pnl := pos.UnrealizedPnL
	pnlPct := pos.PnLPercent()
	sign := ""
	emoji := "🔴"
	if pnl >= 0 {
		sign = "+"
		emoji = "🟢"
	}

	fmt.Fprintf(b, "*%s* (%s)\n", pos.Symbol, pos.Side)
	fmt.Fprintf(b, "• Size: %s %s\n", qty(pos.Size), pos.Symbol)
	fmt.Fprintf(b, "• Entry: $%s | Mark: $%s\n", usd(pos.EntryPrice), usd(pos.MarkPrice))
	fmt.Fprintf(b, "• Unrealized PnL: %s *%s$%s (%s%.2f%%)*\n", emoji, sign, usd(pnl), sign, pnlPct)
	fmt.Fprintf(b, "• Liquidation: $%s\n", usd(pos.LiqPrice))
	fmt.Fprintf(b, "• Margin Required: $%s\n", usd(pos.MarginUsed))
	fmt.Fprintf(b, "• Leverage: %.1fx\n\n", pos.Leverage)
}

// Prices renders quotes for the configured symbols in their configured
// order, with a trailing section naming symbols the feed had no data
// for.
func Prices(book domain.PriceBook, symbols []string, at time.Time) string {
	var found []string
	var missing []string

	var b strings.Builder
	b.WriteString("📈 *Current Token Prices*\n\n")

	for _, symbol := range symbols {
		q, ok := book.Quote(symbol)
		if !ok {
			missing = append(missing, symbol)
			continue
		}
		found = append(found, symbol)
		fmt.Fprintf(&b, "• *%s*: $%s\n", q.Symbol, usd(q.Price))
	}

	if len(found) == 0 {
		return "❌ No price data available for configured symbols."
	}

	if len(missing) > 0 {
		fmt.Fprintf(&b, "\n⚠️ *No data for*: %s\n", strings.Join(missing, ", "))
	}

	b.WriteString("\n")
	b.WriteString(footer(at))
	return b.String()
}

// Fills renders the recent fills list, newest first.
func Fills(fills []domain.Fill, at time.Time) string {
	if len(fills) == 0 {
		return "📑 *Recent Fills*\n\n❌ No recent fills found."
	}

	var b strings.Builder
	b.WriteString("📑 *Recent Order Fills*\n\n")

	for _, fill := range fills {
		roleEmoji := "🔸"
		switch fill.Role {
		case domain.FillRoleTaker:
			roleEmoji = "🔹"
		case domain.FillRoleMaker:
			roleEmoji = "🔻"
		}

		pnlEmoji := "⚪"
		pnlSign := ""
		switch {
		case fill.RealizedPnL > 0:
			pnlEmoji = "🟢"
			pnlSign = "+"
		case fill.RealizedPnL < 0:
			pnlEmoji = "🔴"
		}

		fmt.Fprintf(&b, "⏰ *%s*\n", fill.Time.UTC().Format("01/02/2006 - 15:04:05"))
		fmt.Fprintf(&b, "%s *%s* | %s\n", roleEmoji, fill.Symbol, fill.Role)
		fmt.Fprintf(&b, "💰 Price: $%s | Size: %s %s\n", usd(fill.Price), qty(fill.Size), fill.Symbol)
		fmt.Fprintf(&b, "📊 Trade Value: $%s USDC\n", usd(fill.Value()))
		fmt.Fprintf(&b, "💸 Fee: $%s USDC\n", printer.Sprintf("%.4f", fill.Fee))
		fmt.Fprintf(&b, "%s Closed PnL: %s$%s USDC\n\n", pnlEmoji, pnlSign, printer.Sprintf("%.4f", fill.RealizedPnL))
	}

	b.WriteString(footer(at))
	return b.String()
}

// OpenOrders renders the resting orders list.
func OpenOrders(orders []domain.OpenOrder, at time.Time) string {
	if len(orders) == 0 {
		return "🧾 *Open Orders*\n\n❌ No open orders found."
	}

	var b strings.Builder
	b.WriteString("🧾 *Open Orders*\n\n")

	for _, order := range orders {
		emoji := "🔸"
		switch order.Side {
		case domain.OrderSideBuy:
			emoji = "🟩"
		case domain.OrderSideSell:
			emoji = "🟥"
		}
		fmt.Fprintf(&b, "%s *%s* | %s %s @ $%s | %s\n",
			emoji, order.Symbol, order.Side, qty(order.Size), usd(order.Price), order.OrderType)
	}

	b.WriteString("\n")
	b.WriteString(footer(at))
	return b.String()
}

// Help renders the command reference.
func Help(symbols []string, refreshInterval time.Duration) string {
	var b strings.Builder
	b.WriteString("🤖 *Hyperwatch Commands*\n\n")
	b.WriteString("• /prices - Current token prices\n")
	b.WriteString("• /positions - Positions and account summary\n")
	b.WriteString("• /fills - Recent order fills\n")
	b.WriteString("• /orders - Open orders\n")
	b.WriteString("• /menu - Show the button menu\n")
	b.WriteString("• /help - Show this help message\n\n")
	fmt.Fprintf(&b, "📊 *Configured Price Symbols*: %s\n\n", strings.Join(symbols, ", "))
	fmt.Fprintf(&b, "🔄 *Scheduled Updates*: every %s", refreshInterval)
	return b.String()
}

// Menu renders the greeting shown above the inline command keyboard.
func Menu() string {
	return "🤖 *Hyperwatch Menu*\n\n" +
		"Use the buttons below to query your Hyperliquid account.\n\n" +
		"👇 *Select a command:*"
}

// Unknown renders the reply for an unrecognized command.
func Unknown(cmd string) string {
	return fmt.Sprintf("❓ Unknown command: `%s`\n\nSend /help for available commands.", cmd)
}

// CommandFailure renders the user-facing reply when a command's data
// fetch fails. It never exposes partial data.
func CommandFailure(what string) string {
	return fmt.Sprintf("❌ Unable to fetch %s from the Hyperliquid API right now. Please try again shortly.", what)
}

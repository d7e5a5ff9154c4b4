// Package domain defines the display model for the Hyperliquid account
// monitor. All values are rebuilt from each API response and are never
// persisted; the rest of the program treats them as read-only.
package domain

// Category identifies one remotely fetched data set. Positions and the
// account summary share the clearinghouse category because the exchange
// returns both in a single clearinghouseState response.
type Category string

const (
	CategoryClearinghouse Category = "clearinghouse"
	CategoryFills         Category = "fills"
	CategoryOpenOrders    Category = "openOrders"
	CategoryPrices        Category = "allMids"
)

// PositionSide is the direction of an open perpetual position.
type PositionSide string

const (
	SideLong  PositionSide = "LONG"
	SideShort PositionSide = "SHORT"
)

// PositionSideFromSize derives the side from the raw signed exchange
// size field. Callers must filter out zero-size entries first.
func PositionSideFromSize(rawSize float64) PositionSide {
	if rawSize > 0 {
		return SideLong
	}
	return SideShort
}

// Position is one open perpetual position. Size is always positive; the
// sign of the raw exchange size is captured in Side.
type Position struct {
	Symbol        string
	Side          PositionSide
	Size          float64
	EntryPrice    float64
	MarkPrice     float64
	LiqPrice      float64
	UnrealizedPnL float64
	MarginUsed    float64
	Leverage      float64
}

// PnLPercent returns the unrealized PnL as a percentage of the entry
// notional, or 0 when the notional is not positive.
func (p Position) PnLPercent() float64 {
	notional := p.Size * p.EntryPrice
	if notional <= 0 {
		return 0
	}
	return p.UnrealizedPnL / notional * 100
}

// AccountSummary holds account-wide margin metrics from the exchange's
// marginSummary block.
type AccountSummary struct {
	AccountValue    float64 // equity
	TotalRawUSD     float64
	TotalNotional   float64
	TotalMarginUsed float64
}

// CrossMarginRatio returns margin used over equity as a percentage, or
// 0 when equity is not positive.
func (a AccountSummary) CrossMarginRatio() float64 {
	if a.AccountValue <= 0 {
		return 0
	}
	return a.TotalMarginUsed / a.AccountValue * 100
}

// CrossLeverage returns total notional over equity, or 0 when equity is
// not positive.
func (a AccountSummary) CrossLeverage() float64 {
	if a.AccountValue <= 0 {
		return 0
	}
	return a.TotalNotional / a.AccountValue
}

// AccountSnapshot pairs the account summary with the open positions it
// was fetched alongside. Positions keep the API return order.
type AccountSnapshot struct {
	Summary   AccountSummary
	Positions []Position
}

package domain

// OrderSide is the buy/sell classification of a resting order. It is
// derived only from the exchange's explicit side-code field; an
// unrecognized or missing code yields OrderSideUnknown, never a default.
type OrderSide string

const (
	OrderSideBuy     OrderSide = "BUY"
	OrderSideSell    OrderSide = "SELL"
	OrderSideUnknown OrderSide = "UNKNOWN"
)

// ParseOrderSide maps the exchange side code to an OrderSide.
func ParseOrderSide(code string) OrderSide {
	switch code {
	case "A":
		return OrderSideBuy
	case "B":
		return OrderSideSell
	default:
		return OrderSideUnknown
	}
}

// OpenOrder is one resting, not-yet-executed order.
type OpenOrder struct {
	Symbol    string
	Side      OrderSide
	Size      float64
	Price     float64
	OrderType string // "LIMIT", "STOP", or exchange value as-is
}

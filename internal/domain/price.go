package domain

import "time"

// PriceQuote is a single symbol price at a point in time.
type PriceQuote struct {
	Symbol string
	Price  float64
	AsOf   time.Time
}

// PriceBook is the full mid-price map returned by the price feed,
// keyed by symbol.
type PriceBook struct {
	Mids map[string]float64
	AsOf time.Time
}

// Quote returns the quote for symbol and whether a positive price was
// present in the book.
func (b PriceBook) Quote(symbol string) (PriceQuote, bool) {
	px, ok := b.Mids[symbol]
	if !ok || px <= 0 {
		return PriceQuote{}, false
	}
	return PriceQuote{Symbol: symbol, Price: px, AsOf: b.AsOf}, true
}

package hyperliquid

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hyperwatch/hyperwatch/internal/domain"
)

// The info API returns almost every numeric field as a JSON string.
// Missing, null, or malformed values map to 0 — the display model treats
// zero as "not available" — except the symbol, whose absence invalidates
// the record.

// APIClearinghouseState is the raw clearinghouseState response.
type APIClearinghouseState struct {
	AssetPositions []APIAssetPosition `json:"assetPositions"`
	MarginSummary  APIMarginSummary   `json:"marginSummary"`
}

// APIAssetPosition wraps the nested position object.
type APIAssetPosition struct {
	Position APIPosition `json:"position"`
	Type     string      `json:"type"`
}

// APIPosition is the raw per-coin position record.
type APIPosition struct {
	Coin          string      `json:"coin"`
	Szi           string      `json:"szi"`
	EntryPx       string      `json:"entryPx"`
	LiquidationPx string      `json:"liquidationPx"`
	UnrealizedPnl string      `json:"unrealizedPnl"`
	MarginUsed    string      `json:"marginUsed"`
	Leverage      APILeverage `json:"leverage"`
}

// APILeverage is the nested leverage object; Value is a plain number.
type APILeverage struct {
	Type  string  `json:"type"`
	Value float64 `json:"value"`
}

// APIMarginSummary is the raw account-wide margin block.
type APIMarginSummary struct {
	AccountValue    string `json:"accountValue"`
	TotalNtlPos     string `json:"totalNtlPos"`
	TotalRawUsd     string `json:"totalRawUsd"`
	TotalMarginUsed string `json:"totalMarginUsed"`
}

// APIFill is one raw userFills entry. Time is epoch milliseconds.
type APIFill struct {
	Coin      string `json:"coin"`
	Side      string `json:"side"`
	Px        string `json:"px"`
	Sz        string `json:"sz"`
	Fee       string `json:"fee"`
	ClosedPnl string `json:"closedPnl"`
	Time      int64  `json:"time"`
}

// APIOpenOrder is one raw openOrders entry.
type APIOpenOrder struct {
	Coin      string `json:"coin"`
	Side      string `json:"side"`
	LimitPx   string `json:"limitPx"`
	Sz        string `json:"sz"`
	OrderType string `json:"orderType"`
	Timestamp int64  `json:"timestamp"`
}

// ToDomain converts a raw position to the display model. Zero-size
// positions return ok=false and should be skipped.
func (p APIPosition) ToDomain() (domain.Position, bool, error) {
	if p.Coin == "" {
		return domain.Position{}, false, fmt.Errorf("position: %w", domain.ErrMissingSymbol)
	}
	raw := parseFloat(p.Szi)
	if raw == 0 {
		return domain.Position{}, false, nil
	}
	size := raw
	if size < 0 {
		size = -size
	}
	return domain.Position{
		Symbol:        p.Coin,
		Side:          domain.PositionSideFromSize(raw),
		Size:          size,
		EntryPrice:    parseFloat(p.EntryPx),
		LiqPrice:      parseFloat(p.LiquidationPx),
		UnrealizedPnL: parseFloat(p.UnrealizedPnl),
		MarginUsed:    parseFloat(p.MarginUsed),
		Leverage:      p.Leverage.Value,
	}, true, nil
}

// ToDomain converts the raw margin block to the display model.
func (m APIMarginSummary) ToDomain() domain.AccountSummary {
	return domain.AccountSummary{
		AccountValue:    parseFloat(m.AccountValue),
		TotalRawUSD:     parseFloat(m.TotalRawUsd),
		TotalNotional:   parseFloat(m.TotalNtlPos),
		TotalMarginUsed: parseFloat(m.TotalMarginUsed),
	}
}

// ToDomain converts a raw fill to the display model.
func (f APIFill) ToDomain() (domain.Fill, error) {
	if f.Coin == "" {
		return domain.Fill{}, fmt.Errorf("fill: %w", domain.ErrMissingSymbol)
	}
	return domain.Fill{
		Symbol:      f.Coin,
		Role:        domain.ParseFillRole(f.Side),
		Size:        parseFloat(f.Sz),
		Price:       parseFloat(f.Px),
		Fee:         parseFloat(f.Fee),
		RealizedPnL: parseFloat(f.ClosedPnl),
		Time:        time.UnixMilli(f.Time).UTC(),
	}, nil
}

// ToDomain converts a raw open order to the display model. The buy/sell
// flag comes only from the side code; anything unrecognized stays
// unknown.
func (o APIOpenOrder) ToDomain() (domain.OpenOrder, error) {
	if o.Coin == "" {
		return domain.OpenOrder{}, fmt.Errorf("open order: %w", domain.ErrMissingSymbol)
	}
	orderType := strings.ToUpper(o.OrderType)
	if orderType == "" {
		orderType = "LIMIT"
	}
	return domain.OpenOrder{
		Symbol:    o.Coin,
		Side:      domain.ParseOrderSide(o.Side),
		Size:      parseFloat(o.Sz),
		Price:     parseFloat(o.LimitPx),
		OrderType: orderType,
	}, nil
}

// parseFloat maps missing or malformed numeric strings to the neutral 0.
func parseFloat(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

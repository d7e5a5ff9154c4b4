package hyperliquid

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperwatch/hyperwatch/internal/domain"
	"github.com/hyperwatch/hyperwatch/internal/retry"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "0xwallet", Options{
		Policy: retry.Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond},
	}, testLogger())
}

const clearinghouseBody = `{
	"assetPositions": [
		{"type": "oneWay", "position": {
			"coin": "BTC", "szi": "0.5", "entryPx": "60000.0",
			"liquidationPx": "45000.0", "unrealizedPnl": "1250.5",
			"marginUsed": "3000.0", "leverage": {"type": "cross", "value": 10}
		}},
		{"type": "oneWay", "position": {
			"coin": "ETH", "szi": "-2.0", "entryPx": "3000.0",
			"liquidationPx": null, "unrealizedPnl": "-150.0",
			"marginUsed": "600.0", "leverage": {"type": "isolated", "value": 5}
		}},
		{"type": "oneWay", "position": {
			"coin": "SOL", "szi": "0", "entryPx": "150.0",
			"unrealizedPnl": "0", "marginUsed": "0",
			"leverage": {"type": "cross", "value": 1}
		}},
		{"type": "oneWay", "position": {
			"coin": "", "szi": "1.0", "entryPx": "10.0",
			"unrealizedPnl": "0", "marginUsed": "0",
			"leverage": {"type": "cross", "value": 1}
		}}
	],
	"marginSummary": {
		"accountValue": "10000.0",
		"totalNtlPos": "36000.0",
		"totalRawUsd": "9500.0",
		"totalMarginUsed": "3600.0"
	}
}`

func TestClearinghouseState(t *testing.T) {
	var gotReq map[string]string
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Write([]byte(clearinghouseBody))
	})

	snap, err := client.ClearinghouseState(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "clearinghouseState", gotReq["type"])
	assert.Equal(t, "0xwallet", gotReq["user"])

	assert.InDelta(t, 10000.0, snap.Summary.AccountValue, 1e-9)
	assert.InDelta(t, 36000.0, snap.Summary.TotalNotional, 1e-9)
	assert.InDelta(t, 9500.0, snap.Summary.TotalRawUSD, 1e-9)
	assert.InDelta(t, 3600.0, snap.Summary.TotalMarginUsed, 1e-9)

	// Zero-size and missing-coin records are dropped.
	require.Len(t, snap.Positions, 2)

	btc := snap.Positions[0]
	assert.Equal(t, "BTC", btc.Symbol)
	assert.Equal(t, domain.SideLong, btc.Side)
	assert.InDelta(t, 0.5, btc.Size, 1e-9)
	assert.InDelta(t, 60000.0, btc.EntryPrice, 1e-9)
	assert.InDelta(t, 45000.0, btc.LiqPrice, 1e-9)
	assert.InDelta(t, 1250.5, btc.UnrealizedPnL, 1e-9)
	assert.InDelta(t, 10.0, btc.Leverage, 1e-9)

	eth := snap.Positions[1]
	assert.Equal(t, domain.SideShort, eth.Side)
	assert.InDelta(t, 2.0, eth.Size, 1e-9, "size is reported positive regardless of direction")
	assert.Zero(t, eth.LiqPrice, "null liquidationPx maps to 0")
}

func TestUserFillsSortedAndCapped(t *testing.T) {
	fills := make([]map[string]any, 0, 15)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 15; i++ {
		fills = append(fills, map[string]any{
			"coin":      "BTC",
			"side":      "A",
			"px":        "60000.0",
			"sz":        "0.1",
			"fee":       "1.5",
			"closedPnl": "0.0",
			"time":      base.Add(time.Duration(i) * time.Minute).UnixMilli(),
		})
	}

	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(fills)
	})

	got, err := client.UserFills(context.Background())
	require.NoError(t, err)
	require.Len(t, got, domain.MaxRecentFills)

	assert.Equal(t, base.Add(14*time.Minute), got[0].Time, "newest fill first")
	assert.Equal(t, domain.FillRoleTaker, got[0].Role)
	for i := 1; i < len(got); i++ {
		assert.False(t, got[i].Time.After(got[i-1].Time))
	}
}

func TestOpenOrders(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"coin": "BTC", "side": "A", "limitPx": "58000.0", "sz": "0.25", "orderType": "limit"},
			{"coin": "ETH", "side": "B", "limitPx": "3100.0", "sz": "1.0", "orderType": ""},
			{"coin": "SOL", "side": "X", "limitPx": "140.0", "sz": "10", "orderType": "stop"}
		]`))
	})

	orders, err := client.OpenOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 3)

	assert.Equal(t, domain.OrderSideBuy, orders[0].Side)
	assert.Equal(t, "LIMIT", orders[0].OrderType)
	assert.Equal(t, domain.OrderSideSell, orders[1].Side)
	assert.Equal(t, "LIMIT", orders[1].OrderType, "missing order type defaults to LIMIT")
	assert.Equal(t, domain.OrderSideUnknown, orders[2].Side)
	assert.Equal(t, "STOP", orders[2].OrderType)
}

func TestAllMidsSkipsIndexKeys(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "allMids", req["type"])
		w.Write([]byte(`{"BTC": "65000.5", "ETH": "3200.25", "@1": "1.0", "BAD": "oops", "ZERO": "0"}`))
	})

	book, err := client.AllMids(context.Background())
	require.NoError(t, err)

	assert.Len(t, book.Mids, 2)
	assert.InDelta(t, 65000.5, book.Mids["BTC"], 1e-9)
	assert.InDelta(t, 3200.25, book.Mids["ETH"], 1e-9)
	assert.NotContains(t, book.Mids, "@1")
	assert.NotContains(t, book.Mids, "BAD")
	assert.NotContains(t, book.Mids, "ZERO")
	assert.False(t, book.AsOf.IsZero())
}

func TestRetryOnServerError(t *testing.T) {
	var calls atomic.Int64
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "upstream hiccup", http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"BTC": "65000.0"}`))
	})

	book, err := client.AllMids(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), calls.Load())
	assert.InDelta(t, 65000.0, book.Mids["BTC"], 1e-9)
}

func TestNoRetryOnBadRequest(t *testing.T) {
	var calls atomic.Int64
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad payload", http.StatusBadRequest)
	})

	_, err := client.AllMids(context.Background())
	require.Error(t, err)
	assert.Equal(t, int64(1), calls.Load(), "4xx other than 429 must not be retried")
	assert.False(t, domain.IsTransient(err))
}

func TestErrorClassification(t *testing.T) {
	cases := []struct {
		status    int
		transient bool
		sentinel  error
	}{
		{http.StatusTooManyRequests, true, domain.ErrRateLimited},
		{http.StatusUnauthorized, false, domain.ErrUnauthorized},
		{http.StatusForbidden, false, domain.ErrUnauthorized},
		{http.StatusNotFound, false, domain.ErrNotFound},
		{http.StatusBadGateway, true, nil},
	}

	for _, tc := range cases {
		client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", tc.status)
		})

		_, err := client.AllMids(context.Background())
		require.Error(t, err, "status %d", tc.status)
		assert.Equal(t, tc.transient, domain.IsTransient(err), "status %d", tc.status)
		if tc.sentinel != nil {
			assert.ErrorIs(t, err, tc.sentinel, "status %d", tc.status)
		}
	}
}

func TestRetriesExhausted(t *testing.T) {
	var calls atomic.Int64
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "down", http.StatusServiceUnavailable)
	})

	_, err := client.AllMids(context.Background())
	require.Error(t, err)
	assert.Equal(t, int64(3), calls.Load())
}

func TestDecodeFailure(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	})

	_, err := client.ClearinghouseState(context.Background())
	require.Error(t, err)

	var fe *domain.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, domain.CategoryClearinghouse, fe.Category)
	assert.False(t, fe.Transient)
}

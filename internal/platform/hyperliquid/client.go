// Package hyperliquid implements the REST client for the Hyperliquid
// info API. Every query is a POST to a single endpoint with a "type"
// discriminator; responses are normalized into the display model.
package hyperliquid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hyperwatch/hyperwatch/internal/domain"
	"github.com/hyperwatch/hyperwatch/internal/retry"
)

// Client is the read-only info-API client. It applies the shared retry
// policy to every request and classifies failures as transient or
// permanent.
type Client struct {
	baseURL    string
	user       string
	httpClient *http.Client
	policy     retry.Policy
	logger     *slog.Logger
}

// Options tune the client beyond its defaults.
type Options struct {
	Timeout time.Duration
	Policy  retry.Policy
}

// NewClient creates a Client for the given info endpoint and account
// address.
func NewClient(baseURL, user string, opts Options, logger *slog.Logger) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		user:       user,
		httpClient: &http.Client{Timeout: timeout},
		policy:     opts.Policy,
		logger:     logger.With(slog.String("component", "hyperliquid")),
	}
}

// ClearinghouseState returns the account summary and open positions.
// Mark prices are not populated here; the coordinator merges them from
// AllMids so both queries stay independently cacheable.
func (c *Client) ClearinghouseState(ctx context.Context) (domain.AccountSnapshot, error) {
	payload := map[string]string{"type": "clearinghouseState", "user": c.user}

	body, err := c.post(ctx, domain.CategoryClearinghouse, payload)
	if err != nil {
		return domain.AccountSnapshot{}, err
	}

	var state APIClearinghouseState
	if err := json.Unmarshal(body, &state); err != nil {
		return domain.AccountSnapshot{}, &domain.FetchError{
			Category: domain.CategoryClearinghouse,
			Err:      fmt.Errorf("decode clearinghouse state: %w", err),
		}
	}

	snap := domain.AccountSnapshot{Summary: state.MarginSummary.ToDomain()}
	for i := range state.AssetPositions {
		pos, ok, err := state.AssetPositions[i].Position.ToDomain()
		if err != nil {
			c.logger.WarnContext(ctx, "skipping invalid position record",
				slog.String("error", err.Error()),
			)
			continue
		}
		if !ok {
			continue
		}
		snap.Positions = append(snap.Positions, pos)
	}
	return snap, nil
}

// UserFills returns the most recent fills, newest first, capped at
// domain.MaxRecentFills.
func (c *Client) UserFills(ctx context.Context) ([]domain.Fill, error) {
	payload := map[string]string{"type": "userFills", "user": c.user}

	body, err := c.post(ctx, domain.CategoryFills, payload)
	if err != nil {
		return nil, err
	}

	var apiFills []APIFill
	if err := json.Unmarshal(body, &apiFills); err != nil {
		return nil, &domain.FetchError{
			Category: domain.CategoryFills,
			Err:      fmt.Errorf("decode fills: %w", err),
		}
	}

	fills := make([]domain.Fill, 0, len(apiFills))
	for i := range apiFills {
		fill, err := apiFills[i].ToDomain()
		if err != nil {
			c.logger.WarnContext(ctx, "skipping invalid fill record",
				slog.String("error", err.Error()),
			)
			continue
		}
		fills = append(fills, fill)
	}
	return domain.RecentFills(fills, domain.MaxRecentFills), nil
}

// OpenOrders returns the account's resting orders in API order.
func (c *Client) OpenOrders(ctx context.Context) ([]domain.OpenOrder, error) {
	payload := map[string]string{"type": "openOrders", "user": c.user}

	body, err := c.post(ctx, domain.CategoryOpenOrders, payload)
	if err != nil {
		return nil, err
	}

	var apiOrders []APIOpenOrder
	if err := json.Unmarshal(body, &apiOrders); err != nil {
		return nil, &domain.FetchError{
			Category: domain.CategoryOpenOrders,
			Err:      fmt.Errorf("decode open orders: %w", err),
		}
	}

	orders := make([]domain.OpenOrder, 0, len(apiOrders))
	for i := range apiOrders {
		order, err := apiOrders[i].ToDomain()
		if err != nil {
			c.logger.WarnContext(ctx, "skipping invalid order record",
				slog.String("error", err.Error()),
			)
			continue
		}
		orders = append(orders, order)
	}
	return orders, nil
}

// AllMids returns the mid-price map keyed by symbol. Index entries
// (keys starting with '@') and unparsable prices are skipped.
func (c *Client) AllMids(ctx context.Context) (domain.PriceBook, error) {
	payload := map[string]string{"type": "allMids"}

	body, err := c.post(ctx, domain.CategoryPrices, payload)
	if err != nil {
		return domain.PriceBook{}, err
	}

	var raw map[string]string
	if err := json.Unmarshal(body, &raw); err != nil {
		return domain.PriceBook{}, &domain.FetchError{
			Category: domain.CategoryPrices,
			Err:      fmt.Errorf("decode mids: %w", err),
		}
	}

	mids := make(map[string]float64, len(raw))
	for symbol, priceStr := range raw {
		if strings.HasPrefix(symbol, "@") {
			continue
		}
		if px := parseFloat(priceStr); px > 0 {
			mids[symbol] = px
		}
	}
	return domain.PriceBook{Mids: mids, AsOf: time.Now().UTC()}, nil
}

// --------------------------------------------------------------------------
// Internal helpers
// --------------------------------------------------------------------------

// post sends the JSON payload to the info endpoint under the shared
// retry policy. Transient failures are retried with backoff; permanent
// failures and exhausted retries surface as *domain.FetchError.
func (c *Client) post(ctx context.Context, cat domain.Category, payload any) ([]byte, error) {
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return nil, &domain.FetchError{Category: cat, Err: fmt.Errorf("marshal payload: %w", err)}
	}

	var respBody []byte
	err = c.policy.Do(ctx, func(ctx context.Context) error {
		b, err := c.postOnce(ctx, cat, reqBody)
		if err != nil {
			return err
		}
		respBody = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return respBody, nil
}

func (c *Client) postOnce(ctx context.Context, cat domain.Category, reqBody []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(reqBody))
	if err != nil {
		return nil, &domain.FetchError{Category: cat, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Network errors and client timeouts are transient.
		return nil, &domain.FetchError{Category: cat, Transient: true, Err: fmt.Errorf("http request: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.FetchError{Category: cat, Transient: true, Err: fmt.Errorf("read response: %w", err)}
	}

	if err := checkHTTPStatus(resp.StatusCode, body); err != nil {
		return nil, &domain.FetchError{
			Category:  cat,
			Transient: transientStatus(resp.StatusCode),
			Err:       err,
		}
	}
	return body, nil
}

// checkHTTPStatus maps non-2xx status codes to appropriate domain errors.
func checkHTTPStatus(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	bodyStr := string(body)
	switch statusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, bodyStr)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", domain.ErrUnauthorized, bodyStr)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", domain.ErrRateLimited, bodyStr)
	default:
		return fmt.Errorf("HTTP %d: %s", statusCode, bodyStr)
	}
}

// transientStatus reports whether a status code is worth retrying.
func transientStatus(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests || statusCode >= 500
}

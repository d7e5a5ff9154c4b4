package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hyperwatch/hyperwatch/internal/domain"
)

// TelegramSender delivers messages via the Telegram Bot API sendMessage
// method. Failures are classified: network errors, 429, and 5xx are
// transient; everything else (bad token, bad chat id) is permanent.
type TelegramSender struct {
	apiBase string
	token   string
	client  *http.Client
}

// NewTelegramSender creates a TelegramSender for the given bot token.
func NewTelegramSender(token string) *TelegramSender {
	return &TelegramSender{
		apiBase: "https://api.telegram.org",
		token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// newTelegramSenderForTest points the sender at a fake API base.
func newTelegramSenderForTest(apiBase, token string) *TelegramSender {
	s := NewTelegramSender(token)
	s.apiBase = apiBase
	return s
}

// Send posts a Markdown message to the given chat.
func (t *TelegramSender) Send(ctx context.Context, chatID, text string) error {
	url := fmt.Sprintf("%s/bot%s/sendMessage", t.apiBase, t.token)

	payload := map[string]string{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "Markdown",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return &domain.SendError{Err: fmt.Errorf("telegram: marshal payload: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return &domain.SendError{Err: fmt.Errorf("telegram: create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return &domain.SendError{Transient: true, Err: fmt.Errorf("telegram: send request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &domain.SendError{
			Transient: resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500,
			Err:       fmt.Errorf("telegram: unexpected status %d: %s", resp.StatusCode, string(respBody)),
		}
	}

	return nil
}

// Name returns the sender identifier.
func (t *TelegramSender) Name() string {
	return "telegram"
}

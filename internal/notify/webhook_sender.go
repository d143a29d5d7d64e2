package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/iridescentding/memoq-tickets-system/internal/domain"
)

// GenericWebhookSender posts the rendered message as JSON to an arbitrary
// endpoint. Recipient carries the target URL. Any 2xx response counts as
// delivered.
type GenericWebhookSender struct{}

func NewGenericWebhookSender() *GenericWebhookSender {
	return &GenericWebhookSender{}
}

func (s *GenericWebhookSender) Channel() domain.Channel {
	return domain.ChannelWebhook
}

func (s *GenericWebhookSender) Deliver(ctx context.Context, d Delivery) error {
	payload := map[string]string{
		"subject": d.Subject,
		"content": d.Body,
	}
	_, err := postJSON(ctx, d.Recipient, payload)
	return err
}

// httpClient is the shared client for all webhook-style channels.
var httpClient = &http.Client{Timeout: 15 * time.Second}

// postJSON posts a JSON payload and returns the response body. Non-2xx
// statuses are errors; provider-level rejections are left to the caller.
func postJSON(ctx context.Context, url string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode webhook payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return nil, fmt.Errorf("read webhook response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return body, fmt.Errorf("webhook returned status %d: %s", resp.StatusCode, truncate(string(body), 256))
	}
	return body, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/iridescentding/memoq-tickets-system/internal/domain"
)

// FeishuSender posts interactive-card messages to a feishu group bot webhook.
// Recipient carries the webhook URL.
type FeishuSender struct{}

func NewFeishuSender() *FeishuSender {
	return &FeishuSender{}
}

func (s *FeishuSender) Channel() domain.Channel {
	return domain.ChannelFeishu
}

func (s *FeishuSender) Deliver(ctx context.Context, d Delivery) error {
	content := d.Body
	if len(d.Mentions) > 0 {
		var tags []string
		for _, id := range d.Mentions {
			tags = append(tags, fmt.Sprintf(`<at user_id="%s"></at>`, id))
		}
		content = content + "\n" + strings.Join(tags, " ")
	}

	payload := map[string]any{
		"msg_type": "interactive",
		"card": map[string]any{
			"config": map[string]any{"wide_screen_mode": true},
			"header": map[string]any{
				"title":    map[string]any{"tag": "plain_text", "content": d.Subject},
				"template": "blue",
			},
			"elements": []any{
				map[string]any{
					"tag":  "div",
					"text": map[string]any{"tag": "lark_md", "content": content},
				},
			},
		},
	}

	body, err := postJSON(ctx, d.Recipient, payload)
	if err != nil {
		return err
	}

	// The bot API reports failures inside a 200 response. Older deployments
	// use StatusCode, newer ones code.
	var result struct {
		Code       *int   `json:"code"`
		StatusCode *int   `json:"StatusCode"`
		Msg        string `json:"msg"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("decode feishu response: %w", err)
	}
	if result.Code != nil && *result.Code != 0 {
		return fmt.Errorf("feishu rejected message: code=%d msg=%s", *result.Code, result.Msg)
	}
	if result.Code == nil && result.StatusCode != nil && *result.StatusCode != 0 {
		return fmt.Errorf("feishu rejected message: status=%d msg=%s", *result.StatusCode, result.Msg)
	}
	return nil
}

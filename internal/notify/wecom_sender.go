package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/iridescentding/memoq-tickets-system/internal/domain"
)

// WecomSender posts markdown messages to an enterprise wechat group bot
// webhook. Recipient carries the webhook URL.
type WecomSender struct{}

func NewWecomSender() *WecomSender {
	return &WecomSender{}
}

func (s *WecomSender) Channel() domain.Channel {
	return domain.ChannelEnterpriseWechat
}

func (s *WecomSender) Deliver(ctx context.Context, d Delivery) error {
	content := fmt.Sprintf("**%s**\n%s", d.Subject, d.Body)
	if len(d.Mentions) > 0 {
		var tags []string
		for _, id := range d.Mentions {
			tags = append(tags, fmt.Sprintf("<@%s>", id))
		}
		content = content + "\n" + strings.Join(tags, " ")
	}

	payload := map[string]any{
		"msgtype": "markdown",
		"markdown": map[string]any{
			"content": content,
		},
	}

	body, err := postJSON(ctx, d.Recipient, payload)
	if err != nil {
		return err
	}

	var result struct {
		ErrCode int    `json:"errcode"`
		ErrMsg  string `json:"errmsg"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("decode wecom response: %w", err)
	}
	if result.ErrCode != 0 {
		return fmt.Errorf("wecom rejected message: errcode=%d errmsg=%s", result.ErrCode, result.ErrMsg)
	}
	return nil
}

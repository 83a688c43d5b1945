// Package slack implements notifier.Notifier for Slack, over an incoming
// webhook or the chat.postMessage Web API.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/Strob0t/workflow-notify/internal/domain/message"
	"github.com/Strob0t/workflow-notify/internal/port/notifier"
)

const webhookProviderName = "slack-webhook"

// Notifier sends notifications to Slack via incoming webhook.
type Notifier struct {
	webhookURL string
	httpClient *http.Client
}

// NewNotifier creates a Slack notifier with the given webhook URL.
func NewNotifier(webhookURL string) *Notifier {
	return &Notifier{
		webhookURL: webhookURL,
		httpClient: http.DefaultClient,
	}
}

func (n *Notifier) Name() string { return webhookProviderName }

func (n *Notifier) Capabilities() notifier.Capabilities {
	return notifier.Capabilities{
		Blocks:          true,
		RequiresChannel: false,
	}
}

// slackMessage is the Slack Block Kit message payload. Channel is only used
// by the Web API; incoming webhooks are bound to a channel already.
type slackMessage struct {
	Channel string          `json:"channel,omitempty"`
	Text    string          `json:"text"`
	Blocks  []message.Block `json:"blocks"`
}

func newSlackMessage(channel string, n notifier.Notification) slackMessage {
	text := n.Text
	if text == "" {
		text = message.FallbackText(n.Blocks)
	}
	return slackMessage{Channel: channel, Text: text, Blocks: n.Blocks}
}

func (n *Notifier) Send(ctx context.Context, notification notifier.Notification) error {
	if n.webhookURL == "" {
		return notifier.ErrNotConfigured
	}

	body, err := json.Marshal(newSlackMessage("", notification))
	if err != nil {
		return fmt.Errorf("slack marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req) //nolint:gosec // webhook URL from trusted config
	if err != nil {
		return fmt.Errorf("slack send: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("slack webhook %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}

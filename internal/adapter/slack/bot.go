package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Strob0t/workflow-notify/internal/port/notifier"
)

const (
	botProviderName = "slack-bot"

	// DefaultAPIURL is the Slack Web API base URL.
	DefaultAPIURL = "https://slack.com/api"
)

// ErrChannelRequired is returned when the bot notifier has no channel to post to.
var ErrChannelRequired = errors.New("slack: channel ID is required to post with a bot token")

// BotNotifier posts notifications with chat.postMessage using a bot token.
type BotNotifier struct {
	apiURL     string
	token      string
	channel    string
	httpClient *http.Client
}

// NewBotNotifier creates a Slack bot notifier. An empty apiURL selects DefaultAPIURL.
func NewBotNotifier(apiURL, token, channel string) *BotNotifier {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	return &BotNotifier{
		apiURL:     strings.TrimSuffix(apiURL, "/"),
		token:      token,
		channel:    strings.TrimSpace(channel),
		httpClient: http.DefaultClient,
	}
}

func (n *BotNotifier) Name() string { return botProviderName }

func (n *BotNotifier) Capabilities() notifier.Capabilities {
	return notifier.Capabilities{
		Blocks:          true,
		RequiresChannel: true,
	}
}

// postMessageResponse is the envelope every Slack Web API method returns.
type postMessageResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
	TS    string `json:"ts"`
}

func (n *BotNotifier) Send(ctx context.Context, notification notifier.Notification) error {
	if n.token == "" {
		return notifier.ErrNotConfigured
	}
	if n.channel == "" {
		return ErrChannelRequired
	}

	body, err := json.Marshal(newSlackMessage(n.channel, notification))
	if err != nil {
		return fmt.Errorf("slack marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.apiURL+"/chat.postMessage", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+n.token)

	resp, err := n.httpClient.Do(req) //nolint:gosec // API URL from trusted config
	if err != nil {
		return fmt.Errorf("slack send: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("slack read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("slack API %d: %s", resp.StatusCode, string(respBody))
	}

	var out postMessageResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return fmt.Errorf("slack parse response: %w", err)
	}
	if !out.OK {
		return fmt.Errorf("slack chat.postMessage: %s", out.Error)
	}
	return nil
}

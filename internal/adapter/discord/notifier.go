// Package discord implements a notifier.Notifier for Discord webhooks.
package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/Strob0t/workflow-notify/internal/domain/message"
	"github.com/Strob0t/workflow-notify/internal/port/notifier"
)

const (
	providerName = "discord"

	maxDescription = 4096
)

// Notifier sends notifications to Discord via incoming webhook.
type Notifier struct {
	webhookURL string
	httpClient *http.Client
}

// NewNotifier creates a Discord notifier with the given webhook URL.
func NewNotifier(webhookURL string) *Notifier {
	return &Notifier{
		webhookURL: webhookURL,
		httpClient: http.DefaultClient,
	}
}

func (n *Notifier) Name() string { return providerName }

func (n *Notifier) Capabilities() notifier.Capabilities {
	return notifier.Capabilities{
		Blocks:          false,
		RequiresChannel: false,
	}
}

// discordWebhook is the Discord webhook payload with embeds.
type discordWebhook struct {
	Embeds []discordEmbed `json:"embeds"`
}

type discordEmbed struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url,omitempty"`
	Color       int    `json:"color"`
}

var (
	// Slack mrkdwn link: <url|label>
	slackLink = regexp.MustCompile(`<([^|<>]+)\|([^<>]*)>`)

	// Discord does not expand emoji shortcodes sent through webhooks.
	iconReplacer = strings.NewReplacer(
		message.IconSuccess, "✅",
		message.IconFailure, "❌",
		message.IconCancelled, "\U0001f6ab",
		message.IconNeutral, "➖",
		message.IconInProgress, "⏳",
		message.IconUnknown, "❔",
	)

	entityReplacer = strings.NewReplacer("&lt;", "<", "&gt;", ">", "&amp;", "&")
)

// toMarkdown converts Slack mrkdwn into Discord markdown.
func toMarkdown(s string) string {
	s = slackLink.ReplaceAllString(s, "[$2]($1)")
	s = iconReplacer.Replace(s)
	s = strings.ReplaceAll(s, "*", "**")
	return entityReplacer.Replace(s)
}

// toEmbed folds a block sequence into a single embed: the header becomes the
// title and every other block a paragraph of the description.
func toEmbed(notification notifier.Notification) discordEmbed {
	embed := discordEmbed{
		URL:   notification.Source,
		Color: levelColor(notification.Level),
	}

	var paragraphs []string
	for _, b := range notification.Blocks {
		switch {
		case b.Type == message.BlockHeader && b.Text != nil && embed.Title == "":
			embed.Title = iconReplacer.Replace(b.Text.Text)
		case b.Type == message.BlockDivider:
			paragraphs = append(paragraphs, "")
		case b.Text != nil:
			paragraphs = append(paragraphs, toMarkdown(b.Text.Text))
		case len(b.Elements) > 0:
			parts := make([]string, 0, len(b.Elements))
			for _, e := range b.Elements {
				parts = append(parts, toMarkdown(e.Text))
			}
			paragraphs = append(paragraphs, strings.Join(parts, " "))
		}
	}
	if embed.Title == "" {
		embed.Title = notification.Text
	}

	embed.Description = truncate(strings.Join(paragraphs, "\n"), maxDescription)
	return embed
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-1]) + "…"
}

func (n *Notifier) Send(ctx context.Context, notification notifier.Notification) error {
	if n.webhookURL == "" {
		return notifier.ErrNotConfigured
	}

	msg := discordWebhook{
		Embeds: []discordEmbed{toEmbed(notification)},
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("discord marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("discord request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req) //nolint:gosec // webhook URL from trusted config
	if err != nil {
		return fmt.Errorf("discord send: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	// Discord returns 204 on success
	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("discord API %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}

// levelColor returns Discord embed color integers for notification levels.
func levelColor(level string) int {
	switch level {
	case "success":
		return 0x2ECC71 // green
	case "error":
		return 0xE74C3C // red
	case "warning":
		return 0xF39C12 // orange
	default:
		return 0x3498DB // blue (info)
	}
}

// Package notifier defines the notification port (interface) and capabilities.
package notifier

import (
	"context"
	"errors"

	"github.com/Strob0t/workflow-notify/internal/domain/message"
)

// ErrNotConfigured is returned when a notifier is not properly configured.
var ErrNotConfigured = errors.New("notifier: not configured")

// Notification is the payload sent through a Notifier.
type Notification struct {
	Text   string          `json:"text"`   // plain-text fallback
	Blocks []message.Block `json:"blocks"` // rendered workflow report
	Level  string          `json:"level"`  // "info", "success", "warning", "error"
	Source string          `json:"source"` // link to the reported run
}

// Capabilities declares which features a notifier supports.
type Capabilities struct {
	Blocks          bool `json:"blocks"`
	RequiresChannel bool `json:"requires_channel"`
}

// Notifier is the port interface for sending notifications.
type Notifier interface {
	// Name returns the unique identifier for this notifier (e.g. "slack-webhook").
	Name() string

	// Capabilities returns what this notifier supports.
	Capabilities() Capabilities

	// Send delivers a notification.
	Send(ctx context.Context, notification Notification) error
}

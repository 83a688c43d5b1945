// Package nats implements a notifier that publishes rendered workflow reports
// to NATS JetStream for downstream consumers.
package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/Strob0t/workflow-notify/internal/port/notifier"
)

const (
	providerName   = "nats"
	streamName     = "WORKFLOW_NOTIFY"
	DefaultSubject = "workflow.reports"
)

// Notifier publishes notifications as JSON. The connection is opened on
// first use so that construction never blocks.
type Notifier struct {
	url     string
	subject string

	mu sync.Mutex
	nc *nats.Conn
	js jetstream.JetStream
}

// NewNotifier creates a NATS notifier. An empty subject uses DefaultSubject.
func NewNotifier(url, subject string) *Notifier {
	if subject == "" {
		subject = DefaultSubject
	}
	return &Notifier{url: url, subject: subject}
}

func (n *Notifier) Name() string { return providerName }

func (n *Notifier) Capabilities() notifier.Capabilities {
	return notifier.Capabilities{Blocks: true}
}

// connect establishes the connection and ensures the stream exists.
func (n *Notifier) connect(ctx context.Context) (jetstream.JetStream, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.js != nil {
		return n.js, nil
	}

	nc, err := nats.Connect(n.url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream init: %w", err)
	}

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     streamName,
		Subjects: []string{n.subject},
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream stream create: %w", err)
	}

	slog.DebugContext(ctx, "nats connected", "url", n.url, "stream", streamName)
	n.nc, n.js = nc, js
	return js, nil
}

// Send publishes the notification to the configured subject.
func (n *Notifier) Send(ctx context.Context, notification notifier.Notification) error {
	if n.url == "" {
		return notifier.ErrNotConfigured
	}

	js, err := n.connect(ctx)
	if err != nil {
		return err
	}

	data, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("nats: marshal: %w", err)
	}

	if _, err := js.Publish(ctx, n.subject, data); err != nil {
		return fmt.Errorf("nats publish %s: %w", n.subject, err)
	}
	return nil
}

// Close shuts down the NATS connection if one was opened.
func (n *Notifier) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.nc != nil {
		n.nc.Close()
		n.nc, n.js = nil, nil
	}
	return nil
}

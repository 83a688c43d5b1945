package nats

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/Strob0t/workflow-notify/internal/domain/message"
	"github.com/Strob0t/workflow-notify/internal/port/notifier"
)

var _ notifier.Notifier = (*Notifier)(nil)

func TestNotifierName(t *testing.T) {
	if n := NewNotifier("", ""); n.Name() != "nats" {
		t.Fatalf("expected 'nats', got %q", n.Name())
	}
}

func TestDefaultSubject(t *testing.T) {
	if n := NewNotifier("nats://localhost:4222", ""); n.subject != DefaultSubject {
		t.Fatalf("expected default subject, got %q", n.subject)
	}
	if n := NewNotifier("nats://localhost:4222", "ci.done"); n.subject != "ci.done" {
		t.Fatalf("expected custom subject, got %q", n.subject)
	}
}

func TestSendNotConfigured(t *testing.T) {
	n := NewNotifier("", "")
	if err := n.Send(context.Background(), notifier.Notification{}); !errors.Is(err, notifier.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestCloseWithoutConnect(t *testing.T) {
	if err := NewNotifier("nats://localhost:4222", "").Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestRegisteredFactory(t *testing.T) {
	if _, err := notifier.New("nats", map[string]string{}); !errors.Is(err, notifier.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	n, err := notifier.New("nats", map[string]string{"url": "nats://localhost:4222", "subject": "ci.done"})
	if err != nil {
		t.Fatal(err)
	}
	if n.Name() != "nats" {
		t.Fatalf("expected nats, got %q", n.Name())
	}
}

// TestSendPublishes requires a JetStream-enabled server at NATS_URL.
func TestSendPublishes(t *testing.T) {
	url := os.Getenv("NATS_URL")
	if url == "" {
		t.Skip("requires NATS_URL")
	}

	subject := "workflow.reports.test"
	nc, err := nats.Connect(url)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer nc.Close()

	sub, err := nc.SubscribeSync(subject)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	n := NewNotifier(url, subject)
	t.Cleanup(func() { _ = n.Close() })

	want := notifier.Notification{
		Text:   "Workflow status",
		Blocks: []message.Block{message.Header(message.IconSuccess + " CI")},
		Level:  "success",
		Source: "https://github.com/octo/app/actions/runs/1",
	}
	if err := n.Send(context.Background(), want); err != nil {
		t.Fatalf("Send: %v", err)
	}

	msg, err := sub.NextMsg(5 * time.Second)
	if err != nil {
		t.Fatalf("NextMsg: %v", err)
	}
	var got notifier.Notification
	if err := json.Unmarshal(msg.Data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Source != want.Source || len(got.Blocks) != 1 {
		t.Errorf("unexpected payload %+v", got)
	}
}

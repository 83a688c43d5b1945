package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Strob0t/workflow-notify/internal/port/notifier"
)

// mockNotifier implements notifier.Notifier for testing.
type mockNotifier struct {
	name    string
	sendErr error

	mu   sync.Mutex
	sent []notifier.Notification
}

func (m *mockNotifier) Name() string                        { return m.name }
func (m *mockNotifier) Capabilities() notifier.Capabilities { return notifier.Capabilities{} }
func (m *mockNotifier) Send(_ context.Context, n notifier.Notification) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.mu.Lock()
	m.sent = append(m.sent, n)
	m.mu.Unlock()
	return nil
}

func (m *mockNotifier) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func TestNotificationService_Notify(t *testing.T) {
	m1 := &mockNotifier{name: "mock1"}
	m2 := &mockNotifier{name: "mock2"}
	svc := NewNotificationService([]notifier.Notifier{m1, m2}, nil)

	delivered, err := svc.Notify(context.Background(), notifier.Notification{
		Text:  "Workflow status",
		Level: "success",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if delivered != 2 {
		t.Fatalf("expected 2 deliveries, got %d", delivered)
	}

	if m1.count() != 1 {
		t.Fatalf("expected 1 notification on mock1, got %d", m1.count())
	}
	if m2.count() != 1 {
		t.Fatalf("expected 1 notification on mock2, got %d", m2.count())
	}
}

func TestNotificationService_FilterLevels(t *testing.T) {
	m := &mockNotifier{name: "mock"}
	svc := NewNotificationService([]notifier.Notifier{m}, []string{"error"})

	// This should be filtered out
	delivered, err := svc.Notify(context.Background(), notifier.Notification{Level: "success"})
	if err != nil {
		t.Fatalf("filtered notification should not error, got %v", err)
	}
	if delivered != 0 {
		t.Fatalf("filtered notification reported %d deliveries", delivered)
	}
	if m.count() != 0 {
		t.Fatalf("expected 0 notifications (filtered), got %d", m.count())
	}

	// This should pass through
	delivered, err = svc.Notify(context.Background(), notifier.Notification{Level: "error"})
	if err != nil {
		t.Fatal(err)
	}
	if delivered != 1 || m.count() != 1 {
		t.Fatalf("expected 1 notification, got %d", m.count())
	}
}

func TestNotificationService_ErrorContinues(t *testing.T) {
	sendErr := errors.New("connection refused")
	failer := &mockNotifier{name: "fail", sendErr: sendErr}
	success := &mockNotifier{name: "ok"}
	svc := NewNotificationService([]notifier.Notifier{failer, success}, nil)

	delivered, err := svc.Notify(context.Background(), notifier.Notification{Level: "info"})
	if !errors.Is(err, sendErr) {
		t.Fatalf("expected joined send error, got %v", err)
	}
	if delivered != 1 {
		t.Fatalf("expected 1 delivery, got %d", delivered)
	}

	// First notifier failed but second should still receive
	if success.count() != 1 {
		t.Fatalf("expected 1 notification on success notifier, got %d", success.count())
	}
}

func TestNotificationService_JoinsAllErrors(t *testing.T) {
	errA := errors.New("a down")
	errB := errors.New("b down")
	svc := NewNotificationService([]notifier.Notifier{
		&mockNotifier{name: "a", sendErr: errA},
		&mockNotifier{name: "b", sendErr: errB},
	}, nil)

	_, err := svc.Notify(context.Background(), notifier.Notification{})
	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Fatalf("expected both errors joined, got %v", err)
	}
}

func TestNotificationService_NoNotifiers(t *testing.T) {
	svc := NewNotificationService(nil, nil)
	if _, err := svc.Notify(context.Background(), notifier.Notification{}); !errors.Is(err, ErrNoNotifiers) {
		t.Fatalf("expected ErrNoNotifiers, got %v", err)
	}
}

func TestNotificationService_Accepts(t *testing.T) {
	all := NewNotificationService(nil, nil)
	if !all.Accepts("success") {
		t.Error("empty level list should accept every level")
	}

	onlyErrors := NewNotificationService(nil, []string{"error"})
	if !onlyErrors.Accepts("error") || onlyErrors.Accepts("success") {
		t.Error("level list not honored")
	}
}

func TestNotificationService_Count(t *testing.T) {
	svc := NewNotificationService([]notifier.Notifier{
		&mockNotifier{name: "a"},
		&mockNotifier{name: "b"},
	}, nil)
	if svc.NotifierCount() != 2 {
		t.Fatalf("expected 2, got %d", svc.NotifierCount())
	}
}

// closingNotifier is a mockNotifier that holds a connection.
type closingNotifier struct {
	mockNotifier
	closed bool
}

func (c *closingNotifier) Close() error {
	c.closed = true
	return nil
}

func TestNotificationService_Close(t *testing.T) {
	closer := &closingNotifier{mockNotifier: mockNotifier{name: "conn"}}
	svc := NewNotificationService([]notifier.Notifier{closer, &mockNotifier{name: "plain"}}, nil)

	if err := svc.Close(); err != nil {
		t.Fatal(err)
	}
	if !closer.closed {
		t.Error("expected connection-holding notifier to be closed")
	}
}

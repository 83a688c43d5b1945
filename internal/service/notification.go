// Package service contains application services.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"

	cfotel "github.com/Strob0t/workflow-notify/internal/adapter/otel"
	"github.com/Strob0t/workflow-notify/internal/port/notifier"
)

// ErrNoNotifiers is returned when a notification has nowhere to go.
var ErrNoNotifiers = errors.New("no notifier configured")

// NotificationService dispatches notifications to all configured notifiers.
type NotificationService struct {
	notifiers     []notifier.Notifier
	enabledLevels map[string]bool
	metrics       *cfotel.Metrics
}

// NewNotificationService creates a NotificationService with the given notifiers
// and list of enabled levels (e.g. "error", "warning").
// If enabledLevels is nil or empty, all levels are enabled.
func NewNotificationService(notifiers []notifier.Notifier, enabledLevels []string) *NotificationService {
	enabled := make(map[string]bool, len(enabledLevels))
	for _, l := range enabledLevels {
		enabled[l] = true
	}
	return &NotificationService{
		notifiers:     notifiers,
		enabledLevels: enabled,
	}
}

// SetMetrics enables delivery counters.
func (s *NotificationService) SetMetrics(m *cfotel.Metrics) {
	s.metrics = m
}

// Notify delivers n to every notifier concurrently and returns how many of
// them accepted it. A failing notifier does not stop delivery to the others;
// all failures are joined into the error. Notifications whose level is not
// enabled are dropped without error and report zero deliveries.
func (s *NotificationService) Notify(ctx context.Context, n notifier.Notification) (int, error) {
	if len(s.notifiers) == 0 {
		return 0, ErrNoNotifiers
	}
	if !s.Accepts(n.Level) {
		slog.DebugContext(ctx, "notification filtered", "level", n.Level)
		return 0, nil
	}

	errs := make([]error, len(s.notifiers))
	var g errgroup.Group
	for i, provider := range s.notifiers {
		g.Go(func() error {
			errs[i] = s.send(ctx, provider, n)
			return nil
		})
	}
	_ = g.Wait()

	delivered := 0
	for _, err := range errs {
		if err == nil {
			delivered++
		}
	}
	return delivered, errors.Join(errs...)
}

// Accepts reports whether notifications of level pass the level filter.
func (s *NotificationService) Accepts(level string) bool {
	return len(s.enabledLevels) == 0 || s.enabledLevels[level]
}

func (s *NotificationService) send(ctx context.Context, provider notifier.Notifier, n notifier.Notification) error {
	ctx, span := cfotel.StartDeliverySpan(ctx, provider.Name())
	defer span.End()

	attrs := metric.WithAttributes(attribute.String("notifier", provider.Name()))

	if err := provider.Send(ctx, n); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if s.metrics != nil {
			s.metrics.NotificationsFailed.Add(ctx, 1, attrs)
		}
		slog.WarnContext(ctx, "notification send failed",
			"provider", provider.Name(),
			"error", err,
		)
		return fmt.Errorf("%s: %w", provider.Name(), err)
	}

	if s.metrics != nil {
		s.metrics.NotificationsSent.Add(ctx, 1, attrs)
	}
	slog.DebugContext(ctx, "notification sent", "provider", provider.Name())
	return nil
}

// NotifierCount returns the number of configured notifiers.
func (s *NotificationService) NotifierCount() int {
	return len(s.notifiers)
}

// Close closes every notifier that holds a connection.
func (s *NotificationService) Close() error {
	var errs []error
	for _, n := range s.notifiers {
		if c, ok := n.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", n.Name(), err))
			}
		}
	}
	return errors.Join(errs...)
}

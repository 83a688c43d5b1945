package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"

	cfotel "github.com/Strob0t/workflow-notify/internal/adapter/otel"
	"github.com/Strob0t/workflow-notify/internal/domain/message"
	"github.com/Strob0t/workflow-notify/internal/domain/workflow"
	"github.com/Strob0t/workflow-notify/internal/logger"
	"github.com/Strob0t/workflow-notify/internal/port/ciprovider"
	"github.com/Strob0t/workflow-notify/internal/port/notifier"
)

// DefaultText is the fallback text sent alongside the blocks.
const DefaultText = "Workflow status"

// ReportService reads a workflow run from the CI provider, renders it and
// hands the result to the NotificationService.
type ReportService struct {
	provider ciprovider.Provider
	notify   *NotificationService
	ignore   workflow.IgnoreRules
	text     string
	metrics  *cfotel.Metrics
}

// NewReportService creates a ReportService. An empty text falls back to DefaultText.
func NewReportService(provider ciprovider.Provider, notify *NotificationService, ignore workflow.IgnoreRules, text string) *ReportService {
	if text == "" {
		text = DefaultText
	}
	return &ReportService{
		provider: provider,
		notify:   notify,
		ignore:   ignore,
		text:     text,
	}
}

// SetMetrics enables report counters and fetch timing.
func (s *ReportService) SetMetrics(m *cfotel.Metrics) {
	s.metrics = m
}

// Report composes the notification for ref and delivers it.
func (s *ReportService) Report(ctx context.Context, ref ciprovider.RunRef) error {
	ctx = logger.WithRunID(ctx, ref.RunID)
	ctx, span := cfotel.StartReportSpan(ctx, ref.Repository(), ref.RunID)
	defer span.End()

	n, err := s.Compose(ctx, ref)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	delivered, err := s.notify.Notify(ctx, n)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("deliver: %w", err)
	}

	if delivered == 0 {
		slog.InfoContext(ctx, "workflow report filtered",
			"repository", ref.Repository(),
			"workflow", ref.Workflow,
			"level", n.Level,
		)
		return nil
	}

	slog.InfoContext(ctx, "workflow report delivered",
		"repository", ref.Repository(),
		"workflow", ref.Workflow,
		"level", n.Level,
		"notifiers", delivered,
	)
	return nil
}

// Compose fetches the workflow, run and jobs concurrently and renders them
// into a notification without delivering it.
func (s *ReportService) Compose(ctx context.Context, ref ciprovider.RunRef) (notifier.Notification, error) {
	var (
		wf   *workflow.Workflow
		run  *workflow.Run
		jobs []workflow.Job
	)

	if err := s.fetch(ctx, ref, &wf, &run, &jobs); err != nil {
		s.countFailure(ctx, "fetch")
		return notifier.Notification{}, fmt.Errorf("fetch run %d: %w", ref.RunID, err)
	}

	blocks, err := message.Build(wf, run, jobs, s.ignore)
	if err != nil {
		s.countFailure(ctx, "build")
		return notifier.Notification{}, fmt.Errorf("build message: %w", err)
	}

	if s.metrics != nil {
		s.metrics.ReportsBuilt.Add(ctx, 1)
	}
	slog.DebugContext(ctx, "workflow report built",
		"jobs", len(jobs),
		"blocks", len(blocks),
		"conclusion", string(run.Conclusion),
	)

	return notifier.Notification{
		Text:   s.text,
		Blocks: blocks,
		Level:  message.Level(run.Conclusion),
		Source: run.HTMLURL,
	}, nil
}

func (s *ReportService) fetch(ctx context.Context, ref ciprovider.RunRef, wf **workflow.Workflow, run **workflow.Run, jobs *[]workflow.Job) error {
	ctx, span := cfotel.StartFetchSpan(ctx, s.provider.Name())
	defer span.End()
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		w, err := s.provider.GetWorkflow(gctx, ref)
		if err != nil {
			return fmt.Errorf("workflow %q: %w", ref.Workflow, err)
		}
		*wf = w
		return nil
	})
	g.Go(func() error {
		r, err := s.provider.GetRun(gctx, ref)
		if err != nil {
			return fmt.Errorf("run: %w", err)
		}
		*run = r
		return nil
	})
	g.Go(func() error {
		j, err := s.provider.ListJobs(gctx, ref)
		if err != nil {
			return fmt.Errorf("jobs: %w", err)
		}
		*jobs = j
		return nil
	})

	err := g.Wait()
	if s.metrics != nil {
		s.metrics.FetchDuration.Record(ctx, time.Since(start).Seconds(),
			metric.WithAttributes(attribute.String("ci.provider", s.provider.Name())))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (s *ReportService) countFailure(ctx context.Context, stage string) {
	if s.metrics != nil {
		s.metrics.ReportsFailed.Add(ctx, 1, metric.WithAttributes(attribute.String("stage", stage)))
	}
}

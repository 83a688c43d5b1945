package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/Strob0t/workflow-notify/internal/domain"
	"github.com/Strob0t/workflow-notify/internal/domain/message"
	"github.com/Strob0t/workflow-notify/internal/domain/workflow"
	"github.com/Strob0t/workflow-notify/internal/port/ciprovider"
	"github.com/Strob0t/workflow-notify/internal/port/notifier"
)

// fakeProvider implements ciprovider.Provider for testing.
type fakeProvider struct {
	workflow *workflow.Workflow
	run      *workflow.Run
	jobs     []workflow.Job

	workflowErr error
	runErr      error
	jobsErr     error
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) GetWorkflow(_ context.Context, _ ciprovider.RunRef) (*workflow.Workflow, error) {
	return f.workflow, f.workflowErr
}

func (f *fakeProvider) GetRun(_ context.Context, _ ciprovider.RunRef) (*workflow.Run, error) {
	return f.run, f.runErr
}

func (f *fakeProvider) ListJobs(_ context.Context, _ ciprovider.RunRef) ([]workflow.Job, error) {
	return f.jobs, f.jobsErr
}

var testRef = ciprovider.RunRef{Owner: "octo", Repo: "app", RunID: 99, Workflow: "CI"}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		workflow: &workflow.Workflow{ID: 1, Name: "CI"},
		run: &workflow.Run{
			ID:         99,
			RunNumber:  12,
			Conclusion: workflow.ConclusionFailure,
			HTMLURL:    "https://github.com/octo/app/actions/runs/99",
			HeadBranch: "main",
			HeadSHA:    "0123456789abcdef",
			Actor:      "octocat",
		},
		jobs: []workflow.Job{
			{Name: "build", Conclusion: workflow.ConclusionSuccess, Steps: []workflow.Step{
				{Name: "Set up job", Conclusion: workflow.ConclusionSuccess},
				{Name: "compile", Conclusion: workflow.ConclusionSuccess},
			}},
			{Name: "lint", Conclusion: workflow.ConclusionFailure},
		},
	}
}

func TestReportService_Compose(t *testing.T) {
	ignore := workflow.NewIgnoreRules([]string{"lint"}, []string{"Set up job"})
	svc := NewReportService(newFakeProvider(), NewNotificationService(nil, nil), ignore, "")

	n, err := svc.Compose(context.Background(), testRef)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if n.Text != DefaultText {
		t.Errorf("expected default text, got %q", n.Text)
	}
	if n.Level != "error" {
		t.Errorf("expected level error for failed run, got %q", n.Level)
	}
	if n.Source != "https://github.com/octo/app/actions/runs/99" {
		t.Errorf("expected run URL as source, got %q", n.Source)
	}

	// header, summary, divider, build
	if len(n.Blocks) != 4 {
		t.Fatalf("expected 4 blocks, got %d", len(n.Blocks))
	}
	if n.Blocks[2].Type != message.BlockDivider {
		t.Errorf("expected divider at index 2, got %s", n.Blocks[2].Type)
	}
	job := n.Blocks[3].Text.Text
	if strings.Contains(job, "Set up job") {
		t.Errorf("ignored step rendered: %q", job)
	}
	if !strings.Contains(job, "compile") {
		t.Errorf("kept step missing: %q", job)
	}
}

func TestReportService_ComposeMatchesBuild(t *testing.T) {
	p := newFakeProvider()
	ignore := workflow.NewIgnoreRules(nil, nil)
	svc := NewReportService(p, NewNotificationService(nil, nil), ignore, "custom")

	n, err := svc.Compose(context.Background(), testRef)
	if err != nil {
		t.Fatal(err)
	}
	want, err := message.Build(p.workflow, p.run, p.jobs, ignore)
	if err != nil {
		t.Fatal(err)
	}

	got, _ := json.Marshal(n.Blocks)
	exp, _ := json.Marshal(want)
	if string(got) != string(exp) {
		t.Errorf("composed blocks differ from Build output:\n got %s\nwant %s", got, exp)
	}
	if n.Text != "custom" {
		t.Errorf("expected custom text, got %q", n.Text)
	}
}

func TestReportService_ComposeFetchErrors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*fakeProvider)
		want   error
	}{
		{"workflow not found", func(p *fakeProvider) { p.workflowErr = domain.ErrNotFound }, domain.ErrNotFound},
		{"run error", func(p *fakeProvider) { p.runErr = errors.New("boom") }, nil},
		{"jobs error", func(p *fakeProvider) { p.jobsErr = errors.New("boom") }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newFakeProvider()
			tt.modify(p)
			svc := NewReportService(p, NewNotificationService(nil, nil), workflow.IgnoreRules{}, "")

			_, err := svc.Compose(context.Background(), testRef)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestReportService_ComposeMissingRun(t *testing.T) {
	p := newFakeProvider()
	p.run = nil
	svc := NewReportService(p, NewNotificationService(nil, nil), workflow.IgnoreRules{}, "")

	_, err := svc.Compose(context.Background(), testRef)
	if !errors.Is(err, message.ErrMissingSubject) {
		t.Fatalf("expected ErrMissingSubject, got %v", err)
	}
}

func TestReportService_Report(t *testing.T) {
	m := &mockNotifier{name: "mock"}
	svc := NewReportService(newFakeProvider(), NewNotificationService([]notifier.Notifier{m}, nil), workflow.IgnoreRules{}, "")

	if err := svc.Report(context.Background(), testRef); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.count() != 1 {
		t.Fatalf("expected 1 delivery, got %d", m.count())
	}
	if len(m.sent[0].Blocks) == 0 {
		t.Error("expected blocks in delivered notification")
	}
}

func TestReportService_ReportNoNotifiers(t *testing.T) {
	svc := NewReportService(newFakeProvider(), NewNotificationService(nil, nil), workflow.IgnoreRules{}, "")

	if err := svc.Report(context.Background(), testRef); !errors.Is(err, ErrNoNotifiers) {
		t.Fatalf("expected ErrNoNotifiers, got %v", err)
	}
}

func TestReportService_ReportFetchFailureSkipsDelivery(t *testing.T) {
	p := newFakeProvider()
	p.runErr = errors.New("api down")
	m := &mockNotifier{name: "mock"}
	svc := NewReportService(p, NewNotificationService([]notifier.Notifier{m}, nil), workflow.IgnoreRules{}, "")

	if err := svc.Report(context.Background(), testRef); err == nil {
		t.Fatal("expected error")
	}
	if m.count() != 0 {
		t.Fatalf("expected no delivery after fetch failure, got %d", m.count())
	}
}

// captureLogs routes the default logger into a buffer for the test's lifetime.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestReportService_ReportFilteredLevel(t *testing.T) {
	logs := captureLogs(t)
	m := &mockNotifier{name: "mock"}
	// The fake run failed, so its level is "error".
	svc := NewReportService(newFakeProvider(), NewNotificationService([]notifier.Notifier{m}, []string{"success"}), workflow.IgnoreRules{}, "")

	if err := svc.Report(context.Background(), testRef); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.count() != 0 {
		t.Fatalf("expected no delivery, got %d", m.count())
	}
	if !strings.Contains(logs.String(), `"msg":"workflow report filtered"`) {
		t.Errorf("expected filtered log line, got:\n%s", logs.String())
	}
	if strings.Contains(logs.String(), "workflow report delivered") {
		t.Errorf("filtered report must not be logged as delivered:\n%s", logs.String())
	}
}

func TestReportService_ReportLogsDelivered(t *testing.T) {
	logs := captureLogs(t)
	svc := NewReportService(newFakeProvider(), NewNotificationService([]notifier.Notifier{
		&mockNotifier{name: "ok"},
		&mockNotifier{name: "also-ok"},
	}, nil), workflow.IgnoreRules{}, "")

	if err := svc.Report(context.Background(), testRef); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(logs.String(), `"msg":"workflow report delivered"`) || !strings.Contains(logs.String(), `"notifiers":2`) {
		t.Errorf("expected delivered log line with notifier count, got:\n%s", logs.String())
	}
}

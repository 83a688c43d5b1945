package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/Strob0t/workflow-notify/internal/port/ciprovider"
)

const (
	eventWorkflowRun = "workflow_run"
	actionCompleted  = "completed"
)

// Reporter reports one workflow run.
type Reporter interface {
	Report(ctx context.Context, ref ciprovider.RunRef) error
}

// Handlers serves the webhook receiver endpoints. Reports run in the
// background so that GitHub gets its acknowledgement before the delivery
// timeout; Wait blocks until they are done.
type Handlers struct {
	Reporter      Reporter
	ReportTimeout time.Duration

	wg sync.WaitGroup
}

// workflowRunEvent is the subset of the workflow_run webhook payload we use.
type workflowRunEvent struct {
	Action      string `json:"action"`
	WorkflowRun struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"workflow_run"`
	Repository struct {
		FullName string `json:"full_name"`
	} `json:"repository"`
}

type webhookResponse struct {
	Status string `json:"status"`
	Event  string `json:"event,omitempty"`
	Action string `json:"action,omitempty"`
	RunID  int64  `json:"run_id,omitempty"`
}

// Health handles GET /health.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	respond(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleGitHubWebhook handles POST /webhooks/github.
// Only completed workflow_run events are reported; everything else is
// acknowledged and ignored.
func (h *Handlers) HandleGitHubWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		reject(w, r, http.StatusBadRequest, "failed to read body")
		return
	}

	eventType := r.Header.Get(headerGitHubEvent)
	if eventType != eventWorkflowRun {
		respond(w, r, http.StatusAccepted, webhookResponse{Status: "ignored", Event: eventType})
		return
	}

	var ev workflowRunEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		reject(w, r, http.StatusBadRequest, "invalid workflow_run payload")
		return
	}
	if ev.Action != actionCompleted {
		respond(w, r, http.StatusAccepted, webhookResponse{Status: "ignored", Event: eventType, Action: ev.Action})
		return
	}

	ref, err := ciprovider.NewRunRef(ev.Repository.FullName, ev.WorkflowRun.ID, ev.WorkflowRun.Name)
	if err != nil {
		reject(w, r, http.StatusBadRequest, err.Error())
		return
	}

	h.dispatch(r.Context(), ref)
	respond(w, r, http.StatusAccepted, webhookResponse{Status: "accepted", Event: eventType, Action: ev.Action, RunID: ref.RunID})
}

// dispatch reports ref in the background. The request context's values
// (request ID) are kept but its cancellation is not.
func (h *Handlers) dispatch(ctx context.Context, ref ciprovider.RunRef) {
	ctx = context.WithoutCancel(ctx)

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()

		if h.ReportTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, h.ReportTimeout)
			defer cancel()
		}

		if err := h.Reporter.Report(ctx, ref); err != nil {
			slog.ErrorContext(ctx, "workflow report failed",
				"repository", ref.Repository(),
				"run_id", ref.RunID,
				"error", err,
			)
		}
	}()
}

// Wait blocks until all background reports have finished.
func (h *Handlers) Wait() {
	h.wg.Wait()
}

// Package ciprovider defines the CI provider port used to read the metadata of
// a workflow run.
package ciprovider

import (
	"context"
	"fmt"
	"strings"

	"github.com/Strob0t/workflow-notify/internal/domain/workflow"
)

// RunRef identifies a single workflow run within a repository.
type RunRef struct {
	Owner    string
	Repo     string
	RunID    int64
	Workflow string // workflow name as shown by the provider
}

// NewRunRef builds a RunRef from an "owner/repo" repository string.
func NewRunRef(repository string, runID int64, workflowName string) (RunRef, error) {
	parts := strings.Split(repository, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return RunRef{}, fmt.Errorf("invalid repository %q: expected owner/repo", repository)
	}
	if runID <= 0 {
		return RunRef{}, fmt.Errorf("invalid run id %d", runID)
	}
	return RunRef{Owner: parts[0], Repo: parts[1], RunID: runID, Workflow: workflowName}, nil
}

// Repository returns the "owner/repo" form of the reference.
func (r RunRef) Repository() string {
	return r.Owner + "/" + r.Repo
}

// Provider is the port interface for reading workflow runs from a CI system.
type Provider interface {
	// Name returns the unique identifier for this provider (e.g. "github").
	Name() string

	// GetWorkflow returns the workflow definition named by ref.Workflow.
	GetWorkflow(ctx context.Context, ref RunRef) (*workflow.Workflow, error)

	// GetRun returns the run identified by ref.RunID.
	GetRun(ctx context.Context, ref RunRef) (*workflow.Run, error)

	// ListJobs returns all jobs of the run in provider order, steps included.
	ListJobs(ctx context.Context, ref RunRef) ([]workflow.Job, error)
}

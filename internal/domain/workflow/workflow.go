// Package workflow defines the descriptors of a CI workflow run as supplied
// by a CI provider: the workflow, the run, its jobs and their steps.
package workflow

// Conclusion is the terminal outcome of a run, job or step.
// The empty value means the entity has not concluded yet.
type Conclusion string

const (
	ConclusionNone           Conclusion = ""
	ConclusionSuccess        Conclusion = "success"
	ConclusionFailure        Conclusion = "failure"
	ConclusionCancelled      Conclusion = "cancelled"
	ConclusionSkipped        Conclusion = "skipped"
	ConclusionNeutral        Conclusion = "neutral"
	ConclusionTimedOut       Conclusion = "timed_out"
	ConclusionActionRequired Conclusion = "action_required"
	ConclusionStale          Conclusion = "stale"

	// ConclusionInProgress is not reported by GitHub as a conclusion but some
	// callers use it to mark a running entity explicitly.
	ConclusionInProgress Conclusion = "in_progress"
)

// Workflow identifies the pipeline definition that produced a run.
type Workflow struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Run is one execution of a workflow.
type Run struct {
	ID         int64      `json:"id"`
	RunNumber  int64      `json:"run_number"`
	Name       string     `json:"name"`
	Status     string     `json:"status"`
	Conclusion Conclusion `json:"conclusion"`
	HTMLURL    string     `json:"html_url"`
	HeadBranch string     `json:"head_branch"`
	HeadSHA    string     `json:"head_sha"`
	Actor      string     `json:"actor"`
	Event      string     `json:"event"`
}

// Job is a named unit of work within a run. Steps are kept in provider order.
type Job struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	Status     string     `json:"status"`
	Conclusion Conclusion `json:"conclusion"`
	HTMLURL    string     `json:"html_url"`
	Steps      []Step     `json:"steps"`
}

// Step is a named unit of work within a job.
type Step struct {
	Name       string     `json:"name"`
	Status     string     `json:"status"`
	Conclusion Conclusion `json:"conclusion"`
	Number     int        `json:"number"`
}

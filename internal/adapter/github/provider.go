// Package github implements a ciprovider.Provider for GitHub Actions using the REST API.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/Strob0t/workflow-notify/internal/domain"
	"github.com/Strob0t/workflow-notify/internal/domain/workflow"
	"github.com/Strob0t/workflow-notify/internal/port/ciprovider"
)

const (
	providerName = "github"

	// DefaultAPIURL is the public GitHub REST endpoint.
	DefaultAPIURL = "https://api.github.com"

	apiVersion = "2022-11-28"
	pageSize   = 100
	userAgent  = "workflow-notify"
)

// Provider implements ciprovider.Provider for GitHub Actions.
type Provider struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option configures a Provider.
type Option func(*Provider)

// WithHTTPClient sets a custom HTTP client (useful for testing).
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) { p.httpClient = c }
}

// NewProvider creates a GitHub provider for the given API base URL and token.
// An empty baseURL selects DefaultAPIURL.
func NewProvider(baseURL, token string, opts ...Option) *Provider {
	if baseURL == "" {
		baseURL = DefaultAPIURL
	}
	p := &Provider{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   30 * time.Second,
		},
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

func (p *Provider) Name() string { return providerName }

// ghWorkflow mirrors an entry of GET /repos/{owner}/{repo}/actions/workflows.
type ghWorkflow struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type ghWorkflowList struct {
	TotalCount int          `json:"total_count"`
	Workflows  []ghWorkflow `json:"workflows"`
}

type ghUser struct {
	Login string `json:"login"`
}

// ghRun mirrors GET /repos/{owner}/{repo}/actions/runs/{run_id}.
type ghRun struct {
	ID         int64   `json:"id"`
	RunNumber  int64   `json:"run_number"`
	Name       string  `json:"name"`
	Status     string  `json:"status"`
	Conclusion *string `json:"conclusion"`
	HTMLURL    string  `json:"html_url"`
	HeadBranch string  `json:"head_branch"`
	HeadSHA    string  `json:"head_sha"`
	Event      string  `json:"event"`
	Actor      *ghUser `json:"actor"`
}

type ghStep struct {
	Name       string  `json:"name"`
	Status     string  `json:"status"`
	Conclusion *string `json:"conclusion"`
	Number     int     `json:"number"`
}

type ghJob struct {
	ID         int64    `json:"id"`
	Name       string   `json:"name"`
	Status     string   `json:"status"`
	Conclusion *string  `json:"conclusion"`
	HTMLURL    string   `json:"html_url"`
	Steps      []ghStep `json:"steps"`
}

type ghJobList struct {
	TotalCount int     `json:"total_count"`
	Jobs       []ghJob `json:"jobs"`
}

// GetWorkflow lists the repository workflows and returns the one whose name
// equals ref.Workflow.
func (p *Provider) GetWorkflow(ctx context.Context, ref ciprovider.RunRef) (*workflow.Workflow, error) {
	if ref.Workflow == "" {
		return nil, fmt.Errorf("github get workflow: empty workflow name: %w", domain.ErrNotFound)
	}

	seen := 0
	for page := 1; ; page++ {
		url := fmt.Sprintf("%s/repos/%s/%s/actions/workflows?per_page=%d&page=%d",
			p.baseURL, ref.Owner, ref.Repo, pageSize, page)

		var list ghWorkflowList
		if err := p.getJSON(ctx, url, &list); err != nil {
			return nil, fmt.Errorf("github list workflows: %w", err)
		}

		for _, w := range list.Workflows {
			if w.Name == ref.Workflow {
				return &workflow.Workflow{ID: w.ID, Name: w.Name}, nil
			}
		}

		seen += len(list.Workflows)
		if len(list.Workflows) == 0 || seen >= list.TotalCount {
			break
		}
	}

	return nil, fmt.Errorf("github workflow %q in %s: %w", ref.Workflow, ref.Repository(), domain.ErrNotFound)
}

// GetRun returns the workflow run identified by ref.RunID.
func (p *Provider) GetRun(ctx context.Context, ref ciprovider.RunRef) (*workflow.Run, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/actions/runs/%d", p.baseURL, ref.Owner, ref.Repo, ref.RunID)

	var run ghRun
	if err := p.getJSON(ctx, url, &run); err != nil {
		return nil, fmt.Errorf("github get run: %w", err)
	}
	return runToDomain(&run), nil
}

// ListJobs returns every job of the run, following pagination.
func (p *Provider) ListJobs(ctx context.Context, ref ciprovider.RunRef) ([]workflow.Job, error) {
	var jobs []workflow.Job
	for page := 1; ; page++ {
		url := fmt.Sprintf("%s/repos/%s/%s/actions/runs/%d/jobs?per_page=%d&page=%d",
			p.baseURL, ref.Owner, ref.Repo, ref.RunID, pageSize, page)

		var list ghJobList
		if err := p.getJSON(ctx, url, &list); err != nil {
			return nil, fmt.Errorf("github list jobs: %w", err)
		}

		for i := range list.Jobs {
			jobs = append(jobs, jobToDomain(&list.Jobs[i]))
		}

		if len(list.Jobs) == 0 || len(jobs) >= list.TotalCount {
			break
		}
	}
	return jobs, nil
}

func (p *Provider) getJSON(ctx context.Context, reqURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", apiVersion)
	req.Header.Set("User-Agent", userAgent)
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}

	resp, err := p.httpClient.Do(req) //nolint:gosec // URL is built from the trusted API base URL
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("github API %d: %w", resp.StatusCode, domain.ErrNotFound)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("github API %d: %s", resp.StatusCode, apiMessage(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

// apiMessage extracts the "message" field of a GitHub error body, falling back
// to the raw body.
func apiMessage(body []byte) string {
	var e struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &e); err == nil && e.Message != "" {
		return e.Message
	}
	return strings.TrimSpace(string(body))
}

func conclusion(c *string) workflow.Conclusion {
	if c == nil {
		return workflow.ConclusionNone
	}
	return workflow.Conclusion(*c)
}

func runToDomain(r *ghRun) *workflow.Run {
	run := &workflow.Run{
		ID:         r.ID,
		RunNumber:  r.RunNumber,
		Name:       r.Name,
		Status:     r.Status,
		Conclusion: conclusion(r.Conclusion),
		HTMLURL:    r.HTMLURL,
		HeadBranch: r.HeadBranch,
		HeadSHA:    r.HeadSHA,
		Event:      r.Event,
	}
	if r.Actor != nil {
		run.Actor = r.Actor.Login
	}
	return run
}

func jobToDomain(j *ghJob) workflow.Job {
	steps := make([]workflow.Step, 0, len(j.Steps))
	for _, s := range j.Steps {
		steps = append(steps, workflow.Step{
			Name:       s.Name,
			Status:     s.Status,
			Conclusion: conclusion(s.Conclusion),
			Number:     s.Number,
		})
	}
	return workflow.Job{
		ID:         j.ID,
		Name:       j.Name,
		Status:     j.Status,
		Conclusion: conclusion(j.Conclusion),
		HTMLURL:    j.HTMLURL,
		Steps:      steps,
	}
}

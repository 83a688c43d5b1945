package workflow

import "strings"

// IgnoreRules holds the job and step names excluded from a notification.
// Build it once with NewIgnoreRules or ParseIgnoreRules; it is read-only afterwards.
type IgnoreRules struct {
	jobs  map[string]struct{}
	steps map[string]struct{}
}

// NewIgnoreRules builds rules from name lists. Names are trimmed and empty
// names are discarded.
func NewIgnoreRules(jobs, steps []string) IgnoreRules {
	return IgnoreRules{
		jobs:  nameSet(jobs),
		steps: nameSet(steps),
	}
}

// ParseIgnoreRules builds rules from comma-separated name lists such as
// "lint, e2e". An empty string yields an empty set.
func ParseIgnoreRules(jobsCSV, stepsCSV string) IgnoreRules {
	return NewIgnoreRules(SplitList(jobsCSV), SplitList(stepsCSV))
}

// SplitList splits a comma-separated list, trimming every entry and
// dropping empty ones.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func nameSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			set[n] = struct{}{}
		}
	}
	return set
}

// IgnoresJob reports whether a job with the given name is excluded.
func (r IgnoreRules) IgnoresJob(name string) bool {
	_, ok := r.jobs[strings.TrimSpace(name)]
	return ok
}

// IgnoresStep reports whether a step with the given name is excluded.
func (r IgnoreRules) IgnoresStep(name string) bool {
	_, ok := r.steps[strings.TrimSpace(name)]
	return ok
}

// Jobs returns the number of ignored job names.
func (r IgnoreRules) Jobs() int { return len(r.jobs) }

// Steps returns the number of ignored step names.
func (r IgnoreRules) Steps() int { return len(r.steps) }

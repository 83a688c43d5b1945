package message

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Strob0t/workflow-notify/internal/domain/workflow"
)

// ErrMissingSubject is returned by Build when the workflow or the run is absent.
var ErrMissingSubject = errors.New("notification subject missing")

// Placeholder replaces empty optional fields in rendered text.
const Placeholder = "unknown"

// Block Kit limits. Slack rejects the whole message when one is exceeded.
const (
	MaxBlocks       = 50
	MaxHeaderRunes  = 150
	MaxSectionRunes = 3000
)

const (
	shortSHALen = 7
	// maxNameRunes bounds a job or step name before escaping, so that one
	// title line always leaves room for steps within MaxSectionRunes.
	maxNameRunes = 200
	// maxLinkURLRunes drops the link from a job title whose URL is absurdly long.
	maxLinkURLRunes = 1000
	stepIndent      = "\n        "
	ellipsis        = "…"
)

var (
	mrkdwnEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	// urlEscaper percent-encodes the characters that end a <url|label> link early.
	urlEscaper = strings.NewReplacer("|", "%7C", "<", "%3C", ">", "%3E", " ", "%20")
	// moreStepsReserve is room kept for the "…and N more steps" line.
	moreStepsReserve = utf8.RuneCountInString(moreSteps(99999))
)

// Build renders a notification for run. Jobs listed in ignore.Jobs and steps
// listed in ignore.Steps are omitted; job and step order are preserved.
//
// The result is a header, a run summary and, when at least one job survives
// filtering, a divider followed by one section per job. Output always fits
// the Block Kit limits: the header is cut at MaxHeaderRunes, step lines that
// do not fit a section collapse into a "more steps" line, and jobs beyond
// MaxBlocks collapse into a trailing context block.
func Build(wf *workflow.Workflow, run *workflow.Run, jobs []workflow.Job, ignore workflow.IgnoreRules) ([]Block, error) {
	if wf == nil {
		return nil, fmt.Errorf("%w: workflow", ErrMissingSubject)
	}
	if run == nil {
		return nil, fmt.Errorf("%w: run", ErrMissingSubject)
	}

	blocks := []Block{
		Header(truncate(Icon(run.Conclusion)+" "+orPlaceholder(wf.Name), MaxHeaderRunes)),
		Section(runSummary(run)),
	}

	var jobBlocks []Block
	for i := range jobs {
		if ignore.IgnoresJob(jobs[i].Name) {
			continue
		}
		jobBlocks = append(jobBlocks, Section(jobSummary(&jobs[i], ignore)))
	}

	if len(jobBlocks) == 0 {
		return blocks, nil
	}

	// header + summary + divider
	room := MaxBlocks - len(blocks) - 1
	blocks = append(blocks, Divider())
	if len(jobBlocks) <= room {
		return append(blocks, jobBlocks...), nil
	}

	kept := room - 1
	blocks = append(blocks, jobBlocks[:kept]...)
	return append(blocks, Context(fmt.Sprintf("+%d more jobs", len(jobBlocks)-kept))), nil
}

func runSummary(run *workflow.Run) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*Branch:* `%s`   *Commit:* `%s`   *Actor:* %s\n",
		codeSpan(orPlaceholder(run.HeadBranch)),
		codeSpan(shortSHA(run.HeadSHA)),
		escape(orPlaceholder(run.Actor)),
	)

	label := "View run"
	if run.RunNumber > 0 {
		label = fmt.Sprintf("View run #%d", run.RunNumber)
	}
	b.WriteString(link(run.HTMLURL, label))
	return b.String()
}

func jobSummary(job *workflow.Job, ignore workflow.IgnoreRules) string {
	url := job.HTMLURL
	if utf8.RuneCountInString(url) > maxLinkURLRunes {
		url = ""
	}

	var b strings.Builder
	b.WriteString(Icon(job.Conclusion))
	b.WriteString(" *")
	b.WriteString(link(url, escape(truncate(orPlaceholder(job.Name), maxNameRunes))))
	b.WriteString("*")
	n := utf8.RuneCountInString(b.String())

	var steps []workflow.Step
	for _, step := range job.Steps {
		if !ignore.IgnoresStep(step.Name) {
			steps = append(steps, step)
		}
	}

	for i, step := range steps {
		line := stepIndent + Icon(step.Conclusion) + " " + escape(truncate(orPlaceholder(step.Name), maxNameRunes))
		lineLen := utf8.RuneCountInString(line)

		budget := MaxSectionRunes
		if i < len(steps)-1 {
			budget -= moreStepsReserve
		}
		if n+lineLen > budget {
			b.WriteString(moreSteps(len(steps) - i))
			break
		}
		b.WriteString(line)
		n += lineLen
	}
	return b.String()
}

func moreSteps(n int) string {
	return fmt.Sprintf("%s%sand %d more steps", stepIndent, ellipsis, n)
}

// link renders a Slack mrkdwn link; label must already be escaped.
func link(url, label string) string {
	if url == "" {
		return label
	}
	return "<" + urlEscaper.Replace(url) + "|" + label + ">"
}

// codeSpan escapes s for use between backticks. A backtick would close the
// span, so it is replaced with a single quote.
func codeSpan(s string) string {
	return escape(strings.ReplaceAll(s, "`", "'"))
}

func shortSHA(sha string) string {
	if sha == "" {
		return Placeholder
	}
	if len(sha) > shortSHALen {
		return sha[:shortSHALen]
	}
	return sha
}

func orPlaceholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return Placeholder
	}
	return s
}

func escape(s string) string {
	return mrkdwnEscaper.Replace(s)
}

// truncate cuts s to at most limit runes, marking the cut with an ellipsis.
func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	r := []rune(s)
	return string(r[:limit-1]) + ellipsis
}

package message

import "github.com/Strob0t/workflow-notify/internal/domain/workflow"

// Status icons, as Slack emoji shortcodes.
const (
	IconSuccess    = ":white_check_mark:"
	IconFailure    = ":x:"
	IconCancelled  = ":no_entry_sign:"
	IconNeutral    = ":heavy_minus_sign:"
	IconInProgress = ":hourglass_flowing_sand:"
	IconUnknown    = ":grey_question:"
)

// Icon maps a conclusion to its status icon. It is total: values outside the
// known set map to IconUnknown.
func Icon(c workflow.Conclusion) string {
	switch c {
	case workflow.ConclusionFailure, workflow.ConclusionTimedOut:
		return IconFailure
	case workflow.ConclusionCancelled:
		return IconCancelled
	case workflow.ConclusionSkipped, workflow.ConclusionNeutral:
		return IconNeutral
	case workflow.ConclusionSuccess:
		return IconSuccess
	case workflow.ConclusionNone, workflow.ConclusionInProgress:
		return IconInProgress
	default:
		return IconUnknown
	}
}

// Level maps a conclusion to a notification severity
// ("success", "error", "warning" or "info").
func Level(c workflow.Conclusion) string {
	switch c {
	case workflow.ConclusionSuccess:
		return "success"
	case workflow.ConclusionFailure, workflow.ConclusionTimedOut:
		return "error"
	case workflow.ConclusionCancelled, workflow.ConclusionActionRequired:
		return "warning"
	default:
		return "info"
	}
}

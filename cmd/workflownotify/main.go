// Command workflow-notify reports the outcome of a GitHub Actions workflow
// run to Slack and Discord.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

const serviceName = "workflow-notify"

func main() {
	if err := run(os.Args[1:]); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

// run dispatches subcommands. Without one it reports the current workflow
// run, which is how the action invokes it.
func run(args []string) error {
	cmd := "run"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "run":
		return runReport(args)
	case "preview":
		return runPreview(args)
	case "serve":
		return runServe(args)
	case "help":
		printHelp()
		return nil
	default:
		printHelp()
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

func printHelp() {
	fmt.Fprintf(os.Stderr, `Usage: workflow-notify [command] [options]

Commands:
  run       Report the current workflow run (default)
  preview   Print the message blocks for a run without sending them
  serve     Receive GitHub workflow_run webhooks and report completed runs
  help      Show this help message

Examples:
  workflow-notify
  workflow-notify preview --repo octo/app --run-id 30433642 --workflow CI
  workflow-notify serve --port 8080
`)
}

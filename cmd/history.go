package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/stackdiff/stackdiff/internal/audit"
	"github.com/stackdiff/stackdiff/internal/output"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show CLI audit history",
	Long: `Displays audit events written by stackdiff in JSONL format.

By default, reads ~/.stackdiff/audit.log and prints the latest events.
Use --stack to filter on a specific stack.`,
	RunE: runHistory,
}

var (
	historyStack string
	historyLimit int
)

func init() {
	historyCmd.Flags().StringVar(&historyStack, "stack", "", "filter by stack name")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "max number of events to display")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	_ = cmd
	output.Init(verbosity > 0, jsonOutput)

	events, err := audit.Read()
	if err != nil {
		return fmt.Errorf("history failed: %w", err)
	}

	filtered := make([]audit.Event, 0, len(events))
	for _, event := range events {
		if historyStack != "" && event.Stack != historyStack {
			continue
		}
		filtered = append(filtered, event)
	}

	start := 0
	if historyLimit > 0 && len(filtered) > historyLimit {
		start = len(filtered) - historyLimit
	}

	if jsonOutput {
		output.JSON(map[string]interface{}{"events": filtered[start:]})
		return nil
	}
	if len(filtered) == 0 {
		fmt.Fprintln(os.Stderr, "No matching audit events.")
		return nil
	}

	bold := color.New(color.Bold)
	bold.Fprintln(os.Stderr, "📜 stackdiff history")
	for _, event := range filtered[start:] {
		status := color.New(color.FgGreen)
		if event.Result != "success" {
			status = color.New(color.FgRed)
		}
		status.Fprintf(os.Stderr, "  %s", event.Result)
		fmt.Fprintf(os.Stderr, "  %s  op=%s", event.Timestamp, event.Operation)
		if event.Stack != "" {
			fmt.Fprintf(os.Stderr, "  stack=%s", event.Stack)
		}
		fmt.Fprintf(os.Stderr, "  exit=%d  duration=%dms\n", event.ExitCode, event.DurationMs)
	}

	return nil
}

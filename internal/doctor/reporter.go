package doctor

import (
	"fmt"

	"github.com/stackdiff/stackdiff/internal/output"
)

// StatusIcon returns the emoji/icon for a check status.
func StatusIcon(s Status) string {
	if output.NoColor() {
		switch s {
		case StatusPass:
			return "[PASS]"
		case StatusFail:
			return "[FAIL]"
		case StatusWarn:
			return "[WARN]"
		case StatusSkip:
			return "[SKIP]"
		default:
			return "[????]"
		}
	}
	switch s {
	case StatusPass:
		return "✅"
	case StatusFail:
		return "❌"
	case StatusWarn:
		return "⚠️"
	case StatusSkip:
		return "⏭️"
	default:
		return "❓"
	}
}

// PrintResults prints check results to stderr using the output package.
// The caller should check summary.HasFailure for the exit code.
func PrintResults(summary Summary) {
	if output.JSONMode {
		output.JSON(summary)
		return
	}

	output.Info("Running prerequisite checks...\n")

	lastCategory := ""
	for _, r := range summary.Results {
		if r.Category != lastCategory {
			printCategoryHeader(r.Category)
			lastCategory = r.Category
		}
		printCheckResult(r)
	}

	fmt.Println() // blank line before summary
	printSummaryLine(summary)
}

func printCategoryHeader(cat string) {
	var label string
	switch cat {
	case "differ":
		label = "Differ"
	case "config":
		label = "Configuration"
	case "aws":
		label = "AWS"
	default:
		label = cat
	}
	output.Info(output.StyleTitle.Render(label))
}

func printCheckResult(r CheckResult) {
	line := fmt.Sprintf("  %s %s: %s", StatusIcon(r.Status), r.Name, r.Message)
	switch r.Status {
	case StatusFail:
		output.Error(line)
		if r.Fix != "" {
			output.Info("      Fix: " + r.Fix)
		}
	case StatusWarn:
		output.Warn(line)
		if r.Fix != "" {
			output.Info("      Fix: " + r.Fix)
		}
	default:
		output.Info(line)
	}
}

func printSummaryLine(summary Summary) {
	if summary.HasFailure {
		output.Fail(fmt.Sprintf("%d passed, %d failed, %d warning(s), %d skipped",
			summary.TotalPass, summary.TotalFail, summary.TotalWarn, summary.TotalSkip))
		return
	}
	output.Success(fmt.Sprintf("%d passed, %d failed, %d warning(s), %d skipped",
		summary.TotalPass, summary.TotalFail, summary.TotalWarn, summary.TotalSkip))
}

package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/stackdiff/stackdiff/internal/config"
	"github.com/stackdiff/stackdiff/internal/exitcode"
	"github.com/stackdiff/stackdiff/internal/output"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate stackdiff.yaml against its schema",
	Long: `Validates the configuration file against the embedded JSON Schema and
reports every violation.

Used in CI as a gate before diff.`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	_ = cmd
	output.Init(verbosity > 0, jsonOutput)

	path := configPath()
	if path == "" {
		return exitcode.Wrap(exitcode.Validation,
			fmt.Errorf("no %s found (run: stackdiff init)", config.DefaultFileName))
	}

	cfg, err := config.Load(path)
	if err != nil {
		return exitcode.Wrap(exitcode.Validation, fmt.Errorf("loading config %q: %w", path, err))
	}

	result, err := config.Validate(cfg)
	if err != nil {
		return exitcode.Wrap(exitcode.Validation, fmt.Errorf("schema validation error: %w", err))
	}

	if jsonOutput {
		output.JSON(map[string]interface{}{
			"config": path,
			"valid":  result.Valid,
			"errors": result.Errors,
		})
	} else {
		fmt.Fprintf(os.Stderr, "🔎 Validating: %s\n\n", path)
		for _, e := range result.Errors {
			fmt.Fprintf(os.Stderr, "  ❌ %s: %s\n", e.Field, e.Description)
		}
	}

	if !result.Valid {
		return exitcode.Wrap(exitcode.Validation, fmt.Errorf("%d validation error(s) found", len(result.Errors)))
	}

	if !jsonOutput {
		color.New(color.FgGreen, color.Bold).Fprintf(os.Stderr, "✅ %s is valid (stack: %s)\n", path, cfg.Stack.Name)
	}
	return nil
}

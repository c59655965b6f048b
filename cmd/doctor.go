package cmd

import (
	"context"
	"fmt"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/spf13/cobra"

	"github.com/stackdiff/stackdiff/internal/cfn"
	"github.com/stackdiff/stackdiff/internal/diff"
	"github.com/stackdiff/stackdiff/internal/doctor"
	"github.com/stackdiff/stackdiff/internal/output"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check prerequisites and environment readiness",
	Long: `Verifies that the configured differ is installed, that stackdiff.yaml (if
present) is valid, and that AWS credentials, region, and the target stack
are usable.

Each check reports ✅ (pass), ❌ (fail), or ⚠️ (warning) with an
actionable fix suggestion.

Exit code 0 if all critical checks pass, 1 otherwise.`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	output.Init(verbosity > 0, jsonOutput)

	ctx := cmd.Context()
	opts := doctor.Options{ConfigPath: configPath()}

	settings, err := loadSettings()
	if err != nil {
		// A broken config file is itself a doctor finding, not a crash.
		settings = nil
	}
	if settings != nil {
		opts.DifferCommand = diff.ResolveCommand(settings.Diff.Command)
		opts.Region = settings.Stack.Region
		opts.StackName = settings.Stack.Name
	} else {
		opts.DifferCommand = diff.ResolveCommand("")
	}

	opts.Credentials = func(ctx context.Context) (string, error) {
		cfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return "", err
		}
		creds, err := cfg.Credentials.Retrieve(ctx)
		if err != nil {
			return "", err
		}
		return "credentials resolved (source: " + creds.Source + ")", nil
	}

	if opts.StackName != "" {
		stackName := opts.StackName
		region := opts.Region
		opts.Stack = func(ctx context.Context) (string, error) {
			client, err := cfn.NewClient(ctx, region)
			if err != nil {
				return "", err
			}
			lc := cfn.NewLifecycle(client, cfn.DefaultRetryPolicy())
			if _, err := lc.CurrentTemplate(ctx, stackName); err != nil {
				return "", err
			}
			return fmt.Sprintf("stack %q reachable", stackName), nil
		}
	}

	summary := doctor.RunAll(ctx, doctor.NewRealExecutor(), opts)
	doctor.PrintResults(summary)

	if summary.HasFailure {
		os.Exit(1)
	}
	return nil
}

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/stackdiff/stackdiff/internal/cfn"
	"github.com/stackdiff/stackdiff/internal/config"
	"github.com/stackdiff/stackdiff/internal/diff"
	"github.com/stackdiff/stackdiff/internal/exitcode"
	"github.com/stackdiff/stackdiff/internal/output"
	"github.com/stackdiff/stackdiff/internal/render"
)

var diffCmd = &cobra.Command{
	Use:   "diff TEMPLATE",
	Short: "Diff a local template against the deployed stack",
	Long: `Diffs the local template file against the live state of the stack.

Two reports are produced:

  1. a textual diff of the deployed template vs the local file, computed by
     an external diff program (diff -u by default, override with
     STACKDIFF_DIFFER or diff.command in stackdiff.yaml)
  2. the resource changes CloudFormation computed for a dry-run changeset

The changeset is deleted again before the command exits, on every path.`,
	Args: cobra.ExactArgs(1),
	RunE: runDiff,
}

var (
	diffStackName  string
	diffRegion     string
	diffParameters []string
)

func init() {
	diffCmd.Flags().StringVarP(&diffStackName, "stack-name", "s", "", "name of the CloudFormation stack to diff against")
	diffCmd.Flags().StringVar(&diffRegion, "region", "", "AWS region of the stack (default: SDK chain)")
	diffCmd.Flags().StringArrayVarP(&diffParameters, "parameter", "p", nil, "template parameter in the form 'key=value' (repeatable)")

	rootCmd.AddCommand(diffCmd)
}

func runDiff(cmd *cobra.Command, args []string) error {
	output.Init(verbosity > 0, jsonOutput)

	settings, err := loadSettings()
	if err != nil {
		return exitcode.Wrap(exitcode.Validation, err)
	}

	stackName := settings.Stack.Name
	if diffStackName != "" {
		stackName = diffStackName
	}
	if stackName == "" {
		return exitcode.Wrap(exitcode.Validation,
			fmt.Errorf("no stack name: pass --stack-name or set stack.name in %s", config.DefaultFileName))
	}
	region := settings.Stack.Region
	if diffRegion != "" {
		region = diffRegion
	}

	parameters, err := mergeParameters(settings.Stack.Parameters, diffParameters)
	if err != nil {
		return exitcode.Wrap(exitcode.Validation, err)
	}

	templatePath := args[0]
	body, err := os.ReadFile(templatePath)
	if err != nil {
		return exitcode.Wrap(exitcode.Validation, fmt.Errorf("reading template %s: %w", templatePath, err))
	}

	differ, err := diff.New(diff.ResolveCommand(settings.Diff.Command))
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	client, err := cfn.NewClient(ctx, region)
	if err != nil {
		return fmt.Errorf("loading AWS configuration: %w", err)
	}

	opts := diffOptions{
		stackName:    stackName,
		templatePath: templatePath,
		templateBody: string(body),
		parameters:   parameters,
		json:         jsonOutput,
	}
	return diffRun(ctx, opts, cfn.NewLifecycle(client, cfn.DefaultRetryPolicy()), differ, cmd.OutOrStdout())
}

type diffOptions struct {
	stackName    string
	templatePath string
	templateBody string
	parameters   []config.Parameter
	json         bool
}

// diffRun drives one complete diff: fetch the deployed template and create
// the changeset concurrently, print the template diff, poll the changeset to
// a terminal status, print the change report, and delete the changeset.
//
// Once the changeset exists it is always deleted, whatever else fails; the
// cleanup runs on a context detached from the (possibly canceled) run
// context so an interrupt during polling cannot leak it.
func diffRun(ctx context.Context, opts diffOptions, lc *cfn.Lifecycle, differ *diff.Differ, out io.Writer) (err error) {
	var current string
	var handle cfn.Handle

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var gerr error
		current, gerr = lc.CurrentTemplate(gctx, opts.stackName)
		return gerr
	})
	g.Go(func() error {
		var gerr error
		handle, gerr = lc.Create(gctx, cfn.Request{
			StackName:    opts.stackName,
			TemplateBody: opts.templateBody,
			Parameters:   opts.parameters,
		})
		return gerr
	})
	err = g.Wait()

	if handle != (cfn.Handle{}) {
		defer func() {
			cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
			defer cancel()
			if derr := lc.Delete(cleanupCtx, handle); derr != nil {
				output.Warn("failed to delete changeset", "changeset", handle.ChangeSetName, "error", derr)
				if err == nil {
					err = derr
				}
			}
		}()
	}
	if err != nil {
		return err
	}

	diffText, derr := differ.Diff(opts.templatePath, current)
	if derr != nil {
		output.Warn("template diff failed", "error", derr)
	}
	// The template diff goes out before polling starts: it stays visible
	// even when a later step fails.
	if !opts.json {
		printDiffText(out, diffText)
	}

	var result *cfn.Result
	werr := output.WithSpinner("Computing changeset", func() error {
		var perr error
		result, perr = lc.Wait(ctx, handle)
		return perr
	})
	if werr != nil {
		return werr
	}

	renderer := render.New(!output.NoColor() && !opts.json)
	lines := renderer.Render(result.Changes)

	if opts.json {
		output.JSON(map[string]interface{}{
			"stack":        opts.stackName,
			"status":       string(result.Status),
			"statusReason": result.StatusReason,
			"templateDiff": diffText,
			"changes":      lines,
		})
		return nil
	}

	if result.Succeeded() {
		for _, line := range lines {
			fmt.Fprintln(out, line)
		}
	} else {
		// Failed-but-reportable, e.g. "didn't contain changes": surface the
		// status instead of treating it as an orchestration error.
		fmt.Fprintln(out, renderer.StatusLine(result.Status))
		if result.StatusReason != "" {
			output.Info(result.StatusReason)
		}
	}
	return nil
}

func printDiffText(out io.Writer, diffText string) {
	if strings.TrimSpace(diffText) != "" {
		fmt.Fprintln(out, diffText)
	}
}

// mergeParameters overlays flag parameters on the config file's list. File
// order is preserved; a flag with a known key overrides in place, new keys
// append in flag order.
func mergeParameters(fromConfig []config.Parameter, fromFlags []string) ([]config.Parameter, error) {
	merged := make([]config.Parameter, len(fromConfig))
	copy(merged, fromConfig)

	for _, raw := range fromFlags {
		key, value, ok := strings.Cut(raw, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid parameter %q: expected key=value", raw)
		}
		replaced := false
		for i := range merged {
			if merged[i].Key == key {
				merged[i].Value = value
				replaced = true
				break
			}
		}
		if !replaced {
			merged = append(merged, config.Parameter{Key: key, Value: value})
		}
	}
	return merged, nil
}

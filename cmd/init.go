package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stackdiff/stackdiff/internal/config"
	"github.com/stackdiff/stackdiff/internal/exitcode"
	"github.com/stackdiff/stackdiff/internal/output"
	"github.com/stackdiff/stackdiff/internal/wizard"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a stackdiff.yaml configuration file",
	Long: `Creates stackdiff.yaml in the working directory.

With --stack-name the file is written non-interactively from flags;
otherwise an interactive wizard collects the settings.

This command will not overwrite an existing file unless --force is given.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

var (
	initStackName  string
	initRegion     string
	initDiffer     string
	initParameters []string
	initForce      bool
)

func init() {
	initCmd.Flags().StringVar(&initStackName, "stack-name", "", "name of the CloudFormation stack (skips the wizard)")
	initCmd.Flags().StringVar(&initRegion, "region", "", "AWS region of the stack")
	initCmd.Flags().StringVar(&initDiffer, "differ", "", "external differ command (default: 'diff -u')")
	initCmd.Flags().StringArrayVar(&initParameters, "parameter", nil, "template parameter in the form 'key=value' (repeatable)")
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing stackdiff.yaml")

	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, _ []string) error {
	output.Init(verbosity > 0, jsonOutput)

	path := config.DefaultFileName
	if cfgFile != "" {
		path = cfgFile
	}
	if _, err := os.Stat(path); err == nil && !initForce {
		return exitcode.Wrap(exitcode.Validation,
			fmt.Errorf("%s already exists (use --force to overwrite)", path))
	}

	settings, err := buildInitSettings()
	if err != nil {
		if errors.Is(err, wizard.ErrCancelled) {
			output.Warn("init cancelled")
			return nil
		}
		return exitcode.Wrap(exitcode.Validation, err)
	}

	result, err := config.Validate(settings)
	if err != nil {
		return exitcode.Wrap(exitcode.Validation, err)
	}
	if !result.Valid {
		for _, e := range result.Errors {
			output.Error(fmt.Sprintf("%s: %s", e.Field, e.Description))
		}
		return exitcode.Wrap(exitcode.Validation, fmt.Errorf("generated configuration is invalid"))
	}

	if err := config.Save(settings, path); err != nil {
		return err
	}

	if jsonOutput {
		output.JSON(map[string]interface{}{"path": path, "config": settings})
		return nil
	}
	output.Success("wrote " + path)
	fmt.Fprintf(cmd.ErrOrStderr(), "\nNext: stackdiff diff -s %s <template>\n", settings.Stack.Name)
	return nil
}

func buildInitSettings() (*config.Settings, error) {
	if initStackName == "" {
		cfg, err := wizard.NewInitWizard(nil).Run()
		if err != nil {
			return nil, err
		}
		return cfg.ToSettings(), nil
	}

	parameters, err := mergeParameters(nil, initParameters)
	if err != nil {
		return nil, err
	}
	cfg := wizard.InitConfig{
		StackName:     initStackName,
		Region:        initRegion,
		DifferCommand: initDiffer,
		Parameters:    parameters,
	}
	return cfg.ToSettings(), nil
}

// Package cmd implements the Cobra-based CLI for stackdiff.
package cmd

import (
	"context"
	"fmt"
	"os"

	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/stackdiff/stackdiff/internal/config"
)

var (
	cfgFile    string
	verbosity  int
	jsonOutput bool // --json flag for machine-readable output
)

// rootCmd is the top-level command for stackdiff.
var rootCmd = &cobra.Command{
	Use:   "stackdiff",
	Short: "A CloudFormation stack diff tool",
	Long: `stackdiff diffs a local CloudFormation template against the live state of a
deployed stack.

It asks CloudFormation to compute a dry-run changeset, prints a textual diff
of the two templates (via an external diff program), prints the resulting
resource changes, and deletes the transient changeset again. Nothing is ever
applied.

Project configuration lives in stackdiff.yaml (optional); every setting can
also be supplied with flags.

Workflow: init → validate → diff`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command under the given context.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: stackdiff.yaml)")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase verbosity (-v, -vv)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output results as JSON (machine-readable)")

	// Accept snake_case spellings of flags, matching the STACKDIFF_* env names.
	rootCmd.PersistentFlags().SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("stackdiff")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}
	viper.SetEnvPrefix("STACKDIFF")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbosity > 0 {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// configPath returns the config file to use: --config when given, otherwise
// stackdiff.yaml in the working directory. Empty means no config file.
func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if _, err := os.Stat(config.DefaultFileName); err == nil {
		return config.DefaultFileName
	}
	return ""
}

// loadSettings loads the config file when one exists. A missing file is not
// an error: flags alone can drive a run.
func loadSettings() (*config.Settings, error) {
	path := configPath()
	if path == "" {
		return &config.Settings{}, nil
	}
	return config.Load(path)
}

// Package doctor implements prerequisite checks for stackdiff.
//
// It validates that the configured differ program exists, that
// stackdiff.yaml (if present) parses and matches the schema, and that AWS
// credentials, region, and the target stack are usable.
package doctor

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/stackdiff/stackdiff/internal/config"
)

// Status represents the outcome of a single check.
type Status string

const (
	StatusPass Status = "pass"
	StatusFail Status = "fail"
	StatusWarn Status = "warn"
	StatusSkip Status = "skip"
)

// CheckResult is the outcome of running a single prerequisite check.
type CheckResult struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Status   Status `json:"status"`
	Message  string `json:"message"`
	Fix      string `json:"fix,omitempty"`
}

// Check defines a single prerequisite check.
type Check struct {
	Name     string
	Category string // "differ", "config", "aws"
	Critical bool   // if true, failure => exit code 1
	Run      func(ctx context.Context, exec CmdExecutor) CheckResult
}

// CmdExecutor abstracts command and PATH lookups for testability.
type CmdExecutor interface {
	// Run executes a command and returns combined stdout+stderr output.
	Run(ctx context.Context, name string, args ...string) (string, error)
	// LookPath resolves an executable on PATH.
	LookPath(name string) (string, error)
}

// realExecutor runs commands via os/exec.
type realExecutor struct{}

func (r *realExecutor) Run(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	return strings.TrimSpace(string(out)), err
}

func (r *realExecutor) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// NewRealExecutor returns a CmdExecutor backed by os/exec.
func NewRealExecutor() CmdExecutor {
	return &realExecutor{}
}

// Probe is a remote lookup supplied by the command wiring, such as resolving
// AWS credentials or fetching the configured stack's template. It returns a
// short human-readable summary on success.
type Probe func(ctx context.Context) (string, error)

// Options parameterizes the check list for the current environment.
type Options struct {
	DifferCommand string // resolved differ command line
	ConfigPath    string // stackdiff.yaml path; empty when absent
	Region        string // resolved region; empty when unset
	StackName     string // configured stack; empty when unset
	Credentials   Probe  // resolves AWS credentials; nil skips the check
	Stack         Probe  // fetches the stack template; nil skips the check
}

// Summary holds the aggregated results of all checks.
type Summary struct {
	Results    []CheckResult `json:"results"`
	TotalPass  int           `json:"totalPass"`
	TotalFail  int           `json:"totalFail"`
	TotalWarn  int           `json:"totalWarn"`
	TotalSkip  int           `json:"totalSkip"`
	HasFailure bool          `json:"hasFailure"`
}

// RunAll executes all checks and returns a summary.
func RunAll(ctx context.Context, executor CmdExecutor, opts Options) Summary {
	checks := Checks(opts)
	results := make([]CheckResult, 0, len(checks))
	for _, c := range checks {
		r := c.Run(ctx, executor)
		r.Name = c.Name
		r.Category = c.Category
		results = append(results, r)
	}
	return buildSummary(results, checks)
}

func buildSummary(results []CheckResult, checks []Check) Summary {
	s := Summary{Results: results}
	for i, r := range results {
		switch r.Status {
		case StatusPass:
			s.TotalPass++
		case StatusFail:
			s.TotalFail++
			if checks[i].Critical {
				s.HasFailure = true
			}
		case StatusWarn:
			s.TotalWarn++
		case StatusSkip:
			s.TotalSkip++
		}
	}
	return s
}

// Checks returns the ordered list of prerequisite checks.
func Checks(opts Options) []Check {
	return []Check{
		checkDiffer(opts),
		checkConfig(opts),
		checkCredentials(opts),
		checkRegion(opts),
		checkStack(opts),
	}
}

func checkDiffer(opts Options) Check {
	return Check{
		Name:     "differ",
		Category: "differ",
		Critical: true,
		Run: func(_ context.Context, ex CmdExecutor) CheckResult {
			words, err := shellquote.Split(opts.DifferCommand)
			if err != nil || len(words) == 0 {
				return CheckResult{
					Status:  StatusFail,
					Message: fmt.Sprintf("differ command %q is not parseable", opts.DifferCommand),
					Fix:     "Set diff.command in stackdiff.yaml or the STACKDIFF_DIFFER env var, e.g. 'diff -u'",
				}
			}
			path, err := ex.LookPath(words[0])
			if err != nil {
				return CheckResult{
					Status:  StatusFail,
					Message: fmt.Sprintf("differ program %q not found on PATH", words[0]),
					Fix:     fmt.Sprintf("Install %q or configure another differ via STACKDIFF_DIFFER", words[0]),
				}
			}
			return CheckResult{
				Status:  StatusPass,
				Message: fmt.Sprintf("differ %q found at %s", opts.DifferCommand, path),
			}
		},
	}
}

func checkConfig(opts Options) Check {
	return Check{
		Name:     "config",
		Category: "config",
		Critical: true,
		Run: func(_ context.Context, _ CmdExecutor) CheckResult {
			if opts.ConfigPath == "" {
				return CheckResult{
					Status:  StatusSkip,
					Message: "no stackdiff.yaml found; stack name and region must come from flags",
				}
			}
			cfg, err := config.Load(opts.ConfigPath)
			if err != nil {
				return CheckResult{
					Status:  StatusFail,
					Message: fmt.Sprintf("cannot load %s: %v", opts.ConfigPath, err),
					Fix:     "Fix the YAML or regenerate it with: stackdiff init --force",
				}
			}
			result, err := config.Validate(cfg)
			if err != nil {
				return CheckResult{Status: StatusFail, Message: fmt.Sprintf("schema validation error: %v", err)}
			}
			if !result.Valid {
				return CheckResult{
					Status:  StatusFail,
					Message: fmt.Sprintf("%s fails schema validation (%d error(s))", opts.ConfigPath, len(result.Errors)),
					Fix:     "Run: stackdiff validate",
				}
			}
			return CheckResult{Status: StatusPass, Message: opts.ConfigPath + " is valid"}
		},
	}
}

func checkCredentials(opts Options) Check {
	return Check{
		Name:     "aws-credentials",
		Category: "aws",
		Critical: true,
		Run: func(ctx context.Context, _ CmdExecutor) CheckResult {
			if opts.Credentials == nil {
				return CheckResult{Status: StatusSkip, Message: "credential probe unavailable"}
			}
			summary, err := opts.Credentials(ctx)
			if err != nil {
				return CheckResult{
					Status:  StatusFail,
					Message: "no resolvable AWS credentials",
					Fix:     "Configure the default credential chain (env vars, ~/.aws/credentials, or an instance profile)",
				}
			}
			return CheckResult{Status: StatusPass, Message: summary}
		},
	}
}

func checkRegion(opts Options) Check {
	return Check{
		Name:     "aws-region",
		Category: "aws",
		Critical: false,
		Run: func(_ context.Context, _ CmdExecutor) CheckResult {
			if opts.Region == "" {
				return CheckResult{
					Status:  StatusWarn,
					Message: "no region configured; the SDK default chain must supply one",
					Fix:     "Set stack.region in stackdiff.yaml or pass --region",
				}
			}
			return CheckResult{Status: StatusPass, Message: "region " + opts.Region}
		},
	}
}

func checkStack(opts Options) Check {
	return Check{
		Name:     "stack",
		Category: "aws",
		Critical: false,
		Run: func(ctx context.Context, _ CmdExecutor) CheckResult {
			if opts.StackName == "" || opts.Stack == nil {
				return CheckResult{Status: StatusSkip, Message: "no stack configured"}
			}
			summary, err := opts.Stack(ctx)
			if err != nil {
				return CheckResult{
					Status:  StatusFail,
					Message: fmt.Sprintf("stack %q not reachable: %v", opts.StackName, err),
					Fix:     "Check the stack name, region, and that your credentials may call cloudformation:GetTemplate",
				}
			}
			return CheckResult{Status: StatusPass, Message: summary}
		},
	}
}

// Package diff invokes an external line-diff program over two template
// bodies: the local file and the deployed stack's current template.
package diff

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/kballard/go-shellquote"
)

// EnvVar overrides the configured differ command when set.
const EnvVar = "STACKDIFF_DIFFER"

// defaultCommand produces a unified diff with the system diff tool.
const defaultCommand = "diff -u"

// ConfigError means the configured differ command is empty or unparseable.
type ConfigError struct {
	Command string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid differ command %q", e.Command)
}

// Runner executes the differ program. Injected so tests avoid spawning
// processes.
type Runner func(name string, args ...string) ([]byte, error)

func defaultRunner(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).Output()
}

// Differ shells out to a configured line-diff program.
type Differ struct {
	program string
	args    []string
	runner  Runner
}

// ResolveCommand picks the differ command: the STACKDIFF_DIFFER environment
// variable wins over the configured value, which wins over the default.
func ResolveCommand(configured string) string {
	if v := strings.TrimSpace(os.Getenv(EnvVar)); v != "" {
		return v
	}
	if strings.TrimSpace(configured) != "" {
		return configured
	}
	return defaultCommand
}

// New parses the differ command into a program and arguments.
func New(command string) (*Differ, error) {
	return NewWithRunner(command, nil)
}

// NewWithRunner is New with an injected runner.
func NewWithRunner(command string, runner Runner) (*Differ, error) {
	words, err := shellquote.Split(command)
	if err != nil || len(words) == 0 {
		return nil, &ConfigError{Command: command}
	}
	if runner == nil {
		runner = defaultRunner
	}
	return &Differ{program: words[0], args: words[1:], runner: runner}, nil
}

// Program returns the differ executable name, for prerequisite checks.
func (d *Differ) Program() string { return d.program }

// Diff persists remoteBody to a temp file whose suffix matches the local
// template's extension (so syntax-aware differs pick the right mode) and
// invokes the program with (localPath, tempPath). The program's stdout is
// the diff text.
//
// A non-zero exit with output is not a failure: diff-style tools exit 1
// whenever the files differ.
func (d *Differ) Diff(localPath, remoteBody string) (string, error) {
	tmp, err := os.CreateTemp("", "stackdiff-*"+filepath.Ext(localPath))
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(remoteBody); err != nil {
		tmp.Close()
		return "", fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("closing temp file: %w", err)
	}

	out, err := d.runner(d.program, append(append([]string{}, d.args...), localPath, tmp.Name())...)
	if err != nil && len(out) == 0 {
		return "", fmt.Errorf("running differ %s: %w", d.program, err)
	}
	return string(out), nil
}

// Package config provides the configuration schema, loader, validator, and
// default values for stackdiff.yaml — the optional per-project config file
// that pins the stack name, region, differ command, and default parameters.
//
// Everything in stackdiff.yaml can also be supplied via flags; the file just
// saves retyping them on every diff.
package config

// Settings is the root struct matching stackdiff.yaml.
type Settings struct {
	APIVersion string `yaml:"apiVersion" json:"apiVersion"` // "stackdiff/v1"
	Stack      Stack  `yaml:"stack" json:"stack"`
	Diff       Diff   `yaml:"diff,omitempty" json:"diff,omitempty"`
}

// Stack identifies the CloudFormation stack to diff against.
type Stack struct {
	Name   string `yaml:"name" json:"name"`
	Region string `yaml:"region,omitempty" json:"region,omitempty"`
	// Parameters are template parameters passed on every changeset, in file
	// order. Flags with the same key override file values.
	Parameters []Parameter `yaml:"parameters,omitempty" json:"parameters,omitempty"`
}

// Parameter is one template parameter key/value pair.
type Parameter struct {
	Key   string `yaml:"key" json:"key"`
	Value string `yaml:"value" json:"value"`
}

// Diff holds local differ settings.
type Diff struct {
	// Command is the external line-diff program plus arguments, e.g. "diff -u"
	// or "git diff --no-index". Overridable with the STACKDIFF_DIFFER env var.
	Command string `yaml:"command,omitempty" json:"command,omitempty"`
}

const (
	// APIVersion is the only supported config file version.
	APIVersion = "stackdiff/v1"

	// DefaultDifferCommand produces a unified diff with the system diff tool.
	DefaultDifferCommand = "diff -u"

	// DefaultFileName is where Save writes and commands look first.
	DefaultFileName = "stackdiff.yaml"
)

// ApplyDefaults fills in default values for optional fields that were not
// specified in the YAML. It is called after parsing and before validation.
func ApplyDefaults(cfg *Settings) {
	if cfg.APIVersion == "" {
		cfg.APIVersion = APIVersion
	}
	if cfg.Diff.Command == "" {
		cfg.Diff.Command = DefaultDifferCommand
	}
}

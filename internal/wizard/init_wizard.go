package wizard

import (
	"strings"

	"github.com/stackdiff/stackdiff/internal/config"
)

// InitConfig captures all inputs collected by the init wizard.
type InitConfig struct {
	StackName     string
	Region        string
	DifferCommand string
	Parameters    []config.Parameter
}

// ToSettings converts wizard input to the config model.
func (c InitConfig) ToSettings() *config.Settings {
	cfg := &config.Settings{
		APIVersion: config.APIVersion,
		Stack: config.Stack{
			Name:       strings.TrimSpace(c.StackName),
			Region:     c.Region,
			Parameters: c.Parameters,
		},
		Diff: config.Diff{
			Command: strings.TrimSpace(c.DifferCommand),
		},
	}
	config.ApplyDefaults(cfg)
	return cfg
}

// InitWizard drives the interactive init flow.
type InitWizard struct {
	prompter Prompter
}

// NewInitWizard returns an init wizard; if p is nil, survey is used.
func NewInitWizard(p Prompter) *InitWizard {
	if p == nil {
		p = NewSurveyPrompter()
	}
	return &InitWizard{prompter: p}
}

// Run collects wizard input in the required order.
func (w *InitWizard) Run() (*InitConfig, error) {
	cfg := &InitConfig{}
	var err error

	cfg.StackName, err = w.prompter.Input("Stack name", "", ValidateStackName)
	if err != nil {
		return nil, err
	}

	cfg.Region, err = w.prompter.Select("AWS region", CommonAWSRegions, "us-east-1")
	if err != nil {
		return nil, err
	}

	cfg.DifferCommand, err = w.prompter.Input("Differ command", config.DefaultDifferCommand, ValidateNonEmpty)
	if err != nil {
		return nil, err
	}

	for {
		label := "Add a template parameter?"
		if len(cfg.Parameters) > 0 {
			label = "Add another template parameter?"
		}
		more, err := w.prompter.Confirm(label, false)
		if err != nil {
			return nil, err
		}
		if !more {
			break
		}

		raw, err := w.prompter.Input("Parameter (key=value)", "", ValidateKeyValue)
		if err != nil {
			return nil, err
		}
		key, value, ok := strings.Cut(raw, "=")
		if !ok {
			continue
		}
		cfg.Parameters = append(cfg.Parameters, config.Parameter{
			Key:   strings.TrimSpace(key),
			Value: value,
		})
	}

	return cfg, nil
}

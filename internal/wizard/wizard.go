// Package wizard implements the interactive prompts behind stackdiff init.
package wizard

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// ErrCancelled is returned when the user aborts the wizard with Ctrl+C.
var ErrCancelled = terminal.InterruptErr

// CloudFormation stack names: alphanumeric and hyphens, starting with a letter.
var stackNameRegex = regexp.MustCompile(`^[a-zA-Z][-a-zA-Z0-9]{0,127}$`)

// CommonAWSRegions provides region choices with sensible defaults.
var CommonAWSRegions = []string{
	"us-east-1",
	"us-east-2",
	"us-west-2",
	"eu-west-1",
	"eu-central-1",
	"eu-north-1",
	"ap-southeast-1",
	"ap-southeast-2",
	"ap-northeast-1",
	"sa-east-1",
}

// ValidateStackName validates a CloudFormation stack name.
func ValidateStackName(value interface{}) error {
	v := strings.TrimSpace(fmt.Sprintf("%v", value))
	if !stackNameRegex.MatchString(v) {
		return fmt.Errorf("stack name must start with a letter and contain only letters, digits, and hyphens")
	}
	return nil
}

// ValidateNonEmpty ensures a required value is provided.
func ValidateNonEmpty(value interface{}) error {
	if strings.TrimSpace(fmt.Sprintf("%v", value)) == "" {
		return fmt.Errorf("value is required")
	}
	return nil
}

// ValidateKeyValue ensures a template parameter is in key=value form.
func ValidateKeyValue(value interface{}) error {
	v := strings.TrimSpace(fmt.Sprintf("%v", value))
	pos := strings.Index(v, "=")
	if pos < 1 {
		return fmt.Errorf("parameter must be in the form key=value")
	}
	return nil
}

// Prompter abstracts user interaction for testing.
type Prompter interface {
	Input(label, defaultValue string, validator survey.Validator) (string, error)
	Select(label string, options []string, defaultValue string) (string, error)
	Confirm(label string, defaultValue bool) (bool, error)
}

// SurveyPrompter implements Prompter with survey/v2.
type SurveyPrompter struct{}

// NewSurveyPrompter returns a survey-based prompter.
func NewSurveyPrompter() *SurveyPrompter {
	return &SurveyPrompter{}
}

func (p *SurveyPrompter) Input(label, defaultValue string, validator survey.Validator) (string, error) {
	var value string
	var opts []survey.AskOpt
	if validator != nil {
		opts = append(opts, survey.WithValidator(validator))
	}
	err := survey.AskOne(&survey.Input{
		Message: label,
		Default: defaultValue,
	}, &value, opts...)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(value), nil
}

func (p *SurveyPrompter) Select(label string, options []string, defaultValue string) (string, error) {
	var value string
	err := survey.AskOne(&survey.Select{
		Message: label,
		Options: options,
		Default: defaultValue,
	}, &value)
	if err != nil {
		return "", err
	}
	return value, nil
}

func (p *SurveyPrompter) Confirm(label string, defaultValue bool) (bool, error) {
	var value bool
	err := survey.AskOne(&survey.Confirm{
		Message: label,
		Default: defaultValue,
	}, &value)
	if err != nil {
		return false, err
	}
	return value, nil
}

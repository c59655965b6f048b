package wizard

import (
	"fmt"
	"testing"

	"github.com/AlecAivazis/survey/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackdiff/stackdiff/internal/config"
	_ "github.com/stackdiff/stackdiff/schemas"
)

type mockPrompter struct {
	answers  map[string]interface{}
	confirms []bool // consumed in order by Confirm
	inputs   []string
	calls    []string
	errAt    string
}

func (m *mockPrompter) Input(label, defaultValue string, _ survey.Validator) (string, error) {
	m.calls = append(m.calls, label)
	if m.errAt == label {
		return "", ErrCancelled
	}
	if len(m.inputs) > 0 && label == "Parameter (key=value)" {
		v := m.inputs[0]
		m.inputs = m.inputs[1:]
		return v, nil
	}
	if v, ok := m.answers[label]; ok {
		return fmt.Sprintf("%v", v), nil
	}
	return defaultValue, nil
}

func (m *mockPrompter) Select(label string, _ []string, defaultValue string) (string, error) {
	m.calls = append(m.calls, label)
	if m.errAt == label {
		return "", ErrCancelled
	}
	if v, ok := m.answers[label]; ok {
		return fmt.Sprintf("%v", v), nil
	}
	return defaultValue, nil
}

func (m *mockPrompter) Confirm(label string, defaultValue bool) (bool, error) {
	m.calls = append(m.calls, label)
	if m.errAt == label {
		return false, ErrCancelled
	}
	if len(m.confirms) > 0 {
		v := m.confirms[0]
		m.confirms = m.confirms[1:]
		return v, nil
	}
	return defaultValue, nil
}

func TestInitWizard_CollectsAllFields(t *testing.T) {
	p := &mockPrompter{
		answers: map[string]interface{}{
			"Stack name":     "app-prod",
			"AWS region":     "eu-west-1",
			"Differ command": "git diff --no-index",
		},
		confirms: []bool{true, true, false},
		inputs:   []string{"Env=prod", "Size = large"},
	}

	cfg, err := NewInitWizard(p).Run()
	require.NoError(t, err)

	assert.Equal(t, "app-prod", cfg.StackName)
	assert.Equal(t, "eu-west-1", cfg.Region)
	assert.Equal(t, "git diff --no-index", cfg.DifferCommand)
	require.Len(t, cfg.Parameters, 2)
	assert.Equal(t, config.Parameter{Key: "Env", Value: "prod"}, cfg.Parameters[0])
	assert.Equal(t, "Size", cfg.Parameters[1].Key)
}

func TestInitWizard_NoParameters(t *testing.T) {
	p := &mockPrompter{
		answers:  map[string]interface{}{"Stack name": "app"},
		confirms: []bool{false},
	}

	cfg, err := NewInitWizard(p).Run()
	require.NoError(t, err)
	assert.Empty(t, cfg.Parameters)
	assert.Equal(t, "us-east-1", cfg.Region, "default region")
	assert.Equal(t, config.DefaultDifferCommand, cfg.DifferCommand)
}

func TestInitWizard_Cancelled(t *testing.T) {
	p := &mockPrompter{errAt: "AWS region"}

	_, err := NewInitWizard(p).Run()
	require.ErrorIs(t, err, ErrCancelled)
	assert.Equal(t, []string{"Stack name", "AWS region"}, p.calls)
}

func TestInitConfig_ToSettings(t *testing.T) {
	cfg := InitConfig{
		StackName:  " app ",
		Region:     "eu-west-1",
		Parameters: []config.Parameter{{Key: "Env", Value: "prod"}},
	}

	settings := cfg.ToSettings()
	assert.Equal(t, config.APIVersion, settings.APIVersion)
	assert.Equal(t, "app", settings.Stack.Name)
	assert.Equal(t, "eu-west-1", settings.Stack.Region)
	assert.Equal(t, config.DefaultDifferCommand, settings.Diff.Command, "defaults applied")

	result, err := config.Validate(settings)
	require.NoError(t, err)
	assert.True(t, result.Valid)
}

func TestValidateStackName(t *testing.T) {
	require.NoError(t, ValidateStackName("app-prod-2"))
	assert.Error(t, ValidateStackName("9starts-with-digit"))
	assert.Error(t, ValidateStackName("has spaces"))
	assert.Error(t, ValidateStackName(""))
}

func TestValidateKeyValue(t *testing.T) {
	require.NoError(t, ValidateKeyValue("Env=prod"))
	require.NoError(t, ValidateKeyValue("Env="))
	assert.Error(t, ValidateKeyValue("=prod"))
	assert.Error(t, ValidateKeyValue("no-equals"))
}

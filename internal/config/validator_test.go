package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadSchema(t *testing.T) {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "schemas", "stackdiff-v1.schema.json"))
	require.NoError(t, err, "failed to read schema file")
	SetSchema(data)
}

func TestValidate_ValidConfig(t *testing.T) {
	loadSchema(t)

	cfg, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)

	result, err := Validate(cfg)
	require.NoError(t, err)
	assert.True(t, result.Valid, "expected valid config but got errors: %v", result.Errors)
}

func TestValidate_MinimalConfig(t *testing.T) {
	loadSchema(t)

	cfg, err := Parse([]byte("stack:\n  name: orders-api\n"))
	require.NoError(t, err)

	result, err := Validate(cfg)
	require.NoError(t, err)
	assert.True(t, result.Valid, "expected valid config but got errors: %v", result.Errors)
}

func TestValidateYAML_MissingStackName(t *testing.T) {
	loadSchema(t)

	result, err := ValidateYAML([]byte("apiVersion: stackdiff/v1\nstack: {}\n"))
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.NotEmpty(t, result.Errors)
}

func TestValidateYAML_BadStackName(t *testing.T) {
	loadSchema(t)

	result, err := ValidateYAML([]byte("apiVersion: stackdiff/v1\nstack:\n  name: \"9-starts-with-digit\"\n"))
	require.NoError(t, err)
	assert.False(t, result.Valid)
}

func TestValidateYAML_BadRegion(t *testing.T) {
	loadSchema(t)

	result, err := ValidateYAML([]byte("apiVersion: stackdiff/v1\nstack:\n  name: orders-api\n  region: Ohio\n"))
	require.NoError(t, err)
	assert.False(t, result.Valid)
}

func TestValidateYAML_WrongAPIVersion(t *testing.T) {
	loadSchema(t)

	result, err := ValidateYAML([]byte("apiVersion: stackdiff/v2\nstack:\n  name: orders-api\n"))
	require.NoError(t, err)
	assert.False(t, result.Valid)
}

func TestValidate_SchemaNotLoaded(t *testing.T) {
	SetSchema(nil)
	t.Cleanup(func() { loadSchema(t) })

	_, err := Validate(&Settings{APIVersion: APIVersion, Stack: Stack{Name: "orders-api"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema not loaded")
}

func TestValidateYAML_BadYAML(t *testing.T) {
	loadSchema(t)

	_, err := ValidateYAML([]byte("stack: [unclosed"))
	require.Error(t, err)
}

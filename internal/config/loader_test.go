package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `apiVersion: stackdiff/v1
stack:
  name: orders-api
  region: eu-west-1
  parameters:
    - key: Environment
      value: staging
    - key: InstanceCount
      value: "3"
diff:
  command: git diff --no-index
`

func TestParse_FullConfig(t *testing.T) {
	cfg, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "stackdiff/v1", cfg.APIVersion)
	assert.Equal(t, "orders-api", cfg.Stack.Name)
	assert.Equal(t, "eu-west-1", cfg.Stack.Region)
	require.Len(t, cfg.Stack.Parameters, 2)
	assert.Equal(t, "Environment", cfg.Stack.Parameters[0].Key)
	assert.Equal(t, "staging", cfg.Stack.Parameters[0].Value)
	assert.Equal(t, "InstanceCount", cfg.Stack.Parameters[1].Key)
	assert.Equal(t, "3", cfg.Stack.Parameters[1].Value)
	assert.Equal(t, "git diff --no-index", cfg.Diff.Command)
}

func TestParse_DefaultsApplied(t *testing.T) {
	cfg, err := Parse([]byte("stack:\n  name: orders-api\n"))
	require.NoError(t, err)

	assert.Equal(t, APIVersion, cfg.APIVersion)
	assert.Equal(t, DefaultDifferCommand, cfg.Diff.Command)
	assert.Empty(t, cfg.Stack.Region)
	assert.Empty(t, cfg.Stack.Parameters)
}

func TestParse_BadYAML(t *testing.T) {
	_, err := Parse([]byte("stack: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config YAML")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)

	in := &Settings{
		APIVersion: APIVersion,
		Stack: Stack{
			Name:   "orders-api",
			Region: "us-east-1",
			Parameters: []Parameter{
				{Key: "Environment", Value: "production"},
			},
		},
		Diff: Diff{Command: DefaultDifferCommand},
	}
	require.NoError(t, Save(in, path))

	out, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestSave_NilConfig(t *testing.T) {
	err := Save(nil, filepath.Join(t.TempDir(), DefaultFileName))
	require.Error(t, err)
}

func TestSave_FilePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	require.NoError(t, Save(&Settings{APIVersion: APIVersion, Stack: Stack{Name: "s"}}, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.False(t, info.IsDir())
}

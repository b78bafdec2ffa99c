//go:build integration

package integration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalkCLI_Root(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingConfig(t)

	runner := NewCommandRunner(config, t)

	stdout, stderr, err := runner.Run("get", "--root", config.Root, "--output", "json")
	require.NoError(t, err, "Failed to get root: %s", stderr)

	output := AssertJSONOutput(t, stdout)
	assert.InDelta(t, 200, output["status"], 0)
	assert.NotEmpty(t, output["walk_id"])
	assert.Empty(t, output["steps"])
}

func TestWalkCLI_FollowRelation(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingConfig(t)

	if config.Relation == "" {
		t.Skip("LINKWALK_INTEGRATION_REL not set, skipping relation walk")
	}

	runner := NewCommandRunner(config, t)

	stdout, stderr, err := runner.Run("get", config.Relation, "--root", config.Root, "--output", "json")
	require.NoError(t, err, "Failed to walk %s: %s", config.Relation, stderr)

	output := AssertJSONOutput(t, stdout)

	steps, ok := output["steps"].([]interface{})
	require.True(t, ok)
	require.Len(t, steps, 1)

	step, ok := steps[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, config.Relation, step["relation"])
	assert.NotEmpty(t, step["uri"])
}

func TestWalkCLI_MissingRelation(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingConfig(t)

	runner := NewCommandRunner(config, t)

	_, stderr, err := runner.Run("get", "linkwalk-integration-missing-rel", "--root", config.Root)
	require.Error(t, err)
	assert.Contains(t, stderr, "link not found")
}

func TestWalkCLI_OutputFormats(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingConfig(t)

	runner := NewCommandRunner(config, t)

	stdout, stderr, err := runner.Run("get", "--root", config.Root, "--output", "yaml")
	require.NoError(t, err, "Failed to get root as YAML: %s", stderr)
	AssertYAMLOutput(t, stdout)

	stdout, stderr, err = runner.Run("get", "--root", config.Root)
	require.NoError(t, err, "Failed to get root as table: %s", stderr)
	assert.Contains(t, stdout, "Walk ID")
	assert.Contains(t, stdout, "Status")
}

func TestConfigCLI_SetShowUnset(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingConfig(t)

	runner := NewCommandRunner(config, t)

	_, stderr, err := runner.Run("config", "set", "root", config.Root)
	require.NoError(t, err, "Failed to set root: %s", stderr)

	_, stderr, err = runner.Run("config", "set", "embedded_policy", "require-self")
	require.NoError(t, err, "Failed to set embedded policy: %s", stderr)

	stdout, stderr, err := runner.Run("config", "show", "--output", "json")
	require.NoError(t, err, "Failed to show config: %s", stderr)

	output := AssertJSONOutput(t, stdout)
	assert.Equal(t, config.Root, output["root"])
	assert.Equal(t, "require-self", output["embedded_policy"])

	// The saved root is used when --root is omitted.
	_, stderr, err = runner.Run("get")
	require.NoError(t, err, "Failed to walk configured root: %s", stderr)

	_, stderr, err = runner.Run("config", "unset", "root")
	require.NoError(t, err, "Failed to unset root: %s", stderr)

	_, stderr, err = runner.Run("get")
	require.Error(t, err)
	assert.Contains(t, stderr, "no root URI configured")

	_, _, err = runner.Run("config", "set", "embedded_policy", "sometimes")
	require.Error(t, err)
}

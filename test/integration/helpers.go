//go:build integration

package integration

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

// TestConfig holds configuration for integration tests.
type TestConfig struct {
	Root       string
	Relation   string
	BinaryPath string
	Verbose    bool
}

// LoadTestConfig loads configuration from environment variables.
func LoadTestConfig() *TestConfig {
	return &TestConfig{
		Root:       os.Getenv("LINKWALK_INTEGRATION_ROOT"),
		Relation:   os.Getenv("LINKWALK_INTEGRATION_REL"),
		BinaryPath: getBinaryPath(),
		Verbose:    os.Getenv("LINKWALK_VERBOSE") == "true",
	}
}

// getBinaryPath determines the path to the linkwalk binary.
func getBinaryPath() string {
	if path := os.Getenv("LINKWALK_BINARY_PATH"); path != "" {
		return path
	}

	candidates := []string{
		"../../linkwalk",
		"./linkwalk",
		"../linkwalk",
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return "linkwalk"
}

// SkipIfMissingConfig skips the test when no API root or binary is available.
func (config *TestConfig) SkipIfMissingConfig(t *testing.T) {
	t.Helper()

	if config.Root == "" {
		t.Skip("LINKWALK_INTEGRATION_ROOT not set, skipping integration test")
	}

	if _, err := exec.LookPath(config.BinaryPath); err != nil {
		t.Skipf("linkwalk binary not found at %s, skipping integration test", config.BinaryPath)
	}
}

// CommandRunner runs linkwalk commands against an isolated config file.
type CommandRunner struct {
	config     *TestConfig
	configFile string
	t          *testing.T
}

// NewCommandRunner creates a command runner whose config file lives in a
// temporary directory.
func NewCommandRunner(config *TestConfig, t *testing.T) *CommandRunner {
	t.Helper()

	return &CommandRunner{
		config:     config,
		configFile: filepath.Join(t.TempDir(), "config.yml"),
		t:          t,
	}
}

// Run executes a linkwalk command and returns its output.
func (runner *CommandRunner) Run(args ...string) (stdout, stderr string, err error) {
	return runner.RunWithInput("", args...)
}

// RunWithInput executes a linkwalk command with input on standard input.
func (runner *CommandRunner) RunWithInput(input string, args ...string) (stdout, stderr string, err error) {
	args = append([]string{"--config", runner.configFile}, args...)

	// #nosec G204 -- the binary path comes from the test environment
	cmd := exec.Command(runner.config.BinaryPath, args...)

	var stdoutBuf, stderrBuf bytes.Buffer

	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	if input != "" {
		cmd.Stdin = strings.NewReader(input)
	}

	if runner.config.Verbose {
		runner.t.Logf("Running: %s %s", runner.config.BinaryPath, strings.Join(args, " "))
	}

	err = cmd.Run()
	stdout = stdoutBuf.String()
	stderr = stderrBuf.String()

	if runner.config.Verbose && err != nil {
		runner.t.Logf("Command failed: %v\nStdout: %s\nStderr: %s", err, stdout, stderr)
	}

	return stdout, stderr, err
}

// AssertJSONOutput verifies command output is a JSON document and returns it.
func AssertJSONOutput(t *testing.T, output string) map[string]interface{} {
	t.Helper()

	var decoded map[string]interface{}

	err := json.Unmarshal([]byte(strings.TrimSpace(output)), &decoded)
	if err != nil {
		t.Fatalf("Output is not a JSON object: %v\n%s", err, output)
	}

	return decoded
}

// AssertYAMLOutput verifies command output is a YAML mapping.
func AssertYAMLOutput(t *testing.T, output string) {
	t.Helper()

	var decoded map[string]interface{}

	err := yaml.Unmarshal([]byte(output), &decoded)
	if err != nil || len(decoded) == 0 {
		t.Errorf("Output does not appear to be a YAML mapping: %v\n%s", err, output)
	}
}

//go:build integration

package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"
)

// TestConfig holds configuration for integration tests
type TestConfig struct {
	Token        string
	SiteID       string
	CollectionID string
	WebflowPath  string
	Verbose      bool
}

// LoadTestConfig loads configuration from environment variables
func LoadTestConfig() *TestConfig {
	return &TestConfig{
		Token:        os.Getenv("WEBFLOW_TOKEN"),
		SiteID:       os.Getenv("WEBFLOW_SITE"),
		CollectionID: os.Getenv("WEBFLOW_COLLECTION"),
		WebflowPath:  getWebflowPath(),
		Verbose:      os.Getenv("WEBFLOW_VERBOSE") == "true",
	}
}

// getWebflowPath determines the path to the webflow binary
func getWebflowPath() string {
	if path := os.Getenv("WEBFLOW_BINARY_PATH"); path != "" {
		return path
	}

	candidates := []string{
		"../../webflow",
		"./webflow",
		"../webflow",
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return "webflow" // Fallback to PATH
}

// SkipIfMissingConfig skips test if required config is missing
func (config *TestConfig) SkipIfMissingConfig(t *testing.T) {
	t.Helper()

	if config.Token == "" || config.SiteID == "" {
		t.Skip("WEBFLOW_TOKEN or WEBFLOW_SITE not set, skipping integration test")
	}

	if _, err := exec.LookPath(config.WebflowPath); err != nil {
		t.Skipf("webflow binary not found at %s, skipping integration test", config.WebflowPath)
	}
}

// SkipIfNoCollection skips tests that write items when no scratch collection is configured.
func (config *TestConfig) SkipIfNoCollection(t *testing.T) {
	t.Helper()

	if config.CollectionID == "" {
		t.Skip("WEBFLOW_COLLECTION not set, skipping item workflow")
	}
}

// CommandRunner provides utilities for running webflow commands
type CommandRunner struct {
	config *TestConfig
	t      *testing.T
}

// NewCommandRunner creates a new command runner
func NewCommandRunner(config *TestConfig, t *testing.T) *CommandRunner {
	return &CommandRunner{
		config: config,
		t:      t,
	}
}

// Run executes a webflow command and returns output. The token and site
// travel through the environment so they never show up in test logs.
func (runner *CommandRunner) Run(args ...string) (stdout, stderr string, err error) {
	return runner.RunWithInput("", args...)
}

// RunWithInput executes a webflow command with stdin input
func (runner *CommandRunner) RunWithInput(input string, args ...string) (stdout, stderr string, err error) {
	cmd := exec.Command(runner.config.WebflowPath, args...)
	cmd.Env = append(os.Environ(),
		"WEBFLOW_TOKEN="+runner.config.Token,
		"WEBFLOW_SITE="+runner.config.SiteID,
	)

	var stdoutBuf, stderrBuf bytes.Buffer

	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf
	cmd.Stdin = strings.NewReader(input)

	if runner.config.Verbose {
		runner.t.Logf("Running: %s %s", runner.config.WebflowPath, strings.Join(args, " "))
	}

	err = cmd.Run()
	stdout = stdoutBuf.String()
	stderr = stderrBuf.String()

	if runner.config.Verbose && err != nil {
		runner.t.Logf("Command failed: %v\nStdout: %s\nStderr: %s", err, stdout, stderr)
	}

	return stdout, stderr, err
}

// RunJSON executes a webflow command with --output json and decodes the result.
func (runner *CommandRunner) RunJSON(target any, args ...string) error {
	stdout, stderr, err := runner.Run(append(args, "--output", "json")...)
	if err != nil {
		return fmt.Errorf("webflow %s: %w: %s", strings.Join(args, " "), err, stderr)
	}

	err = json.Unmarshal([]byte(stdout), target)
	if err != nil {
		return fmt.Errorf("decoding output of webflow %s: %w", strings.Join(args, " "), err)
	}

	return nil
}

// GenerateTestName creates a unique test resource name
func GenerateTestName(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

// CleanupItem attempts to delete a test item
func (runner *CommandRunner) CleanupItem(collectionID, itemID string) {
	if itemID == "" {
		return
	}

	stdout, stderr, err := runner.Run("items", "delete", collectionID, itemID)
	if err != nil && runner.config.Verbose {
		runner.t.Logf("Cleanup warning for item %s: %s\nStderr: %s", itemID, stdout, stderr)
	}
}

// AssertJSONOutput verifies command output is valid JSON
func AssertJSONOutput(t *testing.T, output string) {
	t.Helper()

	if !json.Valid([]byte(strings.TrimSpace(output))) {
		t.Errorf("Output does not appear to be JSON: %s", output)
	}
}

// AssertYAMLOutput verifies command output is valid YAML
func AssertYAMLOutput(t *testing.T, output string) {
	t.Helper()

	output = strings.TrimSpace(output)
	if strings.Contains(output, "---") || strings.Contains(output, ":") {
		return // Looks like YAML
	}

	t.Errorf("Output does not appear to be YAML: %s", output)
}

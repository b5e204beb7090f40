// Package integration provides CLI integration tests for keeper.
package integration

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

var (
	// keeperBin is the path to the built keeper binary.
	keeperBin string
	// buildErr captures any build error.
	buildErr error
)

// BuildError wraps a build error with output.
type BuildError struct {
	Err    error
	Output string
}

func (e *BuildError) Error() string {
	return e.Err.Error() + ": " + e.Output
}

// FindProjectRoot finds the project root by walking up and looking for go.mod.
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}

// SetKeeperBin sets the path to the keeper binary (called from TestMain).
func SetKeeperBin(path string) {
	keeperBin = path
}

// SetBuildErr sets the build error (called from TestMain).
func SetBuildErr(err error) {
	buildErr = err
}

// TestEnv provides an isolated test environment with its own config
// directory and source tree.
type TestEnv struct {
	t       *testing.T
	TempDir string
	Config  string
}

// NewTestEnv creates a new isolated test environment.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	if buildErr != nil {
		t.Fatalf("failed to build keeper: %v", buildErr)
	}
	if keeperBin == "" {
		t.Fatal("keeper binary not built (keeperBin is empty)")
	}

	tempDir := t.TempDir()
	return &TestEnv{
		t:       t,
		TempDir: tempDir,
		Config:  filepath.Join(tempDir, "config"),
	}
}

// WriteFile writes a source file relative to the environment root and
// returns its absolute path.
func (e *TestEnv) WriteFile(name, content string) string {
	e.t.Helper()
	path := filepath.Join(e.TempDir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		e.t.Fatalf("failed to create dir for %s: %v", name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		e.t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

// Path returns the absolute path of name inside the environment.
func (e *TestEnv) Path(name string) string {
	return filepath.Join(e.TempDir, name)
}

// CmdResult holds the result of a keeper command execution.
type CmdResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// RunKeeper executes the keeper CLI with the given arguments.
func (e *TestEnv) RunKeeper(args ...string) CmdResult {
	e.t.Helper()

	allArgs := append([]string{"--config-dir", e.Config}, args...)
	cmd := exec.Command(keeperBin, allArgs...)
	cmd.Env = append(os.Environ(), "KEEPER_INCLUDE_PATH=")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	exitCode := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			e.t.Fatalf("failed to run keeper: %v", err)
		}
	}

	return CmdResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: exitCode,
	}
}

// MustRunKeeper executes the keeper CLI and fails the test if it returns non-zero.
func (e *TestEnv) MustRunKeeper(args ...string) CmdResult {
	e.t.Helper()
	result := e.RunKeeper(args...)
	if result.ExitCode != 0 {
		e.t.Fatalf("keeper %v failed with exit code %d:\nstdout: %s\nstderr: %s",
			args, result.ExitCode, result.Stdout, result.Stderr)
	}
	return result
}

// ParseJSON parses JSON output into the target type.
func ParseJSON[T any](t *testing.T, jsonStr string) T {
	t.Helper()
	var result T
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		t.Fatalf("failed to parse JSON %q: %v", jsonStr, err)
	}
	return result
}

// Record represents the JSON form of keeper show output.
type Record struct {
	Name         string   `json:"name"`
	Kind         string   `json:"kind"`
	Anonymous    bool     `json:"anonymous"`
	Location     string   `json:"location"`
	Superclasses []string `json:"superclasses"`
	Fields       []struct {
		Name  string `json:"name"`
		Type  string `json:"type"`
		Value string `json:"value"`
	} `json:"fields"`
}

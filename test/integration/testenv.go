//go:build integration

// Package integration runs the ccswitch binary against isolated directories.
package integration

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// TestEnv is one isolated host: its own config dir, home and Claude dir.
type TestEnv struct {
	BinaryPath string
	Home       string
	ConfigDir  string
	ClaudeDir  string
	KeyringDir string

	// Extra is appended to the child environment.
	Extra []string
}

// NewTestEnv creates the directories for an isolated run.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	root := t.TempDir()
	e := &TestEnv{
		BinaryPath: BinaryPath(t),
		Home:       filepath.Join(root, "home"),
		ConfigDir:  filepath.Join(root, "config"),
		ClaudeDir:  filepath.Join(root, "claude"),
		KeyringDir: filepath.Join(root, "keyring"),
	}
	for _, dir := range []string{e.Home, e.KeyringDir} {
		if err := os.MkdirAll(dir, 0700); err != nil {
			t.Fatalf("failed to create %s: %v", dir, err)
		}
	}
	return e
}

// BinaryPath returns the path to the ccswitch binary.
func BinaryPath(t *testing.T) string {
	t.Helper()

	if path := os.Getenv("CCSWITCH_BINARY"); path != "" {
		return path
	}

	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("failed to get caller information")
	}

	// Go up from test/integration to project root
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(filename)))
	binaryPath := filepath.Join(projectRoot, "bin", "ccswitch")
	if runtime.GOOS == "windows" {
		binaryPath += ".exe"
	}

	if _, err := os.Stat(binaryPath); os.IsNotExist(err) {
		t.Fatalf("ccswitch binary not found at %s - build it with 'go build -o bin/ccswitch ./cmd/ccswitch'", binaryPath)
	}
	return binaryPath
}

// Run executes ccswitch with the given arguments and optional stdin.
func (e *TestEnv) Run(ctx context.Context, stdin string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, e.BinaryPath, args...)
	cmd.Env = append(os.Environ(),
		"HOME="+e.Home,
		"USERPROFILE="+e.Home,
		"SHELL=/bin/bash",
		"CCSWITCH_CONFIG_DIR="+e.ConfigDir,
		"CLAUDE_CONFIG_DIR="+e.ClaudeDir,
		"CCSWITCH_TEST_KEYRING_DIR="+e.KeyringDir,
		"NO_COLOR=1",
	)
	cmd.Env = append(cmd.Env, e.Extra...)
	cmd.Stdin = strings.NewReader(stdin)

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// MustRun is Run that fails the test on error.
func (e *TestEnv) MustRun(ctx context.Context, t *testing.T, args ...string) string {
	t.Helper()
	stdout, stderr, err := e.Run(ctx, "", args...)
	if err != nil {
		t.Fatalf("ccswitch %s: %v\nstdout: %s\nstderr: %s", strings.Join(args, " "), err, stdout, stderr)
	}
	return stdout
}

// WriteConfig writes config.yaml into the isolated config dir.
func (e *TestEnv) WriteConfig(t *testing.T, content string) {
	t.Helper()
	if err := os.MkdirAll(e.ConfigDir, 0700); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(e.ConfigDir, "config.yaml"), []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
}

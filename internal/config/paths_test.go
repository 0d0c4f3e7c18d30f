package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPathsWithEnvOverride(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv(ConfigDirEnvVar, tmpDir)

	paths := GetPaths()

	assert.Equal(t, tmpDir, paths.ConfigDir)
	assert.Equal(t, filepath.Join(tmpDir, ConfigFileName), paths.ConfigFile)
	assert.Equal(t, filepath.Join(tmpDir, ProfilesFileName), paths.ProfilesFile)
	assert.Equal(t, filepath.Join(tmpDir, ActiveFileName), paths.ActiveFile)
}

func TestGetPathsXDGConfigHome(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("XDG not applicable on Windows")
	}

	tmpDir := t.TempDir()
	t.Setenv(ConfigDirEnvVar, "")
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	assert.Equal(t, filepath.Join(tmpDir, AppName), GetPaths().ConfigDir)
}

func TestGetPathsHomeFallback(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("HOME layout differs per platform")
	}

	home := t.TempDir()
	t.Setenv(ConfigDirEnvVar, "")
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", home)

	assert.Equal(t, filepath.Join(home, ".config", AppName), GetPaths().ConfigDir)
}

func TestDefaultSettingsFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CLAUDE_CONFIG_DIR", dir)
	assert.Equal(t, filepath.Join(dir, "settings.json"), DefaultSettingsFile())

	if runtime.GOOS != "windows" {
		home := t.TempDir()
		t.Setenv("CLAUDE_CONFIG_DIR", "")
		t.Setenv("HOME", home)
		assert.Equal(t, filepath.Join(home, ".claude", "settings.json"), DefaultSettingsFile())
	}
}

func TestEnsureDirs(t *testing.T) {
	paths := PathsIn(filepath.Join(t.TempDir(), "config"))

	require.NoError(t, paths.EnsureDirs())
	require.NoError(t, paths.EnsureDirs(), "must be idempotent")

	info, err := os.Stat(paths.ConfigDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	if runtime.GOOS != "windows" {
		assert.Equal(t, os.FileMode(0700), info.Mode().Perm())
	}
}

func TestEnsureDirsError(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0600))

	paths := PathsIn(filepath.Join(blocker, "sub"))
	assert.Error(t, paths.EnsureDirs())
}

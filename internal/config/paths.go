// Package config provides configuration management for ccswitch.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

const (
	// AppName is the application name used for directories.
	AppName = "ccswitch"
	// ConfigFileName is the application configuration file name.
	ConfigFileName = "config.yaml"
	// ProfilesFileName is the profile list file name.
	ProfilesFileName = "profiles"
	// ActiveFileName is the active pointer file name.
	ActiveFileName = "current"

	// ConfigDirEnvVar overrides the configuration root.
	ConfigDirEnvVar = "CCSWITCH_CONFIG_DIR"
)

// Paths holds all the application paths.
type Paths struct {
	ConfigDir    string
	ConfigFile   string
	ProfilesFile string
	ActiveFile   string
}

// GetPaths returns the application paths following the XDG Base Directory
// conventions on Unix and %APPDATA% on Windows.
func GetPaths() Paths {
	return PathsIn(getConfigDir())
}

// PathsIn returns the paths rooted at dir.
func PathsIn(dir string) Paths {
	return Paths{
		ConfigDir:    dir,
		ConfigFile:   filepath.Join(dir, ConfigFileName),
		ProfilesFile: filepath.Join(dir, ProfilesFileName),
		ActiveFile:   filepath.Join(dir, ActiveFileName),
	}
}

// getConfigDir returns the configuration directory path.
func getConfigDir() string {
	if dir := os.Getenv(ConfigDirEnvVar); dir != "" {
		return dir
	}

	switch runtime.GOOS {
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, AppName)
		}
		if userProfile := os.Getenv("USERPROFILE"); userProfile != "" {
			return filepath.Join(userProfile, "AppData", "Roaming", AppName)
		}
	case "darwin":
		if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
			return filepath.Join(xdgConfig, AppName)
		}
		if home := os.Getenv("HOME"); home != "" {
			// Prefer ~/.config/ccswitch when the user already has it.
			xdgPath := filepath.Join(home, ".config", AppName)
			if _, err := os.Stat(xdgPath); err == nil {
				return xdgPath
			}
			return filepath.Join(home, "Library", "Application Support", AppName)
		}
	default:
		if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
			return filepath.Join(xdgConfig, AppName)
		}
		if home := os.Getenv("HOME"); home != "" {
			return filepath.Join(home, ".config", AppName)
		}
	}

	// Last resort fallback
	return filepath.Join(".", "."+AppName)
}

// DefaultSettingsFile returns Claude Code's user settings file:
// $CLAUDE_CONFIG_DIR/settings.json, else ~/.claude/settings.json.
func DefaultSettingsFile() string {
	if dir := os.Getenv("CLAUDE_CONFIG_DIR"); dir != "" {
		return filepath.Join(dir, "settings.json")
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(".claude", "settings.json")
	}
	return filepath.Join(home, ".claude", "settings.json")
}

// EnsureDirs creates the configuration directory if it doesn't exist.
func (p Paths) EnsureDirs() error {
	return os.MkdirAll(p.ConfigDir, 0700)
}

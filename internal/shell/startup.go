package shell

import (
	"path/filepath"

	"github.com/xabinapal/ccswitch/internal/fsutil"
)

// StartupFile returns the file the shell sources at login. ok is false when
// the shell has no file that can carry environment assignments.
func StartupFile(t Type, o Observation, home string) (path string, ok bool) {
	if home == "" {
		return "", false
	}

	switch t {
	case Zsh:
		return filepath.Join(home, ".zshrc"), true
	case Bash:
		profile := filepath.Join(home, ".bash_profile")
		if fsutil.Exists(profile) {
			return profile, true
		}
		return filepath.Join(home, ".bashrc"), true
	case PowerShell:
		return filepath.Join(home, "Documents", "WindowsPowerShell", "Microsoft.PowerShell_profile.ps1"), true
	case Cmd:
		return "", false
	default:
		if o.IsWindows() {
			return "", false
		}
		return filepath.Join(home, ".profile"), true
	}
}

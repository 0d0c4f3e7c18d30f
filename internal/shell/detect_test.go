package shell

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		obs  Observation
		want Type
	}{
		{"windows powershell", Observation{GOOS: "windows", PSModulePath: `C:\x`, ComSpec: `C:\cmd.exe`}, PowerShell},
		{"windows cmd", Observation{GOOS: "windows", ComSpec: `C:\Windows\system32\cmd.exe`}, Cmd},
		{"windows bare", Observation{GOOS: "windows"}, PowerShell},
		{"windows ignores SHELL", Observation{GOOS: "windows", Shell: "/usr/bin/bash", ComSpec: "cmd.exe"}, Cmd},
		{"zsh shell", Observation{GOOS: "darwin", Shell: "/bin/zsh"}, Zsh},
		{"bash shell", Observation{GOOS: "linux", Shell: "/usr/bin/bash"}, Bash},
		{"SHELL beats version vars", Observation{GOOS: "linux", Shell: "/bin/bash", ZshVersion: "5.9"}, Bash},
		{"zsh version", Observation{GOOS: "linux", Shell: "/bin/fish", ZshVersion: "5.9"}, Zsh},
		{"bash version", Observation{GOOS: "linux", BashVersion: "5.2"}, Bash},
		{"unknown", Observation{GOOS: "linux", Shell: "/bin/fish"}, Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(tt.obs))
		})
	}
}

func TestStartupFile(t *testing.T) {
	home := t.TempDir()
	unix := Observation{GOOS: "linux"}
	windows := Observation{GOOS: "windows"}

	path, ok := StartupFile(Zsh, unix, home)
	assert.True(t, ok)
	assert.Equal(t, filepath.Join(home, ".zshrc"), path)

	path, ok = StartupFile(Bash, unix, home)
	assert.True(t, ok)
	assert.Equal(t, filepath.Join(home, ".bashrc"), path)

	require.NoError(t, os.WriteFile(filepath.Join(home, ".bash_profile"), nil, 0600))
	path, ok = StartupFile(Bash, unix, home)
	assert.True(t, ok)
	assert.Equal(t, filepath.Join(home, ".bash_profile"), path)

	path, ok = StartupFile(PowerShell, windows, home)
	assert.True(t, ok)
	assert.Equal(t, filepath.Join(home, "Documents", "WindowsPowerShell", "Microsoft.PowerShell_profile.ps1"), path)

	_, ok = StartupFile(Cmd, windows, home)
	assert.False(t, ok)

	_, ok = StartupFile(Unknown, windows, home)
	assert.False(t, ok)

	path, ok = StartupFile(Unknown, unix, home)
	assert.True(t, ok)
	assert.Equal(t, filepath.Join(home, ".profile"), path)

	_, ok = StartupFile(Zsh, unix, "")
	assert.False(t, ok)
}

// Package shell classifies the host shell and renders the environment
// commands that make a credential visible to it.
package shell

import (
	"os"
	"runtime"
	"strings"
)

// Type is a host shell family.
type Type string

const (
	Zsh        Type = "zsh"
	Bash       Type = "bash"
	PowerShell Type = "powershell"
	Cmd        Type = "cmd"
	Unknown    Type = "unknown"
)

// Observation is the host state Detect looks at.
type Observation struct {
	GOOS         string
	Shell        string
	PSModulePath string
	ComSpec      string
	ZshVersion   string
	BashVersion  string
}

// Observe reads the current process environment.
func Observe() Observation {
	return Observation{
		GOOS:         runtime.GOOS,
		Shell:        os.Getenv("SHELL"),
		PSModulePath: os.Getenv("PSModulePath"),
		ComSpec:      os.Getenv("COMSPEC"),
		ZshVersion:   os.Getenv("ZSH_VERSION"),
		BashVersion:  os.Getenv("BASH_VERSION"),
	}
}

// IsWindows reports whether the observation comes from a Windows host.
func (o Observation) IsWindows() bool {
	return o.GOOS == "windows"
}

// Detect classifies the shell.
//
// On Windows PSModulePath wins over COMSPEC, and PowerShell is assumed when
// neither is set. Elsewhere $SHELL is checked before the *_VERSION variables.
func Detect(o Observation) Type {
	if o.IsWindows() {
		switch {
		case o.PSModulePath != "":
			return PowerShell
		case o.ComSpec != "":
			return Cmd
		default:
			return PowerShell
		}
	}

	switch {
	case strings.Contains(o.Shell, "zsh"):
		return Zsh
	case strings.Contains(o.Shell, "bash"):
		return Bash
	case o.ZshVersion != "":
		return Zsh
	case o.BashVersion != "":
		return Bash
	default:
		return Unknown
	}
}

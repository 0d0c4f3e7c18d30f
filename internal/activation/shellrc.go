package activation

import (
	"fmt"

	"github.com/xabinapal/ccswitch/internal/config"
	"github.com/xabinapal/ccswitch/internal/profile"
	"github.com/xabinapal/ccswitch/internal/shell"
)

// ShellStrategy maintains the sentinel block in the shell startup file.
type ShellStrategy struct {
	shell shell.Type
	path  string
	ok    bool
}

// NewShellStrategy resolves the startup file for the observed shell.
func NewShellStrategy(obs shell.Observation, home string) *ShellStrategy {
	t := shell.Detect(obs)
	path, ok := shell.StartupFile(t, obs, home)
	return &ShellStrategy{shell: t, path: path, ok: ok}
}

// Name implements Strategy.
func (s *ShellStrategy) Name() string { return config.TargetShell }

// Target implements Strategy.
func (s *ShellStrategy) Target() string { return s.path }

// Shell returns the detected shell.
func (s *ShellStrategy) Shell() shell.Type { return s.shell }

// Apply implements Strategy.
func (s *ShellStrategy) Apply(p profile.Profile) error {
	if !s.ok {
		return fmt.Errorf("%w: %s has no startup file", ErrNotApplicable, s.shell)
	}
	if err := shell.UpsertFile(s.path, shell.Block(s.shell, EnvFor(p))); err != nil {
		return fmt.Errorf("%w: %w", ErrShellConfigWriteFailed, err)
	}
	return nil
}

package activation

import (
	"fmt"
	"io"

	"github.com/xabinapal/ccswitch/internal/config"
	"github.com/xabinapal/ccswitch/internal/profile"
	"github.com/xabinapal/ccswitch/internal/shell"
)

// ManualStrategy prints the commands for the user to run. It always succeeds.
type ManualStrategy struct {
	shell shell.Type
	out   io.Writer
}

// NewManualStrategy prints commands in the syntax of t to out.
func NewManualStrategy(t shell.Type, out io.Writer) *ManualStrategy {
	if out == nil {
		out = io.Discard
	}
	return &ManualStrategy{shell: t, out: out}
}

// Name implements Strategy.
func (s *ManualStrategy) Name() string { return config.TargetManual }

// Target implements Strategy.
func (s *ManualStrategy) Target() string { return "stdout" }

// Apply implements Strategy.
func (s *ManualStrategy) Apply(p profile.Profile) error {
	fmt.Fprintf(s.out, "Run the following to use %q in this %s session:\n\n", p.Alias, s.shell)
	for _, line := range shell.Commands(s.shell, EnvFor(p)) {
		fmt.Fprintf(s.out, "  %s\n", line)
	}
	fmt.Fprintln(s.out)
	return nil
}

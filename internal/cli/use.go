package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/xabinapal/ccswitch/internal/activation"
	"github.com/xabinapal/ccswitch/internal/config"
	"github.com/xabinapal/ccswitch/internal/profile"
	"github.com/xabinapal/ccswitch/internal/utils"
)

// UseOutput is the JSON form of a completed switch.
type UseOutput struct {
	Alias    string          `json:"alias"`
	Name     string          `json:"name"`
	Applied  string          `json:"applied"`
	Target   string          `json:"target"`
	Attempts []AttemptOutput `json:"attempts"`
}

// AttemptOutput is one activation target attempt.
type AttemptOutput struct {
	Target   string `json:"target"`
	Location string `json:"location,omitempty"`
	Error    string `json:"error,omitempty"`
	Skipped  bool   `json:"skipped,omitempty"`
}

// CurrentOutput is the JSON form of the current command.
type CurrentOutput struct {
	Profile  *ProfileInfo `json:"profile"`
	IsActive bool         `json:"is_active"`
}

// newUseCmd creates the use command.
func (cli *CLI) newUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "use <alias>",
		Aliases: []string{"switch"},
		Short:   "Activate a profile",
		Long: `Activate a profile for Claude Code.

The profile becomes the active one, and its credential is written to the
first target that succeeds, in the order configured in config.yaml:

  settings  Claude Code's settings.json (env section)
  shell     a managed block in your shell startup file
  os        the Windows user environment (cmd only)
  manual    print the commands to run

Examples:
  ccswitch use kimi`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: cli.profileAliases,
		RunE: func(cmd *cobra.Command, args []string) error {
			output, err := cli.outputWriter(cmd)
			if err != nil {
				return err
			}
			return cli.runUse(cmd, output, args[0])
		},
	}
}

func (cli *CLI) runUse(cmd *cobra.Command, output *OutputWriter, alias string) error {
	p, ok, err := cli.store.Find(alias)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s (run 'ccswitch list' to see stored profiles)", profile.ErrUnknownAlias, alias)
	}

	// Manual commands go to stdout in text mode; JSON output must stay parseable.
	manualOut := cmd.OutOrStdout()
	if output.IsJSON() {
		manualOut = cmd.ErrOrStderr()
	}
	engine, err := cli.newEngine(manualOut)
	if err != nil {
		return err
	}

	result, err := engine.Activate(p)
	if err != nil {
		if notifyErr := cli.Notifier.NotifyFailure(alias, err); notifyErr != nil {
			cli.Log.WithError(notifyErr).Debug("notification failed")
		}
		return err
	}

	if notifyErr := cli.Notifier.NotifySwitched(p.Name(), p.BaseURL, result.Target); notifyErr != nil {
		cli.Log.WithError(notifyErr).Debug("notification failed")
	}

	out := UseOutput{
		Alias:   p.Alias,
		Name:    p.Name(),
		Applied: result.Applied,
		Target:  result.Target,
	}
	for _, a := range result.Attempts {
		ao := AttemptOutput{Target: a.Strategy, Location: a.Target, Skipped: a.Skipped()}
		if a.Err != nil && !a.Skipped() {
			ao.Error = a.Err.Error()
		}
		out.Attempts = append(out.Attempts, ao)
	}

	return output.Write(out, func(w io.Writer) {
		successColor.Fprintf(w, "Switched to %q", p.Name())
		fmt.Fprintf(w, " (%s, %s)\n", p.Alias, p.EffectiveKind())

		for _, a := range result.Attempts {
			if a.Err != nil && !a.Skipped() {
				warnColor.Fprintf(w, "Warning: %s target failed: %v\n", a.Strategy, a.Err)
			}
		}

		switch result.Applied {
		case config.TargetSettings:
			fmt.Fprintf(w, "Credential written to %s\n", result.Target)
		case config.TargetShell:
			fmt.Fprintf(w, "Credential written to %s\n", result.Target)
			fmt.Fprintln(w, "Open a new terminal or source that file to pick it up.")
		case config.TargetOS:
			fmt.Fprintf(w, "Credential written to %s\n", result.Target)
			fmt.Fprintln(w, "Open a new terminal to pick it up.")
		}
	})
}

// newCurrentCmd creates the current command.
func (cli *CLI) newCurrentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: "Show the active profile",
		Long: `Show the active profile and whether this shell sees its credential.

"Live" means the credential variable for the profile's kind and
ANTHROPIC_BASE_URL in this process match the active profile.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			output, err := cli.outputWriter(cmd)
			if err != nil {
				return err
			}
			return cli.runCurrent(output)
		},
	}
}

func (cli *CLI) runCurrent(output *OutputWriter) error {
	engine := activation.New(activation.Options{
		Active: cli.active,
		Env:    cli.Env,
		Logger: cli.Log,
	})

	status, err := engine.Current()
	if err != nil {
		return err
	}

	if status == nil {
		return output.Write(CurrentOutput{}, func(w io.Writer) {
			fmt.Fprintln(w, "No active profile.")
		})
	}

	info := newProfileInfo(status.Profile, status.Profile.Alias)
	info.Secret = utils.Mask(status.Profile.Secret)
	if _, ok, err := cli.store.Find(status.Profile.Alias); err != nil {
		cli.Log.WithError(err).Debug("failed to look up active profile")
	} else if !ok {
		cli.Log.WithField("alias", status.Profile.Alias).Warn("active profile is no longer in the profile store")
	}

	return output.Write(CurrentOutput{Profile: &info, IsActive: status.IsActive}, func(w io.Writer) {
		activeColor.Fprintf(w, "%s", info.Name)
		fmt.Fprintf(w, " (%s)\n", info.Alias)
		fmt.Fprintf(w, "  Base URL: %s\n", info.BaseURL)
		fmt.Fprintf(w, "  Kind:     %s (%s)\n", info.Kind, status.Profile.EffectiveKind().EnvVar())
		fmt.Fprintf(w, "  Secret:   %s\n", info.Secret)
		if status.IsActive {
			fmt.Fprintln(w, "  Live:     yes")
		} else {
			warnColor.Fprintln(w, "  Live:     no (open a new terminal or run 'ccswitch use "+info.Alias+"')")
		}
	})
}

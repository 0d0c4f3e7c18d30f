package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/xabinapal/ccswitch/internal/credential"
	"github.com/xabinapal/ccswitch/internal/profile"
	"github.com/xabinapal/ccswitch/internal/utils"
)

// ProfileInfo is the JSON form of a listed profile. Secrets are masked.
type ProfileInfo struct {
	Alias   string `json:"alias"`
	Name    string `json:"name"`
	BaseURL string `json:"base_url"`
	Kind    string `json:"kind"`
	Secret  string `json:"secret"`
	Active  bool   `json:"active"`
}

// ProfileListOutput represents profile list output for JSON.
type ProfileListOutput struct {
	Active   string        `json:"active,omitempty"`
	Profiles []ProfileInfo `json:"profiles"`
}

func newProfileInfo(p profile.Profile, activeAlias string) ProfileInfo {
	return ProfileInfo{
		Alias:   p.Alias,
		Name:    p.Name(),
		BaseURL: p.BaseURL,
		Kind:    string(p.EffectiveKind()),
		Secret:  maskSecret(p),
		Active:  p.Alias == activeAlias,
	}
}

func maskSecret(p profile.Profile) string {
	if p.SecretInKeyring() {
		return "(keyring)"
	}
	return utils.Mask(p.Secret)
}

// newListCmd creates the list command.
func (cli *CLI) newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all stored profiles",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			output, err := cli.outputWriter(cmd)
			if err != nil {
				return err
			}
			return cli.runList(output)
		},
	}
}

func (cli *CLI) runList(output *OutputWriter) error {
	profiles, err := cli.store.List()
	if err != nil {
		return err
	}
	activeAlias, _, err := cli.active.Alias()
	if err != nil {
		cli.Log.WithError(err).Warn("failed to read active profile")
	}

	list := ProfileListOutput{
		Active: activeAlias,
		Profiles: lo.Map(profiles, func(p profile.Profile, _ int) ProfileInfo {
			return newProfileInfo(p, activeAlias)
		}),
	}

	return output.Write(list, func(w io.Writer) {
		if len(profiles) == 0 {
			fmt.Fprintln(w, "No profiles stored.")
			fmt.Fprintln(w)
			fmt.Fprintln(w, "Add one with: ccswitch add <alias> <token> <base-url> [key|token]")
			return
		}

		tbl := &table{header: []string{"", "ALIAS", "NAME", "KIND", "SECRET", "BASE URL"}}
		for _, info := range list.Profiles {
			marker := " "
			if info.Active {
				marker = activeColor.Sprint("*")
			}
			tbl.add(marker, info.Alias, info.Name, info.Kind, info.Secret, info.BaseURL)
		}
		tbl.render(w)

		if activeAlias != "" {
			fmt.Fprintf(w, "\n* = active profile (%s)\n", activeAlias)
		}
	})
}

// newAddCmd creates the add command.
func (cli *CLI) newAddCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "add <alias> <token> <base-url> [kind]",
		Short: "Add a new profile",
		Long: `Add a new credential profile.

kind is "key" (sent as ANTHROPIC_API_KEY) or "token" (sent as
ANTHROPIC_AUTH_TOKEN). When omitted it is derived from the base URL, and
defaults to token for unknown providers.

Pass "-" as the token to type it without echo.

Examples:
  # Add a Moonshot profile with a display name
  ccswitch add kimi sk-xxx https://api.moonshot.cn/anthropic --name "月之暗面"

  # Force the API key style
  ccswitch add official - https://api.anthropic.com key`,
		Args: cobra.RangeArgs(3, 4),
		RunE: func(cmd *cobra.Command, args []string) error {
			alias, secret, baseURL := args[0], args[1], args[2]

			kind := credential.Resolve(baseURL, "")
			if len(args) == 4 {
				k, err := credential.ParseKind(args[3])
				if err != nil {
					return err
				}
				kind = k
			}

			if secret == "-" {
				s, err := cli.readSecret(cmd)
				if err != nil {
					return err
				}
				secret = s
			}
			if secret == "" {
				return errors.New("token cannot be empty")
			}
			if name == "" {
				name = alias
			}

			p := profile.Profile{
				Alias:       alias,
				DisplayName: name,
				Secret:      secret,
				BaseURL:     baseURL,
				Kind:        kind,
			}
			if err := cli.store.Add(p); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Added profile %q (%s, %s)\n", alias, name, kind)
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Display name (defaults to the alias)")

	return cmd
}

// readSecret reads a secret from stdin, without echo when it is a terminal.
func (cli *CLI) readSecret(cmd *cobra.Command) (string, error) {
	if f, ok := cli.Stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), "Token: ")
		data, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("failed to read token: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}

	line, err := bufio.NewReader(cli.Stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// newRemoveCmd creates the remove command.
func (cli *CLI) newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "remove <alias>",
		Aliases:           []string{"rm"},
		Short:             "Remove a profile",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: cli.profileAliases,
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, cleared, err := cli.store.Remove(args[0])
			if removed.Alias == "" {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Removed profile %q\n", removed.Alias)
			if cleared {
				fmt.Fprintln(out, "It was the active profile; no profile is active now.")
			}
			return err
		},
	}
}

// newEditCmd creates the edit command.
func (cli *CLI) newEditCmd() *cobra.Command {
	var name, secret, baseURL, kind string

	cmd := &cobra.Command{
		Use:   "edit <alias>",
		Short: "Edit an existing profile",
		Long: `Change fields of a stored profile in place.

Only the flags you pass are changed. The active profile snapshot is not
touched; run 'ccswitch use <alias>' again to apply the change.

Examples:
  ccswitch edit kimi --url https://api.moonshot.cn/anthropic
  ccswitch edit official --token - --kind key`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: cli.profileAliases,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, ok, err := cli.store.Find(args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: %s", profile.ErrUnknownAlias, args[0])
			}

			flags := cmd.Flags()
			if !flags.Changed("name") && !flags.Changed("token") && !flags.Changed("url") && !flags.Changed("kind") {
				return errors.New("nothing to change: pass --name, --token, --url or --kind")
			}
			if flags.Changed("name") {
				p.DisplayName = name
			}
			if flags.Changed("token") {
				if secret == "-" {
					if secret, err = cli.readSecret(cmd); err != nil {
						return err
					}
				}
				if secret == "" {
					return errors.New("token cannot be empty")
				}
				p.Secret = secret
			}
			if flags.Changed("url") {
				p.BaseURL = baseURL
			}
			if flags.Changed("kind") {
				k, err := credential.ParseKind(kind)
				if err != nil {
					return err
				}
				p.Kind = k
			}

			if err := cli.store.Update(p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated profile %q\n", p.Alias)
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "New display name")
	cmd.Flags().StringVarP(&secret, "token", "t", "", `New token or key ("-" to type it)`)
	cmd.Flags().StringVarP(&baseURL, "url", "u", "", "New base URL")
	cmd.Flags().StringVarP(&kind, "kind", "k", "", "New credential kind (key or token)")

	return cmd
}

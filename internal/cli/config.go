package cli

import (
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/xabinapal/ccswitch/internal/fsutil"
	"github.com/xabinapal/ccswitch/internal/shell"
)

// configPathOutput represents config path output for JSON.
type configPathOutput struct {
	ConfigDir    string `json:"config_dir"`
	ConfigFile   string `json:"config_file"`
	ProfilesFile string `json:"profiles_file"`
	ActiveFile   string `json:"active_file"`
	SettingsFile string `json:"settings_file"`
	StartupFile  string `json:"startup_file,omitempty"`
	ConfigExists bool   `json:"config_exists"`
}

// newConfigCmd creates the config command group.
func (cli *CLI) newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect ccswitch configuration",
		Long: `Inspect ccswitch configuration files and settings.

Use 'ccswitch config path' to see file locations.
Use 'ccswitch config show' to print the effective configuration.
Use 'ccswitch config edit' to open the configuration in your editor.`,
	}

	cmd.AddCommand(
		cli.newConfigPathCmd(),
		cli.newConfigShowCmd(),
		cli.newConfigEditCmd(),
	)

	return cmd
}

// newConfigPathCmd creates the config path command.
func (cli *CLI) newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show file paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			output, err := cli.outputWriter(cmd)
			if err != nil {
				return err
			}

			startup, _ := shell.StartupFile(shell.Detect(cli.Observation), cli.Observation, cli.Home)
			paths := configPathOutput{
				ConfigDir:    cli.Paths.ConfigDir,
				ConfigFile:   cli.Paths.ConfigFile,
				ProfilesFile: cli.Paths.ProfilesFile,
				ActiveFile:   cli.Paths.ActiveFile,
				SettingsFile: cli.Config.ResolvedSettingsFile(),
				StartupFile:  startup,
				ConfigExists: fsutil.Exists(cli.Paths.ConfigFile),
			}

			return output.Write(paths, func(w io.Writer) {
				fmt.Fprintln(w, "Configuration paths:")
				fmt.Fprintf(w, "  Config dir:     %s\n", paths.ConfigDir)
				fmt.Fprintf(w, "  Config file:    %s\n", paths.ConfigFile)
				fmt.Fprintf(w, "  Profiles:       %s\n", paths.ProfilesFile)
				fmt.Fprintf(w, "  Active profile: %s\n", paths.ActiveFile)
				fmt.Fprintf(w, "  Claude settings: %s\n", paths.SettingsFile)
				if paths.StartupFile != "" {
					fmt.Fprintf(w, "  Shell startup:  %s\n", paths.StartupFile)
				}

				fmt.Fprintln(w, "\nStatus:")
				if paths.ConfigExists {
					fmt.Fprintln(w, "  Config file exists")
				} else {
					fmt.Fprintln(w, "  Config file does not exist (defaults in use)")
				}
			})
		},
	}
}

// newConfigShowCmd creates the config show command.
func (cli *CLI) newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			output, err := cli.outputWriter(cmd)
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.WriteJSON(cli.Config)
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(cli.Config); err != nil {
				return fmt.Errorf("failed to encode configuration: %w", err)
			}
			return enc.Close()
		},
	}
}

// newConfigEditCmd creates the config edit command.
func (cli *CLI) newConfigEditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Open configuration file in editor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			editor := os.Getenv("EDITOR")
			if editor == "" {
				editor = os.Getenv("VISUAL")
			}
			if editor == "" {
				for _, e := range []string{"vim", "vi", "nano", "notepad"} {
					if _, err := exec.LookPath(e); err == nil {
						editor = e
						break
					}
				}
			}
			if editor == "" {
				return fmt.Errorf("no editor found: set $EDITOR environment variable")
			}

			configPath := cli.Config.FilePath()
			if !fsutil.Exists(configPath) {
				if err := cli.Config.Save(); err != nil {
					return fmt.Errorf("failed to create config file: %w", err)
				}
			}

			// #nosec G204 - editor is from $EDITOR env var (user-controlled but expected), configPath is from config file path (controlled)
			editorCmd := exec.Command(editor, configPath)
			editorCmd.Stdin = os.Stdin
			editorCmd.Stdout = os.Stdout
			editorCmd.Stderr = os.Stderr

			return editorCmd.Run()
		},
	}
}

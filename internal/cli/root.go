// Package cli provides the command-line interface for ccswitch.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/xabinapal/ccswitch/internal/activation"
	"github.com/xabinapal/ccswitch/internal/config"
	"github.com/xabinapal/ccswitch/internal/keyring"
	"github.com/xabinapal/ccswitch/internal/log"
	"github.com/xabinapal/ccswitch/internal/notify"
	"github.com/xabinapal/ccswitch/internal/profile"
	"github.com/xabinapal/ccswitch/internal/shell"
)

// CLI holds the application state for the CLI.
type CLI struct {
	Config   *config.Config
	Paths    config.Paths
	Keyring  keyring.Store
	Log      *logrus.Entry
	Notifier notify.Notifier

	// Host state. New fills these from the running process; tests replace them.
	Env         activation.Env
	EnvStore    activation.EnvStore
	Observation shell.Observation
	Home        string
	Stdin       io.Reader

	store   *profile.Store
	active  *profile.ActiveFile
	rootCmd *cobra.Command

	// Flags
	configDirFlag string
	verboseFlag   bool
	outputFlag    string
	noColorFlag   bool
}

// New creates a new CLI instance.
func New() *CLI {
	home, _ := os.UserHomeDir()
	cli := &CLI{
		Keyring:     keyring.DefaultStore(),
		Env:         activation.ProcessEnv{},
		EnvStore:    activation.SystemEnvStore(),
		Observation: shell.Observe(),
		Home:        home,
		Stdin:       os.Stdin,
	}

	cli.rootCmd = &cobra.Command{
		Use:   "ccswitch [command]",
		Short: "ccswitch - switch Claude Code API credentials",
		Long: `ccswitch stores named Claude Code credential profiles (API key or
auth token plus base URL) and switches which one is active.

Activating a profile writes the credential to Claude Code's settings.json.
When that is not possible it falls back to your shell startup file, the OS
user environment, or prints the commands to run.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return cli.initialize(cmd)
		},
	}

	// Global flags
	cli.rootCmd.PersistentFlags().StringVar(&cli.configDirFlag, "config-dir", "", "Configuration directory (default $"+config.ConfigDirEnvVar+" or the user config dir)")
	cli.rootCmd.PersistentFlags().BoolVarP(&cli.verboseFlag, "verbose", "v", false, "Enable verbose output")
	cli.rootCmd.PersistentFlags().StringVarP(&cli.outputFlag, "output", "o", "text", "Output format (text, json)")
	cli.rootCmd.PersistentFlags().BoolVar(&cli.noColorFlag, "no-color", false, "Disable colored output")

	cli.addCommands()

	return cli
}

// addCommands adds all subcommands to the root command.
func (cli *CLI) addCommands() {
	cli.rootCmd.AddCommand(
		cli.newUseCmd(),
		cli.newListCmd(),
		cli.newAddCmd(),
		cli.newRemoveCmd(),
		cli.newCurrentCmd(),
		cli.newEditCmd(),
		cli.newExportCmd(),
		cli.newImportCmd(),
		cli.newDoctorCmd(),
		cli.newConfigCmd(),
		cli.newVersionCmd(),
		cli.newCompletionCmd(),
	)
}

// skipInit lists commands that work without configuration.
var skipInit = map[string]bool{
	"version":    true,
	"completion": true,
	"help":       true,
}

// initialize loads configuration and opens the profile store.
func (cli *CLI) initialize(cmd *cobra.Command) error {
	if cli.noColorFlag || os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
	}
	if skipInit[cmd.Name()] {
		return nil
	}

	if cli.configDirFlag != "" {
		cli.Paths = config.PathsIn(cli.configDirFlag)
	} else {
		cli.Paths = config.GetPaths()
	}

	cfg, err := config.LoadFrom(cli.Paths.ConfigFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	cli.Config = cfg

	logger, err := log.NewLogger(cfg.Log, cli.verboseFlag)
	if err != nil {
		return err
	}
	cli.Log = logger

	if cli.Notifier == nil {
		cli.Notifier = notify.New(cfg.Notifications)
	}

	var secrets keyring.Store
	if cfg.UsesKeyring() {
		secrets = cli.Keyring
	}
	cli.active = profile.NewActiveFile(cli.Paths.ActiveFile, secrets)
	cli.store = profile.NewStore(cli.Paths.ProfilesFile, cli.active, secrets)

	created, err := cli.store.EnsureInitialized()
	if err != nil {
		return err
	}
	if created {
		fmt.Fprintf(cmd.ErrOrStderr(), "Created profile store at %s\n", cli.store.Path())
	}
	return nil
}

// newEngine builds the activation engine from the loaded configuration.
func (cli *CLI) newEngine(out io.Writer) (*activation.Engine, error) {
	strategies, err := activation.BuildStrategies(activation.StrategyConfig{
		Targets:      cli.Config.Targets,
		SettingsFile: cli.Config.ResolvedSettingsFile(),
		SettingsDefaults: activation.SettingsDefaults{
			MaxOutputTokens:            cli.Config.SettingsDefaults.MaxOutputTokens,
			DisableNonessentialTraffic: cli.Config.IsDisableNonessentialTraffic(),
		},
		Observation: cli.Observation,
		Home:        cli.Home,
		EnvStore:    cli.EnvStore,
		Out:         out,
		Logger:      cli.Log,
	})
	if err != nil {
		return nil, err
	}

	return activation.New(activation.Options{
		Active:     cli.active,
		Strategies: strategies,
		Env:        cli.Env,
		Logger:     cli.Log,
	}), nil
}

// outputWriter returns an OutputWriter for the --output flag bound to cmd's stdout.
func (cli *CLI) outputWriter(cmd *cobra.Command) (*OutputWriter, error) {
	format, err := ParseOutputFormat(cli.outputFlag)
	if err != nil {
		return nil, err
	}
	return NewOutputWriterTo(format, cmd.OutOrStdout()), nil
}

// profileAliases completes profile aliases.
func (cli *CLI) profileAliases(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	if cli.store == nil {
		// Completion runs without the persistent pre-run hook.
		if err := cli.initialize(cmd); err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
	}
	profiles, err := cli.store.List()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	aliases := make([]string, 0, len(profiles))
	for _, p := range profiles {
		aliases = append(aliases, p.Alias)
	}
	return aliases, cobra.ShellCompDirectiveNoFileComp
}

// SetArgs sets the command-line arguments, for tests.
func (cli *CLI) SetArgs(args []string) {
	cli.rootCmd.SetArgs(args)
}

// SetOutput redirects stdout and stderr of every command.
func (cli *CLI) SetOutput(stdout, stderr io.Writer) {
	cli.rootCmd.SetOut(stdout)
	cli.rootCmd.SetErr(stderr)
}

// Execute runs the CLI.
func (cli *CLI) Execute(ctx context.Context) error {
	return cli.rootCmd.ExecuteContext(ctx)
}

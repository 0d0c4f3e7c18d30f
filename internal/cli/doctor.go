package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/xabinapal/ccswitch/internal/config"
	"github.com/xabinapal/ccswitch/internal/keyring"
	"github.com/xabinapal/ccswitch/internal/shell"
)

// CheckResult represents the result of a diagnostic check.
type CheckResult struct {
	Name    string      `json:"name"`
	Status  CheckStatus `json:"status"`
	Message string      `json:"message"`
	Fix     string      `json:"fix,omitempty"`
}

// CheckStatus represents the status of a diagnostic check.
type CheckStatus int

const (
	// CheckOK indicates the check passed.
	CheckOK CheckStatus = iota
	// CheckWarning indicates a non-critical issue.
	CheckWarning
	// CheckError indicates a critical failure.
	CheckError
	// CheckSkipped indicates the check was skipped.
	CheckSkipped
)

// String returns the status name.
func (s CheckStatus) String() string {
	switch s {
	case CheckOK:
		return "OK"
	case CheckWarning:
		return "WARN"
	case CheckError:
		return "ERROR"
	case CheckSkipped:
		return "SKIP"
	default:
		return "UNKNOWN"
	}
}

// Icon returns the status icon for display.
func (s CheckStatus) Icon() string {
	switch s {
	case CheckOK:
		return successColor.Sprint("[OK]")
	case CheckWarning:
		return warnColor.Sprint("[!!]")
	case CheckError:
		return errorColor.Sprint("[XX]")
	case CheckSkipped:
		return "[--]"
	default:
		return "[??]"
	}
}

// MarshalJSON implements json.Marshaler.
func (s CheckStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// DoctorOutput represents the doctor command output for JSON.
type DoctorOutput struct {
	Checks      []CheckResult `json:"checks"`
	HasErrors   bool          `json:"has_errors"`
	HasWarnings bool          `json:"has_warnings"`
}

// errDiagnosticsFailed is returned when a check reports an error.
var errDiagnosticsFailed = errors.New("diagnostics failed")

// newDoctorCmd creates the doctor command.
func (cli *CLI) newDoctorCmd() *cobra.Command {
	var showFixes bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose common issues",
		Long: `Run diagnostic checks to identify and troubleshoot common issues.

The doctor command checks:
  - Configuration file validity
  - Profile store and active profile
  - Claude Code settings file
  - Detected shell and its startup file
  - Keyring availability (when secrets are kept in the keyring)

Examples:
  ccswitch doctor
  ccswitch doctor --fix
  ccswitch doctor -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			output, err := cli.outputWriter(cmd)
			if err != nil {
				return err
			}

			results := cli.runDiagnostics()
			report := DoctorOutput{Checks: results}
			for _, r := range results {
				switch r.Status {
				case CheckError:
					report.HasErrors = true
				case CheckWarning:
					report.HasWarnings = true
				}
			}

			writeErr := output.Write(report, func(w io.Writer) {
				headerColor.Fprintln(w, "ccswitch diagnostics")
				fmt.Fprintln(w)

				for _, r := range results {
					fmt.Fprintf(w, "%s %s", r.Status.Icon(), r.Name)
					if r.Message != "" {
						fmt.Fprintf(w, ": %s", r.Message)
					}
					fmt.Fprintln(w)
					if showFixes && r.Fix != "" && (r.Status == CheckError || r.Status == CheckWarning) {
						fmt.Fprintf(w, "      -> %s\n", r.Fix)
					}
				}

				fmt.Fprintln(w)
				switch {
				case report.HasErrors:
					fmt.Fprintln(w, "Some checks failed. Run with --fix for suggested fixes.")
				case report.HasWarnings:
					fmt.Fprintln(w, "All critical checks passed with some warnings.")
				default:
					fmt.Fprintln(w, "All checks passed!")
				}
			})
			if writeErr != nil {
				return writeErr
			}

			if report.HasErrors {
				return errDiagnosticsFailed
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showFixes, "fix", false, "Show suggested fixes")

	return cmd
}

func (cli *CLI) runDiagnostics() []CheckResult {
	return []CheckResult{
		cli.checkConfigFile(),
		cli.checkProfileStore(),
		cli.checkActiveProfile(),
		cli.checkSettingsFile(),
		cli.checkShell(),
		cli.checkKeyring(),
	}
}

func (cli *CLI) checkConfigFile() CheckResult {
	const name = "Configuration file"

	if _, err := os.Stat(cli.Paths.ConfigFile); os.IsNotExist(err) {
		return CheckResult{
			Name:    name,
			Status:  CheckOK,
			Message: "not found, using defaults",
		}
	}
	// initialize already rejected an invalid file.
	return CheckResult{
		Name:    name,
		Status:  CheckOK,
		Message: cli.Paths.ConfigFile,
	}
}

func (cli *CLI) checkProfileStore() CheckResult {
	const name = "Profile store"

	profiles, err := cli.store.List()
	if err != nil {
		return CheckResult{
			Name:    name,
			Status:  CheckError,
			Message: err.Error(),
			Fix:     fmt.Sprintf("Fix or remove the reported line in %s (format: alias|name|token|url|KEY or TOKEN)", cli.store.Path()),
		}
	}
	if len(profiles) == 0 {
		return CheckResult{
			Name:    name,
			Status:  CheckWarning,
			Message: "no profiles stored",
			Fix:     "Run 'ccswitch add <alias> <token> <base-url>' to add one",
		}
	}
	return CheckResult{
		Name:    name,
		Status:  CheckOK,
		Message: fmt.Sprintf("%d profile(s)", len(profiles)),
	}
}

func (cli *CLI) checkActiveProfile() CheckResult {
	const name = "Active profile"

	alias, ok, err := cli.active.Alias()
	if err != nil {
		return CheckResult{
			Name:    name,
			Status:  CheckError,
			Message: err.Error(),
			Fix:     fmt.Sprintf("Delete %s and run 'ccswitch use <alias>'", cli.active.Path()),
		}
	}
	if !ok {
		return CheckResult{
			Name:    name,
			Status:  CheckWarning,
			Message: "none",
			Fix:     "Run 'ccswitch use <alias>' to activate a profile",
		}
	}

	if _, found, err := cli.store.Find(alias); err == nil && !found {
		return CheckResult{
			Name:    name,
			Status:  CheckWarning,
			Message: fmt.Sprintf("%q is no longer in the profile store", alias),
			Fix:     "Run 'ccswitch use <alias>' to activate a stored profile",
		}
	}
	return CheckResult{
		Name:    name,
		Status:  CheckOK,
		Message: alias,
	}
}

func (cli *CLI) checkSettingsFile() CheckResult {
	const name = "Claude Code settings"
	path := cli.Config.ResolvedSettingsFile()

	// #nosec G304 - path is Claude Code's settings file, from configuration
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return CheckResult{
			Name:    name,
			Status:  CheckOK,
			Message: fmt.Sprintf("%s will be created on the next switch", path),
		}
	}
	if err != nil {
		return CheckResult{
			Name:    name,
			Status:  CheckError,
			Message: err.Error(),
			Fix:     "Check the permissions of " + path,
		}
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return CheckResult{
			Name:    name,
			Status:  CheckWarning,
			Message: fmt.Sprintf("%s is not valid JSON: %v", path, err),
			Fix:     "The next switch backs it up to settings.json.bak and rewrites it",
		}
	}
	return CheckResult{
		Name:    name,
		Status:  CheckOK,
		Message: path,
	}
}

func (cli *CLI) checkShell() CheckResult {
	const name = "Shell"

	t := shell.Detect(cli.Observation)
	path, ok := shell.StartupFile(t, cli.Observation, cli.Home)
	if !ok {
		return CheckResult{
			Name:    name,
			Status:  CheckOK,
			Message: fmt.Sprintf("%s (no startup file, using the OS environment or manual commands)", t),
		}
	}
	return CheckResult{
		Name:    name,
		Status:  CheckOK,
		Message: fmt.Sprintf("%s, startup file %s", t, path),
	}
}

func (cli *CLI) checkKeyring() CheckResult {
	const name = "Keyring"

	if !cli.Config.UsesKeyring() {
		return CheckResult{
			Name:    name,
			Status:  CheckSkipped,
			Message: "secrets are stored in the profile file",
		}
	}
	if err := cli.Keyring.IsAvailable(); err != nil {
		return CheckResult{
			Name:    name,
			Status:  CheckError,
			Message: fmt.Sprintf("unavailable: %v", err),
			Fix:     "Install and configure a keyring service, or set secrets.backend: file in " + config.ConfigFileName,
		}
	}

	keyringType := "OS keyring"
	if _, ok := cli.Keyring.(*keyring.FileStore); ok {
		keyringType = "file-based (test mode)"
	}
	return CheckResult{
		Name:    name,
		Status:  CheckOK,
		Message: keyringType,
	}
}

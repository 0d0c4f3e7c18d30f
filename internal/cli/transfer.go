package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/xabinapal/ccswitch/internal/fsutil"
	"github.com/xabinapal/ccswitch/internal/profile"
)

// newExportCmd creates the export command.
func (cli *CLI) newExportCmd() *cobra.Command {
	var formatFlag string

	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Export profiles to YAML, TOML or JSON",
		Long: `Export every profile, including its secret, to a file or stdout.

The format is taken from --format, else from the file extension
(.yaml, .toml, .json), else YAML. Files are written with mode 0600.

Examples:
  ccswitch export profiles.yaml
  ccswitch export --format json > profiles.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			format, err := transferFormat(formatFlag, path)
			if err != nil {
				return err
			}

			profiles, err := cli.store.List()
			if err != nil {
				return err
			}
			for i, p := range profiles {
				if profiles[i], err = cli.store.Reveal(p); err != nil {
					return err
				}
			}

			var buf bytes.Buffer
			if err := profile.Export(&buf, format, profiles); err != nil {
				return err
			}

			if path == "" {
				_, err := cmd.OutOrStdout().Write(buf.Bytes())
				return err
			}
			if err := fsutil.WriteFileAtomic(path, buf.Bytes(), 0600); err != nil {
				return fmt.Errorf("failed to write export file: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d profile(s) to %s\n", len(profiles), path)
			warnColor.Fprintln(cmd.ErrOrStderr(), "The export contains plain-text secrets.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&formatFlag, "format", "f", "", "Output format: yaml, toml or json")

	return cmd
}

// newImportCmd creates the import command.
func (cli *CLI) newImportCmd() *cobra.Command {
	var (
		formatFlag string
		overwrite  bool
	)

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import profiles from YAML, TOML or JSON",
		Long: `Import profiles written by 'ccswitch export'. Use "-" to read stdin.

Aliases that already exist are skipped unless --overwrite is set, in which
case they are replaced in place.

Examples:
  ccswitch import profiles.yaml
  ccswitch import --overwrite profiles.toml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			format, err := transferFormat(formatFlag, path)
			if err != nil {
				return err
			}

			var r io.Reader = cli.Stdin
			if path != "-" {
				// #nosec G304 - path is a user-supplied import file
				f, err := os.Open(path)
				if err != nil {
					return fmt.Errorf("failed to open import file: %w", err)
				}
				defer f.Close()
				r = f
			}

			incoming, err := profile.Import(r, format)
			if err != nil {
				return err
			}
			result, err := cli.store.Import(incoming, overwrite)
			if err != nil {
				return err
			}

			output, err := cli.outputWriter(cmd)
			if err != nil {
				return err
			}
			return output.Write(result, func(w io.Writer) {
				fmt.Fprintf(w, "Imported %d, updated %d, skipped %d profile(s)\n",
					len(result.Added), len(result.Updated), len(result.Skipped))
				for _, alias := range result.Skipped {
					fmt.Fprintf(w, "  skipped %q (exists; use --overwrite to replace)\n", alias)
				}
			})
		},
	}

	cmd.Flags().StringVarP(&formatFlag, "format", "f", "", "Input format: yaml, toml or json")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace profiles whose alias already exists")

	return cmd
}

func transferFormat(flag, path string) (profile.Format, error) {
	if flag != "" {
		return profile.ParseFormat(flag)
	}
	return profile.FormatFromPath(path), nil
}

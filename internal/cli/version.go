package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/xabinapal/ccswitch/internal/version"
)

// newVersionCmd creates the version command.
func (cli *CLI) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print ccswitch version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			output, err := cli.outputWriter(cmd)
			if err != nil {
				return err
			}
			info := version.Get()
			return output.Write(info, func(w io.Writer) {
				fmt.Fprintln(w, info.String())
			})
		},
	}
}

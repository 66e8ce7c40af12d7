package cli

import (
	"fmt"

	"github.com/Harshitk-cp/ise/internal/buildconfig"
	"github.com/spf13/cobra"
)

func newVersionCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  "Version prints a single line, or the full build info when --output is given.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := buildconfig.Get()
			if cmd.Flags().Changed("output") {
				return o.writeResult(cmd, info)
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), info)
			return err
		},
	}
}

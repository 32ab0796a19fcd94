package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is overridden at build time with -ldflags "-X".
var Version = "dev"

// NewVersionCommand creates the version command.
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "celltype %s\n", Version)
		},
	}
}

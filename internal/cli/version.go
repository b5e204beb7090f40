package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/recordkeeper/pkg/recordkeeper"
)

const modulePath = "github.com/mesh-intelligence/recordkeeper"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the keeper version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "keeper v%s\nmodule: %s\n", recordkeeper.Version, modulePath)
			return nil
		},
	}
}

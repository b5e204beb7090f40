package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/recordkeeper/pkg/sqlite"
)

func newExportCmd() *cobra.Command {
	var dbPath string
	cmd := &cobra.Command{
		Use:   "export [file]... --db PATH",
		Short: "Write the model to a SQLite database",
		Long: "Write every class and def, their ancestors and their fields to a new\n" +
			"SQLite database. An existing file at PATH is replaced.",
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := loadModel(cmd, args)
			if err != nil {
				return err
			}
			if err := sqlite.Export(cmd.Context(), k, dbPath); err != nil {
				return sysError(err)
			}
			if flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"db":      dbPath,
					"classes": k.Classes().Len(),
					"defs":    k.Defs().Len(),
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d classes and %d defs to %s\n",
				k.Classes().Len(), k.Defs().Len(), dbPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "output database path")
	_ = cmd.MarkFlagRequired("db")
	return cmd
}

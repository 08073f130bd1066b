package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrlokans/hymnal/internal/entrypoint"
)

// NewMigrateCommand creates the migrate command. Opening the database
// applies the schema; the command then seeds one permission per action.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema and seed permissions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := entrypoint.NewApp(rootOpts.Config)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.Accounts.SeedPermissions(cmd.Context()); err != nil {
				return fmt.Errorf("failed to seed permissions: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Database is up to date")
			return nil
		},
	}
}

package cli

import (
	"github.com/spf13/cobra"

	"github.com/mrlokans/hymnal/internal/config"
	"github.com/mrlokans/hymnal/internal/logging"
)

// RootOptions holds state shared by every command.
type RootOptions struct {
	Version string
	Commit  string

	// Config is loaded before any command runs.
	Config *config.Config
}

// NewRootCommand creates the hymnal command. Without a subcommand it serves
// the API.
func NewRootCommand(version, commit string) *cobra.Command {
	opts := &RootOptions{Version: version, Commit: commit}

	cmd := &cobra.Command{
		Use:   "hymnal",
		Short: "Hymnal - hymn book management API",
		Long:  "A REST backend for hymn books, hymns, cross-book hymn mappings and their users.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			opts.Config = config.NewConfig()
			logging.Setup(opts.Config.Log)
			return nil
		},
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts)
		},
	}

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewCreateSuperuserCommand(opts))
	cmd.AddCommand(NewVersionCommand(opts))

	return cmd
}

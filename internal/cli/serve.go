package cli

import (
	"github.com/spf13/cobra"

	"github.com/mrlokans/hymnal/internal/entrypoint"
)

func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(rootOpts)
		},
	}
}

func runServe(opts *RootOptions) error {
	return entrypoint.Run(opts.Config, opts.Version)
}

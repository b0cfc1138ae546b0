package commands

import (
	"github.com/spf13/cobra"

	"github.com/m1yag1/globusctl/cmd/globusctl/handlers"
)

// Init returns the command for interactively creating a configuration.
//
// Flags:
//
//	--output, -o: Path to output file (default "globus.yaml")
func Init() *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Interactively create a starter configuration",
		Long: `Interactively create a globus.yaml configuration file.

The wizard asks about:

  - Authentication method (CLI session, client credentials or token)
  - The auth project to manage
  - An optional group
  - Whether this host runs Globus Connect Server

The generated file is a starting point. Edit it to declare endpoints,
collections, flows, timers, compute endpoints and search indexes.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Init(cmd.Context(), outputPath)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "globus.yaml", "Output file path")

	return cmd
}

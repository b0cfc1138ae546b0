package commands

import (
	"github.com/spf13/cobra"

	"github.com/m1yag1/globusctl/cmd/globusctl/handlers"
)

// Whoami returns the command that prints the authenticated identity.
func Whoami() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the identity globusctl authenticates as",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Whoami(cmd.Context(), configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: globus.yaml)")

	return cmd
}

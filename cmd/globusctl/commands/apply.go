package commands

import (
	"github.com/spf13/cobra"

	"github.com/m1yag1/globusctl/cmd/globusctl/handlers"
)

// Apply returns the command that reconciles Globus resources against the
// configuration file.
//
// Optional flags:
//
//	--config, -c: Path to configuration YAML file (default: globus.yaml)
//	--check: Report what would change without modifying anything
func Apply() *cobra.Command {
	var (
		configPath string
		check      bool
	)

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Create or update the declared Globus resources",
		Long: `Reconcile the Globus platform against your configuration file.

Each declared resource is looked up, compared against its declared
state, and created, updated or deleted as needed. Resources that
already match are left untouched and reported as unchanged.

If no config file is specified, globus.yaml in the current directory
is used. Use 'globusctl init' to create one.

Examples:
  # Apply globus.yaml in the current directory
  globusctl apply

  # Apply a specific file
  globusctl apply -c production.yaml

  # Preview without changing anything
  globusctl apply --check`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Apply(cmd.Context(), configPath, check)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: globus.yaml)")
	cmd.Flags().BoolVar(&check, "check", false, "Report changes without applying them")

	return cmd
}

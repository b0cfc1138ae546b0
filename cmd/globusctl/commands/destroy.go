package commands

import (
	"github.com/spf13/cobra"

	"github.com/m1yag1/globusctl/cmd/globusctl/handlers"
)

// Destroy returns the destroy command.
//
// The destroy command removes every resource declared in the
// configuration file, in reverse dependency order.
func Destroy() *cobra.Command {
	var (
		configPath string
		yes        bool
		check      bool
	)

	cmd := &cobra.Command{
		Use:   "destroy",
		Short: "Delete all declared Globus resources",
		Long: `Destroy deletes every resource the configuration file declares.

Resources are removed in reverse dependency order: GCS roles,
collections and storage gateways first, then timers and flows, search
indexes, compute endpoints, groups, transfer collections and
endpoints, and finally authentication policies, OAuth clients and
projects. Resources that are already gone are skipped.

The GCS endpoint and node themselves are not removed; run
'globus-connect-server endpoint cleanup' on the host for that.

Example:
  globusctl destroy -c globus.yaml --yes

WARNING: This operation is irreversible.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Destroy(cmd.Context(), configPath, yes, check)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (required)")
	cmd.Flags().BoolVar(&yes, "yes", false, "Skip the confirmation prompt")
	cmd.Flags().BoolVar(&check, "check", false, "Report deletions without performing them")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}

package commands

import (
	"github.com/spf13/cobra"

	"github.com/m1yag1/globusctl/cmd/globusctl/handlers"
)

// Token returns the token command group for the shared S3 token store.
//
// The token store holds OAuth tokens in an S3 object so CI jobs and
// batch hosts can share an authenticated session. The configuration
// file's token_store section names the bucket, object key and
// namespace.
func Token() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage the shared S3 token store",
	}

	cmd.AddCommand(tokenList())
	cmd.AddCommand(tokenGet())
	cmd.AddCommand(tokenStore())
	cmd.AddCommand(tokenRemove())
	cmd.AddCommand(tokenClear())

	return cmd
}

func tokenList() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored tokens by resource server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.TokenList(cmd.Context(), configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: globus.yaml)")

	return cmd
}

func tokenGet() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "get <resource-server>",
		Short: "Print the stored token for a resource server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.TokenGet(cmd.Context(), configPath, args[0])
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: globus.yaml)")

	return cmd
}

func tokenStore() *cobra.Command {
	var (
		configPath string
		opts       handlers.TokenStoreOptions
	)

	cmd := &cobra.Command{
		Use:   "store <resource-server>",
		Short: "Store a token for a resource server",
		Long: `Store an OAuth token in the shared S3 token store.

Token values are read from environment variables so they never appear
in shell history or process listings:

  GLOBUS_ACCESS_TOKEN   the access token (required)
  GLOBUS_REFRESH_TOKEN  the refresh token (optional)

Example:
  GLOBUS_ACCESS_TOKEN=... globusctl token store transfer.api.globus.org \
    --scope urn:globus:auth:scope:transfer.api.globus.org:all \
    --expires-in 172800`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.ResourceServer = args[0]
			return handlers.TokenStore(cmd.Context(), configPath, opts)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: globus.yaml)")
	cmd.Flags().StringVar(&opts.Scope, "scope", "", "Scope string the token was issued for")
	cmd.Flags().StringVar(&opts.ClientID, "client-id", "", "Client the token belongs to")
	cmd.Flags().Int64Var(&opts.ExpiresIn, "expires-in", 0, "Seconds until the access token expires")

	return cmd
}

func tokenRemove() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "remove <resource-server>",
		Short: "Remove the stored token for a resource server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.TokenRemove(cmd.Context(), configPath, args[0])
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: globus.yaml)")

	return cmd
}

func tokenClear() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove all tokens in the configured namespace",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.TokenClear(cmd.Context(), configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: globus.yaml)")

	return cmd
}

// Package handlers implements the business logic for CLI commands.
//
// This package contains handler functions that are called by command
// definitions in the commands package. Handlers are framework-agnostic
// and can be tested independently of the CLI framework.
package handlers

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/mattn/go-isatty"
	shellwords "github.com/mattn/go-shellwords"
	"github.com/olekukonko/tablewriter"

	"github.com/m1yag1/globusctl/internal/config"
	"github.com/m1yag1/globusctl/internal/gcs"
	"github.com/m1yag1/globusctl/internal/globus"
	"github.com/m1yag1/globusctl/internal/provisioning"
	"github.com/m1yag1/globusctl/internal/provisioning/automation"
	"github.com/m1yag1/globusctl/internal/provisioning/compute"
	"github.com/m1yag1/globusctl/internal/provisioning/connect"
	"github.com/m1yag1/globusctl/internal/provisioning/groups"
	"github.com/m1yag1/globusctl/internal/provisioning/identity"
	"github.com/m1yag1/globusctl/internal/provisioning/search"
	"github.com/m1yag1/globusctl/internal/provisioning/transfer"
)

const defaultConfigFile = "globus.yaml"

// Factory function variables - can be replaced in tests for dependency
// injection.
var (
	// loadConfigFile loads the configuration from a file.
	loadConfigFile = config.LoadFile

	// newGlobusClient creates the platform API client.
	newGlobusClient = func(cfg *config.Config, check bool) globus.Client {
		opts := []globus.Option{}
		if check {
			opts = append(opts, globus.WithDryRun())
		}
		return globus.NewRealClient(cfg.Auth, opts...)
	}

	// newProvisioningContext creates a new provisioning context.
	newProvisioningContext = provisioning.NewContext

	// runPhases executes the reconcile pipeline.
	runPhases = provisioning.RunPhases
)

// Apply reconciles the Globus platform against the configuration file.
//
// The reconcile pipeline runs validation first, then one phase per
// resource family: identity (projects, policies, OAuth clients),
// transfer (endpoints, collections), groups, automation (flows,
// timers), compute, search and finally Globus Connect Server resources
// on the local host. Each phase reports per-resource outcomes which are
// summarized at the end.
//
// With check set, nothing is modified: every mutating operation reports
// the outcome it would have had.
func Apply(ctx context.Context, configPath string, check bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	if check {
		log.Println("Check mode: no changes will be made")
	}

	client := newGlobusClient(cfg, check)
	manager, err := newGCSManager(cfg, check)
	if err != nil {
		return err
	}

	pCtx := newProvisioningContext(ctx, cfg, client, manager)
	pCtx.DryRun = check

	phases := []provisioning.Phase{
		provisioning.NewValidationPhase(),
		identity.NewProvisioner(),
		transfer.NewProvisioner(),
		groups.NewProvisioner(),
		automation.NewProvisioner(),
		compute.NewProvisioner(),
		search.NewProvisioner(),
		connect.NewProvisioner(),
	}

	runErr := runPhases(pCtx, phases)

	// Partial results are still worth showing when a late phase fails.
	printSummary(os.Stdout, pCtx.State)
	printCredentials(os.Stdout, pCtx.State)

	return runErr
}

// loadConfig loads and validates the configuration. If configPath is
// empty, globus.yaml in the current directory is used.
func loadConfig(configPath string) (*config.Config, error) {
	if configPath == "" {
		configPath = defaultConfigFile
	}

	cfg, err := loadConfigFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w\nRun 'globusctl init' to create one", err)
	}

	return cfg, nil
}

// newGCSManager builds the Globus Connect Server CLI driver, or nil when
// the configuration has no gcs section. The CLI authenticates through
// GCS_CLI_CLIENT_ID and GCS_CLI_CLIENT_SECRET derived from the
// client_credentials auth settings.
func newGCSManager(cfg *config.Config, check bool) (*gcs.Manager, error) {
	if cfg.GCS == nil {
		return nil, nil
	}

	var env []string
	if cfg.Auth.Method == config.AuthMethodClientCredentials {
		env = append(env,
			"GCS_CLI_CLIENT_ID="+cfg.Auth.ClientID,
			"GCS_CLI_CLIENT_SECRET="+cfg.Auth.ClientSecret,
		)
	}

	opts := []gcs.Option{gcs.WithClientID(cfg.Auth.ClientID)}
	if cfg.GCS.ExtraArgs != "" {
		extra, err := shellwords.Parse(cfg.GCS.ExtraArgs)
		if err != nil {
			return nil, fmt.Errorf("gcs.extra_args: %w", err)
		}
		opts = append(opts, gcs.WithExtraArgs(extra))
	}
	if check {
		opts = append(opts, gcs.WithDryRun())
	}

	return gcs.NewManager(gcs.NewExecRunner(env), opts...), nil
}

// printSummary renders the per-resource outcomes of a run.
func printSummary(w io.Writer, state *provisioning.State) {
	if len(state.Results) == 0 {
		return
	}

	fmt.Fprintln(w)
	rows := make([][]string, 0, len(state.Results))
	for _, r := range state.Results {
		rows = append(rows, []string{r.Phase, r.Resource, r.Name, r.ID, string(r.Outcome)})
	}
	if isInteractiveTTY() {
		printTable(w, []string{"Phase", "Resource", "Name", "ID", "Result"}, rows)
	} else {
		for _, row := range rows {
			fmt.Fprintf(w, "%s %s %s %s %s\n", row[0], row[1], row[2], row[3], row[4])
		}
	}
	fmt.Fprintf(w, "\n%d of %d resources changed\n", state.Changed(), len(state.Results))
}

// printCredentials surfaces client credentials minted during the run.
// Secrets cannot be retrieved from the platform again, so unless an
// output file was configured this is the only chance to capture them.
func printCredentials(w io.Writer, state *provisioning.State) {
	if len(state.Credentials) == 0 {
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "New client credentials (secrets are shown only once, store them now):")
	for _, c := range state.Credentials {
		fmt.Fprintf(w, "  client_id:     %s\n", c.ClientID)
		fmt.Fprintf(w, "  client_secret: %s\n", c.Secret)
	}
}

// printTable renders rows in a borderless left-aligned table.
func printTable(w io.Writer, header []string, rows [][]string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	table.SetNoWhiteSpace(true)
	table.AppendBulk(rows)
	table.Render()
}

func isInteractiveTTY() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

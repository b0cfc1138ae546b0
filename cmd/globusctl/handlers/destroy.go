package handlers

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/m1yag1/globusctl/internal/provisioning"
	"github.com/m1yag1/globusctl/internal/provisioning/destroy"
)

// Provisioner interface for testing - matches provisioning.Phase.
type Provisioner interface {
	Name() string
	Provision(ctx *provisioning.Context) error
}

// Factory function variables for destroy - can be replaced in tests.
var (
	// newDestroyProvisioner creates a new destroy provisioner.
	newDestroyProvisioner = func() Provisioner {
		return destroy.NewProvisioner()
	}

	// confirmDestroy asks the user to confirm the teardown.
	confirmDestroy = promptConfirmation
)

// Destroy deletes every resource the configuration file declares, in
// reverse dependency order. Unless yes is set, an interactive
// confirmation is required first. With check set, deletions are only
// reported.
func Destroy(ctx context.Context, configPath string, yes, check bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	if check {
		log.Println("Check mode: no changes will be made")
	} else if !yes {
		ok, err := confirmDestroy()
		if err != nil {
			return err
		}
		if !ok {
			log.Println("Destroy canceled")
			return nil
		}
	}

	client := newGlobusClient(cfg, check)
	manager, err := newGCSManager(cfg, check)
	if err != nil {
		return err
	}

	pCtx := newProvisioningContext(ctx, cfg, client, manager)
	pCtx.DryRun = check

	destroyer := newDestroyProvisioner()
	runErr := runPhases(pCtx, []provisioning.Phase{destroyer})

	printSummary(os.Stdout, pCtx.State)

	if runErr != nil {
		return fmt.Errorf("destroy failed: %w", runErr)
	}

	log.Println("All declared resources destroyed")
	return nil
}

// promptConfirmation asks for an explicit "yes" on the terminal.
// Non-interactive runs must pass --yes instead.
func promptConfirmation() (bool, error) {
	if !isInteractiveTTY() {
		return false, fmt.Errorf("refusing to destroy without confirmation; pass --yes to proceed")
	}

	fmt.Print("This deletes every declared resource. Type 'yes' to continue: ")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}
	return strings.TrimSpace(line) == "yes", nil
}

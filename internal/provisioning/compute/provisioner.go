// Package compute reconciles compute endpoints.
package compute

import (
	"fmt"

	"github.com/m1yag1/globusctl/internal/config"
	"github.com/m1yag1/globusctl/internal/provisioning"
)

const phase = "compute"

// Provisioner handles compute endpoint reconciliation.
type Provisioner struct{}

// NewProvisioner creates a new compute provisioner.
func NewProvisioner() *Provisioner {
	return &Provisioner{}
}

// Name implements the provisioning.Phase interface.
func (p *Provisioner) Name() string {
	return phase
}

// Provision implements the provisioning.Phase interface.
func (p *Provisioner) Provision(ctx *provisioning.Context) error {
	for _, spec := range ctx.Config.ComputeEndpoints {
		if spec.State == config.StateAbsent {
			outcome, err := ctx.Client.DeleteComputeEndpoint(ctx, spec.Name)
			if err != nil {
				return fmt.Errorf("compute endpoint %s: %w", spec.Name, err)
			}
			ctx.Report(phase, "compute endpoint", spec.Name, "", outcome)
			continue
		}

		endpoint, outcome, err := ctx.Client.EnsureComputeEndpoint(ctx, spec)
		if err != nil {
			return fmt.Errorf("compute endpoint %s: %w", spec.Name, err)
		}
		id := ""
		if endpoint != nil {
			id = endpoint.ID
		}
		ctx.Report(phase, "compute endpoint", spec.Name, id, outcome)
	}
	return nil
}

// Package connect reconciles Globus Connect Server v5 resources on the
// local host through the gcs manager.
package connect

import (
	"fmt"

	"github.com/m1yag1/globusctl/internal/config"
	"github.com/m1yag1/globusctl/internal/provisioning"
)

const phase = "connect"

// Provisioner handles Globus Connect Server reconciliation: endpoint
// setup, node setup, storage gateways, mapped collections and roles.
type Provisioner struct{}

// NewProvisioner creates a new connect provisioner.
func NewProvisioner() *Provisioner {
	return &Provisioner{}
}

// Name implements the provisioning.Phase interface.
func (p *Provisioner) Name() string {
	return phase
}

// Provision implements the provisioning.Phase interface.
func (p *Provisioner) Provision(ctx *provisioning.Context) error {
	if ctx.Config.GCS == nil {
		return nil
	}
	if ctx.GCS == nil {
		return fmt.Errorf("gcs resources are declared but no globus-connect-server manager is configured")
	}

	// Order matters: the endpoint must exist before the node, gateways
	// before their collections, collections before their roles.
	if err := p.ProvisionEndpoint(ctx); err != nil {
		return err
	}
	if err := p.ProvisionNode(ctx); err != nil {
		return err
	}
	if err := p.ProvisionStorageGateways(ctx); err != nil {
		return err
	}
	if err := p.ProvisionCollections(ctx); err != nil {
		return err
	}
	if err := p.ProvisionRoles(ctx); err != nil {
		return err
	}
	return nil
}

// ProvisionEndpoint sets up the local GCS endpoint.
func (p *Provisioner) ProvisionEndpoint(ctx *provisioning.Context) error {
	spec := ctx.Config.GCS.Endpoint
	if spec == nil {
		return nil
	}

	endpoint, outcome, err := ctx.GCS.EnsureEndpoint(ctx, *spec)
	if err != nil {
		return fmt.Errorf("gcs endpoint %s: %w", spec.DisplayName, err)
	}
	id := ""
	if endpoint != nil {
		id = endpoint.ID
		ctx.State.GCSEndpointID = endpoint.ID
	}
	ctx.Report(phase, "gcs endpoint", spec.DisplayName, id, outcome)
	return nil
}

// ProvisionNode registers the local data transfer node.
func (p *Provisioner) ProvisionNode(ctx *provisioning.Context) error {
	spec := ctx.Config.GCS.Node
	if spec == nil {
		return nil
	}

	outcome, err := ctx.GCS.EnsureNode(ctx, *spec)
	if err != nil {
		return fmt.Errorf("gcs node: %w", err)
	}
	ctx.Report(phase, "gcs node", "local", "", outcome)
	return nil
}

// ProvisionStorageGateways reconciles the declared storage gateways.
func (p *Provisioner) ProvisionStorageGateways(ctx *provisioning.Context) error {
	for _, spec := range ctx.Config.GCS.StorageGateways {
		if spec.State == config.StateAbsent {
			outcome, err := ctx.GCS.DeleteStorageGateway(ctx, spec.DisplayName)
			if err != nil {
				return fmt.Errorf("storage gateway %s: %w", spec.DisplayName, err)
			}
			ctx.Report(phase, "storage gateway", spec.DisplayName, "", outcome)
			continue
		}

		gateway, outcome, err := ctx.GCS.EnsureStorageGateway(ctx, spec)
		if err != nil {
			return fmt.Errorf("storage gateway %s: %w", spec.DisplayName, err)
		}
		id := ""
		if gateway != nil {
			id = gateway.ID
		}
		ctx.Report(phase, "storage gateway", spec.DisplayName, id, outcome)
	}
	return nil
}

// ProvisionCollections reconciles the declared mapped collections.
func (p *Provisioner) ProvisionCollections(ctx *provisioning.Context) error {
	for _, spec := range ctx.Config.GCS.Collections {
		if spec.State == config.StateAbsent {
			outcome, err := ctx.GCS.DeleteCollection(ctx, spec.DisplayName)
			if err != nil {
				return fmt.Errorf("gcs collection %s: %w", spec.DisplayName, err)
			}
			ctx.Report(phase, "gcs collection", spec.DisplayName, "", outcome)
			continue
		}

		collection, outcome, err := ctx.GCS.EnsureCollection(ctx, spec)
		if err != nil {
			return fmt.Errorf("gcs collection %s: %w", spec.DisplayName, err)
		}
		id := ""
		if collection != nil {
			id = collection.ID
		}
		ctx.Report(phase, "gcs collection", spec.DisplayName, id, outcome)
	}
	return nil
}

// ProvisionRoles reconciles the declared role assignments.
func (p *Provisioner) ProvisionRoles(ctx *provisioning.Context) error {
	for _, spec := range ctx.Config.GCS.Roles {
		name := fmt.Sprintf("%s/%s/%s", spec.Collection, spec.Role, spec.Principal)

		if spec.State == config.StateAbsent {
			outcome, err := ctx.GCS.DeleteRole(ctx, spec)
			if err != nil {
				return fmt.Errorf("role %s: %w", name, err)
			}
			ctx.Report(phase, "role", name, "", outcome)
			continue
		}

		role, outcome, err := ctx.GCS.EnsureRole(ctx, spec)
		if err != nil {
			return fmt.Errorf("role %s: %w", name, err)
		}
		id := ""
		if role != nil {
			id = role.ID
		}
		ctx.Report(phase, "role", name, id, outcome)
	}
	return nil
}

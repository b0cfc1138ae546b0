// Package transfer reconciles transfer endpoints and the collections
// hosted on them.
package transfer

import (
	"fmt"

	"github.com/m1yag1/globusctl/internal/config"
	"github.com/m1yag1/globusctl/internal/provisioning"
)

const phase = "transfer"

// Provisioner handles transfer reconciliation (endpoints, collections).
type Provisioner struct{}

// NewProvisioner creates a new transfer provisioner.
func NewProvisioner() *Provisioner {
	return &Provisioner{}
}

// Name implements the provisioning.Phase interface.
func (p *Provisioner) Name() string {
	return phase
}

// Provision implements the provisioning.Phase interface.
func (p *Provisioner) Provision(ctx *provisioning.Context) error {
	// 1. Endpoints
	if err := p.ProvisionEndpoints(ctx); err != nil {
		return err
	}

	// 2. Collections
	if err := p.ProvisionCollections(ctx); err != nil {
		return err
	}

	return nil
}

// ProvisionEndpoints reconciles the declared transfer endpoints.
func (p *Provisioner) ProvisionEndpoints(ctx *provisioning.Context) error {
	for _, spec := range ctx.Config.Endpoints {
		if spec.State == config.StateAbsent {
			outcome, err := ctx.Client.DeleteEndpoint(ctx, spec.Name)
			if err != nil {
				return fmt.Errorf("endpoint %s: %w", spec.Name, err)
			}
			ctx.Report(phase, "endpoint", spec.Name, "", outcome)
			continue
		}

		endpoint, outcome, err := ctx.Client.EnsureEndpoint(ctx, spec)
		if err != nil {
			return fmt.Errorf("endpoint %s: %w", spec.Name, err)
		}
		id := ""
		if endpoint != nil {
			id = endpoint.ID
			ctx.State.EndpointIDs[spec.Name] = endpoint.ID
		}
		ctx.Report(phase, "endpoint", spec.Name, id, outcome)
	}
	return nil
}

// ProvisionCollections reconciles the declared collections. Each
// collection lives on an endpoint, which may have been created earlier
// in the same run.
func (p *Provisioner) ProvisionCollections(ctx *provisioning.Context) error {
	for _, spec := range ctx.Config.Collections {
		endpointID, err := p.resolveEndpoint(ctx, spec.Endpoint)
		if err != nil {
			return fmt.Errorf("collection %s: %w", spec.Name, err)
		}

		if spec.State == config.StateAbsent {
			outcome, err := ctx.Client.DeleteCollection(ctx, spec.Name, endpointID)
			if err != nil {
				return fmt.Errorf("collection %s: %w", spec.Name, err)
			}
			ctx.Report(phase, "collection", spec.Name, "", outcome)
			continue
		}

		collection, outcome, err := ctx.Client.EnsureCollection(ctx, spec, endpointID)
		if err != nil {
			return fmt.Errorf("collection %s: %w", spec.Name, err)
		}
		id := ""
		if collection != nil {
			id = collection.ID
			ctx.State.CollectionIDs[spec.Name] = collection.ID
		}
		ctx.Report(phase, "collection", spec.Name, id, outcome)
	}
	return nil
}

// resolveEndpoint maps an endpoint name or id to an id, preferring
// endpoints created earlier in this run.
func (p *Provisioner) resolveEndpoint(ctx *provisioning.Context, nameOrID string) (string, error) {
	if id, ok := ctx.State.EndpointIDs[nameOrID]; ok {
		return id, nil
	}
	return ctx.Client.ResolveEndpointID(ctx, nameOrID)
}

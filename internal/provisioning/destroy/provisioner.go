// Package destroy handles teardown of every resource the configuration
// declares.
package destroy

import (
	"fmt"
	"strings"

	"github.com/m1yag1/globusctl/internal/globus"
	"github.com/m1yag1/globusctl/internal/provisioning"
)

// isNotFound matches resolver errors for resources that no longer
// exist remotely.
func isNotFound(err error) bool {
	return err != nil && strings.Contains(err.Error(), "not found")
}

const phase = "destroy"

// Provisioner deletes declared resources in reverse dependency order.
// Projects and OAuth clients may be skipped with a warning when the
// session lacks high assurance; GCS endpoint and node teardown always
// require the interactive cleanup commands and are never attempted.
type Provisioner struct{}

// NewProvisioner creates a new destroy provisioner.
func NewProvisioner() *Provisioner {
	return &Provisioner{}
}

// Name implements the provisioning.Phase interface.
func (p *Provisioner) Name() string {
	return phase
}

// Provision implements the provisioning.Phase interface.
func (p *Provisioner) Provision(ctx *provisioning.Context) error {
	if err := p.destroyGCS(ctx); err != nil {
		return err
	}
	if err := p.destroyAutomation(ctx); err != nil {
		return err
	}
	if err := p.destroySearchAndCompute(ctx); err != nil {
		return err
	}
	if err := p.destroyGroups(ctx); err != nil {
		return err
	}
	if err := p.destroyTransfer(ctx); err != nil {
		return err
	}
	if err := p.destroyIdentity(ctx); err != nil {
		return err
	}
	return nil
}

func (p *Provisioner) destroyGCS(ctx *provisioning.Context) error {
	if ctx.Config.GCS == nil || ctx.GCS == nil {
		return nil
	}

	for _, spec := range ctx.Config.GCS.Roles {
		name := fmt.Sprintf("%s/%s/%s", spec.Collection, spec.Role, spec.Principal)
		outcome, err := ctx.GCS.DeleteRole(ctx, spec)
		if err != nil {
			return fmt.Errorf("role %s: %w", name, err)
		}
		ctx.Report(phase, "role", name, "", outcome)
	}
	for _, spec := range ctx.Config.GCS.Collections {
		outcome, err := ctx.GCS.DeleteCollection(ctx, spec.DisplayName)
		if err != nil {
			return fmt.Errorf("gcs collection %s: %w", spec.DisplayName, err)
		}
		ctx.Report(phase, "gcs collection", spec.DisplayName, "", outcome)
	}
	for _, spec := range ctx.Config.GCS.StorageGateways {
		outcome, err := ctx.GCS.DeleteStorageGateway(ctx, spec.DisplayName)
		if err != nil {
			return fmt.Errorf("storage gateway %s: %w", spec.DisplayName, err)
		}
		ctx.Report(phase, "storage gateway", spec.DisplayName, "", outcome)
	}

	if ctx.Config.GCS.Endpoint != nil {
		ctx.Logger.Printf("[%s] GCS endpoint teardown requires globus-connect-server endpoint cleanup; skipping", phase)
	}
	return nil
}

func (p *Provisioner) destroyAutomation(ctx *provisioning.Context) error {
	for _, spec := range ctx.Config.Timers {
		outcome, err := ctx.Client.DeleteTimer(ctx, spec)
		if err != nil {
			return fmt.Errorf("timer %s: %w", spec.Name, err)
		}
		ctx.Report(phase, "timer", spec.Name, "", outcome)
	}
	for _, spec := range ctx.Config.Flows {
		outcome, err := ctx.Client.DeleteFlow(ctx, spec.Title)
		if err != nil {
			return fmt.Errorf("flow %s: %w", spec.Title, err)
		}
		ctx.Report(phase, "flow", spec.Title, "", outcome)
	}
	return nil
}

func (p *Provisioner) destroySearchAndCompute(ctx *provisioning.Context) error {
	for _, spec := range ctx.Config.SearchIndexes {
		outcome, err := ctx.Client.DeleteSearchIndex(ctx, spec.Name)
		if err != nil {
			return fmt.Errorf("search index %s: %w", spec.Name, err)
		}
		ctx.Report(phase, "search index", spec.Name, "", outcome)
	}
	for _, spec := range ctx.Config.ComputeEndpoints {
		outcome, err := ctx.Client.DeleteComputeEndpoint(ctx, spec.Name)
		if err != nil {
			return fmt.Errorf("compute endpoint %s: %w", spec.Name, err)
		}
		ctx.Report(phase, "compute endpoint", spec.Name, "", outcome)
	}
	return nil
}

func (p *Provisioner) destroyGroups(ctx *provisioning.Context) error {
	for _, spec := range ctx.Config.Groups {
		outcome, err := ctx.Client.DeleteGroup(ctx, spec.Name)
		if err != nil {
			return fmt.Errorf("group %s: %w", spec.Name, err)
		}
		ctx.Report(phase, "group", spec.Name, "", outcome)
	}
	return nil
}

func (p *Provisioner) destroyTransfer(ctx *provisioning.Context) error {
	for _, spec := range ctx.Config.Collections {
		endpointID, err := ctx.Client.ResolveEndpointID(ctx, spec.Endpoint)
		if err != nil {
			// An endpoint that is already gone took its collections
			// with it.
			if isNotFound(err) {
				ctx.Report(phase, "collection", spec.Name, "", globus.OutcomeUnchanged)
				continue
			}
			return fmt.Errorf("collection %s: %w", spec.Name, err)
		}
		outcome, err := ctx.Client.DeleteCollection(ctx, spec.Name, endpointID)
		if err != nil {
			return fmt.Errorf("collection %s: %w", spec.Name, err)
		}
		ctx.Report(phase, "collection", spec.Name, "", outcome)
	}
	for _, spec := range ctx.Config.Endpoints {
		outcome, err := ctx.Client.DeleteEndpoint(ctx, spec.Name)
		if err != nil {
			return fmt.Errorf("endpoint %s: %w", spec.Name, err)
		}
		ctx.Report(phase, "endpoint", spec.Name, "", outcome)
	}
	return nil
}

func (p *Provisioner) destroyIdentity(ctx *provisioning.Context) error {
	for _, spec := range ctx.Config.Policies {
		projectID, err := ctx.Client.ResolveProjectID(ctx, spec.Project)
		if err != nil {
			if isNotFound(err) {
				ctx.Report(phase, "policy", spec.Name, "", globus.OutcomeUnchanged)
				continue
			}
			return fmt.Errorf("policy %s: %w", spec.Name, err)
		}
		outcome, err := ctx.Client.DeletePolicy(ctx, spec.Name, projectID)
		if err != nil {
			return fmt.Errorf("policy %s: %w", spec.Name, err)
		}
		ctx.Report(phase, "policy", spec.Name, "", outcome)
	}
	for _, spec := range ctx.Config.Clients {
		projectID, err := ctx.Client.ResolveProjectID(ctx, spec.Project)
		if err != nil {
			if isNotFound(err) {
				ctx.Report(phase, "client", spec.Name, "", globus.OutcomeUnchanged)
				continue
			}
			return fmt.Errorf("client %s: %w", spec.Name, err)
		}
		outcome, err := ctx.Client.DeleteOAuthClient(ctx, spec.Name, projectID)
		if err != nil {
			return fmt.Errorf("client %s: %w", spec.Name, err)
		}
		ctx.Report(phase, "client", spec.Name, "", outcome)
	}
	for _, spec := range ctx.Config.Projects {
		outcome, err := ctx.Client.DeleteProject(ctx, spec.Name)
		if err != nil {
			return fmt.Errorf("project %s: %w", spec.Name, err)
		}
		ctx.Report(phase, "project", spec.Name, "", outcome)
	}
	return nil
}

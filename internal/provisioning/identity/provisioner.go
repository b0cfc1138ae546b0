// Package identity reconciles Globus Auth projects, policies and OAuth
// clients.
package identity

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/m1yag1/globusctl/internal/config"
	"github.com/m1yag1/globusctl/internal/provisioning"
)

const phase = "identity"

// Provisioner handles identity reconciliation (projects, policies,
// OAuth clients and their credentials).
type Provisioner struct{}

// NewProvisioner creates a new identity provisioner.
func NewProvisioner() *Provisioner {
	return &Provisioner{}
}

// Name implements the provisioning.Phase interface.
func (p *Provisioner) Name() string {
	return phase
}

// Provision implements the provisioning.Phase interface.
func (p *Provisioner) Provision(ctx *provisioning.Context) error {
	// 1. Projects
	if err := p.ProvisionProjects(ctx); err != nil {
		return err
	}

	// 2. Policies
	if err := p.ProvisionPolicies(ctx); err != nil {
		return err
	}

	// 3. OAuth clients
	if err := p.ProvisionClients(ctx); err != nil {
		return err
	}

	return nil
}

// ProvisionProjects reconciles the declared auth projects.
func (p *Provisioner) ProvisionProjects(ctx *provisioning.Context) error {
	for _, spec := range ctx.Config.Projects {
		if spec.State == config.StateAbsent {
			outcome, err := ctx.Client.DeleteProject(ctx, spec.Name)
			if err != nil {
				return fmt.Errorf("project %s: %w", spec.Name, err)
			}
			ctx.Report(phase, "project", spec.Name, "", outcome)
			continue
		}

		project, outcome, err := ctx.Client.EnsureProject(ctx, spec)
		if err != nil {
			return fmt.Errorf("project %s: %w", spec.Name, err)
		}
		id := ""
		if project != nil {
			id = project.ID
			ctx.State.ProjectIDs[spec.Name] = project.ID
		}
		ctx.Report(phase, "project", spec.Name, id, outcome)
	}
	return nil
}

// ProvisionPolicies reconciles the declared authentication policies.
func (p *Provisioner) ProvisionPolicies(ctx *provisioning.Context) error {
	for _, spec := range ctx.Config.Policies {
		projectID, err := p.resolveProject(ctx, spec.Project)
		if err != nil {
			return fmt.Errorf("policy %s: %w", spec.Name, err)
		}

		if spec.State == config.StateAbsent {
			outcome, err := ctx.Client.DeletePolicy(ctx, spec.Name, projectID)
			if err != nil {
				return fmt.Errorf("policy %s: %w", spec.Name, err)
			}
			ctx.Report(phase, "policy", spec.Name, "", outcome)
			continue
		}

		policy, outcome, err := ctx.Client.EnsurePolicy(ctx, spec, projectID)
		if err != nil {
			return fmt.Errorf("policy %s: %w", spec.Name, err)
		}
		id := ""
		if policy != nil {
			id = policy.ID
		}
		ctx.Report(phase, "policy", spec.Name, id, outcome)
	}
	return nil
}

// ProvisionClients reconciles the declared OAuth clients. Credentials
// minted for new confidential clients are kept in state and optionally
// written to the configured output file; their secrets cannot be
// retrieved again.
func (p *Provisioner) ProvisionClients(ctx *provisioning.Context) error {
	for _, spec := range ctx.Config.Clients {
		projectID, err := p.resolveProject(ctx, spec.Project)
		if err != nil {
			return fmt.Errorf("client %s: %w", spec.Name, err)
		}

		if spec.State == config.StateAbsent {
			outcome, err := ctx.Client.DeleteOAuthClient(ctx, spec.Name, projectID)
			if err != nil {
				return fmt.Errorf("client %s: %w", spec.Name, err)
			}
			ctx.Report(phase, "client", spec.Name, "", outcome)
			continue
		}

		client, credential, outcome, err := ctx.Client.EnsureOAuthClient(ctx, spec, projectID)
		if err != nil {
			return fmt.Errorf("client %s: %w", spec.Name, err)
		}
		id := ""
		if client != nil {
			id = client.ID
			ctx.State.ClientIDs[spec.Name] = client.ID
		}
		ctx.Report(phase, "client", spec.Name, id, outcome)

		if credential != nil {
			ctx.State.Credentials = append(ctx.State.Credentials, *credential)
			if spec.CredentialOutputFile != "" {
				if err := writeCredentialFile(spec.CredentialOutputFile, credential.ClientID, credential.Secret); err != nil {
					return fmt.Errorf("client %s: %w", spec.Name, err)
				}
				ctx.Logger.Printf("[%s] Wrote credential for %s to %s", phase, spec.Name, spec.CredentialOutputFile)
			}
		}
	}
	return nil
}

// resolveProject maps a project name or id to an id, preferring
// projects created earlier in this run.
func (p *Provisioner) resolveProject(ctx *provisioning.Context, nameOrID string) (string, error) {
	if id, ok := ctx.State.ProjectIDs[nameOrID]; ok {
		return id, nil
	}
	return ctx.Client.ResolveProjectID(ctx, nameOrID)
}

// writeCredentialFile saves a freshly minted client credential as JSON
// readable only by the owner.
func writeCredentialFile(path, clientID, secret string) error {
	data, err := json.MarshalIndent(map[string]string{
		"client_id":     clientID,
		"client_secret": secret,
	}, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write credential file: %w", err)
	}
	return nil
}

// Package groups reconciles groups and their membership.
package groups

import (
	"fmt"

	"github.com/m1yag1/globusctl/internal/config"
	"github.com/m1yag1/globusctl/internal/provisioning"
)

const phase = "groups"

// Provisioner handles group reconciliation.
type Provisioner struct{}

// NewProvisioner creates a new groups provisioner.
func NewProvisioner() *Provisioner {
	return &Provisioner{}
}

// Name implements the provisioning.Phase interface.
func (p *Provisioner) Name() string {
	return phase
}

// Provision implements the provisioning.Phase interface.
func (p *Provisioner) Provision(ctx *provisioning.Context) error {
	identities, err := p.resolveMemberIdentities(ctx)
	if err != nil {
		return err
	}

	for _, spec := range ctx.Config.Groups {
		if spec.State == config.StateAbsent {
			outcome, err := ctx.Client.DeleteGroup(ctx, spec.Name)
			if err != nil {
				return fmt.Errorf("group %s: %w", spec.Name, err)
			}
			ctx.Report(phase, "group", spec.Name, "", outcome)
			continue
		}

		group, outcome, err := ctx.Client.EnsureGroup(ctx, spec, identities)
		if err != nil {
			return fmt.Errorf("group %s: %w", spec.Name, err)
		}
		id := ""
		if group != nil {
			id = group.ID
		}
		ctx.Report(phase, "group", spec.Name, id, outcome)
	}
	return nil
}

// resolveMemberIdentities resolves every username referenced by any
// group in one batch. Unknown usernames are provisioned so they can be
// added before their first login.
func (p *Provisioner) resolveMemberIdentities(ctx *provisioning.Context) (map[string]string, error) {
	seen := make(map[string]bool)
	var usernames []string
	for _, spec := range ctx.Config.Groups {
		if spec.State == config.StateAbsent {
			continue
		}
		for _, u := range append(append([]string{}, spec.Members...), spec.Admins...) {
			if !seen[u] {
				seen[u] = true
				usernames = append(usernames, u)
			}
		}
	}
	if len(usernames) == 0 {
		return nil, nil
	}

	identities, err := ctx.Client.ResolveIdentities(ctx, usernames)
	if err != nil {
		return nil, fmt.Errorf("resolving member identities: %w", err)
	}
	return identities, nil
}

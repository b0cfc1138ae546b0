// Package search reconciles search indexes.
package search

import (
	"fmt"

	"github.com/m1yag1/globusctl/internal/config"
	"github.com/m1yag1/globusctl/internal/provisioning"
)

const phase = "search"

// Provisioner handles search index reconciliation.
type Provisioner struct{}

// NewProvisioner creates a new search provisioner.
func NewProvisioner() *Provisioner {
	return &Provisioner{}
}

// Name implements the provisioning.Phase interface.
func (p *Provisioner) Name() string {
	return phase
}

// Provision implements the provisioning.Phase interface.
func (p *Provisioner) Provision(ctx *provisioning.Context) error {
	for _, spec := range ctx.Config.SearchIndexes {
		if spec.State == config.StateAbsent {
			outcome, err := ctx.Client.DeleteSearchIndex(ctx, spec.Name)
			if err != nil {
				return fmt.Errorf("search index %s: %w", spec.Name, err)
			}
			ctx.Report(phase, "search index", spec.Name, "", outcome)
			continue
		}

		index, outcome, err := ctx.Client.EnsureSearchIndex(ctx, spec)
		if err != nil {
			return fmt.Errorf("search index %s: %w", spec.Name, err)
		}
		id := ""
		if index != nil {
			id = index.ID
		}
		ctx.Report(phase, "search index", spec.Name, id, outcome)
	}
	return nil
}

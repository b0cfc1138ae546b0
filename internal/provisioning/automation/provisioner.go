// Package automation reconciles flows and timers.
package automation

import (
	"fmt"

	"github.com/m1yag1/globusctl/internal/config"
	"github.com/m1yag1/globusctl/internal/provisioning"
)

const phase = "automation"

// Provisioner handles automation reconciliation (flows, timers).
type Provisioner struct{}

// NewProvisioner creates a new automation provisioner.
func NewProvisioner() *Provisioner {
	return &Provisioner{}
}

// Name implements the provisioning.Phase interface.
func (p *Provisioner) Name() string {
	return phase
}

// Provision implements the provisioning.Phase interface.
func (p *Provisioner) Provision(ctx *provisioning.Context) error {
	// 1. Flows, so timers can reference their scopes
	if err := p.ProvisionFlows(ctx); err != nil {
		return err
	}

	// 2. Timers
	if err := p.ProvisionTimers(ctx); err != nil {
		return err
	}

	return nil
}

// ProvisionFlows reconciles the declared flows and records each flow's
// user scope for timers that run it.
func (p *Provisioner) ProvisionFlows(ctx *provisioning.Context) error {
	for _, spec := range ctx.Config.Flows {
		if spec.State == config.StateAbsent {
			outcome, err := ctx.Client.DeleteFlow(ctx, spec.Title)
			if err != nil {
				return fmt.Errorf("flow %s: %w", spec.Title, err)
			}
			ctx.Report(phase, "flow", spec.Title, "", outcome)
			continue
		}

		flow, outcome, err := ctx.Client.EnsureFlow(ctx, spec)
		if err != nil {
			return fmt.Errorf("flow %s: %w", spec.Title, err)
		}
		id := ""
		if flow != nil {
			id = flow.ID
			ctx.State.FlowIDs[spec.Title] = flow.ID
			ctx.State.FlowScopes[spec.Title] = flow.Scope
		}
		ctx.Report(phase, "flow", spec.Title, id, outcome)
	}
	return nil
}

// ProvisionTimers reconciles the declared timers. A timer whose scope
// names a flow title managed in this run gets the flow's user scope
// substituted in.
func (p *Provisioner) ProvisionTimers(ctx *provisioning.Context) error {
	for _, spec := range ctx.Config.Timers {
		if scope, ok := ctx.State.FlowScopes[spec.Scope]; ok {
			spec.Scope = scope
		}

		if spec.State == config.StateAbsent {
			outcome, err := ctx.Client.DeleteTimer(ctx, spec)
			if err != nil {
				return fmt.Errorf("timer %s: %w", spec.Name, err)
			}
			ctx.Report(phase, "timer", spec.Name, "", outcome)
			continue
		}

		timer, outcome, err := ctx.Client.EnsureTimer(ctx, spec)
		if err != nil {
			return fmt.Errorf("timer %s: %w", spec.Name, err)
		}
		id := ""
		if timer != nil {
			id = timer.ID
		}
		ctx.Report(phase, "timer", spec.Name, id, outcome)
	}
	return nil
}

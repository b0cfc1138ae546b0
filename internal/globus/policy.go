package globus

import (
	"context"

	"github.com/tidwall/gjson"

	"github.com/m1yag1/globusctl/internal/config"
)

func policyFromJSON(doc gjson.Result) *Policy {
	p := &Policy{
		ID:            doc.Get("id").String(),
		ProjectID:     doc.Get("project_id").String(),
		DisplayName:   doc.Get("display_name").String(),
		Description:   doc.Get("description").String(),
		HighAssurance: doc.Get("high_assurance").Bool(),
		AuthenticationAssuranceTimeout: int(doc.Get("authentication_assurance_timeout").Int()),
	}
	for _, d := range doc.Get("domain_constraints_include").Array() {
		p.DomainConstraintsInclude = append(p.DomainConstraintsInclude, d.String())
	}
	for _, d := range doc.Get("domain_constraints_exclude").Array() {
		p.DomainConstraintsExclude = append(p.DomainConstraintsExclude, d.String())
	}
	return p
}

// getPolicy finds a policy by display name within a project.
func (c *RealClient) getPolicy(ctx context.Context, name, projectID string) (*Policy, error) {
	authSvc, err := c.service(ctx, ServiceAuth)
	if err != nil {
		return nil, err
	}

	doc, err := authSvc.get(ctx, "/api/policies", nil)
	if err != nil {
		return nil, FriendlyError(err)
	}

	for _, pol := range doc.Get("policies").Array() {
		if pol.Get("display_name").String() != name {
			continue
		}
		if projectID != "" && pol.Get("project_id").String() != projectID {
			continue
		}
		return policyFromJSON(pol), nil
	}
	return nil, nil
}

type policyBody struct{ fields map[string]any }

func (b *policyBody) toMap() map[string]any {
	return map[string]any{"policy": b.fields}
}

func newPolicyBody(spec config.PolicySpec, projectID string) *policyBody {
	fields := map[string]any{
		"project_id":     projectID,
		"display_name":   spec.Name,
		"description":    spec.Description,
		"high_assurance": spec.HighAssurance,
	}
	if spec.HighAssurance {
		fields["authentication_assurance_timeout"] = spec.AuthenticationAssuranceTimeout
	}
	if len(spec.DomainConstraintsInclude) > 0 {
		fields["domain_constraints_include"] = spec.DomainConstraintsInclude
	}
	if len(spec.DomainConstraintsExclude) > 0 {
		fields["domain_constraints_exclude"] = spec.DomainConstraintsExclude
	}
	return &policyBody{fields: fields}
}

// EnsurePolicy creates or updates an authentication policy.
func (c *RealClient) EnsurePolicy(ctx context.Context, spec config.PolicySpec, projectID string) (*Policy, Outcome, error) {
	authSvc, err := c.service(ctx, ServiceAuth)
	if err != nil {
		return nil, OutcomeUnchanged, err
	}

	body := newPolicyBody(spec, projectID)

	return reconcileResource(ctx, spec.Name, c.dryRun, ReconcileFuncs[Policy]{
		Get: func(ctx context.Context, name string) (*Policy, error) {
			return c.getPolicy(ctx, name, projectID)
		},
		Create: func(ctx context.Context) (*Policy, error) {
			doc, err := authSvc.post(ctx, "/api/policies", body.toMap())
			if err != nil {
				return nil, FriendlyError(err)
			}
			return policyFromJSON(doc.Get("policy")), nil
		},
		NeedsUpdate: func(p *Policy) bool {
			if spec.Description != "" && p.Description != spec.Description {
				return true
			}
			if p.HighAssurance != spec.HighAssurance {
				return true
			}
			if spec.HighAssurance && p.AuthenticationAssuranceTimeout != spec.AuthenticationAssuranceTimeout {
				return true
			}
			if !stringSlicesEqual(p.DomainConstraintsInclude, spec.DomainConstraintsInclude) {
				return true
			}
			return !stringSlicesEqual(p.DomainConstraintsExclude, spec.DomainConstraintsExclude)
		},
		Update: func(ctx context.Context, p *Policy) (*Policy, error) {
			doc, err := authSvc.put(ctx, "/api/policies/"+p.ID, body.toMap())
			if err != nil {
				return nil, FriendlyError(err)
			}
			return policyFromJSON(doc.Get("policy")), nil
		},
	})
}

// DeletePolicy deletes a policy by name within a project.
func (c *RealClient) DeletePolicy(ctx context.Context, name, projectID string) (Outcome, error) {
	authSvc, err := c.service(ctx, ServiceAuth)
	if err != nil {
		return OutcomeUnchanged, err
	}

	outcome, err := deleteResource(ctx, name, c.dryRun, DeleteFuncs[Policy]{
		Get: func(ctx context.Context, name string) (*Policy, error) {
			return c.getPolicy(ctx, name, projectID)
		},
		Delete: func(ctx context.Context, p *Policy) error {
			_, err := authSvc.delete(ctx, "/api/policies/"+p.ID)
			return err
		},
	})
	if err != nil {
		return outcome, FriendlyError(err)
	}
	return outcome, nil
}

package globus

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/m1yag1/globusctl/internal/config"
)

func projectFromJSON(doc gjson.Result) *Project {
	p := &Project{
		ID:           doc.Get("id").String(),
		DisplayName:  doc.Get("display_name").String(),
		ContactEmail: doc.Get("contact_email").String(),
	}
	for _, admin := range doc.Get("admins.identities").Array() {
		p.AdminIDs = append(p.AdminIDs, admin.Get("id").String())
	}
	for _, group := range doc.Get("admins.groups").Array() {
		p.AdminGroups = append(p.AdminGroups, group.Get("id").String())
	}
	return p
}

// getProject finds a project by display name. Returns nil when absent.
func (c *RealClient) getProject(ctx context.Context, name string) (*Project, error) {
	authSvc, err := c.service(ctx, ServiceAuth)
	if err != nil {
		return nil, err
	}

	doc, err := authSvc.get(ctx, "/api/projects", nil)
	if err != nil {
		return nil, FriendlyError(err)
	}

	for _, proj := range doc.Get("projects").Array() {
		if proj.Get("display_name").String() == name {
			p := projectFromJSON(proj)
			return p, nil
		}
	}
	return nil, nil
}

// getProjectByID fetches a project by id. Returns nil when absent.
func (c *RealClient) getProjectByID(ctx context.Context, id string) (*Project, error) {
	authSvc, err := c.service(ctx, ServiceAuth)
	if err != nil {
		return nil, err
	}

	doc, err := authSvc.get(ctx, "/api/projects/"+id, nil)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, FriendlyError(err)
	}
	return projectFromJSON(doc.Get("project")), nil
}

// ResolveProjectID resolves a project reference, accepting either a
// project id or a display name.
func (c *RealClient) ResolveProjectID(ctx context.Context, nameOrID string) (string, error) {
	if _, err := uuid.Parse(nameOrID); err == nil {
		return nameOrID, nil
	}

	proj, err := c.getProject(ctx, nameOrID)
	if err != nil {
		return "", err
	}
	if proj == nil {
		return "", fmt.Errorf("project not found: %s", nameOrID)
	}
	return proj.ID, nil
}

// EnsureProject creates or updates a project.
//
// Updates need a high-assurance session. When the active credential
// cannot satisfy that, the mismatch is reported as a warning and the
// remote state is left as is.
func (c *RealClient) EnsureProject(ctx context.Context, spec config.ProjectSpec) (*Project, Outcome, error) {
	authSvc, err := c.service(ctx, ServiceAuth)
	if err != nil {
		return nil, OutcomeUnchanged, err
	}

	get := c.getProject
	if spec.ID != "" {
		get = func(ctx context.Context, _ string) (*Project, error) {
			return c.getProjectByID(ctx, spec.ID)
		}
	}

	return reconcileResource(ctx, spec.Name, c.dryRun, ReconcileFuncs[Project]{
		Get: get,
		Create: func(ctx context.Context) (*Project, error) {
			body := map[string]any{
				"project": map[string]any{
					"display_name":  spec.Name,
					"contact_email": spec.ContactEmail,
					"admin_ids":     spec.AdminIDs,
					"admin_group_ids": spec.AdminGroupIDs,
				},
			}
			doc, err := authSvc.post(ctx, "/api/projects", body)
			if err != nil {
				return nil, FriendlyError(err)
			}
			return projectFromJSON(doc.Get("project")), nil
		},
		NeedsUpdate: func(p *Project) bool {
			if spec.ContactEmail != "" && p.ContactEmail != spec.ContactEmail {
				return true
			}
			if spec.Name != "" && p.DisplayName != spec.Name {
				return true
			}
			return false
		},
		Update: func(ctx context.Context, p *Project) (*Project, error) {
			body := map[string]any{
				"project": map[string]any{
					"display_name":  spec.Name,
					"contact_email": spec.ContactEmail,
				},
			}
			doc, err := authSvc.put(ctx, "/api/projects/"+p.ID, body)
			if err != nil {
				if IsHighAssurance(err) {
					c.warnf("project %s: update skipped, requires a high-assurance session", spec.Name)
					return p, nil
				}
				return nil, FriendlyError(err)
			}
			return projectFromJSON(doc.Get("project")), nil
		},
	})
}

// DeleteProject deletes a project by name. Deletion always needs a
// high-assurance session; a refusal is downgraded to a warning since
// non-interactive credentials cannot satisfy it.
func (c *RealClient) DeleteProject(ctx context.Context, name string) (Outcome, error) {
	authSvc, err := c.service(ctx, ServiceAuth)
	if err != nil {
		return OutcomeUnchanged, err
	}

	outcome, err := deleteResource(ctx, name, c.dryRun, DeleteFuncs[Project]{
		Get: c.getProject,
		Delete: func(ctx context.Context, p *Project) error {
			_, err := authSvc.delete(ctx, "/api/projects/"+p.ID)
			return err
		},
	})
	if err != nil && IsHighAssurance(err) {
		c.warnf("project %s: delete skipped, requires a high-assurance session, use the web console", name)
		return OutcomeSkipped, nil
	}
	if err != nil {
		return outcome, FriendlyError(err)
	}
	return outcome, nil
}

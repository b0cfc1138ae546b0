package globus

import (
	"context"

	"github.com/tidwall/gjson"

	"github.com/m1yag1/globusctl/internal/config"
)

func groupFromJSON(doc gjson.Result) *Group {
	return &Group{
		ID:          doc.Get("id").String(),
		Name:        doc.Get("name").String(),
		Description: doc.Get("description").String(),
		Visibility:  doc.Get("visibility").String(),
	}
}

// getGroup finds a group the caller belongs to by name.
func (c *RealClient) getGroup(ctx context.Context, name string) (*Group, error) {
	groups, err := c.service(ctx, ServiceGroups)
	if err != nil {
		return nil, err
	}

	doc, err := groups.get(ctx, "/groups/my_groups", nil)
	if err != nil {
		return nil, FriendlyError(err)
	}

	for _, g := range doc.Array() {
		if g.Get("name").String() == name {
			// The listing omits policy fields, fetch the full record.
			full, err := groups.get(ctx, "/groups/"+g.Get("id").String(), nil)
			if err != nil {
				return nil, FriendlyError(err)
			}
			return groupFromJSON(full), nil
		}
	}
	return nil, nil
}

// EnsureGroup creates or updates a group, then brings its membership up
// to the declared set. Membership management is add-only: members present
// remotely but not declared are left in place.
func (c *RealClient) EnsureGroup(ctx context.Context, spec config.GroupSpec, identities map[string]string) (*Group, Outcome, error) {
	groups, err := c.service(ctx, ServiceGroups)
	if err != nil {
		return nil, OutcomeUnchanged, err
	}

	group, outcome, err := reconcileResource(ctx, spec.Name, c.dryRun, ReconcileFuncs[Group]{
		Get: c.getGroup,
		Create: func(ctx context.Context) (*Group, error) {
			body := map[string]any{
				"name":        spec.Name,
				"description": spec.Description,
				"visibility":  spec.Visibility,
			}
			doc, err := groups.post(ctx, "/groups", body)
			if err != nil {
				return nil, FriendlyError(err)
			}
			return groupFromJSON(doc), nil
		},
		NeedsUpdate: func(g *Group) bool {
			if spec.Description != "" && g.Description != spec.Description {
				return true
			}
			vis := g.Visibility
			if vis == "" {
				vis = "private"
			}
			return vis != spec.Visibility
		},
		Update: func(ctx context.Context, g *Group) (*Group, error) {
			body := map[string]any{
				"description": spec.Description,
				"visibility":  spec.Visibility,
			}
			doc, err := groups.put(ctx, "/groups/"+g.ID, body)
			if err != nil {
				return nil, FriendlyError(err)
			}
			return groupFromJSON(doc), nil
		},
	})
	if err != nil {
		return nil, outcome, err
	}

	if group == nil {
		// Dry-run creation of a missing group, membership cannot be
		// reconciled without an id.
		return nil, outcome, nil
	}

	membersChanged, err := c.addMembers(ctx, group.ID, spec.Members, "member", identities)
	if err != nil {
		return group, outcome, err
	}
	adminsChanged, err := c.addMembers(ctx, group.ID, spec.Admins, "admin", identities)
	if err != nil {
		return group, outcome, err
	}

	if outcome == OutcomeUnchanged && (membersChanged || adminsChanged) {
		outcome = OutcomeUpdated
	}
	return group, outcome, nil
}

// addMembers adds the given usernames to a group with a role, skipping
// identities that are already members.
func (c *RealClient) addMembers(ctx context.Context, groupID string, usernames []string, role string, identities map[string]string) (bool, error) {
	if len(usernames) == 0 {
		return false, nil
	}

	groups, err := c.service(ctx, ServiceGroups)
	if err != nil {
		return false, err
	}

	doc, err := groups.get(ctx, "/groups/"+groupID, nil)
	if err != nil {
		return false, FriendlyError(err)
	}

	current := make(map[string]bool)
	for _, m := range doc.Get("my_memberships").Array() {
		current[m.Get("identity_id").String()] = true
	}
	for _, m := range doc.Get("memberships").Array() {
		current[m.Get("identity_id").String()] = true
	}

	changed := false
	var add []map[string]any
	for _, username := range usernames {
		id := identities[username]
		if id == "" || current[id] {
			continue
		}
		add = append(add, map[string]any{"identity_id": id, "role": role})
	}
	if len(add) == 0 {
		return false, nil
	}

	if c.dryRun {
		return true, nil
	}

	body := map[string]any{"add": add}
	if _, err := groups.post(ctx, "/groups/"+groupID, body); err != nil {
		return false, FriendlyError(err)
	}
	changed = true

	return changed, nil
}

// DeleteGroup deletes a group by name.
func (c *RealClient) DeleteGroup(ctx context.Context, name string) (Outcome, error) {
	groups, err := c.service(ctx, ServiceGroups)
	if err != nil {
		return OutcomeUnchanged, err
	}

	outcome, err := deleteResource(ctx, name, c.dryRun, DeleteFuncs[Group]{
		Get: c.getGroup,
		Delete: func(ctx context.Context, g *Group) error {
			_, err := groups.delete(ctx, "/groups/"+g.ID)
			return err
		},
	})
	if err != nil {
		return outcome, FriendlyError(err)
	}
	return outcome, nil
}

package globus

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"

	"github.com/google/go-cmp/cmp"
	"github.com/tidwall/gjson"

	"github.com/m1yag1/globusctl/internal/config"
)

func flowFromJSON(doc gjson.Result) *Flow {
	f := &Flow{
		ID:          doc.Get("id").String(),
		Title:       doc.Get("title").String(),
		Subtitle:    doc.Get("subtitle").String(),
		Description: doc.Get("description").String(),
		Scope:       doc.Get("globus_auth_scope").String(),
	}
	for _, k := range doc.Get("keywords").Array() {
		f.Keywords = append(f.Keywords, k.String())
	}
	for _, v := range doc.Get("flow_viewers").Array() {
		f.FlowViewers = append(f.FlowViewers, v.String())
	}
	for _, s := range doc.Get("flow_starters").Array() {
		f.FlowStarters = append(f.FlowStarters, s.String())
	}
	for _, a := range doc.Get("flow_administrators").Array() {
		f.FlowAdministrators = append(f.FlowAdministrators, a.String())
	}

	if def := doc.Get("definition"); def.Exists() {
		_ = json.Unmarshal([]byte(def.Raw), &f.Definition)
	}
	if schema := doc.Get("input_schema"); schema.Exists() {
		_ = json.Unmarshal([]byte(schema.Raw), &f.InputSchema)
	}
	return f
}

// flowDefinition resolves the inline definition or reads it from a file.
func flowDefinition(spec config.FlowSpec) (map[string]any, error) {
	if spec.Definition != nil {
		return spec.Definition, nil
	}

	// #nosec G304
	data, err := os.ReadFile(spec.DefinitionFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read flow definition file: %w", err)
	}

	var def map[string]any
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to parse flow definition file %s: %w", spec.DefinitionFile, err)
	}
	return def, nil
}

// getFlow finds a flow owned by the caller by title.
func (c *RealClient) getFlow(ctx context.Context, title string) (*Flow, error) {
	flows, err := c.service(ctx, ServiceFlows)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("filter_role", "flow_owner")

	doc, err := flows.get(ctx, "/flows", query)
	if err != nil {
		return nil, FriendlyError(err)
	}

	for _, f := range doc.Get("flows").Array() {
		if f.Get("title").String() == title {
			return flowFromJSON(f), nil
		}
	}
	return nil, nil
}

func flowBody(spec config.FlowSpec, definition map[string]any) map[string]any {
	body := map[string]any{
		"title":      spec.Title,
		"definition": definition,
	}
	if spec.InputSchema != nil {
		body["input_schema"] = spec.InputSchema
	} else {
		body["input_schema"] = map[string]any{}
	}
	if spec.Subtitle != "" {
		body["subtitle"] = spec.Subtitle
	}
	if spec.Description != "" {
		body["description"] = spec.Description
	}
	if len(spec.Keywords) > 0 {
		body["keywords"] = spec.Keywords
	}
	if len(spec.VisibleTo) > 0 {
		body["flow_viewers"] = spec.VisibleTo
	}
	if len(spec.RunnableBy) > 0 {
		body["flow_starters"] = spec.RunnableBy
	}
	if len(spec.AdministeredBy) > 0 {
		body["flow_administrators"] = spec.AdministeredBy
	}
	return body
}

// EnsureFlow creates or updates a flow. The per-flow user scope minted at
// creation is reported back on the Flow.
func (c *RealClient) EnsureFlow(ctx context.Context, spec config.FlowSpec) (*Flow, Outcome, error) {
	flows, err := c.service(ctx, ServiceFlows)
	if err != nil {
		return nil, OutcomeUnchanged, err
	}

	definition, err := flowDefinition(spec)
	if err != nil {
		return nil, OutcomeUnchanged, err
	}

	flow, outcome, err := reconcileResource(ctx, spec.Title, c.dryRun, ReconcileFuncs[Flow]{
		Get: c.getFlow,
		Create: func(ctx context.Context) (*Flow, error) {
			doc, err := flows.post(ctx, "/flows", flowBody(spec, definition))
			if err != nil {
				return nil, FriendlyError(err)
			}
			return flowFromJSON(doc), nil
		},
		NeedsUpdate: func(f *Flow) bool {
			if !cmp.Equal(f.Definition, definition) {
				return true
			}
			if spec.Subtitle != "" && f.Subtitle != spec.Subtitle {
				return true
			}
			if spec.Description != "" && f.Description != spec.Description {
				return true
			}
			if len(spec.Keywords) > 0 && !stringSlicesEqual(f.Keywords, spec.Keywords) {
				return true
			}
			if len(spec.VisibleTo) > 0 && !stringSlicesEqual(f.FlowViewers, spec.VisibleTo) {
				return true
			}
			if len(spec.RunnableBy) > 0 && !stringSlicesEqual(f.FlowStarters, spec.RunnableBy) {
				return true
			}
			return len(spec.AdministeredBy) > 0 && !stringSlicesEqual(f.FlowAdministrators, spec.AdministeredBy)
		},
		Update: func(ctx context.Context, f *Flow) (*Flow, error) {
			doc, err := flows.put(ctx, "/flows/"+f.ID, flowBody(spec, definition))
			if err != nil {
				return nil, FriendlyError(err)
			}
			return flowFromJSON(doc), nil
		},
	})
	if err != nil {
		return nil, outcome, err
	}

	if flow != nil && flow.Scope == "" && flow.ID != "" {
		flow.Scope = FlowUserScope(flow.ID)
	}
	return flow, outcome, nil
}

// DeleteFlow deletes a flow by title.
func (c *RealClient) DeleteFlow(ctx context.Context, title string) (Outcome, error) {
	flows, err := c.service(ctx, ServiceFlows)
	if err != nil {
		return OutcomeUnchanged, err
	}

	outcome, err := deleteResource(ctx, title, c.dryRun, DeleteFuncs[Flow]{
		Get: c.getFlow,
		Delete: func(ctx context.Context, f *Flow) error {
			_, err := flows.delete(ctx, "/flows/"+f.ID)
			return err
		},
	})
	if err != nil {
		return outcome, FriendlyError(err)
	}
	return outcome, nil
}

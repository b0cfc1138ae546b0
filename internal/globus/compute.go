package globus

import (
	"context"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/m1yag1/globusctl/internal/config"
)

func computeEndpointFromJSON(doc gjson.Result) *ComputeEndpoint {
	ce := &ComputeEndpoint{
		ID:          doc.Get("uuid").String(),
		Name:        doc.Get("name").String(),
		Description: doc.Get("description").String(),
		Public:      doc.Get("public").Bool(),
		Status:      strings.ToLower(doc.Get("status").String()),
	}
	if ce.ID == "" {
		ce.ID = doc.Get("endpoint_id").String()
	}
	if ce.Name == "" {
		ce.Name = doc.Get("endpoint_name").String()
	}
	return ce
}

// computeEndpointConfig builds the engine and executor document.
func computeEndpointConfig(spec config.ComputeEndpointSpec) map[string]any {
	engine := map[string]any{
		"type":                 "GlobusComputeEngine",
		"max_workers_per_node": spec.MaxWorkers,
		"worker_init":          spec.WorkerInit,
	}
	if spec.CondaEnv != "" {
		engine["conda_env"] = spec.CondaEnv
	}

	executor := map[string]any{
		"label":       "default",
		"type":        spec.ExecutorType,
		"max_workers": spec.MaxWorkers,
	}
	if spec.Provider != nil {
		executor["provider"] = spec.Provider
	}

	return map[string]any{
		"engine":    engine,
		"executors": []map[string]any{executor},
	}
}

// getComputeEndpoint finds a compute endpoint by name.
func (c *RealClient) getComputeEndpoint(ctx context.Context, name string) (*ComputeEndpoint, error) {
	compute, err := c.service(ctx, ServiceCompute)
	if err != nil {
		return nil, err
	}

	doc, err := compute.get(ctx, "/endpoints", nil)
	if err != nil {
		return nil, FriendlyError(err)
	}

	for _, ep := range doc.Get("endpoints").Array() {
		if ep.Get("name").String() == name {
			return computeEndpointFromJSON(ep), nil
		}
	}
	return nil, nil
}

// EnsureComputeEndpoint registers a compute endpoint and reconciles its
// run state when one is declared.
func (c *RealClient) EnsureComputeEndpoint(ctx context.Context, spec config.ComputeEndpointSpec) (*ComputeEndpoint, Outcome, error) {
	compute, err := c.service(ctx, ServiceCompute)
	if err != nil {
		return nil, OutcomeUnchanged, err
	}

	endpoint, outcome, err := reconcileResource(ctx, spec.Name, c.dryRun, ReconcileFuncs[ComputeEndpoint]{
		Get: c.getComputeEndpoint,
		Create: func(ctx context.Context) (*ComputeEndpoint, error) {
			body := map[string]any{
				"endpoint_name": spec.Name,
				"description":   spec.Description,
				"public":        spec.Public,
				"config":        computeEndpointConfig(spec),
			}
			doc, err := compute.post(ctx, "/endpoints", body)
			if err != nil {
				return nil, FriendlyError(err)
			}
			created := computeEndpointFromJSON(doc)
			if created.Name == "" {
				created.Name = spec.Name
			}
			return created, nil
		},
		NeedsUpdate: func(ep *ComputeEndpoint) bool {
			if spec.Description != "" && ep.Description != spec.Description {
				return true
			}
			return ep.Public != spec.Public
		},
		Update: func(ctx context.Context, ep *ComputeEndpoint) (*ComputeEndpoint, error) {
			body := map[string]any{
				"description": spec.Description,
				"public":      spec.Public,
				"config":      computeEndpointConfig(spec),
			}
			if _, err := compute.put(ctx, "/endpoints/"+ep.ID, body); err != nil {
				return nil, FriendlyError(err)
			}
			updated := *ep
			updated.Description = spec.Description
			updated.Public = spec.Public
			return &updated, nil
		},
	})
	if err != nil || endpoint == nil {
		return endpoint, outcome, err
	}

	stateChanged, err := c.reconcileRunState(ctx, endpoint, spec.RunState)
	if err != nil {
		return endpoint, outcome, err
	}
	if stateChanged && outcome == OutcomeUnchanged {
		outcome = OutcomeUpdated
	}
	return endpoint, outcome, nil
}

// reconcileRunState starts or stops the endpoint process to match the
// declared run state. An online status means started.
func (c *RealClient) reconcileRunState(ctx context.Context, ep *ComputeEndpoint, runState string) (bool, error) {
	if runState == "" {
		return false, nil
	}

	online := ep.Status == "online"
	var action string
	switch {
	case runState == "started" && !online:
		action = "start"
	case runState == "stopped" && online:
		action = "stop"
	default:
		return false, nil
	}

	if c.dryRun {
		return true, nil
	}

	compute, err := c.service(ctx, ServiceCompute)
	if err != nil {
		return false, err
	}
	if _, err := compute.post(ctx, "/endpoints/"+ep.ID+"/"+action, nil); err != nil {
		return false, FriendlyError(err)
	}
	return true, nil
}

// DeleteComputeEndpoint stops and deletes a compute endpoint by name.
func (c *RealClient) DeleteComputeEndpoint(ctx context.Context, name string) (Outcome, error) {
	compute, err := c.service(ctx, ServiceCompute)
	if err != nil {
		return OutcomeUnchanged, err
	}

	outcome, err := deleteResource(ctx, name, c.dryRun, DeleteFuncs[ComputeEndpoint]{
		Get: c.getComputeEndpoint,
		Delete: func(ctx context.Context, ep *ComputeEndpoint) error {
			if ep.Status == "online" {
				if _, err := compute.post(ctx, "/endpoints/"+ep.ID+"/stop", nil); err != nil {
					return err
				}
			}
			_, err := compute.delete(ctx, "/endpoints/"+ep.ID)
			return err
		},
	})
	if err != nil {
		return outcome, FriendlyError(err)
	}
	return outcome, nil
}

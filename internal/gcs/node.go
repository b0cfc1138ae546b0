package gcs

import (
	"context"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/m1yag1/globusctl/internal/config"
	"github.com/m1yag1/globusctl/internal/globus"
)

// Node is a data transfer node registered with the local endpoint.
type Node struct {
	ID     string
	Status string
}

// ListNodes reports the nodes registered with the local endpoint. An
// unconfigured endpoint yields an empty list.
func (m *Manager) ListNodes(ctx context.Context) ([]Node, error) {
	res, err := m.gcs(ctx, "node", "list", "--format", "json")
	if err != nil {
		return nil, fmt.Errorf("list nodes: %w", err)
	}
	if res.ExitCode != 0 {
		return nil, nil
	}

	var nodes []Node
	for _, n := range gjson.Parse(res.Stdout).Get("data").Array() {
		nodes = append(nodes, Node{
			ID:     n.Get("id").String(),
			Status: n.Get("status").String(),
		})
	}
	return nodes, nil
}

// EnsureNode runs node setup on the local host unless a node is
// already registered. Node setup needs root and modifies system
// services, so it is never re-run for an existing node.
func (m *Manager) EnsureNode(ctx context.Context, spec config.GCSNodeSpec) (globus.Outcome, error) {
	if spec.State == config.StateAbsent {
		return globus.OutcomeSkipped, errors.New("node removal requires running globus-connect-server node cleanup manually")
	}

	nodes, err := m.ListNodes(ctx)
	if err != nil {
		return globus.OutcomeUnchanged, err
	}
	if len(nodes) > 0 {
		return globus.OutcomeUnchanged, nil
	}

	if m.dryRun {
		return globus.OutcomeCreated, nil
	}

	res, err := m.gcs(ctx, "node", "setup")
	if err != nil {
		return globus.OutcomeUnchanged, fmt.Errorf("setup node: %w", err)
	}
	if res.ExitCode != 0 {
		return globus.OutcomeUnchanged, cliError("setup node", res)
	}
	return globus.OutcomeCreated, nil
}

package gcs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/m1yag1/globusctl/internal/config"
	"github.com/m1yag1/globusctl/internal/globus"
	"github.com/m1yag1/globusctl/internal/retry"
)

// Endpoint is the GCS endpoint deployed on the local host.
type Endpoint struct {
	ID             string
	DisplayName    string
	Organization   string
	SubscriptionID string
}

// ShowEndpoint reports the endpoint configured on this host, or nil if
// endpoint setup has not run yet.
func (m *Manager) ShowEndpoint(ctx context.Context) (*Endpoint, error) {
	res, err := m.gcs(ctx, "endpoint", "show")
	if err != nil {
		return nil, fmt.Errorf("show endpoint: %w", err)
	}
	if res.ExitCode != 0 {
		// The CLI exits nonzero when no endpoint is configured.
		return nil, nil
	}

	info := parseEndpointShow(res.Stdout)
	return &Endpoint{
		ID:             info["endpoint_id"],
		DisplayName:    info["display_name"],
		Organization:   info["organization"],
		SubscriptionID: info["subscription_id"],
	}, nil
}

// parseEndpointShow parses the key/value text output of endpoint show.
func parseEndpointShow(out string) map[string]string {
	info := make(map[string]string)
	for _, line := range strings.Split(out, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(key)), " ", "_")
		info[key] = strings.TrimSpace(value)
	}
	return info
}

// EndpointID reads the endpoint ID from the GCS deployment info file.
// The file is root-only, so the read goes through sudo, and it can be
// transiently unreadable while setup is finalizing.
func (m *Manager) EndpointID(ctx context.Context) (string, error) {
	var id string
	err := retry.Poll(ctx, 3, m.pollInterval, func() (bool, error) {
		res, err := m.run.Run(ctx, nil, "sudo", "cat", m.infoPath)
		if err != nil {
			return false, err
		}
		if res.ExitCode != 0 || strings.TrimSpace(res.Stdout) == "" {
			return false, nil
		}
		doc := gjson.Parse(res.Stdout)
		if !doc.IsObject() {
			return false, nil
		}
		id = doc.Get("endpoint_id").String()
		return id != "", nil
	})
	if errors.Is(err, retry.ErrExhausted) {
		return "", fmt.Errorf("endpoint ID not found in %s", m.infoPath)
	}
	if err != nil {
		return "", fmt.Errorf("read endpoint info: %w", err)
	}
	return id, nil
}

// EnsureEndpoint sets up the local GCS endpoint if needed and applies
// the subscription ID. Endpoint removal is not supported here because
// teardown requires the interactive endpoint cleanup command.
func (m *Manager) EnsureEndpoint(ctx context.Context, spec config.GCSEndpointSpec) (*Endpoint, globus.Outcome, error) {
	if spec.State == config.StateAbsent {
		return nil, globus.OutcomeSkipped, errors.New("endpoint removal requires running globus-connect-server endpoint cleanup manually")
	}

	existing, err := m.ShowEndpoint(ctx)
	if err != nil {
		return nil, globus.OutcomeUnchanged, err
	}

	if existing != nil {
		if spec.SubscriptionID != "" && existing.SubscriptionID != spec.SubscriptionID {
			if m.dryRun {
				return existing, globus.OutcomeUpdated, nil
			}
			if err := m.setSubscription(ctx, spec.SubscriptionID); err != nil {
				return existing, globus.OutcomeUnchanged, err
			}
			existing.SubscriptionID = spec.SubscriptionID
			return existing, globus.OutcomeUpdated, nil
		}
		return existing, globus.OutcomeUnchanged, nil
	}

	if m.dryRun {
		return nil, globus.OutcomeCreated, nil
	}

	owner := spec.Owner
	if owner == "" {
		if m.clientID == "" {
			return nil, globus.OutcomeUnchanged, errors.New("endpoint setup requires an owner or a client ID")
		}
		owner = m.clientID + "@clients.auth.globus.org"
	}
	organization := spec.Organization
	if organization == "" {
		// The CLI refuses setup without an organization.
		organization = "Test Organization"
	}

	args := []string{
		"endpoint", "setup", spec.DisplayName,
		"--contact-email", spec.ContactEmail,
		"--agree-to-letsencrypt-tos",
		"--dont-set-advertised-owner",
		"--organization", organization,
		"--owner", owner,
	}
	if spec.Department != "" {
		args = append(args, "--department", spec.Department)
	}
	if spec.Description != "" {
		args = append(args, "--description", spec.Description)
	}
	if spec.ProjectID != "" {
		args = append(args, "--project-id", spec.ProjectID)
	}

	res, err := m.gcs(ctx, args...)
	if err != nil {
		return nil, globus.OutcomeUnchanged, fmt.Errorf("setup endpoint: %w", err)
	}
	if res.ExitCode != 0 {
		return nil, globus.OutcomeUnchanged, cliError("setup endpoint", res)
	}

	id, err := m.EndpointID(ctx)
	if err != nil {
		return nil, globus.OutcomeCreated, err
	}
	ep := &Endpoint{ID: id, DisplayName: spec.DisplayName, Organization: organization}

	if spec.SubscriptionID != "" {
		if err := m.setSubscription(ctx, spec.SubscriptionID); err != nil {
			return ep, globus.OutcomeCreated, err
		}
		ep.SubscriptionID = spec.SubscriptionID
	}
	return ep, globus.OutcomeCreated, nil
}

// setSubscription associates the endpoint with a subscription. The
// command only works with GCS_CLI_ENDPOINT_ID in the environment.
func (m *Manager) setSubscription(ctx context.Context, subscriptionID string) error {
	id, err := m.EndpointID(ctx)
	if err != nil {
		return err
	}
	env := []string{"GCS_CLI_ENDPOINT_ID=" + id}
	res, err := m.gcsEnv(ctx, env, "endpoint", "set-subscription-id", subscriptionID)
	if err != nil {
		return fmt.Errorf("set subscription: %w", err)
	}
	if res.ExitCode != 0 {
		return cliError("set subscription", res)
	}
	return nil
}

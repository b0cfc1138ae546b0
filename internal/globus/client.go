// Package globus provides a wrapper around the Globus platform REST APIs.
package globus

import (
	"context"

	"github.com/m1yag1/globusctl/internal/config"
)

// AuthManager manages Globus Auth projects, policies and OAuth clients.
type AuthManager interface {
	// Whoami returns the authenticated identity.
	Whoami(ctx context.Context) (*Identity, error)

	// ResolveProjectID resolves a project name or id to an id.
	ResolveProjectID(ctx context.Context, nameOrID string) (string, error)

	// ResolveIdentities maps usernames to identity ids, provisioning
	// identities for unknown usernames.
	ResolveIdentities(ctx context.Context, usernames []string) (map[string]string, error)

	EnsureProject(ctx context.Context, spec config.ProjectSpec) (*Project, Outcome, error)
	DeleteProject(ctx context.Context, name string) (Outcome, error)

	EnsurePolicy(ctx context.Context, spec config.PolicySpec, projectID string) (*Policy, Outcome, error)
	DeletePolicy(ctx context.Context, name, projectID string) (Outcome, error)

	// EnsureOAuthClient also returns the credential minted for a new
	// confidential client. The credential secret is one-time.
	EnsureOAuthClient(ctx context.Context, spec config.ClientSpec, projectID string) (*OAuthClient, *Credential, Outcome, error)
	DeleteOAuthClient(ctx context.Context, name, projectID string) (Outcome, error)
}

// TransferManager manages transfer endpoints and collections.
type TransferManager interface {
	// ResolveEndpointID resolves an endpoint display name or id to an id.
	ResolveEndpointID(ctx context.Context, nameOrID string) (string, error)

	EnsureEndpoint(ctx context.Context, spec config.EndpointSpec) (*Endpoint, Outcome, error)
	DeleteEndpoint(ctx context.Context, name string) (Outcome, error)

	EnsureCollection(ctx context.Context, spec config.CollectionSpec, endpointID string) (*Collection, Outcome, error)
	DeleteCollection(ctx context.Context, name, endpointID string) (Outcome, error)
}

// GroupsManager manages groups and their membership.
type GroupsManager interface {
	EnsureGroup(ctx context.Context, spec config.GroupSpec, identities map[string]string) (*Group, Outcome, error)
	DeleteGroup(ctx context.Context, name string) (Outcome, error)
}

// FlowsManager manages flows.
type FlowsManager interface {
	EnsureFlow(ctx context.Context, spec config.FlowSpec) (*Flow, Outcome, error)
	DeleteFlow(ctx context.Context, title string) (Outcome, error)
}

// TimersManager manages timers.
type TimersManager interface {
	EnsureTimer(ctx context.Context, spec config.TimerSpec) (*Timer, Outcome, error)
	DeleteTimer(ctx context.Context, spec config.TimerSpec) (Outcome, error)
}

// ComputeManager manages compute endpoints.
type ComputeManager interface {
	EnsureComputeEndpoint(ctx context.Context, spec config.ComputeEndpointSpec) (*ComputeEndpoint, Outcome, error)
	DeleteComputeEndpoint(ctx context.Context, name string) (Outcome, error)
}

// SearchManager manages search indexes.
type SearchManager interface {
	EnsureSearchIndex(ctx context.Context, spec config.SearchIndexSpec) (*SearchIndex, Outcome, error)
	DeleteSearchIndex(ctx context.Context, name string) (Outcome, error)
}

// Client bundles the per-service managers.
type Client interface {
	AuthManager
	TransferManager
	GroupsManager
	FlowsManager
	TimersManager
	ComputeManager
	SearchManager

	// Warnings drains non-fatal conditions accumulated during operations,
	// such as actions skipped for lack of a high-assurance session.
	Warnings() []string
}

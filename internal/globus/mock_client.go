package globus

import (
	"context"

	"github.com/m1yag1/globusctl/internal/config"
)

// MockClient is a mock implementation of Client.
type MockClient struct {
	WhoamiFunc            func(ctx context.Context) (*Identity, error)
	ResolveProjectIDFunc  func(ctx context.Context, nameOrID string) (string, error)
	ResolveIdentitiesFunc func(ctx context.Context, usernames []string) (map[string]string, error)

	EnsureProjectFunc func(ctx context.Context, spec config.ProjectSpec) (*Project, Outcome, error)
	DeleteProjectFunc func(ctx context.Context, name string) (Outcome, error)

	EnsurePolicyFunc func(ctx context.Context, spec config.PolicySpec, projectID string) (*Policy, Outcome, error)
	DeletePolicyFunc func(ctx context.Context, name, projectID string) (Outcome, error)

	EnsureOAuthClientFunc func(ctx context.Context, spec config.ClientSpec, projectID string) (*OAuthClient, *Credential, Outcome, error)
	DeleteOAuthClientFunc func(ctx context.Context, name, projectID string) (Outcome, error)

	ResolveEndpointIDFunc func(ctx context.Context, nameOrID string) (string, error)
	EnsureEndpointFunc    func(ctx context.Context, spec config.EndpointSpec) (*Endpoint, Outcome, error)
	DeleteEndpointFunc    func(ctx context.Context, name string) (Outcome, error)

	EnsureCollectionFunc func(ctx context.Context, spec config.CollectionSpec, endpointID string) (*Collection, Outcome, error)
	DeleteCollectionFunc func(ctx context.Context, name, endpointID string) (Outcome, error)

	EnsureGroupFunc func(ctx context.Context, spec config.GroupSpec, identities map[string]string) (*Group, Outcome, error)
	DeleteGroupFunc func(ctx context.Context, name string) (Outcome, error)

	EnsureFlowFunc func(ctx context.Context, spec config.FlowSpec) (*Flow, Outcome, error)
	DeleteFlowFunc func(ctx context.Context, title string) (Outcome, error)

	EnsureTimerFunc func(ctx context.Context, spec config.TimerSpec) (*Timer, Outcome, error)
	DeleteTimerFunc func(ctx context.Context, spec config.TimerSpec) (Outcome, error)

	EnsureComputeEndpointFunc func(ctx context.Context, spec config.ComputeEndpointSpec) (*ComputeEndpoint, Outcome, error)
	DeleteComputeEndpointFunc func(ctx context.Context, name string) (Outcome, error)

	EnsureSearchIndexFunc func(ctx context.Context, spec config.SearchIndexSpec) (*SearchIndex, Outcome, error)
	DeleteSearchIndexFunc func(ctx context.Context, name string) (Outcome, error)

	WarningsFunc func() []string
}

var _ Client = (*MockClient)(nil)

func (m *MockClient) Whoami(ctx context.Context) (*Identity, error) {
	if m.WhoamiFunc != nil {
		return m.WhoamiFunc(ctx)
	}
	return &Identity{ID: "00000000-0000-0000-0000-000000000000"}, nil
}

func (m *MockClient) ResolveProjectID(ctx context.Context, nameOrID string) (string, error) {
	if m.ResolveProjectIDFunc != nil {
		return m.ResolveProjectIDFunc(ctx, nameOrID)
	}
	return nameOrID, nil
}

func (m *MockClient) ResolveIdentities(ctx context.Context, usernames []string) (map[string]string, error) {
	if m.ResolveIdentitiesFunc != nil {
		return m.ResolveIdentitiesFunc(ctx, usernames)
	}
	ids := make(map[string]string, len(usernames))
	for _, u := range usernames {
		ids[u] = u
	}
	return ids, nil
}

func (m *MockClient) EnsureProject(ctx context.Context, spec config.ProjectSpec) (*Project, Outcome, error) {
	if m.EnsureProjectFunc != nil {
		return m.EnsureProjectFunc(ctx, spec)
	}
	return &Project{DisplayName: spec.Name}, OutcomeUnchanged, nil
}

func (m *MockClient) DeleteProject(ctx context.Context, name string) (Outcome, error) {
	if m.DeleteProjectFunc != nil {
		return m.DeleteProjectFunc(ctx, name)
	}
	return OutcomeUnchanged, nil
}

func (m *MockClient) EnsurePolicy(ctx context.Context, spec config.PolicySpec, projectID string) (*Policy, Outcome, error) {
	if m.EnsurePolicyFunc != nil {
		return m.EnsurePolicyFunc(ctx, spec, projectID)
	}
	return &Policy{DisplayName: spec.Name, ProjectID: projectID}, OutcomeUnchanged, nil
}

func (m *MockClient) DeletePolicy(ctx context.Context, name, projectID string) (Outcome, error) {
	if m.DeletePolicyFunc != nil {
		return m.DeletePolicyFunc(ctx, name, projectID)
	}
	return OutcomeUnchanged, nil
}

func (m *MockClient) EnsureOAuthClient(ctx context.Context, spec config.ClientSpec, projectID string) (*OAuthClient, *Credential, Outcome, error) {
	if m.EnsureOAuthClientFunc != nil {
		return m.EnsureOAuthClientFunc(ctx, spec, projectID)
	}
	return &OAuthClient{Name: spec.Name, ProjectID: projectID}, nil, OutcomeUnchanged, nil
}

func (m *MockClient) DeleteOAuthClient(ctx context.Context, name, projectID string) (Outcome, error) {
	if m.DeleteOAuthClientFunc != nil {
		return m.DeleteOAuthClientFunc(ctx, name, projectID)
	}
	return OutcomeUnchanged, nil
}

func (m *MockClient) ResolveEndpointID(ctx context.Context, nameOrID string) (string, error) {
	if m.ResolveEndpointIDFunc != nil {
		return m.ResolveEndpointIDFunc(ctx, nameOrID)
	}
	return nameOrID, nil
}

func (m *MockClient) EnsureEndpoint(ctx context.Context, spec config.EndpointSpec) (*Endpoint, Outcome, error) {
	if m.EnsureEndpointFunc != nil {
		return m.EnsureEndpointFunc(ctx, spec)
	}
	return &Endpoint{DisplayName: spec.Name}, OutcomeUnchanged, nil
}

func (m *MockClient) DeleteEndpoint(ctx context.Context, name string) (Outcome, error) {
	if m.DeleteEndpointFunc != nil {
		return m.DeleteEndpointFunc(ctx, name)
	}
	return OutcomeUnchanged, nil
}

func (m *MockClient) EnsureCollection(ctx context.Context, spec config.CollectionSpec, endpointID string) (*Collection, Outcome, error) {
	if m.EnsureCollectionFunc != nil {
		return m.EnsureCollectionFunc(ctx, spec, endpointID)
	}
	return &Collection{DisplayName: spec.Name, EndpointID: endpointID}, OutcomeUnchanged, nil
}

func (m *MockClient) DeleteCollection(ctx context.Context, name, endpointID string) (Outcome, error) {
	if m.DeleteCollectionFunc != nil {
		return m.DeleteCollectionFunc(ctx, name, endpointID)
	}
	return OutcomeUnchanged, nil
}

func (m *MockClient) EnsureGroup(ctx context.Context, spec config.GroupSpec, identities map[string]string) (*Group, Outcome, error) {
	if m.EnsureGroupFunc != nil {
		return m.EnsureGroupFunc(ctx, spec, identities)
	}
	return &Group{Name: spec.Name}, OutcomeUnchanged, nil
}

func (m *MockClient) DeleteGroup(ctx context.Context, name string) (Outcome, error) {
	if m.DeleteGroupFunc != nil {
		return m.DeleteGroupFunc(ctx, name)
	}
	return OutcomeUnchanged, nil
}

func (m *MockClient) EnsureFlow(ctx context.Context, spec config.FlowSpec) (*Flow, Outcome, error) {
	if m.EnsureFlowFunc != nil {
		return m.EnsureFlowFunc(ctx, spec)
	}
	return &Flow{Title: spec.Title}, OutcomeUnchanged, nil
}

func (m *MockClient) DeleteFlow(ctx context.Context, title string) (Outcome, error) {
	if m.DeleteFlowFunc != nil {
		return m.DeleteFlowFunc(ctx, title)
	}
	return OutcomeUnchanged, nil
}

func (m *MockClient) EnsureTimer(ctx context.Context, spec config.TimerSpec) (*Timer, Outcome, error) {
	if m.EnsureTimerFunc != nil {
		return m.EnsureTimerFunc(ctx, spec)
	}
	return &Timer{Name: spec.Name}, OutcomeUnchanged, nil
}

func (m *MockClient) DeleteTimer(ctx context.Context, spec config.TimerSpec) (Outcome, error) {
	if m.DeleteTimerFunc != nil {
		return m.DeleteTimerFunc(ctx, spec)
	}
	return OutcomeUnchanged, nil
}

func (m *MockClient) EnsureComputeEndpoint(ctx context.Context, spec config.ComputeEndpointSpec) (*ComputeEndpoint, Outcome, error) {
	if m.EnsureComputeEndpointFunc != nil {
		return m.EnsureComputeEndpointFunc(ctx, spec)
	}
	return &ComputeEndpoint{Name: spec.Name}, OutcomeUnchanged, nil
}

func (m *MockClient) DeleteComputeEndpoint(ctx context.Context, name string) (Outcome, error) {
	if m.DeleteComputeEndpointFunc != nil {
		return m.DeleteComputeEndpointFunc(ctx, name)
	}
	return OutcomeUnchanged, nil
}

func (m *MockClient) EnsureSearchIndex(ctx context.Context, spec config.SearchIndexSpec) (*SearchIndex, Outcome, error) {
	if m.EnsureSearchIndexFunc != nil {
		return m.EnsureSearchIndexFunc(ctx, spec)
	}
	return &SearchIndex{DisplayName: spec.Name}, OutcomeUnchanged, nil
}

func (m *MockClient) DeleteSearchIndex(ctx context.Context, name string) (Outcome, error) {
	if m.DeleteSearchIndexFunc != nil {
		return m.DeleteSearchIndexFunc(ctx, name)
	}
	return OutcomeUnchanged, nil
}

func (m *MockClient) Warnings() []string {
	if m.WarningsFunc != nil {
		return m.WarningsFunc()
	}
	return nil
}

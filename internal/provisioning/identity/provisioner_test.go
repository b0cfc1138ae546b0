package identity

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m1yag1/globusctl/internal/config"
	"github.com/m1yag1/globusctl/internal/globus"
	"github.com/m1yag1/globusctl/internal/provisioning"
)

type nopObserver struct{}

func (nopObserver) Printf(format string, v ...interface{})                  {}
func (nopObserver) Event(e provisioning.Event)                              {}
func (nopObserver) Progress(phase string, current, total int)               {}
func (nopObserver) WithFields(fields map[string]string) provisioning.Observer { return nopObserver{} }

func testContext(t *testing.T, cfg *config.Config, client globus.Client) *provisioning.Context {
	t.Helper()
	ctx := provisioning.NewContext(t.Context(), cfg, client, nil)
	ctx.Observer = nopObserver{}
	ctx.Logger = nopObserver{}
	return ctx
}

func TestProvisionProjectsRecordsID(t *testing.T) {
	client := &globus.MockClient{
		EnsureProjectFunc: func(ctx context.Context, spec config.ProjectSpec) (*globus.Project, globus.Outcome, error) {
			return &globus.Project{ID: "proj-1", DisplayName: spec.Name}, globus.OutcomeCreated, nil
		},
	}
	cfg := &config.Config{
		Projects: []config.ProjectSpec{{Name: "research", State: config.StatePresent}},
	}
	ctx := testContext(t, cfg, client)

	err := NewProvisioner().Provision(ctx)

	require.NoError(t, err)
	assert.Equal(t, "proj-1", ctx.State.ProjectIDs["research"])
	require.Len(t, ctx.State.Results, 1)
	assert.Equal(t, globus.OutcomeCreated, ctx.State.Results[0].Outcome)
}

func TestProvisionPoliciesUsesProjectFromState(t *testing.T) {
	var gotProjectID string
	client := &globus.MockClient{
		EnsureProjectFunc: func(ctx context.Context, spec config.ProjectSpec) (*globus.Project, globus.Outcome, error) {
			return &globus.Project{ID: "proj-1"}, globus.OutcomeCreated, nil
		},
		EnsurePolicyFunc: func(ctx context.Context, spec config.PolicySpec, projectID string) (*globus.Policy, globus.Outcome, error) {
			gotProjectID = projectID
			return &globus.Policy{ID: "pol-1"}, globus.OutcomeCreated, nil
		},
		ResolveProjectIDFunc: func(ctx context.Context, nameOrID string) (string, error) {
			return "", fmt.Errorf("project not found: %s", nameOrID)
		},
	}
	cfg := &config.Config{
		Projects: []config.ProjectSpec{{Name: "research", State: config.StatePresent}},
		Policies: []config.PolicySpec{{Name: "ha-policy", Project: "research", State: config.StatePresent}},
	}

	err := NewProvisioner().Provision(testContext(t, cfg, client))

	require.NoError(t, err)
	assert.Equal(t, "proj-1", gotProjectID)
}

func TestProvisionClientsWritesCredentialFile(t *testing.T) {
	outFile := filepath.Join(t.TempDir(), "credential.json")
	client := &globus.MockClient{
		EnsureOAuthClientFunc: func(ctx context.Context, spec config.ClientSpec, projectID string) (*globus.OAuthClient, *globus.Credential, globus.Outcome, error) {
			return &globus.OAuthClient{ID: "client-1", Name: spec.Name},
				&globus.Credential{ID: "cred-1", ClientID: "client-1", Secret: "s3cret"},
				globus.OutcomeCreated, nil
		},
	}
	cfg := &config.Config{
		Clients: []config.ClientSpec{{
			Name:                 "svc",
			Project:              "11111111-1111-1111-1111-111111111111",
			ClientType:           "confidential_client",
			CredentialOutputFile: outFile,
			State:                config.StatePresent,
		}},
	}
	ctx := testContext(t, cfg, client)

	err := NewProvisioner().Provision(ctx)

	require.NoError(t, err)
	require.Len(t, ctx.State.Credentials, 1)
	assert.Equal(t, "s3cret", ctx.State.Credentials[0].Secret)
	assert.FileExists(t, outFile)
}

func TestProvisionProjectAbsent(t *testing.T) {
	deleted := false
	client := &globus.MockClient{
		DeleteProjectFunc: func(ctx context.Context, name string) (globus.Outcome, error) {
			deleted = true
			return globus.OutcomeDeleted, nil
		},
	}
	cfg := &config.Config{
		Projects: []config.ProjectSpec{{Name: "old", State: config.StateAbsent}},
	}

	err := NewProvisioner().Provision(testContext(t, cfg, client))

	require.NoError(t, err)
	assert.True(t, deleted)
}

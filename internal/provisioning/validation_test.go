package provisioning

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m1yag1/globusctl/internal/config"
	"github.com/m1yag1/globusctl/internal/globus"
)

func validTestConfig() *config.Config {
	cfg := &config.Config{
		Auth: config.AuthConfig{Method: config.AuthMethodCLI},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidationPhasePasses(t *testing.T) {
	ctx, _ := testContext(t, &globus.MockClient{})
	ctx.Config = validTestConfig()

	err := NewValidationPhase().Provision(ctx)

	require.NoError(t, err)
}

func TestValidationPhaseFailsOnInvalidConfig(t *testing.T) {
	ctx, _ := testContext(t, &globus.MockClient{})
	cfg := validTestConfig()
	cfg.Auth.Method = "password"
	ctx.Config = cfg

	err := NewValidationPhase().Provision(ctx)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestValidationWarnsOnInlineSecret(t *testing.T) {
	cfg := validTestConfig()
	cfg.Auth.Method = config.AuthMethodClientCredentials
	cfg.Auth.ClientID = "11111111-1111-1111-1111-111111111111"
	cfg.Auth.ClientSecret = "hunter2"

	results := validate(cfg)

	require.NotEmpty(t, results)
	found := false
	for _, r := range results {
		if r.Field == "auth.client_secret" && !r.IsError() {
			found = true
		}
	}
	assert.True(t, found, "expected inline client_secret warning")
}

func TestValidationWarnsOnProjectDeletion(t *testing.T) {
	cfg := validTestConfig()
	cfg.Projects = []config.ProjectSpec{{Name: "old", State: config.StateAbsent}}

	results := validate(cfg)

	found := false
	for _, r := range results {
		if r.Field == "projects" && !r.IsError() {
			found = true
			assert.Contains(t, r.Message, "high-assurance")
		}
	}
	assert.True(t, found, "expected project deletion warning")
}

func TestValidationWarnsOnGCSWithoutClientCredentials(t *testing.T) {
	cfg := validTestConfig()
	cfg.GCS = &config.GCSConfig{}

	results := validate(cfg)

	found := false
	for _, r := range results {
		if r.Field == "gcs" && !r.IsError() {
			found = true
		}
	}
	assert.True(t, found, "expected gcs auth warning")
}

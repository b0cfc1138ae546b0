package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load([]byte(`
auth:
  method: cli
projects:
  - name: research
    contact_email: admin@example.org
endpoints:
  - name: campus-dtn
    endpoint_type: server
    hostname: dtn.example.org
groups:
  - name: researchers
timers:
  - name: nightly-sync
    callback_url: https://actions.automate.globus.org/transfer/transfer/run
gcs:
  storage_gateways:
    - display_name: lab-posix
  collections:
    - display_name: lab-data
      storage_gateway: lab-posix
`))
	require.NoError(t, err)

	assert.Equal(t, StatePresent, cfg.Projects[0].State)

	ep := cfg.Endpoints[0]
	assert.Equal(t, StatePresent, ep.State)
	assert.Equal(t, "normal", ep.NetworkUse)
	assert.Equal(t, 2811, ep.Port)
	assert.Equal(t, "gsiftp", ep.Scheme)

	assert.Equal(t, "private", cfg.Groups[0].Visibility)
	assert.Equal(t, "once", cfg.Timers[0].Schedule.Type)

	gw := cfg.GCS.StorageGateways[0]
	assert.Equal(t, "posix", gw.StorageType)
	assert.Equal(t, DefaultAllowedDomains, gw.AllowedDomains)

	col := cfg.GCS.Collections[0]
	assert.Equal(t, "/", col.BasePath)
	require.NotNil(t, col.DeleteProtection)
	assert.True(t, *col.DeleteProtection)
}

func TestLoadDefaultsAuthMethodToCLI(t *testing.T) {
	cfg, err := Load([]byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, AuthMethodCLI, cfg.Auth.Method)
}

func TestLoadRejectsInvalidYAML(t *testing.T) {
	_, err := Load([]byte("auth: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal yaml")
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "globus.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
auth:
  method: cli
search_indexes:
  - name: publications
`), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "publications", cfg.SearchIndexes[0].Name)
	assert.Equal(t, StatePresent, cfg.SearchIndexes[0].State)
}

func TestResolveSecretsFromEnv(t *testing.T) {
	env := map[string]string{
		"GLOBUS_CLIENT_SECRET": "s3cret",
		"GLOBUS_TOKEN":         "bearer-token",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := &Config{Auth: AuthConfig{
		ClientSecretEnv: "GLOBUS_CLIENT_SECRET",
		AccessTokenEnv:  "GLOBUS_TOKEN",
	}}
	require.NoError(t, cfg.ResolveSecrets(lookup))
	assert.Equal(t, "s3cret", cfg.Auth.ClientSecret)
	assert.Equal(t, "bearer-token", cfg.Auth.AccessToken)
}

func TestResolveSecretsMissingEnv(t *testing.T) {
	cfg := &Config{Auth: AuthConfig{ClientSecretEnv: "NOPE"}}
	err := cfg.ResolveSecrets(func(string) (string, bool) { return "", false })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NOPE")
}

func TestResolveSecretsInlineWins(t *testing.T) {
	// An inline secret is kept even when the env var is also set.
	cfg := &Config{Auth: AuthConfig{
		ClientSecret:    "inline",
		ClientSecretEnv: "GLOBUS_CLIENT_SECRET",
	}}
	require.NoError(t, cfg.ResolveSecrets(func(string) (string, bool) { return "from-env", true }))
	assert.Equal(t, "inline", cfg.Auth.ClientSecret)
}

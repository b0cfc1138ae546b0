package handlers

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m1yag1/globusctl/internal/config"
	"github.com/m1yag1/globusctl/internal/globus"
	"github.com/m1yag1/globusctl/internal/provisioning"
)

func testConfig() *config.Config {
	cfg := &config.Config{
		Auth: config.AuthConfig{Method: config.AuthMethodCLI},
		Projects: []config.ProjectSpec{
			{Name: "research", ContactEmail: "pi@example.edu", State: config.StatePresent},
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestApply(t *testing.T) {
	origLoad := loadConfigFile
	origClient := newGlobusClient
	defer func() {
		loadConfigFile = origLoad
		newGlobusClient = origClient
	}()

	loadConfigFile = func(_ string) (*config.Config, error) {
		return testConfig(), nil
	}
	mock := &globus.MockClient{}
	newGlobusClient = func(_ *config.Config, _ bool) globus.Client { return mock }

	err := Apply(t.Context(), "globus.yaml", false)
	require.NoError(t, err)
}

func TestApplyCheckModeUsesDryRun(t *testing.T) {
	origLoad := loadConfigFile
	origClient := newGlobusClient
	defer func() {
		loadConfigFile = origLoad
		newGlobusClient = origClient
	}()

	loadConfigFile = func(_ string) (*config.Config, error) {
		return testConfig(), nil
	}
	var gotCheck bool
	newGlobusClient = func(_ *config.Config, check bool) globus.Client {
		gotCheck = check
		return &globus.MockClient{}
	}

	err := Apply(t.Context(), "", true)

	require.NoError(t, err)
	assert.True(t, gotCheck)
}

func TestApplyConfigLoadError(t *testing.T) {
	origLoad := loadConfigFile
	defer func() { loadConfigFile = origLoad }()

	loadConfigFile = func(_ string) (*config.Config, error) {
		return nil, errors.New("no such file")
	}

	err := Apply(t.Context(), "missing.yaml", false)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}

func TestNewGCSManagerNilWithoutSection(t *testing.T) {
	manager, err := newGCSManager(testConfig(), false)

	require.NoError(t, err)
	assert.Nil(t, manager)
}

func TestNewGCSManagerRejectsBadExtraArgs(t *testing.T) {
	cfg := testConfig()
	cfg.GCS = &config.GCSConfig{ExtraArgs: `--flag "unterminated`}

	_, err := newGCSManager(cfg, false)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "gcs.extra_args")
}

func TestPrintSummary(t *testing.T) {
	state := provisioning.NewState()
	state.Record(provisioning.Result{
		Phase: "identity", Resource: "project", Name: "research", ID: "proj-1",
		Outcome: globus.OutcomeCreated,
	})
	state.Record(provisioning.Result{
		Phase: "groups", Resource: "group", Name: "team",
		Outcome: globus.OutcomeUnchanged,
	})

	var buf bytes.Buffer
	printSummary(&buf, state)

	out := buf.String()
	assert.Contains(t, out, "research")
	assert.Contains(t, out, "proj-1")
	assert.Contains(t, out, "created")
	assert.Contains(t, out, "1 of 2 resources changed")
}

func TestPrintCredentials(t *testing.T) {
	state := provisioning.NewState()
	state.Credentials = append(state.Credentials, globus.Credential{
		ClientID: "client-1", Secret: "s3cret",
	})

	var buf bytes.Buffer
	printCredentials(&buf, state)

	out := buf.String()
	assert.Contains(t, out, "client-1")
	assert.Contains(t, out, "s3cret")
	assert.Contains(t, out, "shown only once")
}

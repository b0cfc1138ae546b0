package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m1yag1/globusctl/internal/config"
	"github.com/m1yag1/globusctl/internal/globus"
	"github.com/m1yag1/globusctl/internal/provisioning"
)

type destroyMock struct {
	called bool
}

func (m *destroyMock) Name() string { return "destroy" }

func (m *destroyMock) Provision(_ *provisioning.Context) error {
	m.called = true
	return nil
}

func TestDestroy(t *testing.T) {
	origLoad := loadConfigFile
	origClient := newGlobusClient
	origDestroy := newDestroyProvisioner
	defer func() {
		loadConfigFile = origLoad
		newGlobusClient = origClient
		newDestroyProvisioner = origDestroy
	}()

	loadConfigFile = func(_ string) (*config.Config, error) {
		return testConfig(), nil
	}
	newGlobusClient = func(_ *config.Config, _ bool) globus.Client {
		return &globus.MockClient{}
	}
	mock := &destroyMock{}
	newDestroyProvisioner = func() Provisioner { return mock }

	err := Destroy(t.Context(), "globus.yaml", true, false)

	require.NoError(t, err)
	assert.True(t, mock.called)
}

func TestDestroyCanceledWithoutConfirmation(t *testing.T) {
	origLoad := loadConfigFile
	origConfirm := confirmDestroy
	origDestroy := newDestroyProvisioner
	defer func() {
		loadConfigFile = origLoad
		confirmDestroy = origConfirm
		newDestroyProvisioner = origDestroy
	}()

	loadConfigFile = func(_ string) (*config.Config, error) {
		return testConfig(), nil
	}
	confirmDestroy = func() (bool, error) { return false, nil }
	mock := &destroyMock{}
	newDestroyProvisioner = func() Provisioner { return mock }

	err := Destroy(t.Context(), "globus.yaml", false, false)

	require.NoError(t, err)
	assert.False(t, mock.called)
}

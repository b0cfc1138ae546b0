package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := &Config{Auth: AuthConfig{Method: AuthMethodCLI}}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidateAuth(t *testing.T) {
	tests := []struct {
		name    string
		auth    AuthConfig
		wantErr string
	}{
		{
			name: "cli method needs nothing else",
			auth: AuthConfig{Method: AuthMethodCLI},
		},
		{
			name:    "unknown method",
			auth:    AuthConfig{Method: "password"},
			wantErr: "invalid method",
		},
		{
			name:    "client_credentials requires client_id",
			auth:    AuthConfig{Method: AuthMethodClientCredentials, ClientSecret: "x"},
			wantErr: "client_id is required",
		},
		{
			name: "client_credentials requires a secret",
			auth: AuthConfig{
				Method:   AuthMethodClientCredentials,
				ClientID: "6c1629cf-446f-4b05-b2e9-6a4c3cf1a96e",
			},
			wantErr: "client_secret or client_secret_env",
		},
		{
			name: "client_credentials with secret env is enough",
			auth: AuthConfig{
				Method:          AuthMethodClientCredentials,
				ClientID:        "6c1629cf-446f-4b05-b2e9-6a4c3cf1a96e",
				ClientSecretEnv: "GLOBUS_CLIENT_SECRET",
			},
		},
		{
			name:    "access_token requires a token",
			auth:    AuthConfig{Method: AuthMethodAccessToken},
			wantErr: "access_token or access_token_env",
		},
		{
			name: "client_id must be a UUID",
			auth: AuthConfig{
				Method:       AuthMethodClientCredentials,
				ClientID:     "not-a-uuid",
				ClientSecret: "x",
			},
			wantErr: "not a valid UUID",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Auth: tt.auth}
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidateProjects(t *testing.T) {
	cfg := validConfig()
	cfg.Projects = []ProjectSpec{{Name: "research", State: StatePresent}}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "contact_email is required")

	// Absent projects do not need a contact email.
	cfg.Projects[0].State = StateAbsent
	assert.NoError(t, cfg.Validate())
}

func TestValidateClients(t *testing.T) {
	tests := []struct {
		name    string
		client  ClientSpec
		wantErr string
	}{
		{
			name: "valid confidential client",
			client: ClientSpec{
				Name: "svc", Project: "research", State: StatePresent,
				ClientType: "confidential_client", Visibility: "private",
			},
		},
		{
			name: "unknown client type",
			client: ClientSpec{
				Name: "svc", Project: "research", State: StatePresent,
				ClientType: "mystery", Visibility: "private",
			},
			wantErr: "invalid client_type",
		},
		{
			name: "credential output needs confidential type",
			client: ClientSpec{
				Name: "app", Project: "research", State: StatePresent,
				ClientType: "public_installed_client", Visibility: "public",
				CredentialOutputFile: "/tmp/cred.json",
			},
			wantErr: "credential_output_file requires a confidential client type",
		},
		{
			name: "missing project",
			client: ClientSpec{
				Name: "svc", State: StatePresent,
				ClientType: "confidential_client", Visibility: "private",
			},
			wantErr: "project is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Clients = []ClientSpec{tt.client}
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidateHighAssurancePolicyNeedsTimeout(t *testing.T) {
	cfg := validConfig()
	cfg.Policies = []PolicySpec{{
		Name: "ha-policy", Project: "research", State: StatePresent,
		HighAssurance: true,
	}}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "authentication_assurance_timeout")

	cfg.Policies[0].AuthenticationAssuranceTimeout = 30
	assert.NoError(t, cfg.Validate())
}

func TestValidateServerEndpointNeedsHostname(t *testing.T) {
	cfg := validConfig()
	cfg.Endpoints = []EndpointSpec{{
		Name: "dtn", State: StatePresent,
		EndpointType: "server", NetworkUse: "normal", Scheme: "gsiftp",
	}}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hostname is required")
}

func TestValidateFlowDefinition(t *testing.T) {
	cfg := validConfig()
	cfg.Flows = []FlowSpec{{Title: "ingest", State: StatePresent}}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "definition or definition_file is required")

	cfg.Flows[0].Definition = map[string]any{"StartAt": "Step1"}
	cfg.Flows[0].DefinitionFile = "flow.json"
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")
}

func TestValidateTimerSchedule(t *testing.T) {
	tests := []struct {
		name     string
		schedule ScheduleSpec
		wantErr  string
	}{
		{
			name:     "once without interval",
			schedule: ScheduleSpec{Type: "once"},
		},
		{
			name:     "once with interval",
			schedule: ScheduleSpec{Type: "once", IntervalMinutes: 5},
			wantErr:  "cannot have an interval",
		},
		{
			name:     "recurring with one interval",
			schedule: ScheduleSpec{Type: "recurring", IntervalHours: 6},
		},
		{
			name:     "recurring without interval",
			schedule: ScheduleSpec{Type: "recurring"},
			wantErr:  "exactly one of",
		},
		{
			name:     "recurring with two intervals",
			schedule: ScheduleSpec{Type: "recurring", IntervalMinutes: 5, IntervalHours: 1},
			wantErr:  "exactly one of",
		},
		{
			name:     "negative interval",
			schedule: ScheduleSpec{Type: "recurring", IntervalSeconds: -1},
			wantErr:  "cannot be negative",
		},
		{
			name:     "unknown schedule type",
			schedule: ScheduleSpec{Type: "cron"},
			wantErr:  "must be once or recurring",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Timers = []TimerSpec{{
				Name: "t", State: StatePresent, Schedule: tt.schedule,
				CallbackURL: "https://example.org/run",
			}}
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidateTimerStates(t *testing.T) {
	cfg := validConfig()
	cfg.Timers = []TimerSpec{{
		Name: "t", State: StateInactive,
		Schedule:    ScheduleSpec{Type: "once"},
		CallbackURL: "https://example.org/run",
	}}
	assert.NoError(t, cfg.Validate())

	cfg.Timers[0].State = "paused"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "present, absent, active or inactive")
}

func TestValidateGCS(t *testing.T) {
	tests := []struct {
		name    string
		gcs     GCSConfig
		wantErr string
	}{
		{
			name: "endpoint needs project_id",
			gcs: GCSConfig{Endpoint: &GCSEndpointSpec{
				DisplayName: "dtn", ContactEmail: "a@b.org", State: StatePresent,
			}},
			wantErr: "project_id is required",
		},
		{
			name: "mfa without high assurance",
			gcs: GCSConfig{StorageGateways: []StorageGatewaySpec{{
				DisplayName: "gw", StorageType: "posix", State: StatePresent,
				RequireMFA: true,
			}}},
			wantErr: "require_mfa needs high_assurance",
		},
		{
			name: "unknown storage type",
			gcs: GCSConfig{StorageGateways: []StorageGatewaySpec{{
				DisplayName: "gw", StorageType: "tape", State: StatePresent,
			}}},
			wantErr: "invalid storage_type",
		},
		{
			name: "unknown role",
			gcs: GCSConfig{Roles: []RoleSpec{{
				Collection: "data", Principal: "user@example.org",
				Role: "owner", State: StatePresent,
			}}},
			wantErr: "invalid role",
		},
		{
			name:    "bad extra args",
			gcs:     GCSConfig{ExtraArgs: `--flag "unterminated`},
			wantErr: "invalid extra_args",
		},
		{
			name: "valid gateway and role",
			gcs: GCSConfig{
				StorageGateways: []StorageGatewaySpec{{
					DisplayName: "gw", StorageType: "posix", State: StatePresent,
					HighAssurance: true, RequireMFA: true,
				}},
				Roles: []RoleSpec{{
					Collection: "data", Principal: "user@example.org",
					Role: "administrator", State: StatePresent,
				}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			gcs := tt.gcs
			cfg.GCS = &gcs
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidateTokenStore(t *testing.T) {
	cfg := validConfig()
	cfg.TokenStore = &TokenStoreConfig{Key: "tokens.json"}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token_store.bucket is required")
}

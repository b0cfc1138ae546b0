package config

import (
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// LoadFile reads and parses the configuration from a YAML file.
func LoadFile(path string) (*Config, error) {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Load(data)
}

// Load parses configuration from YAML bytes, applies defaults, resolves
// environment-indirect secrets and validates the result.
func Load(data []byte) (*Config, error) {
	var rawConfig map[string]interface{}
	if err := yaml.Unmarshal(data, &rawConfig); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	var cfg Config
	if err := mapstructure.Decode(rawConfig, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.ResolveSecrets(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// ResolveSecrets fills in secret fields that were given by environment
// variable name. lookup is os.LookupEnv outside of tests.
func (c *Config) ResolveSecrets(lookup func(string) (string, bool)) error {
	if c.Auth.ClientSecret == "" && c.Auth.ClientSecretEnv != "" {
		v, ok := lookup(c.Auth.ClientSecretEnv)
		if !ok {
			return fmt.Errorf("auth.client_secret_env: environment variable %s is not set", c.Auth.ClientSecretEnv)
		}
		c.Auth.ClientSecret = v
	}

	if c.Auth.AccessToken == "" && c.Auth.AccessTokenEnv != "" {
		v, ok := lookup(c.Auth.AccessTokenEnv)
		if !ok {
			return fmt.Errorf("auth.access_token_env: environment variable %s is not set", c.Auth.AccessTokenEnv)
		}
		c.Auth.AccessToken = v
	}

	return nil
}

// DefaultAllowedDomains are the identity domains a storage gateway accepts
// when none are configured.
var DefaultAllowedDomains = []string{"globus.org", "globusid.org", "clients.auth.globus.org"}

// ApplyDefaults applies sensible defaults to the configuration.
func (c *Config) ApplyDefaults() {
	if c.Auth.Method == "" {
		c.Auth.Method = AuthMethodCLI
	}

	for i := range c.Projects {
		defaultState(&c.Projects[i].State)
	}

	for i := range c.Policies {
		defaultState(&c.Policies[i].State)
	}

	for i := range c.Clients {
		defaultState(&c.Clients[i].State)
		if c.Clients[i].Visibility == "" {
			c.Clients[i].Visibility = "private"
		}
	}

	for i := range c.Endpoints {
		ep := &c.Endpoints[i]
		defaultState(&ep.State)
		if ep.EndpointType == "" {
			ep.EndpointType = "personal"
		}
		if ep.NetworkUse == "" {
			ep.NetworkUse = "normal"
		}
		if ep.EndpointType == "server" {
			if ep.Port == 0 {
				ep.Port = 2811
			}
			if ep.Scheme == "" {
				ep.Scheme = "gsiftp"
			}
		}
	}

	for i := range c.Collections {
		defaultState(&c.Collections[i].State)
		if c.Collections[i].CollectionType == "" {
			c.Collections[i].CollectionType = "mapped"
		}
	}

	for i := range c.Groups {
		defaultState(&c.Groups[i].State)
		if c.Groups[i].Visibility == "" {
			c.Groups[i].Visibility = "private"
		}
	}

	for i := range c.Flows {
		defaultState(&c.Flows[i].State)
	}

	for i := range c.Timers {
		t := &c.Timers[i]
		defaultState(&t.State)
		if t.State != StateAbsent && t.Schedule.Type == "" {
			t.Schedule.Type = "once"
		}
	}

	for i := range c.ComputeEndpoints {
		ce := &c.ComputeEndpoints[i]
		defaultState(&ce.State)
		if ce.ExecutorType == "" {
			ce.ExecutorType = "HighThroughputExecutor"
		}
		if ce.MaxWorkers == 0 {
			ce.MaxWorkers = 1
		}
	}

	for i := range c.SearchIndexes {
		defaultState(&c.SearchIndexes[i].State)
	}

	if c.GCS != nil {
		c.applyGCSDefaults()
	}

	if c.TokenStore != nil && c.TokenStore.Namespace == "" {
		c.TokenStore.Namespace = "DEFAULT"
	}
}

func (c *Config) applyGCSDefaults() {
	if c.GCS.Endpoint != nil {
		defaultState(&c.GCS.Endpoint.State)
	}
	if c.GCS.Node != nil {
		defaultState(&c.GCS.Node.State)
	}

	for i := range c.GCS.StorageGateways {
		gw := &c.GCS.StorageGateways[i]
		defaultState(&gw.State)
		if gw.StorageType == "" {
			gw.StorageType = "posix"
		}
		if len(gw.AllowedDomains) == 0 {
			gw.AllowedDomains = append([]string(nil), DefaultAllowedDomains...)
		}
	}

	for i := range c.GCS.Collections {
		col := &c.GCS.Collections[i]
		defaultState(&col.State)
		if col.BasePath == "" {
			col.BasePath = "/"
		}
		if col.DeleteProtection == nil {
			t := true
			col.DeleteProtection = &t
		}
	}

	for i := range c.GCS.Roles {
		defaultState(&c.GCS.Roles[i].State)
	}
}

func defaultState(s *string) {
	if *s == "" {
		*s = StatePresent
	}
}

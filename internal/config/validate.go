package config

import (
	"fmt"

	"github.com/google/uuid"
	shellwords "github.com/mattn/go-shellwords"
)

// ValidAuthMethods contains the supported authentication methods.
var ValidAuthMethods = map[string]bool{
	AuthMethodCLI:               true,
	AuthMethodClientCredentials: true,
	AuthMethodAccessToken:       true,
}

// ValidStorageTypes contains the storage gateway connector types the
// globus-connect-server CLI accepts.
var ValidStorageTypes = map[string]bool{
	"posix":                true,
	"blackpearl":           true,
	"s3":                   true,
	"google_cloud_storage": true,
	"azure_blob":           true,
}

// ValidRoles contains the role names assignable on a GCS collection.
var ValidRoles = map[string]bool{
	"administrator":    true,
	"access_manager":   true,
	"activity_manager": true,
	"activity_monitor": true,
}

// ValidNetworkUse contains the transfer endpoint network usage levels.
var ValidNetworkUse = map[string]bool{
	"normal":     true,
	"minimal":    true,
	"aggressive": true,
}

// Validate checks the configuration for common errors and returns a detailed error if validation fails.
func (c *Config) Validate() error {
	if err := c.validateAuth(); err != nil {
		return fmt.Errorf("auth validation failed: %w", err)
	}

	if err := c.validateAuthResources(); err != nil {
		return fmt.Errorf("auth resource validation failed: %w", err)
	}

	if err := c.validateTransfer(); err != nil {
		return fmt.Errorf("transfer validation failed: %w", err)
	}

	if err := c.validateAutomation(); err != nil {
		return fmt.Errorf("automation validation failed: %w", err)
	}

	if err := c.validateComputeAndSearch(); err != nil {
		return fmt.Errorf("compute/search validation failed: %w", err)
	}

	if c.GCS != nil {
		if err := c.validateGCS(); err != nil {
			return fmt.Errorf("gcs validation failed: %w", err)
		}
	}

	if c.TokenStore != nil {
		if c.TokenStore.Bucket == "" {
			return fmt.Errorf("token_store.bucket is required")
		}
		if c.TokenStore.Key == "" {
			return fmt.Errorf("token_store.key is required")
		}
	}

	return nil
}

func (c *Config) validateAuth() error {
	if !ValidAuthMethods[c.Auth.Method] {
		return fmt.Errorf("invalid method %q: must be one of %v", c.Auth.Method, getMapKeys(ValidAuthMethods))
	}

	switch c.Auth.Method {
	case AuthMethodClientCredentials:
		if c.Auth.ClientID == "" {
			return fmt.Errorf("client_id is required for method client_credentials")
		}
		if c.Auth.ClientSecret == "" && c.Auth.ClientSecretEnv == "" {
			return fmt.Errorf("client_secret or client_secret_env is required for method client_credentials")
		}
	case AuthMethodAccessToken:
		if c.Auth.AccessToken == "" && c.Auth.AccessTokenEnv == "" {
			return fmt.Errorf("access_token or access_token_env is required for method access_token")
		}
	}

	if c.Auth.ClientID != "" {
		if err := validateUUID("auth.client_id", c.Auth.ClientID); err != nil {
			return err
		}
	}

	return nil
}

func (c *Config) validateAuthResources() error {
	for i, p := range c.Projects {
		if p.Name == "" {
			return fmt.Errorf("project %d: name is required", i)
		}
		if err := validateState("project", p.Name, p.State); err != nil {
			return err
		}
		if p.State == StatePresent && p.ContactEmail == "" {
			return fmt.Errorf("project %s: contact_email is required", p.Name)
		}
		if p.ID != "" {
			if err := validateUUID(fmt.Sprintf("project %s: id", p.Name), p.ID); err != nil {
				return err
			}
		}
	}

	for i, p := range c.Policies {
		if p.Name == "" {
			return fmt.Errorf("policy %d: name is required", i)
		}
		if err := validateState("policy", p.Name, p.State); err != nil {
			return err
		}
		if p.Project == "" {
			return fmt.Errorf("policy %s: project is required", p.Name)
		}
		if p.HighAssurance && p.AuthenticationAssuranceTimeout <= 0 {
			return fmt.Errorf("policy %s: authentication_assurance_timeout is required for high assurance policies", p.Name)
		}
	}

	for i, cl := range c.Clients {
		if cl.Name == "" {
			return fmt.Errorf("client %d: name is required", i)
		}
		if err := validateState("client", cl.Name, cl.State); err != nil {
			return err
		}
		if cl.Project == "" {
			return fmt.Errorf("client %s: project is required", cl.Name)
		}
		if cl.State == StatePresent {
			if cl.ClientType == "" {
				return fmt.Errorf("client %s: client_type is required", cl.Name)
			}
			if !ValidClientTypes[cl.ClientType] {
				return fmt.Errorf("client %s: invalid client_type %q: must be one of %v",
					cl.Name, cl.ClientType, getMapKeys(ValidClientTypes))
			}
		}
		if cl.Visibility != "public" && cl.Visibility != "private" {
			return fmt.Errorf("client %s: visibility must be public or private, got %q", cl.Name, cl.Visibility)
		}
		if cl.CredentialOutputFile != "" && !ConfidentialClientTypes[cl.ClientType] {
			return fmt.Errorf("client %s: credential_output_file requires a confidential client type", cl.Name)
		}
	}

	return nil
}

func (c *Config) validateTransfer() error {
	endpointNames := make(map[string]bool, len(c.Endpoints))

	for i, ep := range c.Endpoints {
		if ep.Name == "" {
			return fmt.Errorf("endpoint %d: name is required", i)
		}
		if err := validateState("endpoint", ep.Name, ep.State); err != nil {
			return err
		}
		switch ep.EndpointType {
		case "personal", "shared", "server":
		default:
			return fmt.Errorf("endpoint %s: endpoint_type must be personal, shared or server, got %q", ep.Name, ep.EndpointType)
		}
		if !ValidNetworkUse[ep.NetworkUse] {
			return fmt.Errorf("endpoint %s: invalid network_use %q: must be one of %v",
				ep.Name, ep.NetworkUse, getMapKeys(ValidNetworkUse))
		}
		if ep.EndpointType == "server" && ep.State == StatePresent {
			if ep.Hostname == "" {
				return fmt.Errorf("endpoint %s: hostname is required for server endpoints", ep.Name)
			}
			switch ep.Scheme {
			case "gsiftp", "ftp", "ssh":
			default:
				return fmt.Errorf("endpoint %s: scheme must be gsiftp, ftp or ssh, got %q", ep.Name, ep.Scheme)
			}
		}
		endpointNames[ep.Name] = true
	}

	for i, col := range c.Collections {
		if col.Name == "" {
			return fmt.Errorf("collection %d: name is required", i)
		}
		if err := validateState("collection", col.Name, col.State); err != nil {
			return err
		}
		if col.Endpoint == "" {
			return fmt.Errorf("collection %s: endpoint is required", col.Name)
		}
		if col.State == StatePresent && col.Path == "" {
			return fmt.Errorf("collection %s: path is required", col.Name)
		}
		switch col.CollectionType {
		case "mapped", "guest":
		default:
			return fmt.Errorf("collection %s: collection_type must be mapped or guest, got %q", col.Name, col.CollectionType)
		}
	}

	return nil
}

func (c *Config) validateAutomation() error {
	for i, g := range c.Groups {
		if g.Name == "" {
			return fmt.Errorf("group %d: name is required", i)
		}
		if err := validateState("group", g.Name, g.State); err != nil {
			return err
		}
		if g.Visibility != "public" && g.Visibility != "private" {
			return fmt.Errorf("group %s: visibility must be public or private, got %q", g.Name, g.Visibility)
		}
	}

	for i, f := range c.Flows {
		if f.Title == "" {
			return fmt.Errorf("flow %d: title is required", i)
		}
		if err := validateState("flow", f.Title, f.State); err != nil {
			return err
		}
		if f.State == StatePresent {
			if f.Definition == nil && f.DefinitionFile == "" {
				return fmt.Errorf("flow %s: definition or definition_file is required", f.Title)
			}
			if f.Definition != nil && f.DefinitionFile != "" {
				return fmt.Errorf("flow %s: definition and definition_file are mutually exclusive", f.Title)
			}
		}
	}

	for i, t := range c.Timers {
		if t.Name == "" {
			return fmt.Errorf("timer %d: name is required", i)
		}
		switch t.State {
		case StatePresent, StateAbsent, StateActive, StateInactive:
		default:
			return fmt.Errorf("timer %s: state must be present, absent, active or inactive, got %q", t.Name, t.State)
		}
		if t.ID != "" {
			if err := validateUUID(fmt.Sprintf("timer %s: id", t.Name), t.ID); err != nil {
				return err
			}
		}
		if t.State == StateAbsent {
			continue
		}
		if err := t.Schedule.validate(t.Name); err != nil {
			return err
		}
		if t.State == StatePresent && t.CallbackURL == "" {
			return fmt.Errorf("timer %s: callback_url is required", t.Name)
		}
	}

	return nil
}

func (s *ScheduleSpec) validate(timer string) error {
	switch s.Type {
	case "once":
		if s.IntervalSeconds != 0 || s.IntervalMinutes != 0 || s.IntervalHours != 0 || s.IntervalDays != 0 {
			return fmt.Errorf("timer %s: a once schedule cannot have an interval", timer)
		}
	case "recurring":
		set := 0
		for _, v := range []int{s.IntervalSeconds, s.IntervalMinutes, s.IntervalHours, s.IntervalDays} {
			if v < 0 {
				return fmt.Errorf("timer %s: schedule intervals cannot be negative", timer)
			}
			if v > 0 {
				set++
			}
		}
		if set != 1 {
			return fmt.Errorf("timer %s: a recurring schedule needs exactly one of interval_seconds, interval_minutes, interval_hours or interval_days", timer)
		}
	default:
		return fmt.Errorf("timer %s: schedule type must be once or recurring, got %q", timer, s.Type)
	}

	return nil
}

func (c *Config) validateComputeAndSearch() error {
	for i, ce := range c.ComputeEndpoints {
		if ce.Name == "" {
			return fmt.Errorf("compute endpoint %d: name is required", i)
		}
		if err := validateState("compute endpoint", ce.Name, ce.State); err != nil {
			return err
		}
		if ce.MaxWorkers < 1 {
			return fmt.Errorf("compute endpoint %s: max_workers must be at least 1, got %d", ce.Name, ce.MaxWorkers)
		}
		switch ce.RunState {
		case "", "started", "stopped":
		default:
			return fmt.Errorf("compute endpoint %s: run_state must be started or stopped, got %q", ce.Name, ce.RunState)
		}
	}

	for i, idx := range c.SearchIndexes {
		if idx.Name == "" {
			return fmt.Errorf("search index %d: name is required", i)
		}
		if err := validateState("search index", idx.Name, idx.State); err != nil {
			return err
		}
	}

	return nil
}

func (c *Config) validateGCS() error {
	if c.GCS.Endpoint != nil {
		ep := c.GCS.Endpoint
		if ep.DisplayName == "" {
			return fmt.Errorf("endpoint: display_name is required")
		}
		if err := validateState("endpoint", ep.DisplayName, ep.State); err != nil {
			return err
		}
		if ep.State == StatePresent {
			if ep.ContactEmail == "" {
				return fmt.Errorf("endpoint %s: contact_email is required", ep.DisplayName)
			}
			if ep.ProjectID == "" {
				return fmt.Errorf("endpoint %s: project_id is required", ep.DisplayName)
			}
			if err := validateUUID(fmt.Sprintf("endpoint %s: project_id", ep.DisplayName), ep.ProjectID); err != nil {
				return err
			}
		}
	}

	if c.GCS.Node != nil {
		if err := validateState("node", "node", c.GCS.Node.State); err != nil {
			return err
		}
	}

	gatewayNames := make(map[string]bool, len(c.GCS.StorageGateways))

	for i, gw := range c.GCS.StorageGateways {
		if gw.DisplayName == "" {
			return fmt.Errorf("storage gateway %d: display_name is required", i)
		}
		if err := validateState("storage gateway", gw.DisplayName, gw.State); err != nil {
			return err
		}
		if !ValidStorageTypes[gw.StorageType] {
			return fmt.Errorf("storage gateway %s: invalid storage_type %q: must be one of %v",
				gw.DisplayName, gw.StorageType, getMapKeys(ValidStorageTypes))
		}
		if gw.RequireMFA && !gw.HighAssurance {
			return fmt.Errorf("storage gateway %s: require_mfa needs high_assurance", gw.DisplayName)
		}
		gatewayNames[gw.DisplayName] = true
	}

	for i, col := range c.GCS.Collections {
		if col.DisplayName == "" {
			return fmt.Errorf("collection %d: display_name is required", i)
		}
		if err := validateState("collection", col.DisplayName, col.State); err != nil {
			return err
		}
		if col.StorageGateway == "" {
			return fmt.Errorf("collection %s: storage_gateway is required", col.DisplayName)
		}
	}

	for i, r := range c.GCS.Roles {
		if r.Collection == "" {
			return fmt.Errorf("role %d: collection is required", i)
		}
		if r.Principal == "" {
			return fmt.Errorf("role %d: principal is required", i)
		}
		if !ValidRoles[r.Role] {
			return fmt.Errorf("role for %s: invalid role %q: must be one of %v",
				r.Principal, r.Role, getMapKeys(ValidRoles))
		}
		if err := validateState("role", r.Principal, r.State); err != nil {
			return err
		}
	}

	if c.GCS.ExtraArgs != "" {
		if _, err := shellwords.Parse(c.GCS.ExtraArgs); err != nil {
			return fmt.Errorf("invalid extra_args: %w", err)
		}
	}

	return nil
}

func validateState(kind, name, state string) error {
	if state != StatePresent && state != StateAbsent {
		return fmt.Errorf("%s %s: state must be present or absent, got %q", kind, name, state)
	}
	return nil
}

func validateUUID(field, value string) error {
	if _, err := uuid.Parse(value); err != nil {
		return fmt.Errorf("%s: %q is not a valid UUID", field, value)
	}
	return nil
}

// getMapKeys returns the keys of a map as a slice for error messages.
func getMapKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

// Package config defines the desired-state configuration for globusctl.
//
// A globus.yaml file declares the Globus resources that should exist:
// auth projects, policies and OAuth clients, transfer endpoints and
// collections, groups, flows, timers, compute endpoints, search indexes,
// and Globus Connect Server resources. The apply pipeline reconciles
// remote state against this file.
package config

// Config holds the full desired state for one apply run.
type Config struct {
	Auth AuthConfig `mapstructure:"auth" yaml:"auth"`

	Projects []ProjectSpec `mapstructure:"projects" yaml:"projects,omitempty"`
	Policies []PolicySpec  `mapstructure:"policies" yaml:"policies,omitempty"`
	Clients  []ClientSpec  `mapstructure:"clients" yaml:"clients,omitempty"`

	Endpoints   []EndpointSpec   `mapstructure:"endpoints" yaml:"endpoints,omitempty"`
	Collections []CollectionSpec `mapstructure:"collections" yaml:"collections,omitempty"`

	Groups []GroupSpec `mapstructure:"groups" yaml:"groups,omitempty"`
	Flows  []FlowSpec  `mapstructure:"flows" yaml:"flows,omitempty"`
	Timers []TimerSpec `mapstructure:"timers" yaml:"timers,omitempty"`

	ComputeEndpoints []ComputeEndpointSpec `mapstructure:"compute_endpoints" yaml:"compute_endpoints,omitempty"`
	SearchIndexes    []SearchIndexSpec     `mapstructure:"search_indexes" yaml:"search_indexes,omitempty"`

	GCS *GCSConfig `mapstructure:"gcs" yaml:"gcs,omitempty"`

	TokenStore *TokenStoreConfig `mapstructure:"token_store" yaml:"token_store,omitempty"`
}

// AuthConfig selects how globusctl authenticates with the platform.
//
// Secrets can be given inline or, preferably, by naming an environment
// variable holding them.
type AuthConfig struct {
	Method string `mapstructure:"method" yaml:"method"` // cli, client_credentials or access_token

	ClientID        string `mapstructure:"client_id" yaml:"client_id,omitempty"`
	ClientSecret    string `mapstructure:"client_secret" yaml:"client_secret,omitempty"`
	ClientSecretEnv string `mapstructure:"client_secret_env" yaml:"client_secret_env,omitempty"`

	AccessToken    string `mapstructure:"access_token" yaml:"access_token,omitempty"`
	AccessTokenEnv string `mapstructure:"access_token_env" yaml:"access_token_env,omitempty"`

	// CLITokenFile overrides the default Globus CLI token storage location
	// (~/.globus/cli/storage.json) for method: cli.
	CLITokenFile string `mapstructure:"cli_token_file" yaml:"cli_token_file,omitempty"`
}

// Auth methods.
const (
	AuthMethodCLI               = "cli"
	AuthMethodClientCredentials = "client_credentials"
	AuthMethodAccessToken       = "access_token"
)

// Resource states.
const (
	StatePresent  = "present"
	StateAbsent   = "absent"
	StateActive   = "active"   // timers only
	StateInactive = "inactive" // timers only
)

// ProjectSpec declares a Globus Auth project.
//
// Project deletion requires a high-assurance session; with
// non-interactive credentials state: absent is reported as skipped.
type ProjectSpec struct {
	Name          string   `mapstructure:"name" yaml:"name"`
	ID            string   `mapstructure:"id" yaml:"id,omitempty"` // existing project id, skips name lookup
	ContactEmail  string   `mapstructure:"contact_email" yaml:"contact_email,omitempty"`
	Description   string   `mapstructure:"description" yaml:"description,omitempty"`
	AdminIDs      []string `mapstructure:"admin_ids" yaml:"admin_ids,omitempty"`
	AdminGroupIDs []string `mapstructure:"admin_group_ids" yaml:"admin_group_ids,omitempty"`
	State         string   `mapstructure:"state" yaml:"state,omitempty"`
}

// PolicySpec declares an authentication policy attached to a project.
type PolicySpec struct {
	Name        string `mapstructure:"name" yaml:"name"`
	Project     string `mapstructure:"project" yaml:"project"` // project name or id
	Description string `mapstructure:"description" yaml:"description,omitempty"`

	HighAssurance                  bool `mapstructure:"high_assurance" yaml:"high_assurance,omitempty"`
	AuthenticationAssuranceTimeout int  `mapstructure:"authentication_assurance_timeout" yaml:"authentication_assurance_timeout,omitempty"`

	DomainConstraintsInclude []string `mapstructure:"domain_constraints_include" yaml:"domain_constraints_include,omitempty"`
	DomainConstraintsExclude []string `mapstructure:"domain_constraints_exclude" yaml:"domain_constraints_exclude,omitempty"`

	State string `mapstructure:"state" yaml:"state,omitempty"`
}

// ClientSpec declares an OAuth client inside a project.
//
// Like projects, OAuth clients cannot be deleted without high-assurance
// authentication.
type ClientSpec struct {
	Name    string `mapstructure:"name" yaml:"name"`
	Project string `mapstructure:"project" yaml:"project"` // project name or id

	ClientType   string   `mapstructure:"client_type" yaml:"client_type"`
	RedirectURIs []string `mapstructure:"redirect_uris" yaml:"redirect_uris,omitempty"`
	Visibility   string   `mapstructure:"visibility" yaml:"visibility,omitempty"` // public or private

	TermsAndConditions string `mapstructure:"terms_and_conditions" yaml:"terms_and_conditions,omitempty"`
	PrivacyPolicy      string `mapstructure:"privacy_policy" yaml:"privacy_policy,omitempty"`
	RequiredIDP        string `mapstructure:"required_idp" yaml:"required_idp,omitempty"`
	PreselectIDP       string `mapstructure:"preselect_idp" yaml:"preselect_idp,omitempty"`

	// CredentialOutputFile saves the one-time client secret to a JSON file
	// after creation of a confidential client.
	CredentialOutputFile string `mapstructure:"credential_output_file" yaml:"credential_output_file,omitempty"`

	State string `mapstructure:"state" yaml:"state,omitempty"`
}

// ConfidentialClientTypes are the OAuth client types that carry a client
// secret. Creating one of these also mints a client credential.
var ConfidentialClientTypes = map[string]bool{
	"confidential_client": true,
	"client_identity":     true,
	"resource_server":     true,
	"globus_connect_server": true,
	"hybrid_confidential_client_resource_server": true,
}

// ValidClientTypes are the accepted OAuth client types.
var ValidClientTypes = map[string]bool{
	"confidential_client":     true,
	"public_installed_client": true,
	"client_identity":         true,
	"resource_server":         true,
	"globus_connect_server":   true,
	"hybrid_confidential_client_resource_server": true,
}

// EndpointSpec declares a transfer endpoint.
type EndpointSpec struct {
	Name         string `mapstructure:"name" yaml:"name"`
	Description  string `mapstructure:"description" yaml:"description,omitempty"`
	Organization string `mapstructure:"organization" yaml:"organization,omitempty"`
	ContactEmail string `mapstructure:"contact_email" yaml:"contact_email,omitempty"`

	EndpointType string `mapstructure:"endpoint_type" yaml:"endpoint_type,omitempty"` // personal, shared or server
	Public       bool   `mapstructure:"public" yaml:"public,omitempty"`
	NetworkUse   string `mapstructure:"network_use" yaml:"network_use,omitempty"` // normal, minimal or aggressive

	SubscriptionID string `mapstructure:"subscription_id" yaml:"subscription_id,omitempty"`

	// Server endpoints additionally advertise a GridFTP server.
	Hostname string `mapstructure:"hostname" yaml:"hostname,omitempty"`
	Port     int    `mapstructure:"port" yaml:"port,omitempty"`
	Scheme   string `mapstructure:"scheme" yaml:"scheme,omitempty"` // gsiftp, ftp or ssh

	State string `mapstructure:"state" yaml:"state,omitempty"`
}

// CollectionSpec declares a collection hosted on a transfer endpoint.
type CollectionSpec struct {
	Name     string `mapstructure:"name" yaml:"name"`
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"` // endpoint name or id
	Path     string `mapstructure:"path" yaml:"path"`

	CollectionType string `mapstructure:"collection_type" yaml:"collection_type,omitempty"` // mapped or guest

	Description  string   `mapstructure:"description" yaml:"description,omitempty"`
	Organization string   `mapstructure:"organization" yaml:"organization,omitempty"`
	ContactEmail string   `mapstructure:"contact_email" yaml:"contact_email,omitempty"`
	Public       bool     `mapstructure:"public" yaml:"public,omitempty"`
	Keywords     []string `mapstructure:"keywords" yaml:"keywords,omitempty"`

	// Guest collections run as a specific identity.
	IdentityID       string `mapstructure:"identity_id" yaml:"identity_id,omitempty"`
	UserCredentialID string `mapstructure:"user_credential_id" yaml:"user_credential_id,omitempty"`

	State string `mapstructure:"state" yaml:"state,omitempty"`
}

// GroupSpec declares a group and its (add-only) membership.
type GroupSpec struct {
	Name        string   `mapstructure:"name" yaml:"name"`
	Description string   `mapstructure:"description" yaml:"description,omitempty"`
	Visibility  string   `mapstructure:"visibility" yaml:"visibility,omitempty"` // public or private
	Members     []string `mapstructure:"members" yaml:"members,omitempty"`
	Admins      []string `mapstructure:"admins" yaml:"admins,omitempty"`
	State       string   `mapstructure:"state" yaml:"state,omitempty"`
}

// FlowSpec declares a flow. The definition comes inline or from a file.
type FlowSpec struct {
	Title          string         `mapstructure:"title" yaml:"title"`
	Definition     map[string]any `mapstructure:"definition" yaml:"definition,omitempty"`
	DefinitionFile string         `mapstructure:"definition_file" yaml:"definition_file,omitempty"`
	InputSchema    map[string]any `mapstructure:"input_schema" yaml:"input_schema,omitempty"`

	Subtitle    string   `mapstructure:"subtitle" yaml:"subtitle,omitempty"`
	Description string   `mapstructure:"description" yaml:"description,omitempty"`
	Keywords    []string `mapstructure:"keywords" yaml:"keywords,omitempty"`

	VisibleTo      []string `mapstructure:"visible_to" yaml:"visible_to,omitempty"`
	RunnableBy     []string `mapstructure:"runnable_by" yaml:"runnable_by,omitempty"`
	AdministeredBy []string `mapstructure:"administered_by" yaml:"administered_by,omitempty"`

	State string `mapstructure:"state" yaml:"state,omitempty"`
}

// ScheduleSpec describes when a timer fires.
type ScheduleSpec struct {
	Type     string `mapstructure:"type" yaml:"type,omitempty"` // once or recurring
	Datetime string `mapstructure:"datetime" yaml:"datetime,omitempty"`

	IntervalSeconds int `mapstructure:"interval_seconds" yaml:"interval_seconds,omitempty"`
	IntervalMinutes int `mapstructure:"interval_minutes" yaml:"interval_minutes,omitempty"`
	IntervalHours   int `mapstructure:"interval_hours" yaml:"interval_hours,omitempty"`
	IntervalDays    int `mapstructure:"interval_days" yaml:"interval_days,omitempty"`
}

// TimerSpec declares a timer. State accepts active/inactive in addition to
// present/absent to pause and resume an existing timer.
type TimerSpec struct {
	Name     string       `mapstructure:"name" yaml:"name"`
	ID       string       `mapstructure:"id" yaml:"id,omitempty"` // existing timer id, skips name lookup
	Schedule ScheduleSpec `mapstructure:"schedule" yaml:"schedule,omitempty"`

	CallbackURL  string         `mapstructure:"callback_url" yaml:"callback_url,omitempty"`
	CallbackBody map[string]any `mapstructure:"callback_body" yaml:"callback_body,omitempty"`
	Scope        string         `mapstructure:"scope" yaml:"scope,omitempty"`

	Start      string `mapstructure:"start" yaml:"start,omitempty"`
	StopAfter  string `mapstructure:"stop_after" yaml:"stop_after,omitempty"`
	StopAfterN int    `mapstructure:"stop_after_n" yaml:"stop_after_n,omitempty"`

	State string `mapstructure:"state" yaml:"state,omitempty"`
}

// ComputeEndpointSpec declares a compute endpoint and its executor config.
type ComputeEndpointSpec struct {
	Name        string `mapstructure:"name" yaml:"name"`
	Description string `mapstructure:"description" yaml:"description,omitempty"`
	Public      bool   `mapstructure:"public" yaml:"public,omitempty"`

	ExecutorType string         `mapstructure:"executor_type" yaml:"executor_type,omitempty"`
	MaxWorkers   int            `mapstructure:"max_workers" yaml:"max_workers,omitempty"`
	WorkerInit   string         `mapstructure:"worker_init" yaml:"worker_init,omitempty"`
	CondaEnv     string         `mapstructure:"conda_env" yaml:"conda_env,omitempty"`
	Provider     map[string]any `mapstructure:"provider" yaml:"provider,omitempty"`

	// RunState reconciles the endpoint process state: started or stopped.
	RunState string `mapstructure:"run_state" yaml:"run_state,omitempty"`

	State string `mapstructure:"state" yaml:"state,omitempty"`
}

// SearchIndexSpec declares a search index. Index metadata is immutable
// after creation; a changed description is a hard error, not an update.
type SearchIndexSpec struct {
	Name        string `mapstructure:"name" yaml:"name"`
	Description string `mapstructure:"description" yaml:"description,omitempty"`
	State       string `mapstructure:"state" yaml:"state,omitempty"`
}

// GCSConfig declares Globus Connect Server v5 resources, managed through
// the globus-connect-server CLI on the local host.
type GCSConfig struct {
	Endpoint        *GCSEndpointSpec     `mapstructure:"endpoint" yaml:"endpoint,omitempty"`
	Node            *GCSNodeSpec         `mapstructure:"node" yaml:"node,omitempty"`
	StorageGateways []StorageGatewaySpec `mapstructure:"storage_gateways" yaml:"storage_gateways,omitempty"`
	Collections     []GCSCollectionSpec  `mapstructure:"collections" yaml:"collections,omitempty"`
	Roles           []RoleSpec           `mapstructure:"roles" yaml:"roles,omitempty"`

	// ExtraArgs is appended to every globus-connect-server invocation,
	// shell-words style (e.g. "--use-explicit-host example.org").
	ExtraArgs string `mapstructure:"extra_args" yaml:"extra_args,omitempty"`
}

// GCSEndpointSpec declares the GCS endpoint of the local host.
type GCSEndpointSpec struct {
	DisplayName    string `mapstructure:"display_name" yaml:"display_name"`
	Organization   string `mapstructure:"organization" yaml:"organization,omitempty"`
	Department     string `mapstructure:"department" yaml:"department,omitempty"`
	ContactEmail   string `mapstructure:"contact_email" yaml:"contact_email"`
	Description    string `mapstructure:"description" yaml:"description,omitempty"`
	ProjectID      string `mapstructure:"project_id" yaml:"project_id"`
	SubscriptionID string `mapstructure:"subscription_id" yaml:"subscription_id,omitempty"`
	Owner          string `mapstructure:"owner" yaml:"owner,omitempty"`
	State          string `mapstructure:"state" yaml:"state,omitempty"`
}

// GCSNodeSpec declares the data transfer node of the local host.
type GCSNodeSpec struct {
	State string `mapstructure:"state" yaml:"state,omitempty"`
}

// StorageGatewaySpec declares a storage gateway.
type StorageGatewaySpec struct {
	DisplayName string `mapstructure:"display_name" yaml:"display_name"`
	StorageType string `mapstructure:"storage_type" yaml:"storage_type,omitempty"`

	AllowedDomains []string `mapstructure:"allowed_domains" yaml:"allowed_domains,omitempty"`

	// IdentityMapping is a file path (string), a full mapping document
	// (map) or a list of mapping rules. Inline forms are wrapped as an
	// expression_identity_mapping#1.0.0 document.
	IdentityMapping any `mapstructure:"identity_mapping" yaml:"identity_mapping,omitempty"`

	HighAssurance             bool `mapstructure:"high_assurance" yaml:"high_assurance,omitempty"`
	AuthenticationTimeoutMins int  `mapstructure:"authentication_timeout_mins" yaml:"authentication_timeout_mins,omitempty"`
	RequireMFA                bool `mapstructure:"require_mfa" yaml:"require_mfa,omitempty"`

	// Force re-applies the identity mapping even when the gateway exists.
	Force bool `mapstructure:"force" yaml:"force,omitempty"`

	State string `mapstructure:"state" yaml:"state,omitempty"`
}

// GCSCollectionSpec declares a mapped collection on a storage gateway.
type GCSCollectionSpec struct {
	DisplayName    string `mapstructure:"display_name" yaml:"display_name"`
	StorageGateway string `mapstructure:"storage_gateway" yaml:"storage_gateway"` // gateway display name or id
	BasePath       string `mapstructure:"base_path" yaml:"base_path,omitempty"`

	Description string `mapstructure:"description" yaml:"description,omitempty"`
	Public      bool   `mapstructure:"public" yaml:"public,omitempty"`

	// DeleteProtection defaults to true; disabling it requires an update
	// call after create since the CLI create command cannot turn it off.
	DeleteProtection *bool `mapstructure:"delete_protection" yaml:"delete_protection,omitempty"`

	RequireHighAssurance bool `mapstructure:"require_high_assurance" yaml:"require_high_assurance,omitempty"`

	State string `mapstructure:"state" yaml:"state,omitempty"`
}

// RoleSpec declares a role assignment on a GCS collection.
type RoleSpec struct {
	Collection string `mapstructure:"collection" yaml:"collection"` // collection display name or id
	Principal  string `mapstructure:"principal" yaml:"principal"`
	Role       string `mapstructure:"role" yaml:"role"`
	State      string `mapstructure:"state" yaml:"state,omitempty"`
}

// TokenStoreConfig points at the S3 location used by `globusctl token`.
type TokenStoreConfig struct {
	Bucket    string `mapstructure:"bucket" yaml:"bucket"`
	Key       string `mapstructure:"key" yaml:"key"`
	Namespace string `mapstructure:"namespace" yaml:"namespace,omitempty"`
	Region    string `mapstructure:"region" yaml:"region,omitempty"`
	KMSKeyID  string `mapstructure:"kms_key_id" yaml:"kms_key_id,omitempty"`
}
